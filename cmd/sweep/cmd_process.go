package main

import (
	"github.com/spf13/cobra"

	"github.com/lumenlab/sweep-core/internal/results"
)

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [folder]",
		Short: "Average a column across a run folder's CSV artifacts",
		Long: `process computes the mean of one column in every data CSV of a run
folder and writes total_averages.csv inside it. Without an explicit
folder, the most recent output folder matching --desc is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			column, _ := cmd.Flags().GetString("column")
			desc, _ := cmd.Flags().GetString("desc")
			combosOnly, _ := cmd.Flags().GetBool("combos-only")

			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var dir string
			if len(args) == 1 {
				dir = args[0]
			} else {
				if desc == "" {
					desc = cfg.Sweep.Description
				}
				dir, err = results.LatestRunDir(cfg.Sweep.DataDir, desc)
				if err != nil {
					return err
				}
				log.Info("processing latest run folder", "path", dir)
			}

			if combosOnly {
				outPath, err := results.SummarizeCombos(dir, column, log)
				if err != nil {
					return err
				}
				log.Info("summary written", "path", outPath)
				return nil
			}
			return summarize(dir, column, log)
		},
	}

	cmd.Flags().String("column", "", "CSV column to average")
	cmd.Flags().String("desc", "", "Description used to locate the latest run folder")
	cmd.Flags().Bool("combos-only", false, "Average only the ordinal-named combo*.csv artifacts")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}
