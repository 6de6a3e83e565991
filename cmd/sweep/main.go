// Sweep Core - table-driven measurement sweep runner.
//
// This is the main entry point for the sweep CLI. It drives motorized
// stages through a table of position combinations and automates the
// acquisition application's on-screen controls for each one. See
// configs/config.yaml for the tunable timings and template paths.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenlab/sweep-core/internal/infrastructure/config"
	"github.com/lumenlab/sweep-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	rootCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Table-driven measurement sweeps over motorized stages",
		Long: `sweep repositions motorized stages for each row of a combination table
and drives the external acquisition application through one
start/dwell/stop collection cycle per row, producing one CSV artifact
per combination.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Path to configuration file")

	rootCmd.AddCommand(
		newRunCmd(),
		newProcessCmd(),
		newRunsCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by the --config flag and
// builds a logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", path)
	return cfg, log, nil
}
