package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumenlab/sweep-core/internal/combo"
	"github.com/lumenlab/sweep-core/internal/infrastructure/config"
	"github.com/lumenlab/sweep-core/internal/infrastructure/database"
	"github.com/lumenlab/sweep-core/internal/infrastructure/influxdb"
	"github.com/lumenlab/sweep-core/internal/infrastructure/logging"
	"github.com/lumenlab/sweep-core/internal/infrastructure/mqtt"
	"github.com/lumenlab/sweep-core/internal/journal"
	"github.com/lumenlab/sweep-core/internal/motion"
	"github.com/lumenlab/sweep-core/internal/results"
	"github.com/lumenlab/sweep-core/internal/sweep"
	"github.com/lumenlab/sweep-core/internal/ui"
	"github.com/lumenlab/sweep-core/internal/wait"
)

// outputDirLayout names per-sweep output folders by start time.
const outputDirLayout = "2006-01-02-150405"

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a measurement sweep from a combination table",
		Long: `run loads a combination table, connects to the stage controller and
executes one acquisition cycle per combination. With --process, the
produced folder is summarized afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runSweep(ctx, cmd)
		},
	}

	cmd.Flags().String("motion", "", "Path to the combination table file")
	cmd.Flags().Float64("wait", 0, "Acquisition dwell per combination (seconds)")
	cmd.Flags().String("desc", "", "Description used in the output folder name")
	cmd.Flags().Bool("process", false, "Summarize the produced folder after the sweep")
	cmd.Flags().String("column", "", "CSV column to average when processing")
	cmd.Flags().String("folder", "", "Folder to process instead of the fresh output folder")
	_ = cmd.MarkFlagRequired("motion")
	_ = cmd.MarkFlagRequired("wait")

	return cmd
}

func runSweep(ctx context.Context, cmd *cobra.Command) error {
	tablePath, _ := cmd.Flags().GetString("motion")
	dwellSec, _ := cmd.Flags().GetFloat64("wait")
	desc, _ := cmd.Flags().GetString("desc")
	process, _ := cmd.Flags().GetBool("process")
	column, _ := cmd.Flags().GetString("column")
	folder, _ := cmd.Flags().GetString("folder")

	if dwellSec <= 0 {
		return fmt.Errorf("--wait must be a positive number of seconds")
	}
	if process && column == "" {
		return fmt.Errorf("--process requires --column")
	}

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if desc == "" {
		desc = cfg.Sweep.Description
	}

	log.Info("starting sweep run",
		"version", version,
		"table", tablePath,
		"dwell_seconds", dwellSec,
		"description", desc,
	)

	combos, err := combo.LoadFile(tablePath, cfg.StageCount(), log)
	if err != nil {
		return fmt.Errorf("loading combination table: %w", err)
	}
	log.Info("combination table loaded", "combinations", len(combos))

	outputDir, err := makeOutputDir(cfg, desc)
	if err != nil {
		return err
	}
	log.Info("output folder created", "path", outputDir)

	// Journal database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	jnl, err := journal.New(db.DB)
	if err != nil {
		return fmt.Errorf("initializing journal: %w", err)
	}

	// Progress events (optional)
	var publisher sweep.Publisher
	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetLogger(log)
		defer func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		)
		publisher = mqttClient
	}

	// Timing telemetry (optional)
	var telemetry sweep.Telemetry
	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL)
		telemetry = influxClient
	}

	// Stage controller session
	xps, err := motion.ConnectXPS(ctx, motion.XPSConfig{
		Host:           cfg.Motion.Host,
		Port:           cfg.Motion.Port,
		Username:       cfg.Motion.Username,
		Password:       cfg.Motion.Password,
		ConnectTimeout: cfg.GetConnectTimeout(),
	}, log)
	if err != nil {
		return fmt.Errorf("connecting to stage controller: %w", err)
	}

	session, err := motion.NewSession(ctx, xps, cfg.Motion.Stages, cfg.Motion.ForceHome, log)
	if err != nil {
		return fmt.Errorf("preparing stage session: %w", err)
	}
	defer session.Close() //nolint:errcheck // idempotent, sequencer closes it first

	// Screen actuation
	screen := ui.NewRobotScreen()
	actuator := ui.New(screen, wait.Real(), ui.Config{
		RetryDelay:         cfg.UI.GetRetryDelay(),
		Ceiling:            cfg.UI.GetClickCeiling(),
		InterferencePixels: cfg.UI.InterferencePixels,
		MaxInterference:    cfg.UI.MaxInterference,
	}, log)

	seq, err := sweep.New(sweep.Params{
		Combos:      combos,
		Motion:      session,
		Actuator:    actuator,
		Keyboard:    screen,
		Window:      screen,
		Clock:       wait.Real(),
		UI:          cfg.UI,
		Timing:      cfg.Sweep,
		Dwell:       time.Duration(dwellSec * float64(time.Second)),
		OutputDir:   outputDir,
		Description: desc,
		TableFile:   tablePath,
		Journal:     jnl,
		Publisher:   publisher,
		Telemetry:   telemetry,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	summary, runErr := seq.Run(ctx)
	log.Info("sweep run finished",
		"run_id", summary.RunID,
		"produced", summary.Produced,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed,
	)
	if runErr != nil {
		return fmt.Errorf("sweep aborted: %w", runErr)
	}

	if process {
		dir := outputDir
		if folder != "" {
			dir = folder
		}
		return summarize(dir, column, log)
	}
	return nil
}

// makeOutputDir creates the per-sweep output folder under the configured
// data root and returns its absolute path. The acquisition application
// receives absolute artifact paths, so relative data roots are resolved
// here.
func makeOutputDir(cfg *config.Config, desc string) (string, error) {
	name := time.Now().Format(outputDirLayout) + "_" + desc
	dir, err := filepath.Abs(filepath.Join(cfg.Sweep.DataDir, name))
	if err != nil {
		return "", fmt.Errorf("resolving output folder: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating output folder: %w", err)
	}
	return dir, nil
}

// summarize writes the column-average summary for a run folder.
func summarize(dir, column string, log *logging.Logger) error {
	outPath, err := results.SummarizeFolder(dir, column, log)
	if err != nil {
		return fmt.Errorf("summarizing %s: %w", dir, err)
	}
	log.Info("summary written", "path", outPath)
	fmt.Printf("Summary written to %s\n", outPath)
	return nil
}
