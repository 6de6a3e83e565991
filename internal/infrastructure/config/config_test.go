package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
motion:
  host: "10.0.0.5"
  port: 5001
  stages: ["Group1", "Group2", "Group3", "Group4"]
ui:
  window_title: "Acquisition Viewer"
  templates_dir: "/opt/rig/screenshots"
sweep:
  data_dir: "/srv/data"
  description: "tomography"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Motion.Host != "10.0.0.5" {
		t.Errorf("Motion.Host = %q, want %q", cfg.Motion.Host, "10.0.0.5")
	}
	if cfg.UI.WindowTitle != "Acquisition Viewer" {
		t.Errorf("UI.WindowTitle = %q, want %q", cfg.UI.WindowTitle, "Acquisition Viewer")
	}
	if cfg.Sweep.DataDir != "/srv/data" {
		t.Errorf("Sweep.DataDir = %q, want %q", cfg.Sweep.DataDir, "/srv/data")
	}
	if cfg.StageCount() != 4 {
		t.Errorf("StageCount() = %d, want 4", cfg.StageCount())
	}

	// Defaults survive partial files
	if cfg.UI.Confidence != 0.8 {
		t.Errorf("UI.Confidence = %v, want default 0.8", cfg.UI.Confidence)
	}
	if cfg.UI.MaxInterference != 3 {
		t.Errorf("UI.MaxInterference = %d, want default 3", cfg.UI.MaxInterference)
	}
	if cfg.Sweep.DwellPollMS != 300 {
		t.Errorf("Sweep.DwellPollMS = %d, want default 300", cfg.Sweep.DwellPollMS)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
motion:
  host: ""
ui:
  window_title: ""
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "motion.host") {
		t.Errorf("error %q should mention motion.host", err)
	}
	if !strings.Contains(err.Error(), "ui.window_title") {
		t.Errorf("error %q should mention ui.window_title", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
motion:
  host: "10.0.0.5"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("SWEEPCORE_MOTION_HOST", "10.0.0.99")
	t.Setenv("SWEEPCORE_MOTION_PASSWORD", "hunter2")
	t.Setenv("SWEEPCORE_DATA_DIR", "/mnt/results")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Motion.Host != "10.0.0.99" {
		t.Errorf("Motion.Host = %q, want env override %q", cfg.Motion.Host, "10.0.0.99")
	}
	if cfg.Motion.Password != "hunter2" {
		t.Errorf("Motion.Password = %q, want env override", cfg.Motion.Password)
	}
	if cfg.Sweep.DataDir != "/mnt/results" {
		t.Errorf("Sweep.DataDir = %q, want env override %q", cfg.Sweep.DataDir, "/mnt/results")
	}
}

func TestValidate_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{
			name:   "confidence above one",
			mutate: func(c *Config) { c.UI.Confidence = 1.5 },
			errSub: "ui.confidence",
		},
		{
			name:   "zero retries",
			mutate: func(c *Config) { c.UI.Retries = 0 },
			errSub: "ui.retries",
		},
		{
			name:   "zero max interference",
			mutate: func(c *Config) { c.UI.MaxInterference = 0 },
			errSub: "ui.max_interference",
		},
		{
			name:   "no stages",
			mutate: func(c *Config) { c.Motion.Stages = nil },
			errSub: "motion.stages",
		},
		{
			name:   "bad qos",
			mutate: func(c *Config) { c.MQTT.QoS = 3 },
			errSub: "mqtt.qos",
		},
		{
			name:   "influx enabled without url",
			mutate: func(c *Config) { c.InfluxDB.Enabled = true },
			errSub: "influxdb.url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q should mention %q", err, tt.errSub)
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := defaultConfig()

	if got := cfg.UI.GetDialogTimeout(); got != 15*time.Second {
		t.Errorf("GetDialogTimeout() = %v, want 15s", got)
	}
	if got := cfg.UI.GetClickCeiling(); got != 5*time.Second {
		t.Errorf("GetClickCeiling() = %v, want 5s", got)
	}
	if got := cfg.Sweep.GetDwellPoll(); got != 300*time.Millisecond {
		t.Errorf("GetDwellPoll() = %v, want 300ms", got)
	}
	if got := cfg.Sweep.GetMoveSettle(); got != 2*time.Second {
		t.Errorf("GetMoveSettle() = %v, want 2s", got)
	}
}
