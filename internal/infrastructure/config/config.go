package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for sweep-core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Motion   MotionConfig   `yaml:"motion"`
	UI       UIConfig       `yaml:"ui"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MotionConfig contains motion controller connection settings.
type MotionConfig struct {
	// Host is the address of the stage controller.
	Host string `yaml:"host"`

	// Port is the controller's command port.
	Port int `yaml:"port"`

	// Username and Password authenticate the controller session.
	// Override via SWEEPCORE_MOTION_USERNAME / SWEEPCORE_MOTION_PASSWORD.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Stages is the ordered list of positioner group names driven by the
	// sweep. Its length fixes the expected width of every combination row.
	Stages []string `yaml:"stages"`

	// ForceHome re-homes all groups during session setup even when the
	// controller reports them as already referenced.
	ForceHome bool `yaml:"force_home"`

	// ConnectTimeout is the maximum time to wait for the controller (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`
}

// UIConfig contains settings for driving the acquisition application's window.
type UIConfig struct {
	// WindowTitle is the exact title of the acquisition application's window.
	WindowTitle string `yaml:"window_title"`

	// TemplatesDir holds the reference images for on-screen controls.
	TemplatesDir string `yaml:"templates_dir"`

	// Templates names the individual control images inside TemplatesDir.
	Templates TemplateSet `yaml:"templates"`

	// FileTagOffsetX shifts the file-tag click right of the matched
	// region's centroid, onto the adjacent path field.
	FileTagOffsetX int `yaml:"file_tag_offset_x"`

	// Confidence is the template match threshold for most controls.
	Confidence float64 `yaml:"confidence"`

	// StopConfidence is the (stricter) threshold used when clicking the
	// stop-collection control.
	StopConfidence float64 `yaml:"stop_confidence"`

	// Retries is the per-click retry budget when a template is not found.
	Retries int `yaml:"retries"`

	// RetryDelayMS is the pause between retries (milliseconds).
	RetryDelayMS int `yaml:"retry_delay_ms"`

	// ClickCeilingMS bounds one whole click attempt regardless of retries.
	ClickCeilingMS int `yaml:"click_ceiling_ms"`

	// InterferencePixels is how far the pointer may drift during a click
	// before the movement counts as external interference.
	InterferencePixels int `yaml:"interference_pixels"`

	// MaxInterference is the number of consecutive interference events
	// that aborts a click attempt outright.
	MaxInterference int `yaml:"max_interference"`

	// PostConfirmTimeoutMS bounds the wait for a post-click confirmation
	// template.
	PostConfirmTimeoutMS int `yaml:"post_confirm_timeout_ms"`

	// DialogTimeoutMS bounds the wait for the save dialog to appear.
	DialogTimeoutMS int `yaml:"dialog_timeout_ms"`

	// DialogPollMS is the polling interval while waiting for the dialog.
	DialogPollMS int `yaml:"dialog_poll_ms"`

	// ActivateSettleMS is the pause after bringing the window forward.
	ActivateSettleMS int `yaml:"activate_settle_ms"`

	// FilenameSettleMS is the pause after typing the output path, giving
	// the dialog time to process the text.
	FilenameSettleMS int `yaml:"filename_settle_ms"`
}

// TemplateSet names the control images the sequencer needs.
type TemplateSet struct {
	FileTag    string `yaml:"file_tag"`
	SaveDialog string `yaml:"save_dialog"`
	Start      string `yaml:"start"`
	Stop       string `yaml:"stop"`
}

// SweepConfig contains measurement sweep settings.
type SweepConfig struct {
	// DataDir is the root directory for per-sweep output folders.
	DataDir string `yaml:"data_dir"`

	// Description is the default run description used in folder names.
	Description string `yaml:"description"`

	// MoveSettleMS is the pause after a successful stage move.
	MoveSettleMS int `yaml:"move_settle_ms"`

	// DwellPollMS is the polling increment during the acquisition dwell.
	DwellPollMS int `yaml:"dwell_poll_ms"`

	// DrainMS is the pause between end of dwell and the stop click.
	DrainMS int `yaml:"drain_ms"`
}

// DatabaseConfig contains SQLite journal settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings for progress events.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings for sweep telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SWEEPCORE_SECTION_KEY
// For example: SWEEPCORE_MOTION_HOST, SWEEPCORE_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
//
// The UI and sweep timings default to the values the acquisition
// application has been observed to need on production rigs.
func defaultConfig() *Config {
	return &Config{
		Motion: MotionConfig{
			Host:           "192.168.0.254",
			Port:           5001,
			Username:       "Administrator",
			Stages:         []string{"Group1", "Group2", "Group3", "Group4"},
			ForceHome:      true,
			ConnectTimeout: 10,
		},
		UI: UIConfig{
			WindowTitle:  "UQD Logic 16 Correlation Viewer  - V0.35 - 21.04.2021",
			TemplatesDir: "./screenshots",
			Templates: TemplateSet{
				FileTag:    "csv_file_tag.png",
				SaveDialog: "save_file_dialog.png",
				Start:      "start_data_collect.png",
				Stop:       "stop_data_collect.png",
			},
			FileTagOffsetX:       200,
			Confidence:           0.8,
			StopConfidence:       0.9,
			Retries:              3,
			RetryDelayMS:         1000,
			ClickCeilingMS:       5000,
			InterferencePixels:   5,
			MaxInterference:      3,
			PostConfirmTimeoutMS: 5000,
			DialogTimeoutMS:      15000,
			DialogPollMS:         500,
			ActivateSettleMS:     1500,
			FilenameSettleMS:     5000,
		},
		Sweep: SweepConfig{
			DataDir:      "./saved_data",
			Description:  "run",
			MoveSettleMS: 2000,
			DwellPollMS:  300,
			DrainMS:      1000,
		},
		Database: DatabaseConfig{
			Path:        "./data/sweepcore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: false,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "sweepcore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SWEEPCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Motion controller
	if v := os.Getenv("SWEEPCORE_MOTION_HOST"); v != "" {
		cfg.Motion.Host = v
	}
	if v := os.Getenv("SWEEPCORE_MOTION_USERNAME"); v != "" {
		cfg.Motion.Username = v
	}
	if v := os.Getenv("SWEEPCORE_MOTION_PASSWORD"); v != "" {
		cfg.Motion.Password = v
	}

	// Database
	if v := os.Getenv("SWEEPCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Sweep output
	if v := os.Getenv("SWEEPCORE_DATA_DIR"); v != "" {
		cfg.Sweep.DataDir = v
	}

	// MQTT
	if v := os.Getenv("SWEEPCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SWEEPCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SWEEPCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("SWEEPCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Motion validation
	if c.Motion.Host == "" {
		errs = append(errs, "motion.host is required")
	}
	if len(c.Motion.Stages) == 0 {
		errs = append(errs, "motion.stages must list at least one stage")
	}

	// UI validation
	if c.UI.WindowTitle == "" {
		errs = append(errs, "ui.window_title is required")
	}
	if c.UI.TemplatesDir == "" {
		errs = append(errs, "ui.templates_dir is required")
	}
	if c.UI.Confidence <= 0 || c.UI.Confidence > 1 {
		errs = append(errs, "ui.confidence must be in (0, 1]")
	}
	if c.UI.StopConfidence <= 0 || c.UI.StopConfidence > 1 {
		errs = append(errs, "ui.stop_confidence must be in (0, 1]")
	}
	if c.UI.Retries < 1 {
		errs = append(errs, "ui.retries must be at least 1")
	}
	if c.UI.MaxInterference < 1 {
		errs = append(errs, "ui.max_interference must be at least 1")
	}

	// Sweep validation
	if c.Sweep.DataDir == "" {
		errs = append(errs, "sweep.data_dir is required")
	}
	if c.Sweep.DwellPollMS <= 0 {
		errs = append(errs, "sweep.dwell_poll_ms must be positive")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// StageCount returns the number of stages the sweep drives.
func (c *Config) StageCount() int {
	return len(c.Motion.Stages)
}

// GetConnectTimeout returns the motion connect timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.Motion.ConnectTimeout) * time.Second
}

// GetRetryDelay returns the UI retry delay as a Duration.
func (c *UIConfig) GetRetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// GetClickCeiling returns the per-click wall-clock ceiling as a Duration.
func (c *UIConfig) GetClickCeiling() time.Duration {
	return time.Duration(c.ClickCeilingMS) * time.Millisecond
}

// GetPostConfirmTimeout returns the post-confirmation timeout as a Duration.
func (c *UIConfig) GetPostConfirmTimeout() time.Duration {
	return time.Duration(c.PostConfirmTimeoutMS) * time.Millisecond
}

// GetDialogTimeout returns the save-dialog timeout as a Duration.
func (c *UIConfig) GetDialogTimeout() time.Duration {
	return time.Duration(c.DialogTimeoutMS) * time.Millisecond
}

// GetDialogPoll returns the save-dialog polling interval as a Duration.
func (c *UIConfig) GetDialogPoll() time.Duration {
	return time.Duration(c.DialogPollMS) * time.Millisecond
}

// GetActivateSettle returns the window activation settle pause as a Duration.
func (c *UIConfig) GetActivateSettle() time.Duration {
	return time.Duration(c.ActivateSettleMS) * time.Millisecond
}

// GetFilenameSettle returns the filename-entry settle pause as a Duration.
func (c *UIConfig) GetFilenameSettle() time.Duration {
	return time.Duration(c.FilenameSettleMS) * time.Millisecond
}

// GetMoveSettle returns the post-move settle pause as a Duration.
func (c *SweepConfig) GetMoveSettle() time.Duration {
	return time.Duration(c.MoveSettleMS) * time.Millisecond
}

// GetDwellPoll returns the acquisition dwell polling increment as a Duration.
func (c *SweepConfig) GetDwellPoll() time.Duration {
	return time.Duration(c.DwellPollMS) * time.Millisecond
}

// GetDrain returns the pre-stop drain pause as a Duration.
func (c *SweepConfig) GetDrain() time.Duration {
	return time.Duration(c.DrainMS) * time.Millisecond
}
