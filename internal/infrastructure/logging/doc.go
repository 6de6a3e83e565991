// Package logging provides structured logging for sweep-core.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - Text output for the bench (human-readable, the default)
//   - JSON output for machine consumption
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stderr, stdout
//
// stderr is the default destination so `sweep process` output on stdout
// stays pipeable.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("sweep started", "combinations", 16)
//	logger.Warn("skipping combination", "artifact", name, "error", err)
//
// Never log the controller password or broker credentials.
package logging
