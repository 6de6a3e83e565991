// Package config handles loading and validating sweep-core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The defaults encode the timing constants a production rig needs: settle
// delays after stage moves, the save-dialog timeout, the dwell polling
// increment, and the pointer-interference tolerances used by the UI
// actuator. All of them are plain config fields rather than package-level
// constants so a rig can be retuned without a rebuild.
//
// Security Considerations:
//   - Sensitive values (controller password, broker credentials, tokens)
//     should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.UI.WindowTitle)
package config
