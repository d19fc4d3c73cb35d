// Package config handles loading and validating gateway configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with AKUAPONIK_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Broker and database credentials should come from the environment rather
// than the file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.API.Port)
package config
