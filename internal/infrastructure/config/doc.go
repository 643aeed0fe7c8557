// Package config loads and validates luxd configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by LUXD_* environment variables. The resulting
// Config value is passed explicitly into each component at construction;
// there is no global settings state.
//
// # Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	loc, _ := cfg.TimeLocation()
package config
