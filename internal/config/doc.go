// Package config provides configuration types and loading for the BFF.
//
// Configuration is a single YAML document with ${VAR} and ${VAR:-default}
// environment substitution. Unset keys keep the values from DefaultConfig.
//
//	cfg, err := config.LoadConfig("configs/bff.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// A Watcher reloads the file on change. Only the logging level is applied
// at runtime; the resilience policy is fixed at startup.
package config
