// Package config loads the settings an application uses to build an
// injector: its name, logging, and telemetry switches.
//
// It uses Viper to read an optional YAML file, godotenv to load an optional
// .env file, and binds prefixed environment variables on top. Values are
// validated with go-playground/validator struct tags.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("billing", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Environment variables override file values using the SDI_ prefix with
// underscore-separated paths (e.g., SDI_LOGGING_LEVEL=debug).
package config
