package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/sdi/logger"
	"github.com/kbukum/sdi/observability"
)

// Config contains everything needed to build an injector.
type Config struct {
	Name      string          `yaml:"name" mapstructure:"name" validate:"required"`
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig switches resolution metrics and tracing on the global
// OpenTelemetry providers.
type TelemetryConfig struct {
	Metrics             bool   `yaml:"metrics" mapstructure:"metrics"`
	Tracing             bool   `yaml:"tracing" mapstructure:"tracing"`
	InstrumentationName string `yaml:"instrumentation_name" mapstructure:"instrumentation_name" validate:"required_with=Metrics Tracing"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Telemetry.InstrumentationName == "" {
		c.Telemetry.InstrumentationName = observability.DefaultInstrumentationName
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate().Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func validate() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validatorInst
}

// formatValidationError flattens validator errors into one message keyed by
// the config path, e.g. "config.logging.level must be one of [...]".
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("config: %w", err)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.ToLower(fe.Namespace())
		switch fe.Tag() {
		case "required", "required_with":
			messages = append(messages, fmt.Sprintf("%s is required", path))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s] (got: %v)", path, fe.Param(), fe.Value()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s", path, fe.Tag()))
		}
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
