// Package config defines the batch configuration and includes functions for
// loading and validating it.
package config

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a batch run.
type Configuration struct {
	Logging      LoggingConfig `yaml:"logging,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
	Calculations []Calculation `yaml:"calculations"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // markdown, pretty, json, yaml, csv
}

// Calculation is one configured calculator run.
type Calculation struct {
	Name       string                  `yaml:"name"`
	Calculator string                  `yaml:"calculator"`
	Disabled   bool                    `yaml:"disabled,omitempty"`
	Inputs     calculator.Inputs       `yaml:"inputs"`
	Optimize   *optimization.Directive `yaml:"optimize,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Input keys are case-insensitive.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if configuration.Output.Format == "" {
		configuration.Output.Format = constants.OutputFormatMarkdown
	}
	return &configuration, nil
}

// Enabled returns the calculations that are not disabled, in file order.
func (c *Configuration) Enabled() []Calculation {
	var enabled []Calculation
	for _, calc := range c.Calculations {
		if !calc.Disabled {
			enabled = append(enabled, calc)
		}
	}
	return enabled
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Calculator IDs are checked against registry when it is
// not nil.
func (c *Configuration) ValidateConfiguration(registry *calculator.Registry) []string {
	calcs := make([]validation.CalculationConfig, 0, len(c.Calculations))
	for _, calc := range c.Calculations {
		calcs = append(calcs, validation.CalculationConfig{
			Name:       calc.Name,
			Calculator: calc.Calculator,
			Disabled:   calc.Disabled,
			InputCount: len(calc.Inputs),
		})
	}

	validator := validation.ConfigValidator{Calculations: calcs}
	if registry != nil {
		validator.Known = registry.Has
	}
	warnings := validator.ValidateAll()

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	for _, calc := range c.Enabled() {
		if calc.Optimize == nil {
			continue
		}
		d := *calc.Optimize
		if err := d.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s': %v", calc.Name, err))
		}
	}
	return warnings
}
