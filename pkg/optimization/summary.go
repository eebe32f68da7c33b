// Package optimization provides shared data structures for goal-seek
// directives and their results.
package optimization

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/constants"
)

// Directive asks for the value of one numeric input that drives one numeric
// output to a target.
type Directive struct {
	Field         string  `yaml:"field" json:"field" mapstructure:"field"`
	Output        string  `yaml:"output" json:"output" mapstructure:"output"`
	Target        float64 `yaml:"target" json:"target" mapstructure:"target"`
	Min           float64 `yaml:"min" json:"min" mapstructure:"min"`
	Max           float64 `yaml:"max" json:"max" mapstructure:"max"`
	Tolerance     float64 `yaml:"tolerance,omitempty" json:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int     `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize trims names and applies the default tolerance and iteration cap.
func (d *Directive) Normalize() {
	if d == nil {
		return
	}
	d.Field = strings.TrimSpace(d.Field)
	d.Output = strings.TrimSpace(d.Output)
	if d.Tolerance <= 0 {
		d.Tolerance = constants.DefaultOptimizerTolerance
	}
	if d.MaxIterations <= 0 {
		d.MaxIterations = constants.DefaultOptimizerIterations
	}
}

// Validate normalizes the directive and returns an error when it cannot run.
func (d *Directive) Validate() error {
	if d == nil {
		return fmt.Errorf("optimizer directive cannot be nil")
	}
	d.Normalize()
	if d.Field == "" {
		return fmt.Errorf("optimizer requires an input field")
	}
	if d.Output == "" {
		return fmt.Errorf("optimizer requires an output to target")
	}
	if d.Min >= d.Max {
		return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", d.Min, d.Max)
	}
	return nil
}

// Summary captures the result of a single goal-seek directive.
type Summary struct {
	Calculator string   `json:"calculator" yaml:"calculator"`
	Field      string   `json:"field" yaml:"field"`
	Output     string   `json:"output" yaml:"output"`
	Original   float64  `json:"original" yaml:"original"`
	Value      float64  `json:"value" yaml:"value"`
	Target     float64  `json:"target" yaml:"target"`
	Achieved   float64  `json:"achieved" yaml:"achieved"`
	Iterations int      `json:"iterations" yaml:"iterations"`
	Converged  bool     `json:"converged" yaml:"converged"`
	Notes      []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}
