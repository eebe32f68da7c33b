package validation

import (
	"fmt"
	"strings"
)

// Result reports whether a set of calculator inputs is acceptable.
type Result struct {
	IsValid  bool     `json:"isValid" yaml:"isValid"`
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Collector accumulates validation errors and warnings.
type Collector struct {
	errors   []string
	warnings []string
}

// Errorf records a validation error.
func (c *Collector) Errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

// Warnf records a warning that does not invalidate the inputs.
func (c *Collector) Warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Required records an error when present is false.
func (c *Collector) Required(name string, present bool) bool {
	if !present {
		c.Errorf("%s is required", name)
	}
	return present
}

// Range records an error when value is outside [lo, hi].
func (c *Collector) Range(name string, value, lo, hi float64) bool {
	if value < lo || value > hi {
		c.Errorf("%s must be between %s and %s", name, formatBound(lo), formatBound(hi))
		return false
	}
	return true
}

// Positive records an error unless value is greater than zero.
func (c *Collector) Positive(name string, value float64) bool {
	if value <= 0 {
		c.Errorf("%s must be greater than 0", name)
		return false
	}
	return true
}

// NonNegative records an error when value is below zero.
func (c *Collector) NonNegative(name string, value float64) bool {
	if value < 0 {
		c.Errorf("%s cannot be negative", name)
		return false
	}
	return true
}

// OneOf records an error unless value is one of allowed.
func (c *Collector) OneOf(name, value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	c.Errorf("%s must be one of: %s", name, strings.Join(allowed, ", "))
	return false
}

// Merge folds another result into the collector.
func (c *Collector) Merge(r Result) {
	c.errors = append(c.errors, r.Errors...)
	c.warnings = append(c.warnings, r.Warnings...)
}

// HasErrors reports whether any error has been recorded.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Result returns the accumulated outcome.
func (c *Collector) Result() Result {
	errs := c.errors
	if errs == nil {
		errs = []string{}
	}
	return Result{
		IsValid:  len(c.errors) == 0,
		Errors:   errs,
		Warnings: c.warnings,
	}
}

func formatBound(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// FormatBound renders a numeric limit without trailing zeros (e.g., 2.5, 100).
func FormatBound(v float64) string {
	return formatBound(v)
}
