package validation

import "fmt"

// ConfigValidator performs batch configuration validation. It reports
// warnings for problems that do not prevent the remaining calculations from running.
type ConfigValidator struct {
	Calculations []CalculationConfig
	// Known reports whether a calculator ID is registered. A nil Known skips
	// the lookup.
	Known func(id string) bool
}

// CalculationConfig is the subset of a configured calculation that is validated.
type CalculationConfig struct {
	Name       string
	Calculator string
	Disabled   bool
	InputCount int
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string
	seen := make(map[string]int)

	for i, calc := range cv.Calculations {
		if calc.Disabled {
			continue
		}

		label := calc.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			warnings = append(warnings, fmt.Sprintf("Calculation %s has no name", label))
		} else {
			seen[calc.Name]++
			if seen[calc.Name] == 2 {
				warnings = append(warnings, fmt.Sprintf("Calculation name '%s' is used more than once", calc.Name))
			}
		}

		if calc.Calculator == "" {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' does not name a calculator", label))
		} else if cv.Known != nil && !cv.Known(calc.Calculator) {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' references unknown calculator '%s'", label, calc.Calculator))
		}

		if calc.InputCount == 0 {
			warnings = append(warnings, fmt.Sprintf("Calculation '%s' has no inputs", label))
		}
	}

	return warnings
}
