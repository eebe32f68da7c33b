// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/finance-calculators/internal/batch"
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// FindOutcome finds an outcome by name in the outcomes slice.
// Returns a pointer to the outcome if found, nil otherwise.
func FindOutcome(outcomes []batch.Outcome, name string) *batch.Outcome {
	for i := range outcomes {
		if outcomes[i].Name == name {
			return &outcomes[i]
		}
	}
	return nil
}

// ExampleInputs returns a copy of the inputs of the named example, or nil when
// the calculator has no such example.
func ExampleInputs(c calculator.Calculator, name string) calculator.Inputs {
	for _, ex := range c.Examples() {
		if ex.Name != name {
			continue
		}
		inputs := make(calculator.Inputs, len(ex.Inputs))
		for k, v := range ex.Inputs {
			inputs[k] = v
		}
		return inputs
	}
	return nil
}

// MetricWithin reports the named numeric output of a successful outcome and
// whether it lies within tolerance of want.
func MetricWithin(o *batch.Outcome, name string, want, tolerance float64) (float64, bool) {
	if o == nil || o.Result == nil {
		return 0, false
	}
	got, err := calculator.Metric(o.Result.Values, name)
	if err != nil {
		return 0, false
	}
	return got, mathutil.WithinTolerance(got, want, tolerance)
}
