package testutil

import (
	"testing"

	"github.com/iwvelando/finance-calculators/internal/batch"
	"github.com/iwvelando/finance-calculators/pkg/calculators/ltv"
)

func TestFindOutcome(t *testing.T) {
	outcomes := []batch.Outcome{
		{Name: "Outcome A", Calculator: "tax"},
		{Name: "Outcome B", Calculator: "loan-to-value"},
		{Name: "Another Outcome", Calculator: "mortgage-life"},
	}

	tests := []struct {
		name           string
		searchName     string
		expectFound    bool
		expectedCalcID string
	}{
		{
			name:           "Find existing outcome A",
			searchName:     "Outcome A",
			expectFound:    true,
			expectedCalcID: "tax",
		},
		{
			name:           "Find outcome with longer name",
			searchName:     "Another Outcome",
			expectFound:    true,
			expectedCalcID: "mortgage-life",
		},
		{
			name:        "Search for non-existent outcome",
			searchName:  "Non-existent",
			expectFound: false,
		},
		{
			name:        "Search with empty name",
			searchName:  "",
			expectFound: false,
		},
		{
			name:        "Case sensitive search",
			searchName:  "outcome a",
			expectFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindOutcome(outcomes, tt.searchName)

			if tt.expectFound {
				if result == nil {
					t.Errorf("Expected to find outcome %q, but got nil", tt.searchName)
					return
				}
				if result.Calculator != tt.expectedCalcID {
					t.Errorf("Expected calculator %s, got %s", tt.expectedCalcID, result.Calculator)
				}
			} else if result != nil {
				t.Errorf("Expected nil for outcome %q, but got %+v", tt.searchName, result)
			}
		})
	}
}

func TestFindOutcomeReturnsPointerIntoSlice(t *testing.T) {
	outcomes := []batch.Outcome{{Name: "Original"}}

	result := FindOutcome(outcomes, "Original")
	if result == nil {
		t.Fatal("Expected to find outcome")
	}
	result.Error = "modified"

	if outcomes[0].Error != "modified" {
		t.Error("FindOutcome should return a pointer to the original slice element")
	}
}

func TestFindOutcomeEmptySlice(t *testing.T) {
	if result := FindOutcome(nil, "Any"); result != nil {
		t.Errorf("Expected nil for nil slice, got %+v", result)
	}
}

func TestExampleInputs(t *testing.T) {
	calc, err := ltv.New()
	if err != nil {
		t.Fatalf("failed to build calculator: %v", err)
	}
	name := calc.Examples()[0].Name

	inputs := ExampleInputs(calc, name)
	if inputs == nil {
		t.Fatalf("Expected inputs for example %q", name)
	}
	inputs["loanAmount"] = 1

	if calc.Examples()[0].Inputs["loanAmount"] == 1 {
		t.Error("ExampleInputs should return a copy")
	}
	if ExampleInputs(calc, "No such example") != nil {
		t.Error("Expected nil for unknown example")
	}
}

func TestMetricWithin(t *testing.T) {
	calc, err := ltv.New()
	if err != nil {
		t.Fatalf("failed to build calculator: %v", err)
	}
	res, err := calc.Calculate(map[string]any{"propertyValue": 500000, "loanAmount": 400000})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	outcome := &batch.Outcome{Name: "Purchase", Result: res}

	tests := []struct {
		name      string
		outcome   *batch.Outcome
		metric    string
		want      float64
		tolerance float64
		wantOK    bool
	}{
		{name: "Exact", outcome: outcome, metric: "ltv", want: 80, tolerance: 0.001, wantOK: true},
		{name: "Outside tolerance", outcome: outcome, metric: "ltv", want: 79, tolerance: 0.5, wantOK: false},
		{name: "Unknown metric", outcome: outcome, metric: "nope", want: 0, tolerance: 1, wantOK: false},
		{name: "Failed outcome", outcome: &batch.Outcome{Name: "Broken"}, metric: "ltv", want: 80, tolerance: 1, wantOK: false},
		{name: "Nil outcome", outcome: nil, metric: "ltv", want: 80, tolerance: 1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MetricWithin(tt.outcome, tt.metric, tt.want, tt.tolerance)
			if ok != tt.wantOK {
				t.Errorf("MetricWithin() = (%v, %v), want ok %v", got, ok, tt.wantOK)
			}
		})
	}
}
