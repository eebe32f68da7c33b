package optimizer

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/calculators/ltv"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"go.uber.org/zap"
)

func newLTV(t *testing.T) calculator.Calculator {
	t.Helper()
	calc, err := ltv.New()
	if err != nil {
		t.Fatalf("failed to build calculator: %v", err)
	}
	return calc
}

func purchase() calculator.Inputs {
	return calculator.Inputs{
		"propertyValue": 500000, "loanAmount": 450000, "loanType": "conventional",
		"creditScore": 720, "interestRate": 6.5, "loanTerm": 30,
	}
}

func TestSeekConvergesOnContinuousField(t *testing.T) {
	runner := NewRunner(zap.NewNop())
	inputs := purchase()

	summary, err := runner.Seek(newLTV(t), inputs, optimization.Directive{
		Field: "loanAmount", Output: "ltv", Target: 80, Min: 100000, Max: 480000,
	})
	if err != nil {
		t.Fatalf("Seek returned error: %v", err)
	}

	if !summary.Converged {
		t.Fatalf("expected convergence, notes: %v", summary.Notes)
	}
	if math.Abs(summary.Value-400000) > 25 {
		t.Errorf("expected loan near 400000, got %.2f", summary.Value)
	}
	if summary.Achieved != 80 {
		t.Errorf("expected achieved LTV 80, got %.4f", summary.Achieved)
	}
	if summary.Original != 450000 {
		t.Errorf("expected original 450000, got %.2f", summary.Original)
	}
	if summary.Iterations == 0 {
		t.Error("expected bisection iterations")
	}
	if summary.Calculator != ltv.ID || summary.Field != "loanAmount" || summary.Output != "ltv" {
		t.Errorf("unexpected summary identity: %+v", summary)
	}
	if inputs["loanAmount"] != 450000 {
		t.Errorf("Seek modified the caller's inputs: %v", inputs["loanAmount"])
	}
}

func TestSeekUnreachableTargetChoosesClosestBound(t *testing.T) {
	summary, err := NewRunner(nil).Seek(newLTV(t), purchase(), optimization.Directive{
		Field: "loanAmount", Output: "ltv", Target: 150, Min: 100000, Max: 600000,
	})
	if err != nil {
		t.Fatalf("Seek returned error: %v", err)
	}
	if summary.Converged {
		t.Fatal("expected no convergence")
	}
	if summary.Value != 600000 || summary.Achieved != 120 {
		t.Errorf("expected the upper bound, got value %.2f achieving %.2f", summary.Value, summary.Achieved)
	}
	if summary.Iterations != 0 {
		t.Errorf("expected no iterations, got %d", summary.Iterations)
	}
	if len(summary.Notes) != 1 || !strings.Contains(summary.Notes[0], "cannot reach 150 for ltv") {
		t.Errorf("unexpected notes: %v", summary.Notes)
	}
}

func TestSeekWholeNumberField(t *testing.T) {
	tests := []struct {
		name      string
		target    float64
		converged bool
		value     float64
	}{
		{name: "Exact payment", target: 2844.31, converged: true, value: 30},
		{name: "Between terms", target: 2900, converged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := NewRunner(nil).Seek(newLTV(t), purchase(), optimization.Directive{
				Field: "loanTerm", Output: "monthlyPayment", Target: tt.target, Min: 10, Max: 40,
			})
			if err != nil {
				t.Fatalf("Seek returned error: %v", err)
			}
			if summary.Value != math.Trunc(summary.Value) {
				t.Errorf("expected a whole number, got %v", summary.Value)
			}
			if summary.Converged != tt.converged {
				t.Fatalf("expected converged=%v, got %+v", tt.converged, summary)
			}
			if tt.converged && summary.Value != tt.value {
				t.Errorf("expected %v, got %v", tt.value, summary.Value)
			}
			if !tt.converged && (len(summary.Notes) == 0 || !strings.Contains(summary.Notes[0], "no value of Loan Term")) {
				t.Errorf("unexpected notes: %v", summary.Notes)
			}
		})
	}
}

func TestSeekNarrowsBoundsToField(t *testing.T) {
	summary, err := NewRunner(nil).Seek(newLTV(t), purchase(), optimization.Directive{
		Field: "creditScore", Output: "annualInsuranceRate", Target: 0.72, Min: 0, Max: 1000,
	})
	if err != nil {
		t.Fatalf("Seek returned error: %v", err)
	}
	if !summary.Converged {
		t.Fatalf("expected convergence, notes: %v", summary.Notes)
	}
	if summary.Value < 680 || summary.Value >= 740 {
		t.Errorf("expected a score in the 680-739 band, got %v", summary.Value)
	}
	if len(summary.Notes) != 1 || summary.Notes[0] != "bounds narrowed to 300 through 850 to fit Credit Score" {
		t.Errorf("unexpected notes: %v", summary.Notes)
	}
}

func TestSeekErrors(t *testing.T) {
	tests := []struct {
		name      string
		directive optimization.Directive
		contains  string
	}{
		{
			name:      "Unknown field",
			directive: optimization.Directive{Field: "downPayment", Output: "ltv", Min: 0, Max: 1},
			contains:  `has no input "downPayment"`,
		},
		{
			name:      "Select field",
			directive: optimization.Directive{Field: "loanType", Output: "ltv", Min: 0, Max: 1},
			contains:  "is not numeric",
		},
		{
			name:      "Text output",
			directive: optimization.Directive{Field: "loanAmount", Output: "riskLevel", Min: 100000, Max: 400000},
			contains:  `output "riskLevel" is not a numeric result`,
		},
		{
			name:      "Rejected candidate",
			directive: optimization.Directive{Field: "secondLoanAmount", Output: "cltv", Target: 100, Min: 0, Max: 1000000},
			contains:  "secondLoanAmount=1000000 rejected",
		},
		{
			name:      "Inverted bounds",
			directive: optimization.Directive{Field: "loanAmount", Output: "ltv", Min: 5, Max: 5},
			contains:  "must be less than maximum",
		},
		{
			name:      "Missing output",
			directive: optimization.Directive{Field: "loanAmount", Min: 1, Max: 5},
			contains:  "requires an output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil).Seek(newLTV(t), purchase(), tt.directive)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error containing %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestDirectiveDefaults(t *testing.T) {
	d := optimization.Directive{Field: " loanAmount ", Output: "ltv", Min: 1, Max: 2}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if d.Field != "loanAmount" {
		t.Errorf("expected trimmed field, got %q", d.Field)
	}
	if d.Tolerance != 0.0001 || d.MaxIterations != 60 {
		t.Errorf("unexpected defaults: tolerance %v, iterations %d", d.Tolerance, d.MaxIterations)
	}
}
