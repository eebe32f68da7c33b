package batch

import (
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/calculators"
	"github.com/iwvelando/finance-calculators/pkg/calculators/ltv"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func registry(t *testing.T) *calculator.Registry {
	t.Helper()
	r, err := calculators.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	return r
}

func home() calculator.Inputs {
	return calculator.Inputs{"propertyValue": 500000, "loanAmount": 450000, "creditScore": 720}
}

func TestRun(t *testing.T) {
	conf := config.Configuration{
		Calculations: []config.Calculation{
			{Name: "Purchase", Calculator: ltv.ID, Inputs: home()},
			{Name: "Skipped", Calculator: ltv.ID, Disabled: true, Inputs: home()},
			{Name: "Mystery", Calculator: "crystal-ball", Inputs: home()},
			{Name: "Underwater", Calculator: ltv.ID, Inputs: calculator.Inputs{"propertyValue": 100000, "loanAmount": 200000}},
		},
	}

	core, logs := observer.New(zapcore.InfoLevel)
	outcomes, err := Run(zap.New(core), registry(t), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}

	tests := []struct {
		name      string
		succeeded bool
		error     string
	}{
		{name: "Purchase", succeeded: true},
		{name: "Mystery", error: `unknown calculator "crystal-ball"`},
		{name: "Underwater", error: "Total liens cannot exceed 125% of property value"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := outcomes[i]
			if o.Name != tt.name {
				t.Fatalf("expected outcome %q, got %q", tt.name, o.Name)
			}
			if o.Succeeded() != tt.succeeded {
				t.Errorf("Succeeded() = %v, want %v", o.Succeeded(), tt.succeeded)
			}
			if tt.error != "" && !strings.Contains(o.Error, tt.error) {
				t.Errorf("expected error containing %q, got %q", tt.error, o.Error)
			}
		})
	}

	if outcomes[2].Validation.IsValid {
		t.Error("expected the rejected validation result to be kept")
	}
	if got := Failed(outcomes); got != 2 {
		t.Errorf("Failed() = %d, want 2", got)
	}
	if logs.FilterMessage("calculation failed").Len() != 2 {
		t.Errorf("expected 2 failure warnings, got %d", logs.FilterMessage("calculation failed").Len())
	}
	summary := logs.FilterMessage("batch run complete").All()
	if len(summary) != 1 || summary[0].ContextMap()["failed"] != int64(2) {
		t.Errorf("unexpected summary log: %+v", summary)
	}
}

func TestRunAppliesOptimizedValue(t *testing.T) {
	inputs := calculator.Inputs{"propertyvalue": 500000, "loanamount": 450000}
	conf := config.Configuration{
		Calculations: []config.Calculation{{
			Name: "Avoid insurance", Calculator: ltv.ID, Inputs: inputs,
			Optimize: &optimization.Directive{Field: "loanAmount", Output: "ltv", Target: 80, Min: 100000, Max: 480000},
		}},
	}

	outcomes, err := Run(nil, registry(t), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	o := outcomes[0]
	if !o.Succeeded() {
		t.Fatalf("expected success, got %q", o.Error)
	}
	if o.Optimization == nil || !o.Optimization.Converged {
		t.Fatalf("expected a converged optimization, got %+v", o.Optimization)
	}
	if _, stale := o.Inputs["loanamount"]; stale {
		t.Error("expected the case-folded key to be replaced")
	}
	if math.Abs(o.Inputs["loanAmount"].(float64)-400000) > 25 {
		t.Errorf("expected optimized loan near 400000, got %v", o.Inputs["loanAmount"])
	}
	if inputs["loanamount"] != 450000 {
		t.Error("Run modified the configured inputs")
	}

	out := o.Result.Values.(ltv.Outputs)
	if out.LTV != 80 {
		t.Errorf("expected LTV 80, got %v", out.LTV)
	}
	if out.MortgageInsuranceRequired {
		t.Error("expected no mortgage insurance at 80% LTV")
	}
}

func TestRunOptimizationFailure(t *testing.T) {
	conf := config.Configuration{
		Calculations: []config.Calculation{{
			Name: "Bad field", Calculator: ltv.ID, Inputs: home(),
			Optimize: &optimization.Directive{Field: "loanType", Output: "ltv", Target: 80, Min: 0, Max: 1},
		}},
	}
	outcomes, err := Run(nil, registry(t), conf)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcomes[0].Succeeded() || !strings.HasPrefix(outcomes[0].Error, "optimization failed:") {
		t.Errorf("unexpected outcome: %+v", outcomes[0])
	}
}

func TestRunRequiresRegistry(t *testing.T) {
	if _, err := Run(nil, nil, config.Configuration{}); err == nil {
		t.Error("expected an error without a registry")
	}
}
