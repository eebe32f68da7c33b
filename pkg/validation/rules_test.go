package validation

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loanVars = map[string]VarKind{
	"loanAmount":    Double,
	"propertyValue": Double,
	"loanType":      String,
	"insured":       Bool,
}

func TestCompileRules(t *testing.T) {
	rs, err := CompileRules(loanVars, []Rule{
		{Expr: "loanAmount <= propertyValue", Message: "Loan amount cannot exceed property value"},
		{Expr: `loanType != "va" || insured`, Message: "VA loans must be insured"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())

	failed, err := rs.Evaluate(map[string]any{
		"loanAmount":    450000.0,
		"propertyValue": 400000.0,
		"loanType":      "va",
		"insured":       false,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Loan amount cannot exceed property value", "VA loans must be insured"}, failed)

	failed, err = rs.Evaluate(map[string]any{
		"loanAmount":    300000.0,
		"propertyValue": 400000.0,
		"loanType":      "conventional",
	})
	require.NoError(t, err)
	assert.Empty(t, failed)
}

func TestCompileRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"Syntax error", Rule{Expr: "loanAmount <=", Message: "bad"}},
		{"Unknown variable", Rule{Expr: "downPayment > 0.0", Message: "bad"}},
		{"Non-boolean result", Rule{Expr: "loanAmount * 2.0", Message: "bad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileRules(loanVars, []Rule{tt.rule})
			assert.Error(t, err)
		})
	}
}

func TestNilRuleSet(t *testing.T) {
	var rs *RuleSet
	failed, err := rs.Evaluate(map[string]any{"x": 1.0})
	assert.NoError(t, err)
	assert.Empty(t, failed)
	assert.Equal(t, 0, rs.Len())
}

func TestRuleMatchesGoComparison(t *testing.T) {
	rs, err := CompileRules(loanVars, []Rule{
		{Expr: "loanAmount <= propertyValue * 1.25", Message: "over"},
	})
	require.NoError(t, err)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rule agrees with direct comparison", prop.ForAll(
		func(loan, value float64) bool {
			failed, err := rs.Evaluate(map[string]any{"loanAmount": loan, "propertyValue": value})
			if err != nil {
				return false
			}
			expectFail := !(loan <= value*1.25)
			return expectFail == (len(failed) == 1)
		},
		gen.Float64Range(0, 1e8),
		gen.Float64Range(1, 1e8),
	))

	properties.TestingRun(t)
}
