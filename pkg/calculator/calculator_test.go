package calculator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loanInputs struct {
	PropertyValue float64 `mapstructure:"propertyValue"`
	LoanAmount    float64 `mapstructure:"loanAmount"`
	Years         int     `mapstructure:"years"`
	LoanType      string  `mapstructure:"loanType"`
	Insured       bool    `mapstructure:"insured"`
}

type loanOutputs struct {
	LTV      float64 `json:"ltv"`
	Insured  bool    `json:"insured"`
	Schedule []int   `json:"schedule"`
}

func testSpec() Spec[loanInputs, loanOutputs] {
	return Spec[loanInputs, loanOutputs]{
		Info: Info{ID: "test-ltv", Name: "Test LTV", Category: "finance", Description: "test calculator"},
		Fields: []Field{
			Number("propertyValue", "Property value", "USD").Req().AtLeast(1),
			Number("loanAmount", "Loan amount", "USD").Req().AtLeast(0),
			Number("years", "Years", "years").Int().Range(1, 40).WithDefault(30),
			Select("loanType", "Loan type", "conventional", "fha", "va").WithDefault("conventional"),
			Boolean("insured", "Insured").WithDefault(false),
		},
		Rules: []validation.Rule{
			{Expr: "loanAmount <= propertyValue", Message: "Loan amount cannot exceed property value"},
		},
		Validate: func(in loanInputs, c *validation.Collector) {
			if in.LoanType == "va" && !in.Insured {
				c.Errorf("VA loans must be insured")
			}
		},
		Calculate: func(in loanInputs) loanOutputs {
			return loanOutputs{LTV: in.LoanAmount / in.PropertyValue * 100, Insured: in.Insured, Schedule: []int{in.Years}}
		},
		Report: func(in loanInputs, out loanOutputs) string {
			return fmt.Sprintf("# LTV\n\nLTV is %.2f%%.\n", out.LTV)
		},
	}
}

func TestValidate(t *testing.T) {
	calc := MustNew(testSpec())

	tests := []struct {
		name     string
		inputs   Inputs
		valid    bool
		errors   []string
		warnings []string
	}{
		{
			name:   "Valid with defaults",
			inputs: Inputs{"propertyValue": 400000, "loanAmount": 300000},
			valid:  true,
			errors: []string{},
		},
		{
			name:   "Missing required",
			inputs: Inputs{"loanAmount": 300000},
			errors: []string{"Property value is required"},
		},
		{
			name:   "Blank string counts as missing",
			inputs: Inputs{"propertyValue": "  ", "loanAmount": 1},
			errors: []string{"Property value is required"},
		},
		{
			name:   "Not a number",
			inputs: Inputs{"propertyValue": "abc", "loanAmount": 1},
			errors: []string{"Property value must be a valid number"},
		},
		{
			name:   "Numeric strings are coerced",
			inputs: Inputs{"propertyValue": "$400,000", "loanAmount": json.Number("100000"), "years": "15"},
			valid:  true,
			errors: []string{},
		},
		{
			name:   "Below minimum",
			inputs: Inputs{"propertyValue": 0, "loanAmount": 1},
			errors: []string{"Property value must be at least 1"},
		},
		{
			name:   "Above maximum",
			inputs: Inputs{"propertyValue": 10, "loanAmount": 1, "years": 50},
			errors: []string{"Years must be at most 40"},
		},
		{
			name:   "Whole number required",
			inputs: Inputs{"propertyValue": 10, "loanAmount": 1, "years": 12.5},
			errors: []string{"Years must be a whole number"},
		},
		{
			name:   "Invalid option",
			inputs: Inputs{"propertyValue": 10, "loanAmount": 1, "loanType": "jumbo"},
			errors: []string{"Loan type must be one of: conventional, fha, va"},
		},
		{
			name:   "Invalid boolean",
			inputs: Inputs{"propertyValue": 10, "loanAmount": 1, "insured": "maybe"},
			errors: []string{"Insured must be true or false"},
		},
		{
			name:   "Cross-field rule",
			inputs: Inputs{"propertyValue": 100, "loanAmount": 200},
			errors: []string{"Loan amount cannot exceed property value"},
		},
		{
			name:   "Calculator specific check",
			inputs: Inputs{"propertyValue": 100, "loanAmount": 50, "loanType": "va"},
			errors: []string{"VA loans must be insured"},
		},
		{
			name:     "Case-insensitive keys and unknown inputs",
			inputs:   Inputs{"propertyvalue": 100, "LOANAMOUNT": 50, "color": "blue"},
			valid:    true,
			errors:   []string{},
			warnings: []string{`unknown input "color" ignored`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := calc.Validate(tt.inputs)
			assert.Equal(t, tt.valid, res.IsValid)
			if diff := cmp.Diff(tt.errors, res.Errors); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.warnings, res.Warnings); diff != "" {
				t.Errorf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalculate(t *testing.T) {
	calc := MustNew(testSpec())

	res, err := calc.Calculate(Inputs{"propertyValue": 400000, "loanAmount": 300000, "insured": "yes"})
	require.NoError(t, err)
	assert.Equal(t, "test-ltv", res.Calculator)
	out, ok := res.Values.(loanOutputs)
	require.True(t, ok)
	assert.InDelta(t, 75.0, out.LTV, 1e-9)
	assert.True(t, out.Insured)
	assert.Equal(t, []int{30}, out.Schedule)
	assert.True(t, strings.Contains(res.Report, "LTV is 75.00%"))

	_, err = calc.Calculate(Inputs{"propertyValue": 1, "loanAmount": 5})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Loan amount cannot exceed property value"}, verr.Result.Errors)
	assert.Contains(t, err.Error(), "test-ltv: invalid inputs")
}

func TestNewRejectsBadSpecs(t *testing.T) {
	base := testSpec()

	noID := base
	noID.Info.ID = ""
	_, err := New(noID)
	assert.Error(t, err)

	dup := base
	dup.Fields = append([]Field{}, base.Fields...)
	dup.Fields = append(dup.Fields, Number("years", "Years again", ""))
	_, err = New(dup)
	assert.Error(t, err)

	badRule := base
	badRule.Rules = []validation.Rule{{Expr: "missingField > 0.0", Message: "x"}}
	_, err = New(badRule)
	assert.Error(t, err)

	noOptions := base
	noOptions.Fields = []Field{{ID: "kind", Name: "Kind", Type: TypeSelect}}
	_, err = New(noOptions)
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew(noID) })
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	calc := MustNew(testSpec())
	other := testSpec()
	other.Info.ID = "another"

	require.NoError(t, reg.Register(calc))
	require.NoError(t, reg.Register(MustNew(other)))
	assert.Error(t, reg.Register(calc), "duplicate IDs are rejected")
	assert.Error(t, reg.Register(nil))

	got, ok := reg.Get("test-ltv")
	assert.True(t, ok)
	assert.Equal(t, calc, got)
	assert.False(t, reg.Has("missing"))
	assert.Equal(t, 2, reg.Len())

	infos := reg.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "another", infos[0].ID)
	assert.Equal(t, "test-ltv", infos[1].ID)
}

func TestJSONSchema(t *testing.T) {
	calc := MustNew(testSpec())

	raw, err := JSONSchema(calc)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, SchemaURL("test-ltv"), doc["$id"])
	assert.ElementsMatch(t, []any{"propertyValue", "loanAmount"}, doc["required"])

	props := doc["properties"].(map[string]any)
	loanType := props["loanType"].(map[string]any)
	assert.Equal(t, []any{"conventional", "fha", "va"}, loanType["enum"])
	assert.Equal(t, 1.0, props["propertyValue"].(map[string]any)["minimum"])
}

func TestCompileSchemaChecksShapeOnly(t *testing.T) {
	calc := MustNew(testSpec())
	schema, err := CompileSchema(calc)
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload map[string]any
		wantErr bool
	}{
		{name: "Valid", payload: map[string]any{"propertyValue": 400000.0, "loanAmount": "300000", "loanType": "fha"}},
		{name: "Missing required", payload: map[string]any{"loanAmount": 1.0}},
		{name: "Unknown option", payload: map[string]any{"propertyValue": 1.0, "loanAmount": 1.0, "loanType": "jumbo"}},
		{name: "Below minimum", payload: map[string]any{"propertyValue": -5.0, "loanAmount": 1.0}},
		{name: "Extra key", payload: map[string]any{"hoaDues": []any{1.0}}},
		{name: "Object for number", payload: map[string]any{"propertyValue": map[string]any{"value": 1.0}}, wantErr: true},
		{name: "Number for option", payload: map[string]any{"loanType": 2.0}, wantErr: true},
		{name: "List for boolean", payload: map[string]any{"insured": []any{true}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	calc := MustNew(testSpec())
	canonical, unknown := Canonicalize(calc, Inputs{"PropertyValue": 1, "propertyValue": 2, "extra": true})
	assert.Equal(t, Inputs{"propertyValue": 2}, canonical)
	assert.Equal(t, []string{"extra"}, unknown)
}

func TestMetrics(t *testing.T) {
	metrics, err := Metrics(loanOutputs{LTV: 80, Insured: true, Schedule: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"ltv": 80, "insured": 1}, metrics)
	assert.Equal(t, []string{"insured", "ltv"}, MetricNames(metrics))

	v, err := Metric(loanOutputs{LTV: 62.5}, "ltv")
	require.NoError(t, err)
	assert.Equal(t, 62.5, v)

	_, err = Metric(loanOutputs{}, "schedule")
	assert.Error(t, err)

	_, err = Metrics(42)
	assert.Error(t, err)
}
