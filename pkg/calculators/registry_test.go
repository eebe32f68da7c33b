package calculators

import (
	"encoding/json"
	"testing"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistersEveryCalculator(t *testing.T) {
	registry, err := Default()
	require.NoError(t, err)

	var ids []string
	for _, info := range registry.List() {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []string{
		"debt-service-coverage-ratio",
		"debt-yield-ratio",
		"earthquake-insurance",
		"loan-to-value",
		"mezzanine-financing",
		"mortgage-life",
		"net-operating-income",
		"tax",
	}, ids)
}

func TestExamplesValidateAndCalculate(t *testing.T) {
	registry, err := Default()
	require.NoError(t, err)

	for _, info := range registry.List() {
		calc, ok := registry.Get(info.ID)
		require.True(t, ok)
		require.NotEmpty(t, calc.Examples(), "%s has no examples", info.ID)

		schema, err := calculator.CompileSchema(calc)
		require.NoError(t, err, info.ID)

		for _, ex := range calc.Examples() {
			t.Run(info.ID+"/"+ex.Name, func(t *testing.T) {
				res := calc.Validate(ex.Inputs)
				assert.True(t, res.IsValid, "errors: %v", res.Errors)

				result, err := calc.Calculate(ex.Inputs)
				require.NoError(t, err)
				assert.Equal(t, info.ID, result.Calculator)
				assert.NotEmpty(t, result.Report)

				metrics, err := calculator.Metrics(result.Values)
				require.NoError(t, err)
				assert.NotEmpty(t, metrics)

				raw, err := json.Marshal(ex.Inputs)
				require.NoError(t, err)
				var doc any
				require.NoError(t, json.Unmarshal(raw, &doc))
				assert.NoError(t, schema.Validate(doc))
			})
		}
	}
}

func TestEveryCalculatorDocumentsItself(t *testing.T) {
	registry, err := Default()
	require.NoError(t, err)

	for _, info := range registry.List() {
		calc, _ := registry.Get(info.ID)
		assert.NotEmpty(t, info.Name, info.ID)
		assert.NotEmpty(t, info.Description, info.ID)
		assert.NotEmpty(t, calc.Fields(), info.ID)
		assert.NotEmpty(t, calc.Formulas(), info.ID)
	}
}
