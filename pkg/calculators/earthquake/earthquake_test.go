package earthquake

import (
	"strings"
	"testing"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func californiaHome() calculator.Inputs {
	return calculator.Inputs{
		"propertyValue": 500000, "location": "CA", "seismicZone": "zone-3", "buildingType": "wood-frame",
		"buildingAge": 30, "stories": 2, "squareFootage": 2500, "foundationType": "crawlspace",
		"soilType": "soft-soil", "retrofitStatus": "none", "coverageType": "building-contents",
		"deductiblePercentage": 15, "coverageLimit": 400000, "contentsValue": 50000,
		"businessInterruption": "no", "policyType": "standalone", "claimsHistory": "none",
	}
}

func TestCalculateCaliforniaHome(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)

	res, err := calc.Calculate(californiaHome())
	require.NoError(t, err)
	out := res.Values.(Outputs)

	assert.Equal(t, 8.4084, out.BaseRate)
	assert.InDelta(t, 3228.83, out.AnnualPremium, 0.005)
	assert.InDelta(t, 269.07, out.MonthlyPremium, 0.005)
	assert.Equal(t, 60000.0, out.DeductibleAmount)
	assert.InDelta(t, 8.07, out.PremiumPerThousand, 0.005)
	assert.InDelta(t, 1.29, out.PremiumPerSquareFoot, 0.005)
	assert.Zero(t, out.BusinessInterruption)

	assert.Equal(t, 77, out.RiskScore)
	assert.Equal(t, RiskHigh, out.SeismicRiskLevel)
	assert.Equal(t, 3.9, out.ClaimProbability)
	assert.InDelta(t, 11700.0, out.ExpectedLoss, 0.005)

	assert.InDelta(t, 96864.77, out.ThirtyYearPremiums, 0.005)
	assert.Equal(t, 300000.0, out.PotentialLoss)
	assert.Equal(t, 32.3, out.BreakEvenProbability)
	assert.False(t, out.CostEffective)

	require.Len(t, out.CoverageBreakdown, 2)
	assert.Equal(t, CoverageLine{Name: "Contents", Amount: 50000}, out.CoverageBreakdown[1])
	assert.Len(t, out.PremiumFactors, 11)

	assert.Contains(t, out.Recommendations, "Earthquake coverage is strongly recommended for this high risk property")
	assert.Contains(t, out.Recommendations, "A seismic retrofit can reduce premiums by 20-40% on older buildings; consult a structural engineer")
	assert.Contains(t, out.MitigationMeasures, "Bolt the frame to the foundation and brace cripple walls")
	assert.Contains(t, out.MitigationMeasures, "Commission a geotechnical assessment for liquefaction risk")
}

func TestBusinessInterruptionAddsPremium(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)

	in := californiaHome()
	base, err := calc.Calculate(in)
	require.NoError(t, err)

	in["businessInterruption"] = true
	in["annualIncome"] = 100000
	withBI, err := calc.Calculate(in)
	require.NoError(t, err)

	bi := withBI.Values.(Outputs).BusinessInterruption
	assert.InDelta(t, 420.42, bi, 0.005)
	assert.InDelta(t, base.Values.(Outputs).AnnualPremium+bi, withBI.Values.(Outputs).AnnualPremium, 0.01)
}

func TestValidate(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(calculator.Inputs)
		errors []string
	}{
		{
			name:   "Valid",
			modify: func(calculator.Inputs) {},
		},
		{
			name:   "Property value too low",
			modify: func(in calculator.Inputs) { in["propertyValue"] = 25000 },
			errors: []string{"Property Value must be at least 50000"},
		},
		{
			name:   "Building too old",
			modify: func(in calculator.Inputs) { in["buildingAge"] = 250 },
			errors: []string{"Building Age must be at most 200"},
		},
		{
			name:   "Coverage limit over 150% of value",
			modify: func(in calculator.Inputs) { in["coverageLimit"] = 800000 },
			errors: []string{"Coverage limit should not exceed 150% of property value"},
		},
		{
			name: "Zone 4 outside high-risk states",
			modify: func(in calculator.Inputs) {
				in["location"] = "TX"
				in["seismicZone"] = "zone-4"
			},
			errors: []string{"Zone 4 seismic risk is typically only found in high-risk states"},
		},
		{
			name:   "Business interruption without income",
			modify: func(in calculator.Inputs) { in["businessInterruption"] = "yes" },
			errors: []string{"Annual income is required when business interruption coverage is selected"},
		},
		{
			name:   "Unknown soil",
			modify: func(in calculator.Inputs) { in["soilType"] = "sand" },
			errors: []string{"Soil Type must be one of: rock, hard-soil, soft-soil, fill"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := californiaHome()
			tt.modify(in)
			res := calc.Validate(in)
			assert.Equal(t, len(tt.errors) == 0, res.IsValid)
			if len(tt.errors) > 0 {
				assert.Equal(t, tt.errors, res.Errors)
			}
		})
	}
}

func TestRiskScoreCap(t *testing.T) {
	worst := Inputs{
		SeismicZone: "zone-4", BuildingType: "manufactured", BuildingAge: 120,
		SoilType: "fill", FoundationType: "pier-beam", RetrofitStatus: "none",
	}
	assert.Equal(t, 100, RiskScore(worst))
	assert.Equal(t, RiskVeryHigh, RiskLevel(RiskScore(worst)))

	best := Inputs{
		SeismicZone: "zone-1", BuildingType: "steel-frame", BuildingAge: 2,
		SoilType: "rock", FoundationType: "post-tension", RetrofitStatus: "complete",
	}
	assert.Equal(t, 20, RiskScore(best))
	assert.Equal(t, RiskLow, RiskLevel(RiskScore(best)))
	assert.Equal(t, RiskVeryLow, RiskLevel(19))
}

func TestClaimProbabilityCap(t *testing.T) {
	in := Inputs{SeismicZone: "zone-4", BuildingType: "manufactured", BuildingAge: 100, RetrofitStatus: "none"}
	assert.Equal(t, 20.0, ClaimProbability(in))
	assert.LessOrEqual(t, ClaimProbability(Inputs{SeismicZone: "zone-4", BuildingType: "manufactured", BuildingAge: 100}), 25.0)
}

func TestCostEffectiveNeedsProbabilityAboveBreakEven(t *testing.T) {
	tests := []struct {
		probability, breakEven float64
		expected               bool
	}{
		{40, 32.3, true},
		{32.3, 32.3, false},
		{0, 0, false},
		{12, 32.3, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CostEffective(tt.probability, tt.breakEven), "%v vs %v", tt.probability, tt.breakEven)
	}
}

func TestFactorLadders(t *testing.T) {
	assert.Equal(t, 0.8, AgeFactor(5))
	assert.Equal(t, 1.0, AgeFactor(10))
	assert.Equal(t, 2.0, AgeFactor(75))
	assert.Equal(t, 1.4, DeductibleFactor(5))
	assert.Equal(t, 1.0, DeductibleFactor(10))
	assert.Equal(t, 0.6, DeductibleFactor(25))
	assert.Equal(t, 1.5, LocationFactor("CA"))
	assert.Equal(t, 0.5, LocationFactor("ZZ"))
}

func TestReport(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)
	res, err := calc.Calculate(californiaHome())
	require.NoError(t, err)

	for _, want := range []string{
		"# Earthquake Insurance Analysis",
		"| Seismic Zone | Zone 3 |",
		"| Annual Premium | $3,228.83 |",
		"| Risk Score | 77/100 |",
		"Combined base rate: 8.4084 per $1,000 of coverage.",
		"## Mitigation",
	} {
		assert.True(t, strings.Contains(res.Report, want), "report missing %q", want)
	}
}

func TestExamplesCalculate(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)
	for _, ex := range calc.Examples() {
		t.Run(ex.Name, func(t *testing.T) {
			res, err := calc.Calculate(ex.Inputs)
			require.NoError(t, err)
			assert.Positive(t, res.Values.(Outputs).AnnualPremium)
		})
	}
}
