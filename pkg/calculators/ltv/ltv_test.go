package ltv

import (
	"strings"
	"testing"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchaseInputs() calculator.Inputs {
	return calculator.Inputs{
		"propertyValue": 500000, "loanAmount": 450000, "loanType": Conventional,
		"creditScore": 720, "interestRate": 6.5, "loanTerm": 30,
	}
}

func TestCalculateConventionalPurchase(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)

	res, err := calc.Calculate(purchaseInputs())
	require.NoError(t, err)
	out := res.Values.(Outputs)

	assert.Equal(t, 90.0, out.LTV)
	assert.Equal(t, 90.0, out.CLTV)
	assert.Equal(t, 50000.0, out.Equity)
	assert.Equal(t, 10.0, out.EquityPercentage)
	assert.Equal(t, "Very Poor", out.LTVRating)
	assert.Equal(t, 97.0, out.MaxLTVForProgram)
	assert.False(t, out.ExceedsProgramLimit)
	assert.True(t, out.MortgageInsuranceRequired)
	assert.Equal(t, 0.72, out.AnnualInsuranceRate, "0.6% base with the sub-740 credit load")
	assert.Equal(t, 270.0, out.MonthlyMortgageInsurance)
	assert.Equal(t, 109, out.InsuranceMonths, "first month the balance is at or below 78% of value")
	assert.Equal(t, 29430.0, out.TotalMortgageInsurance)
	assert.Equal(t, 2844.31, out.MonthlyPayment)
	assert.Equal(t, 3114.31, out.TotalMonthlyPayment)
	assert.Equal(t, 400000.0, out.MaxLoanAtTarget)
	assert.Equal(t, 50000.0, out.PaydownToTarget)
	assert.Equal(t, RiskElevated, out.RiskLevel)

	assert.Equal(t, []string{
		"Putting down another $50,000.00 brings LTV to 80% and removes mortgage insurance.",
		"Raising the credit score to 740 or above lowers the mortgage insurance premium.",
		"Reduce the loan by $50,000.00 to reach the 80.00% target LTV.",
	}, out.Recommendations)
}

func TestFHAInsuranceForLifeOfLoan(t *testing.T) {
	out := Calculate(Inputs{
		PropertyValue: 300000, LoanAmount: 289500, LoanType: FHA, CreditScore: 640,
		TargetLTV: 80, InterestRate: 6.25, LoanTerm: 30,
	})
	assert.Equal(t, 96.5, out.LTV)
	assert.False(t, out.ExceedsProgramLimit, "96.5% is exactly the FHA maximum")
	assert.True(t, out.MortgageInsuranceRequired)
	assert.Equal(t, 0.55, out.AnnualInsuranceRate)
	assert.Equal(t, 132.69, out.MonthlyMortgageInsurance)
	assert.Equal(t, 360, out.InsuranceMonths)
	assert.Equal(t, 47768.4, out.TotalMortgageInsurance)
	assert.Equal(t, RiskHigh, out.RiskLevel)
	assert.Equal(t, 49500.0, out.PaydownToTarget)
}

func TestFHAShortInsurancePeriod(t *testing.T) {
	out := Calculate(Inputs{PropertyValue: 300000, LoanAmount: 255000, LoanType: FHA, InterestRate: 6, LoanTerm: 30})
	assert.Equal(t, 85.0, out.LTV)
	assert.Equal(t, 132, out.InsuranceMonths)
}

func TestSecondLienWithinTarget(t *testing.T) {
	out := Calculate(Inputs{
		PropertyValue: 750000, LoanAmount: 420000, SecondLoanAmount: 80000, LoanType: Conventional,
		CreditScore: 780, TargetLTV: 60, InterestRate: 6, LoanTerm: 30,
	})
	assert.Equal(t, 56.0, out.LTV)
	assert.Equal(t, 66.67, out.CLTV)
	assert.Equal(t, 250000.0, out.Equity)
	assert.Equal(t, "Excellent", out.LTVRating)
	assert.False(t, out.MortgageInsuranceRequired)
	assert.Zero(t, out.MonthlyMortgageInsurance)
	assert.Zero(t, out.InsuranceMonths)
	assert.Equal(t, 450000.0, out.MaxLoanAtTarget)
	assert.Zero(t, out.PaydownToTarget)
	assert.Equal(t, RiskModerate, out.RiskLevel)
	assert.Equal(t, []string{"Leverage is within program and target limits."}, out.Recommendations)
}

func TestVAFullFinancing(t *testing.T) {
	out := Calculate(Inputs{PropertyValue: 400000, LoanAmount: 400000, LoanType: VA, TargetLTV: 100, InterestRate: 6, LoanTerm: 30})
	assert.Equal(t, 100.0, out.LTV)
	assert.False(t, out.ExceedsProgramLimit)
	assert.False(t, out.MortgageInsuranceRequired)
	assert.Zero(t, out.Equity)
	assert.Equal(t, RiskHigh, out.RiskLevel)
}

func TestJumboOverLimit(t *testing.T) {
	out := Calculate(Inputs{PropertyValue: 1000000, LoanAmount: 950000, LoanType: Jumbo, CreditScore: 760, TargetLTV: 80, InterestRate: 7, LoanTerm: 30})
	assert.True(t, out.ExceedsProgramLimit)
	assert.False(t, out.MortgageInsuranceRequired)
	require.NotEmpty(t, out.Recommendations)
	assert.Equal(t, "Combined LTV of 95.00% exceeds the 90.00% maximum for Jumbo loans; reduce total borrowing by $50,000.00.",
		out.Recommendations[0])
}

func TestInsuranceRate(t *testing.T) {
	tests := []struct {
		loanType string
		ltv      float64
		score    int
		expected float64
	}{
		{Conventional, 96, 760, 1.2},
		{Conventional, 96, 650, 1.8},
		{Conventional, 92, 700, 1.08},
		{Conventional, 82, 760, 0.35},
		{Conventional, 80, 600, 0},
		{FHA, 70, 600, 0.55},
		{USDA, 100, 700, 0.35},
		{VA, 100, 700, 0},
		{Jumbo, 89, 700, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, InsuranceRate(tt.loanType, tt.ltv, tt.score), 1e-9,
			"%s at %v with %d", tt.loanType, tt.ltv, tt.score)
	}
}

func TestRiskLevel(t *testing.T) {
	assert.Equal(t, RiskLow, RiskLevel(60))
	assert.Equal(t, RiskModerate, RiskLevel(60.01))
	assert.Equal(t, RiskModerate, RiskLevel(80))
	assert.Equal(t, RiskElevated, RiskLevel(90))
	assert.Equal(t, RiskHigh, RiskLevel(90.01))
}

func TestValidate(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)

	tests := []struct {
		name     string
		modify   func(calculator.Inputs)
		errors   []string
		warnings []string
	}{
		{name: "Valid", modify: func(calculator.Inputs) {}},
		{
			name:   "Liens above 125% of value",
			modify: func(in calculator.Inputs) { in["secondLoanAmount"] = 200000 },
			errors: []string{"Total liens cannot exceed 125% of property value"},
		},
		{
			name:     "Underwater but allowed",
			modify:   func(in calculator.Inputs) { in["secondLoanAmount"] = 100000 },
			warnings: []string{"Total liens exceed the property value; equity is negative"},
		},
		{
			name:   "Missing property value",
			modify: func(in calculator.Inputs) { delete(in, "propertyValue") },
			errors: []string{"Property Value is required"},
		},
		{
			name:   "Credit score out of range",
			modify: func(in calculator.Inputs) { in["creditScore"] = 900 },
			errors: []string{"Credit Score must be at most 850"},
		},
		{
			name:   "Unknown loan type",
			modify: func(in calculator.Inputs) { in["loanType"] = "hard-money" },
			errors: []string{"Loan Type must be one of: conventional, fha, va, usda, jumbo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := purchaseInputs()
			tt.modify(in)
			res := calc.Validate(in)
			assert.Equal(t, len(tt.errors) == 0, res.IsValid)
			if len(tt.errors) > 0 {
				assert.Equal(t, tt.errors, res.Errors)
			}
			for _, w := range tt.warnings {
				assert.Contains(t, res.Warnings, w)
			}
		})
	}
}

func TestReport(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)
	res, err := calc.Calculate(purchaseInputs())
	require.NoError(t, err)

	for _, want := range []string{
		"# Loan-to-Value Analysis",
		"A $450,000.00 Conventional loan against a $500,000.00 property is **90.00%** LTV (90.00% CLTV).",
		"| Maximum LTV | 97.00% |",
		"| Monthly Premium | $270.00 |",
		"| Total Monthly Payment | $3,114.31 |",
		"## Recommendations",
	} {
		assert.True(t, strings.Contains(res.Report, want), "report missing %q", want)
	}
}

func TestExamplesCalculate(t *testing.T) {
	calc, err := New()
	require.NoError(t, err)
	for _, ex := range calc.Examples() {
		t.Run(ex.Name, func(t *testing.T) {
			_, err := calc.Calculate(ex.Inputs)
			require.NoError(t, err)
		})
	}
}
