// Package debtyield implements the debt yield calculator used by commercial
// lenders to size loans independently of interest rate and amortization.
package debtyield

import (
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "debt-yield-ratio"

// Risk levels by yield buffer.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// Adjustments in percentage points added to the lender's required yield.
var (
	creditAdjustments = map[string]float64{
		"investment-grade":     0,
		"non-investment-grade": 1,
		"speculative":          2,
		"unrated":              1.5,
	}
	marketAdjustments = map[string]float64{
		"strong":    -0.5,
		"stable":    0,
		"weak":      1,
		"declining": 2,
	}
)

var sensitivitySteps = []float64{-20, -10, 0, 10, 20}

// Inputs are the property income and loan request.
type Inputs struct {
	PropertyType       string  `mapstructure:"propertyType" json:"propertyType"`
	GrossRentalIncome  float64 `mapstructure:"grossRentalIncome" json:"grossRentalIncome"`
	OtherIncome        float64 `mapstructure:"otherIncome" json:"otherIncome"`
	VacancyRate        float64 `mapstructure:"vacancyRate" json:"vacancyRate"`
	OperatingExpenses  float64 `mapstructure:"operatingExpenses" json:"operatingExpenses"`
	LoanAmount         float64 `mapstructure:"loanAmount" json:"loanAmount"`
	PropertyValue      float64 `mapstructure:"propertyValue" json:"propertyValue"`
	RequiredDebtYield  float64 `mapstructure:"requiredDebtYield" json:"requiredDebtYield"`
	InterestRate       float64 `mapstructure:"interestRate" json:"interestRate"`
	AmortizationPeriod int     `mapstructure:"amortizationPeriod" json:"amortizationPeriod"`
	TenantCreditRating string  `mapstructure:"tenantCreditRating" json:"tenantCreditRating"`
	MarketConditions   string  `mapstructure:"marketConditions" json:"marketConditions"`
}

// SensitivityRow is the yield at one NOI change.
type SensitivityRow struct {
	NOIChange          float64 `json:"noiChange"`
	NetOperatingIncome float64 `json:"netOperatingIncome"`
	DebtYield          float64 `json:"debtYield"`
	MaxLoanAmount      float64 `json:"maxLoanAmount"`
	MeetsRequirement   bool    `json:"meetsRequirement"`
}

// Outputs are the yield metrics.
type Outputs struct {
	VacancyLoss              float64          `json:"vacancyLoss"`
	EffectiveGrossIncome     float64          `json:"effectiveGrossIncome"`
	NetOperatingIncome       float64          `json:"netOperatingIncome"`
	DebtYield                float64          `json:"debtYield"`
	CreditAdjustment         float64          `json:"creditAdjustment"`
	MarketAdjustment         float64          `json:"marketAdjustment"`
	AdjustedRequiredYield    float64          `json:"adjustedRequiredYield"`
	MeetsRequirement         bool             `json:"meetsRequirement"`
	YieldBuffer              float64          `json:"yieldBuffer"`
	MaxLoanAmount            float64          `json:"maxLoanAmount"`
	AdditionalCapacity       float64          `json:"additionalCapacity"`
	MinimumRequiredNOI       float64          `json:"minimumRequiredNOI"`
	LoanToValue              float64          `json:"loanToValue"`
	CapRate                  float64          `json:"capRate"`
	AnnualDebtService        float64          `json:"annualDebtService"`
	DSCR                     float64          `json:"dscr"`
	CashFlowAfterDebtService float64          `json:"cashFlowAfterDebtService"`
	RiskLevel                string           `json:"riskLevel"`
	LenderRiskScore          float64          `json:"lenderRiskScore"`
	Sensitivity              []SensitivityRow `json:"sensitivity"`
}

// Calculate computes the debt yield analysis.
func Calculate(in Inputs) Outputs {
	var out Outputs

	income := in.GrossRentalIncome + in.OtherIncome
	vacancy := mathutil.ApplyPercentage(income, in.VacancyRate)
	egi := income - vacancy
	noi := egi - in.OperatingExpenses
	out.VacancyLoss = mathutil.Round(vacancy)
	out.EffectiveGrossIncome = mathutil.Round(egi)
	out.NetOperatingIncome = mathutil.Round(noi)

	yield := mathutil.CalculatePercentage(noi, in.LoanAmount)
	out.DebtYield = mathutil.Round(yield)

	credit := creditAdjustments[in.TenantCreditRating]
	market := marketAdjustments[in.MarketConditions]
	adjusted := in.RequiredDebtYield + credit + market
	out.CreditAdjustment = credit
	out.MarketAdjustment = market
	out.AdjustedRequiredYield = mathutil.Round(adjusted)
	out.MeetsRequirement = yield >= adjusted

	buffer := yield - adjusted
	out.YieldBuffer = mathutil.Round(buffer)
	out.MaxLoanAmount = mathutil.Round(maxLoan(noi, adjusted))
	out.AdditionalCapacity = mathutil.Round(out.MaxLoanAmount - in.LoanAmount)
	out.MinimumRequiredNOI = mathutil.Round(mathutil.ApplyPercentage(in.LoanAmount, adjusted))

	out.LoanToValue = mathutil.Round(mathutil.CalculatePercentage(in.LoanAmount, in.PropertyValue))
	out.CapRate = mathutil.Round(mathutil.CalculatePercentage(noi, in.PropertyValue))

	ads := loans.AnnualDebtService(in.LoanAmount, in.InterestRate, in.AmortizationPeriod*constants.MonthsPerYear)
	out.AnnualDebtService = mathutil.Round(ads)
	out.DSCR = mathutil.Round(mathutil.SafeDivide(noi, ads))
	out.CashFlowAfterDebtService = mathutil.Round(noi - ads)

	out.RiskLevel = RiskLevel(buffer)
	out.LenderRiskScore = mathutil.Round(LenderRiskScore(buffer, credit, market))

	out.Sensitivity = make([]SensitivityRow, 0, len(sensitivitySteps))
	for _, step := range sensitivitySteps {
		shifted := noi * (1 + step/constants.PercentageMultiplier)
		y := mathutil.CalculatePercentage(shifted, in.LoanAmount)
		out.Sensitivity = append(out.Sensitivity, SensitivityRow{
			NOIChange:          step,
			NetOperatingIncome: mathutil.Round(shifted),
			DebtYield:          mathutil.Round(y),
			MaxLoanAmount:      mathutil.Round(maxLoan(shifted, adjusted)),
			MeetsRequirement:   y >= adjusted,
		})
	}
	return out
}

// maxLoan is the largest loan the NOI supports at the required yield. A
// negative NOI supports no loan.
func maxLoan(noi, requiredYield float64) float64 {
	if noi <= 0 {
		return 0
	}
	return mathutil.SafeDivide(noi, requiredYield/constants.PercentageMultiplier)
}

// RiskLevel grades the spread between the achieved and required yield, in
// percentage points.
func RiskLevel(buffer float64) string {
	switch {
	case buffer >= 2:
		return RiskLow
	case buffer >= 0.5:
		return RiskModerate
	case buffer >= 0:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// LenderRiskScore rates the loan from 0 (safest) to 100. A yield cushion lowers
// the score; weaker tenants and markets raise it.
func LenderRiskScore(buffer, creditAdjustment, marketAdjustment float64) float64 {
	score := 50 - buffer*10 + creditAdjustment*10 + marketAdjustment*10
	return mathutil.Clamp(score, 0, 100)
}
