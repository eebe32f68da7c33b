// Package ltv implements the residential loan-to-value calculator, including
// program limits and mortgage insurance.
package ltv

import (
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "loan-to-value"

// Loan programs.
const (
	Conventional = "conventional"
	FHA          = "fha"
	VA           = "va"
	USDA         = "usda"
	Jumbo        = "jumbo"
)

// Risk levels by combined LTV.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskElevated = "Elevated"
	RiskHigh     = "High"
)

// Maximum LTV, in percent, for each program.
var programLimits = map[string]float64{
	Conventional: 97,
	FHA:          96.5,
	VA:           100,
	USDA:         100,
	Jumbo:        90,
}

const (
	// Conventional insurance is required above this LTV and cancels
	// automatically once the balance amortizes to the cancellation LTV.
	miThreshold       = 80
	miCancellationLTV = 78
	fhaAnnualRate     = 0.55
	usdaAnnualRate    = 0.35
	// FHA premiums drop off after eleven years when the loan started at or
	// below 90% LTV.
	fhaShortLTV    = 90
	fhaShortMonths = 132
)

// Inputs are the property value, liens and loan program.
type Inputs struct {
	PropertyValue    float64 `mapstructure:"propertyValue" json:"propertyValue"`
	LoanAmount       float64 `mapstructure:"loanAmount" json:"loanAmount"`
	SecondLoanAmount float64 `mapstructure:"secondLoanAmount" json:"secondLoanAmount"`
	LoanType         string  `mapstructure:"loanType" json:"loanType"`
	CreditScore      int     `mapstructure:"creditScore" json:"creditScore"`
	TargetLTV        float64 `mapstructure:"targetLTV" json:"targetLTV"`
	InterestRate     float64 `mapstructure:"interestRate" json:"interestRate"`
	LoanTerm         int     `mapstructure:"loanTerm" json:"loanTerm"`
}

// Outputs are the leverage and insurance metrics.
type Outputs struct {
	LTV                       float64  `json:"ltv"`
	CLTV                      float64  `json:"cltv"`
	Equity                    float64  `json:"equity"`
	EquityPercentage          float64  `json:"equityPercentage"`
	LTVRating                 string   `json:"ltvRating"`
	MaxLTVForProgram          float64  `json:"maxLTVForProgram"`
	ExceedsProgramLimit       bool     `json:"exceedsProgramLimit"`
	MortgageInsuranceRequired bool     `json:"mortgageInsuranceRequired"`
	AnnualInsuranceRate       float64  `json:"annualInsuranceRate"`
	MonthlyMortgageInsurance  float64  `json:"monthlyMortgageInsurance"`
	InsuranceMonths           int      `json:"insuranceMonths"`
	TotalMortgageInsurance    float64  `json:"totalMortgageInsurance"`
	MonthlyPayment            float64  `json:"monthlyPayment"`
	TotalMonthlyPayment       float64  `json:"totalMonthlyPayment"`
	PaydownToTarget           float64  `json:"paydownToTarget"`
	MaxLoanAtTarget           float64  `json:"maxLoanAtTarget"`
	RiskLevel                 string   `json:"riskLevel"`
	Recommendations           []string `json:"recommendations"`
}

// Calculate computes the leverage analysis.
func Calculate(in Inputs) Outputs {
	var out Outputs

	liens := in.LoanAmount + in.SecondLoanAmount
	out.LTV = mathutil.Round(mathutil.CalculatePercentage(in.LoanAmount, in.PropertyValue))
	out.CLTV = mathutil.Round(mathutil.CalculatePercentage(liens, in.PropertyValue))
	out.Equity = mathutil.Round(in.PropertyValue - liens)
	out.EquityPercentage = mathutil.Round(mathutil.CalculatePercentage(in.PropertyValue-liens, in.PropertyValue))
	out.LTVRating = Rating(out.LTV)

	out.MaxLTVForProgram = programLimits[in.LoanType]
	out.ExceedsProgramLimit = out.CLTV > out.MaxLTVForProgram

	out.MortgageInsuranceRequired = InsuranceRequired(in.LoanType, out.LTV)
	if out.MortgageInsuranceRequired {
		out.AnnualInsuranceRate = mathutil.RoundTo(InsuranceRate(in.LoanType, out.LTV, in.CreditScore), 4)
		out.MonthlyMortgageInsurance = mathutil.Round(
			mathutil.ApplyPercentage(in.LoanAmount, out.AnnualInsuranceRate) / constants.MonthsPerYear)
		out.InsuranceMonths = insuranceMonths(in, out.LTV)
		out.TotalMortgageInsurance = mathutil.Round(out.MonthlyMortgageInsurance * float64(out.InsuranceMonths))
	}

	termMonths := in.LoanTerm * constants.MonthsPerYear
	out.MonthlyPayment = mathutil.Round(loans.CalculateMonthlyPayment(in.LoanAmount, 0, in.InterestRate, termMonths))
	out.TotalMonthlyPayment = mathutil.Round(out.MonthlyPayment + out.MonthlyMortgageInsurance)

	out.MaxLoanAtTarget = mathutil.Round(mathutil.ApplyPercentage(in.PropertyValue, in.TargetLTV))
	out.PaydownToTarget = mathutil.Round(mathutil.Max(0, in.LoanAmount-out.MaxLoanAtTarget))

	out.RiskLevel = RiskLevel(out.CLTV)
	out.Recommendations = recommendations(in, out)
	return out
}

// InsuranceRequired reports whether the program charges mortgage insurance at
// the given LTV.
func InsuranceRequired(loanType string, ltv float64) bool {
	switch loanType {
	case Conventional:
		return ltv > miThreshold
	case FHA, USDA:
		return true
	default:
		return false
	}
}

// InsuranceRate returns the annual premium as a percentage of the loan.
func InsuranceRate(loanType string, ltv float64, creditScore int) float64 {
	switch loanType {
	case FHA:
		return fhaAnnualRate
	case USDA:
		return usdaAnnualRate
	}
	if loanType != Conventional {
		return 0
	}

	var rate float64
	switch {
	case ltv > 95:
		rate = 1.2
	case ltv > 90:
		rate = 0.9
	case ltv > 85:
		rate = 0.6
	case ltv > miThreshold:
		rate = 0.35
	default:
		return 0
	}
	switch {
	case creditScore < 680:
		rate *= 1.5
	case creditScore < 740:
		rate *= 1.2
	}
	return rate
}

// insuranceMonths estimates how long premiums are paid. Conventional
// insurance runs until the scheduled balance reaches 78% of the original value.
func insuranceMonths(in Inputs, ltv float64) int {
	termMonths := in.LoanTerm * constants.MonthsPerYear
	switch in.LoanType {
	case Conventional:
		cutoff := mathutil.ApplyPercentage(in.PropertyValue, miCancellationLTV)
		for month := 1; month <= termMonths; month++ {
			if loans.RemainingBalance(in.LoanAmount, in.InterestRate, termMonths, month) <= cutoff {
				return month
			}
		}
		return termMonths
	case FHA:
		if ltv <= fhaShortLTV {
			return min(fhaShortMonths, termMonths)
		}
		return termMonths
	default:
		return termMonths
	}
}

// Rating grades a first-lien LTV.
func Rating(ltv float64) string {
	switch {
	case ltv <= 70:
		return "Excellent"
	case ltv <= 75:
		return "Good"
	case ltv <= 80:
		return "Average"
	case ltv <= 85:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// RiskLevel grades a combined LTV.
func RiskLevel(cltv float64) string {
	switch {
	case cltv <= 60:
		return RiskLow
	case cltv <= 80:
		return RiskModerate
	case cltv <= 90:
		return RiskElevated
	default:
		return RiskHigh
	}
}
