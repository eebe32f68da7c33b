// Package mortgagelife prices mortgage life insurance and compares it with a
// level term life policy.
package mortgagelife

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "mortgage-life"

const (
	smokerFactor      = 2.2
	decreasingFactor  = 0.65
	mortgageLifeLoad  = 1.35
	termSavingsBar    = 0.8
	unknownIncomeRank = 50
)

// Inputs describe the mortgage, the borrower and the coverage requested.
type Inputs struct {
	MortgageBalance       float64 `mapstructure:"mortgageBalance" json:"mortgageBalance"`
	InterestRate          float64 `mapstructure:"interestRate" json:"interestRate"`
	RemainingTerm         int     `mapstructure:"remainingTerm" json:"remainingTerm"`
	BorrowerAge           int     `mapstructure:"borrowerAge" json:"borrowerAge"`
	Gender                string  `mapstructure:"gender" json:"gender"`
	Smoker                bool    `mapstructure:"smoker" json:"smoker"`
	HealthRating          string  `mapstructure:"healthRating" json:"healthRating"`
	CoverageType          string  `mapstructure:"coverageType" json:"coverageType"`
	CoverageAmount        float64 `mapstructure:"coverageAmount" json:"coverageAmount"`
	ExistingLifeInsurance float64 `mapstructure:"existingLifeInsurance" json:"existingLifeInsurance"`
	MonthlyIncome         float64 `mapstructure:"monthlyIncome" json:"monthlyIncome"`
}

// CoverageYear is one policy year of the coverage schedule.
type CoverageYear struct {
	Year            int     `json:"year"`
	Age             int     `json:"age"`
	StartCoverage   float64 `json:"startCoverage"`
	EndCoverage     float64 `json:"endCoverage"`
	MortgageBalance float64 `json:"mortgageBalance"`
	PrincipalPaid   float64 `json:"principalPaid"`
	InterestPaid    float64 `json:"interestPaid"`
}

// Outputs are the premium, the coverage schedule and the term life comparison.
type Outputs struct {
	CoverageAmount        float64        `json:"coverageAmount"`
	RatePerThousand       float64        `json:"ratePerThousand"`
	AnnualPremium         float64        `json:"annualPremium"`
	MonthlyPremium        float64        `json:"monthlyPremium"`
	TotalPremiums         float64        `json:"totalPremiums"`
	CoverageSchedule      []CoverageYear `json:"coverageSchedule"`
	RemainingInterest     float64        `json:"remainingInterest"`
	AverageCoverage       float64        `json:"averageCoverage"`
	CostPerThousand       float64        `json:"costPerThousand"`
	MidTermCoverage       float64        `json:"midTermCoverage"`
	TermLifeAnnualPremium float64        `json:"termLifeAnnualPremium"`
	AnnualSavingsWithTerm float64        `json:"annualSavingsWithTerm"`
	TotalSavingsWithTerm  float64        `json:"totalSavingsWithTerm"`
	CoverageGap           float64        `json:"coverageGap"`
	PremiumToIncome       float64        `json:"premiumToIncome"`
	AffordabilityScore    int            `json:"affordabilityScore"`
	Recommendation        string         `json:"recommendation"`
}

type band struct {
	maxAge       int
	male, female float64
}

// Annual rates per $1,000 of level coverage. The last band is open ended.
var rateBands = []band{
	{29, 1.10, 0.85},
	{39, 1.45, 1.15},
	{49, 2.60, 2.05},
	{59, 5.40, 4.20},
	{69, 11.50, 8.90},
	{0, 24.00, 18.50},
}

var healthFactors = map[string]float64{"excellent": 0.8, "good": 0.95, "average": 1.0, "poor": 1.6}

// BaseRate returns the annual rate per $1,000 for the age and gender.
func BaseRate(age int, gender string) float64 {
	b := rateBands[len(rateBands)-1]
	for _, candidate := range rateBands[:len(rateBands)-1] {
		if age <= candidate.maxAge {
			b = candidate
			break
		}
	}
	if gender == "female" {
		return b.female
	}
	return b.male
}

// TermFactor loads the rate for longer coverage periods.
func TermFactor(years int) float64 {
	switch {
	case years <= 10:
		return 0.75
	case years <= 20:
		return 1.0
	default:
		return 1.3
	}
}

// AffordabilityScore grades the premium as a share of monthly income.
func AffordabilityScore(premiumToIncome float64, incomeKnown bool) int {
	if !incomeKnown {
		return unknownIncomeRank
	}
	switch {
	case premiumToIncome <= 1:
		return 100
	case premiumToIncome <= 2:
		return 85
	case premiumToIncome <= 3:
		return 70
	case premiumToIncome <= 5:
		return 50
	default:
		return 25
	}
}

// underwritingRate is the level term rate for the borrower before any
// mortgage life adjustments.
func underwritingRate(in Inputs) float64 {
	rate := BaseRate(in.BorrowerAge, in.Gender) * TermFactor(in.RemainingTerm)
	if h, ok := healthFactors[in.HealthRating]; ok {
		rate *= h
	}
	if in.Smoker {
		rate *= smokerFactor
	}
	return rate
}

// Calculate prices the policy.
func Calculate(in Inputs) Outputs {
	var out Outputs

	coverage := in.CoverageAmount
	if coverage <= 0 {
		coverage = in.MortgageBalance
	}
	decreasing := in.CoverageType != "level"

	termRate := underwritingRate(in)
	rate := termRate * mortgageLifeLoad
	if decreasing {
		rate *= decreasingFactor
	}
	annual := coverage / constants.PerThousand * rate
	termAnnual := coverage / constants.PerThousand * termRate

	out.CoverageAmount = mathutil.Round(coverage)
	out.RatePerThousand = mathutil.RoundTo(rate, 4)
	out.AnnualPremium = mathutil.Round(annual)
	out.MonthlyPremium = mathutil.Round(annual / constants.MonthsPerYear)
	out.TotalPremiums = mathutil.Round(annual * float64(in.RemainingTerm))
	out.CostPerThousand = mathutil.Round(mathutil.SafeDivide(annual, coverage/constants.PerThousand))

	schedule, curve := coverageSchedule(in, coverage, decreasing)
	out.CoverageSchedule = schedule
	var sum, interest float64
	for _, y := range schedule {
		sum += (y.StartCoverage + y.EndCoverage) / 2
		interest += y.InterestPaid
	}
	out.RemainingInterest = mathutil.Round(interest)
	out.AverageCoverage = mathutil.Round(mathutil.SafeDivide(sum, float64(len(schedule))))
	out.MidTermCoverage = mathutil.Round(mathutil.Interpolate(curve, float64(in.RemainingTerm)/2))

	out.TermLifeAnnualPremium = mathutil.Round(termAnnual)
	out.AnnualSavingsWithTerm = mathutil.Round(annual - termAnnual)
	out.TotalSavingsWithTerm = mathutil.Round((annual - termAnnual) * float64(in.RemainingTerm))

	out.CoverageGap = mathutil.Round(mathutil.Max(0, in.MortgageBalance-coverage-in.ExistingLifeInsurance))
	monthly := annual / constants.MonthsPerYear
	out.PremiumToIncome = mathutil.Round(mathutil.CalculatePercentage(monthly, in.MonthlyIncome))
	out.AffordabilityScore = AffordabilityScore(mathutil.CalculatePercentage(monthly, in.MonthlyIncome), in.MonthlyIncome > 0)

	out.Recommendation = recommendation(annual, termAnnual, out.CoverageGap)
	return out
}

// coverageSchedule returns the yearly schedule and the coverage curve
// sampled at each policy anniversary. Principal and interest per year come
// from the mortgage's amortization schedule.
func coverageSchedule(in Inputs, coverage float64, decreasing bool) ([]CoverageYear, []mathutil.Point) {
	termMonths := in.RemainingTerm * constants.MonthsPerYear
	var years []loans.YearSummary
	amortization, err := loans.NewAmortizationScheduleGenerator(nil).GenerateSchedule(loans.LoanConfig{
		Name:         ID,
		Principal:    in.MortgageBalance,
		InterestRate: in.InterestRate,
		Term:         termMonths,
	})
	if err == nil {
		years = loans.YearlySummary(amortization)
	}
	share := mathutil.SafeDivide(coverage, in.MortgageBalance)

	at := func(year int) (insured, balance float64) {
		balance = loans.RemainingBalance(in.MortgageBalance, in.InterestRate, termMonths, year*constants.MonthsPerYear)
		if !decreasing {
			return coverage, balance
		}
		return balance * share, balance
	}

	schedule := make([]CoverageYear, 0, in.RemainingTerm)
	start, _ := at(0)
	curve := []mathutil.Point{{X: 0, Y: start}}
	for year := 1; year <= in.RemainingTerm; year++ {
		end, balance := at(year)
		row := CoverageYear{
			Year:            year,
			Age:             in.BorrowerAge + year - 1,
			StartCoverage:   mathutil.Round(start),
			EndCoverage:     mathutil.Round(end),
			MortgageBalance: mathutil.Round(balance),
		}
		if year <= len(years) {
			row.PrincipalPaid = years[year-1].Principal
			row.InterestPaid = years[year-1].Interest
		}
		schedule = append(schedule, row)
		curve = append(curve, mathutil.Point{X: float64(year), Y: end})
		start = end
	}
	return schedule, curve
}

func recommendation(annual, termAnnual, gap float64) string {
	var text string
	if termAnnual <= annual*termSavingsBar {
		text = fmt.Sprintf("Consider level term life insurance instead: it costs %s less per year and the payout does not shrink with the mortgage.",
			format.Currency(annual-termAnnual))
	} else {
		text = "Mortgage life insurance is competitively priced for this profile."
	}
	if gap > 0 {
		text += fmt.Sprintf(" Coverage leaves a gap of %s against the mortgage balance; consider supplemental life insurance.", format.Currency(gap))
	}
	return text
}
