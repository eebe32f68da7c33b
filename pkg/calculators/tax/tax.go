// Package tax estimates 2024 federal income tax, a flat-rate state tax and
// the refund or balance due, with suggestions to lower the bill.
package tax

import (
	"fmt"
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "tax"

// Deduction methods.
const (
	MethodStandard = "standard"
	MethodItemized = "itemized"
)

// Inputs are one household's income, adjustments, deductions, credits and
// payments for the year.
type Inputs struct {
	FilingStatus string `mapstructure:"filingStatus" json:"filingStatus"`

	Wages                float64 `mapstructure:"wages" json:"wages"`
	SelfEmploymentIncome float64 `mapstructure:"selfEmploymentIncome" json:"selfEmploymentIncome"`
	InterestIncome       float64 `mapstructure:"interestIncome" json:"interestIncome"`
	DividendIncome       float64 `mapstructure:"dividendIncome" json:"dividendIncome"`
	CapitalGains         float64 `mapstructure:"capitalGains" json:"capitalGains"`
	RentalIncome         float64 `mapstructure:"rentalIncome" json:"rentalIncome"`
	OtherIncome          float64 `mapstructure:"otherIncome" json:"otherIncome"`

	StudentLoanInterest           float64 `mapstructure:"studentLoanInterest" json:"studentLoanInterest"`
	IRAContribution               float64 `mapstructure:"iraContribution" json:"iraContribution"`
	HSAContribution               float64 `mapstructure:"hsaContribution" json:"hsaContribution"`
	SelfEmploymentHealthInsurance float64 `mapstructure:"selfEmploymentHealthInsurance" json:"selfEmploymentHealthInsurance"`
	AlimonyPaid                   float64 `mapstructure:"alimonyPaid" json:"alimonyPaid"`

	DeductionMethod         string  `mapstructure:"deductionMethod" json:"deductionMethod"`
	StateLocalTaxes         float64 `mapstructure:"stateLocalTaxes" json:"stateLocalTaxes"`
	MortgageInterest        float64 `mapstructure:"mortgageInterest" json:"mortgageInterest"`
	CharitableContributions float64 `mapstructure:"charitableContributions" json:"charitableContributions"`
	MedicalExpenses         float64 `mapstructure:"medicalExpenses" json:"medicalExpenses"`
	OtherItemized           float64 `mapstructure:"otherItemized" json:"otherItemized"`

	Dependents              int     `mapstructure:"dependents" json:"dependents"`
	ClaimEarnedIncomeCredit bool    `mapstructure:"claimEarnedIncomeCredit" json:"claimEarnedIncomeCredit"`
	EducationCredits        float64 `mapstructure:"educationCredits" json:"educationCredits"`
	OtherCredits            float64 `mapstructure:"otherCredits" json:"otherCredits"`

	State              string  `mapstructure:"state" json:"state"`
	FederalWithholding float64 `mapstructure:"federalWithholding" json:"federalWithholding"`
	EstimatedPayments  float64 `mapstructure:"estimatedPayments" json:"estimatedPayments"`
	StateWithholding   float64 `mapstructure:"stateWithholding" json:"stateWithholding"`
	AMTIncome          float64 `mapstructure:"amtIncome" json:"amtIncome"`
}

// BracketLine is the income taxed within one federal bracket.
type BracketLine struct {
	Rate   float64 `json:"rate"`
	Income float64 `json:"income"`
	Tax    float64 `json:"tax"`
}

// Deduction compares one deduction method.
type Deduction struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Used   bool    `json:"used"`
}

// Credit is one credit applied to the return.
type Credit struct {
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	Refundable bool    `json:"refundable"`
}

// Suggestion is one way to lower next year's tax.
type Suggestion struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	PotentialSavings float64 `json:"potentialSavings"`
}

// Outputs are the computed return.
type Outputs struct {
	GrossIncome           float64       `json:"grossIncome"`
	SelfEmploymentTax     float64       `json:"selfEmploymentTax"`
	Adjustments           float64       `json:"adjustments"`
	AdjustedGrossIncome   float64       `json:"adjustedGrossIncome"`
	StandardDeduction     float64       `json:"standardDeduction"`
	ItemizedDeductions    float64       `json:"itemizedDeductions"`
	DeductionUsed         float64       `json:"deductionUsed"`
	Deductions            []Deduction   `json:"deductions"`
	TaxableIncome         float64       `json:"taxableIncome"`
	RegularTax            float64       `json:"regularTax"`
	BracketBreakdown      []BracketLine `json:"bracketBreakdown"`
	MarginalTaxRate       float64       `json:"marginalTaxRate"`
	AlternativeMinimumTax float64       `json:"alternativeMinimumTax"`
	ChildTaxCredit        float64       `json:"childTaxCredit"`
	EarnedIncomeCredit    float64       `json:"earnedIncomeCredit"`
	TotalCredits          float64       `json:"totalCredits"`
	Credits               []Credit      `json:"credits"`
	FederalTax            float64       `json:"federalTax"`
	StateTax              float64       `json:"stateTax"`
	TotalTaxLiability     float64       `json:"totalTaxLiability"`
	EffectiveTaxRate      float64       `json:"effectiveTaxRate"`
	RefundOrOwed          float64       `json:"refundOrOwed"`
	StateRefundOrOwed     float64       `json:"stateRefundOrOwed"`
	AfterTaxIncome        float64       `json:"afterTaxIncome"`
	WithholdingAdvice     string        `json:"withholdingAdvice"`
	TaxEfficiencyScore    float64       `json:"taxEfficiencyScore"`
	Suggestions           []Suggestion  `json:"suggestions"`
	PotentialSavings      float64       `json:"potentialSavings"`
	NextYearEstimate      float64       `json:"nextYearEstimate"`
}

// FederalTax applies the progressive brackets for the filing status. It
// returns the tax, the per-bracket breakdown and the marginal rate in percent.
func FederalTax(taxable float64, status string) (float64, []BracketLine, float64) {
	brackets, ok := federalBrackets[status]
	if !ok {
		brackets = federalBrackets[Single]
	}
	var (
		total    float64
		lines    []BracketLine
		marginal float64
		floor    float64
	)
	for _, b := range brackets {
		if taxable <= floor {
			break
		}
		income := math.Min(taxable, b.max) - floor
		tax := income * b.rate
		total += tax
		marginal = b.rate * constants.PercentageMultiplier
		lines = append(lines, BracketLine{
			Rate:   marginal,
			Income: mathutil.Round(income),
			Tax:    mathutil.Round(tax),
		})
		floor = b.max
	}
	return total, lines, marginal
}

// ChildTaxCredit is $2,000 per dependent, phased out linearly across the
// $40,000 of AGI above the phaseout threshold.
func ChildTaxCredit(dependents int, agi float64, status string) float64 {
	if dependents <= 0 {
		return 0
	}
	full := float64(dependents) * childCredit
	start := childPhaseoutStart(status)
	switch {
	case agi <= start:
		return full
	case agi >= start+childPhaseoutRange:
		return 0
	default:
		return full * (1 - (agi-start)/childPhaseoutRange)
	}
}

// EarnedIncomeCredit phases the maximum credit for the number of children
// out linearly across the phaseout range.
func EarnedIncomeCredit(earned float64, dependents int, status string) float64 {
	if earned <= 0 {
		return 0
	}
	maxCredit := eicMaxCredit[min(max(dependents, 0), len(eicMaxCredit)-1)]
	p := eicPhaseout(status)
	switch {
	case earned >= p.end:
		return 0
	case earned <= p.start:
		return maxCredit
	default:
		return maxCredit * (1 - (earned-p.start)/(p.end-p.start))
	}
}

// ItemizedDeductions totals Schedule A: SALT is capped and medical expenses
// count only above 7.5% of AGI.
func ItemizedDeductions(in Inputs, agi float64) float64 {
	medical := math.Max(0, in.MedicalExpenses-agi*medicalFloor)
	return math.Min(in.StateLocalTaxes, saltCap) + in.MortgageInterest +
		in.CharitableContributions + medical + in.OtherItemized
}

// Calculate computes the return.
func Calculate(in Inputs) Outputs {
	var out Outputs

	gross := in.Wages + in.SelfEmploymentIncome + in.InterestIncome + in.DividendIncome +
		in.CapitalGains + in.RentalIncome + in.OtherIncome
	seTax := math.Max(0, in.SelfEmploymentIncome) * seEarningsShare * seTaxRate
	adjustments := in.StudentLoanInterest + in.IRAContribution + in.HSAContribution +
		in.SelfEmploymentHealthInsurance + in.AlimonyPaid + seTax/2
	agi := math.Max(0, gross-adjustments)

	standard := lookup(standardDeductions, in.FilingStatus)
	itemized := ItemizedDeductions(in, agi)
	deduction := standard
	itemizing := in.DeductionMethod == MethodItemized && itemized > standard
	if itemizing {
		deduction = itemized
	}
	taxable := math.Max(0, agi-deduction)

	regular, brackets, marginal := FederalTax(taxable, in.FilingStatus)

	var amt float64
	if in.AMTIncome > 0 {
		tentative := amtRate * math.Max(0, in.AMTIncome-lookup(amtExemptions, in.FilingStatus))
		amt = math.Max(0, tentative-regular)
	}

	child := ChildTaxCredit(in.Dependents, agi, in.FilingStatus)
	var eic float64
	if in.ClaimEarnedIncomeCredit {
		eic = EarnedIncomeCredit(in.Wages+in.SelfEmploymentIncome, in.Dependents, in.FilingStatus)
	}
	incomeTax := regular + amt
	nonRefundable := math.Min(child+in.EducationCredits+in.OtherCredits, incomeTax)
	credits := nonRefundable + eic

	federal := incomeTax - nonRefundable + seTax - eic
	state := stateRates[in.State] * agi
	total := federal + state
	refund := in.FederalWithholding + in.EstimatedPayments - federal

	out.GrossIncome = mathutil.Round(gross)
	out.SelfEmploymentTax = mathutil.Round(seTax)
	out.Adjustments = mathutil.Round(adjustments)
	out.AdjustedGrossIncome = mathutil.Round(agi)
	out.StandardDeduction = standard
	out.ItemizedDeductions = mathutil.Round(itemized)
	out.DeductionUsed = mathutil.Round(deduction)
	out.Deductions = []Deduction{
		{Type: "Standard Deduction", Amount: standard, Used: !itemizing},
		{Type: "Itemized Deductions", Amount: mathutil.Round(itemized), Used: itemizing},
	}
	out.TaxableIncome = mathutil.Round(taxable)
	out.RegularTax = mathutil.Round(regular)
	out.BracketBreakdown = brackets
	out.MarginalTaxRate = marginal
	out.AlternativeMinimumTax = mathutil.Round(amt)

	out.ChildTaxCredit = mathutil.Round(child)
	out.EarnedIncomeCredit = mathutil.Round(eic)
	out.TotalCredits = mathutil.Round(credits)
	out.Credits = []Credit{
		{Type: "Child Tax Credit", Amount: mathutil.Round(child)},
		{Type: "Earned Income Credit", Amount: mathutil.Round(eic), Refundable: true},
		{Type: "Education Credits", Amount: mathutil.Round(in.EducationCredits)},
		{Type: "Other Credits", Amount: mathutil.Round(in.OtherCredits)},
	}

	out.FederalTax = mathutil.Round(federal)
	out.StateTax = mathutil.Round(state)
	out.TotalTaxLiability = mathutil.Round(total)
	out.EffectiveTaxRate = mathutil.Round(mathutil.CalculatePercentage(total, gross))
	out.RefundOrOwed = mathutil.Round(refund)
	out.StateRefundOrOwed = mathutil.Round(in.StateWithholding - state)
	out.AfterTaxIncome = mathutil.Round(gross - total)
	out.WithholdingAdvice = withholdingAdvice(refund)

	out.TaxEfficiencyScore = EfficiencyScore(in, itemized > standard, credits, refund, federal)
	out.Suggestions = suggestions(in, marginal, standard, itemized, refund)
	for _, s := range out.Suggestions {
		out.PotentialSavings += s.PotentialSavings
	}
	out.PotentialSavings = mathutil.Round(out.PotentialSavings)
	out.NextYearEstimate = mathutil.Round(federal * projectedGrowth)
	return out
}

func withholdingAdvice(refund float64) string {
	switch {
	case refund > withholdingTolerance:
		return "Reduce withholding"
	case refund < -withholdingTolerance:
		return "Increase withholding"
	default:
		return "Withholding is appropriate"
	}
}

// EfficiencyScore rates how well the return uses deductions, credits and
// withholding. The result is 0..100.
func EfficiencyScore(in Inputs, itemizingPays bool, credits, refund, federal float64) float64 {
	score := 50.0
	if itemizingPays {
		score += 10
	}
	if credits > 0 {
		score += math.Min(20, credits/1000)
	}
	if federal > 0 {
		switch accuracy := math.Abs(refund) / federal; {
		case accuracy < 0.1:
			score += 10
		case accuracy > 0.3:
			score -= 10
		}
	}
	sources := 0
	for _, v := range []float64{
		in.Wages, in.SelfEmploymentIncome, in.InterestIncome, in.DividendIncome,
		in.CapitalGains, in.RentalIncome, in.OtherIncome,
	} {
		if v > 0 {
			sources++
		}
	}
	if sources > 3 {
		score += 5
	}
	return mathutil.Round(mathutil.Clamp(score, 0, 100))
}

func suggestions(in Inputs, marginal, standard, itemized, refund float64) []Suggestion {
	rate := marginal / constants.PercentageMultiplier
	var out []Suggestion

	if earned := in.Wages + in.SelfEmploymentIncome; earned > 0 && in.IRAContribution < iraLimit {
		room := math.Min(iraLimit, earned) - in.IRAContribution
		if room > 0 {
			out = append(out, Suggestion{
				Title:            "Maximize IRA Contribution",
				Description:      fmt.Sprintf("Contributing another %s to a traditional IRA lowers taxable income.", format.Currency(room)),
				PotentialSavings: mathutil.Round(room * rate),
			})
		}
	}
	if in.HSAContribution > 0 && in.HSAContribution < hsaLimit {
		room := hsaLimit - in.HSAContribution
		out = append(out, Suggestion{
			Title:            "Maximize HSA Contribution",
			Description:      fmt.Sprintf("Another %s of HSA contributions is deductible.", format.Currency(room)),
			PotentialSavings: mathutil.Round(room * rate),
		})
	}
	if in.DeductionMethod != MethodItemized && itemized > standard {
		out = append(out, Suggestion{
			Title:            "Itemize Deductions",
			Description:      fmt.Sprintf("Itemized deductions of %s exceed the standard deduction of %s.", format.Currency(itemized), format.Currency(standard)),
			PotentialSavings: mathutil.Round((itemized - standard) * rate),
		})
	}
	if math.Abs(refund) > withholdingTolerance {
		out = append(out, Suggestion{
			Title:       "Adjust Withholding",
			Description: "Update your W-4 so withholding tracks your actual liability more closely.",
		})
	}
	return out
}
