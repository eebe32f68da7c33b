// Package noi computes net operating income for income producing property,
// with margin and efficiency ratings and a multi-year projection.
package noi

import (
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "net-operating-income"

// Ratings.
const (
	RatingExcellent = "Excellent"
	RatingGood      = "Good"
	RatingFair      = "Fair"
	RatingPoor      = "Poor"
)

// Inputs are the property's annual income and operating expenses.
type Inputs struct {
	PropertyType      string  `mapstructure:"propertyType" json:"propertyType"`
	PropertyValue     float64 `mapstructure:"propertyValue" json:"propertyValue"`
	PropertySize      float64 `mapstructure:"propertySize" json:"propertySize"`
	GrossRentalIncome float64 `mapstructure:"grossRentalIncome" json:"grossRentalIncome"`
	VacancyRate       float64 `mapstructure:"vacancyRate" json:"vacancyRate"`
	CreditLossRate    float64 `mapstructure:"creditLossRate" json:"creditLossRate"`

	ParkingIncome float64 `mapstructure:"parkingIncome" json:"parkingIncome"`
	StorageIncome float64 `mapstructure:"storageIncome" json:"storageIncome"`
	LaundryIncome float64 `mapstructure:"laundryIncome" json:"laundryIncome"`
	LateFees      float64 `mapstructure:"lateFees" json:"lateFees"`
	OtherIncome   float64 `mapstructure:"otherIncome" json:"otherIncome"`

	PropertyTaxes      float64 `mapstructure:"propertyTaxes" json:"propertyTaxes"`
	PropertyInsurance  float64 `mapstructure:"propertyInsurance" json:"propertyInsurance"`
	Utilities          float64 `mapstructure:"utilities" json:"utilities"`
	Maintenance        float64 `mapstructure:"maintenance" json:"maintenance"`
	PropertyManagement float64 `mapstructure:"propertyManagement" json:"propertyManagement"`
	Landscaping        float64 `mapstructure:"landscaping" json:"landscaping"`
	Janitorial         float64 `mapstructure:"janitorial" json:"janitorial"`
	Security           float64 `mapstructure:"security" json:"security"`
	Advertising        float64 `mapstructure:"advertising" json:"advertising"`
	LegalFees          float64 `mapstructure:"legalFees" json:"legalFees"`
	AccountingFees     float64 `mapstructure:"accountingFees" json:"accountingFees"`
	OtherExpenses      float64 `mapstructure:"otherExpenses" json:"otherExpenses"`

	CapitalExpenditures float64 `mapstructure:"capitalExpenditures" json:"capitalExpenditures"`
	MarketCapRate       float64 `mapstructure:"marketCapRate" json:"marketCapRate"`
	ComparableNOI       float64 `mapstructure:"comparableNOI" json:"comparableNOI"`
	AnalysisPeriod      int     `mapstructure:"analysisPeriod" json:"analysisPeriod"`
	IncomeGrowthRate    float64 `mapstructure:"incomeGrowthRate" json:"incomeGrowthRate"`
	ExpenseGrowthRate   float64 `mapstructure:"expenseGrowthRate" json:"expenseGrowthRate"`
}

// LineItem is one income or expense entry with its share of the total.
type LineItem struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Projection is one year of projected operations.
type Projection struct {
	Year          int     `json:"year"`
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	NOI           float64 `json:"noi"`
	PropertyValue float64 `json:"propertyValue"`
}

// Outputs are the income statement, ratios and ratings.
type Outputs struct {
	PotentialRentalIncome  float64      `json:"potentialRentalIncome"`
	VacancyLoss            float64      `json:"vacancyLoss"`
	CreditLoss             float64      `json:"creditLoss"`
	OtherIncomeTotal       float64      `json:"otherIncomeTotal"`
	EffectiveGrossIncome   float64      `json:"effectiveGrossIncome"`
	TotalOperatingExpenses float64      `json:"totalOperatingExpenses"`
	NetOperatingIncome     float64      `json:"netOperatingIncome"`
	NOIMargin              float64      `json:"noiMargin"`
	ExpenseRatio           float64      `json:"expenseRatio"`
	NOIPerSquareFoot       float64      `json:"noiPerSquareFoot"`
	ExpensePerSquareFoot   float64      `json:"expensePerSquareFoot"`
	CapRate                float64      `json:"capRate"`
	ImpliedValue           float64      `json:"impliedValue"`
	CashFlowAfterCapex     float64      `json:"cashFlowAfterCapex"`
	NOIVsComparable        float64      `json:"noiVsComparable"`
	NOIRating              string       `json:"noiRating"`
	EfficiencyRating       string       `json:"efficiencyRating"`
	Strengths              []string     `json:"strengths"`
	Weaknesses             []string     `json:"weaknesses"`
	IncomeBreakdown        []LineItem   `json:"incomeBreakdown"`
	ExpenseBreakdown       []LineItem   `json:"expenseBreakdown"`
	Projections            []Projection `json:"projections"`
}

func incomeLines(in Inputs) []LineItem {
	return []LineItem{
		{Name: "Gross Rental Income", Amount: in.GrossRentalIncome},
		{Name: "Parking", Amount: in.ParkingIncome},
		{Name: "Storage", Amount: in.StorageIncome},
		{Name: "Laundry", Amount: in.LaundryIncome},
		{Name: "Late Fees", Amount: in.LateFees},
		{Name: "Other Income", Amount: in.OtherIncome},
	}
}

func expenseLines(in Inputs) []LineItem {
	return []LineItem{
		{Name: "Property Taxes", Amount: in.PropertyTaxes},
		{Name: "Insurance", Amount: in.PropertyInsurance},
		{Name: "Utilities", Amount: in.Utilities},
		{Name: "Maintenance", Amount: in.Maintenance},
		{Name: "Property Management", Amount: in.PropertyManagement},
		{Name: "Landscaping", Amount: in.Landscaping},
		{Name: "Janitorial", Amount: in.Janitorial},
		{Name: "Security", Amount: in.Security},
		{Name: "Advertising", Amount: in.Advertising},
		{Name: "Legal", Amount: in.LegalFees},
		{Name: "Accounting", Amount: in.AccountingFees},
		{Name: "Other Expenses", Amount: in.OtherExpenses},
	}
}

// breakdown drops zero lines and fills in each line's share of the total.
func breakdown(lines []LineItem) ([]LineItem, float64) {
	var total float64
	for _, l := range lines {
		total += l.Amount
	}
	out := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		if l.Amount == 0 {
			continue
		}
		out = append(out, LineItem{
			Name:       l.Name,
			Amount:     mathutil.Round(l.Amount),
			Percentage: mathutil.Round(mathutil.CalculatePercentage(l.Amount, total)),
		})
	}
	return out, total
}

// NOIRating grades an NOI margin.
func NOIRating(margin float64) string {
	switch {
	case margin >= 60:
		return RatingExcellent
	case margin >= 45:
		return RatingGood
	case margin >= 30:
		return RatingFair
	default:
		return RatingPoor
	}
}

// EfficiencyRating grades an operating expense ratio.
func EfficiencyRating(expenseRatio float64) string {
	switch {
	case expenseRatio <= 35:
		return RatingExcellent
	case expenseRatio <= 45:
		return RatingGood
	case expenseRatio <= 55:
		return RatingFair
	default:
		return RatingPoor
	}
}

// Calculate builds the income statement.
func Calculate(in Inputs) Outputs {
	var out Outputs

	vacancy := mathutil.ApplyPercentage(in.GrossRentalIncome, in.VacancyRate)
	credit := mathutil.ApplyPercentage(in.GrossRentalIncome, in.CreditLossRate)
	other := in.ParkingIncome + in.StorageIncome + in.LaundryIncome + in.LateFees + in.OtherIncome
	egi := in.GrossRentalIncome - vacancy - credit + other

	expenses, opex := breakdown(expenseLines(in))
	noi := egi - opex

	out.PotentialRentalIncome = mathutil.Round(in.GrossRentalIncome)
	out.VacancyLoss = mathutil.Round(vacancy)
	out.CreditLoss = mathutil.Round(credit)
	out.OtherIncomeTotal = mathutil.Round(other)
	out.EffectiveGrossIncome = mathutil.Round(egi)
	out.TotalOperatingExpenses = mathutil.Round(opex)
	out.NetOperatingIncome = mathutil.Round(noi)

	margin := mathutil.CalculatePercentage(noi, egi)
	expenseRatio := mathutil.CalculatePercentage(opex, egi)
	out.NOIMargin = mathutil.Round(margin)
	out.ExpenseRatio = mathutil.Round(expenseRatio)
	out.NOIPerSquareFoot = mathutil.Round(mathutil.SafeDivide(noi, in.PropertySize))
	out.ExpensePerSquareFoot = mathutil.Round(mathutil.SafeDivide(opex, in.PropertySize))

	capRate := mathutil.CalculatePercentage(noi, in.PropertyValue)
	out.CapRate = mathutil.Round(capRate)
	out.ImpliedValue = mathutil.Round(mathutil.SafeDivide(noi, in.MarketCapRate/constants.PercentageMultiplier))
	out.CashFlowAfterCapex = mathutil.Round(noi - in.CapitalExpenditures)
	if in.ComparableNOI > 0 {
		out.NOIVsComparable = mathutil.Round(mathutil.CalculatePercentage(noi-in.ComparableNOI, in.ComparableNOI))
	}

	out.NOIRating = NOIRating(margin)
	out.EfficiencyRating = EfficiencyRating(expenseRatio)
	out.Strengths, out.Weaknesses = assess(in, out, other, egi)

	// Income shares are of potential gross income, before vacancy and credit loss.
	out.IncomeBreakdown, _ = breakdown(incomeLines(in))
	out.ExpenseBreakdown = expenses
	out.Projections = project(in, egi, opex, capRate)
	return out
}

func assess(in Inputs, out Outputs, other, egi float64) (strengths, weaknesses []string) {
	switch {
	case out.NOIMargin >= 60:
		strengths = append(strengths, "Strong NOI margin of "+format.Percent(out.NOIMargin))
	case out.NOIMargin < 30:
		weaknesses = append(weaknesses, "Thin NOI margin of "+format.Percent(out.NOIMargin))
	}
	switch {
	case out.ExpenseRatio <= 35:
		strengths = append(strengths, "Efficient operations with an expense ratio of "+format.Percent(out.ExpenseRatio))
	case out.ExpenseRatio > 55:
		weaknesses = append(weaknesses, "High expense ratio of "+format.Percent(out.ExpenseRatio))
	}
	switch {
	case in.VacancyRate <= 5:
		strengths = append(strengths, "Low vacancy rate")
	case in.VacancyRate > 10:
		weaknesses = append(weaknesses, "Vacancy rate above 10%")
	}
	if in.MarketCapRate > 0 {
		if out.CapRate >= in.MarketCapRate {
			strengths = append(strengths, "Cap rate at or above the market rate of "+format.Percent(in.MarketCapRate))
		} else {
			weaknesses = append(weaknesses, "Cap rate below the market rate of "+format.Percent(in.MarketCapRate))
		}
	}
	if in.ComparableNOI > 0 {
		switch {
		case out.NOIVsComparable >= 0:
			strengths = append(strengths, "NOI meets or exceeds comparable properties")
		case out.NOIVsComparable < -10:
			weaknesses = append(weaknesses, "NOI trails comparable properties by more than 10%")
		}
	}
	if egi > 0 && other/egi >= 0.05 {
		strengths = append(strengths, "Diversified ancillary income")
	}
	if noi := out.NetOperatingIncome; noi > 0 && in.CapitalExpenditures > noi*0.1 {
		weaknesses = append(weaknesses, "Capital expenditures consume more than 10% of NOI")
	}
	if out.NetOperatingIncome < 0 {
		weaknesses = append(weaknesses, "Operating expenses exceed effective gross income")
	}
	return strengths, weaknesses
}

// project grows income and expenses at their own rates from the current
// year and values each year's NOI at today's cap rate.
func project(in Inputs, egi, opex, capRate float64) []Projection {
	rows := make([]Projection, 0, in.AnalysisPeriod)
	for year := 1; year <= in.AnalysisPeriod; year++ {
		n := float64(year - 1)
		income := egi * math.Pow(1+in.IncomeGrowthRate/constants.PercentageMultiplier, n)
		expenses := opex * math.Pow(1+in.ExpenseGrowthRate/constants.PercentageMultiplier, n)
		noi := income - expenses
		rows = append(rows, Projection{
			Year:          year,
			Income:        mathutil.Round(income),
			Expenses:      mathutil.Round(expenses),
			NOI:           mathutil.Round(noi),
			PropertyValue: mathutil.Round(mathutil.SafeDivide(noi, capRate/constants.PercentageMultiplier)),
		})
	}
	return rows
}
