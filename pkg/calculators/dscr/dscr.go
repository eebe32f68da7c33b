// Package dscr implements the debt service coverage ratio calculator for
// income-producing real estate.
package dscr

import (
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "debt-service-coverage-ratio"

// Risk levels by coverage.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// Inputs are the property, expense and loan details.
type Inputs struct {
	PropertyType        string  `mapstructure:"propertyType" json:"propertyType"`
	GrossRentalIncome   float64 `mapstructure:"grossRentalIncome" json:"grossRentalIncome"`
	OtherIncome         float64 `mapstructure:"otherIncome" json:"otherIncome"`
	VacancyRate         float64 `mapstructure:"vacancyRate" json:"vacancyRate"`
	PropertyTaxes       float64 `mapstructure:"propertyTaxes" json:"propertyTaxes"`
	Insurance           float64 `mapstructure:"insurance" json:"insurance"`
	Utilities           float64 `mapstructure:"utilities" json:"utilities"`
	Maintenance         float64 `mapstructure:"maintenance" json:"maintenance"`
	PropertyManagement  float64 `mapstructure:"propertyManagement" json:"propertyManagement"`
	Landscaping         float64 `mapstructure:"landscaping" json:"landscaping"`
	Janitorial          float64 `mapstructure:"janitorial" json:"janitorial"`
	Security            float64 `mapstructure:"security" json:"security"`
	Advertising         float64 `mapstructure:"advertising" json:"advertising"`
	Legal               float64 `mapstructure:"legal" json:"legal"`
	Accounting          float64 `mapstructure:"accounting" json:"accounting"`
	OtherExpenses       float64 `mapstructure:"otherExpenses" json:"otherExpenses"`
	ReplacementReserves float64 `mapstructure:"reserves" json:"reserves"`
	CapitalExpenditures float64 `mapstructure:"capitalExpenditures" json:"capitalExpenditures"`
	TenantImprovements  float64 `mapstructure:"tenantImprovements" json:"tenantImprovements"`
	LeasingCommissions  float64 `mapstructure:"leasingCommissions" json:"leasingCommissions"`
	LoanAmount          float64 `mapstructure:"loanAmount" json:"loanAmount"`
	InterestRate        float64 `mapstructure:"interestRate" json:"interestRate"`
	AmortizationPeriod  int     `mapstructure:"amortizationPeriod" json:"amortizationPeriod"`
	LoanTerm            int     `mapstructure:"loanTerm" json:"loanTerm"`
	BalloonPayment      float64 `mapstructure:"balloonPayment" json:"balloonPayment"`
	LenderDSCR          float64 `mapstructure:"lenderDSCR" json:"lenderDSCR"`
	PropertyValue       float64 `mapstructure:"propertyValue" json:"propertyValue"`
	MarketCapRate       float64 `mapstructure:"marketCapRate" json:"marketCapRate"`
	AppreciationRate    float64 `mapstructure:"appreciationRate" json:"appreciationRate"`
	IncomeGrowthRate    float64 `mapstructure:"incomeGrowthRate" json:"incomeGrowthRate"`
	ExpenseGrowthRate   float64 `mapstructure:"expenseGrowthRate" json:"expenseGrowthRate"`
	ProjectionYears     int     `mapstructure:"projectionYears" json:"projectionYears"`
}

// SensitivityRow is the coverage at one NOI change.
type SensitivityRow struct {
	NOIChange          float64 `json:"noiChange"`
	NetOperatingIncome float64 `json:"netOperatingIncome"`
	DSCR               float64 `json:"dscr"`
	MeetsRequirement   bool    `json:"meetsRequirement"`
}

// Projection is one year of the forward view.
type Projection struct {
	Year                 int     `json:"year"`
	EffectiveGrossIncome float64 `json:"effectiveGrossIncome"`
	OperatingExpenses    float64 `json:"operatingExpenses"`
	NetOperatingIncome   float64 `json:"netOperatingIncome"`
	DSCR                 float64 `json:"dscr"`
	CashFlow             float64 `json:"cashFlow"`
	CumulativeCashFlow   float64 `json:"cumulativeCashFlow"`
	PropertyValue        float64 `json:"propertyValue"`
	MarketValue          float64 `json:"marketValue"`
	LoanBalance          float64 `json:"loanBalance"`
	Equity               float64 `json:"equity"`
}

// Outputs are the coverage metrics.
type Outputs struct {
	GrossPotentialIncome   float64          `json:"grossPotentialIncome"`
	VacancyLoss            float64          `json:"vacancyLoss"`
	EffectiveGrossIncome   float64          `json:"effectiveGrossIncome"`
	TotalOperatingExpenses float64          `json:"totalOperatingExpenses"`
	NetOperatingIncome     float64          `json:"netOperatingIncome"`
	MonthlyPayment         float64          `json:"monthlyPayment"`
	AnnualDebtService      float64          `json:"annualDebtService"`
	DSCR                   float64          `json:"dscr"`
	DSCRMargin             float64          `json:"dscrMargin"`
	MeetsRequirement       bool             `json:"meetsRequirement"`
	CashFlow               float64          `json:"cashFlow"`
	CapitalCosts           float64          `json:"capitalCosts"`
	CashFlowAfterReserves  float64          `json:"cashFlowAfterReserves"`
	MarketValue            float64          `json:"marketValue"`
	CashOnCashReturn       float64          `json:"cashOnCashReturn"`
	LoanToValue            float64          `json:"loanToValue"`
	DebtYield              float64          `json:"debtYield"`
	BreakEvenOccupancy     float64          `json:"breakEvenOccupancy"`
	MaximumLoanAmount      float64          `json:"maximumLoanAmount"`
	AdditionalCapacity     float64          `json:"additionalCapacity"`
	NOICushion             float64          `json:"noiCushion"`
	BalloonPayment         float64          `json:"balloonPayment"`
	RiskLevel              string           `json:"riskLevel"`
	Sensitivity            []SensitivityRow `json:"sensitivity"`
	Projections            []Projection     `json:"projections"`
}

var sensitivitySteps = []float64{-20, -10, 0, 10, 20}

// OperatingExpenses sums every operating expense line. Reserves are below NOI.
func (in Inputs) OperatingExpenses() float64 {
	return in.PropertyTaxes + in.Insurance + in.Utilities + in.Maintenance +
		in.PropertyManagement + in.Landscaping + in.Janitorial + in.Security +
		in.Advertising + in.Legal + in.Accounting + in.OtherExpenses
}

// CapitalCosts sums reserves and the capital items funded from cash flow.
func (in Inputs) CapitalCosts() float64 {
	return in.ReplacementReserves + in.CapitalExpenditures + in.TenantImprovements + in.LeasingCommissions
}

// marketValue capitalizes NOI at the market cap rate.
func marketValue(noi, capRate float64) float64 {
	if capRate <= 0 {
		return 0
	}
	return noi / (capRate / constants.PercentageMultiplier)
}

// Calculate computes the coverage analysis.
func Calculate(in Inputs) Outputs {
	var out Outputs

	out.GrossPotentialIncome = mathutil.Round(in.GrossRentalIncome + in.OtherIncome)
	out.VacancyLoss = mathutil.Round(mathutil.ApplyPercentage(in.GrossRentalIncome, in.VacancyRate))
	egi := in.GrossRentalIncome + in.OtherIncome - mathutil.ApplyPercentage(in.GrossRentalIncome, in.VacancyRate)
	opex := in.OperatingExpenses()
	noi := egi - opex
	out.EffectiveGrossIncome = mathutil.Round(egi)
	out.TotalOperatingExpenses = mathutil.Round(opex)
	out.NetOperatingIncome = mathutil.Round(noi)

	amortMonths := in.AmortizationPeriod * constants.MonthsPerYear
	monthly := loans.CalculateMonthlyPayment(in.LoanAmount, 0, in.InterestRate, amortMonths)
	ads := monthly * constants.MonthsPerYear
	out.MonthlyPayment = mathutil.Round(monthly)
	out.AnnualDebtService = mathutil.Round(ads)

	coverage := mathutil.SafeDivide(noi, ads)
	out.DSCR = mathutil.Round(coverage)
	out.DSCRMargin = mathutil.Round(mathutil.SafeDivide(coverage-in.LenderDSCR, in.LenderDSCR) * constants.PercentageMultiplier)
	out.MeetsRequirement = coverage >= in.LenderDSCR

	cashFlow := noi - ads
	out.CashFlow = mathutil.Round(cashFlow)
	out.CapitalCosts = mathutil.Round(in.CapitalCosts())
	out.CashFlowAfterReserves = mathutil.Round(cashFlow - in.CapitalCosts())
	out.MarketValue = mathutil.Round(marketValue(noi, in.MarketCapRate))
	out.CashOnCashReturn = mathutil.Round(mathutil.CalculatePercentage(cashFlow, in.PropertyValue-in.LoanAmount))
	out.LoanToValue = mathutil.Round(mathutil.CalculatePercentage(in.LoanAmount, in.PropertyValue))
	out.DebtYield = mathutil.Round(mathutil.CalculatePercentage(noi, in.LoanAmount))
	out.BreakEvenOccupancy = mathutil.Round(mathutil.CalculatePercentage(opex+ads, in.GrossRentalIncome+in.OtherIncome))

	if noi > 0 && in.LenderDSCR > 0 {
		maxMonthly := noi / in.LenderDSCR / constants.MonthsPerYear
		out.MaximumLoanAmount = mathutil.Round(loans.PrincipalForPayment(maxMonthly, in.InterestRate, amortMonths))
	}
	out.AdditionalCapacity = mathutil.Round(out.MaximumLoanAmount - in.LoanAmount)
	if coverage > 0 {
		out.NOICushion = mathutil.Round((1 - in.LenderDSCR/coverage) * constants.PercentageMultiplier)
	}
	switch {
	case in.BalloonPayment > 0:
		out.BalloonPayment = mathutil.Round(in.BalloonPayment)
	case in.LoanTerm < in.AmortizationPeriod:
		out.BalloonPayment = mathutil.Round(loans.RemainingBalance(in.LoanAmount, in.InterestRate, amortMonths, in.LoanTerm*constants.MonthsPerYear))
	}
	out.RiskLevel = RiskLevel(coverage)

	out.Sensitivity = make([]SensitivityRow, 0, len(sensitivitySteps))
	for _, step := range sensitivitySteps {
		adjusted := noi * (1 + step/constants.PercentageMultiplier)
		d := mathutil.SafeDivide(adjusted, ads)
		out.Sensitivity = append(out.Sensitivity, SensitivityRow{
			NOIChange:          step,
			NetOperatingIncome: mathutil.Round(adjusted),
			DSCR:               mathutil.Round(d),
			MeetsRequirement:   d >= in.LenderDSCR,
		})
	}

	out.Projections = project(in, egi, opex, ads)
	return out
}

func project(in Inputs, egi, opex, ads float64) []Projection {
	years := in.ProjectionYears
	if years <= 0 {
		return nil
	}
	rows := make([]Projection, 0, years)
	cumulative := 0.0
	for year := 1; year <= years; year++ {
		incomeFactor := math.Pow(1+in.IncomeGrowthRate/constants.PercentageMultiplier, float64(year-1))
		expenseFactor := math.Pow(1+in.ExpenseGrowthRate/constants.PercentageMultiplier, float64(year-1))
		yearIncome := egi * incomeFactor
		yearExpenses := opex * expenseFactor
		yearNOI := yearIncome - yearExpenses
		cashFlow := yearNOI - ads
		cumulative += cashFlow
		value := in.PropertyValue * math.Pow(1+in.AppreciationRate/constants.PercentageMultiplier, float64(year))
		balance := loans.RemainingBalance(in.LoanAmount, in.InterestRate, in.AmortizationPeriod*constants.MonthsPerYear, year*constants.MonthsPerYear)
		rows = append(rows, Projection{
			Year:                 year,
			EffectiveGrossIncome: mathutil.Round(yearIncome),
			OperatingExpenses:    mathutil.Round(yearExpenses),
			NetOperatingIncome:   mathutil.Round(yearNOI),
			DSCR:                 mathutil.Round(mathutil.SafeDivide(yearNOI, ads)),
			CashFlow:             mathutil.Round(cashFlow),
			CumulativeCashFlow:   mathutil.Round(cumulative),
			PropertyValue:        mathutil.Round(value),
			MarketValue:          mathutil.Round(marketValue(yearNOI, in.MarketCapRate)),
			LoanBalance:          mathutil.Round(balance),
			Equity:               mathutil.Round(value - balance),
		})
	}
	return rows
}

// RiskLevel grades a coverage ratio.
func RiskLevel(coverage float64) string {
	switch {
	case coverage >= 1.5:
		return RiskLow
	case coverage >= 1.25:
		return RiskModerate
	case coverage >= 1.0:
		return RiskHigh
	default:
		return RiskCritical
	}
}
