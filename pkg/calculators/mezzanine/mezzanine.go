// Package mezzanine analyzes a senior plus mezzanine capital stack: payments,
// coverage, returns and a lender risk and approval assessment.
package mezzanine

import (
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/loans"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
)

// ID is the registry identifier.
const ID = "mezzanine-financing"

// Risk levels.
const (
	RiskVeryLow  = "Very Low"
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskVeryHigh = "Very High"
)

const (
	exitValueUplift        = 1.2
	seniorOriginationShare = 0.01
	baseRiskScore          = 50.0
)

// Inputs describe the capital stack and the project.
type Inputs struct {
	ProjectValue         float64 `mapstructure:"projectValue" json:"projectValue"`
	SeniorLoanAmount     float64 `mapstructure:"seniorLoanAmount" json:"seniorLoanAmount"`
	MezzanineLoanAmount  float64 `mapstructure:"mezzanineLoanAmount" json:"mezzanineLoanAmount"`
	EquityInvestment     float64 `mapstructure:"equityInvestment" json:"equityInvestment"`
	SeniorLoanRate       float64 `mapstructure:"seniorLoanRate" json:"seniorLoanRate"`
	MezzanineLoanRate    float64 `mapstructure:"mezzanineLoanRate" json:"mezzanineLoanRate"`
	SeniorLoanTerm       int     `mapstructure:"seniorLoanTerm" json:"seniorLoanTerm"`
	MezzanineLoanTerm    int     `mapstructure:"mezzanineLoanTerm" json:"mezzanineLoanTerm"`
	StabilizedNOI        float64 `mapstructure:"stabilizedNOI" json:"stabilizedNOI"`
	ExitValue            float64 `mapstructure:"exitValue" json:"exitValue"`
	ExitTimeline         int     `mapstructure:"exitTimeline" json:"exitTimeline"`
	MezzanineFees        float64 `mapstructure:"mezzanineFees" json:"mezzanineFees"`
	MezzaninePoints      float64 `mapstructure:"mezzaninePoints" json:"mezzaninePoints"`
	BorrowerCreditScore  float64 `mapstructure:"borrowerCreditScore" json:"borrowerCreditScore"`
	PreLeasingPercentage float64 `mapstructure:"preLeasingPercentage" json:"preLeasingPercentage"`
	ProjectTimeline      int     `mapstructure:"projectTimeline" json:"projectTimeline"`
	ProjectType          string  `mapstructure:"projectType" json:"projectType"`
	Location             string  `mapstructure:"location" json:"location"`
	MarketCondition      string  `mapstructure:"marketCondition" json:"marketCondition"`
	LenderType           string  `mapstructure:"lenderType" json:"lenderType"`
	BorrowerExperience   string  `mapstructure:"borrowerExperience" json:"borrowerExperience"`
	PreLeasing           string  `mapstructure:"preLeasing" json:"preLeasing"`
	EnvironmentalIssues  string  `mapstructure:"environmentalIssues" json:"environmentalIssues"`
	ZoningIssues         string  `mapstructure:"zoningIssues" json:"zoningIssues"`
	ConstructionRisk     string  `mapstructure:"constructionRisk" json:"constructionRisk"`
	MarketRisk           string  `mapstructure:"marketRisk" json:"marketRisk"`
	ExitStrategy         string  `mapstructure:"exitStrategy" json:"exitStrategy"`
	SeniorLenderApproval string  `mapstructure:"seniorLenderApproval" json:"seniorLenderApproval"`
	GuaranteeRequired    string  `mapstructure:"guaranteeRequired" json:"guaranteeRequired"`
}

// Scenario is one row of the sensitivity analysis.
type Scenario struct {
	Name                string  `json:"name"`
	ExitValue           float64 `json:"exitValue"`
	TotalMonthlyPayment float64 `json:"totalMonthlyPayment"`
	DSCR                float64 `json:"dscr"`
	ProjectedIRR        float64 `json:"projectedIRR"`
	ReturnOnEquity      float64 `json:"returnOnEquity"`
}

// Outputs are the capital stack metrics and the lender assessment.
type Outputs struct {
	TotalDebt               float64    `json:"totalDebt"`
	TotalCapitalization     float64    `json:"totalCapitalization"`
	SeniorLeverage          float64    `json:"seniorLeverage"`
	MezzanineLeverage       float64    `json:"mezzanineLeverage"`
	TotalLeverage           float64    `json:"totalLeverage"`
	EquityPercentage        float64    `json:"equityPercentage"`
	LoanToCost              float64    `json:"loanToCost"`
	LoanToExitValue         float64    `json:"loanToExitValue"`
	SeniorMonthlyPayment    float64    `json:"seniorMonthlyPayment"`
	MezzanineMonthlyPayment float64    `json:"mezzanineMonthlyPayment"`
	TotalMonthlyPayment     float64    `json:"totalMonthlyPayment"`
	AnnualDebtService       float64    `json:"annualDebtService"`
	AnnualInterest          float64    `json:"annualInterest"`
	DSCR                    float64    `json:"dscr"`
	InterestCoverageRatio   float64    `json:"interestCoverageRatio"`
	MezzanineCost           float64    `json:"mezzanineCost"`
	MezzanineCostPercentage float64    `json:"mezzanineCostPercentage"`
	TotalFinancingCost      float64    `json:"totalFinancingCost"`
	WeightedAverageCost     float64    `json:"weightedAverageCost"`
	ExitValue               float64    `json:"exitValue"`
	ProjectedGain           float64    `json:"projectedGain"`
	ReturnOnInvestment      float64    `json:"returnOnInvestment"`
	ReturnOnEquity          float64    `json:"returnOnEquity"`
	NetExitProceeds         float64    `json:"netExitProceeds"`
	EquityMultiple          float64    `json:"equityMultiple"`
	ProjectedIRR            float64    `json:"projectedIRR"`
	BreakEvenNOI            float64    `json:"breakEvenNOI"`
	BreakEvenOccupancy      float64    `json:"breakEvenOccupancy"`
	RiskScore               float64    `json:"riskScore"`
	RiskLevel               string     `json:"riskLevel"`
	FeasibilityScore        float64    `json:"feasibilityScore"`
	ApprovalProbability     float64    `json:"approvalProbability"`
	Recommendation          string     `json:"recommendation"`
	Sensitivity             []Scenario `json:"sensitivity"`
}

// Calculate analyzes the capital stack.
func Calculate(in Inputs) Outputs {
	var out Outputs

	debt := in.SeniorLoanAmount + in.MezzanineLoanAmount
	capitalization := debt + in.EquityInvestment
	exit := effectiveExitValue(in)

	out.TotalDebt = mathutil.Round(debt)
	out.TotalCapitalization = mathutil.Round(capitalization)
	out.SeniorLeverage = mathutil.Round(mathutil.CalculatePercentage(in.SeniorLoanAmount, in.ProjectValue))
	out.MezzanineLeverage = mathutil.Round(mathutil.CalculatePercentage(in.MezzanineLoanAmount, in.ProjectValue))
	out.TotalLeverage = mathutil.Round(leverage(in))
	out.EquityPercentage = mathutil.Round(mathutil.CalculatePercentage(in.EquityInvestment, in.ProjectValue))
	out.LoanToCost = mathutil.Round(mathutil.CalculatePercentage(debt, capitalization))
	out.LoanToExitValue = mathutil.Round(mathutil.CalculatePercentage(debt, exit))

	senior, mezz := payments(in, 0)
	ads := (senior + mezz) * constants.MonthsPerYear
	interest := loans.InterestOnlyAnnual(in.SeniorLoanAmount, in.SeniorLoanRate) +
		loans.InterestOnlyAnnual(in.MezzanineLoanAmount, in.MezzanineLoanRate)
	out.SeniorMonthlyPayment = mathutil.Round(senior)
	out.MezzanineMonthlyPayment = mathutil.Round(mezz)
	out.TotalMonthlyPayment = mathutil.Round(senior + mezz)
	out.AnnualDebtService = mathutil.Round(ads)
	out.AnnualInterest = mathutil.Round(interest)

	coverage := mathutil.SafeDivide(in.StabilizedNOI, interest)
	if in.StabilizedNOI > 0 {
		out.DSCR = mathutil.Round(mathutil.SafeDivide(in.StabilizedNOI, ads))
		out.InterestCoverageRatio = mathutil.Round(coverage)
		out.BreakEvenOccupancy = mathutil.Round(mathutil.CalculatePercentage(ads, in.StabilizedNOI))
	}
	out.BreakEvenNOI = out.AnnualDebtService

	mezzCost := in.MezzanineFees + mathutil.ApplyPercentage(in.MezzanineLoanAmount, in.MezzaninePoints)
	out.MezzanineCost = mathutil.Round(mezzCost)
	out.MezzanineCostPercentage = mathutil.Round(mathutil.CalculatePercentage(mezzCost, in.MezzanineLoanAmount))
	out.TotalFinancingCost = mathutil.Round(mezzCost + in.SeniorLoanAmount*seniorOriginationShare)
	out.WeightedAverageCost = mathutil.Round(mathutil.SafeDivide(
		in.SeniorLoanAmount*in.SeniorLoanRate+in.MezzanineLoanAmount*in.MezzanineLoanRate, debt))

	r := returnsAt(in, exit, mezzCost, 0)
	out.ExitValue = mathutil.Round(exit)
	out.ProjectedGain = mathutil.Round(r.gain)
	out.ReturnOnInvestment = mathutil.Round(r.roi)
	out.ReturnOnEquity = mathutil.Round(r.roe)
	out.NetExitProceeds = mathutil.Round(r.proceeds)
	out.EquityMultiple = mathutil.Round(r.multiple)
	out.ProjectedIRR = mathutil.Round(r.irr)

	risk := RiskScore(in)
	feasibility := FeasibilityScore(in, risk, coverage)
	approval := ApprovalProbability(in, risk, feasibility)
	out.RiskScore = mathutil.Round(risk)
	out.RiskLevel = RiskLevel(risk)
	out.FeasibilityScore = mathutil.Round(feasibility)
	out.ApprovalProbability = mathutil.Round(approval)
	out.Recommendation = Recommendation(approval)

	out.Sensitivity = sensitivity(in, exit, mezzCost)
	return out
}

func effectiveExitValue(in Inputs) float64 {
	if in.ExitValue > 0 {
		return in.ExitValue
	}
	return in.ProjectValue * exitValueUplift
}

func leverage(in Inputs) float64 {
	return mathutil.CalculatePercentage(in.SeniorLoanAmount+in.MezzanineLoanAmount, in.ProjectValue)
}

func payments(in Inputs, rateShift float64) (senior, mezz float64) {
	senior = loans.CalculateMonthlyPayment(in.SeniorLoanAmount, 0, in.SeniorLoanRate+rateShift, in.SeniorLoanTerm*constants.MonthsPerYear)
	mezz = loans.CalculateMonthlyPayment(in.MezzanineLoanAmount, 0, in.MezzanineLoanRate+rateShift, in.MezzanineLoanTerm*constants.MonthsPerYear)
	return senior, mezz
}

type projectReturns struct {
	gain, roi, roe, proceeds, multiple, irr float64
}

// returnsAt measures equity returns at exit after repaying both loans.
func returnsAt(in Inputs, exit, mezzCost, rateShift float64) projectReturns {
	months := in.ExitTimeline * constants.MonthsPerYear
	seniorBalance := loans.RemainingBalance(in.SeniorLoanAmount, in.SeniorLoanRate+rateShift, in.SeniorLoanTerm*constants.MonthsPerYear, months)
	mezzBalance := loans.RemainingBalance(in.MezzanineLoanAmount, in.MezzanineLoanRate+rateShift, in.MezzanineLoanTerm*constants.MonthsPerYear, months)

	r := projectReturns{gain: exit - in.ProjectValue}
	r.roi = mathutil.CalculatePercentage(r.gain, in.EquityInvestment+mezzCost)
	r.roe = mathutil.CalculatePercentage(r.gain, in.EquityInvestment)
	r.proceeds = exit - seniorBalance - mezzBalance
	if in.EquityInvestment > 0 {
		r.multiple = r.proceeds / in.EquityInvestment
		if r.proceeds <= 0 || in.ExitTimeline <= 0 {
			r.irr = -constants.PercentageMultiplier
		} else {
			r.irr = (math.Pow(r.multiple, 1/float64(in.ExitTimeline)) - 1) * constants.PercentageMultiplier
		}
	}
	return r
}

func sensitivity(in Inputs, exit, mezzCost float64) []Scenario {
	cases := []struct {
		name      string
		exit      float64
		rateShift float64
	}{
		{"Exit value -10%", exit * 0.9, 0},
		{"Base case", exit, 0},
		{"Exit value +10%", exit * 1.1, 0},
		{"Rates +1%", exit, 1},
	}
	rows := make([]Scenario, 0, len(cases))
	for _, c := range cases {
		senior, mezz := payments(in, c.rateShift)
		ads := (senior + mezz) * constants.MonthsPerYear
		r := returnsAt(in, c.exit, mezzCost, c.rateShift)
		rows = append(rows, Scenario{
			Name:                c.name,
			ExitValue:           mathutil.Round(c.exit),
			TotalMonthlyPayment: mathutil.Round(senior + mezz),
			DSCR:                mathutil.Round(mathutil.SafeDivide(in.StabilizedNOI, ads)),
			ProjectedIRR:        mathutil.Round(r.irr),
			ReturnOnEquity:      mathutil.Round(r.roe),
		})
	}
	return rows
}

// RiskLevel grades a risk score.
func RiskLevel(score float64) string {
	switch {
	case score < 20:
		return RiskVeryLow
	case score < 40:
		return RiskLow
	case score < 60:
		return RiskModerate
	case score < 80:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Recommendation maps an approval probability to lender guidance.
func Recommendation(approval float64) string {
	switch {
	case approval >= 80:
		return "Strongly Recommended - Excellent project fundamentals with high approval probability"
	case approval >= 65:
		return "Recommended - Good project fundamentals with reasonable approval probability"
	case approval >= 50:
		return "Conditionally Recommended - Project has potential but requires improvements"
	case approval >= 35:
		return "Not Recommended - Significant risks and low approval probability"
	default:
		return "Strongly Not Recommended - High risk project with very low approval probability"
	}
}
