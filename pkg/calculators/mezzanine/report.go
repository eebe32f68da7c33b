package mezzanine

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

// Report renders the capital stack analysis as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Mezzanine Financing Analysis")

	doc.Section("Executive Summary").
		Paragraph("**Recommendation:** %s", out.Recommendation).
		KeyValues(
			report.KV("Risk Score", fmt.Sprintf("%.0f/100 (%s)", out.RiskScore, out.RiskLevel)),
			report.KV("Feasibility Score", fmt.Sprintf("%.0f/100", out.FeasibilityScore)),
			report.KV("Approval Probability", format.PercentPlaces(out.ApprovalProbability, 0)),
		)

	doc.Section("Capital Structure").Table(
		[]string{"Source", "Amount", "Share of Value"},
		[][]string{
			{"Senior Loan", format.Currency(in.SeniorLoanAmount), format.Percent(out.SeniorLeverage)},
			{"Mezzanine Loan", format.Currency(in.MezzanineLoanAmount), format.Percent(out.MezzanineLeverage)},
			{"Equity", format.Currency(in.EquityInvestment), format.Percent(out.EquityPercentage)},
			{"Total Capitalization", format.Currency(out.TotalCapitalization), ""},
		},
	).KeyValues(
		report.KV("Total Leverage", format.Percent(out.TotalLeverage)),
		report.KV("Loan to Cost", format.Percent(out.LoanToCost)),
		report.KV("Loan to Exit Value", format.Percent(out.LoanToExitValue)),
	)

	coverage := [][2]string{
		report.KV("Senior Monthly Payment", format.Currency(out.SeniorMonthlyPayment)),
		report.KV("Mezzanine Monthly Payment", format.Currency(out.MezzanineMonthlyPayment)),
		report.KV("Total Monthly Payment", format.Currency(out.TotalMonthlyPayment)),
		report.KV("Annual Debt Service", format.Currency(out.AnnualDebtService)),
	}
	if in.StabilizedNOI > 0 {
		coverage = append(coverage,
			report.KV("Debt Service Coverage", format.Ratio(out.DSCR)),
			report.KV("Interest Coverage", format.Ratio(out.InterestCoverageRatio)),
			report.KV("Break-Even Occupancy", format.Percent(out.BreakEvenOccupancy)),
		)
	}
	doc.Section("Debt Service").KeyValues(coverage...)

	doc.Section("Financing Costs").KeyValues(
		report.KV("Mezzanine Cost", fmt.Sprintf("%s (%s of loan)", format.Currency(out.MezzanineCost), format.Percent(out.MezzanineCostPercentage))),
		report.KV("Total Financing Cost", format.Currency(out.TotalFinancingCost)),
		report.KV("Weighted Average Rate", format.Percent(out.WeightedAverageCost)),
	)

	doc.Section("Projected Returns").
		Paragraph("Exit after %d years at %s.", in.ExitTimeline, format.Currency(out.ExitValue)).
		KeyValues(
			report.KV("Projected Gain", format.Currency(out.ProjectedGain)),
			report.KV("Net Exit Proceeds", format.Currency(out.NetExitProceeds)),
			report.KV("Equity Multiple", format.Ratio(out.EquityMultiple)),
			report.KV("Projected IRR", format.Percent(out.ProjectedIRR)),
			report.KV("Return on Equity", format.Percent(out.ReturnOnEquity)),
			report.KV("Return on Investment", format.Percent(out.ReturnOnInvestment)),
		)

	rows := make([][]string, 0, len(out.Sensitivity))
	for _, s := range out.Sensitivity {
		rows = append(rows, []string{
			s.Name,
			format.Currency(s.ExitValue),
			format.Currency(s.TotalMonthlyPayment),
			format.Ratio(s.DSCR),
			format.Percent(s.ProjectedIRR),
		})
	}
	doc.Section("Sensitivity Analysis").
		Table([]string{"Scenario", "Exit Value", "Monthly Payment", "DSCR", "IRR"}, rows)

	doc.Section("Project Profile").KeyValues(
		report.KV("Project Type", format.Label(in.ProjectType)),
		report.KV("Location", format.Label(in.Location)),
		report.KV("Market Condition", format.Label(in.MarketCondition)),
		report.KV("Lender Type", format.Label(in.LenderType)),
		report.KV("Exit Strategy", format.Label(in.ExitStrategy)),
		report.KV("Senior Lender Approval", format.Label(in.SeniorLenderApproval)),
	)
	return doc.String()
}
