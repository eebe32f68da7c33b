package dscr

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

// Report renders the analysis as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Debt Service Coverage Ratio Analysis")

	status := "meets"
	if !out.MeetsRequirement {
		status = "does not meet"
	}
	doc.Section("Summary").
		Paragraph("This %s property produces a DSCR of **%s**, which %s the lender requirement of %s. Risk level: **%s**.",
			format.Label(in.PropertyType), format.Ratio(out.DSCR), status, format.Ratio(in.LenderDSCR), out.RiskLevel).
		KeyValues(
			report.KV("Net Operating Income", format.Currency(out.NetOperatingIncome)),
			report.KV("Annual Debt Service", format.Currency(out.AnnualDebtService)),
			report.KV("DSCR", format.Ratio(out.DSCR)),
			report.KV("Margin Over Requirement", format.Percent(out.DSCRMargin)),
			report.KV("Annual Cash Flow", format.Currency(out.CashFlow)),
			report.KV("Cash Flow After Reserves", format.Currency(out.CashFlowAfterReserves)),
			report.KV("Cash-on-Cash Return", format.Percent(out.CashOnCashReturn)),
		)

	doc.Section("Income Analysis").KeyValues(
		report.KV("Gross Potential Income", format.Currency(out.GrossPotentialIncome)),
		report.KV("Vacancy Loss", format.Currency(out.VacancyLoss)),
		report.KV("Effective Gross Income", format.Currency(out.EffectiveGrossIncome)),
		report.KV("Operating Expenses", format.Currency(out.TotalOperatingExpenses)),
		report.KV("Net Operating Income", format.Currency(out.NetOperatingIncome)),
		report.KV("Break-Even Occupancy", format.Percent(out.BreakEvenOccupancy)),
		report.KV("Reserves and Capital Costs", format.Currency(out.CapitalCosts)),
		report.KV(fmt.Sprintf("Value at %s Cap Rate", format.Percent(in.MarketCapRate)), format.Currency(out.MarketValue)),
	)

	debt := [][2]string{
		report.KV("Loan Amount", format.Currency(in.LoanAmount)),
		report.KV("Monthly Payment", format.Currency(out.MonthlyPayment)),
		report.KV("Loan-to-Value", format.Percent(out.LoanToValue)),
		report.KV("Debt Yield", format.Percent(out.DebtYield)),
		report.KV("Maximum Loan at Requirement", format.Currency(out.MaximumLoanAmount)),
		report.KV("Additional Loan Capacity", format.Currency(out.AdditionalCapacity)),
		report.KV("NOI Cushion", format.Percent(out.NOICushion)),
	}
	if out.BalloonPayment > 0 {
		debt = append(debt, report.KV(fmt.Sprintf("Balloon Due in Year %d", in.LoanTerm), format.Currency(out.BalloonPayment)))
	}
	doc.Section("Debt Analysis").KeyValues(debt...)

	sens := make([][]string, 0, len(out.Sensitivity))
	for _, row := range out.Sensitivity {
		sens = append(sens, []string{
			fmt.Sprintf("%+.0f%%", row.NOIChange),
			format.Currency(row.NetOperatingIncome),
			format.Ratio(row.DSCR),
			format.Bool(row.MeetsRequirement),
		})
	}
	doc.Section("Sensitivity Analysis").
		Table([]string{"NOI Change", "NOI", "DSCR", "Meets Requirement"}, sens)

	if len(out.Projections) > 0 {
		rows := make([][]string, 0, len(out.Projections))
		for _, p := range out.Projections {
			rows = append(rows, []string{
				strconv.Itoa(p.Year),
				format.Currency(p.NetOperatingIncome),
				format.Ratio(p.DSCR),
				format.Currency(p.CashFlow),
				format.Currency(p.CumulativeCashFlow),
				format.Currency(p.PropertyValue),
				format.Currency(p.MarketValue),
				format.Currency(p.Equity),
			})
		}
		doc.Section("Projections").
			Paragraph("Income grows %s and expenses grow %s per year against constant debt service. The property appreciates %s per year.",
				format.Percent(in.IncomeGrowthRate), format.Percent(in.ExpenseGrowthRate), format.Percent(in.AppreciationRate)).
			Table([]string{"Year", "NOI", "DSCR", "Cash Flow", "Cumulative", "Property Value", "Market Value", "Equity"}, rows)
	}

	doc.Section("Recommendation").Paragraph("%s", recommendation(out))
	return doc.String()
}

func recommendation(out Outputs) string {
	switch out.RiskLevel {
	case RiskLow:
		return "Coverage is strong. The property should qualify with most lenders and may support additional leverage."
	case RiskModerate:
		return "Coverage is adequate. Expect standard terms, but monitor expenses and vacancy closely."
	case RiskHigh:
		return "Coverage is thin. Consider a smaller loan, a longer amortization, or improving NOI before financing."
	default:
		return "The property does not cover its debt service. Restructure the financing or increase income before proceeding."
	}
}
