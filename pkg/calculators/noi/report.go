package noi

import (
	"strconv"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

func lineRows(lines []LineItem) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{l.Name, format.Currency(l.Amount), format.Percent(l.Percentage)})
	}
	return rows
}

// Report renders the income statement as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Net Operating Income Analysis")

	doc.Section("Summary").
		Paragraph("%s property valued at %s.", format.Label(in.PropertyType), format.Currency(in.PropertyValue)).
		KeyValues(
			report.KV("Net Operating Income", format.Currency(out.NetOperatingIncome)),
			report.KV("NOI Margin", format.Percent(out.NOIMargin)+" ("+out.NOIRating+")"),
			report.KV("Expense Ratio", format.Percent(out.ExpenseRatio)+" ("+out.EfficiencyRating+")"),
			report.KV("Cap Rate", format.Percent(out.CapRate)),
		)

	doc.Section("Income").KeyValues(
		report.KV("Potential Rental Income", format.Currency(out.PotentialRentalIncome)),
		report.KV("Vacancy Loss", format.Currency(-out.VacancyLoss)),
		report.KV("Credit Loss", format.Currency(-out.CreditLoss)),
		report.KV("Other Income", format.Currency(out.OtherIncomeTotal)),
		report.KV("Effective Gross Income", format.Currency(out.EffectiveGrossIncome)),
	)
	if len(out.IncomeBreakdown) > 0 {
		doc.Heading(3, "Income Breakdown").Table([]string{"Source", "Amount", "Share"}, lineRows(out.IncomeBreakdown))
	}

	doc.Section("Operating Expenses").KeyValues(
		report.KV("Total Operating Expenses", format.Currency(out.TotalOperatingExpenses)),
	)
	if len(out.ExpenseBreakdown) > 0 {
		doc.Heading(3, "Expense Breakdown").Table([]string{"Expense", "Amount", "Share"}, lineRows(out.ExpenseBreakdown))
	}

	metrics := [][2]string{
		report.KV("Cash Flow After CapEx", format.Currency(out.CashFlowAfterCapex)),
	}
	if in.PropertySize > 0 {
		metrics = append(metrics,
			report.KV("NOI per Sq Ft", format.Currency(out.NOIPerSquareFoot)),
			report.KV("Expenses per Sq Ft", format.Currency(out.ExpensePerSquareFoot)),
		)
	}
	if in.MarketCapRate > 0 {
		metrics = append(metrics, report.KV("Value at Market Cap Rate", format.Currency(out.ImpliedValue)))
	}
	if in.ComparableNOI > 0 {
		metrics = append(metrics, report.KV("NOI vs Comparable", format.Percent(out.NOIVsComparable)))
	}
	doc.Section("Valuation").KeyValues(metrics...)

	doc.Section("Assessment")
	if len(out.Strengths) > 0 {
		doc.Heading(3, "Strengths").Bullets(out.Strengths...)
	}
	if len(out.Weaknesses) > 0 {
		doc.Heading(3, "Weaknesses").Bullets(out.Weaknesses...)
	}

	rows := make([][]string, 0, len(out.Projections))
	for _, p := range out.Projections {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			format.Currency(p.Income),
			format.Currency(p.Expenses),
			format.Currency(p.NOI),
			format.Currency(p.PropertyValue),
		})
	}
	doc.Section("Projections").
		Table([]string{"Year", "Income", "Expenses", "NOI", "Value"}, rows)
	return doc.String()
}
