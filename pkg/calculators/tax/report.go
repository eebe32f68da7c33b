package tax

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

func refundLabel(v float64) string {
	if v >= 0 {
		return format.Currency(v) + " refund"
	}
	return format.Currency(-v) + " owed"
}

// Report renders the return as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Tax Analysis Report")

	state := "None"
	if in.State != "" && in.State != "none" {
		state = strings.ToUpper(in.State)
	}

	doc.Section("Summary").
		Paragraph("**Tax Year:** 2024 | **Filing Status:** %s | **State:** %s", format.Label(in.FilingStatus), state).
		KeyValues(
			report.KV("Total Tax Liability", format.Currency(out.TotalTaxLiability)),
			report.KV("Effective Tax Rate", format.Percent(out.EffectiveTaxRate)),
			report.KV("Marginal Tax Rate", format.PercentPlaces(out.MarginalTaxRate, 0)),
			report.KV("Federal", refundLabel(out.RefundOrOwed)),
			report.KV("State", refundLabel(out.StateRefundOrOwed)),
			report.KV("Tax Efficiency Score", fmt.Sprintf("%.0f/100", out.TaxEfficiencyScore)),
		)

	doc.Section("Income").KeyValues(
		report.KV("Gross Income", format.Currency(out.GrossIncome)),
		report.KV("Adjustments", format.Currency(out.Adjustments)),
		report.KV("Adjusted Gross Income", format.Currency(out.AdjustedGrossIncome)),
		report.KV("After-Tax Income", format.Currency(out.AfterTaxIncome)),
	)

	rows := make([][]string, 0, len(out.Deductions))
	for _, d := range out.Deductions {
		rows = append(rows, []string{d.Type, format.Currency(d.Amount), format.Bool(d.Used)})
	}
	doc.Section("Deductions").
		Table([]string{"Method", "Amount", "Used"}, rows).
		KeyValues(report.KV("Taxable Income", format.Currency(out.TaxableIncome)))

	rows = make([][]string, 0, len(out.BracketBreakdown))
	for _, b := range out.BracketBreakdown {
		rows = append(rows, []string{format.PercentPlaces(b.Rate, 0), format.Currency(b.Income), format.Currency(b.Tax)})
	}
	doc.Section("Federal Tax")
	if len(rows) > 0 {
		doc.Table([]string{"Bracket", "Income", "Tax"}, rows)
	}
	lines := [][2]string{report.KV("Regular Tax", format.Currency(out.RegularTax))}
	if out.AlternativeMinimumTax > 0 {
		lines = append(lines, report.KV("Alternative Minimum Tax", format.Currency(out.AlternativeMinimumTax)))
	}
	if out.SelfEmploymentTax > 0 {
		lines = append(lines, report.KV("Self-Employment Tax", format.Currency(out.SelfEmploymentTax)))
	}
	lines = append(lines,
		report.KV("Credits", format.Currency(-out.TotalCredits)),
		report.KV("Federal Tax", format.Currency(out.FederalTax)),
		report.KV("State Tax", format.Currency(out.StateTax)),
	)
	doc.KeyValues(lines...)

	var credits [][]string
	for _, c := range out.Credits {
		if c.Amount > 0 {
			credits = append(credits, []string{c.Type, format.Currency(c.Amount), format.Bool(c.Refundable)})
		}
	}
	if len(credits) > 0 {
		doc.Section("Credits").Table([]string{"Credit", "Amount", "Refundable"}, credits)
	}

	doc.Section("Payments").KeyValues(
		report.KV("Federal Withholding", format.Currency(in.FederalWithholding)),
		report.KV("Estimated Payments", format.Currency(in.EstimatedPayments)),
		report.KV("State Withholding", format.Currency(in.StateWithholding)),
		report.KV("Withholding", out.WithholdingAdvice),
	)

	doc.Section("Optimization Opportunities")
	if len(out.Suggestions) == 0 {
		doc.Paragraph("No significant optimization opportunities identified.")
	} else {
		items := make([]string, 0, len(out.Suggestions))
		for _, s := range out.Suggestions {
			item := "**" + s.Title + "**: " + s.Description
			if s.PotentialSavings > 0 {
				item += " Potential savings: " + format.Currency(s.PotentialSavings) + "."
			}
			items = append(items, item)
		}
		doc.Bullets(items...).
			Paragraph("Total potential savings: %s.", format.Currency(out.PotentialSavings))
	}

	doc.Section("Next Year").
		Paragraph("Assuming 3%% growth, next year's federal tax is estimated at %s.", format.Currency(out.NextYearEstimate))
	return doc.String()
}
