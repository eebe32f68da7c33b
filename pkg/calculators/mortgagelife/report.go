package mortgagelife

import (
	"strconv"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

// Report renders the policy quote as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Mortgage Life Insurance Analysis")

	doc.Section("Summary").
		Paragraph("%s", out.Recommendation).
		KeyValues(
			report.KV("Coverage Amount", format.Currency(out.CoverageAmount)),
			report.KV("Coverage Type", format.Label(in.CoverageType)),
			report.KV("Monthly Premium", format.Currency(out.MonthlyPremium)),
			report.KV("Annual Premium", format.Currency(out.AnnualPremium)),
			report.KV("Total Premiums", format.Currency(out.TotalPremiums)),
		)

	doc.Section("Borrower").KeyValues(
		report.KV("Age", strconv.Itoa(in.BorrowerAge)),
		report.KV("Gender", format.Label(in.Gender)),
		report.KV("Smoker", format.Bool(in.Smoker)),
		report.KV("Health Rating", format.Label(in.HealthRating)),
		report.KV("Rate per $1,000", format.Decimal(out.RatePerThousand, 4)),
	)

	doc.Section("Coverage").KeyValues(
		report.KV("Average Coverage", format.Currency(out.AverageCoverage)),
		report.KV("Mid-Term Coverage", format.Currency(out.MidTermCoverage)),
		report.KV("Cost per $1,000", format.Currency(out.CostPerThousand)),
		report.KV("Coverage Gap", format.Currency(out.CoverageGap)),
		report.KV("Mortgage Interest Remaining", format.Currency(out.RemainingInterest)),
	)

	rows := make([][]string, 0, len(out.CoverageSchedule))
	for _, y := range out.CoverageSchedule {
		rows = append(rows, []string{
			strconv.Itoa(y.Year),
			strconv.Itoa(y.Age),
			format.Currency(y.StartCoverage),
			format.Currency(y.EndCoverage),
			format.Currency(y.MortgageBalance),
			format.Currency(y.InterestPaid),
		})
	}
	doc.Heading(3, "Coverage Schedule").
		Table([]string{"Year", "Age", "Start Coverage", "End Coverage", "Mortgage Balance", "Interest Paid"}, rows)

	doc.Section("Term Life Comparison").KeyValues(
		report.KV("Term Life Annual Premium", format.Currency(out.TermLifeAnnualPremium)),
		report.KV("Mortgage Life Annual Premium", format.Currency(out.AnnualPremium)),
		report.KV("Annual Difference", format.Currency(out.AnnualSavingsWithTerm)),
		report.KV("Difference over Term", format.Currency(out.TotalSavingsWithTerm)),
	)

	affordability := report.KV("Affordability Score", strconv.Itoa(out.AffordabilityScore)+"/100")
	if in.MonthlyIncome > 0 {
		doc.Section("Affordability").KeyValues(
			report.KV("Premium to Income", format.Percent(out.PremiumToIncome)),
			affordability,
		)
	} else {
		doc.Section("Affordability").
			Paragraph("Monthly income was not provided.").
			KeyValues(affordability)
	}
	return doc.String()
}
