package earthquake

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

// Report renders the premium and risk analysis as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Earthquake Insurance Analysis")

	doc.Section("Property Details").KeyValues(
		report.KV("Property Value", format.Currency(in.PropertyValue)),
		report.KV("Location", in.Location),
		report.KV("Seismic Zone", strings.Replace(in.SeismicZone, "zone-", "Zone ", 1)),
		report.KV("Building", fmt.Sprintf("%s, %d years, %d stories", format.Label(in.BuildingType), in.BuildingAge, in.Stories)),
		report.KV("Foundation", format.Label(in.FoundationType)),
		report.KV("Soil", format.Label(in.SoilType)),
		report.KV("Retrofit Status", format.Label(in.RetrofitStatus)),
	)

	premium := [][2]string{
		report.KV("Annual Premium", format.Currency(out.AnnualPremium)),
		report.KV("Monthly Premium", format.Currency(out.MonthlyPremium)),
		report.KV("Premium per $1,000", format.Currency(out.PremiumPerThousand)),
		report.KV("Deductible", fmt.Sprintf("%s (%s)", format.Percent(in.DeductiblePercentage), format.Currency(out.DeductibleAmount))),
	}
	if out.PremiumPerSquareFoot > 0 {
		premium = append(premium, report.KV("Premium per sq ft", format.Currency(out.PremiumPerSquareFoot)))
	}
	if out.BusinessInterruption > 0 {
		premium = append(premium, report.KV("Business Interruption Premium", format.Currency(out.BusinessInterruption)))
	}
	doc.Section("Premium").KeyValues(premium...)

	factors := make([][]string, 0, len(out.PremiumFactors))
	for _, f := range out.PremiumFactors {
		factors = append(factors, []string{f.Name, format.Label(f.Value), fmt.Sprintf("%.2fx", f.Multiplier)})
	}
	doc.Section("Premium Factors").
		Table([]string{"Factor", "Value", "Multiplier"}, factors).
		Paragraph("Combined base rate: %s per $1,000 of coverage.", format.Decimal(out.BaseRate, 4))

	lines := make([][]string, 0, len(out.CoverageBreakdown))
	for _, l := range out.CoverageBreakdown {
		lines = append(lines, []string{l.Name, format.Currency(l.Amount)})
	}
	doc.Section("Coverage Breakdown").Table([]string{"Coverage", "Amount"}, lines)

	doc.Section("Risk Assessment").KeyValues(
		report.KV("Risk Score", fmt.Sprintf("%d/100", out.RiskScore)),
		report.KV("Seismic Risk Level", out.SeismicRiskLevel),
		report.KV("Claim Probability (30 years)", format.PercentPlaces(out.ClaimProbability, 1)),
		report.KV("Expected Loss", format.Currency(out.ExpectedLoss)),
	)

	verdict := "Insurance appears cost-effective at the estimated claim probability."
	if !out.CostEffective {
		verdict = "The estimated claim probability is below break-even; a higher deductible or self-insurance may be cheaper."
	}
	doc.Section("Cost-Benefit Analysis").KeyValues(
		report.KV("30-Year Premiums", format.Currency(out.ThirtyYearPremiums)),
		report.KV("Potential Loss", format.Currency(out.PotentialLoss)),
		report.KV("Break-Even Probability", format.PercentPlaces(out.BreakEvenProbability, 1)),
	).Paragraph("%s", verdict)

	doc.Section("Recommendations").Bullets(out.Recommendations...)
	doc.Section("Mitigation").Bullets(out.MitigationMeasures...)
	return doc.String()
}
