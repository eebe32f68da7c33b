package debtyield

import (
	"fmt"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

// Report renders the analysis as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Debt Yield Ratio Analysis")

	status := "meets"
	if !out.MeetsRequirement {
		status = "falls short of"
	}
	doc.Section("Summary").
		Paragraph("The %s property produces a debt yield of **%s**, which %s the adjusted requirement of %s. Risk level: **%s**.",
			format.Label(in.PropertyType), format.Percent(out.DebtYield), status,
			format.Percent(out.AdjustedRequiredYield), out.RiskLevel).
		KeyValues(
			report.KV("Net Operating Income", format.Currency(out.NetOperatingIncome)),
			report.KV("Debt Yield", format.Percent(out.DebtYield)),
			report.KV("Yield Buffer", fmt.Sprintf("%+.2f pts", out.YieldBuffer)),
			report.KV("Maximum Loan Amount", format.Currency(out.MaxLoanAmount)),
			report.KV("Lender Risk Score", fmt.Sprintf("%.0f/100", out.LenderRiskScore)),
		)

	doc.Section("Income").KeyValues(
		report.KV("Gross Rental Income", format.Currency(in.GrossRentalIncome)),
		report.KV("Other Income", format.Currency(in.OtherIncome)),
		report.KV("Vacancy Loss", format.Currency(out.VacancyLoss)),
		report.KV("Effective Gross Income", format.Currency(out.EffectiveGrossIncome)),
		report.KV("Operating Expenses", format.Currency(in.OperatingExpenses)),
		report.KV("Net Operating Income", format.Currency(out.NetOperatingIncome)),
	)

	doc.Section("Lender Requirements").KeyValues(
		report.KV("Base Required Yield", format.Percent(in.RequiredDebtYield)),
		report.KV("Tenant Credit ("+format.Label(in.TenantCreditRating)+")", fmt.Sprintf("%+.1f pts", out.CreditAdjustment)),
		report.KV("Market ("+format.Label(in.MarketConditions)+")", fmt.Sprintf("%+.1f pts", out.MarketAdjustment)),
		report.KV("Adjusted Required Yield", format.Percent(out.AdjustedRequiredYield)),
		report.KV("Minimum Required NOI", format.Currency(out.MinimumRequiredNOI)),
		report.KV("Additional Loan Capacity", format.Currency(out.AdditionalCapacity)),
	)

	doc.Section("Loan Metrics").KeyValues(
		report.KV("Loan Amount", format.Currency(in.LoanAmount)),
		report.KV("Loan-to-Value", format.Percent(out.LoanToValue)),
		report.KV("Cap Rate", format.Percent(out.CapRate)),
		report.KV("Annual Debt Service", format.Currency(out.AnnualDebtService)),
		report.KV("DSCR", format.Ratio(out.DSCR)),
		report.KV("Cash Flow After Debt Service", format.Currency(out.CashFlowAfterDebtService)),
	)

	rows := make([][]string, 0, len(out.Sensitivity))
	for _, row := range out.Sensitivity {
		rows = append(rows, []string{
			fmt.Sprintf("%+.0f%%", row.NOIChange),
			format.Currency(row.NetOperatingIncome),
			format.Percent(row.DebtYield),
			format.Currency(row.MaxLoanAmount),
			format.Bool(row.MeetsRequirement),
		})
	}
	doc.Section("Sensitivity Analysis").
		Table([]string{"NOI Change", "NOI", "Debt Yield", "Maximum Loan", "Meets Requirement"}, rows)

	doc.Section("Recommendation").Paragraph("%s", recommendation(out))
	return doc.String()
}

func recommendation(out Outputs) string {
	switch out.RiskLevel {
	case RiskLow:
		return "The yield clears the requirement comfortably. The property should support the requested loan and possibly more."
	case RiskModerate:
		return "The yield clears the requirement with a modest cushion. Expect standard underwriting scrutiny."
	case RiskHigh:
		return "The yield barely meets the requirement. A small NOI decline would put the loan out of compliance."
	default:
		return fmt.Sprintf("The yield is below the requirement. Reduce the loan to %s or raise NOI to %s.",
			format.Currency(out.MaxLoanAmount), format.Currency(out.MinimumRequiredNOI))
	}
}
