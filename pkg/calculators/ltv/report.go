package ltv

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/report"
)

func programName(loanType string) string {
	if loanType == Conventional || loanType == Jumbo {
		return format.Label(loanType)
	}
	return strings.ToUpper(loanType)
}

func recommendations(in Inputs, out Outputs) []string {
	var recs []string
	program := programName(in.LoanType)

	if out.ExceedsProgramLimit {
		over := in.LoanAmount + in.SecondLoanAmount - mathutil.ApplyPercentage(in.PropertyValue, out.MaxLTVForProgram)
		recs = append(recs, fmt.Sprintf("Combined LTV of %s exceeds the %s maximum for %s loans; reduce total borrowing by %s.",
			format.Percent(out.CLTV), format.Percent(out.MaxLTVForProgram), program, format.Currency(mathutil.Round(over))))
	}
	switch {
	case in.LoanType == Conventional && out.MortgageInsuranceRequired:
		paydown := in.LoanAmount - mathutil.ApplyPercentage(in.PropertyValue, miThreshold)
		recs = append(recs, fmt.Sprintf("Putting down another %s brings LTV to 80%% and removes mortgage insurance.",
			format.Currency(mathutil.Round(paydown))))
		if in.CreditScore < 740 {
			recs = append(recs, "Raising the credit score to 740 or above lowers the mortgage insurance premium.")
		}
	case in.LoanType == FHA:
		recs = append(recs, "FHA mortgage insurance is charged regardless of down payment; consider refinancing to a conventional loan once equity reaches 20%.")
	case in.LoanType == USDA:
		recs = append(recs, "USDA guarantee fees apply for the life of the loan.")
	}
	if out.PaydownToTarget > 0 {
		recs = append(recs, fmt.Sprintf("Reduce the loan by %s to reach the %s target LTV.",
			format.Currency(out.PaydownToTarget), format.Percent(in.TargetLTV)))
	}
	if out.Equity < 0 {
		recs = append(recs, "The property is underwater; refinancing options are limited until value recovers or the balance is paid down.")
	}
	if out.RiskLevel == RiskLow {
		recs = append(recs, "Strong equity position qualifies for the best pricing tiers.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Leverage is within program and target limits.")
	}
	return recs
}

// Report renders the analysis as Markdown.
func Report(in Inputs, out Outputs) string {
	doc := report.New("Loan-to-Value Analysis")
	program := programName(in.LoanType)

	doc.Section("Summary").
		Paragraph("A %s %s loan against a %s property is **%s** LTV (%s CLTV). Rating: **%s**. Risk level: **%s**.",
			format.Currency(in.LoanAmount), program, format.Currency(in.PropertyValue),
			format.Percent(out.LTV), format.Percent(out.CLTV), out.LTVRating, out.RiskLevel).
		KeyValues(
			report.KV("Loan-to-Value", format.Percent(out.LTV)),
			report.KV("Combined LTV", format.Percent(out.CLTV)),
			report.KV("Equity", format.Currency(out.Equity)),
			report.KV("Equity Percentage", format.Percent(out.EquityPercentage)),
		)

	limit := "Within limit"
	if out.ExceedsProgramLimit {
		limit = "Exceeds limit"
	}
	doc.Section("Program Limits").KeyValues(
		report.KV("Program", program),
		report.KV("Maximum LTV", format.Percent(out.MaxLTVForProgram)),
		report.KV("Status", limit),
	)

	doc.Section("Mortgage Insurance")
	if out.MortgageInsuranceRequired {
		doc.KeyValues(
			report.KV("Annual Rate", format.PercentPlaces(out.AnnualInsuranceRate, 3)),
			report.KV("Monthly Premium", format.Currency(out.MonthlyMortgageInsurance)),
			report.KV("Estimated Months", fmt.Sprintf("%d", out.InsuranceMonths)),
			report.KV("Estimated Total", format.Currency(out.TotalMortgageInsurance)),
		)
	} else {
		doc.Paragraph("No mortgage insurance is required.")
	}

	doc.Section("Payment").KeyValues(
		report.KV("Principal and Interest", format.Currency(out.MonthlyPayment)),
		report.KV("Mortgage Insurance", format.Currency(out.MonthlyMortgageInsurance)),
		report.KV("Total Monthly Payment", format.Currency(out.TotalMonthlyPayment)),
	)

	doc.Section("Target").KeyValues(
		report.KV("Target LTV", format.Percent(in.TargetLTV)),
		report.KV("Maximum Loan at Target", format.Currency(out.MaxLoanAtTarget)),
		report.KV("Paydown to Target", format.Currency(out.PaydownToTarget)),
	)

	doc.Section("Recommendations").Bullets(out.Recommendations...)
	return doc.String()
}
