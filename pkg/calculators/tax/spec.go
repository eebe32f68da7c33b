package tax

import (
	"sort"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

func stateOptions() []calculator.Option {
	codes := make([]string, 0, len(stateRates))
	for code := range stateRates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	opts := []calculator.Option{{Value: "none", Label: "None"}}
	for _, code := range codes {
		opts = append(opts, calculator.Option{Value: code, Label: strings.ToUpper(code)})
	}
	return opts
}

func dollars(id, name string) calculator.Field {
	return calculator.Number(id, name, "USD").Range(0, 100000000).WithDefault(0)
}

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Income Tax Calculator",
		Category:    "finance",
		Subcategory: "tax",
		Description: "Estimate 2024 federal and state income tax, the refund or balance due and ways to lower the bill.",
	},
	Fields: []calculator.Field{
		calculator.Select("filingStatus", "Filing Status",
			Single, MarriedFilingJointly, MarriedFilingSeparately, HeadOfHousehold, QualifyingWidow).Req(),
		dollars("wages", "Wages and Salary"),
		dollars("selfEmploymentIncome", "Self-Employment Income"),
		dollars("interestIncome", "Interest Income"),
		dollars("dividendIncome", "Dividend Income"),
		dollars("capitalGains", "Capital Gains"),
		dollars("rentalIncome", "Rental Income"),
		dollars("otherIncome", "Other Income"),
		calculator.Number("studentLoanInterest", "Student Loan Interest", "USD").Range(0, 2500).WithDefault(0),
		calculator.Number("iraContribution", "IRA Contribution", "USD").Range(0, 8000).WithDefault(0),
		calculator.Number("hsaContribution", "HSA Contribution", "USD").Range(0, 8300).WithDefault(0),
		dollars("selfEmploymentHealthInsurance", "Self-Employed Health Insurance"),
		dollars("alimonyPaid", "Alimony Paid"),
		calculator.Select("deductionMethod", "Deduction Method", MethodStandard, MethodItemized).
			WithDefault(MethodStandard),
		dollars("stateLocalTaxes", "State and Local Taxes").Describe("Deductible up to $10,000"),
		dollars("mortgageInterest", "Mortgage Interest"),
		dollars("charitableContributions", "Charitable Contributions"),
		dollars("medicalExpenses", "Medical Expenses").Describe("Deductible above 7.5% of AGI"),
		dollars("otherItemized", "Other Itemized Deductions"),
		calculator.Number("dependents", "Qualifying Children", "").Int().Range(0, 20).WithDefault(0),
		calculator.Boolean("claimEarnedIncomeCredit", "Claim Earned Income Credit").WithDefault(false),
		dollars("educationCredits", "Education Credits"),
		dollars("otherCredits", "Other Credits"),
		calculator.SelectOptions("state", "State", stateOptions()...).WithDefault("none"),
		dollars("federalWithholding", "Federal Withholding"),
		dollars("estimatedPayments", "Estimated Payments"),
		dollars("stateWithholding", "State Withholding"),
		dollars("amtIncome", "AMT Income").Describe("Alternative minimum taxable income; 0 skips the AMT calculation"),
	},
	Rules: []validation.Rule{
		{Expr: "iraContribution <= wages + selfEmploymentIncome", Message: "IRA contribution cannot exceed earned income"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if in.DeductionMethod == MethodStandard &&
			in.StateLocalTaxes+in.MortgageInterest+in.CharitableContributions+in.MedicalExpenses+in.OtherItemized > 0 {
			c.Warnf("Itemized deduction amounts are ignored with the standard deduction")
		}
		if in.ClaimEarnedIncomeCredit && in.Wages+in.SelfEmploymentIncome == 0 {
			c.Warnf("Earned income credit requires wages or self-employment income")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Adjusted Gross Income", Expression: "AGI = Gross Income - Adjustments - ½ Self-Employment Tax"},
		{Name: "Taxable Income", Expression: "Taxable = max(0, AGI - Deduction)"},
		{Name: "Self-Employment Tax", Expression: "SE Tax = SE Income × 92.35% × 15.3%"},
		{Name: "Regular Tax", Expression: "Tax = Σ Income in Bracket × Bracket Rate"},
		{Name: "Alternative Minimum Tax", Expression: "AMT = max(0, 26% × (AMT Income - Exemption) - Regular Tax)"},
		{Name: "Child Tax Credit", Expression: "CTC = $2,000 × Children × (1 - clamp((AGI - Threshold) ÷ 40,000, 0, 1))"},
		{Name: "Federal Tax", Expression: "Federal = Regular + AMT - Nonrefundable Credits + SE Tax - EIC"},
		{Name: "Effective Rate", Expression: "Effective = (Federal + State) ÷ Gross Income × 100"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Single Salaried Employee",
			Description: "Single filer in Colorado with wages, a small portfolio and retirement contributions",
			Inputs: calculator.Inputs{
				"filingStatus": Single, "wages": 85000, "interestIncome": 1200, "dividendIncome": 800,
				"iraContribution": 3000, "hsaContribution": 2000, "state": "co",
				"federalWithholding": 9500, "stateWithholding": 3500,
			},
		},
		{
			Name:        "Married Couple with Children",
			Description: "Joint filers who itemize, with a side business and two children",
			Inputs: calculator.Inputs{
				"filingStatus": MarriedFilingJointly, "wages": 150000, "selfEmploymentIncome": 30000,
				"deductionMethod": MethodItemized, "stateLocalTaxes": 14000, "mortgageInterest": 16000,
				"charitableContributions": 5000, "dependents": 2, "state": "ca",
				"federalWithholding": 18000, "estimatedPayments": 4000, "stateWithholding": 9000,
			},
		},
	},
	Calculate: Calculate,
	Report:    Report,
}

// New returns the registered calculator.
func New() (calculator.Calculator, error) {
	return calculator.New(Spec)
}
