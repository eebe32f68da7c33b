package mezzanine

import (
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Mezzanine Financing Calculator",
		Category:    "finance",
		Subcategory: "real-estate",
		Description: "Analyze a senior and mezzanine capital stack: payments, coverage, costs, projected equity returns and a lender risk and approval assessment.",
	},
	Fields: []calculator.Field{
		calculator.Number("projectValue", "Project Value", "USD").Req().Range(1, 10000000000),
		calculator.Number("seniorLoanAmount", "Senior Loan Amount", "USD").Req().Range(0, 10000000000),
		calculator.Number("mezzanineLoanAmount", "Mezzanine Loan Amount", "USD").Req().Range(1, 10000000000),
		calculator.Number("equityInvestment", "Equity Investment", "USD").Req().Range(0, 10000000000),
		calculator.Number("seniorLoanRate", "Senior Loan Rate", "%").Range(0, 25).WithDefault(6),
		calculator.Number("mezzanineLoanRate", "Mezzanine Loan Rate", "%").Range(0, 30).WithDefault(12),
		calculator.Number("seniorLoanTerm", "Senior Loan Term", "years").Int().Range(1, 40).WithDefault(30),
		calculator.Number("mezzanineLoanTerm", "Mezzanine Loan Term", "years").Int().Range(1, 15).WithDefault(5),
		calculator.Number("stabilizedNOI", "Stabilized NOI", "USD").AtLeast(0).WithDefault(0),
		calculator.Number("exitValue", "Exit Value", "USD").AtLeast(0).WithDefault(0).
			Describe("Expected sale or refinance value; 0 assumes 120% of project value"),
		calculator.Number("exitTimeline", "Exit Timeline", "years").Int().Range(1, 30).WithDefault(5),
		calculator.Number("mezzanineFees", "Mezzanine Fees", "USD").AtLeast(0).WithDefault(0),
		calculator.Number("mezzaninePoints", "Mezzanine Points", "%").Range(0, 10).WithDefault(2),
		calculator.Number("borrowerCreditScore", "Borrower Credit Score", "").Int().Range(300, 850),
		calculator.Number("preLeasingPercentage", "Pre-Leasing Percentage", "%").Range(0, 100),
		calculator.Number("projectTimeline", "Project Timeline", "months").Int().Range(1, 120),
		calculator.Select("projectType", "Project Type",
			"residential", "commercial", "industrial", "mixed-use", "hospitality", "healthcare",
			"educational", "retail", "office", "warehouse", "multifamily", "single-family",
			"land-development").WithDefault("commercial"),
		calculator.Select("location", "Location",
			"urban", "suburban", "rural", "downtown", "airport-area", "university-area",
			"medical-district", "business-district", "residential-area", "industrial-zone",
			"coastal", "mountain", "desert").WithDefault("urban"),
		calculator.Select("marketCondition", "Market Condition",
			"strong", "stable", "weak", "recovering", "declining", "volatile").WithDefault("stable"),
		calculator.Select("lenderType", "Lender Type",
			"private-equity", "hedge-fund", "real-estate-fund", "insurance-company", "pension-fund",
			"family-office", "commercial-bank", "investment-bank", "credit-union",
			"hard-money-lender").WithDefault("private-equity"),
		calculator.Select("borrowerExperience", "Borrower Experience",
			"novice", "experienced", "expert", "institutional").WithDefault("experienced"),
		calculator.Select("preLeasing", "Pre-Leasing Status",
			"none", "partial", "substantial", "fully-leased").WithDefault("partial"),
		calculator.Select("environmentalIssues", "Environmental Issues",
			"none", "minor", "moderate", "significant", "unknown").WithDefault("none"),
		calculator.Select("zoningIssues", "Zoning Issues",
			"none", "minor", "moderate", "significant", "pending-approval").WithDefault("none"),
		calculator.Select("constructionRisk", "Construction Risk",
			"low", "moderate", "high", "very-high").WithDefault("moderate"),
		calculator.Select("marketRisk", "Market Risk",
			"low", "moderate", "high", "very-high").WithDefault("moderate"),
		calculator.Select("exitStrategy", "Exit Strategy",
			"sale", "refinance", "hold", "ipo", "merger", "joint-venture", "1031-exchange").WithDefault("sale"),
		calculator.Select("seniorLenderApproval", "Senior Lender Approval",
			"approved", "pending", "conditional", "denied", "not-required").WithDefault("pending"),
		calculator.Select("guaranteeRequired", "Guarantee",
			"none", "partial", "full", "corporate-only").WithDefault("partial"),
	},
	Rules: []validation.Rule{
		{Expr: "seniorLoanAmount + mezzanineLoanAmount <= projectValue", Message: "Total debt cannot exceed project value"},
		{Expr: "seniorLoanAmount + mezzanineLoanAmount + equityInvestment >= projectValue * 0.5", Message: "Total capital must cover at least half the project value"},
		{Expr: "mezzanineLoanTerm <= seniorLoanTerm", Message: "Mezzanine loan term cannot exceed senior loan term"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if in.MezzanineLoanAmount > in.SeniorLoanAmount {
			c.Warnf("Mezzanine loan exceeds the senior loan; most structures keep the senior tranche larger")
		}
		if in.StabilizedNOI == 0 {
			c.Warnf("Stabilized NOI not provided; coverage ratios are reported as 0")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Loan to Cost", Expression: "LTC = (Senior Loan + Mezzanine Loan) ÷ Total Capitalization × 100"},
		{Name: "Debt Service Coverage", Expression: "DSCR = Stabilized NOI ÷ (Senior + Mezzanine Payments × 12)"},
		{Name: "Interest Coverage", Expression: "ICR = Stabilized NOI ÷ (Senior Balance × Senior Rate + Mezzanine Balance × Mezzanine Rate)"},
		{Name: "Mezzanine Cost", Expression: "Mezzanine Cost = Fees + Mezzanine Loan × Points"},
		{Name: "Weighted Average Cost", Expression: "WAC = (Senior × Senior Rate + Mezzanine × Mezzanine Rate) ÷ Total Debt"},
		{Name: "Net Exit Proceeds", Expression: "Proceeds = Exit Value - Remaining Senior Balance - Remaining Mezzanine Balance"},
		{Name: "Projected IRR", Expression: "IRR = (Proceeds ÷ Equity)^(1 ÷ Years) - 1"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Multifamily Recapitalization",
			Description: "$10M multifamily project with a $6M senior loan and $1.5M mezzanine piece",
			Inputs: calculator.Inputs{
				"projectValue": 10000000, "seniorLoanAmount": 6000000, "mezzanineLoanAmount": 1500000,
				"equityInvestment": 2500000, "seniorLoanRate": 6.5, "mezzanineLoanRate": 12,
				"seniorLoanTerm": 30, "mezzanineLoanTerm": 5, "stabilizedNOI": 850000, "exitValue": 12500000,
				"exitTimeline": 5, "mezzanineFees": 25000, "mezzaninePoints": 2, "borrowerCreditScore": 740,
				"preLeasingPercentage": 65, "projectTimeline": 18, "projectType": "multifamily",
				"location": "suburban", "marketCondition": "stable", "lenderType": "private-equity",
				"borrowerExperience": "experienced", "preLeasing": "substantial", "environmentalIssues": "none",
				"zoningIssues": "none", "constructionRisk": "moderate", "marketRisk": "moderate",
				"exitStrategy": "sale", "seniorLenderApproval": "approved", "guaranteeRequired": "partial",
			},
		},
		{
			Name:        "Highly Leveraged Hotel Development",
			Description: "Hotel development at 88% loan to value with a novice sponsor",
			Inputs: calculator.Inputs{
				"projectValue": 25000000, "seniorLoanAmount": 16000000, "mezzanineLoanAmount": 6000000,
				"equityInvestment": 3000000, "seniorLoanRate": 7.5, "mezzanineLoanRate": 14,
				"seniorLoanTerm": 25, "mezzanineLoanTerm": 3, "stabilizedNOI": 2400000, "exitTimeline": 4,
				"mezzaninePoints": 2.5, "borrowerCreditScore": 660, "projectTimeline": 30,
				"projectType": "hospitality", "location": "coastal", "marketCondition": "volatile",
				"lenderType": "hard-money-lender", "borrowerExperience": "novice", "preLeasing": "none",
				"constructionRisk": "high", "marketRisk": "high", "seniorLenderApproval": "conditional",
				"guaranteeRequired": "full",
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
