package debtyield

import (
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Debt Yield Ratio Calculator",
		Category:    "finance",
		Subcategory: "real-estate",
		Description: "Calculate the debt yield on a commercial loan, the maximum loan the property supports and how sensitive the yield is to NOI.",
	},
	Fields: []calculator.Field{
		calculator.SelectOptions("propertyType", "Property Type",
			calculator.Option{Value: "office", Label: "Office Building"},
			calculator.Option{Value: "retail", Label: "Retail/Commercial"},
			calculator.Option{Value: "industrial", Label: "Industrial/Warehouse"},
			calculator.Option{Value: "multifamily", Label: "Multifamily"},
			calculator.Option{Value: "hotel", Label: "Hotel/Motel"},
			calculator.Option{Value: "mixed-use", Label: "Mixed-Use"},
		).WithDefault("office"),
		calculator.Number("grossRentalIncome", "Gross Rental Income", "USD").Req().Range(0, 1000000000),
		calculator.Number("otherIncome", "Other Income", "USD").Range(0, 100000000).WithDefault(0),
		calculator.Number("vacancyRate", "Vacancy Rate", "%").Range(0, 50).WithDefault(5).
			Describe("Applied to rental and other income"),
		calculator.Number("operatingExpenses", "Operating Expenses", "USD").AtLeast(0).WithDefault(0),
		calculator.Number("loanAmount", "Loan Amount", "USD").Req().Range(1, 10000000000),
		calculator.Number("propertyValue", "Property Value", "USD").Req().Range(1, 10000000000),
		calculator.Number("requiredDebtYield", "Required Debt Yield", "%").Range(5, 20).WithDefault(10),
		calculator.Number("interestRate", "Interest Rate", "%").Range(0, 25).WithDefault(6),
		calculator.Number("amortizationPeriod", "Amortization Period", "years").Int().Range(1, 40).WithDefault(30),
		calculator.Select("tenantCreditRating", "Tenant Credit Rating",
			"investment-grade", "non-investment-grade", "speculative", "unrated").WithDefault("unrated"),
		calculator.Select("marketConditions", "Market Conditions",
			"strong", "stable", "weak", "declining").WithDefault("stable"),
	},
	Rules: []validation.Rule{
		{Expr: "loanAmount <= propertyValue", Message: "Loan amount cannot exceed property value"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if in.OperatingExpenses > in.GrossRentalIncome+in.OtherIncome {
			c.Warnf("Operating expenses exceed gross income; NOI will be negative")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Net Operating Income", Expression: "NOI = (Gross Rental Income + Other Income) × (1 - Vacancy Rate) - Operating Expenses"},
		{Name: "Debt Yield", Expression: "Debt Yield = (NOI ÷ Loan Amount) × 100"},
		{Name: "Adjusted Required Yield", Expression: "Adjusted = Required + Credit Adjustment + Market Adjustment"},
		{Name: "Maximum Loan Amount", Expression: "Maximum Loan = NOI ÷ (Adjusted Required Yield ÷ 100)"},
		{Name: "Minimum Required NOI", Expression: "Minimum NOI = Loan Amount × Adjusted Required Yield ÷ 100"},
		{Name: "Lender Risk Score", Expression: "Score = 50 - Buffer × 10 + Credit Adjustment × 10 + Market Adjustment × 10"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Suburban Office",
			Description: "Office building with $1M rent, a $6M loan and an unrated tenant base",
			Inputs: calculator.Inputs{
				"propertyType": "office", "grossRentalIncome": 1000000, "otherIncome": 50000, "vacancyRate": 5,
				"operatingExpenses": 350000, "loanAmount": 6000000, "propertyValue": 9000000,
				"requiredDebtYield": 10, "interestRate": 6, "amortizationPeriod": 30,
			},
		},
		{
			Name:        "Credit-Tenant Industrial",
			Description: "Warehouse leased to an investment-grade tenant in a strong market",
			Inputs: calculator.Inputs{
				"propertyType": "industrial", "grossRentalIncome": 750000, "vacancyRate": 2,
				"operatingExpenses": 120000, "loanAmount": 5000000, "propertyValue": 8500000,
				"requiredDebtYield": 9, "interestRate": 5.75, "amortizationPeriod": 25,
				"tenantCreditRating": "investment-grade", "marketConditions": "strong",
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
