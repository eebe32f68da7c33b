package noi

import (
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

func amount(id, name string) calculator.Field {
	return calculator.Number(id, name, "USD").Range(0, 100000000).WithDefault(0)
}

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Net Operating Income (NOI) Calculator",
		Category:    "finance",
		Subcategory: "real-estate",
		Description: "Calculate net operating income from rents, ancillary income and operating expenses, with valuation ratios, ratings and a multi-year projection.",
	},
	Fields: []calculator.Field{
		calculator.Select("propertyType", "Property Type",
			"commercial", "residential", "retail", "office", "industrial", "multifamily", "mixed-use").
			WithDefault("commercial"),
		calculator.Number("propertyValue", "Property Value", "USD").Req().Range(1, 10000000000),
		calculator.Number("propertySize", "Property Size", "sq ft").Range(0, 100000000).WithDefault(0),
		calculator.Number("grossRentalIncome", "Gross Rental Income", "USD").Req().Range(0, 1000000000),
		calculator.Number("vacancyRate", "Vacancy Rate", "%").Range(0, 100).WithDefault(5),
		calculator.Number("creditLossRate", "Credit Loss Rate", "%").Range(0, 100).WithDefault(0),
		amount("parkingIncome", "Parking Income"),
		amount("storageIncome", "Storage Income"),
		amount("laundryIncome", "Laundry Income"),
		amount("lateFees", "Late Fees"),
		amount("otherIncome", "Other Income"),
		amount("propertyTaxes", "Property Taxes"),
		amount("propertyInsurance", "Property Insurance"),
		amount("utilities", "Utilities"),
		amount("maintenance", "Maintenance and Repairs"),
		amount("propertyManagement", "Property Management"),
		amount("landscaping", "Landscaping"),
		amount("janitorial", "Janitorial"),
		amount("security", "Security"),
		amount("advertising", "Advertising"),
		amount("legalFees", "Legal Fees"),
		amount("accountingFees", "Accounting Fees"),
		amount("otherExpenses", "Other Expenses"),
		amount("capitalExpenditures", "Capital Expenditures").
			Describe("Annual capital reserve spending, excluded from NOI"),
		calculator.Number("marketCapRate", "Market Cap Rate", "%").Range(0, 25).WithDefault(0),
		calculator.Number("comparableNOI", "Comparable NOI", "USD").AtLeast(0).WithDefault(0),
		calculator.Number("analysisPeriod", "Analysis Period", "years").Int().Range(1, 30).WithDefault(5),
		calculator.Number("incomeGrowthRate", "Income Growth Rate", "%").Range(-20, 50).WithDefault(3),
		calculator.Number("expenseGrowthRate", "Expense Growth Rate", "%").Range(-20, 50).WithDefault(3),
	},
	Rules: []validation.Rule{
		{Expr: "vacancyRate + creditLossRate <= 100.0", Message: "Vacancy and credit loss rates cannot exceed 100% combined"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		out := Calculate(in)
		if out.NetOperatingIncome < 0 {
			c.Warnf("Operating expenses exceed effective gross income; NOI is negative")
		}
		if in.VacancyRate > 25 {
			c.Warnf("Vacancy rate above 25%% is unusually high for a stabilized property")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Effective Gross Income", Expression: "EGI = Gross Rent - Vacancy Loss - Credit Loss + Other Income"},
		{Name: "Net Operating Income", Expression: "NOI = EGI - Operating Expenses"},
		{Name: "NOI Margin", Expression: "Margin = NOI ÷ EGI × 100"},
		{Name: "Expense Ratio", Expression: "Expense Ratio = Operating Expenses ÷ EGI × 100"},
		{Name: "Cap Rate", Expression: "Cap Rate = NOI ÷ Property Value × 100"},
		{Name: "Implied Value", Expression: "Implied Value = NOI ÷ Market Cap Rate"},
		{Name: "Projection", Expression: "NOI(t) = EGI × (1 + g_income)^(t-1) - OpEx × (1 + g_expense)^(t-1)"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Suburban Office Building",
			Description: "40,000 sq ft office building with parking and storage income",
			Inputs: calculator.Inputs{
				"propertyType": "office", "propertyValue": 5000000, "propertySize": 40000,
				"grossRentalIncome": 600000, "vacancyRate": 5, "creditLossRate": 1,
				"parkingIncome": 24000, "storageIncome": 6000, "lateFees": 2000, "otherIncome": 3000,
				"propertyTaxes": 60000, "propertyInsurance": 15000, "utilities": 30000, "maintenance": 25000,
				"propertyManagement": 24000, "landscaping": 5000, "janitorial": 18000, "security": 12000,
				"advertising": 3000, "legalFees": 2000, "accountingFees": 4000, "otherExpenses": 2000,
				"capitalExpenditures": 20000, "marketCapRate": 6.5, "comparableNOI": 350000,
				"analysisPeriod": 5, "incomeGrowthRate": 3, "expenseGrowthRate": 2.5,
			},
		},
		{
			Name:        "Garden Apartments",
			Description: "48 unit multifamily property with laundry income and high turnover",
			Inputs: calculator.Inputs{
				"propertyType": "multifamily", "propertyValue": 4200000, "propertySize": 42000,
				"grossRentalIncome": 576000, "vacancyRate": 8, "creditLossRate": 2,
				"laundryIncome": 9600, "lateFees": 4800, "parkingIncome": 7200,
				"propertyTaxes": 52000, "propertyInsurance": 22000, "utilities": 48000, "maintenance": 46000,
				"propertyManagement": 40000, "landscaping": 9000, "advertising": 6000, "otherExpenses": 12000,
				"capitalExpenditures": 28800, "marketCapRate": 6, "analysisPeriod": 10,
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
