package dscr

import (
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

func expense(id, name string) calculator.Field {
	return calculator.Number(id, name, "USD").Range(0, 10000000).WithDefault(0)
}

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Debt Service Coverage Ratio Calculator",
		Category:    "finance",
		Subcategory: "real-estate",
		Description: "Calculate debt service coverage ratio (DSCR) for real estate investments, including NOI analysis, debt service calculations, and lender requirements.",
	},
	Fields: []calculator.Field{
		calculator.SelectOptions("propertyType", "Property Type",
			calculator.Option{Value: "office", Label: "Office Building"},
			calculator.Option{Value: "retail", Label: "Retail/Commercial"},
			calculator.Option{Value: "industrial", Label: "Industrial/Warehouse"},
			calculator.Option{Value: "multifamily", Label: "Multifamily"},
			calculator.Option{Value: "hotel", Label: "Hotel/Motel"},
			calculator.Option{Value: "medical", Label: "Medical Office"},
			calculator.Option{Value: "mixed-use", Label: "Mixed-Use"},
			calculator.Option{Value: "self-storage", Label: "Self-Storage"},
		).Req().Describe("Type of real estate property"),
		calculator.Number("grossRentalIncome", "Gross Rental Income", "USD").Req().Range(0, 1000000000).
			Describe("Total annual rental income from all units/tenants"),
		calculator.Number("otherIncome", "Other Income", "USD").Range(0, 100000000).WithDefault(0).
			Describe("Additional income (parking, laundry, vending, etc.)"),
		calculator.Number("vacancyRate", "Vacancy Rate", "%").Range(0, 50).WithDefault(5),
		expense("propertyTaxes", "Property Taxes"),
		expense("insurance", "Insurance"),
		expense("utilities", "Utilities"),
		expense("maintenance", "Maintenance & Repairs"),
		expense("propertyManagement", "Property Management"),
		expense("landscaping", "Landscaping & Grounds"),
		expense("janitorial", "Janitorial Services"),
		expense("security", "Security"),
		expense("advertising", "Advertising & Marketing"),
		expense("legal", "Legal & Professional"),
		expense("accounting", "Accounting & Administrative"),
		expense("otherExpenses", "Other Operating Expenses"),
		expense("reserves", "Replacement Reserves").Describe("Annual capital reserves held back from cash flow"),
		expense("capitalExpenditures", "Capital Expenditures").Describe("Annual capital expenditure budget"),
		expense("tenantImprovements", "Tenant Improvements").Describe("Annual tenant improvement costs"),
		expense("leasingCommissions", "Leasing Commissions").Describe("Annual leasing commission costs"),
		calculator.Number("loanAmount", "Loan Amount", "USD").Req().Range(1, 1000000000),
		calculator.Number("interestRate", "Interest Rate", "%").Req().Range(0, 25),
		calculator.Number("amortizationPeriod", "Amortization Period", "years").Req().Int().Range(5, 40),
		calculator.Number("loanTerm", "Loan Term", "years").Int().Range(1, 40).WithDefault(10).
			Describe("Years until the loan matures; a balance remaining at maturity is due as a balloon"),
		calculator.Number("balloonPayment", "Balloon Payment", "USD").Range(0, 1000000000).WithDefault(0).
			Describe("Stated balloon due at maturity; 0 uses the scheduled balance"),
		calculator.Number("lenderDSCR", "Lender DSCR Requirement", "x").Range(1.0, 2.5).WithDefault(1.25),
		calculator.Number("propertyValue", "Property Value", "USD").Req().Range(1, 10000000000),
		calculator.Number("marketCapRate", "Market Cap Rate", "%").Range(2, 15).WithDefault(7).
			Describe("Market capitalization rate for similar properties"),
		calculator.Number("appreciationRate", "Appreciation Rate", "%").Range(-10, 15).WithDefault(3).
			Describe("Expected annual property appreciation rate"),
		calculator.Number("incomeGrowthRate", "Income Growth Rate", "%").Range(-10, 20).WithDefault(2),
		calculator.Number("expenseGrowthRate", "Expense Growth Rate", "%").Range(-10, 20).WithDefault(3),
		calculator.Number("projectionYears", "Projection Years", "years").Int().Range(1, 30).WithDefault(5),
	},
	Rules: []validation.Rule{
		{Expr: "loanAmount <= propertyValue", Message: "Loan amount cannot exceed property value"},
		{Expr: "loanTerm <= amortizationPeriod", Message: "Loan term cannot exceed amortization period"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if in.OperatingExpenses() > in.GrossRentalIncome+in.OtherIncome {
			c.Warnf("Operating expenses exceed gross income; NOI will be negative")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Effective Gross Income", Expression: "Effective Gross Income = Gross Rental Income + Other Income - Vacancy Loss"},
		{Name: "Net Operating Income", Expression: "NOI = Effective Gross Income - Total Operating Expenses"},
		{Name: "Debt Service Coverage Ratio", Expression: "DSCR = NOI ÷ Annual Debt Service"},
		{Name: "Annual Debt Service", Expression: "Annual Debt Service = Monthly Payment × 12"},
		{Name: "Cash Flow", Expression: "Cash Flow = NOI - Annual Debt Service"},
		{Name: "Cash Flow After Reserves", Expression: "Cash Flow After Reserves = Cash Flow - Reserves - CapEx - Tenant Improvements - Leasing Commissions"},
		{Name: "Market Value", Expression: "Market Value = NOI ÷ Market Cap Rate"},
		{Name: "Cash-on-Cash Return", Expression: "Cash-on-Cash Return = (Cash Flow ÷ Equity Investment) × 100"},
		{Name: "Loan-to-Value Ratio", Expression: "LTV = (Loan Amount ÷ Property Value) × 100"},
		{Name: "Debt Yield", Expression: "Debt Yield = (NOI ÷ Loan Amount) × 100"},
		{Name: "Break-Even Occupancy", Expression: "Break-Even Occupancy = (Operating Expenses + Annual Debt Service) ÷ Gross Potential Income × 100"},
		{Name: "Maximum Loan Amount", Expression: "Maximum Loan = PV(NOI ÷ Lender DSCR ÷ 12, rate, amortization)"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Office Building",
			Description: "Office building with $1.2M gross income, $8M loan, 5.5% interest rate",
			Inputs: calculator.Inputs{
				"propertyType": "office", "grossRentalIncome": 1200000, "otherIncome": 50000, "vacancyRate": 5,
				"propertyTaxes": 80000, "insurance": 25000, "utilities": 60000, "maintenance": 40000,
				"propertyManagement": 60000, "landscaping": 15000, "janitorial": 30000, "security": 20000,
				"advertising": 10000, "legal": 15000, "accounting": 8000, "reserves": 25000,
				"capitalExpenditures": 30000, "tenantImprovements": 20000, "leasingCommissions": 15000,
				"loanAmount": 8000000, "interestRate": 5.5, "loanTerm": 10, "amortizationPeriod": 30,
				"lenderDSCR": 1.25, "propertyValue": 12000000,
				"marketCapRate": 6.5, "appreciationRate": 3,
			},
		},
		{
			Name:        "Multifamily Property",
			Description: "Multifamily property with $800K gross income, $5M loan, 6% interest rate",
			Inputs: calculator.Inputs{
				"propertyType": "multifamily", "grossRentalIncome": 800000, "otherIncome": 20000, "vacancyRate": 3,
				"propertyTaxes": 45000, "insurance": 18000, "utilities": 40000, "maintenance": 25000,
				"propertyManagement": 40000, "landscaping": 8000, "janitorial": 12000, "security": 8000,
				"advertising": 5000, "legal": 8000, "accounting": 5000, "reserves": 15000,
				"capitalExpenditures": 20000, "tenantImprovements": 10000, "leasingCommissions": 8000,
				"loanAmount": 5000000, "interestRate": 6.0, "loanTerm": 15, "amortizationPeriod": 30,
				"lenderDSCR": 1.20, "propertyValue": 7500000,
				"marketCapRate": 7.0, "appreciationRate": 2.5,
			},
		},
		{
			Name:        "Retail Property",
			Description: "Retail property with $600K gross income, $3.5M loan, 6.5% interest rate",
			Inputs: calculator.Inputs{
				"propertyType": "retail", "grossRentalIncome": 600000, "otherIncome": 15000, "vacancyRate": 8,
				"propertyTaxes": 35000, "insurance": 15000, "utilities": 25000, "maintenance": 20000,
				"propertyManagement": 30000, "landscaping": 6000, "janitorial": 8000, "security": 6000,
				"advertising": 8000, "legal": 10000, "accounting": 4000, "reserves": 10000,
				"capitalExpenditures": 15000, "tenantImprovements": 12000, "leasingCommissions": 10000,
				"loanAmount": 3500000, "interestRate": 6.5, "loanTerm": 20, "amortizationPeriod": 25,
				"lenderDSCR": 1.30, "propertyValue": 5000000,
				"marketCapRate": 7.5, "appreciationRate": 2.0,
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
