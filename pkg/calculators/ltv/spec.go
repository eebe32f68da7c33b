package ltv

import (
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Loan-to-Value (LTV) Ratio Calculator",
		Category:    "finance",
		Subcategory: "mortgage",
		Description: "Calculate loan-to-value and combined LTV, check program limits and estimate mortgage insurance.",
	},
	Fields: []calculator.Field{
		calculator.Number("propertyValue", "Property Value", "USD").Req().Range(1, 100000000).
			Describe("Appraised value or purchase price, whichever is lower"),
		calculator.Number("loanAmount", "Loan Amount", "USD").Req().Range(1, 100000000),
		calculator.Number("secondLoanAmount", "Second Loan Amount", "USD").AtLeast(0).WithDefault(0).
			Describe("Home equity loans or lines secured by the same property"),
		calculator.SelectOptions("loanType", "Loan Type",
			calculator.Option{Value: Conventional, Label: "Conventional"},
			calculator.Option{Value: FHA, Label: "FHA"},
			calculator.Option{Value: VA, Label: "VA"},
			calculator.Option{Value: USDA, Label: "USDA"},
			calculator.Option{Value: Jumbo, Label: "Jumbo"},
		).WithDefault(Conventional),
		calculator.Number("creditScore", "Credit Score", "").Int().Range(300, 850).WithDefault(700),
		calculator.Number("targetLTV", "Target LTV", "%").Range(1, 100).WithDefault(80),
		calculator.Number("interestRate", "Interest Rate", "%").Range(0, 20).WithDefault(6.5),
		calculator.Number("loanTerm", "Loan Term", "years").Int().Range(1, 40).WithDefault(30),
	},
	Rules: []validation.Rule{
		{Expr: "loanAmount + secondLoanAmount <= propertyValue * 1.25", Message: "Total liens cannot exceed 125% of property value"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if in.LoanAmount+in.SecondLoanAmount > in.PropertyValue {
			c.Warnf("Total liens exceed the property value; equity is negative")
		}
		if in.LoanType == Jumbo && in.CreditScore < 700 {
			c.Warnf("Most jumbo lenders require a credit score of at least 700")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Loan-to-Value", Expression: "LTV = (Loan Amount ÷ Property Value) × 100"},
		{Name: "Combined LTV", Expression: "CLTV = ((Loan Amount + Second Loan) ÷ Property Value) × 100"},
		{Name: "Equity", Expression: "Equity = Property Value - Loan Amount - Second Loan"},
		{Name: "Monthly Mortgage Insurance", Expression: "MI = Loan Amount × Annual Rate ÷ 100 ÷ 12"},
		{Name: "Paydown to Target", Expression: "Paydown = max(0, Loan Amount - Property Value × Target LTV ÷ 100)"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Conventional Purchase with 10% Down",
			Description: "A $500K home with a $450K conventional loan and a 720 credit score",
			Inputs: calculator.Inputs{
				"propertyValue": 500000, "loanAmount": 450000, "loanType": Conventional,
				"creditScore": 720, "interestRate": 6.5, "loanTerm": 30,
			},
		},
		{
			Name:        "FHA Purchase",
			Description: "A $300K home with the FHA minimum 3.5% down",
			Inputs: calculator.Inputs{
				"propertyValue": 300000, "loanAmount": 289500, "loanType": FHA,
				"creditScore": 640, "interestRate": 6.25,
			},
		},
		{
			Name:        "Refinance with a HELOC",
			Description: "First mortgage and home equity line against a $750K home",
			Inputs: calculator.Inputs{
				"propertyValue": 750000, "loanAmount": 420000, "secondLoanAmount": 80000,
				"creditScore": 780, "interestRate": 6, "targetLTV": 60,
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
