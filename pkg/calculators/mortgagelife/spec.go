package mortgagelife

import (
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/validation"
)

// Spec declares the calculator.
var Spec = calculator.Spec[Inputs, Outputs]{
	Info: calculator.Info{
		ID:          ID,
		Name:        "Mortgage Life Insurance Calculator",
		Category:    "finance",
		Subcategory: "insurance",
		Description: "Estimate mortgage life insurance premiums, project the coverage over the loan and compare the cost with level term life insurance.",
	},
	Fields: []calculator.Field{
		calculator.Number("mortgageBalance", "Mortgage Balance", "USD").Req().Range(1, 10000000),
		calculator.Number("interestRate", "Interest Rate", "%").Req().Range(0, 25),
		calculator.Number("remainingTerm", "Remaining Term", "years").Req().Int().Range(1, 40),
		calculator.Number("borrowerAge", "Borrower Age", "years").Req().Int().Range(18, 80),
		calculator.Select("gender", "Gender", "male", "female").Req(),
		calculator.Boolean("smoker", "Smoker").WithDefault(false),
		calculator.Select("healthRating", "Health Rating", "excellent", "good", "average", "poor").
			WithDefault("average"),
		calculator.Select("coverageType", "Coverage Type", "decreasing", "level").WithDefault("decreasing").
			Describe("Decreasing coverage follows the amortized mortgage balance"),
		calculator.Number("coverageAmount", "Coverage Amount", "USD").AtLeast(0).WithDefault(0).
			Describe("0 insures the full mortgage balance"),
		calculator.Number("existingLifeInsurance", "Existing Life Insurance", "USD").AtLeast(0).WithDefault(0),
		calculator.Number("monthlyIncome", "Monthly Income", "USD").AtLeast(0).WithDefault(0),
	},
	Rules: []validation.Rule{
		{Expr: "borrowerAge + remainingTerm <= 90.0", Message: "Coverage must end by age 90"},
		{Expr: "coverageAmount <= mortgageBalance", Message: "Coverage amount cannot exceed the mortgage balance"},
	},
	Validate: func(in Inputs, c *validation.Collector) {
		if in.ExistingLifeInsurance >= in.MortgageBalance {
			c.Warnf("Existing life insurance already covers the mortgage balance")
		}
		if in.MonthlyIncome == 0 {
			c.Warnf("Monthly income not provided; affordability is not assessed")
		}
	},
	Formulas: []calculator.Formula{
		{Name: "Rate", Expression: "Rate = Age/Gender Rate × Term × Health × Smoker × Decreasing × 1.35", Description: "Annual premium per $1,000 of initial coverage"},
		{Name: "Annual Premium", Expression: "Annual Premium = Coverage ÷ 1000 × Rate"},
		{Name: "Decreasing Coverage", Expression: "Coverage(t) = Remaining Balance(t) × Coverage ÷ Mortgage Balance"},
		{Name: "Term Life Premium", Expression: "Term Premium = Coverage ÷ 1000 × Age/Gender Rate × Term × Health × Smoker"},
		{Name: "Coverage Gap", Expression: "Gap = max(0, Mortgage Balance - Coverage - Existing Insurance)"},
		{Name: "Premium to Income", Expression: "Premium to Income = Monthly Premium ÷ Monthly Income × 100"},
	},
	Examples: []calculator.Example{
		{
			Name:        "Young Family Mortgage",
			Description: "40 year old non-smoker insuring a $300,000 mortgage with decreasing coverage",
			Inputs: calculator.Inputs{
				"mortgageBalance": 300000, "interestRate": 6.5, "remainingTerm": 25, "borrowerAge": 40,
				"gender": "male", "smoker": false, "healthRating": "good", "coverageType": "decreasing",
				"existingLifeInsurance": 50000, "monthlyIncome": 8000,
			},
		},
		{
			Name:        "Partial Level Coverage",
			Description: "55 year old smoker insuring part of the balance with level coverage",
			Inputs: calculator.Inputs{
				"mortgageBalance": 250000, "interestRate": 7, "remainingTerm": 15, "borrowerAge": 55,
				"gender": "female", "smoker": true, "healthRating": "average", "coverageType": "level",
				"coverageAmount": 150000, "monthlyIncome": 6000,
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
