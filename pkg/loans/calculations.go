// Package loans provides common loan processing utilities.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Number             int     `json:"number"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// YearSummary aggregates the payments made within one loan year.
type YearSummary struct {
	Year               int     `json:"year"`
	Payments           float64 `json:"payments"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

func periodicRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
func CalculateMonthlyPayment(principal, downPayment, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return (principal - downPayment) / float64(termMonths)
	}

	periodicInterestRate := periodicRate(annualInterestRate)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	return (principal - downPayment) * periodicInterestRate / discountFactor
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * periodicRate(annualInterestRate)
}

// PrincipalForPayment returns the principal that a monthly payment retires
// over termMonths at the given rate. It inverts CalculateMonthlyPayment.
func PrincipalForPayment(monthlyPayment, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 || monthlyPayment <= 0 {
		return 0
	}
	if annualInterestRate == 0 {
		return monthlyPayment * float64(termMonths)
	}
	r := periodicRate(annualInterestRate)
	return monthlyPayment * (1 - math.Pow(1+r, -float64(termMonths))) / r
}

// RemainingBalance returns the outstanding principal after paymentsMade
// scheduled payments. The result is never negative.
func RemainingBalance(principal, annualInterestRate float64, termMonths, paymentsMade int) float64 {
	if paymentsMade <= 0 {
		return principal
	}
	if paymentsMade >= termMonths {
		return 0
	}
	payment := CalculateMonthlyPayment(principal, 0, annualInterestRate, termMonths)
	if annualInterestRate == 0 {
		return mathutil.Max(0, principal-payment*float64(paymentsMade))
	}
	r := periodicRate(annualInterestRate)
	growth := math.Pow(1+r, float64(paymentsMade))
	balance := principal*growth - payment*(growth-1)/r
	return mathutil.Max(0, balance)
}

// AnnualDebtService returns twelve fully amortizing monthly payments.
func AnnualDebtService(principal, annualInterestRate float64, termMonths int) float64 {
	return CalculateMonthlyPayment(principal, 0, annualInterestRate, termMonths) * constants.MonthsPerYear
}

// InterestOnlyAnnual returns one year of interest on the full principal.
func InterestOnlyAnnual(principal, annualInterestRate float64) float64 {
	return principal * annualInterestRate / constants.PercentageMultiplier
}

// LoanConfig represents loan configuration parameters
type LoanConfig struct {
	Name         string
	Principal    float64
	DownPayment  float64
	InterestRate float64
	Term         int // months
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan. The
// final payment absorbs any residual rounding so the loan closes at zero.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan LoanConfig) ([]Payment, error) {
	if loan.Term <= 0 {
		return nil, fmt.Errorf("loan %s: term must be positive, got %d", loan.Name, loan.Term)
	}
	financed := loan.Principal - loan.DownPayment
	if financed < 0 {
		return nil, fmt.Errorf("loan %s: down payment %.2f exceeds principal %.2f", loan.Name, loan.DownPayment, loan.Principal)
	}

	monthlyPayment := CalculateMonthlyPayment(loan.Principal, loan.DownPayment, loan.InterestRate, loan.Term)
	schedule := make([]Payment, 0, loan.Term)
	balance := financed

	// Rows are rounded from running totals so the rounded principal column sums
	// to the financed amount.
	var paidPrincipal, paidInterest, reportedPrincipal, reportedInterest float64

	for month := 1; month <= loan.Term; month++ {
		interest := CalculateInterestPayment(balance, loan.InterestRate)
		principal := monthlyPayment - interest
		if month == loan.Term || principal > balance {
			principal = balance
		}
		balance -= principal
		paidPrincipal += principal
		paidInterest += interest

		rowPrincipal := mathutil.Round(paidPrincipal) - reportedPrincipal
		rowInterest := mathutil.Round(paidInterest) - reportedInterest
		reportedPrincipal += rowPrincipal
		reportedInterest += rowInterest

		schedule = append(schedule, Payment{
			Number:             month,
			Payment:            mathutil.Round(rowPrincipal + rowInterest),
			Principal:          mathutil.Round(rowPrincipal),
			Interest:           mathutil.Round(rowInterest),
			RemainingPrincipal: mathutil.Round(mathutil.Max(0, financed-reportedPrincipal)),
		})

		if balance <= 1e-9 {
			g.logger.Debug(fmt.Sprintf("loan %s retired after %d payments", loan.Name, month),
				zap.String("op", "loans.GenerateSchedule"),
			)
			break
		}
	}

	return schedule, nil
}

// YearlySummary groups a monthly schedule into loan years.
func YearlySummary(schedule []Payment) []YearSummary {
	var years []YearSummary
	for _, payment := range schedule {
		year := (payment.Number-1)/constants.MonthsPerYear + 1
		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, YearSummary{Year: year})
		}
		current := &years[len(years)-1]
		current.Payments = mathutil.Round(current.Payments + payment.Payment)
		current.Principal = mathutil.Round(current.Principal + payment.Principal)
		current.Interest = mathutil.Round(current.Interest + payment.Interest)
		current.RemainingPrincipal = payment.RemainingPrincipal
	}
	return years
}
