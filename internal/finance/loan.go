package finance

import (
	"math"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// Payment returns the monthly debt service of a loan.
//
// It returns 0 for a non-positive principal or rate. Interest-only loans pay
// principal * annualRate/12; any other payment type amortizes fully over
// termYears:
//
//	M = P * r(1+r)^n / ((1+r)^n - 1),  r = annualRate/12, n = termYears*12
func Payment(principal, annualRate float64, termYears int, paymentType models.PaymentType) float64 {
	if principal <= 0 || annualRate <= 0 {
		return 0
	}
	r := annualRate / 12
	if paymentType == models.InterestOnly {
		return principal * r
	}
	n := termYears * 12
	if n <= 0 {
		return 0
	}
	f := math.Pow(1+r, float64(n))
	return principal * r * f / (f - 1)
}

// LoanPayment returns the monthly debt service of a deal loan. A loan with an
// interest-only window is serviced interest-only for the whole evaluation;
// the transition to amortization is not modeled.
func LoanPayment(l models.Loan) float64 {
	if l.IOMonths > 0 {
		return Payment(l.LoanAmount, l.InterestRate, l.AmortizationYears, models.InterestOnly)
	}
	return Payment(l.LoanAmount, l.InterestRate, l.AmortizationYears, models.PrincipalAndInterest)
}

// SelectActiveLoan picks the loan that services a deal: the first loan flagged
// active, else the first acquisition loan, else the first loan. ok is false
// when there are no loans. The returned loan is a copy.
func SelectActiveLoan(loans []models.Loan) (loan models.Loan, ok bool) {
	if len(loans) == 0 {
		return models.Loan{}, false
	}
	for _, l := range loans {
		if l.IsActive {
			return l, true
		}
	}
	for _, l := range loans {
		if l.LoanType == models.LoanAcquisition {
			return l, true
		}
	}
	return loans[0], true
}

// RemainingBalance returns the outstanding principal after paymentsMade monthly payments
func RemainingBalance(principal, annualRate float64, termYears int, paymentType models.PaymentType, paymentsMade int) float64 {
	if principal <= 0 {
		return 0
	}
	if paymentsMade <= 0 || annualRate <= 0 || paymentType == models.InterestOnly {
		return principal
	}
	n := termYears * 12
	if n <= 0 {
		return principal
	}
	if paymentsMade >= n {
		return 0
	}
	r := annualRate / 12
	fn := math.Pow(1+r, float64(n))
	fp := math.Pow(1+r, float64(paymentsMade))
	return principal * (fn - fp) / (fn - 1)
}

// Schedule builds the month-by-month payment table of a loan. Interest-only
// loans keep their balance for the whole term (the balloon is not listed).
// Returns nil when the loan has no payment.
func Schedule(principal, annualRate float64, termYears int, paymentType models.PaymentType) []models.AmortizationEntry {
	payment := Payment(principal, annualRate, termYears, paymentType)
	n := termYears * 12
	if payment == 0 || n <= 0 {
		return nil
	}
	r := annualRate / 12
	entries := make([]models.AmortizationEntry, 0, n)
	balance := principal
	for month := 1; month <= n; month++ {
		interest := balance * r
		principalPart := payment - interest
		if paymentType == models.InterestOnly {
			principalPart = 0
		}
		if month == n && paymentType != models.InterestOnly {
			// absorb floating-point drift in the final payment
			principalPart = balance
		}
		balance -= principalPart
		if balance < 0 {
			balance = 0
		}
		entries = append(entries, models.AmortizationEntry{
			Month:     month,
			Payment:   interest + principalPart,
			Interest:  interest,
			Principal: principalPart,
			Balance:   balance,
		})
	}
	return entries
}
