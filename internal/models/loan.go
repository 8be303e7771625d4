package models

// LoanType classifies a loan record
type LoanType string

const (
	LoanAcquisition  LoanType = "acquisition"
	LoanRefinance    LoanType = "refinance"
	LoanBridge       LoanType = "bridge"
	LoanConstruction LoanType = "construction"
)

// Loan represents a loan attached to a deal
type Loan struct {
	ID                int64    `json:"id"`
	DealID            int64    `json:"deal_id"`
	LoanType          LoanType `json:"loan_type"`
	LoanAmount        float64  `json:"loan_amount"`
	InterestRate      float64  `json:"interest_rate"`
	AmortizationYears int      `json:"amortization_years"`
	IOMonths          int      `json:"io_months"`
	IsActive          bool     `json:"is_active"`
}
