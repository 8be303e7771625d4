package models

// PaymentType selects how a loan is serviced
type PaymentType string

const (
	PrincipalAndInterest PaymentType = "principal_and_interest"
	InterestOnly         PaymentType = "interest_only"
)

// PropertyFinancials is the flat acquisition/operating/financing snapshot of a property.
// Rates are decimal fractions (0.065 means 6.5%).
type PropertyFinancials struct {
	ID                int64       `json:"id,omitempty"`
	OwnerID           int64       `json:"owner_id,omitempty"`
	Name              string      `json:"name,omitempty"`
	PurchasePrice     float64     `json:"purchase_price"`
	RehabCosts        float64     `json:"rehab_costs"`
	ClosingCosts      float64     `json:"closing_costs"`
	HoldingCosts      float64     `json:"holding_costs"`
	GrossRentalIncome float64     `json:"gross_rental_income"`
	VacancyRate       float64     `json:"vacancy_rate"`
	OtherIncome       float64     `json:"other_income"`
	OperatingExpenses float64     `json:"operating_expenses"`
	LoanAmount        float64     `json:"loan_amount"`
	InterestRate      float64     `json:"interest_rate"`
	LoanTermYears     int         `json:"loan_term_years"`
	PaymentType       PaymentType `json:"payment_type"`
	MarketCapRate     float64     `json:"market_cap_rate"`
	ExitCapRate       float64     `json:"exit_cap_rate,omitempty"`
	RefinanceLTV      float64     `json:"refinance_ltv,omitempty"`
	RefinanceRate     float64     `json:"refinance_rate,omitempty"`
}
