package models

// CalculatedMetrics is the derived performance record of a PropertyFinancials snapshot.
// It is recomputed on demand and never stored.
type CalculatedMetrics struct {
	AllInCost              float64 `json:"all_in_cost"`
	GrossRentalIncome      float64 `json:"gross_rental_income"`
	EffectiveGrossIncome   float64 `json:"effective_gross_income"`
	OperatingExpenses      float64 `json:"operating_expenses"`
	NetOperatingIncome     float64 `json:"net_operating_income"`
	ARV                    float64 `json:"arv"`
	InitialCapitalRequired float64 `json:"initial_capital_required"`
	MonthlyDebtService     float64 `json:"monthly_debt_service"`
	AnnualDebtService      float64 `json:"annual_debt_service"`
	AnnualCashFlow         float64 `json:"annual_cash_flow"`
	CapRate                float64 `json:"cap_rate"`
	CashOnCashReturn       float64 `json:"cash_on_cash_return"`
	EquityMultiple         float64 `json:"equity_multiple"`
	DSCR                   float64 `json:"dscr"`
	CurrentEquity          float64 `json:"current_equity"`
	LoanToValue            float64 `json:"loan_to_value"`
	LoanToCost             float64 `json:"loan_to_cost"`
	BreakEvenOccupancy     float64 `json:"break_even_occupancy"`
	OperatingExpenseRatio  float64 `json:"operating_expense_ratio"`
	TotalReturn            float64 `json:"total_return"`
	AnnualizedReturn       float64 `json:"annualized_return"`
	// DSCRWarning is dscr below the warning threshold (1.15 by default).
	// It is never raised without debt service, where dscr is 0.
	DSCRWarning   bool `json:"dscr_warning"`
	OccupancyRisk bool `json:"occupancy_risk"`
	IsSpeculative bool `json:"is_speculative"`
}

// DealKPIs is the derived performance record of a Deal.
type DealKPIs struct {
	TotalRehab                  float64 `json:"total_rehab"`
	TotalClosingCosts           float64 `json:"total_closing_costs"`
	TotalHoldingCosts           float64 `json:"total_holding_costs"`
	AllInCost                   float64 `json:"all_in_cost"`
	GrossRentalIncome           float64 `json:"gross_rental_income"`
	VacancyLoss                 float64 `json:"vacancy_loss"`
	BadDebtLoss                 float64 `json:"bad_debt_loss"`
	OtherIncome                 float64 `json:"other_income"`
	EffectiveGrossIncome        float64 `json:"effective_gross_income"`
	OperatingExpenses           float64 `json:"operating_expenses"`
	CapexReserve                float64 `json:"capex_reserve"`
	OperatingReserve            float64 `json:"operating_reserve"`
	NetOperatingIncome          float64 `json:"net_operating_income"`
	ARV                         float64 `json:"arv"`
	ActiveLoanID                int64   `json:"active_loan_id,omitempty"`
	LoanAmount                  float64 `json:"loan_amount"`
	CapitalRequired             float64 `json:"capital_required"`
	MonthlyDebtService          float64 `json:"monthly_debt_service"`
	AnnualDebtService           float64 `json:"annual_debt_service"`
	AnnualCashFlow              float64 `json:"annual_cash_flow"`
	CapRate                     float64 `json:"cap_rate"`
	CashOnCashReturn            float64 `json:"cash_on_cash_return"`
	EquityMultiple              float64 `json:"equity_multiple"`
	DSCR                        float64 `json:"dscr"`
	CurrentEquity               float64 `json:"current_equity"`
	LoanToValue                 float64 `json:"loan_to_value"`
	LoanToCost                  float64 `json:"loan_to_cost"`
	AverageRentPerUnit          float64 `json:"average_rent_per_unit"`
	BreakEvenOccupancy          float64 `json:"break_even_occupancy"`
	OperatingExpenseRatio       float64 `json:"operating_expense_ratio"`
	NewLoanAmount               float64 `json:"new_loan_amount"`
	CashOut                     float64 `json:"cash_out"`
	TotalProfit                 float64 `json:"total_profit"`
	TotalReturn                 float64 `json:"total_return"`
	AnnualizedReturn            float64 `json:"annualized_return"`
	ApproximateAnnualizedReturn float64 `json:"irr"` // single-period geometric approximation, not a cash-flow IRR
	IsSpeculative               bool    `json:"is_speculative"`
	// DSCRWarning is dscr below the warning threshold (1.15 by default).
	// It is never raised without debt service, where dscr is 0.
	DSCRWarning   bool `json:"dscr_warning"`
	OccupancyRisk bool `json:"occupancy_risk"`
}
