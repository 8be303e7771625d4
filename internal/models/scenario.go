package models

// RentSensitivity holds full metrics with gross rent scaled by ±5% and ±10%
type RentSensitivity struct {
	Minus10 CalculatedMetrics `json:"minus10"`
	Minus5  CalculatedMetrics `json:"minus5"`
	Plus5   CalculatedMetrics `json:"plus5"`
	Plus10  CalculatedMetrics `json:"plus10"`
}

// RateSensitivity holds full metrics with a rate shifted by ±50bp and ±100bp
type RateSensitivity struct {
	Minus100bp CalculatedMetrics `json:"minus100bp"`
	Minus50bp  CalculatedMetrics `json:"minus50bp"`
	Plus50bp   CalculatedMetrics `json:"plus50bp"`
	Plus100bp  CalculatedMetrics `json:"plus100bp"`
}

// SensitivityResult is the discrete sensitivity table of a property
type SensitivityResult struct {
	Base                    CalculatedMetrics `json:"base"`
	RentSensitivity         RentSensitivity   `json:"rent_sensitivity"`
	CapRateSensitivity      RateSensitivity   `json:"cap_rate_sensitivity"`
	InterestRateSensitivity RateSensitivity   `json:"interest_rate_sensitivity"`
}

// GrowthAssumptions drive the exit projection
type GrowthAssumptions struct {
	AnnualRentGrowth    float64 `json:"annual_rent_growth"`
	AnnualExpenseGrowth float64 `json:"annual_expense_growth"`
	SaleCostsPercent    float64 `json:"sale_costs_percent"`
}

// HoldScenario keeps the property and services the existing loan interest-only
type HoldScenario struct {
	FutureNOI         float64 `json:"future_noi"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	AnnualCashFlow    float64 `json:"annual_cash_flow"`
	Equity            float64 `json:"equity"`
	TotalReturn       float64 `json:"total_return"`
	EquityMultiple    float64 `json:"equity_multiple"`
}

// RefinanceScenario replaces the existing loan with a new one sized on projected value
type RefinanceScenario struct {
	RefinanceLTV      float64 `json:"refinance_ltv"`
	RefinanceRate     float64 `json:"refinance_rate"`
	RefinanceAmount   float64 `json:"refinance_amount"`
	CashOutAmount     float64 `json:"cash_out_amount"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	AnnualCashFlow    float64 `json:"annual_cash_flow"`
	DSCR              float64 `json:"dscr"`
	RemainingCapital  float64 `json:"remaining_capital"`
	TotalReturn       float64 `json:"total_return"`
	EquityMultiple    float64 `json:"equity_multiple"`
}

// SaleScenario disposes of the property at the projected price
type SaleScenario struct {
	ProjectedSalePrice float64 `json:"projected_sale_price"`
	SaleCosts          float64 `json:"sale_costs"`
	NetSaleProceeds    float64 `json:"net_sale_proceeds"`
	TotalReturn        float64 `json:"total_return"`
	EquityMultiple     float64 `json:"equity_multiple"`
	AnnualizedReturn   float64 `json:"annualized_return"`
}

// ExitScenarios are the three dispositions of a projection sharing one future NOI
type ExitScenarios struct {
	HoldPeriodYears    int               `json:"hold_period_years"`
	FutureGrossIncome  float64           `json:"future_gross_income"`
	FutureExpenses     float64           `json:"future_expenses"`
	FutureNOI          float64           `json:"future_noi"`
	ExitCapRate        float64           `json:"exit_cap_rate"`
	ProjectedSalePrice float64           `json:"projected_sale_price"`
	Hold               HoldScenario      `json:"hold"`
	Refinance          RefinanceScenario `json:"refinance"`
	Sale               SaleScenario      `json:"sale"`
}

// ExitRequest parameterizes an exit projection
type ExitRequest struct {
	HoldPeriodYears int               `json:"hold_period_years"`
	Growth          GrowthAssumptions `json:"growth"`
	UseMarketRate   bool              `json:"use_market_rate"`
}
