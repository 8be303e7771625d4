package models

// Deal is a proposed or owned investment with a unit-level rent roll,
// itemized costs and possibly several loans.
type Deal struct {
	ID                         int64   `json:"id"`
	OwnerID                    int64   `json:"owner_id"`
	Name                       string  `json:"name"`
	PurchasePrice              float64 `json:"purchase_price"`
	Units                      int     `json:"units"`
	VacancyRate                float64 `json:"vacancy_rate"`
	BadDebtRate                float64 `json:"bad_debt_rate"`
	CapexReservePerUnit        float64 `json:"capex_reserve_per_unit"`
	OperatingReserveMonths     int     `json:"operating_reserve_months"`
	StartToStabilizationMonths int     `json:"start_to_stabilization_months"`
	LoanPercentage             float64 `json:"loan_percentage"`
	RefinanceLTV               float64 `json:"refinance_ltv"`
	MarketCapRate              float64 `json:"market_cap_rate"`
	ExitCapRate                float64 `json:"exit_cap_rate"`
	AnnualRentGrowth           float64 `json:"annual_rent_growth"`
	HoldPeriodYears            int     `json:"hold_period_years,omitempty"`

	RehabItems       []RehabItem       `json:"rehab_items"`
	UnitRecords      []Unit            `json:"unit_records"`
	ExpenseItems     []ExpenseItem     `json:"expense_items"`
	ClosingCostItems []ClosingCostItem `json:"closing_cost_items"`
	HoldingCostItems []HoldingCostItem `json:"holding_cost_items"`
	Loans            []Loan            `json:"loans"`
	OtherIncomeItems []OtherIncomeItem `json:"other_income_items"`
}

// RehabItem is a renovation budget line
type RehabItem struct {
	ID        int64   `json:"id"`
	Category  string  `json:"category"`
	TotalCost float64 `json:"total_cost"`
}

// Unit is a rent roll entry
type Unit struct {
	ID          int64   `json:"id"`
	UnitNumber  string  `json:"unit_number"`
	IsOccupied  bool    `json:"is_occupied"`
	CurrentRent float64 `json:"current_rent"`
	MarketRent  float64 `json:"market_rent"`
}

// ExpenseItem is an operating expense line. When IsPercentOfRent is set,
// Percentage applies to annual gross rental income and MonthlyAmount is ignored.
type ExpenseItem struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	MonthlyAmount   float64 `json:"monthly_amount"`
	IsPercentOfRent bool    `json:"is_percent_of_rent"`
	Percentage      float64 `json:"percentage"`
}

// ClosingCostItem is a one-off acquisition cost
type ClosingCostItem struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// HoldingCostItem is a monthly carrying cost until stabilization
type HoldingCostItem struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// OtherIncomeItem is non-rent income (laundry, parking, storage)
type OtherIncomeItem struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// DealAssumptionsPatch carries a partial update of a deal's underwriting assumptions
type DealAssumptionsPatch struct {
	PurchasePrice              *float64 `json:"purchase_price,omitempty"`
	Units                      *int     `json:"units,omitempty"`
	VacancyRate                *float64 `json:"vacancy_rate,omitempty"`
	BadDebtRate                *float64 `json:"bad_debt_rate,omitempty"`
	CapexReservePerUnit        *float64 `json:"capex_reserve_per_unit,omitempty"`
	OperatingReserveMonths     *int     `json:"operating_reserve_months,omitempty"`
	StartToStabilizationMonths *int     `json:"start_to_stabilization_months,omitempty"`
	LoanPercentage             *float64 `json:"loan_percentage,omitempty"`
	RefinanceLTV               *float64 `json:"refinance_ltv,omitempty"`
	MarketCapRate              *float64 `json:"market_cap_rate,omitempty"`
	ExitCapRate                *float64 `json:"exit_cap_rate,omitempty"`
	AnnualRentGrowth           *float64 `json:"annual_rent_growth,omitempty"`
	HoldPeriodYears            *int     `json:"hold_period_years,omitempty"`
}

// Apply copies the set fields of p onto d
func (p DealAssumptionsPatch) Apply(d *Deal) {
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat(&d.PurchasePrice, p.PurchasePrice)
	setInt(&d.Units, p.Units)
	setFloat(&d.VacancyRate, p.VacancyRate)
	setFloat(&d.BadDebtRate, p.BadDebtRate)
	setFloat(&d.CapexReservePerUnit, p.CapexReservePerUnit)
	setInt(&d.OperatingReserveMonths, p.OperatingReserveMonths)
	setInt(&d.StartToStabilizationMonths, p.StartToStabilizationMonths)
	setFloat(&d.LoanPercentage, p.LoanPercentage)
	setFloat(&d.RefinanceLTV, p.RefinanceLTV)
	setFloat(&d.MarketCapRate, p.MarketCapRate)
	setFloat(&d.ExitCapRate, p.ExitCapRate)
	setFloat(&d.AnnualRentGrowth, p.AnnualRentGrowth)
	setInt(&d.HoldPeriodYears, p.HoldPeriodYears)
}
