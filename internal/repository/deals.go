package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// DealRecord is a stored deal. AnalyzerData holds the legacy blob of deals
// imported from the old analyzer; their child tables are usually empty.
type DealRecord struct {
	Deal         models.Deal
	AnalyzerData []byte
}

// GetDeal retrieves a deal with all of its child collections
func (r *Repository) GetDeal(ctx context.Context, id int64) (*DealRecord, error) {
	rec := &DealRecord{}
	d := &rec.Deal
	var analyzerData sql.NullString
	query := `
		SELECT id, owner_id, name, purchase_price, units, vacancy_rate, bad_debt_rate, capex_reserve_per_unit,
			operating_reserve_months, start_to_stabilization_months, loan_percentage, refinance_ltv,
			market_cap_rate, exit_cap_rate, annual_rent_growth, hold_period_years, analyzer_data
		FROM analytics.deals
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.OwnerID, &d.Name, &d.PurchasePrice, &d.Units,
		&d.VacancyRate, &d.BadDebtRate, &d.CapexReservePerUnit, &d.OperatingReserveMonths,
		&d.StartToStabilizationMonths, &d.LoanPercentage, &d.RefinanceLTV, &d.MarketCapRate, &d.ExitCapRate,
		&d.AnnualRentGrowth, &d.HoldPeriodYears, &analyzerData)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("deal %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	if analyzerData.Valid && analyzerData.String != "" {
		rec.AnalyzerData = []byte(analyzerData.String)
	}

	if err := r.loadChildren(ctx, d); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repository) loadChildren(ctx context.Context, d *models.Deal) error {
	err := r.each(ctx, `SELECT id, category, total_cost FROM analytics.deal_rehab_items WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var it models.RehabItem
			if err := rows.Scan(&it.ID, &it.Category, &it.TotalCost); err != nil {
				return err
			}
			d.RehabItems = append(d.RehabItems, it)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load rehab items: %w", err)
	}

	err = r.each(ctx, `SELECT id, unit_number, is_occupied, current_rent, market_rent FROM analytics.deal_units WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var u models.Unit
			if err := rows.Scan(&u.ID, &u.UnitNumber, &u.IsOccupied, &u.CurrentRent, &u.MarketRent); err != nil {
				return err
			}
			d.UnitRecords = append(d.UnitRecords, u)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load units: %w", err)
	}

	err = r.each(ctx, `SELECT id, name, monthly_amount, is_percent_of_rent, percentage FROM analytics.deal_expense_items WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var e models.ExpenseItem
			if err := rows.Scan(&e.ID, &e.Name, &e.MonthlyAmount, &e.IsPercentOfRent, &e.Percentage); err != nil {
				return err
			}
			d.ExpenseItems = append(d.ExpenseItems, e)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load expense items: %w", err)
	}

	err = r.each(ctx, `SELECT id, name, amount FROM analytics.deal_closing_costs WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var c models.ClosingCostItem
			if err := rows.Scan(&c.ID, &c.Name, &c.Amount); err != nil {
				return err
			}
			d.ClosingCostItems = append(d.ClosingCostItems, c)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load closing costs: %w", err)
	}

	err = r.each(ctx, `SELECT id, name, monthly_amount FROM analytics.deal_holding_costs WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var h models.HoldingCostItem
			if err := rows.Scan(&h.ID, &h.Name, &h.MonthlyAmount); err != nil {
				return err
			}
			d.HoldingCostItems = append(d.HoldingCostItems, h)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load holding costs: %w", err)
	}

	err = r.each(ctx, `SELECT id, deal_id, loan_type, loan_amount, interest_rate, amortization_years, io_months, is_active FROM analytics.deal_loans WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var l models.Loan
			var loanType string
			if err := rows.Scan(&l.ID, &l.DealID, &loanType, &l.LoanAmount, &l.InterestRate, &l.AmortizationYears, &l.IOMonths, &l.IsActive); err != nil {
				return err
			}
			l.LoanType = models.LoanType(loanType)
			d.Loans = append(d.Loans, l)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load loans: %w", err)
	}

	err = r.each(ctx, `SELECT id, name, monthly_amount FROM analytics.deal_other_income WHERE deal_id = $1 ORDER BY id`,
		d.ID, func(rows *sql.Rows) error {
			var o models.OtherIncomeItem
			if err := rows.Scan(&o.ID, &o.Name, &o.MonthlyAmount); err != nil {
				return err
			}
			d.OtherIncomeItems = append(d.OtherIncomeItems, o)
			return nil
		})
	if err != nil {
		return fmt.Errorf("failed to load other income: %w", err)
	}
	return nil
}

// each runs query with a single deal_id argument and calls scan per row
func (r *Repository) each(ctx context.Context, query string, dealID int64, scan func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ListDealIDs returns the IDs of all deals
func (r *Repository) ListDealIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM analytics.deals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan deal id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	return ids, nil
}

// UpdateUnit replaces the occupancy and rents of a unit
func (r *Repository) UpdateUnit(ctx context.Context, dealID int64, u models.Unit) error {
	query := `
		UPDATE analytics.deal_units
		SET unit_number = $1, is_occupied = $2, current_rent = $3, market_rent = $4
		WHERE id = $5 AND deal_id = $6`
	res, err := r.db.ExecContext(ctx, query, u.UnitNumber, u.IsOccupied, u.CurrentRent, u.MarketRent, u.ID, dealID)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	return expectOne(res, fmt.Sprintf("unit %d of deal %d", u.ID, dealID))
}

// SetActiveLoan marks one loan of a deal active and clears the flag on the others
func (r *Repository) SetActiveLoan(ctx context.Context, dealID, loanID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE analytics.deal_loans SET is_active = TRUE WHERE id = $1 AND deal_id = $2`, loanID, dealID)
	if err != nil {
		return fmt.Errorf("failed to activate loan: %w", err)
	}
	if err := expectOne(res, fmt.Sprintf("loan %d of deal %d", loanID, dealID)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE analytics.deal_loans SET is_active = FALSE WHERE deal_id = $1 AND id <> $2`, dealID, loanID); err != nil {
		return fmt.Errorf("failed to deactivate loans: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateDealAssumptions stores the scalar underwriting fields of a deal
func (r *Repository) UpdateDealAssumptions(ctx context.Context, d *models.Deal) error {
	query := `
		UPDATE analytics.deals
		SET purchase_price = $1, units = $2, vacancy_rate = $3, bad_debt_rate = $4, capex_reserve_per_unit = $5,
			operating_reserve_months = $6, start_to_stabilization_months = $7, loan_percentage = $8,
			refinance_ltv = $9, market_cap_rate = $10, exit_cap_rate = $11, annual_rent_growth = $12,
			hold_period_years = $13, updated_at = CURRENT_TIMESTAMP
		WHERE id = $14`
	res, err := r.db.ExecContext(ctx, query, d.PurchasePrice, d.Units, d.VacancyRate, d.BadDebtRate,
		d.CapexReservePerUnit, d.OperatingReserveMonths, d.StartToStabilizationMonths, d.LoanPercentage,
		d.RefinanceLTV, d.MarketCapRate, d.ExitCapRate, d.AnnualRentGrowth, d.HoldPeriodYears, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}
	return expectOne(res, fmt.Sprintf("deal %d", d.ID))
}

func expectOne(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
