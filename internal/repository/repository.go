package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert
	ErrDuplicate = errors.New("already exists")
)

const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO analytics.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM analytics.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateProperty stores a flat property snapshot
func (r *Repository) CreateProperty(ctx context.Context, p *models.PropertyFinancials) error {
	query := `
		INSERT INTO analytics.properties (owner_id, name, purchase_price, rehab_costs, closing_costs, holding_costs,
			gross_rental_income, vacancy_rate, other_income, operating_expenses, loan_amount, interest_rate,
			loan_term_years, payment_type, market_cap_rate, exit_cap_rate, refinance_ltv, refinance_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query, p.OwnerID, p.Name, p.PurchasePrice, p.RehabCosts, p.ClosingCosts,
		p.HoldingCosts, p.GrossRentalIncome, p.VacancyRate, p.OtherIncome, p.OperatingExpenses, p.LoanAmount,
		p.InterestRate, p.LoanTermYears, string(p.PaymentType), p.MarketCapRate, p.ExitCapRate, p.RefinanceLTV,
		p.RefinanceRate).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// GetProperty retrieves a property snapshot by ID
func (r *Repository) GetProperty(ctx context.Context, id int64) (*models.PropertyFinancials, error) {
	p := &models.PropertyFinancials{}
	var paymentType string
	query := `
		SELECT id, owner_id, name, purchase_price, rehab_costs, closing_costs, holding_costs, gross_rental_income,
			vacancy_rate, other_income, operating_expenses, loan_amount, interest_rate, loan_term_years,
			payment_type, market_cap_rate, exit_cap_rate, refinance_ltv, refinance_rate
		FROM analytics.properties
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.PurchasePrice, &p.RehabCosts,
		&p.ClosingCosts, &p.HoldingCosts, &p.GrossRentalIncome, &p.VacancyRate, &p.OtherIncome,
		&p.OperatingExpenses, &p.LoanAmount, &p.InterestRate, &p.LoanTermYears, &paymentType, &p.MarketCapRate,
		&p.ExitCapRate, &p.RefinanceLTV, &p.RefinanceRate)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	p.PaymentType = models.PaymentType(paymentType)
	return p, nil
}
