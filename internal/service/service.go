package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/config"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/finance"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/middleware"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/notify"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("user ID not found in context")
	ErrForbidden          = errors.New("resource does not belong to user")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMarketRate         = errors.New("market rate unavailable")
)

// Store is the persistence the service needs
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateProperty(ctx context.Context, p *models.PropertyFinancials) error
	GetProperty(ctx context.Context, id int64) (*models.PropertyFinancials, error)
	GetDeal(ctx context.Context, id int64) (*repository.DealRecord, error)
	ListDealIDs(ctx context.Context) ([]int64, error)
	UpdateUnit(ctx context.Context, dealID int64, u models.Unit) error
	SetActiveLoan(ctx context.Context, dealID, loanID int64) error
	UpdateDealAssumptions(ctx context.Context, d *models.Deal) error
}

// KeyRateSource reports the central-bank key rate in percent
type KeyRateSource interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

// Service handles business logic
type Service struct {
	repo     Store
	engine   *finance.Engine
	notifier notify.Notifier
	rates    KeyRateSource
	log      *logrus.Logger
	config   *config.Config
}

// NewService initializes a new service. rates may be nil, in which case
// market-rate projections are refused.
func NewService(repo Store, engine *finance.Engine, notifier notify.Notifier, rates KeyRateSource, log *logrus.Logger, cfg *config.Config) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{
		repo:     repo,
		engine:   engine,
		notifier: notifier,
		rates:    rates,
		log:      log,
		config:   cfg,
	}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// MarketRate fetches the key rate and derives the refinance rate from it
func (s *Service) MarketRate(ctx context.Context) (*models.MarketRate, error) {
	if s.rates == nil {
		return nil, ErrMarketRate
	}
	keyRate, err := s.rates.GetKeyRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketRate, err)
	}
	return &models.MarketRate{
		KeyRate:       keyRate,
		Margin:        s.config.MarketRateMargin,
		RefinanceRate: (keyRate + s.config.MarketRateMargin) / 100,
		RetrievedAt:   time.Now().UTC(),
	}, nil
}

// Calculate evaluates financials that are not stored
func (s *Service) Calculate(p models.PropertyFinancials) models.CalculatedMetrics {
	return s.engine.ComputeMetrics(p)
}

// CalculateSensitivity sweeps financials that are not stored
func (s *Service) CalculateSensitivity(p models.PropertyFinancials) models.SensitivityResult {
	return s.engine.Sweep(p)
}

// CalculateExit projects financials that are not stored
func (s *Service) CalculateExit(ctx context.Context, p models.PropertyFinancials, req models.ExitRequest) (*models.ExitScenarios, error) {
	if err := s.applyMarketRate(ctx, &p, req); err != nil {
		return nil, err
	}
	out := s.engine.Project(p, req.HoldPeriodYears, req.Growth)
	return &out, nil
}

func (s *Service) applyMarketRate(ctx context.Context, p *models.PropertyFinancials, req models.ExitRequest) error {
	if !req.UseMarketRate {
		return nil
	}
	mr, err := s.MarketRate(ctx)
	if err != nil {
		return err
	}
	p.RefinanceRate = mr.RefinanceRate
	return nil
}

func currentUser(ctx context.Context) (int64, error) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}
