package service

import (
	"context"
	"fmt"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// CreateProperty stores flat financials for the authenticated user
func (s *Service) CreateProperty(ctx context.Context, p *models.PropertyFinancials) error {
	userID, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if p.PurchasePrice < 0 || p.LoanAmount < 0 || p.LoanTermYears < 0 {
		return fmt.Errorf("%w: negative amounts are not allowed", ErrInvalidInput)
	}
	if p.PaymentType == "" {
		p.PaymentType = models.PrincipalAndInterest
	}
	p.OwnerID = userID
	if err := s.repo.CreateProperty(ctx, p); err != nil {
		return err
	}
	s.log.Infof("Property %d created for user %d", p.ID, userID)
	return nil
}

func (s *Service) ownedProperty(ctx context.Context, id int64) (*models.PropertyFinancials, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, ErrForbidden
	}
	return p, nil
}

// PropertyMetrics evaluates a stored property
func (s *Service) PropertyMetrics(ctx context.Context, id int64) (*models.CalculatedMetrics, error) {
	p, err := s.ownedProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	m := s.engine.ComputeMetrics(*p)
	return &m, nil
}

// PropertySensitivity sweeps a stored property
func (s *Service) PropertySensitivity(ctx context.Context, id int64) (*models.SensitivityResult, error) {
	p, err := s.ownedProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.engine.Sweep(*p)
	return &out, nil
}

// PropertyExit projects a stored property
func (s *Service) PropertyExit(ctx context.Context, id int64, req models.ExitRequest) (*models.ExitScenarios, error) {
	p, err := s.ownedProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.CalculateExit(ctx, *p, req)
}
