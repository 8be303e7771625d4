package service

import (
	"context"
	"fmt"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/dealdata"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/finance"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/repository"
)

// loadedDeal is a deal ready for evaluation. basic is set instead of deal
// when only the reduced legacy fields could be decoded.
type loadedDeal struct {
	id    int64
	deal  *models.Deal
	basic *models.PropertyFinancials
}

func hasChildren(d *models.Deal) bool {
	return len(d.RehabItems) > 0 || len(d.UnitRecords) > 0 || len(d.ExpenseItems) > 0 ||
		len(d.ClosingCostItems) > 0 || len(d.HoldingCostItems) > 0 || len(d.Loans) > 0 ||
		len(d.OtherIncomeItems) > 0
}

// resolve turns a stored record into something the engine can evaluate.
// Deals that only carry a legacy analyzer blob are decoded from it.
func (s *Service) resolve(rec *repository.DealRecord) (*loadedDeal, error) {
	d := rec.Deal
	if len(rec.AnalyzerData) == 0 || hasChildren(&d) {
		return &loadedDeal{id: d.ID, deal: &d}, nil
	}

	decoded, err := dealdata.Decode(rec.AnalyzerData)
	if err == nil {
		decoded.ID, decoded.OwnerID, decoded.Name = d.ID, d.OwnerID, d.Name
		return &loadedDeal{id: d.ID, deal: decoded}, nil
	}
	s.log.Warnf("Deal %d: full decode of analyzer data failed, using basic fields: %v", d.ID, err)

	basic, basicErr := dealdata.DecodeBasic(rec.AnalyzerData)
	if basicErr != nil {
		return nil, fmt.Errorf("deal %d analyzer data: %w", d.ID, basicErr)
	}
	basic.ID, basic.OwnerID, basic.Name = d.ID, d.OwnerID, d.Name
	return &loadedDeal{id: d.ID, basic: basic}, nil
}

// ownedDeal loads a deal and checks that it belongs to the caller
func (s *Service) ownedDeal(ctx context.Context, id int64) (*repository.DealRecord, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Deal.OwnerID != userID {
		return nil, ErrForbidden
	}
	return rec, nil
}

func (s *Service) loadOwnedDeal(ctx context.Context, id int64) (*loadedDeal, error) {
	rec, err := s.ownedDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(rec)
}

// kpis evaluates a loaded deal. Basic legacy deals go through the flat pipeline.
func (s *Service) kpis(ld *loadedDeal) models.DealKPIs {
	if ld.deal != nil {
		return s.engine.ComputeKPIs(*ld.deal)
	}
	return kpisFromMetrics(*ld.basic, s.engine.ComputeMetrics(*ld.basic))
}

func kpisFromMetrics(p models.PropertyFinancials, m models.CalculatedMetrics) models.DealKPIs {
	return models.DealKPIs{
		AllInCost:             m.AllInCost,
		TotalRehab:            p.RehabCosts,
		TotalClosingCosts:     p.ClosingCosts,
		TotalHoldingCosts:     p.HoldingCosts,
		GrossRentalIncome:     m.GrossRentalIncome,
		VacancyLoss:           p.GrossRentalIncome * p.VacancyRate,
		OtherIncome:           p.OtherIncome,
		EffectiveGrossIncome:  m.EffectiveGrossIncome,
		OperatingExpenses:     m.OperatingExpenses,
		NetOperatingIncome:    m.NetOperatingIncome,
		ARV:                   m.ARV,
		LoanAmount:            p.LoanAmount,
		CapitalRequired:       m.InitialCapitalRequired,
		MonthlyDebtService:    m.MonthlyDebtService,
		AnnualDebtService:     m.AnnualDebtService,
		AnnualCashFlow:        m.AnnualCashFlow,
		CapRate:               m.CapRate,
		CashOnCashReturn:      m.CashOnCashReturn,
		EquityMultiple:        m.EquityMultiple,
		DSCR:                  m.DSCR,
		CurrentEquity:         m.CurrentEquity,
		LoanToValue:           m.LoanToValue,
		LoanToCost:            m.LoanToCost,
		BreakEvenOccupancy:    m.BreakEvenOccupancy,
		OperatingExpenseRatio: m.OperatingExpenseRatio,
		TotalReturn:           m.TotalReturn,
		AnnualizedReturn:      m.AnnualizedReturn,
		IsSpeculative:         m.IsSpeculative,
		DSCRWarning:           m.DSCRWarning,
		OccupancyRisk:         m.OccupancyRisk,
	}
}

// DealKPIs evaluates a stored deal
func (s *Service) DealKPIs(ctx context.Context, id int64) (*models.DealKPIs, error) {
	ld, err := s.loadOwnedDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	k := s.kpis(ld)
	return &k, nil
}

// DealSensitivity sweeps a stored deal
func (s *Service) DealSensitivity(ctx context.Context, id int64) (*models.SensitivityResult, error) {
	ld, err := s.loadOwnedDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	var out models.SensitivityResult
	if ld.deal != nil {
		out = s.engine.SweepDeal(*ld.deal)
	} else {
		out = s.engine.Sweep(*ld.basic)
	}
	return &out, nil
}

// DealExit projects a stored deal. The deal's rent growth wins over the
// request's when set; the hold period falls back to the deal's.
func (s *Service) DealExit(ctx context.Context, id int64, req models.ExitRequest) (*models.ExitScenarios, error) {
	ld, err := s.loadOwnedDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if ld.deal == nil {
		return s.CalculateExit(ctx, *ld.basic, req)
	}
	var base models.PropertyFinancials
	if err := s.applyMarketRate(ctx, &base, req); err != nil {
		return nil, err
	}
	out := s.engine.ProjectDealAtRate(*ld.deal, req.HoldPeriodYears, req.Growth, base.RefinanceRate)
	return &out, nil
}

// LoanSchedule lists the monthly payments of one of the deal's loans
func (s *Service) LoanSchedule(ctx context.Context, dealID, loanID int64) ([]models.AmortizationEntry, error) {
	ld, err := s.loadOwnedDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if ld.deal == nil {
		return nil, fmt.Errorf("loan %d: %w", loanID, repository.ErrNotFound)
	}
	for _, l := range ld.deal.Loans {
		if l.ID != loanID {
			continue
		}
		pt := models.PrincipalAndInterest
		if l.IOMonths > 0 {
			pt = models.InterestOnly
		}
		entries := finance.Schedule(l.LoanAmount, l.InterestRate, l.AmortizationYears, pt)
		if entries == nil {
			entries = []models.AmortizationEntry{}
		}
		return entries, nil
	}
	return nil, fmt.Errorf("loan %d: %w", loanID, repository.ErrNotFound)
}

// UpdateUnit changes a rent roll entry and republishes the deal's KPIs
func (s *Service) UpdateUnit(ctx context.Context, dealID int64, u models.Unit) (*models.DealKPIs, error) {
	if u.CurrentRent < 0 || u.MarketRent < 0 {
		return nil, fmt.Errorf("%w: rents must not be negative", ErrInvalidInput)
	}
	if _, err := s.ownedDeal(ctx, dealID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUnit(ctx, dealID, u); err != nil {
		return nil, err
	}
	s.log.Infof("Unit %d of deal %d updated", u.ID, dealID)
	return s.recompute(ctx, dealID)
}

// SetActiveLoan makes loanID the deal's only active loan and republishes the deal's KPIs
func (s *Service) SetActiveLoan(ctx context.Context, dealID, loanID int64) (*models.DealKPIs, error) {
	if _, err := s.ownedDeal(ctx, dealID); err != nil {
		return nil, err
	}
	if err := s.repo.SetActiveLoan(ctx, dealID, loanID); err != nil {
		return nil, err
	}
	s.log.Infof("Loan %d activated for deal %d", loanID, dealID)
	return s.recompute(ctx, dealID)
}

// UpdateDealAssumptions patches the deal's assumptions and republishes its KPIs
func (s *Service) UpdateDealAssumptions(ctx context.Context, dealID int64, patch models.DealAssumptionsPatch) (*models.DealKPIs, error) {
	rec, err := s.ownedDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	d := rec.Deal
	patch.Apply(&d)
	if err := validateAssumptions(&d); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDealAssumptions(ctx, &d); err != nil {
		return nil, err
	}
	s.log.Infof("Assumptions of deal %d updated", dealID)
	return s.recompute(ctx, dealID)
}

func validateAssumptions(d *models.Deal) error {
	switch {
	case d.PurchasePrice < 0:
		return fmt.Errorf("%w: purchase price must not be negative", ErrInvalidInput)
	case d.Units < 0 || d.OperatingReserveMonths < 0 || d.HoldPeriodYears < 0 || d.StartToStabilizationMonths < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidInput)
	case d.VacancyRate < 0 || d.VacancyRate > 1 || d.BadDebtRate < 0 || d.BadDebtRate > 1:
		return fmt.Errorf("%w: vacancy and bad debt rates must be between 0 and 1", ErrInvalidInput)
	}
	return nil
}

// recompute reloads a deal after a mutation, evaluates it and publishes the result
func (s *Service) recompute(ctx context.Context, dealID int64) (*models.DealKPIs, error) {
	rec, err := s.repo.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	ld, err := s.resolve(rec)
	if err != nil {
		return nil, err
	}
	k := s.kpis(ld)
	s.publish(ctx, dealID, k)
	return &k, nil
}

// publish is best-effort; a failed delivery never fails the mutation
func (s *Service) publish(ctx context.Context, dealID int64, k models.DealKPIs) {
	update := models.KPIUpdate{Type: models.KPIUpdateType, DealID: dealID, KPIs: k}
	if err := s.notifier.Publish(ctx, update); err != nil {
		s.log.WithError(err).Warnf("Failed to publish KPI update for deal %d", dealID)
	}
}
