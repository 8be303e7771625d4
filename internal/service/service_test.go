package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/config"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/dealdata"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/finance"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/middleware"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/repository"
)

type fakeStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[string]models.User
	properties map[int64]models.PropertyFinancials
	deals      map[int64]repository.DealRecord
	dealIDs    []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:     100,
		users:      map[string]models.User{},
		properties: map[int64]models.PropertyFinancials{},
		deals:      map[int64]repository.DealRecord{},
	}
}

func (f *fakeStore) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	u.ID = f.nextID
	f.users[u.Email] = *u
	return nil
}

func (f *fakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeStore) CreateProperty(_ context.Context, p *models.PropertyFinancials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.properties[p.ID] = *p
	return nil
}

func (f *fakeStore) GetProperty(_ context.Context, id int64) (*models.PropertyFinancials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) putDeal(rec repository.DealRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deals[rec.Deal.ID] = rec
	f.dealIDs = append(f.dealIDs, rec.Deal.ID)
}

func (f *fakeStore) GetDeal(_ context.Context, id int64) (*repository.DealRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %d: %w", id, repository.ErrNotFound)
	}
	rec.Deal.UnitRecords = slices.Clone(rec.Deal.UnitRecords)
	rec.Deal.Loans = slices.Clone(rec.Deal.Loans)
	return &rec, nil
}

func (f *fakeStore) ListDealIDs(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.dealIDs), nil
}

func (f *fakeStore) UpdateUnit(_ context.Context, dealID int64, u models.Unit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.deals[dealID]
	for i := range rec.Deal.UnitRecords {
		if rec.Deal.UnitRecords[i].ID == u.ID {
			rec.Deal.UnitRecords[i] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) SetActiveLoan(_ context.Context, dealID, loanID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.deals[dealID]
	if !slices.ContainsFunc(rec.Deal.Loans, func(l models.Loan) bool { return l.ID == loanID }) {
		return repository.ErrNotFound
	}
	for i := range rec.Deal.Loans {
		rec.Deal.Loans[i].IsActive = rec.Deal.Loans[i].ID == loanID
	}
	return nil
}

func (f *fakeStore) UpdateDealAssumptions(_ context.Context, d *models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := f.deals[d.ID]
	rec.Deal = *d
	f.deals[d.ID] = rec
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []models.KPIUpdate
	err     error
}

func (r *recordingNotifier) Publish(_ context.Context, u models.KPIUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return r.err
}

func (r *recordingNotifier) published() []models.KPIUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.updates)
}

type fixedRate struct {
	rate float64
	err  error
}

func (f fixedRate) GetKeyRate(context.Context) (float64, error) { return f.rate, f.err }

const owner int64 = 1

func testDeal(id int64) models.Deal {
	return models.Deal{
		ID:                     id,
		OwnerID:                owner,
		Name:                   "Maple Fourplex",
		PurchasePrice:          1000000,
		Units:                  4,
		VacancyRate:            0.05,
		BadDebtRate:            0.01,
		CapexReservePerUnit:    300,
		OperatingReserveMonths: 6,
		RefinanceLTV:           0.7,
		MarketCapRate:          0.06,
		ExitCapRate:            0.065,
		AnnualRentGrowth:       0.03,
		HoldPeriodYears:        5,
		RehabItems:             []models.RehabItem{{TotalCost: 80000}},
		UnitRecords: []models.Unit{
			{ID: 1, IsOccupied: true, CurrentRent: 2000, MarketRent: 2300},
			{ID: 2, IsOccupied: true, CurrentRent: 2100, MarketRent: 2300},
			{ID: 3, IsOccupied: false, MarketRent: 2200},
			{ID: 4, IsOccupied: true, CurrentRent: 1900, MarketRent: 2300},
		},
		ExpenseItems: []models.ExpenseItem{
			{Name: "taxes", MonthlyAmount: 1000},
			{Name: "management", IsPercentOfRent: true, Percentage: 0.08},
		},
		ClosingCostItems: []models.ClosingCostItem{{Amount: 20000}},
		HoldingCostItems: []models.HoldingCostItem{{MonthlyAmount: 2000}},
		Loans: []models.Loan{
			{ID: 11, LoanType: models.LoanAcquisition, LoanAmount: 750000, InterestRate: 0.07, AmortizationYears: 30, IsActive: true},
			{ID: 12, LoanType: models.LoanRefinance, LoanAmount: 800000, InterestRate: 0.065, AmortizationYears: 30, IOMonths: 12},
		},
	}
}

func newTestService(t *testing.T, rates KeyRateSource) (*Service, *fakeStore, *recordingNotifier) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret", MarketRateMargin: 2, RefreshConcurrency: 2}
	store := newFakeStore()
	n := &recordingNotifier{}
	return NewService(store, finance.NewEngine(finance.DefaultAssumptions()), n, rates, log, cfg), store, n
}

func asOwner() context.Context {
	return middleware.WithUserID(context.Background(), owner)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	token, err := svc.Login(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(u.ID), claims.Subject)

	_, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "bob@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Register(ctx, "alice", "alice@example.com", "again")
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = svc.Register(ctx, "nobody", "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPropertyOwnership(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	p := &models.PropertyFinancials{PurchasePrice: 500000, GrossRentalIncome: 120000, OperatingExpenses: 40000, MarketCapRate: 0.065}
	require.NoError(t, svc.CreateProperty(asOwner(), p))
	assert.Equal(t, owner, p.OwnerID)
	assert.Equal(t, models.PrincipalAndInterest, p.PaymentType)

	m, err := svc.PropertyMetrics(asOwner(), p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 80000, m.NetOperatingIncome, 1e-9)

	_, err = svc.PropertyMetrics(middleware.WithUserID(context.Background(), 2), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.PropertySensitivity(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = svc.PropertyExit(asOwner(), 999, models.ExitRequest{HoldPeriodYears: 5})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDealKPIs(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})

	k, err := svc.DealKPIs(asOwner(), 7)
	require.NoError(t, err)
	assert.Equal(t, svc.engine.ComputeKPIs(testDeal(7)), *k)
	assert.Equal(t, int64(11), k.ActiveLoanID)

	sens, err := svc.DealSensitivity(asOwner(), 7)
	require.NoError(t, err)
	assert.Equal(t, svc.engine.SweepDeal(testDeal(7)), *sens)
}

func TestDealKPIs_LegacyBlob(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	blob := []byte(`{"purchasePrice": "$900,000", "units": 2,
		"assumptions": {"vacancyRate": 5, "marketCapRate": 6},
		"rentRoll": [{"isOccupied": "yes", "currentRent": "2,000"}, {"isOccupied": "no", "marketRent": 2100}],
		"loans": [{"loanType": "purchase", "loanAmount": 600000, "interestRate": "6%", "amortizationYears": 30}]}`)
	store.putDeal(repository.DealRecord{Deal: models.Deal{ID: 8, OwnerID: owner, Name: "Legacy"}, AnalyzerData: blob})

	decoded, err := dealdata.Decode(blob)
	require.NoError(t, err)
	decoded.ID, decoded.OwnerID, decoded.Name = 8, owner, "Legacy"

	k, err := svc.DealKPIs(asOwner(), 8)
	require.NoError(t, err)
	assert.Equal(t, svc.engine.ComputeKPIs(*decoded), *k)
	assert.InDelta(t, (2000+2100)*12, k.GrossRentalIncome, 1e-9)
}

func TestDealKPIs_BasicFallback(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	blob := []byte(`{"purchasePrice": "500,000", "rehabCosts": 100000, "closingCosts": 20000, "holdingCosts": 10000,
		"monthlyRent": 10000, "vacancyRate": "5%", "otherIncome": 5000, "operatingExpenses": 40000,
		"loanAmount": 400000, "interestRate": 6.5, "loanTermYears": 30,
		"assumptions": {"marketCapRate": 6.5}, "rentRoll": [{"currentRent": "unknown"}]}`)
	store.putDeal(repository.DealRecord{Deal: models.Deal{ID: 9, OwnerID: owner}, AnalyzerData: blob})

	k, err := svc.DealKPIs(asOwner(), 9)
	require.NoError(t, err)
	assert.InDelta(t, 79000, k.NetOperatingIncome, 1e-9)
	assert.Equal(t, 230000.0, k.CapitalRequired)
	assert.InDelta(t, 30339.27, k.AnnualDebtService, 0.1)

	_, err = svc.LoanSchedule(asOwner(), 9, 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	exit, err := svc.DealExit(asOwner(), 9, models.ExitRequest{HoldPeriodYears: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, exit.HoldPeriodYears)
}

func TestDealKPIs_Forbidden(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})

	_, err := svc.DealKPIs(middleware.WithUserID(context.Background(), 2), 7)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateUnit(middleware.WithUserID(context.Background(), 2), 7, models.Unit{ID: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMutationsPublish(t *testing.T) {
	svc, store, n := newTestService(t, nil)
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})
	ctx := asOwner()

	before, err := svc.DealKPIs(ctx, 7)
	require.NoError(t, err)

	after, err := svc.UpdateUnit(ctx, 7, models.Unit{ID: 3, UnitNumber: "3", IsOccupied: true, CurrentRent: 2200, MarketRent: 2200})
	require.NoError(t, err)
	assert.InDelta(t, before.GrossRentalIncome, after.GrossRentalIncome, 1e-9)

	after, err = svc.UpdateUnit(ctx, 7, models.Unit{ID: 3, IsOccupied: true, CurrentRent: 2500})
	require.NoError(t, err)
	assert.Greater(t, after.NetOperatingIncome, before.NetOperatingIncome)

	switched, err := svc.SetActiveLoan(ctx, 7, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), switched.ActiveLoanID)
	assert.InDelta(t, 52000, switched.AnnualDebtService, 1e-6)

	vacancy := 0.10
	patched, err := svc.UpdateDealAssumptions(ctx, 7, models.DealAssumptionsPatch{VacancyRate: &vacancy})
	require.NoError(t, err)
	assert.Less(t, patched.EffectiveGrossIncome, switched.EffectiveGrossIncome)

	updates := n.published()
	require.Len(t, updates, 4)
	for _, u := range updates {
		assert.Equal(t, models.KPIUpdateType, u.Type)
		assert.Equal(t, int64(7), u.DealID)
	}
	assert.Equal(t, *patched, updates[3].KPIs)
}

func TestMutations_Rejected(t *testing.T) {
	svc, store, n := newTestService(t, nil)
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})
	ctx := asOwner()

	_, err := svc.UpdateUnit(ctx, 7, models.Unit{ID: 99, CurrentRent: 100})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.UpdateUnit(ctx, 7, models.Unit{ID: 1, CurrentRent: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetActiveLoan(ctx, 7, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	bad := 1.5
	_, err = svc.UpdateDealAssumptions(ctx, 7, models.DealAssumptionsPatch{VacancyRate: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, n.published())
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	svc, store, n := newTestService(t, nil)
	n.err = errors.New("hub closed")
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})

	k, err := svc.SetActiveLoan(asOwner(), 7, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), k.ActiveLoanID)
	assert.Len(t, n.published(), 1)
}

func TestLoanSchedule(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})

	entries, err := svc.LoanSchedule(asOwner(), 7, 11)
	require.NoError(t, err)
	require.Len(t, entries, 360)
	assert.InDelta(t, 0, entries[359].Balance, 1e-6)

	interestOnly, err := svc.LoanSchedule(asOwner(), 7, 12)
	require.NoError(t, err)
	assert.Equal(t, 0.0, interestOnly[0].Principal)
	assert.InDelta(t, 800000*0.065/12, interestOnly[0].Interest, 1e-9)

	_, err = svc.LoanSchedule(asOwner(), 7, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDealExit(t *testing.T) {
	svc, store, _ := newTestService(t, fixedRate{rate: 16})
	store.putDeal(repository.DealRecord{Deal: testDeal(7)})
	g := models.GrowthAssumptions{AnnualExpenseGrowth: 0.02, SaleCostsPercent: 0.05}

	out, err := svc.DealExit(asOwner(), 7, models.ExitRequest{Growth: g})
	require.NoError(t, err)
	assert.Equal(t, svc.engine.ProjectDeal(testDeal(7), 0, g), *out)
	assert.Equal(t, 5, out.HoldPeriodYears)

	market, err := svc.DealExit(asOwner(), 7, models.ExitRequest{Growth: g, UseMarketRate: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.18, market.Refinance.RefinanceRate, 1e-12)
	assert.Equal(t, out.FutureNOI, market.FutureNOI)
	assert.Less(t, market.Refinance.AnnualCashFlow, out.Refinance.AnnualCashFlow)
}

func TestDealExit_RequestGrowthWhenDealHasNone(t *testing.T) {
	svc, store, _ := newTestService(t, fixedRate{rate: 16})
	d := testDeal(7)
	d.AnnualRentGrowth = 0
	store.putDeal(repository.DealRecord{Deal: d})
	req := models.ExitRequest{HoldPeriodYears: 2, Growth: models.GrowthAssumptions{AnnualRentGrowth: 0.04}}

	flat, err := svc.DealExit(asOwner(), 7, req)
	require.NoError(t, err)
	grown := svc.engine.ProjectDeal(d, 2, req.Growth)
	assert.Equal(t, grown, *flat)
	assert.Greater(t, flat.FutureGrossIncome, finance.DealFinancials(d).GrossRentalIncome)

	req.UseMarketRate = true
	market, err := svc.DealExit(asOwner(), 7, req)
	require.NoError(t, err)
	assert.Equal(t, flat.FutureGrossIncome, market.FutureGrossIncome)
}

func TestMarketRate(t *testing.T) {
	svc, _, _ := newTestService(t, fixedRate{rate: 16})
	mr, err := svc.MarketRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 16.0, mr.KeyRate)
	assert.Equal(t, 2.0, mr.Margin)
	assert.InDelta(t, 0.18, mr.RefinanceRate, 1e-12)

	down, _, _ := newTestService(t, fixedRate{err: errors.New("timeout")})
	_, err = down.MarketRate(context.Background())
	assert.ErrorIs(t, err, ErrMarketRate)

	none, _, _ := newTestService(t, nil)
	_, err = none.CalculateExit(context.Background(), models.PropertyFinancials{}, models.ExitRequest{UseMarketRate: true})
	assert.ErrorIs(t, err, ErrMarketRate)
}

func TestRefreshAll(t *testing.T) {
	svc, store, n := newTestService(t, nil)
	for _, id := range []int64{1, 2, 3} {
		store.putDeal(repository.DealRecord{Deal: testDeal(id)})
	}
	store.mu.Lock()
	store.dealIDs = append(store.dealIDs, 404)
	store.mu.Unlock()

	res, err := svc.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RefreshResult{Refreshed: 3, Failed: 1}, res)

	var ids []int64
	for _, u := range n.published() {
		ids = append(ids, u.DealID)
	}
	slices.Sort(ids)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestRefreshAll_Cancelled(t *testing.T) {
	svc, store, n := newTestService(t, nil)
	store.putDeal(repository.DealRecord{Deal: testDeal(1)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RefreshAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, n.published())
}
