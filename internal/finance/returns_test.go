package finance

import (
	"sync"
	"testing"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProperty() models.PropertyFinancials {
	return models.PropertyFinancials{
		PurchasePrice:     500000,
		RehabCosts:        100000,
		ClosingCosts:      20000,
		HoldingCosts:      10000,
		GrossRentalIncome: 120000,
		VacancyRate:       0.05,
		OtherIncome:       5000,
		OperatingExpenses: 40000,
		LoanAmount:        400000,
		InterestRate:      0.065,
		LoanTermYears:     30,
		PaymentType:       models.PrincipalAndInterest,
		MarketCapRate:     0.065,
	}
}

func TestComputeMetrics_LeveragedScenario(t *testing.T) {
	e := NewEngine(DefaultAssumptions())
	m := e.ComputeMetrics(sampleProperty())

	assert.Equal(t, 630000.0, m.AllInCost)
	assert.InDelta(t, 119000, m.EffectiveGrossIncome, 1e-9)
	assert.InDelta(t, 79000, m.NetOperatingIncome, 1e-9)
	assert.InDelta(t, 1215384.62, m.ARV, 0.01)
	assert.InDelta(t, 2528.27, m.MonthlyDebtService, 0.01)
	assert.InDelta(t, 30339.27, m.AnnualDebtService, 0.1)
	assert.InDelta(t, 48660.73, m.AnnualCashFlow, 0.1)
	assert.Equal(t, 230000.0, m.InitialCapitalRequired)
	assert.InDelta(t, 0.2116, m.CashOnCashReturn, 0.0001)
	assert.InDelta(t, (m.ARV-(630000-230000))/230000, m.EquityMultiple, 1e-12)
	assert.InDelta(t, 3.545, m.EquityMultiple, 0.001)
	assert.InDelta(t, 79000/m.AnnualDebtService, m.DSCR, 1e-12)
	assert.InDelta(t, 79000.0/500000, m.CapRate, 1e-12)
	assert.InDelta(t, m.ARV-400000, m.CurrentEquity, 1e-9)
	assert.InDelta(t, 400000/m.ARV, m.LoanToValue, 1e-12)
	assert.InDelta(t, 400000.0/630000, m.LoanToCost, 1e-12)
	assert.InDelta(t, (40000+m.AnnualDebtService)/120000, m.BreakEvenOccupancy, 1e-12)
	assert.InDelta(t, 40000.0/119000, m.OperatingExpenseRatio, 1e-12)
	assert.InDelta(t, m.CurrentEquity+m.AnnualCashFlow, m.TotalReturn, 1e-9)
	assert.InDelta(t, m.TotalReturn/230000-1, m.AnnualizedReturn, 1e-9)

	assert.False(t, m.DSCRWarning)
	assert.False(t, m.OccupancyRisk)
	assert.False(t, m.IsSpeculative)
}

func TestComputeMetrics_NoLoan(t *testing.T) {
	p := sampleProperty()
	p.LoanAmount = 0
	m := NewEngine(DefaultAssumptions()).ComputeMetrics(p)

	assert.Equal(t, 0.0, m.AnnualDebtService)
	assert.InDelta(t, 79000, m.AnnualCashFlow, 1e-9)
	assert.Equal(t, m.AllInCost, m.InitialCapitalRequired)
	assert.InDelta(t, 79000.0/630000, m.CashOnCashReturn, 1e-12)
	assert.Equal(t, 0.0, m.DSCR)
	assert.False(t, m.DSCRWarning, "an unlevered property has no coverage to warn about")
	assert.Equal(t, 0.0, m.LoanToValue)
}

func TestComputeMetrics_ZeroGuards(t *testing.T) {
	e := NewEngine(DefaultAssumptions())

	t.Run("no cap rate", func(t *testing.T) {
		p := sampleProperty()
		p.MarketCapRate = 0
		m := e.ComputeMetrics(p)
		assert.Equal(t, 0.0, m.ARV)
		assert.Equal(t, 0.0, m.LoanToValue)
	})

	t.Run("fully financed", func(t *testing.T) {
		p := sampleProperty()
		p.LoanAmount = 630000
		m := e.ComputeMetrics(p)
		assert.Equal(t, 0.0, m.InitialCapitalRequired)
		assert.Equal(t, 0.0, m.CashOnCashReturn)
		assert.Equal(t, 0.0, m.EquityMultiple)
		assert.Equal(t, 0.0, m.AnnualizedReturn)
	})

	t.Run("over financed", func(t *testing.T) {
		p := sampleProperty()
		p.LoanAmount = 700000
		m := e.ComputeMetrics(p)
		assert.Less(t, m.InitialCapitalRequired, 0.0)
		assert.Equal(t, 0.0, m.CashOnCashReturn)
		assert.Equal(t, 0.0, m.EquityMultiple)
	})

	t.Run("no rent", func(t *testing.T) {
		p := sampleProperty()
		p.GrossRentalIncome = 0
		p.OtherIncome = 0
		m := e.ComputeMetrics(p)
		assert.Equal(t, 0.0, m.BreakEvenOccupancy)
		assert.Equal(t, 0.0, m.OperatingExpenseRatio)
	})

	t.Run("empty snapshot", func(t *testing.T) {
		m := e.ComputeMetrics(models.PropertyFinancials{})
		assert.Equal(t, models.CalculatedMetrics{}, m)
	})
}

func TestComputeMetrics_ARVIdentity(t *testing.T) {
	e := NewEngine(DefaultAssumptions())
	for _, capRate := range []float64{0.03, 0.045, 0.065, 0.08, 0.12} {
		for _, rent := range []float64{0, 50000, 120000, 333333.33} {
			p := sampleProperty()
			p.MarketCapRate = capRate
			p.GrossRentalIncome = rent
			m := e.ComputeMetrics(p)
			assert.Equal(t, m.NetOperatingIncome/capRate, m.ARV)
		}
	}
}

func TestComputeMetrics_RentMonotonic(t *testing.T) {
	e := NewEngine(DefaultAssumptions())
	p := sampleProperty()
	prev := e.ComputeMetrics(p)
	for i := 0; i < 20; i++ {
		p.GrossRentalIncome += 7500
		m := e.ComputeMetrics(p)
		assert.GreaterOrEqual(t, m.NetOperatingIncome, prev.NetOperatingIncome)
		assert.GreaterOrEqual(t, m.CashOnCashReturn, prev.CashOnCashReturn)
		assert.GreaterOrEqual(t, m.ARV, prev.ARV)
		prev = m
	}
}

func TestComputeMetrics_RiskFlags(t *testing.T) {
	e := NewEngine(DefaultAssumptions())

	p := sampleProperty()
	p.OperatingExpenses = 90000
	m := e.ComputeMetrics(p)
	assert.True(t, m.DSCRWarning, "dscr %f", m.DSCR)
	assert.True(t, m.OccupancyRisk, "break-even %f", m.BreakEvenOccupancy)

	p = sampleProperty()
	p.ExitCapRate = 0.055
	assert.True(t, e.ComputeMetrics(p).IsSpeculative)
	p.ExitCapRate = 0.07
	assert.False(t, e.ComputeMetrics(p).IsSpeculative)
}

func TestComputeMetrics_CustomThresholds(t *testing.T) {
	e := NewEngine(Assumptions{DSCRWarningThreshold: 3, OccupancyRiskThreshold: 0.5})
	m := e.ComputeMetrics(sampleProperty())
	assert.True(t, m.DSCRWarning)
	assert.True(t, m.OccupancyRisk)

	// unset values keep their defaults
	assert.Equal(t, 0.75, e.Assumptions().DefaultRefinanceLTV)
}

func TestApproximateAnnualizedReturn(t *testing.T) {
	assert.InDelta(t, 0.5, ApproximateAnnualizedReturn(150, 100, 1), 1e-12)
	assert.InDelta(t, 0.1, ApproximateAnnualizedReturn(121, 100, 2), 1e-12)
	assert.Equal(t, 0.0, ApproximateAnnualizedReturn(121, 0, 2))
	assert.Equal(t, 0.0, ApproximateAnnualizedReturn(121, 100, 0))
	assert.Equal(t, -1.0, ApproximateAnnualizedReturn(-5, 100, 3))
}

func sampleDeal() models.Deal {
	return models.Deal{
		ID:                         7,
		PurchasePrice:              1000000,
		Units:                      4,
		VacancyRate:                0.05,
		BadDebtRate:                0.01,
		CapexReservePerUnit:        300,
		OperatingReserveMonths:     6,
		StartToStabilizationMonths: 6,
		RefinanceLTV:               0.7,
		MarketCapRate:              0.06,
		ExitCapRate:                0.065,
		AnnualRentGrowth:           0.03,
		RehabItems:                 []models.RehabItem{{TotalCost: 50000}, {TotalCost: 30000}},
		UnitRecords: []models.Unit{
			{ID: 1, IsOccupied: true, CurrentRent: 2000, MarketRent: 2300},
			{ID: 2, IsOccupied: true, CurrentRent: 2100, MarketRent: 2300},
			{ID: 3, IsOccupied: false, CurrentRent: 0, MarketRent: 2200},
			{ID: 4, IsOccupied: true, CurrentRent: 1900, MarketRent: 2300},
		},
		ExpenseItems: []models.ExpenseItem{
			{Name: "taxes", MonthlyAmount: 1000},
			{Name: "management", IsPercentOfRent: true, Percentage: 0.08, MonthlyAmount: 999},
		},
		ClosingCostItems: []models.ClosingCostItem{{Amount: 20000}},
		HoldingCostItems: []models.HoldingCostItem{{MonthlyAmount: 2000}},
		Loans: []models.Loan{
			{ID: 1, LoanType: models.LoanAcquisition, LoanAmount: 750000, InterestRate: 0.07, AmortizationYears: 30},
			{ID: 2, LoanType: models.LoanRefinance, LoanAmount: 800000, InterestRate: 0.065, AmortizationYears: 30, IOMonths: 12, IsActive: true},
		},
		OtherIncomeItems: []models.OtherIncomeItem{{Name: "laundry", MonthlyAmount: 100}},
	}
}

func TestComputeKPIs(t *testing.T) {
	k := NewEngine(DefaultAssumptions()).ComputeKPIs(sampleDeal())

	assert.Equal(t, 80000.0, k.TotalRehab)
	assert.Equal(t, 20000.0, k.TotalClosingCosts)
	assert.Equal(t, 12000.0, k.TotalHoldingCosts)
	assert.Equal(t, 1112000.0, k.AllInCost)

	assert.InDelta(t, 98400, k.GrossRentalIncome, 1e-9)
	assert.InDelta(t, 4920, k.VacancyLoss, 1e-9)
	assert.InDelta(t, 984, k.BadDebtLoss, 1e-9)
	assert.InDelta(t, 1200, k.OtherIncome, 1e-9)
	assert.InDelta(t, 93696, k.EffectiveGrossIncome, 1e-9)
	assert.InDelta(t, 1200, k.CapexReserve, 1e-9)
	assert.InDelta(t, 21072, k.OperatingExpenses, 1e-9)
	assert.InDelta(t, 72624, k.NetOperatingIncome, 1e-9)
	assert.InDelta(t, 1210400, k.ARV, 1e-6)

	assert.Equal(t, int64(2), k.ActiveLoanID)
	assert.Equal(t, 800000.0, k.LoanAmount)
	assert.InDelta(t, 52000, k.AnnualDebtService, 1e-6)
	assert.Equal(t, 312000.0, k.CapitalRequired)
	assert.InDelta(t, 20624, k.AnnualCashFlow, 1e-6)
	assert.InDelta(t, 72624.0/52000, k.DSCR, 1e-12)
	assert.InDelta(t, 20624.0/312000, k.CashOnCashReturn, 1e-9)
	assert.InDelta(t, 0.072624, k.CapRate, 1e-12)
	assert.InDelta(t, (1210400.0-800000)/312000, k.EquityMultiple, 1e-9)
	assert.InDelta(t, 2050, k.AverageRentPerUnit, 1e-9)
	assert.InDelta(t, (21072+52000)/98400.0, k.BreakEvenOccupancy, 1e-9)
	assert.InDelta(t, 36536, k.OperatingReserve, 1e-6)

	assert.InDelta(t, 847280, k.NewLoanAmount, 1e-6)
	assert.InDelta(t, 47280, k.CashOut, 1e-6)
	assert.InDelta(t, k.TotalReturn-k.CapitalRequired, k.TotalProfit, 1e-9)
	assert.InDelta(t, k.TotalReturn/k.CapitalRequired-1, k.ApproximateAnnualizedReturn, 1e-9)

	assert.False(t, k.DSCRWarning)
	assert.False(t, k.OccupancyRisk)
	assert.False(t, k.IsSpeculative)
}

func TestComputeKPIs_NoLoans(t *testing.T) {
	d := sampleDeal()
	d.Loans = nil
	k := NewEngine(DefaultAssumptions()).ComputeKPIs(d)

	assert.Equal(t, int64(0), k.ActiveLoanID)
	assert.Equal(t, 0.0, k.AnnualDebtService)
	assert.Equal(t, 0.0, k.DSCR)
	assert.Equal(t, k.AllInCost, k.CapitalRequired)
	assert.InDelta(t, k.NetOperatingIncome, k.AnnualCashFlow, 1e-9)
	assert.False(t, k.DSCRWarning, "no debt service, no coverage warning")
}

func TestComputeKPIs_BreakEvenUsesDeclaredUnits(t *testing.T) {
	d := sampleDeal()
	d.Units = 8 // four more units than the rent roll lists
	k := NewEngine(DefaultAssumptions()).ComputeKPIs(d)
	assert.InDelta(t, (k.OperatingExpenses+k.AnnualDebtService)/(2050*8*12), k.BreakEvenOccupancy, 1e-12)
}

func TestComputeKPIs_MultiYearHold(t *testing.T) {
	d := sampleDeal()
	d.HoldPeriodYears = 5
	k := NewEngine(DefaultAssumptions()).ComputeKPIs(d)

	assert.InDelta(t, k.CurrentEquity+5*k.AnnualCashFlow, k.TotalReturn, 1e-6)
	assert.InDelta(t, (k.TotalReturn-k.CapitalRequired)/k.CapitalRequired/5, k.AnnualizedReturn, 1e-12)
	assert.InDelta(t, ApproximateAnnualizedReturn(k.TotalReturn, k.CapitalRequired, 5), k.ApproximateAnnualizedReturn, 1e-12)
}

func TestComputeKPIs_DoesNotMutateInput(t *testing.T) {
	d := sampleDeal()
	before := sampleDeal()
	NewEngine(DefaultAssumptions()).ComputeKPIs(d)
	assert.Equal(t, before, d)
}

func TestComputeKPIs_Concurrent(t *testing.T) {
	e := NewEngine(DefaultAssumptions())
	d := sampleDeal()
	want := e.ComputeKPIs(d)

	var wg sync.WaitGroup
	results := make([]models.DealKPIs, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.ComputeKPIs(d)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestDealFinancials_AgreesWithKPIs(t *testing.T) {
	e := NewEngine(DefaultAssumptions())
	d := sampleDeal()
	k := e.ComputeKPIs(d)
	m := e.ComputeMetrics(DealFinancials(d))

	assert.InDelta(t, k.AllInCost, m.AllInCost, 1e-9)
	assert.InDelta(t, k.EffectiveGrossIncome, m.EffectiveGrossIncome, 1e-6)
	assert.InDelta(t, k.NetOperatingIncome, m.NetOperatingIncome, 1e-6)
	assert.InDelta(t, k.ARV, m.ARV, 1e-6)
	assert.InDelta(t, k.AnnualDebtService, m.AnnualDebtService, 1e-9)
	assert.InDelta(t, k.CapRate, m.CapRate, 1e-12)
	assert.InDelta(t, k.CashOnCashReturn, m.CashOnCashReturn, 1e-9)
}

func TestDealFinancials_BreakEvenBasis(t *testing.T) {
	e := NewEngine(DefaultAssumptions())
	d := sampleDeal()
	k := e.ComputeKPIs(d)
	m := e.ComputeMetrics(DealFinancials(d))
	// the rent roll covers every declared unit, so both bases agree
	assert.InDelta(t, k.BreakEvenOccupancy, m.BreakEvenOccupancy, 1e-12)

	d.Units = 8
	k = e.ComputeKPIs(d)
	m = e.ComputeMetrics(DealFinancials(d))
	assert.InDelta(t, 2*k.BreakEvenOccupancy, m.BreakEvenOccupancy, 1e-12)
}
