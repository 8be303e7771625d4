package finance

import (
	"math"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// returnInputs are the upstream results the return ratios are built from
type returnInputs struct {
	noi               float64
	arv               float64
	allInCost         float64
	capital           float64
	annualDebtService float64
	loanAmount        float64
	purchasePrice     float64
	operatingExpenses float64
	egi               float64
	breakEvenBasis    float64 // annual rent the break-even occupancy is measured against
	marketCapRate     float64
	exitCapRate       float64
	holdYears         int
}

type returnMetrics struct {
	annualCashFlow     float64
	capRate            float64
	cashOnCash         float64
	equityMultiple     float64
	dscr               float64
	equity             float64
	ltv                float64
	ltc                float64
	breakEvenOccupancy float64
	opexRatio          float64
	totalReturn        float64
	simpleAnnualized   float64
	approxAnnualized   float64
	dscrWarning        bool
	occupancyRisk      bool
	speculative        bool
}

func (e *Engine) returns(in returnInputs) returnMetrics {
	var r returnMetrics
	r.annualCashFlow = in.noi - in.annualDebtService
	r.capRate = ratio(in.noi, in.purchasePrice)
	r.cashOnCash = ratio(r.annualCashFlow, in.capital)
	r.equityMultiple = ratio(in.arv-(in.allInCost-in.capital), in.capital)
	r.dscr = ratio(in.noi, in.annualDebtService)
	r.equity = Equity(in.arv, in.loanAmount)
	r.ltv = LoanToValue(in.loanAmount, in.arv)
	r.ltc = LoanToCost(in.loanAmount, in.allInCost)
	r.breakEvenOccupancy = ratio(in.operatingExpenses+in.annualDebtService, in.breakEvenBasis)
	r.opexRatio = ratio(in.operatingExpenses, in.egi)

	years := in.holdYears
	if years <= 0 {
		years = 1
	}
	r.totalReturn = r.equity + r.annualCashFlow*float64(years)
	r.simpleAnnualized = ratio(r.totalReturn-in.capital, in.capital) / float64(years)
	r.approxAnnualized = ApproximateAnnualizedReturn(r.totalReturn, in.capital, years)

	// no debt means nothing to cover
	r.dscrWarning = in.annualDebtService > 0 && r.dscr < e.a.DSCRWarningThreshold
	r.occupancyRisk = r.breakEvenOccupancy > e.a.OccupancyRiskThreshold
	r.speculative = in.exitCapRate > 0 && in.exitCapRate < in.marketCapRate
	return r
}

// ApproximateAnnualizedReturn is the single-period geometric return
// (totalReturn/capital)^(1/years) - 1. It ignores the timing of interim cash
// flows and is not an internal rate of return. It is 0 without capital or
// years, and -1 when nothing is returned.
func ApproximateAnnualizedReturn(totalReturn, capital float64, years int) float64 {
	if capital <= 0 || years <= 0 {
		return 0
	}
	if totalReturn <= 0 {
		return -1
	}
	return math.Pow(totalReturn/capital, 1/float64(years)) - 1
}

// ComputeMetrics evaluates a flat property snapshot over a one-year horizon
func (e *Engine) ComputeMetrics(p models.PropertyFinancials) models.CalculatedMetrics {
	allIn := AllInCost(p.PurchasePrice, p.RehabCosts, p.ClosingCosts, p.HoldingCosts)
	egi := EffectiveGrossIncome(p.GrossRentalIncome, p.VacancyRate, p.OtherIncome)
	noi := egi - p.OperatingExpenses
	arv := ARV(noi, p.MarketCapRate)
	monthly := Payment(p.LoanAmount, p.InterestRate, p.LoanTermYears, p.PaymentType)
	annualDebt := monthly * 12
	capital := allIn - p.LoanAmount

	r := e.returns(returnInputs{
		noi:               noi,
		arv:               arv,
		allInCost:         allIn,
		capital:           capital,
		annualDebtService: annualDebt,
		loanAmount:        p.LoanAmount,
		purchasePrice:     p.PurchasePrice,
		operatingExpenses: p.OperatingExpenses,
		egi:               egi,
		breakEvenBasis:    p.GrossRentalIncome,
		marketCapRate:     p.MarketCapRate,
		exitCapRate:       p.ExitCapRate,
		holdYears:         1,
	})

	return models.CalculatedMetrics{
		AllInCost:              allIn,
		GrossRentalIncome:      p.GrossRentalIncome,
		EffectiveGrossIncome:   egi,
		OperatingExpenses:      p.OperatingExpenses,
		NetOperatingIncome:     noi,
		ARV:                    arv,
		InitialCapitalRequired: capital,
		MonthlyDebtService:     monthly,
		AnnualDebtService:      annualDebt,
		AnnualCashFlow:         r.annualCashFlow,
		CapRate:                r.capRate,
		CashOnCashReturn:       r.cashOnCash,
		EquityMultiple:         r.equityMultiple,
		DSCR:                   r.dscr,
		CurrentEquity:          r.equity,
		LoanToValue:            r.ltv,
		LoanToCost:             r.ltc,
		BreakEvenOccupancy:     r.breakEvenOccupancy,
		OperatingExpenseRatio:  r.opexRatio,
		TotalReturn:            r.totalReturn,
		AnnualizedReturn:       r.approxAnnualized,
		DSCRWarning:            r.dscrWarning,
		OccupancyRisk:          r.occupancyRisk,
		IsSpeculative:          r.speculative,
	}
}

// ComputeKPIs evaluates a deal with its rent roll, itemized costs and active loan
func (e *Engine) ComputeKPIs(d models.Deal) models.DealKPIs {
	var k models.DealKPIs
	for _, it := range d.RehabItems {
		k.TotalRehab += it.TotalCost
	}
	for _, it := range d.ClosingCostItems {
		k.TotalClosingCosts += it.Amount
	}
	for _, it := range d.HoldingCostItems {
		k.TotalHoldingCosts += it.MonthlyAmount * float64(d.StartToStabilizationMonths)
	}
	k.AllInCost = AllInCost(d.PurchasePrice, k.TotalRehab, k.TotalClosingCosts, k.TotalHoldingCosts)

	in := incomeOf(&d)
	k.GrossRentalIncome = in.gross
	k.VacancyLoss = in.vacancyLoss
	k.BadDebtLoss = in.badDebtLoss
	k.OtherIncome = in.otherIncome
	k.EffectiveGrossIncome = in.egi
	k.OperatingExpenses = in.opex
	k.CapexReserve = in.capexReserve
	k.NetOperatingIncome = in.noi
	k.ARV = ARV(in.noi, d.MarketCapRate)

	if loan, ok := SelectActiveLoan(d.Loans); ok {
		k.ActiveLoanID = loan.ID
		k.LoanAmount = loan.LoanAmount
		k.MonthlyDebtService = LoanPayment(loan)
	}
	k.AnnualDebtService = k.MonthlyDebtService * 12
	k.CapitalRequired = k.AllInCost - k.LoanAmount
	k.OperatingReserve = (k.OperatingExpenses + k.AnnualDebtService) / 12 * float64(d.OperatingReserveMonths)

	if len(d.UnitRecords) > 0 {
		k.AverageRentPerUnit = in.gross / 12 / float64(len(d.UnitRecords))
	}

	r := e.returns(returnInputs{
		noi:               in.noi,
		arv:               k.ARV,
		allInCost:         k.AllInCost,
		capital:           k.CapitalRequired,
		annualDebtService: k.AnnualDebtService,
		loanAmount:        k.LoanAmount,
		purchasePrice:     d.PurchasePrice,
		operatingExpenses: in.opex,
		egi:               in.egi,
		breakEvenBasis:    k.AverageRentPerUnit * float64(d.Units) * 12,
		marketCapRate:     d.MarketCapRate,
		exitCapRate:       d.ExitCapRate,
		holdYears:         d.HoldPeriodYears,
	})
	k.AnnualCashFlow = r.annualCashFlow
	k.CapRate = r.capRate
	k.CashOnCashReturn = r.cashOnCash
	k.EquityMultiple = r.equityMultiple
	k.DSCR = r.dscr
	k.CurrentEquity = r.equity
	k.LoanToValue = r.ltv
	k.LoanToCost = r.ltc
	k.BreakEvenOccupancy = r.breakEvenOccupancy
	k.OperatingExpenseRatio = r.opexRatio
	k.TotalReturn = r.totalReturn
	k.TotalProfit = r.totalReturn - k.CapitalRequired
	k.AnnualizedReturn = r.simpleAnnualized
	k.ApproximateAnnualizedReturn = r.approxAnnualized
	k.DSCRWarning = r.dscrWarning
	k.OccupancyRisk = r.occupancyRisk
	k.IsSpeculative = r.speculative

	refiLTV := d.RefinanceLTV
	if refiLTV <= 0 {
		refiLTV = e.a.DefaultRefinanceLTV
	}
	k.NewLoanAmount = math.Max(k.ARV*refiLTV, 0)
	k.CashOut = k.NewLoanAmount - k.LoanAmount
	return k
}
