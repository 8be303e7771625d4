package finance

import (
	"math"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// Project grows rent and expenses over holdPeriodYears and values the
// property at exit, then evaluates keeping it, refinancing it and selling it.
// The three dispositions share the same future NOI and sale price.
func (e *Engine) Project(base models.PropertyFinancials, holdPeriodYears int, g models.GrowthAssumptions) models.ExitScenarios {
	years := holdPeriodYears
	if years < 0 {
		years = 0
	}
	baseline := e.ComputeMetrics(base)

	out := models.ExitScenarios{HoldPeriodYears: years}
	out.FutureGrossIncome = base.GrossRentalIncome * math.Pow(1+g.AnnualRentGrowth, float64(years))
	out.FutureExpenses = base.OperatingExpenses * math.Pow(1+g.AnnualExpenseGrowth, float64(years))
	out.FutureNOI = NOI(out.FutureGrossIncome, base.VacancyRate, base.OtherIncome, out.FutureExpenses)

	out.ExitCapRate = base.ExitCapRate
	if out.ExitCapRate <= 0 {
		out.ExitCapRate = base.MarketCapRate
	}
	out.ProjectedSalePrice = ratio(out.FutureNOI, out.ExitCapRate)

	cumulativeCashFlow := baseline.AnnualCashFlow * float64(years)
	capital := baseline.InitialCapitalRequired

	// sale
	s := &out.Sale
	s.ProjectedSalePrice = out.ProjectedSalePrice
	s.SaleCosts = out.ProjectedSalePrice * g.SaleCostsPercent
	s.NetSaleProceeds = s.ProjectedSalePrice - s.SaleCosts - base.LoanAmount
	s.TotalReturn = s.NetSaleProceeds + cumulativeCashFlow
	s.EquityMultiple = ratio(s.NetSaleProceeds, capital)
	s.AnnualizedReturn = ApproximateAnnualizedReturn(s.TotalReturn, capital, years)

	// refinance
	rf := &out.Refinance
	rf.RefinanceLTV = base.RefinanceLTV
	if rf.RefinanceLTV <= 0 {
		rf.RefinanceLTV = e.a.DefaultRefinanceLTV
	}
	rf.RefinanceRate = base.RefinanceRate
	if rf.RefinanceRate <= 0 {
		rf.RefinanceRate = e.a.DefaultRefinanceRate
	}
	rf.RefinanceAmount = out.ProjectedSalePrice * rf.RefinanceLTV
	rf.CashOutAmount = rf.RefinanceAmount - base.LoanAmount
	rf.AnnualDebtService = Payment(rf.RefinanceAmount, rf.RefinanceRate, e.a.DefaultRefinanceTermYears, models.PrincipalAndInterest) * 12
	rf.AnnualCashFlow = out.FutureNOI - rf.AnnualDebtService
	rf.DSCR = ratio(out.FutureNOI, rf.AnnualDebtService)
	rf.RemainingCapital = capital - rf.CashOutAmount
	rf.TotalReturn = rf.CashOutAmount + cumulativeCashFlow
	rf.EquityMultiple = ratio(out.ProjectedSalePrice-rf.RefinanceAmount, rf.RemainingCapital)

	// hold, existing loan serviced interest-only
	h := &out.Hold
	h.FutureNOI = out.FutureNOI
	h.AnnualDebtService = Payment(base.LoanAmount, base.InterestRate, 0, models.InterestOnly) * 12
	h.AnnualCashFlow = out.FutureNOI - h.AnnualDebtService
	h.Equity = Equity(out.ProjectedSalePrice, base.LoanAmount)
	h.TotalReturn = h.Equity + cumulativeCashFlow
	h.EquityMultiple = ratio(h.Equity, capital)
	return out
}

// ProjectDeal projects the flattened deal. The deal's own rent growth wins
// over g when the deal has one; the hold period falls back to the deal's.
func (e *Engine) ProjectDeal(d models.Deal, holdPeriodYears int, g models.GrowthAssumptions) models.ExitScenarios {
	return e.ProjectDealAtRate(d, holdPeriodYears, g, 0)
}

// ProjectDealAtRate is ProjectDeal with the refinance rate fixed; a
// refinanceRate of 0 keeps the default.
func (e *Engine) ProjectDealAtRate(d models.Deal, holdPeriodYears int, g models.GrowthAssumptions, refinanceRate float64) models.ExitScenarios {
	if holdPeriodYears <= 0 {
		holdPeriodYears = d.HoldPeriodYears
	}
	if d.AnnualRentGrowth != 0 {
		g.AnnualRentGrowth = d.AnnualRentGrowth
	}
	base := DealFinancials(d)
	base.RefinanceRate = refinanceRate
	return e.Project(base, holdPeriodYears, g)
}
