package finance

import "github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"

// DealFinancials flattens a deal into a PropertyFinancials snapshot so the
// sensitivity and exit models can run on it. Itemized costs are summed, bad
// debt is folded into the vacancy rate, the capex reserve into operating
// expenses, and the active loan becomes the property's loan. Percent-of-rent
// expenses are frozen at their current amount. Break-even occupancy of the
// flattened record is measured against rent roll income, while ComputeKPIs
// uses averageRentPerUnit x units; the two differ when the declared unit
// count differs from the rent roll length.
func DealFinancials(d models.Deal) models.PropertyFinancials {
	in := incomeOf(&d)
	p := models.PropertyFinancials{
		ID:                d.ID,
		OwnerID:           d.OwnerID,
		Name:              d.Name,
		PurchasePrice:     d.PurchasePrice,
		GrossRentalIncome: in.gross,
		VacancyRate:       d.VacancyRate + d.BadDebtRate,
		OtherIncome:       in.otherIncome,
		OperatingExpenses: in.opex,
		MarketCapRate:     d.MarketCapRate,
		ExitCapRate:       d.ExitCapRate,
		RefinanceLTV:      d.RefinanceLTV,
		PaymentType:       models.PrincipalAndInterest,
	}
	for _, it := range d.RehabItems {
		p.RehabCosts += it.TotalCost
	}
	for _, it := range d.ClosingCostItems {
		p.ClosingCosts += it.Amount
	}
	for _, it := range d.HoldingCostItems {
		p.HoldingCosts += it.MonthlyAmount * float64(d.StartToStabilizationMonths)
	}
	if loan, ok := SelectActiveLoan(d.Loans); ok {
		p.LoanAmount = loan.LoanAmount
		p.InterestRate = loan.InterestRate
		p.LoanTermYears = loan.AmortizationYears
		if loan.IOMonths > 0 {
			p.PaymentType = models.InterestOnly
		}
	}
	return p
}
