package finance

import "github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"

// AllInCost is the total project cost
func AllInCost(purchasePrice, rehabCosts, closingCosts, holdingCosts float64) float64 {
	return purchasePrice + rehabCosts + closingCosts + holdingCosts
}

// EffectiveGrossIncome is rent net of vacancy plus other income
func EffectiveGrossIncome(grossRentalIncome, vacancyRate, otherIncome float64) float64 {
	return grossRentalIncome*(1-vacancyRate) + otherIncome
}

// NOI is effective gross income minus operating expenses
func NOI(grossRentalIncome, vacancyRate, otherIncome, operatingExpenses float64) float64 {
	return EffectiveGrossIncome(grossRentalIncome, vacancyRate, otherIncome) - operatingExpenses
}

// GrossRentFromUnits annualizes the rent roll: occupied units at current rent,
// vacant units at market rent.
func GrossRentFromUnits(units []models.Unit) float64 {
	var total float64
	for _, u := range units {
		if u.IsOccupied {
			total += u.CurrentRent * 12
		} else {
			total += u.MarketRent * 12
		}
	}
	return total
}

// AnnualExpenses totals itemized operating expenses for a year
func AnnualExpenses(items []models.ExpenseItem, grossRentalIncome float64) float64 {
	var total float64
	for _, it := range items {
		if it.IsPercentOfRent {
			total += grossRentalIncome * it.Percentage
		} else {
			total += it.MonthlyAmount * 12
		}
	}
	return total
}

// dealIncome is the income statement of a deal for one stabilized year
type dealIncome struct {
	gross        float64
	vacancyLoss  float64
	badDebtLoss  float64
	otherIncome  float64
	egi          float64
	capexReserve float64
	opex         float64 // includes capexReserve
	noi          float64
}

func incomeOf(d *models.Deal) dealIncome {
	var in dealIncome
	in.gross = GrossRentFromUnits(d.UnitRecords)
	in.vacancyLoss = in.gross * d.VacancyRate
	in.badDebtLoss = in.gross * d.BadDebtRate
	for _, o := range d.OtherIncomeItems {
		in.otherIncome += o.MonthlyAmount * 12
	}
	in.egi = in.gross - in.vacancyLoss - in.badDebtLoss + in.otherIncome
	in.capexReserve = d.CapexReservePerUnit * float64(d.Units)
	in.opex = AnnualExpenses(d.ExpenseItems, in.gross) + in.capexReserve
	in.noi = in.egi - in.opex
	return in
}
