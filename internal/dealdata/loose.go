package dealdata

import (
	"strings"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

type looseAssumptions struct {
	VacancyRate                rate   `json:"vacancyRate"`
	BadDebtRate                rate   `json:"badDebtRate"`
	CapexReservePerUnit        number `json:"capexReservePerUnit"`
	OperatingReserveMonths     number `json:"operatingReserveMonths"`
	StartToStabilizationMonths number `json:"startToStabilizationMonths"`
	LoanPercentage             rate   `json:"loanPercentage"`
	RefinanceLTV               rate   `json:"refinanceLTV"`
	MarketCapRate              rate   `json:"marketCapRate"`
	ExitCapRate                rate   `json:"exitCapRate"`
	AnnualRentGrowth           rate   `json:"annualRentGrowth"`
	HoldPeriodYears            number `json:"holdPeriodYears"`
}

type looseDeal struct {
	Name          string           `json:"name"`
	PurchasePrice number           `json:"purchasePrice"`
	Units         number           `json:"units"`
	Assumptions   looseAssumptions `json:"assumptions"`
	RehabBudget   []struct {
		Category  string `json:"category"`
		TotalCost number `json:"totalCost"`
	} `json:"rehabBudget"`
	RentRoll []struct {
		UnitNumber  string `json:"unitNumber"`
		IsOccupied  flag   `json:"isOccupied"`
		CurrentRent number `json:"currentRent"`
		MarketRent  number `json:"marketRent"`
	} `json:"rentRoll"`
	Expenses []struct {
		Name            string `json:"name"`
		MonthlyAmount   number `json:"monthlyAmount"`
		IsPercentOfRent flag   `json:"isPercentOfRent"`
		Percentage      rate   `json:"percentage"`
	} `json:"expenses"`
	ClosingCosts []struct {
		Name   string `json:"name"`
		Amount number `json:"amount"`
	} `json:"closingCosts"`
	HoldingCosts []struct {
		Name          string `json:"name"`
		MonthlyAmount number `json:"monthlyAmount"`
	} `json:"holdingCosts"`
	Loans []struct {
		LoanType          string `json:"loanType"`
		LoanAmount        number `json:"loanAmount"`
		InterestRate      rate   `json:"interestRate"`
		AmortizationYears number `json:"amortizationYears"`
		IOMonths          number `json:"ioMonths"`
		IsActive          flag   `json:"isActive"`
	} `json:"loans"`
	OtherIncome []struct {
		Name          string `json:"name"`
		MonthlyAmount number `json:"monthlyAmount"`
	} `json:"otherIncome"`
}

func (v *looseDeal) toDeal() *models.Deal {
	a := v.Assumptions
	d := &models.Deal{
		Name:                       v.Name,
		PurchasePrice:              float64(v.PurchasePrice),
		Units:                      int(v.Units),
		VacancyRate:                float64(a.VacancyRate),
		BadDebtRate:                float64(a.BadDebtRate),
		CapexReservePerUnit:        float64(a.CapexReservePerUnit),
		OperatingReserveMonths:     int(a.OperatingReserveMonths),
		StartToStabilizationMonths: int(a.StartToStabilizationMonths),
		LoanPercentage:             float64(a.LoanPercentage),
		RefinanceLTV:               float64(a.RefinanceLTV),
		MarketCapRate:              float64(a.MarketCapRate),
		ExitCapRate:                float64(a.ExitCapRate),
		AnnualRentGrowth:           float64(a.AnnualRentGrowth),
		HoldPeriodYears:            int(a.HoldPeriodYears),
	}
	for _, it := range v.RehabBudget {
		d.RehabItems = append(d.RehabItems, models.RehabItem{Category: it.Category, TotalCost: float64(it.TotalCost)})
	}
	for _, u := range v.RentRoll {
		d.UnitRecords = append(d.UnitRecords, models.Unit{
			UnitNumber:  u.UnitNumber,
			IsOccupied:  bool(u.IsOccupied),
			CurrentRent: float64(u.CurrentRent),
			MarketRent:  float64(u.MarketRent),
		})
	}
	if d.Units == 0 {
		d.Units = len(d.UnitRecords)
	}
	for _, e := range v.Expenses {
		d.ExpenseItems = append(d.ExpenseItems, models.ExpenseItem{
			Name:            e.Name,
			MonthlyAmount:   float64(e.MonthlyAmount),
			IsPercentOfRent: bool(e.IsPercentOfRent),
			Percentage:      float64(e.Percentage),
		})
	}
	for _, c := range v.ClosingCosts {
		d.ClosingCostItems = append(d.ClosingCostItems, models.ClosingCostItem{Name: c.Name, Amount: float64(c.Amount)})
	}
	for _, h := range v.HoldingCosts {
		d.HoldingCostItems = append(d.HoldingCostItems, models.HoldingCostItem{Name: h.Name, MonthlyAmount: float64(h.MonthlyAmount)})
	}
	for _, l := range v.Loans {
		d.Loans = append(d.Loans, models.Loan{
			LoanType:          loanType(l.LoanType),
			LoanAmount:        float64(l.LoanAmount),
			InterestRate:      float64(l.InterestRate),
			AmortizationYears: int(l.AmortizationYears),
			IOMonths:          int(l.IOMonths),
			IsActive:          bool(l.IsActive),
		})
	}
	for _, o := range v.OtherIncome {
		d.OtherIncomeItems = append(d.OtherIncomeItems, models.OtherIncomeItem{Name: o.Name, MonthlyAmount: float64(o.MonthlyAmount)})
	}
	return d
}

// basicProperty is the reduced set of flat fields older blobs always carried
type basicProperty struct {
	Name              string           `json:"name"`
	PurchasePrice     number           `json:"purchasePrice"`
	RehabCosts        number           `json:"rehabCosts"`
	ClosingCosts      number           `json:"closingCosts"`
	HoldingCosts      number           `json:"holdingCosts"`
	GrossRentalIncome number           `json:"grossRentalIncome"`
	MonthlyRent       number           `json:"monthlyRent"`
	VacancyRate       rate             `json:"vacancyRate"`
	OtherIncome       number           `json:"otherIncome"`
	OperatingExpenses number           `json:"operatingExpenses"`
	LoanAmount        number           `json:"loanAmount"`
	InterestRate      rate             `json:"interestRate"`
	LoanTermYears     number           `json:"loanTermYears"`
	PaymentType       string           `json:"paymentType"`
	MarketCapRate     rate             `json:"marketCapRate"`
	ExitCapRate       rate             `json:"exitCapRate"`
	RefinanceLTV      rate             `json:"refinanceLTV"`
	RefinanceRate     rate             `json:"refinanceRate"`
	Assumptions       looseAssumptions `json:"assumptions"`
}

func (v *basicProperty) toFinancials() *models.PropertyFinancials {
	p := &models.PropertyFinancials{
		Name:              v.Name,
		PurchasePrice:     float64(v.PurchasePrice),
		RehabCosts:        float64(v.RehabCosts),
		ClosingCosts:      float64(v.ClosingCosts),
		HoldingCosts:      float64(v.HoldingCosts),
		GrossRentalIncome: float64(v.GrossRentalIncome),
		VacancyRate:       firstNonZero(float64(v.VacancyRate), float64(v.Assumptions.VacancyRate)),
		OtherIncome:       float64(v.OtherIncome),
		OperatingExpenses: float64(v.OperatingExpenses),
		LoanAmount:        float64(v.LoanAmount),
		InterestRate:      float64(v.InterestRate),
		LoanTermYears:     int(v.LoanTermYears),
		PaymentType:       paymentType(v.PaymentType),
		MarketCapRate:     firstNonZero(float64(v.MarketCapRate), float64(v.Assumptions.MarketCapRate)),
		ExitCapRate:       firstNonZero(float64(v.ExitCapRate), float64(v.Assumptions.ExitCapRate)),
		RefinanceLTV:      firstNonZero(float64(v.RefinanceLTV), float64(v.Assumptions.RefinanceLTV)),
		RefinanceRate:     float64(v.RefinanceRate),
	}
	if p.GrossRentalIncome == 0 {
		p.GrossRentalIncome = float64(v.MonthlyRent) * 12
	}
	return p
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func paymentType(s string) models.PaymentType {
	switch strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)) {
	case "interestonly", "io":
		return models.InterestOnly
	default:
		return models.PrincipalAndInterest
	}
}

func loanType(s string) models.LoanType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "acquisition", "purchase":
		return models.LoanAcquisition
	case "refinance", "refi":
		return models.LoanRefinance
	case "bridge":
		return models.LoanBridge
	case "construction":
		return models.LoanConstruction
	default:
		return models.LoanType(strings.ToLower(strings.TrimSpace(s)))
	}
}
