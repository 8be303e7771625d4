package finance

import "github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"

// Sweep recomputes the full metrics under perturbed rent, cap rate and
// interest rate. Each case is an independent ComputeMetrics call on a copy of
// base that differs in exactly one input.
func (e *Engine) Sweep(base models.PropertyFinancials) models.SensitivityResult {
	rent := func(factor float64) models.CalculatedMetrics {
		p := base
		p.GrossRentalIncome *= factor
		return e.ComputeMetrics(p)
	}
	capRate := func(delta float64) models.CalculatedMetrics {
		p := base
		p.MarketCapRate += delta
		return e.ComputeMetrics(p)
	}
	interest := func(delta float64) models.CalculatedMetrics {
		p := base
		p.InterestRate += delta
		return e.ComputeMetrics(p)
	}

	return models.SensitivityResult{
		Base: e.ComputeMetrics(base),
		RentSensitivity: models.RentSensitivity{
			Minus10: rent(0.90),
			Minus5:  rent(0.95),
			Plus5:   rent(1.05),
			Plus10:  rent(1.10),
		},
		CapRateSensitivity: models.RateSensitivity{
			Minus100bp: capRate(-0.01),
			Minus50bp:  capRate(-0.005),
			Plus50bp:   capRate(0.005),
			Plus100bp:  capRate(0.01),
		},
		InterestRateSensitivity: models.RateSensitivity{
			Minus100bp: interest(-0.01),
			Minus50bp:  interest(-0.005),
			Plus50bp:   interest(0.005),
			Plus100bp:  interest(0.01),
		},
	}
}

// SweepDeal runs Sweep on the flattened deal
func (e *Engine) SweepDeal(d models.Deal) models.SensitivityResult {
	return e.Sweep(DealFinancials(d))
}
