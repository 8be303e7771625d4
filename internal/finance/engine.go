// Package finance evaluates real-estate investment performance.
//
// Every calculation is a pure function of its input snapshot: income feeds
// NOI, NOI feeds valuation, the active loan feeds debt service and all of
// them feed the return ratios. Ratios whose denominator is not positive are
// reported as 0 instead of failing, so a metrics record is always complete.
package finance

// Assumptions are the policy constants of the engine.
type Assumptions struct {
	DSCRWarningThreshold      float64 `yaml:"dscr_warning_threshold"`
	OccupancyRiskThreshold    float64 `yaml:"occupancy_risk_threshold"`
	DefaultRefinanceLTV       float64 `yaml:"default_refinance_ltv"`
	DefaultRefinanceRate      float64 `yaml:"default_refinance_rate"`
	DefaultRefinanceTermYears int     `yaml:"default_refinance_term_years"`
}

// DefaultAssumptions returns the stock policy constants
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DSCRWarningThreshold:      1.15,
		OccupancyRiskThreshold:    0.90,
		DefaultRefinanceLTV:       0.75,
		DefaultRefinanceRate:      0.065,
		DefaultRefinanceTermYears: 30,
	}
}

// withDefaults fills unset values from DefaultAssumptions
func (a Assumptions) withDefaults() Assumptions {
	d := DefaultAssumptions()
	if a.DSCRWarningThreshold <= 0 {
		a.DSCRWarningThreshold = d.DSCRWarningThreshold
	}
	if a.OccupancyRiskThreshold <= 0 {
		a.OccupancyRiskThreshold = d.OccupancyRiskThreshold
	}
	if a.DefaultRefinanceLTV <= 0 {
		a.DefaultRefinanceLTV = d.DefaultRefinanceLTV
	}
	if a.DefaultRefinanceRate <= 0 {
		a.DefaultRefinanceRate = d.DefaultRefinanceRate
	}
	if a.DefaultRefinanceTermYears <= 0 {
		a.DefaultRefinanceTermYears = d.DefaultRefinanceTermYears
	}
	return a
}

// Engine is a stateless calculator configured with immutable assumptions.
// It is safe for concurrent use.
type Engine struct {
	a Assumptions
}

// NewEngine initializes an engine; zero fields of a fall back to DefaultAssumptions
func NewEngine(a Assumptions) *Engine {
	return &Engine{a: a.withDefaults()}
}

// Assumptions returns a copy of the engine's policy constants
func (e *Engine) Assumptions() Assumptions {
	return e.a
}

// ratio divides num by den and returns 0 when den is not positive
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
