package world

// CostModel prices a single step between adjacent tiles in energy.
// Climbing costs extra in proportion to the rise; descending refunds part of
// the base cost, but never below MinStep.
type CostModel struct {
	Base     float64 `yaml:"base"`
	Uphill   float64 `yaml:"uphill"`
	Downhill float64 `yaml:"downhill"`
	MinStep  float64 `yaml:"min_step"`
}

// DefaultCostModel returns the standard movement costs.
func DefaultCostModel() CostModel {
	return CostModel{
		Base:     0.1,
		Uphill:   1.5,
		Downhill: 0.75,
		MinStep:  0.05,
	}
}

// StepCost returns the energy needed to move from one tile onto another.
func (m CostModel) StepCost(from, to Tile) float64 {
	dh := to.Elevation - from.Elevation
	cost := m.Base
	switch {
	case dh > 0:
		cost += dh * m.Uphill
	case dh < 0:
		cost += dh * m.Downhill
		if cost < m.MinStep {
			cost = m.MinStep
		}
	}
	return cost
}
