package pricing

import (
	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/units"
)

// Simulate prices every unit, preserving input order.
func (e *Engine) Simulate(us []units.Unit, ov *Overrides) []PricedUnit {
	out := make([]PricedUnit, len(us))
	for i, u := range us {
		out[i] = e.Evaluate(u, ov)
	}
	return out
}

// OverallAveragePsf is total final price over total basis area across units
// with positive area and price. It is value-weighted, not a mean of unit PSFs.
func (e *Engine) OverallAveragePsf(us []units.Unit, ov *Overrides) float64 {
	var totalPrice, totalArea float64
	for _, u := range us {
		area := e.BasisArea(u)
		if area <= 0 {
			continue
		}
		p := e.Evaluate(u, ov)
		if p.FinalTotalPrice <= 0 {
			continue
		}
		totalPrice += p.FinalTotalPrice
		totalArea += area
	}
	if totalArea == 0 {
		return 0
	}
	return totalPrice / totalArea
}

// Simulate prices units against cfg.
func Simulate(us []units.Unit, cfg *config.Config, mode Mode, ov *Overrides) []PricedUnit {
	return NewEngine(cfg, mode).Simulate(us, ov)
}

// AveragePsf aggregates already-priced units the same way OverallAveragePsf does.
func AveragePsf(priced []PricedUnit, mode Mode) float64 {
	var totalPrice, totalArea float64
	for _, p := range priced {
		area := BasisArea(p.Unit, mode)
		if area <= 0 || p.FinalTotalPrice <= 0 {
			continue
		}
		totalPrice += p.FinalTotalPrice
		totalArea += area
	}
	if totalArea == 0 {
		return 0
	}
	return totalPrice / totalArea
}

// FilterByType returns the units whose bedroom type is in types. An empty
// types list keeps every unit.
func FilterByType(us []units.Unit, types ...string) []units.Unit {
	if len(types) == 0 {
		return us
	}
	keep := make(map[string]bool, len(types))
	for _, t := range types {
		keep[t] = true
	}
	var out []units.Unit
	for _, u := range us {
		if keep[u.Type] {
			out = append(out, u)
		}
	}
	return out
}
