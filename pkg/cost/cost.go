package cost

import (
	"math"

	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/units"
)

// Func is a scalar objective over a parameter vector.
type Func func(params []float64) float64

// Objective holds what every cost variant measures against: the units in
// scope, the target average PSF, and the starting parameter values.
type Objective struct {
	Engine   *pricing.Engine
	Units    []units.Unit
	Layout   Layout
	Target   float64
	Original []float64
	// Factor weights the quadratic stay-close penalty.
	Factor float64
}

// Single is the objective for tuning one bedroom type's base PSF. It is Mega
// over a one-slot layout.
func Single(o Objective) Func {
	return Mega(o)
}

// Mega applies the same stay-close factor to every parameter.
func Mega(o Objective) Func {
	return func(params []float64) float64 {
		return o.evaluate(params, 1, false)
	}
}

// Full doubles the stay-close factor on floor-rule parameters and penalizes
// any floor where the cumulative premium falls.
func Full(o Objective) Func {
	return func(params []float64) float64 {
		return o.evaluate(params, FloorFactorMultiplier, true)
	}
}

// AveragePsf is the achieved average PSF for params after projecting
// negatives to zero.
func (o Objective) AveragePsf(params []float64) float64 {
	projected, _ := project(params)
	return o.Engine.OverallAveragePsf(o.Units, o.Layout.Overrides(projected))
}

// Sensitivity estimates, by central differences of step eps, how much the
// achieved average PSF moves per unit change of each parameter.
func (o Objective) Sensitivity(params []float64, eps float64) []float64 {
	out := make([]float64, len(params))
	shifted := append([]float64(nil), params...)
	for i := range params {
		orig := shifted[i]
		shifted[i] = orig + eps
		up := o.AveragePsf(shifted)
		shifted[i] = orig - eps
		down := o.AveragePsf(shifted)
		shifted[i] = orig
		out[i] = (up - down) / (2 * eps)
	}
	return out
}

func (o Objective) evaluate(params []float64, floorMultiplier float64, monotonic bool) float64 {
	projected, negPenalty := project(params)
	ov := o.Layout.Overrides(projected)

	avg := o.Engine.OverallAveragePsf(o.Units, ov)
	diff := avg - o.Target
	total := diff*diff + negPenalty

	for i, s := range o.Layout.Slots {
		f := o.Factor
		if s.Kind.IsFloor() {
			f *= floorMultiplier
		}
		d := projected[i] - o.Original[i]
		total += f * d * d
	}

	if monotonic && ov.FloorBands != nil {
		total += MonotonicityPenalty(ov.FloorBands)
	}
	return total
}

// MonotonicityPenalty is MonotonicityWeight times the total drop in
// cumulative premium between consecutive floors up to MonotonicityFloors.
func MonotonicityPenalty(bands []pricing.FloorBand) float64 {
	penalty := 0.0
	prev := pricing.Premium(1, bands)
	for f := 2; f <= MonotonicityFloors; f++ {
		cur := pricing.Premium(f, bands)
		if cur < prev {
			penalty += MonotonicityWeight * (prev - cur)
		}
		prev = cur
	}
	return penalty
}

// project clamps negative parameters to zero and returns the backstop
// penalty for the clamped magnitude.
func project(params []float64) ([]float64, float64) {
	out := make([]float64, len(params))
	penalty := 0.0
	for i, p := range params {
		if p < 0 {
			penalty += NegativeWeight * math.Abs(p)
			p = 0
		}
		out[i] = p
	}
	return out, penalty
}
