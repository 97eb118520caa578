package optimize

import (
	"math"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/cost"
)

// Bound is the closed interval a parameter is projected into after each step.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NonNegative is the bound for parameters that only need to stay >= 0.
var NonNegative = Bound{Min: 0, Max: math.Inf(1)}

// Clamp projects v into the bound.
func (b Bound) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Outcome is the final iterate of a descent run.
type Outcome struct {
	Params     []float64
	Cost       float64
	Iterations int
	Converged  bool
}

// Gradient estimates the gradient of f at params by central differences.
func Gradient(f cost.Func, params []float64, eps float64) []float64 {
	grad := make([]float64, len(params))
	shifted := append([]float64(nil), params...)
	for i := range params {
		orig := shifted[i]
		shifted[i] = orig + eps
		up := f(shifted)
		shifted[i] = orig - eps
		down := f(shifted)
		shifted[i] = orig
		grad[i] = (up - down) / (2 * eps)
	}
	return grad
}

// Descend minimizes f by fixed-step gradient descent. After each step every
// parameter is projected into its bound. It stops once the cost changes by
// less than the convergence threshold, or after MaxIterations; the last
// iterate is returned either way.
func Descend(initial []float64, f cost.Func, s config.OptimizerSettings, bounds []Bound) Outcome {
	return DescendScaled(initial, f, s, bounds, nil)
}

// DescendScaled is Descend with a fixed per-parameter step multiplier:
// parameter i moves by LearningRate*scales[i] times its gradient. Missing
// entries default to 1.
func DescendScaled(initial []float64, f cost.Func, s config.OptimizerSettings, bounds []Bound, scales []float64) Outcome {
	s = s.WithDefaults()

	params := make([]float64, len(initial))
	for i, v := range initial {
		params[i] = boundAt(bounds, i).Clamp(v)
	}
	prev := f(params)

	out := Outcome{Params: params, Cost: prev}
	for iter := 1; iter <= s.MaxIterations; iter++ {
		grad := Gradient(f, params, s.Epsilon)
		for i := range params {
			params[i] = boundAt(bounds, i).Clamp(params[i] - s.LearningRate*scaleAt(scales, i)*grad[i])
		}
		cur := f(params)
		out.Iterations = iter
		out.Cost = cur
		if math.Abs(prev-cur) < s.ConvergenceThreshold {
			out.Converged = true
			break
		}
		prev = cur
	}
	out.Params = params
	return out
}

func boundAt(bounds []Bound, i int) Bound {
	if i < len(bounds) {
		return bounds[i]
	}
	return NonNegative
}

func scaleAt(scales []float64, i int) float64 {
	if i < len(scales) {
		return scales[i]
	}
	return 1
}
