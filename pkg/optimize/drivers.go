package optimize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/cost"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/units"
)

// Scope selects which parameters an optimization run may move.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeMega   Scope = "mega"
	ScopeFull   Scope = "full"
)

// Parameter bounds.
const (
	// ViewBandPct is how far a view adjustment may move from its original value.
	ViewBandPct = 0.10
	// FloorIncrementCap bounds floor increments at this multiple of the original.
	FloorIncrementCap = 1.5
	// MinIncrement keeps floor increments strictly positive.
	MinIncrement = 0.01
)

var (
	ErrNoUnits      = errors.New("no priceable units in scope")
	ErrNoTarget     = errors.New("target average PSF must be positive")
	ErrNoType       = errors.New("bedroom type is required")
	ErrUnknownScope = errors.New("unknown optimization scope")
)

// Request describes one optimization run.
type Request struct {
	Mode pricing.Mode
	// BedroomType is the type tuned by a single-type run.
	BedroomType string
	// BedroomTypes restricts mega and full runs; empty means every type
	// present in the inventory.
	BedroomTypes []string
	// Target is the average PSF to reach. A single-type run falls back to
	// the type's configured target when zero.
	Target   float64
	Settings config.OptimizerSettings
}

// Run dispatches to the driver for scope.
func Run(scope Scope, cfg *config.Config, us []units.Unit, req Request) (*Result, error) {
	switch scope {
	case ScopeSingle:
		return SingleType(cfg, us, req)
	case ScopeMega:
		return Mega(cfg, us, req)
	case ScopeFull:
		return Full(cfg, us, req)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
}

// SingleType tunes one bedroom type's base PSF against that type's target.
func SingleType(cfg *config.Config, us []units.Unit, req Request) (*Result, error) {
	if req.BedroomType == "" {
		return nil, ErrNoType
	}
	target := req.Target
	if target == 0 {
		if bt := cfg.BedroomType(req.BedroomType); bt != nil {
			target = bt.TargetAvgPsf
		}
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: bedroom type %q", ErrNoTarget, req.BedroomType)
	}

	engine := pricing.NewEngine(cfg, req.Mode)
	scoped := pricing.FilterByType(us, req.BedroomType)
	if len(scoped) == 0 {
		return nil, fmt.Errorf("%w: bedroom type %q", ErrNoUnits, req.BedroomType)
	}

	layout := cost.Layout{Slots: []cost.Slot{{Kind: cost.KindBasePsf, Key: req.BedroomType}}}
	p := plan{
		scope:   ScopeSingle,
		engine:  engine,
		units:   scoped,
		layout:  layout,
		initial: []float64{engine.BasePsf(req.BedroomType)},
		bounds:  []Bound{NonNegative},
		target:  target,
		cost:    cost.Single,
	}
	return p.run(req.Settings)
}

// Mega tunes every selected bedroom type's base PSF and every view's
// adjustment jointly against one portfolio target.
func Mega(cfg *config.Config, us []units.Unit, req Request) (*Result, error) {
	p, err := megaPlan(cfg, us, req)
	if err != nil {
		return nil, err
	}
	return p.run(req.Settings)
}

// Full extends Mega with every floor rule's increment and, where a rule has
// one, its jump increment. Floor premiums are kept non-decreasing by a
// penalty term.
func Full(cfg *config.Config, us []units.Unit, req Request) (*Result, error) {
	p, err := megaPlan(cfg, us, req)
	if err != nil {
		return nil, err
	}
	p.scope = ScopeFull
	p.cost = cost.Full
	p.layout.Floors = p.engine.FloorBands()
	p.rules = cfg.FloorRiseRules

	for i, r := range cfg.FloorRiseRules {
		p.layout.Slots = append(p.layout.Slots, cost.Slot{Kind: cost.KindFloorIncrement, Rule: i})
		p.initial = append(p.initial, r.PsfIncrement)
		p.bounds = append(p.bounds, floorBound(r.PsfIncrement))
		if r.HasJump() {
			p.layout.Slots = append(p.layout.Slots, cost.Slot{Kind: cost.KindJumpIncrement, Rule: i})
			p.initial = append(p.initial, r.JumpIncrement)
			p.bounds = append(p.bounds, floorBound(r.JumpIncrement))
		}
	}
	return p.run(req.Settings)
}

func megaPlan(cfg *config.Config, us []units.Unit, req Request) (*plan, error) {
	if req.Target <= 0 {
		return nil, ErrNoTarget
	}
	engine := pricing.NewEngine(cfg, req.Mode)
	scoped := pricing.FilterByType(us, req.BedroomTypes...)
	if len(scoped) == 0 {
		return nil, ErrNoUnits
	}

	p := &plan{
		scope:  ScopeMega,
		engine: engine,
		units:  scoped,
		target: req.Target,
		cost:   cost.Mega,
	}

	types := req.BedroomTypes
	if len(types) == 0 {
		types = orderedKeys(cfgTypes(cfg), unitValues(scoped, func(u units.Unit) string { return u.Type }))
	}
	for _, t := range types {
		p.layout.Slots = append(p.layout.Slots, cost.Slot{Kind: cost.KindBasePsf, Key: t})
		p.initial = append(p.initial, engine.BasePsf(t))
		p.bounds = append(p.bounds, NonNegative)
	}

	views := orderedKeys(cfgViews(cfg), unitValues(scoped, func(u units.Unit) string { return u.View }))
	for _, v := range views {
		orig := engine.ViewAdjustment(v)
		p.layout.Slots = append(p.layout.Slots, cost.Slot{Kind: cost.KindView, Key: v})
		p.initial = append(p.initial, orig)
		p.bounds = append(p.bounds, viewBound(orig))
	}
	return p, nil
}

// plan is a fully assembled parameter vector ready for descent.
type plan struct {
	scope   Scope
	engine  *pricing.Engine
	units   []units.Unit
	layout  cost.Layout
	initial []float64
	bounds  []Bound
	target  float64
	cost    func(cost.Objective) cost.Func
	rules   []config.FloorRule
}

func (p *plan) run(s config.OptimizerSettings) (*Result, error) {
	s = s.WithDefaults()
	obj := cost.Objective{
		Engine:   p.engine,
		Units:    p.units,
		Layout:   p.layout,
		Target:   p.target,
		Original: p.initial,
		Factor:   s.ConstraintFactor,
	}
	out := DescendScaled(p.initial, p.cost(obj), s, p.bounds, p.stepScales(obj, s.Epsilon))

	res := &Result{
		Scope:             p.scope,
		OptimizedParams:   p.unpack(out.Params),
		InitialAveragePsf: p.engine.OverallAveragePsf(p.units, nil),
		FinalAveragePsf:   obj.AveragePsf(out.Params),
		TargetPsf:         p.target,
		Iterations:        out.Iterations,
		Converged:         out.Converged,
		FinalCost:         out.Cost,
	}
	return res, nil
}

// stepScales fixes each slot's step multiplier from the sensitivity of the
// average PSF, measured once at the initial parameters. A slot with
// sensitivity g and stay-close factor f gets 1/(n*(g*g+f)) over n slots.
func (p *plan) stepScales(obj cost.Objective, eps float64) []float64 {
	g := obj.Sensitivity(p.initial, eps)
	n := float64(len(g))
	scales := make([]float64, len(g))
	for i, slot := range p.layout.Slots {
		f := obj.Factor
		if p.scope == ScopeFull && slot.Kind.IsFloor() {
			f *= cost.FloorFactorMultiplier
		}
		curvature := g[i]*g[i] + f
		if curvature <= 0 {
			scales[i] = 1
			continue
		}
		scales[i] = 1 / (n * curvature)
	}
	return scales
}

func (p *plan) unpack(params []float64) Params {
	out := Params{BedroomAdjustments: make(map[string]float64)}
	var rules []config.FloorRule
	for i, s := range p.layout.Slots {
		switch s.Kind {
		case cost.KindBasePsf:
			out.BedroomAdjustments[s.Key] = params[i]
		case cost.KindView:
			if out.ViewAdjustments == nil {
				out.ViewAdjustments = make(map[string]float64)
			}
			out.ViewAdjustments[s.Key] = params[i]
		case cost.KindFloorIncrement, cost.KindJumpIncrement:
			if rules == nil {
				rules = config.CloneFloorRules(p.rules)
			}
			if s.Kind == cost.KindFloorIncrement {
				rules[s.Rule].PsfIncrement = params[i]
			} else {
				rules[s.Rule].JumpIncrement = params[i]
			}
		}
	}
	if p.scope == ScopeFull && rules == nil {
		rules = config.CloneFloorRules(p.rules)
	}
	out.FloorRules = rules
	return out
}

func viewBound(orig float64) Bound {
	band := math.Abs(orig) * ViewBandPct
	return Bound{
		Min: math.Max(0, orig-band),
		Max: math.Max(0, orig+band),
	}
}

func floorBound(orig float64) Bound {
	return Bound{
		Min: MinIncrement,
		Max: math.Max(MinIncrement, orig*FloorIncrementCap),
	}
}

func cfgTypes(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.BedroomTypePricing))
	for _, bt := range cfg.BedroomTypePricing {
		out = append(out, bt.Type)
	}
	return out
}

func cfgViews(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.ViewPricing))
	for _, v := range cfg.ViewPricing {
		out = append(out, v.View)
	}
	return out
}

func unitValues(us []units.Unit, field func(units.Unit) string) map[string]bool {
	out := make(map[string]bool)
	for _, u := range us {
		if v := field(u); v != "" {
			out[v] = true
		}
	}
	return out
}

// orderedKeys returns the configured keys that occur in present, in config
// order, followed by the remaining present keys sorted.
func orderedKeys(configured []string, present map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, k := range configured {
		if present[k] && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range present {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
