package pricing

import (
	"fmt"
	"math"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/units"
)

// Mode selects the area a unit is priced on.
type Mode string

const (
	// ModeApartment prices on sell area, with optional balcony pricing.
	ModeApartment Mode = config.ProjectApartment
	// ModeVilla prices on air-conditioned area.
	ModeVilla Mode = config.ProjectVilla
)

// PriceRounding is the step final totals are rounded up to.
const PriceRounding = 1000.0

// ParseMode converts a project type label into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeApartment:
		return ModeApartment, nil
	case ModeVilla:
		return ModeVilla, nil
	}
	return "", fmt.Errorf("unknown project type %q", s)
}

// Overrides replace configured values during a pricing pass. Nil maps and a
// nil band slice fall through to the configuration.
type Overrides struct {
	BasePsf         map[string]float64
	ViewAdjustments map[string]float64
	FloorBands      []FloorBand
}

// PricedUnit is a unit with every pricing component layered on top.
type PricedUnit struct {
	units.Unit

	BasePsf                float64            `json:"base_psf"`
	ViewPsfAdjustment      float64            `json:"view_psf_adjustment"`
	FloorAdjustment        float64            `json:"floor_adjustment"`
	AdditionalAdjustment   float64            `json:"additional_adjustment"`
	AdditionalBreakdown    map[string]float64 `json:"additional_breakdown,omitempty"`
	PsfAfterAllAdjustments float64            `json:"psf_after_all_adjustments"`
	EffectiveArea          float64            `json:"effective_area"`
	TotalPrice             float64            `json:"total_price"`
	FlatAddersTotal        float64            `json:"flat_adders_total"`
	FinalTotalPrice        float64            `json:"final_total_price"`
	FinalPsf               float64            `json:"final_psf"`
	FinalAcPsf             float64            `json:"final_ac_psf"`
}

// Engine prices units against one configuration. It is immutable once built
// and safe for concurrent use.
type Engine struct {
	cfg     *config.Config
	mode    Mode
	basePsf map[string]float64
	views   map[string]float64
	bands   []FloorBand
}

// NewEngine indexes cfg for pricing in the given mode. An empty mode
// prices as apartments.
func NewEngine(cfg *config.Config, mode Mode) *Engine {
	if mode == "" {
		mode = ModeApartment
	}
	e := &Engine{
		cfg:     cfg,
		mode:    mode,
		basePsf: make(map[string]float64, len(cfg.BedroomTypePricing)),
		views:   make(map[string]float64, len(cfg.ViewPricing)),
		bands:   ResolveFloorRules(cfg.FloorRiseRules, cfg.OpenEndFloor()),
	}
	for _, bt := range cfg.BedroomTypePricing {
		if _, ok := e.basePsf[bt.Type]; !ok {
			e.basePsf[bt.Type] = bt.BasePsf
		}
	}
	for _, v := range cfg.ViewPricing {
		if _, ok := e.views[v.View]; !ok {
			e.views[v.View] = v.PsfAdjustment
		}
	}
	return e
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// Mode returns the pricing mode.
func (e *Engine) Mode() Mode { return e.mode }

// FloorBands returns a copy of the resolved floor bands, in rule order.
func (e *Engine) FloorBands() []FloorBand {
	return append([]FloorBand(nil), e.bands...)
}

// BasePsf resolves the base PSF for a bedroom type without overrides.
func (e *Engine) BasePsf(bedroomType string) float64 {
	if v, ok := e.basePsf[bedroomType]; ok {
		return v
	}
	return e.cfg.BasePsf
}

// ViewAdjustment resolves the configured adjustment for a view.
func (e *Engine) ViewAdjustment(view string) float64 {
	return e.views[view]
}

// Evaluate prices a single unit. The input unit is not modified.
func (e *Engine) Evaluate(u units.Unit, ov *Overrides) PricedUnit {
	p := PricedUnit{Unit: u}

	p.BasePsf = e.BasePsf(u.Type)
	if ov != nil {
		if v, ok := ov.BasePsf[u.Type]; ok {
			p.BasePsf = v
		}
	}

	p.ViewPsfAdjustment = e.ViewAdjustment(u.View)
	if ov != nil {
		if v, ok := ov.ViewAdjustments[u.View]; ok {
			p.ViewPsfAdjustment = v
		}
	}

	bands := e.bands
	if ov != nil && ov.FloorBands != nil {
		bands = ov.FloorBands
	}
	p.FloorAdjustment = Premium(u.FloorNumber(), bands)

	for _, cp := range e.cfg.AdditionalCategoryPricing {
		if u.Value(cp.Column) != cp.Category {
			continue
		}
		if p.AdditionalBreakdown == nil {
			p.AdditionalBreakdown = make(map[string]float64)
		}
		p.AdditionalBreakdown[cp.Column] += cp.PsfAdjustment
		p.AdditionalAdjustment += cp.PsfAdjustment
	}

	// Negative sums are left as-is; validation rejects configurations
	// that could produce them.
	p.PsfAfterAllAdjustments = p.BasePsf + p.ViewPsfAdjustment + p.FloorAdjustment + p.AdditionalAdjustment

	sellArea := u.SellAreaValue()
	acArea := u.ACAreaValue()
	p.EffectiveArea = e.effectiveArea(u, sellArea, acArea)
	p.TotalPrice = p.PsfAfterAllAdjustments * p.EffectiveArea

	for _, fa := range e.cfg.FlatPriceAdders {
		if matchesAdder(u, fa) {
			p.FlatAddersTotal += fa.Amount
		}
	}

	p.FinalTotalPrice = math.Ceil((p.TotalPrice+p.FlatAddersTotal)/PriceRounding) * PriceRounding
	if sellArea > 0 {
		p.FinalPsf = p.FinalTotalPrice / sellArea
	}
	if acArea > 0 {
		p.FinalAcPsf = p.FinalTotalPrice / acArea
	}
	return p
}

func (e *Engine) effectiveArea(u units.Unit, sellArea, acArea float64) float64 {
	if e.mode == ModeVilla {
		return acArea
	}
	bp := e.cfg.BalconyPricing
	if bp == nil {
		return sellArea
	}
	balcony := u.Balcony()
	if balcony <= 0 {
		return sellArea
	}
	full := bp.FullAreaPct / 100
	priced := balcony*full + balcony*(1-full)*bp.RemainderRate
	return sellArea - balcony + priced
}

// BasisArea is the area PSF averages are measured on: sell area for
// apartments, AC area for villas.
func (e *Engine) BasisArea(u units.Unit) float64 {
	return BasisArea(u, e.mode)
}

// BasisArea returns the averaging area of u in mode.
func BasisArea(u units.Unit, mode Mode) float64 {
	if mode == ModeVilla {
		return u.ACAreaValue()
	}
	return u.SellAreaValue()
}

func matchesAdder(u units.Unit, fa config.FlatAdder) bool {
	for _, name := range fa.Units {
		if name == u.Name {
			return true
		}
	}
	if len(fa.Columns) == 0 {
		return false
	}
	for col, allowed := range fa.Columns {
		v := u.Value(col)
		ok := false
		for _, a := range allowed {
			if a == v {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Evaluate prices one unit against cfg.
func Evaluate(u units.Unit, cfg *config.Config, mode Mode, ov *Overrides) PricedUnit {
	return NewEngine(cfg, mode).Evaluate(u, ov)
}
