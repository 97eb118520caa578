package optimize

import (
	"sort"

	"github.com/DJKarma/price-prism/pkg/config"
)

// Params are the optimized values, keyed by the field they replace. Only
// the fields in the run's scope are set.
type Params struct {
	BedroomAdjustments map[string]float64 `json:"bedroom_adjustments"`
	ViewAdjustments    map[string]float64 `json:"view_adjustments,omitempty"`
	FloorRules         []config.FloorRule `json:"floor_rules,omitempty"`
}

// Result reports one optimization run.
type Result struct {
	Scope             Scope   `json:"scope"`
	OptimizedParams   Params  `json:"optimized_params"`
	InitialAveragePsf float64 `json:"initial_average_psf"`
	FinalAveragePsf   float64 `json:"final_average_psf"`
	TargetPsf         float64 `json:"target_psf"`
	Iterations        int     `json:"iterations"`
	Converged         bool    `json:"converged"`
	FinalCost         float64 `json:"final_cost"`
}

// Apply returns a copy of cfg with the optimized values merged in. Bedroom
// types and views without an entry are appended.
func (r *Result) Apply(cfg *config.Config) *config.Config {
	out := cfg.Clone()
	for _, t := range sortedKeys(r.OptimizedParams.BedroomAdjustments) {
		psf := r.OptimizedParams.BedroomAdjustments[t]
		if bt := out.BedroomType(t); bt != nil {
			bt.BasePsf = psf
			continue
		}
		out.BedroomTypePricing = append(out.BedroomTypePricing, config.BedroomTypePricing{Type: t, BasePsf: psf})
	}
	for _, v := range sortedKeys(r.OptimizedParams.ViewAdjustments) {
		adj := r.OptimizedParams.ViewAdjustments[v]
		if vp := out.View(v); vp != nil {
			vp.PsfAdjustment = adj
			continue
		}
		out.ViewPricing = append(out.ViewPricing, config.ViewPricing{View: v, PsfAdjustment: adj})
	}
	if r.OptimizedParams.FloorRules != nil {
		out.FloorRiseRules = config.CloneFloorRules(r.OptimizedParams.FloorRules)
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
