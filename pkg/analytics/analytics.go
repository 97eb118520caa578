package analytics

import (
	"math"
	"sort"
	"strconv"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/validation"
)

// Summarize aggregates priced units into portfolio totals and per-type,
// per-view and per-floor groups. Averages are value-weighted over the
// mode's basis area; units without area or with a non-positive price are
// counted but excluded from every average.
func Summarize(priced []pricing.PricedUnit, cfg *config.Config, mode pricing.Mode) *Summary {
	s := &Summary{Mode: mode, UnitCount: len(priced)}

	total := newAccumulator("")
	types := map[string]*accumulator{}
	views := map[string]*accumulator{}
	floors := map[int]*accumulator{}

	for _, p := range priced {
		area := pricing.BasisArea(p.Unit, mode)
		if area <= 0 {
			s.Skipped = append(s.Skipped, p.Name)
			continue
		}
		if p.FinalTotalPrice <= 0 {
			s.NonPositive = append(s.NonPositive, p.Name)
			continue
		}
		s.PricedCount++
		s.FlatAdders += p.FlatAddersTotal

		total.add(p.FinalTotalPrice, area)
		group(types, keyOf(p.Type)).add(p.FinalTotalPrice, area)
		group(views, keyOf(p.View)).add(p.FinalTotalPrice, area)
		f := p.FloorNumber()
		if floors[f] == nil {
			floors[f] = newAccumulator(strconv.Itoa(f))
		}
		floors[f].add(p.FinalTotalPrice, area)
	}

	t := total.stats()
	s.TotalValue = t.TotalValue
	s.TotalArea = t.TotalArea
	s.AveragePsf = t.AveragePsf
	s.MinPsf = t.MinPsf
	s.MaxPsf = t.MaxPsf

	for _, k := range ordered(configuredTypes(cfg), types) {
		ts := TypeStats{GroupStats: types[k].stats()}
		if bt := cfg.BedroomType(k); bt != nil && bt.TargetAvgPsf > 0 {
			ts.TargetPsf = bt.TargetAvgPsf
			ts.Gap = ts.AveragePsf - bt.TargetAvgPsf
			ts.GapPct = ts.Gap / bt.TargetAvgPsf * 100
		}
		s.ByType = append(s.ByType, ts)
	}
	for _, k := range ordered(configuredViews(cfg), views) {
		s.ByView = append(s.ByView, views[k].stats())
	}

	floorKeys := make([]int, 0, len(floors))
	for f := range floors {
		floorKeys = append(floorKeys, f)
	}
	sort.Ints(floorKeys)
	for _, f := range floorKeys {
		s.ByFloor = append(s.ByFloor, floors[f].stats())
	}
	return s
}

// Analyze summarizes priced units and checks the outcome against the
// configured targets.
func Analyze(priced []pricing.PricedUnit, cfg *config.Config, mode pricing.Mode) (*Summary, *validation.Report) {
	s := Summarize(priced, cfg, mode)
	report := validation.NewReport()
	validatePricing(s, cfg, report)
	return s, report
}

type accumulator struct {
	key    string
	count  int
	value  float64
	area   float64
	minPsf float64
	maxPsf float64
}

func newAccumulator(key string) *accumulator {
	return &accumulator{key: key, minPsf: math.Inf(1), maxPsf: math.Inf(-1)}
}

func (a *accumulator) add(price, area float64) {
	a.count++
	a.value += price
	a.area += area
	psf := price / area
	a.minPsf = math.Min(a.minPsf, psf)
	a.maxPsf = math.Max(a.maxPsf, psf)
}

func (a *accumulator) stats() GroupStats {
	g := GroupStats{Key: a.key, Count: a.count, TotalValue: a.value, TotalArea: a.area}
	if a.count == 0 {
		return g
	}
	g.AveragePsf = a.value / a.area
	g.MinPsf = a.minPsf
	g.MaxPsf = a.maxPsf
	return g
}

func group(m map[string]*accumulator, key string) *accumulator {
	if m[key] == nil {
		m[key] = newAccumulator(key)
	}
	return m[key]
}

func keyOf(v string) string {
	if v == "" {
		return NoValue
	}
	return v
}

func configuredTypes(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.BedroomTypePricing))
	for _, bt := range cfg.BedroomTypePricing {
		out = append(out, bt.Type)
	}
	return out
}

func configuredViews(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.ViewPricing))
	for _, v := range cfg.ViewPricing {
		out = append(out, v.View)
	}
	return out
}

// ordered lists the keys of m in configured order, then the rest sorted.
func ordered(configured []string, m map[string]*accumulator) []string {
	var out []string
	seen := map[string]bool{}
	for _, k := range configured {
		if m[k] != nil && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
