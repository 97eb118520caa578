package validation

import (
	"fmt"
	"sort"

	"github.com/DJKarma/price-prism/pkg/config"
)

// ValidateConfig checks a pricing configuration before any computation.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateProject(c, r)
	validateBedroomTypes(c, r)
	validateViews(c, r)
	validateFloorRules(c, r)
	validateCategories(c, r)
	validateFlatAdders(c, r)
	validateBalcony(c, r)
	validateOptimizer(c, r)

	return r
}

func validateProject(c *config.Config, r *Report) {
	switch c.ProjectType {
	case "", config.ProjectApartment, config.ProjectVilla:
	default:
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("unknown project_type %q", c.ProjectType),
			Path:        "project_type",
			ActualValue: c.ProjectType,
			Expected:    "apartment or villa",
		})
	}
	if c.BasePsf < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "base_psf must be non-negative",
			Path:        "base_psf",
			ActualValue: c.BasePsf,
			Expected:    ">= 0",
		})
	}
	if c.MaxFloor < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "max_floor must be non-negative",
			Path:        "max_floor",
			ActualValue: c.MaxFloor,
			Expected:    ">= 0 (0 uses the default ceiling)",
		})
	}
}

func validateBedroomTypes(c *config.Config, r *Report) {
	seen := make(map[string]int)
	for i, bt := range c.BedroomTypePricing {
		path := fmt.Sprintf("bedroom_type_pricing[%d]", i)
		if first, dup := seen[bt.Type]; dup {
			r.AddError(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("duplicate bedroom type %q", bt.Type),
				Path:         path + ".type",
				ActualValue:  bt.Type,
				ConflictWith: fmt.Sprintf("bedroom_type_pricing[%d]", first),
				Suggestions:  []string{"Merge the entries; only the first one is used for pricing"},
			})
		} else {
			seen[bt.Type] = i
		}
		if bt.BasePsf < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): base_psf must be non-negative", path, bt.Type),
				Path:        path + ".base_psf",
				ActualValue: bt.BasePsf,
				Expected:    ">= 0",
			})
		}
		if bt.TargetAvgPsf < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): target_avg_psf must be non-negative", path, bt.Type),
				Path:        path + ".target_avg_psf",
				ActualValue: bt.TargetAvgPsf,
				Expected:    ">= 0",
			})
		}
	}
}

func validateViews(c *config.Config, r *Report) {
	seen := make(map[string]int)
	for i, v := range c.ViewPricing {
		path := fmt.Sprintf("view_pricing[%d]", i)
		if first, dup := seen[v.View]; dup {
			r.AddError(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("duplicate view %q", v.View),
				Path:         path + ".view",
				ActualValue:  v.View,
				ConflictWith: fmt.Sprintf("view_pricing[%d]", first),
			})
		} else {
			seen[v.View] = i
		}
		if v.PsfAdjustment < 0 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("view %q has a negative adjustment; optimization raises it to 0", v.View),
				Path:        path + ".psf_adjustment",
				ActualValue: v.PsfAdjustment,
			})
		}
	}
}

func validateFloorRules(c *config.Config, r *Report) {
	openEnd := c.OpenEndFloor()

	type span struct {
		idx        int
		start, end int
	}
	spans := make([]span, 0, len(c.FloorRiseRules))

	for i, rule := range c.FloorRiseRules {
		path := fmt.Sprintf("floor_rise_rules[%d]", i)
		end := openEnd
		if rule.EndFloor != nil {
			end = *rule.EndFloor
		}

		if rule.StartFloor < 1 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: start_floor must be at least 1", path),
				Path:        path + ".start_floor",
				ActualValue: rule.StartFloor,
				Expected:    ">= 1",
			})
		}
		if end < rule.StartFloor {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: end floor %d is below start_floor %d", path, end, rule.StartFloor),
				Path:        path + ".end_floor",
				ActualValue: end,
				Expected:    fmt.Sprintf(">= %d", rule.StartFloor),
			})
		}
		if rule.PsfIncrement < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: psf_increment must be non-negative", path),
				Path:        path + ".psf_increment",
				ActualValue: rule.PsfIncrement,
				Expected:    ">= 0",
			})
		}
		if rule.JumpEveryFloor < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: jump_every_floor must be non-negative", path),
				Path:        path + ".jump_every_floor",
				ActualValue: rule.JumpEveryFloor,
				Expected:    ">= 0",
			})
		}
		if rule.JumpIncrement < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: jump_increment must be non-negative", path),
				Path:        path + ".jump_increment",
				ActualValue: rule.JumpIncrement,
				Expected:    ">= 0",
			})
		}
		if rule.JumpIncrement > 0 && rule.JumpEveryFloor == 0 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: jump_increment is set but jump_every_floor is 0, so it never applies", path),
				Path:        path + ".jump_every_floor",
				Suggestions: []string{"Set jump_every_floor or remove jump_increment"},
			})
		}
		if rule.EndFloor != nil && *rule.EndFloor > openEnd {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: end_floor %d is above the building ceiling %d", path, *rule.EndFloor, openEnd),
				Path:        path + ".end_floor",
				ActualValue: *rule.EndFloor,
			})
		}
		spans = append(spans, span{idx: i, start: rule.StartFloor, end: end})
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if cur.start <= prev.end {
			r.AddError(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("floor rules overlap: floors %d-%d and %d-%d", prev.start, prev.end, cur.start, cur.end),
				Path:         fmt.Sprintf("floor_rise_rules[%d]", cur.idx),
				ActualValue:  cur.start,
				Expected:     fmt.Sprintf("> %d", prev.end),
				ConflictWith: fmt.Sprintf("floor_rise_rules[%d]", prev.idx),
				Suggestions:  []string{"Make floor ranges disjoint; an open end_floor runs to max_floor"},
			})
		}
	}
}

func validateCategories(c *config.Config, r *Report) {
	seen := make(map[[2]string]int)
	for i, cp := range c.AdditionalCategoryPricing {
		path := fmt.Sprintf("additional_category_pricing[%d]", i)
		if cp.Column == "" {
			r.AddError(Result{
				Level:    LevelSchema,
				Message:  fmt.Sprintf("%s: column is required", path),
				Path:     path + ".column",
				Expected: "non-empty column name",
			})
		}
		key := [2]string{cp.Column, cp.Category}
		if first, dup := seen[key]; dup {
			r.AddWarning(Result{
				Level:        LevelSchema,
				Message:      fmt.Sprintf("%s: %s=%s is priced twice; both adjustments apply", path, cp.Column, cp.Category),
				Path:         path,
				ConflictWith: fmt.Sprintf("additional_category_pricing[%d]", first),
			})
		} else {
			seen[key] = i
		}
	}
}

func validateFlatAdders(c *config.Config, r *Report) {
	for i, fa := range c.FlatPriceAdders {
		path := fmt.Sprintf("flat_price_adders[%d]", i)
		if len(fa.Units) == 0 && len(fa.Columns) == 0 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s selects no units", path),
				Path:        path,
				Suggestions: []string{"List unit names or column constraints"},
			})
		}
		if fa.Amount < 0 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s: negative amount acts as a discount", path),
				Path:        path + ".amount",
				ActualValue: fa.Amount,
			})
		}
	}
}

func validateBalcony(c *config.Config, r *Report) {
	bp := c.BalconyPricing
	if bp == nil {
		return
	}
	if bp.FullAreaPct < 0 || bp.FullAreaPct > 100 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("balcony full_area_pct %.2f is outside 0-100", bp.FullAreaPct),
			Path:        "balcony_pricing.full_area_pct",
			ActualValue: bp.FullAreaPct,
			Expected:    "0-100",
		})
	}
	if bp.RemainderRate < 0 || bp.RemainderRate > 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("balcony remainder_rate %.2f is outside 0-1", bp.RemainderRate),
			Path:        "balcony_pricing.remainder_rate",
			ActualValue: bp.RemainderRate,
			Expected:    "0-1",
		})
	}
	if c.ProjectType == config.ProjectVilla {
		r.AddInfo(Result{
			Level:   LevelSchema,
			Message: "balcony_pricing is ignored for villa projects",
			Path:    "balcony_pricing",
		})
	}
}

func validateOptimizer(c *config.Config, r *Report) {
	o := c.Optimizer
	checks := []struct {
		name  string
		value float64
	}{
		{"learning_rate", o.LearningRate},
		{"max_iterations", float64(o.MaxIterations)},
		{"convergence_threshold", o.ConvergenceThreshold},
		{"epsilon", o.Epsilon},
		{"constraint_factor", o.ConstraintFactor},
	}
	for _, ch := range checks {
		// Zero means "use the default".
		if ch.value < 0 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("optimizer.%s must not be negative", ch.name),
				Path:        "optimizer." + ch.name,
				ActualValue: ch.value,
				Expected:    ">= 0",
			})
		}
	}
}
