package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/validation"
)

// TargetTolerancePct is how far a bedroom type's achieved average PSF may
// sit from its target before it is reported.
const TargetTolerancePct = 5.0

func validatePricing(s *Summary, cfg *config.Config, report *validation.Report) {
	validateNonPositive(s, report)
	validateSkipped(s, report)
	validateTargets(s, cfg, report)
}

func validateNonPositive(s *Summary, report *validation.Report) {
	for _, name := range s.NonPositive {
		report.AddError(validation.Result{
			Level:    validation.LevelPricing,
			Message:  fmt.Sprintf("unit %s prices at or below zero", name),
			Path:     fmt.Sprintf("units.%s", name),
			Expected: "> 0",
			Suggestions: []string{
				"Check for negative view or category adjustments outweighing the base PSF",
			},
		})
	}
}

func validateSkipped(s *Summary, report *validation.Report) {
	if len(s.Skipped) == 0 {
		return
	}
	report.AddWarning(validation.Result{
		Level:       validation.LevelPricing,
		Message:     fmt.Sprintf("%d unit(s) have no %s area and are excluded from averages", len(s.Skipped), basisName(s.Mode)),
		Path:        "units",
		ActualValue: strings.Join(s.Skipped, ", "),
	})
}

func validateTargets(s *Summary, cfg *config.Config, report *validation.Report) {
	present := make(map[string]bool, len(s.ByType))
	for _, ts := range s.ByType {
		present[ts.Key] = true
		if ts.TargetPsf <= 0 || math.Abs(ts.GapPct) <= TargetTolerancePct {
			continue
		}
		direction := "above"
		if ts.Gap < 0 {
			direction = "below"
		}
		report.AddWarning(validation.Result{
			Level:       validation.LevelPricing,
			Message:     fmt.Sprintf("%s average PSF %.2f is %.1f%% %s target %.2f", ts.Key, ts.AveragePsf, math.Abs(ts.GapPct), direction, ts.TargetPsf),
			Path:        fmt.Sprintf("bedroom_type_pricing.%s.base_psf", ts.Key),
			ActualValue: ts.AveragePsf,
			Expected:    fmt.Sprintf("within %.0f%% of %.2f", TargetTolerancePct, ts.TargetPsf),
			Suggestions: []string{
				fmt.Sprintf("Run optimize --scope single --type %s", ts.Key),
			},
		})
	}

	for _, bt := range cfg.BedroomTypePricing {
		if bt.TargetAvgPsf > 0 && !present[bt.Type] {
			report.AddInfo(validation.Result{
				Level:   validation.LevelPricing,
				Message: fmt.Sprintf("%s has a target but no priced units", bt.Type),
				Path:    fmt.Sprintf("bedroom_type_pricing.%s.target_avg_psf", bt.Type),
			})
		}
	}
}

func basisName(mode pricing.Mode) string {
	if mode == pricing.ModeVilla {
		return "AC"
	}
	return "sell"
}
