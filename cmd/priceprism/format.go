package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/DJKarma/price-prism/pkg/analytics"
	"github.com/DJKarma/price-prism/pkg/optimize"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/validation"
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			printResult(w, e)
			if e.ConflictWith != "" {
				fmt.Fprintf(w, "    conflicts with: %s\n", e.ConflictWith)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "WARNINGS (%d):\n", len(r.Warnings))
		for _, wr := range r.Warnings {
			printResult(w, wr)
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintf(w, "Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Fprintf(w, "Result: INVALID (%s)\n", r.Summary)
	}
}

func printResult(w io.Writer, res validation.Result) {
	fmt.Fprintf(w, "  [%s] %s\n", res.Level, res.Message)
	if res.Path != "" {
		if res.ActualValue != nil {
			fmt.Fprintf(w, "    -> %s = %v\n", res.Path, res.ActualValue)
		} else {
			fmt.Fprintf(w, "    -> %s\n", res.Path)
		}
	}
	if res.Expected != "" {
		fmt.Fprintf(w, "    expected: %s\n", res.Expected)
	}
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "    * %s\n", s)
	}
}

func printPricedTable(w io.Writer, priced []pricing.PricedUnit) {
	fmt.Fprintf(w, "%-10s %-6s %-8s %5s %9s %9s %8s %8s %8s %9s %12s %12s %9s\n",
		"Unit", "Type", "View", "Floor", "Area", "Base", "View+", "Floor+", "Extra+", "PSF", "Flat Adders", "Final Price", "Final PSF")
	fmt.Fprintf(w, "%-10s %-6s %-8s %5s %9s %9s %8s %8s %8s %9s %12s %12s %9s\n",
		"----------", "------", "--------", "-----", "---------", "---------", "--------", "--------", "--------", "---------", "------------", "------------", "---------")

	for _, p := range priced {
		fmt.Fprintf(w, "%-10s %-6s %-8s %5s %9.1f %9.2f %8.2f %8.2f %8.2f %9.2f %12.0f %12.0f %9.2f\n",
			p.Name, p.Type, p.View, p.Floor, p.EffectiveArea,
			p.BasePsf, p.ViewPsfAdjustment, p.FloorAdjustment, p.AdditionalAdjustment,
			p.PsfAfterAllAdjustments, p.FlatAddersTotal, p.FinalTotalPrice, p.FinalPsf)
	}
}

func printSummary(w io.Writer, s *analytics.Summary) {
	fmt.Fprintf(w, "Portfolio (%s pricing)\n", s.Mode)
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "  Units priced:       %d of %d\n", s.PricedCount, s.UnitCount)
	fmt.Fprintf(w, "  Total value:        %s\n", formatMoney(s.TotalValue))
	fmt.Fprintf(w, "  Total area:         %.1f\n", s.TotalArea)
	fmt.Fprintf(w, "  Average PSF:        %.2f\n", s.AveragePsf)
	fmt.Fprintf(w, "  PSF range:          %.2f - %.2f\n", s.MinPsf, s.MaxPsf)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-14s %6s %14s %10s %10s %10s\n", "Bedroom Type", "Units", "Value", "Avg PSF", "Target", "Gap")
	for _, ts := range s.ByType {
		target, gap := "-", "-"
		if ts.TargetPsf > 0 {
			target = fmt.Sprintf("%.2f", ts.TargetPsf)
			gap = fmt.Sprintf("%+.2f", ts.Gap)
		}
		fmt.Fprintf(w, "%-14s %6d %14s %10.2f %10s %10s\n",
			ts.Key, ts.Count, formatMoney(ts.TotalValue), ts.AveragePsf, target, gap)
	}
	fmt.Fprintln(w)

	printGroups(w, "View", s.ByView)
}

func printGroups(w io.Writer, label string, groups []analytics.GroupStats) {
	fmt.Fprintf(w, "%-14s %6s %14s %10s %10s %10s\n", label, "Units", "Value", "Avg PSF", "Min PSF", "Max PSF")
	for _, g := range groups {
		fmt.Fprintf(w, "%-14s %6d %14s %10.2f %10.2f %10.2f\n",
			g.Key, g.Count, formatMoney(g.TotalValue), g.AveragePsf, g.MinPsf, g.MaxPsf)
	}
}

func printFloorTable(w io.Writer, rows []pricing.FloorPremium) {
	fmt.Fprintf(w, "%5s %10s %5s\n", "Floor", "Premium", "Jump")
	fmt.Fprintf(w, "%5s %10s %5s\n", "-----", "----------", "-----")
	for _, r := range rows {
		jump := ""
		if r.Jump {
			jump = "*"
		}
		fmt.Fprintf(w, "%5d %10.2f %5s\n", r.Floor, r.Premium, jump)
	}
}

func printOptimizeResult(w io.Writer, r *optimize.Result) {
	fmt.Fprintf(w, "Optimization (%s)\n", r.Scope)
	fmt.Fprintln(w, "===================")
	fmt.Fprintf(w, "  Target PSF:         %.2f\n", r.TargetPsf)
	fmt.Fprintf(w, "  Initial avg PSF:    %.2f\n", r.InitialAveragePsf)
	fmt.Fprintf(w, "  Final avg PSF:      %.2f\n", r.FinalAveragePsf)
	fmt.Fprintf(w, "  Iterations:         %d (converged: %t)\n", r.Iterations, r.Converged)
	fmt.Fprintf(w, "  Final cost:         %.6g\n", r.FinalCost)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-14s %12s\n", "Bedroom Type", "Base PSF")
	for _, k := range sortedKeys(r.OptimizedParams.BedroomAdjustments) {
		fmt.Fprintf(w, "%-14s %12.2f\n", k, r.OptimizedParams.BedroomAdjustments[k])
	}
	if len(r.OptimizedParams.ViewAdjustments) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-14s %12s\n", "View", "Adjustment")
		for _, k := range sortedKeys(r.OptimizedParams.ViewAdjustments) {
			fmt.Fprintf(w, "%-14s %12.2f\n", k, r.OptimizedParams.ViewAdjustments[k])
		}
	}
	if len(r.OptimizedParams.FloorRules) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-10s %10s %10s %10s\n", "Floors", "Increment", "Every", "Jump")
		for _, fr := range r.OptimizedParams.FloorRules {
			end := "top"
			if fr.EndFloor != nil {
				end = fmt.Sprintf("%d", *fr.EndFloor)
			}
			fmt.Fprintf(w, "%-10s %10.2f %10d %10.2f\n",
				fmt.Sprintf("%d-%s", fr.StartFloor, end), fr.PsfIncrement, fr.JumpEveryFloor, fr.JumpIncrement)
		}
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatMoney(v float64) string {
	if v >= 1_000_000_000 {
		return fmt.Sprintf("%.2fB", v/1_000_000_000)
	}
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", v/1_000_000)
	}
	if v >= 1_000 {
		return fmt.Sprintf("%.0fK", v/1_000)
	}
	return fmt.Sprintf("%.0f", v)
}
