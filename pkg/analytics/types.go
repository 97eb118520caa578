package analytics

import "github.com/DJKarma/price-prism/pkg/pricing"

// NoValue labels units with an empty grouping field.
const NoValue = "-"

// GroupStats aggregates priced units sharing one value of a grouping field.
type GroupStats struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
	TotalArea  float64 `json:"total_area"`
	AveragePsf float64 `json:"average_psf"`
	MinPsf     float64 `json:"min_psf"`
	MaxPsf     float64 `json:"max_psf"`
}

// TypeStats is GroupStats for a bedroom type plus its configured target.
type TypeStats struct {
	GroupStats
	TargetPsf float64 `json:"target_psf,omitempty"`
	Gap       float64 `json:"gap,omitempty"`
	GapPct    float64 `json:"gap_pct,omitempty"`
}

// Summary is the portfolio-level view of one pricing run.
type Summary struct {
	Mode        pricing.Mode `json:"mode"`
	UnitCount   int          `json:"unit_count"`
	PricedCount int          `json:"priced_count"`
	// Skipped names units with no basis area.
	Skipped     []string     `json:"skipped,omitempty"`
	// NonPositive names units with area whose final price is not positive.
	NonPositive []string     `json:"non_positive,omitempty"`
	TotalValue  float64      `json:"total_value"`
	TotalArea   float64      `json:"total_area"`
	AveragePsf  float64      `json:"average_psf"`
	MinPsf      float64      `json:"min_psf"`
	MaxPsf      float64      `json:"max_psf"`
	FlatAdders  float64      `json:"flat_adders_total"`
	ByType      []TypeStats  `json:"by_type"`
	ByView      []GroupStats `json:"by_view"`
	ByFloor     []GroupStats `json:"by_floor"`
}
