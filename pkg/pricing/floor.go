package pricing

import (
	"sort"

	"github.com/DJKarma/price-prism/pkg/config"
)

// FloorBand is a floor-rise rule with a concrete end floor.
type FloorBand struct {
	Start         int     `json:"start"`
	End           int     `json:"end"`
	Increment     float64 `json:"increment"`
	JumpEvery     int     `json:"jump_every,omitempty"`
	JumpIncrement float64 `json:"jump_increment,omitempty"`
}

// Contains reports whether floor lies within the band.
func (b FloorBand) Contains(floor int) bool {
	return floor >= b.Start && floor <= b.End
}

// ResolveFloorRules converts configured rules to bands, replacing an open
// end floor with openEnd. Band i corresponds to rules[i].
func ResolveFloorRules(rules []config.FloorRule, openEnd int) []FloorBand {
	bands := make([]FloorBand, len(rules))
	for i, r := range rules {
		end := openEnd
		if r.EndFloor != nil {
			end = *r.EndFloor
		}
		bands[i] = FloorBand{
			Start:         r.StartFloor,
			End:           end,
			Increment:     r.PsfIncrement,
			JumpEvery:     r.JumpEveryFloor,
			JumpIncrement: r.JumpIncrement,
		}
	}
	return bands
}

// Premium returns the cumulative floor premium per square foot at floor.
//
// Bands are walked in ascending start order. Each band below floor adds its
// increment once per floor it covers, plus its jump increment on every jump
// floor. The walk stops at the first band containing floor, so with
// overlapping ranges the earliest-starting band wins. Floors in a gap keep
// the premium accumulated by the bands beneath them.
func Premium(floor int, bands []FloorBand) float64 {
	if len(bands) == 0 {
		return 0
	}
	sorted := make([]FloorBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	premium := 0.0
	for _, b := range sorted {
		if floor < b.Start {
			break
		}
		last := b.End
		if floor < last {
			last = floor
		}
		for f := b.Start; f <= last; f++ {
			premium += b.Increment
			if IsJumpFloor(f, b) {
				premium += b.JumpIncrement
			}
		}
		if b.Contains(floor) {
			break
		}
	}
	return premium
}

// IsJumpFloor reports whether floor receives the band's jump increment.
func IsJumpFloor(floor int, b FloorBand) bool {
	if b.JumpEvery <= 0 || floor <= b.Start {
		return false
	}
	return (floor-b.Start)%b.JumpEvery == 0
}

// FloorPremium is one row of a premium preview.
type FloorPremium struct {
	Floor   int     `json:"floor"`
	Premium float64 `json:"premium"`
	Jump    bool    `json:"jump"`
}

// PremiumTable lists the premium for every floor from 1 to maxFloor.
func PremiumTable(maxFloor int, bands []FloorBand) []FloorPremium {
	rows := make([]FloorPremium, 0, maxFloor)
	for f := 1; f <= maxFloor; f++ {
		row := FloorPremium{Floor: f, Premium: Premium(f, bands)}
		for _, b := range bands {
			if b.Contains(f) {
				row.Jump = IsJumpFloor(f, b)
				break
			}
		}
		rows = append(rows, row)
	}
	return rows
}
