package cost

import "github.com/DJKarma/price-prism/pkg/pricing"

// Kind identifies the pricing field a parameter slot drives.
type Kind int

const (
	KindBasePsf Kind = iota
	KindView
	KindFloorIncrement
	KindJumpIncrement
)

func (k Kind) String() string {
	switch k {
	case KindBasePsf:
		return "base_psf"
	case KindView:
		return "view"
	case KindFloorIncrement:
		return "floor_increment"
	case KindJumpIncrement:
		return "jump_increment"
	}
	return "unknown"
}

// IsFloor reports whether the slot belongs to a floor-rise rule.
func (k Kind) IsFloor() bool {
	return k == KindFloorIncrement || k == KindJumpIncrement
}

// Slot maps one parameter index to a named pricing field. Key holds the
// bedroom type or view; Rule holds the floor band index.
type Slot struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key,omitempty"`
	Rule int    `json:"rule,omitempty"`
}

// Layout maps a parameter vector onto pricing overrides. Floors is the
// template band set that floor slots modify.
type Layout struct {
	Slots  []Slot
	Floors []pricing.FloorBand
}

// HasFloors reports whether any slot drives a floor rule.
func (l Layout) HasFloors() bool {
	for _, s := range l.Slots {
		if s.Kind.IsFloor() {
			return true
		}
	}
	return false
}

// Overrides builds pricing overrides from params. params must have one
// entry per slot.
func (l Layout) Overrides(params []float64) *pricing.Overrides {
	ov := &pricing.Overrides{
		BasePsf:         make(map[string]float64),
		ViewAdjustments: make(map[string]float64),
	}
	var bands []pricing.FloorBand
	if l.HasFloors() {
		bands = append([]pricing.FloorBand(nil), l.Floors...)
	}
	for i, s := range l.Slots {
		switch s.Kind {
		case KindBasePsf:
			ov.BasePsf[s.Key] = params[i]
		case KindView:
			ov.ViewAdjustments[s.Key] = params[i]
		case KindFloorIncrement:
			bands[s.Rule].Increment = params[i]
		case KindJumpIncrement:
			bands[s.Rule].JumpIncrement = params[i]
		}
	}
	ov.FloorBands = bands
	return ov
}
