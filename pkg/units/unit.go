package units

import (
	"math"
	"strconv"
	"strings"
)

// Unit is one sellable unit as supplied by the inventory sheet. Numeric
// fields keep their raw text; the accessors parse them leniently.
type Unit struct {
	Name        string            `yaml:"name" json:"name"`
	Type        string            `yaml:"type" json:"type"`
	View        string            `yaml:"view" json:"view"`
	Floor       string            `yaml:"floor" json:"floor"`
	SellArea    string            `yaml:"sell_area" json:"sell_area"`
	ACArea      string            `yaml:"ac_area" json:"ac_area"`
	BalconyArea string            `yaml:"balcony_area,omitempty" json:"balcony_area,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// FloorNumber parses the leading integer of the floor label, e.g. "12" or
// "12A". Labels without one default to 1.
func (u Unit) FloorNumber() int {
	s := strings.TrimSpace(u.Floor)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 1
	}
	return n
}

// SellAreaValue returns the sell area, or 0 when unparseable.
func (u Unit) SellAreaValue() float64 {
	return parseArea(u.SellArea)
}

// ACAreaValue returns the air-conditioned area, or 0 when unparseable.
func (u Unit) ACAreaValue() float64 {
	return parseArea(u.ACArea)
}

// Balcony returns the declared balcony area. When none is declared the
// difference between sell and AC area is used if positive.
func (u Unit) Balcony() float64 {
	if strings.TrimSpace(u.BalconyArea) != "" {
		return parseArea(u.BalconyArea)
	}
	if b := u.SellAreaValue() - u.ACAreaValue(); b > 0 {
		return b
	}
	return 0
}

// Value returns the unit's raw value for a column. Attributes take
// precedence; the built-in columns name, type, view and floor are matched
// case-insensitively otherwise.
func (u Unit) Value(column string) string {
	if v, ok := u.Attributes[column]; ok {
		return v
	}
	switch strings.ToLower(strings.TrimSpace(column)) {
	case "name", "unit":
		return u.Name
	case "type", "bedroom type", "bedroom_type":
		return u.Type
	case "view":
		return u.View
	case "floor":
		return u.Floor
	}
	return ""
}

// MaxFloor returns the highest parsed floor across units, or 0 if empty.
func MaxFloor(us []Unit) int {
	highest := 0
	for _, u := range us {
		if f := u.FloorNumber(); f > highest {
			highest = f
		}
	}
	return highest
}

// ParseNumber parses a float leniently, tolerating surrounding spaces and
// thousands separators. ok is false when s holds no finite number.
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseArea(s string) float64 {
	v, _ := ParseNumber(s)
	return v
}
