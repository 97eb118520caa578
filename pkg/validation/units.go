package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/units"
)

// ValidateUnits reports inventory rows that will price oddly. Rows are never
// rejected; pricing defaults unparseable fields.
func ValidateUnits(us []units.Unit, c *config.Config) *Report {
	r := NewReport()

	names := make(map[string]int)
	missingTypes := make(map[string]bool)
	missingViews := make(map[string]bool)

	for i, u := range us {
		path := fmt.Sprintf("units[%d]", i)
		if u.Name != "" {
			if first, dup := names[u.Name]; dup {
				r.AddWarning(Result{
					Level:        LevelUnits,
					Message:      fmt.Sprintf("duplicate unit name %q", u.Name),
					Path:         path + ".name",
					ConflictWith: fmt.Sprintf("units[%d]", first),
				})
			} else {
				names[u.Name] = i
			}
		}
		if u.SellAreaValue() <= 0 {
			r.AddWarning(Result{
				Level:       LevelUnits,
				Message:     fmt.Sprintf("unit %q has no usable sell area and is excluded from averages", u.Name),
				Path:        path + ".sell_area",
				ActualValue: u.SellArea,
			})
		}
		if s := strings.TrimSpace(u.ACArea); s != "" {
			if _, ok := units.ParseNumber(s); !ok {
				r.AddWarning(Result{
					Level:       LevelUnits,
					Message:     fmt.Sprintf("unit %q ac area %q is not a finite number; treated as 0", u.Name, u.ACArea),
					Path:        path + ".ac_area",
					ActualValue: u.ACArea,
				})
			}
		}
		if _, err := strconv.Atoi(strings.TrimSpace(u.Floor)); err != nil {
			r.AddWarning(Result{
				Level:       LevelUnits,
				Message:     fmt.Sprintf("unit %q floor %q is not a plain number; priced as floor %d", u.Name, u.Floor, u.FloorNumber()),
				Path:        path + ".floor",
				ActualValue: u.Floor,
			})
		}
		if c.BedroomType(u.Type) == nil {
			missingTypes[u.Type] = true
		}
		if u.View != "" && c.View(u.View) == nil {
			missingViews[u.View] = true
		}
	}

	for _, t := range sortedKeys(missingTypes) {
		r.AddInfo(Result{
			Level:   LevelUnits,
			Message: fmt.Sprintf("bedroom type %q has no pricing entry; base_psf %.2f applies", t, c.BasePsf),
			Path:    "bedroom_type_pricing",
		})
	}
	for _, v := range sortedKeys(missingViews) {
		r.AddInfo(Result{
			Level:   LevelUnits,
			Message: fmt.Sprintf("view %q has no pricing entry; no adjustment applies", v),
			Path:    "view_pricing",
		})
	}
	return r
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
