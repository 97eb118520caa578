package pricing

import (
	"math"
	"testing"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		BasePsf: 900,
		BedroomTypePricing: []config.BedroomTypePricing{
			{Type: "1BR", BasePsf: 1000, TargetAvgPsf: 1100},
			{Type: "2BR", BasePsf: 1200, TargetAvgPsf: 1300},
		},
		ViewPricing: []config.ViewPricing{
			{View: "Sea", PsfAdjustment: 100},
			{View: "City", PsfAdjustment: 40},
		},
		FloorRiseRules: []config.FloorRule{
			{StartFloor: 1, EndFloor: intPtr(10), PsfIncrement: 10},
		},
		AdditionalCategoryPricing: []config.CategoryPricing{
			{Column: "Position", Category: "Corner", PsfAdjustment: 50},
			{Column: "Furnishing", Category: "Furnished", PsfAdjustment: 30},
		},
	}
}

func TestEvaluateComponents(t *testing.T) {
	u := units.Unit{
		Name: "A-301", Type: "2BR", View: "Sea", Floor: "3",
		SellArea: "1000", ACArea: "800",
		Attributes: map[string]string{"Position": "Corner", "Furnishing": "Bare"},
	}
	p := Evaluate(u, testConfig(), ModeApartment, nil)

	assert.Equal(t, 1200.0, p.BasePsf)
	assert.Equal(t, 100.0, p.ViewPsfAdjustment)
	assert.Equal(t, 30.0, p.FloorAdjustment)
	assert.Equal(t, 50.0, p.AdditionalAdjustment)
	assert.Equal(t, map[string]float64{"Position": 50}, p.AdditionalBreakdown)
	assert.Equal(t, 1380.0, p.PsfAfterAllAdjustments)
	assert.Equal(t, 1000.0, p.EffectiveArea)
	assert.Equal(t, 1380000.0, p.TotalPrice)
	assert.Equal(t, 1380000.0, p.FinalTotalPrice)
	assert.Equal(t, 1380.0, p.FinalPsf)
	assert.Equal(t, 1725.0, p.FinalAcPsf)
	assert.Equal(t, "A-301", p.Name)
}

func TestEvaluateFallbacks(t *testing.T) {
	u := units.Unit{Name: "X", Type: "Studio", View: "Park", Floor: "ground", SellArea: "500", ACArea: "500"}
	p := Evaluate(u, testConfig(), ModeApartment, nil)

	assert.Equal(t, 900.0, p.BasePsf, "unknown type falls back to the global base")
	assert.Zero(t, p.ViewPsfAdjustment)
	assert.Equal(t, 10.0, p.FloorAdjustment, "unparseable floor is treated as floor 1")
	assert.Zero(t, p.AdditionalAdjustment)
	assert.Nil(t, p.AdditionalBreakdown)
}

func TestEvaluateOverrides(t *testing.T) {
	u := units.Unit{Type: "1BR", View: "City", Floor: "4", SellArea: "1000", ACArea: "1000"}
	ov := &Overrides{
		BasePsf:         map[string]float64{"1BR": 1500},
		ViewAdjustments: map[string]float64{"City": 0},
		FloorBands:      []FloorBand{{Start: 1, End: 10, Increment: 25}},
	}
	p := Evaluate(u, testConfig(), ModeApartment, ov)
	assert.Equal(t, 1500.0, p.BasePsf)
	assert.Zero(t, p.ViewPsfAdjustment)
	assert.Equal(t, 100.0, p.FloorAdjustment)

	// Empty override maps leave configured values in place.
	p = Evaluate(u, testConfig(), ModeApartment, &Overrides{})
	assert.Equal(t, 1000.0, p.BasePsf)
	assert.Equal(t, 40.0, p.ViewPsfAdjustment)
	assert.Equal(t, 40.0, p.FloorAdjustment)
}

func TestAreaWeightedAverage(t *testing.T) {
	cfg := &config.Config{
		BedroomTypePricing: []config.BedroomTypePricing{
			{Type: "A", BasePsf: 2000},
			{Type: "B", BasePsf: 1000},
		},
	}
	us := []units.Unit{
		{Name: "A", Type: "A", SellArea: "100", ACArea: "100"},
		{Name: "B", Type: "B", SellArea: "300", ACArea: "300"},
	}
	e := NewEngine(cfg, ModeApartment)
	priced := e.Simulate(us, nil)
	require.Len(t, priced, 2)
	assert.Equal(t, 200000.0, priced[0].FinalTotalPrice)
	assert.Equal(t, 300000.0, priced[1].FinalTotalPrice)

	assert.InDelta(t, 1250.0, e.OverallAveragePsf(us, nil), 1e-9)
	assert.InDelta(t, 1250.0, AveragePsf(priced, ModeApartment), 1e-9)

	simpleMean := (priced[0].FinalPsf + priced[1].FinalPsf) / 2
	assert.Equal(t, 1500.0, simpleMean)
}

func TestAverageSkipsInvalidUnits(t *testing.T) {
	cfg := &config.Config{BasePsf: 1000}
	us := []units.Unit{
		{Name: "ok", SellArea: "100"},
		{Name: "no-area", SellArea: ""},
	}
	assert.InDelta(t, 1000.0, NewEngine(cfg, ModeApartment).OverallAveragePsf(us, nil), 1e-9)
	assert.Zero(t, NewEngine(cfg, ModeApartment).OverallAveragePsf(nil, nil))
}

func TestAverageSkipsNonFiniteAreas(t *testing.T) {
	cfg := &config.Config{BasePsf: 1000}
	us := []units.Unit{
		{Name: "a", SellArea: "1000"},
		{Name: "b", SellArea: "NaN", ACArea: "Inf"},
	}
	e := NewEngine(cfg, ModeApartment)
	avg := e.OverallAveragePsf(us, nil)
	assert.False(t, math.IsNaN(avg))
	assert.InDelta(t, 1000.0, avg, 1e-9)

	b := e.Evaluate(us[1], nil)
	assert.Zero(t, b.FinalTotalPrice)
}

func TestCeilingInvariant(t *testing.T) {
	cfg, err := config.LoadProject("../../examples/default-project")
	require.NoError(t, err)
	us, err := units.LoadProject("../../examples/default-project")
	require.NoError(t, err)

	for _, p := range Simulate(us, cfg, ModeApartment, nil) {
		assert.Zero(t, math.Mod(p.FinalTotalPrice, 1000), "unit %s", p.Name)
		assert.GreaterOrEqual(t, p.FinalTotalPrice, p.TotalPrice+p.FlatAddersTotal, "unit %s", p.Name)
		assert.Less(t, p.FinalTotalPrice-(p.TotalPrice+p.FlatAddersTotal), 1000.0, "unit %s", p.Name)
	}
}

func TestFlatAdderBeforeCeiling(t *testing.T) {
	cfg := &config.Config{
		BedroomTypePricing: []config.BedroomTypePricing{{Type: "2BR", BasePsf: 1000.5}},
		FlatPriceAdders: []config.FlatAdder{
			{Units: []string{"U-101"}, Amount: 5000},
			{Columns: map[string][]string{"Position": {"Corner", "End"}, "type": {"2BR"}}, Amount: 800},
			{Columns: map[string][]string{"Position": {"Middle"}}, Amount: 99999},
		},
	}
	u := units.Unit{Name: "U-101", Type: "2BR", SellArea: "1000", ACArea: "1000", Attributes: map[string]string{"Position": "Corner"}}

	p := Evaluate(u, cfg, ModeApartment, nil)
	assert.Equal(t, 1000500.0, p.TotalPrice)
	assert.Equal(t, 5800.0, p.FlatAddersTotal)
	// ceil(1,006,300) rather than ceil(1,000,500) + 5,800.
	assert.Equal(t, 1007000.0, p.FinalTotalPrice)

	other := units.Unit{Name: "U-102", Type: "2BR", SellArea: "1000", Attributes: map[string]string{"Position": "Middle"}}
	assert.Equal(t, 99999.0, Evaluate(other, cfg, ModeApartment, nil).FlatAddersTotal)
}

func TestVillaUsesACArea(t *testing.T) {
	cfg := &config.Config{BasePsf: 1000, BalconyPricing: &config.BalconyPricing{FullAreaPct: 0, RemainderRate: 0}}
	u := units.Unit{SellArea: "3000", ACArea: "2500"}

	p := Evaluate(u, cfg, ModeVilla, nil)
	assert.Equal(t, 2500.0, p.EffectiveArea)
	assert.Equal(t, 2500000.0, p.FinalTotalPrice)
	assert.InDelta(t, 1000.0, p.FinalAcPsf, 1e-9)
	assert.InDelta(t, 2500000.0/3000, p.FinalPsf, 1e-9)
}

func TestBalconyPricing(t *testing.T) {
	cfg := &config.Config{BasePsf: 1000, BalconyPricing: &config.BalconyPricing{FullAreaPct: 50, RemainderRate: 0.5}}
	u := units.Unit{SellArea: "1100", ACArea: "1000", BalconyArea: "100"}

	p := Evaluate(u, cfg, ModeApartment, nil)
	assert.InDelta(t, 1075.0, p.EffectiveArea, 1e-9)
	assert.Equal(t, 1075000.0, p.FinalTotalPrice)

	cfg.BalconyPricing = nil
	assert.Equal(t, 1100.0, Evaluate(u, cfg, ModeApartment, nil).EffectiveArea)
}

func TestZeroAreaGuards(t *testing.T) {
	p := Evaluate(units.Unit{Name: "empty"}, &config.Config{BasePsf: 1000}, ModeApartment, nil)
	assert.Zero(t, p.FinalTotalPrice)
	assert.Zero(t, p.FinalPsf)
	assert.Zero(t, p.FinalAcPsf)
	assert.False(t, math.IsNaN(p.FinalPsf))
}

func TestNegativeSumIsNotClamped(t *testing.T) {
	cfg := &config.Config{BasePsf: 100, ViewPricing: []config.ViewPricing{{View: "Wall", PsfAdjustment: -300}}}
	p := Evaluate(units.Unit{View: "Wall", SellArea: "1000"}, cfg, ModeApartment, nil)
	assert.Equal(t, -200.0, p.PsfAfterAllAdjustments)
	assert.Equal(t, -200000.0, p.FinalTotalPrice)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	attrs := map[string]string{"Position": "Corner"}
	u := units.Unit{Name: "A", Type: "1BR", SellArea: "700", Attributes: attrs}
	_ = Evaluate(u, testConfig(), ModeApartment, nil)
	assert.Equal(t, map[string]string{"Position": "Corner"}, attrs)
	assert.Equal(t, "700", u.SellArea)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeApartment, m)
	m, err = ParseMode("villa")
	require.NoError(t, err)
	assert.Equal(t, ModeVilla, m)
	_, err = ParseMode("castle")
	assert.Error(t, err)
}

func TestFilterByType(t *testing.T) {
	us := []units.Unit{{Name: "a", Type: "1BR"}, {Name: "b", Type: "2BR"}, {Name: "c", Type: "1BR"}}
	assert.Len(t, FilterByType(us), 3)
	got := FilterByType(us, "1BR")
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[1].Name)
	assert.Empty(t, FilterByType(us, "3BR"))
}
