package pricing

import (
	"testing"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestPremiumJumpRule(t *testing.T) {
	bands := []FloorBand{{Start: 1, End: 20, Increment: 10, JumpEvery: 5, JumpIncrement: 50}}

	assert.Equal(t, 10.0, Premium(1, bands))
	assert.Equal(t, 40.0, Premium(4, bands))
	assert.Equal(t, 50.0, Premium(5, bands))
	assert.Equal(t, 110.0, Premium(6, bands), "first jump lands five floors above the start")
	assert.Equal(t, 150.0, Premium(10, bands))
	assert.Equal(t, 350.0, Premium(20, bands))
	assert.Equal(t, 350.0, Premium(35, bands), "floors past the last band keep the accumulated premium")
}

func TestIsJumpFloor(t *testing.T) {
	b := FloorBand{Start: 11, End: 30, JumpEvery: 5}
	assert.False(t, IsJumpFloor(11, b))
	assert.True(t, IsJumpFloor(16, b))
	assert.False(t, IsJumpFloor(17, b))
	assert.True(t, IsJumpFloor(21, b))
	assert.False(t, IsJumpFloor(16, FloorBand{Start: 11, End: 30}))
}

func TestPremiumZeroBelowRange(t *testing.T) {
	bands := []FloorBand{{Start: 5, End: 10, Increment: 20}, {Start: 11, End: 15, Increment: 30}}
	for f := -1; f < 5; f++ {
		assert.Zero(t, Premium(f, bands), "floor %d", f)
	}
	assert.Zero(t, Premium(7, nil))
}

func TestPremiumMultipleBands(t *testing.T) {
	// Given out of order; sorting by start floor must not depend on input order.
	bands := []FloorBand{
		{Start: 11, End: 20, Increment: 20},
		{Start: 1, End: 10, Increment: 10},
	}
	assert.Equal(t, 100.0, Premium(10, bands))
	assert.Equal(t, 120.0, Premium(11, bands))
	assert.Equal(t, 300.0, Premium(20, bands))
}

func TestPremiumGapKeepsAccumulated(t *testing.T) {
	bands := []FloorBand{{Start: 1, End: 5, Increment: 10}, {Start: 10, End: 15, Increment: 20}}
	assert.Equal(t, 50.0, Premium(7, bands))
	assert.Equal(t, 70.0, Premium(10, bands))
}

func TestPremiumOverlapFirstMatchWins(t *testing.T) {
	bands := []FloorBand{{Start: 1, End: 10, Increment: 10}, {Start: 5, End: 15, Increment: 100}}
	// Floor 7 sits in the first band, so the second never applies.
	assert.Equal(t, 70.0, Premium(7, bands))
	// Floor 12 walks the whole first band, then the second from its own start.
	assert.Equal(t, 100.0+8*100.0, Premium(12, bands))
}

func TestPremiumMonotonic(t *testing.T) {
	bands := []FloorBand{
		{Start: 1, End: 10, Increment: 5},
		{Start: 11, End: 20, Increment: 8, JumpEvery: 3, JumpIncrement: 25},
		{Start: 25, End: 60, Increment: 0, JumpEvery: 4, JumpIncrement: 40},
	}
	prev := Premium(1, bands)
	for f := 2; f <= 70; f++ {
		cur := Premium(f, bands)
		require.GreaterOrEqual(t, cur, prev, "premium decreased at floor %d", f)
		prev = cur
	}
}

func TestResolveFloorRules(t *testing.T) {
	rules := []config.FloorRule{
		{StartFloor: 1, EndFloor: intPtr(10), PsfIncrement: 5},
		{StartFloor: 11, PsfIncrement: 7, JumpEveryFloor: 5, JumpIncrement: 30},
	}
	bands := ResolveFloorRules(rules, 40)
	require.Len(t, bands, 2)
	assert.Equal(t, FloorBand{Start: 1, End: 10, Increment: 5}, bands[0])
	assert.Equal(t, FloorBand{Start: 11, End: 40, Increment: 7, JumpEvery: 5, JumpIncrement: 30}, bands[1])
}

func TestPremiumTable(t *testing.T) {
	bands := []FloorBand{{Start: 1, End: 20, Increment: 10, JumpEvery: 5, JumpIncrement: 50}}
	rows := PremiumTable(12, bands)
	require.Len(t, rows, 12)
	assert.Equal(t, FloorPremium{Floor: 6, Premium: 110, Jump: true}, rows[5])
	assert.False(t, rows[4].Jump)
	assert.True(t, rows[10].Jump)
}
