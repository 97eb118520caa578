package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/DJKarma/price-prism/pkg/optimize"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/DJKarma/price-prism/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleDir = "../../examples/default-project"

func TestLoadExample(t *testing.T) {
	p, err := Load(exampleDir)
	require.NoError(t, err)
	assert.Len(t, p.Units, 12)

	mode, err := p.Mode("")
	require.NoError(t, err)
	assert.Equal(t, pricing.ModeApartment, mode)

	mode, err = p.Mode("villa")
	require.NoError(t, err)
	assert.Equal(t, pricing.ModeVilla, mode)

	_, err = p.Mode("castle")
	assert.Error(t, err)

	assert.True(t, p.Validate().Valid)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "loading config")
}

func TestPrice(t *testing.T) {
	p, err := Load(exampleDir)
	require.NoError(t, err)

	out, err := p.Price(pricing.ModeApartment)
	require.NoError(t, err)
	assert.Len(t, out.Units, 12)
	assert.Equal(t, 12, out.Summary.PricedCount)
	assert.True(t, out.Report.Valid)
	assert.InDelta(t, pricing.AveragePsf(out.Units, pricing.ModeApartment), out.Summary.AveragePsf, 1e-9)
}

func TestFloorTable(t *testing.T) {
	p, err := Load(exampleDir)
	require.NoError(t, err)

	rows := p.FloorTable(0)
	require.Len(t, rows, 30)
	assert.Equal(t, 5.0, rows[0].Premium)
	assert.False(t, rows[14].Jump)
	assert.Equal(t, 50.0+5*8, rows[14].Premium)
	// Floor 16 is the jump floor of the 11-20 rule.
	assert.True(t, rows[15].Jump)
	assert.Equal(t, 50.0+6*8+40, rows[15].Premium)

	assert.Len(t, p.FloorTable(5), 5)
}

func TestOptimizeUsesConfiguredSettings(t *testing.T) {
	p, err := Load(exampleDir)
	require.NoError(t, err)

	res, err := p.Optimize(optimize.ScopeSingle, optimize.Request{
		BedroomType: "2BR",
		Settings:    config.OptimizerSettings{MaxIterations: 5},
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 5)
	assert.Equal(t, 1400.0, res.TargetPsf)
}

func TestInvalidConfigBlocksPricing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pricing.yaml", `
base_psf: 1000
bedroom_type_pricing:
  - type: 1BR
    base_psf: -5
`)
	writeFile(t, dir, "units.yaml", `
units:
  - name: U1
    type: 1BR
    floor: "1"
    sell_area: "800"
`)

	p, err := Load(dir)
	require.NoError(t, err)

	_, err = p.Price(pricing.ModeApartment)
	var cerr *validation.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.False(t, cerr.Report.Valid)

	_, err = p.Optimize(optimize.ScopeSingle, optimize.Request{BedroomType: "1BR", Target: 900})
	assert.True(t, errors.As(err, &cerr))
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}
