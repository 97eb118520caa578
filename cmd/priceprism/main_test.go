package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleDir = "../../examples/default-project"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func copyProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"pricing.yaml", "units.yaml"} {
		data, err := os.ReadFile(filepath.Join(exampleDir, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", exampleDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Result: VALID")
}

func TestValidateCommandInvalid(t *testing.T) {
	dir := copyProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.yaml"), []byte("base_psf: -10\n"), 0o644))

	out, err := execute(t, "validate", dir)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "Result: INVALID")
	assert.Contains(t, out, "base_psf must be non-negative")
}

func TestPriceCommandTable(t *testing.T) {
	out, err := execute(t, "price", exampleDir)
	require.NoError(t, err)
	assert.Contains(t, out, "A-3001")
	assert.Contains(t, out, "Average PSF")
	assert.Contains(t, out, "Bedroom Type")
}

func TestPriceCommandJSON(t *testing.T) {
	out, err := execute(t, "price", exampleDir, "--format", "json")
	require.NoError(t, err)

	var priced struct {
		Mode  string           `json:"mode"`
		Units []map[string]any `json:"units"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &priced))
	assert.Equal(t, "apartment", priced.Mode)
	assert.Len(t, priced.Units, 12)
}

func TestPriceCommandXLSX(t *testing.T) {
	_, err := execute(t, "price", exampleDir, "--format", "xlsx")
	assert.ErrorContains(t, err, "--out")

	path := filepath.Join(t.TempDir(), "priced.xlsx")
	_, err = execute(t, "price", exampleDir, "--format", "xlsx", "--out", path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = execute(t, "price", exampleDir, "--format", "csv")
	assert.ErrorContains(t, err, "unknown format")
}

func TestPriceCommandJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priced.json")
	out, err := execute(t, "price", exampleDir, "--format", "json", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var priced struct {
		Units []map[string]any `json:"units"`
	}
	require.NoError(t, json.Unmarshal(data, &priced))
	assert.Len(t, priced.Units, 12)

	_, err = execute(t, "price", exampleDir, "--format", "json", "--out", t.TempDir())
	assert.ErrorContains(t, err, "creating output file")
}

func TestFloorsCommand(t *testing.T) {
	out, err := execute(t, "floors", exampleDir, "--max", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2+5)
}

func TestOptimizeCommand(t *testing.T) {
	out, err := execute(t, "optimize", exampleDir,
		"--scope", "single", "--type", "2BR", "--max-iterations", "3", "--format", "json")
	require.NoError(t, err)

	var res struct {
		Scope      string  `json:"scope"`
		TargetPsf  float64 `json:"target_psf"`
		Iterations int     `json:"iterations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "single", res.Scope)
	assert.Equal(t, 1400.0, res.TargetPsf)
	assert.LessOrEqual(t, res.Iterations, 3)

	_, err = execute(t, "optimize", exampleDir, "--scope", "mega")
	assert.ErrorContains(t, err, "target")
}

func TestOptimizeCommandWrite(t *testing.T) {
	dir := copyProject(t)
	before, err := config.LoadProject(dir)
	require.NoError(t, err)

	out, err := execute(t, "optimize", dir, "--scope", "full", "--target", "1300", "--max-iterations", "5", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "Optimization (full)")

	after, err := config.LoadProject(dir)
	require.NoError(t, err)
	require.Len(t, after.FloorRiseRules, len(before.FloorRiseRules))
	assert.Nil(t, after.FloorRiseRules[2].EndFloor)
	assert.Len(t, after.BedroomTypePricing, 3)
	assert.Equal(t, before.AdditionalCategoryPricing, after.AdditionalCategoryPricing)
	assert.NotEqual(t, before.BedroomTypePricing, after.BedroomTypePricing)
}

func TestRootRejectsBadLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-level", "loud", "validate", exampleDir})
	assert.ErrorContains(t, cmd.Execute(), "log level")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "950", formatMoney(950))
	assert.Equal(t, "13K", formatMoney(12_600))
	assert.Equal(t, "2.40M", formatMoney(2_400_000))
	assert.Equal(t, "1.25B", formatMoney(1_250_000_000))
}
