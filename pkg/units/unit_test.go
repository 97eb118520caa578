package units

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloorNumber(t *testing.T) {
	cases := map[string]int{
		"12":  12,
		" 7 ": 7,
		"12A": 12,
		"G":   1,
		"":    1,
		"PH":  1,
		"0":   0,
		"-2":  -2,
		"3rd": 3,
	}
	for label, want := range cases {
		assert.Equal(t, want, Unit{Floor: label}.FloorNumber(), "floor %q", label)
	}
}

func TestAreasDefaultToZero(t *testing.T) {
	u := Unit{SellArea: "1,250.5", ACArea: "n/a"}
	assert.Equal(t, 1250.5, u.SellAreaValue())
	assert.Equal(t, 0.0, u.ACAreaValue())
}

func TestParseNumberRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "Inf", "-Inf", "+Infinity", "1e400"} {
		_, ok := ParseNumber(s)
		assert.False(t, ok, "ParseNumber(%q)", s)
	}
	v, ok := ParseNumber(" 2,400 ")
	assert.True(t, ok)
	assert.Equal(t, 2400.0, v)

	u := Unit{SellArea: "NaN", ACArea: "Inf"}
	assert.Zero(t, u.SellAreaValue())
	assert.Zero(t, u.ACAreaValue())
	assert.Zero(t, u.Balcony())
}

func TestBalcony(t *testing.T) {
	assert.Equal(t, 120.0, Unit{SellArea: "1100", ACArea: "1000", BalconyArea: "120"}.Balcony())
	assert.Equal(t, 100.0, Unit{SellArea: "1100", ACArea: "1000"}.Balcony())
	assert.Equal(t, 0.0, Unit{SellArea: "900", ACArea: "1000"}.Balcony())
	assert.Equal(t, 0.0, Unit{SellArea: "1100", ACArea: "1000", BalconyArea: "0"}.Balcony())
}

func TestValue(t *testing.T) {
	u := Unit{
		Name:       "A-101",
		Type:       "2BR",
		View:       "Sea",
		Floor:      "4",
		Attributes: map[string]string{"Position": "Corner", "view": "override"},
	}
	assert.Equal(t, "Corner", u.Value("Position"))
	assert.Equal(t, "", u.Value("position"))
	assert.Equal(t, "A-101", u.Value("Name"))
	assert.Equal(t, "2BR", u.Value("Bedroom Type"))
	assert.Equal(t, "Sea", u.Value("View"))
	assert.Equal(t, "override", u.Value("view"))
	assert.Equal(t, "4", u.Value("floor"))
	assert.Equal(t, "", u.Value("Furnishing"))
}

func TestMaxFloor(t *testing.T) {
	assert.Equal(t, 0, MaxFloor(nil))
	assert.Equal(t, 21, MaxFloor([]Unit{{Floor: "3"}, {Floor: "21"}, {Floor: "x"}}))
}

func TestLoadProject(t *testing.T) {
	us, err := LoadProject("../../examples/default-project")
	require.NoError(t, err)
	require.Len(t, us, 12)

	first := us[0]
	assert.Equal(t, "A-0201", first.Name)
	assert.Equal(t, "1BR", first.Type)
	assert.Equal(t, 2, first.FloorNumber())
	assert.Equal(t, 720.0, first.SellAreaValue())
	assert.Equal(t, "Middle", first.Value("Position"))
	assert.Equal(t, 30, MaxFloor(us))
}

func TestXLSXRoundTrip(t *testing.T) {
	in := []Unit{
		{Name: "V-01", Type: "4BR", View: "Park", Floor: "1", SellArea: "3200", ACArea: "2900", Attributes: map[string]string{"Plot": "Corner"}},
		{Name: "V-02", Type: "5BR", View: "Lake", Floor: "G", SellArea: "4100", ACArea: "3650", BalconyArea: "200"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in, []string{"Plot"}))

	out, err := ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "V-01", out[0].Name)
	assert.Equal(t, "Corner", out[0].Value("Plot"))
	assert.Equal(t, 2900.0, out[0].ACAreaValue())
	assert.Equal(t, "G", out[1].Floor)
	assert.Equal(t, 1, out[1].FloorNumber())
	assert.Equal(t, 200.0, out[1].Balcony())
	assert.Equal(t, "", out[1].Value("Plot"))
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := ReadXLSX(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
