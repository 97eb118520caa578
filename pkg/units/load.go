package units

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DJKarma/price-prism/pkg/config"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// ProjectFiles are the unit file names LoadProject looks for, in order.
var ProjectFiles = []string{"units.yaml", "units.yml", "units.xlsx"}

type unitsFile struct {
	Units []Unit `yaml:"units"`
}

// LoadFile reads units from a YAML or XLSX file, chosen by extension.
func LoadFile(path string) ([]Unit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening units workbook: %w", err)
		}
		defer f.Close()
		return ReadXLSX(f)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading units file: %w", err)
		}
		return ParseYAML(data)
	}
}

// ParseYAML decodes a document with a top-level units list.
func ParseYAML(data []byte) ([]Unit, error) {
	var doc unitsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing units YAML: %w", err)
	}
	return doc.Units, nil
}

// LoadProject loads the unit inventory from a project directory.
func LoadProject(projectDir string) ([]Unit, error) {
	path, err := config.FindProjectFile(projectDir, ProjectFiles)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// headerFields maps normalized sheet headers to unit fields.
var headerFields = map[string]string{
	"name":          "name",
	"unit":          "name",
	"unit no":       "name",
	"unit name":     "name",
	"type":          "type",
	"bedroom type":  "type",
	"bedrooms":      "type",
	"view":          "view",
	"floor":         "floor",
	"floor level":   "floor",
	"sell area":     "sell_area",
	"saleable area": "sell_area",
	"ac area":       "ac_area",
	"a/c area":      "ac_area",
	"balcony":       "balcony_area",
	"balcony area":  "balcony_area",
}

// ReadXLSX reads units from the first sheet of a workbook. The first row is
// the header; recognized headers fill unit fields and every other header
// becomes an attribute column.
func ReadXLSX(r io.Reader) ([]Unit, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing units workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("units workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]Unit, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		var u Unit
		for i, h := range header {
			if i >= len(row) || strings.TrimSpace(h) == "" {
				continue
			}
			cell := strings.TrimSpace(row[i])
			switch headerFields[strings.ToLower(strings.TrimSpace(h))] {
			case "name":
				u.Name = cell
			case "type":
				u.Type = cell
			case "view":
				u.View = cell
			case "floor":
				u.Floor = cell
			case "sell_area":
				u.SellArea = cell
			case "ac_area":
				u.ACArea = cell
			case "balcony_area":
				u.BalconyArea = cell
			default:
				if u.Attributes == nil {
					u.Attributes = make(map[string]string)
				}
				u.Attributes[strings.TrimSpace(h)] = cell
			}
		}
		out = append(out, u)
	}
	return out, nil
}

// WriteXLSX writes units in the layout ReadXLSX accepts. Attribute columns
// are given in order.
func WriteXLSX(w io.Writer, us []Unit, attributes []string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := append([]string{"Name", "Type", "View", "Floor", "Sell Area", "AC Area", "Balcony Area"}, attributes...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, u := range us {
		row := []any{u.Name, u.Type, u.View, u.Floor, u.SellArea, u.ACArea, u.BalconyArea}
		for _, a := range attributes {
			row = append(row, u.Attributes[a])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("encoding workbook: %w", err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
