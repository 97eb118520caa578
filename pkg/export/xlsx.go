// Package export writes priced units to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/DJKarma/price-prism/pkg/analytics"
	"github.com/DJKarma/price-prism/pkg/pricing"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	UnitsSheet   = "Priced Units"
	SummarySheet = "Summary"
)

var unitColumns = []string{
	"Name", "Type", "View", "Floor", "Sell Area", "AC Area", "Balcony Area",
}

var priceColumns = []string{
	"Base PSF", "View Adjustment", "Floor Adjustment", "Additional Adjustment",
	"PSF After Adjustments", "Effective Area", "Total Price", "Flat Adders",
	"Final Total Price", "Final PSF", "Final AC PSF",
}

var summaryColumns = []string{
	"Group", "Key", "Units", "Total Value", "Total Area", "Average PSF", "Min PSF", "Max PSF", "Target PSF", "Gap",
}

// WriteXLSX writes one row per priced unit, with every pricing component,
// to w. Attribute columns follow the unit columns in name order. A non-nil
// summary adds a second sheet with the grouped statistics.
func WriteXLSX(w io.Writer, priced []pricing.PricedUnit, summary *analytics.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", UnitsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	attrs := attributeColumns(priced)
	columns := append(append(append([]string{}, unitColumns...), attrs...), priceColumns...)
	if err := writeHeader(f, UnitsSheet, columns, header); err != nil {
		return err
	}
	for i, p := range priced {
		row := []any{p.Name, p.Type, p.View, p.Floor, p.SellAreaValue(), p.ACAreaValue(), p.Balcony()}
		for _, a := range attrs {
			row = append(row, p.Attributes[a])
		}
		row = append(row,
			p.BasePsf, p.ViewPsfAdjustment, p.FloorAdjustment, p.AdditionalAdjustment,
			p.PsfAfterAllAdjustments, p.EffectiveArea, p.TotalPrice, p.FlatAddersTotal,
			p.FinalTotalPrice, p.FinalPsf, p.FinalAcPsf,
		)
		if err := writeRow(f, UnitsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := freezeHeader(f, UnitsSheet); err != nil {
		return err
	}

	if summary != nil {
		if err := writeSummary(f, summary, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("encoding workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, s *analytics.Summary, header int) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeHeader(f, SummarySheet, summaryColumns, header); err != nil {
		return err
	}

	row := 2
	add := func(group string, g analytics.GroupStats, extra ...any) error {
		values := append([]any{group, g.Key, g.Count, g.TotalValue, g.TotalArea, g.AveragePsf, g.MinPsf, g.MaxPsf}, extra...)
		err := writeRow(f, SummarySheet, row, values)
		row++
		return err
	}

	total := analytics.GroupStats{
		Key: string(s.Mode), Count: s.PricedCount, TotalValue: s.TotalValue, TotalArea: s.TotalArea,
		AveragePsf: s.AveragePsf, MinPsf: s.MinPsf, MaxPsf: s.MaxPsf,
	}
	if err := add("Portfolio", total); err != nil {
		return err
	}
	for _, ts := range s.ByType {
		var extra []any
		if ts.TargetPsf > 0 {
			extra = []any{ts.TargetPsf, ts.Gap}
		}
		if err := add("Bedroom Type", ts.GroupStats, extra...); err != nil {
			return err
		}
	}
	for _, g := range s.ByView {
		if err := add("View", g); err != nil {
			return err
		}
	}
	for _, g := range s.ByFloor {
		if err := add("Floor", g); err != nil {
			return err
		}
	}
	return freezeHeader(f, SummarySheet)
}

func headerStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return 0, fmt.Errorf("creating header style: %w", err)
	}
	return style, nil
}

func writeHeader(f *excelize.File, sheet string, columns []string, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) error {
	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("freezing %s header: %w", sheet, err)
	}
	return nil
}

func attributeColumns(priced []pricing.PricedUnit) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range priced {
		for k := range p.Attributes {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}
