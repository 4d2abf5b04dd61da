// Package export writes survey sample logs as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/fieldsurvey/internal/report"
)

const (
	AsbestosSheet    = "Asbestos Samples"
	AreasSheet       = "Homogeneous Areas"
	PaintSheet       = "Paint Samples"
	defaultSheetName = "Sheet1"
)

var asbestosHeader = []string{
	"Sample", "Functional Area", "Homogeneous Area", "Location", "Material",
	"Asbestos Type", "Asbestos %", "Quantity", "Condition", "Collection Method",
	"Results", "Notes",
}

var areasHeader = []string{"Code", "Title", "Description", "Samples", "Total Quantity"}

var paintHeader = []string{
	"Sample", "Functional Area", "Location", "Substrate", "Color", "Condition",
	"Collection Method", "Lead (ppm)", "Cadmium (ppm)", "Notes",
}

// SampleWorkbook builds the sample log workbook for a survey. Cell text uses
// the same formatting and placeholders as the HTML report; percentages and
// quantity totals are written as numbers when present.
func SampleWorkbook(s report.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheetName, AsbestosSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{AreasSheet, PaintSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, AsbestosSheet, asbestosHeader, headerStyle, asbestosRows(s)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, AreasSheet, areasHeader, headerStyle, areaRows(s)); err != nil {
		return nil, err
	}
	if err := writeSheet(f, PaintSheet, paintHeader, headerStyle, paintRows(s)); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, headerStyle int, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set %s header style: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("failed to convert column: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set %s column width: %w", sheet, err)
	}
	return nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return report.Placeholder
	}
	return s
}

func numberOrPlaceholder(v *float64) any {
	if v == nil {
		return report.Placeholder
	}
	return *v
}

func asbestosRows(s report.Snapshot) [][]any {
	var rows [][]any
	for _, r := range report.ExplodeLayers(s.AsbestosSamples, s.Layers) {
		sample := r.Sample
		rows = append(rows, []any{
			r.Label(),
			orPlaceholder(sample.FunctionalArea),
			orPlaceholder(sample.HomogeneousArea),
			orPlaceholder(sample.Location),
			orPlaceholder(report.FormatMaterialType(r.MaterialType())),
			orPlaceholder(report.SentenceCaseIfSingleWord(r.AsbestosType())),
			numberOrPlaceholder(r.Percent()),
			orPlaceholder(sample.EstimatedQuantity),
			orPlaceholder(report.FormatStatus(sample.Condition)),
			orPlaceholder(report.SentenceCaseIfSingleWord(sample.CollectionMethod)),
			orPlaceholder(sample.Results),
			orPlaceholder(r.Notes()),
		})
	}
	return rows
}

func areaRows(s report.Snapshot) [][]any {
	rollups := report.RollupByHomogeneousArea(s.AsbestosSamples)
	var rows [][]any
	for _, ha := range report.SortHomogeneousAreas(s.HomogeneousAreas) {
		r := rollups[ha.Code]
		var total any = report.Placeholder
		if r.Total > 0 {
			total = r.Total
		}
		rows = append(rows, []any{
			orPlaceholder(ha.Code),
			ha.Title,
			orPlaceholder(ha.Description),
			r.Count,
			total,
		})
	}
	return rows
}

func paintRows(s report.Snapshot) [][]any {
	var rows [][]any
	for _, p := range s.PaintSamples {
		rows = append(rows, []any{
			p.SampleNumber,
			orPlaceholder(p.FunctionalArea),
			orPlaceholder(p.Location),
			orPlaceholder(report.FormatSubstrate(p)),
			orPlaceholder(report.SentenceCaseIfSingleWord(p.Color)),
			orPlaceholder(report.FormatStatus(p.Condition)),
			orPlaceholder(report.SentenceCaseIfSingleWord(p.CollectionMethod)),
			report.FormatOptionalNumber(p.LeadResult, ""),
			report.FormatOptionalNumber(p.CadmiumResult, ""),
			orPlaceholder(p.Notes),
		})
	}
	return rows
}
