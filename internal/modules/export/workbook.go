// Package export renders an analytics report as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/aristath/rentboard/internal/domain"
	"github.com/aristath/rentboard/internal/modules/analytics"
	"github.com/aristath/rentboard/internal/modules/classification"
)

// Sheet names
const (
	SheetPivot    = "Pivot"
	SheetSummary  = "Summary"
	SheetRejected = "Rejected"
)

// ClassColors are the cell fills of each class in the pivot sheet
var ClassColors = map[classification.Class]string{
	classification.Below:  "#E52916",
	classification.NoData: "#dfe6e9",
	classification.Near:   "#F1C40F",
	classification.Above:  "#27AE60",
}

// Workbook builds a workbook with the pivot, the performance summary and
// the rejected bookings of report.
func Workbook(report *analytics.Report) (*excelize.File, error) {
	if report == nil || report.Overview == nil {
		return nil, fmt.Errorf("export: empty report: %w", domain.ErrEmptyDataset)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPivot); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	if err := writePivot(f, report.Overview, header); err != nil {
		return nil, err
	}
	if report.Performance != nil {
		if err := writeSummary(f, report, header); err != nil {
			return nil, err
		}
	}
	if err := writeRejected(f, report.Overview.Rejected, header); err != nil {
		return nil, err
	}

	return f, nil
}

// Write builds the workbook and writes it to w
func Write(report *analytics.Report, w io.Writer) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: failed to write workbook: %w", err)
	}
	return nil
}

func writePivot(f *excelize.File, overview *analytics.Overview, header int) error {
	table, grid := overview.Table, overview.Grid

	classStyles := make(map[classification.Class]int, len(ClassColors))
	for class, color := range ClassColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			NumFmt:    4, // #,##0.00
			Alignment: &excelize.Alignment{Horizontal: "right"},
		})
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		classStyles[class] = style
	}

	title := fmt.Sprintf("%s %d (%s)", overview.Mode, overview.Year, overview.Owner)
	if err := f.SetCellValue(SheetPivot, "A1", title); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := f.SetCellValue(SheetPivot, "A2", "Property"); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for j, label := range table.MonthLabels() {
		cell, _ := excelize.CoordinatesToCellName(j+2, 2)
		if err := f.SetCellValue(SheetPivot, cell, label); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	totalCol := len(table.Months) + 2
	totalHeader, _ := excelize.CoordinatesToCellName(totalCol, 2)
	if err := f.SetCellValue(SheetPivot, totalHeader, "Total"); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetRowStyle(SheetPivot, 2, 2, header); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, property := range table.Properties {
		row := i + 3
		if err := f.SetCellValue(SheetPivot, fmt.Sprintf("A%d", row), property); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		for j, value := range table.Values[i] {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			if err := f.SetCellValue(SheetPivot, cell, round2(value)); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := f.SetCellStyle(SheetPivot, cell, cell, classStyles[grid.Cells[i][j]]); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(totalCol, row)
		if err := f.SetCellValue(SheetPivot, cell, round2(table.RowTotal(property))); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	// Legend
	legendRow := len(table.Properties) + 4
	for k, class := range []classification.Class{classification.Below, classification.Near, classification.Above, classification.NoData} {
		cell := fmt.Sprintf("A%d", legendRow+k)
		if err := f.SetCellValue(SheetPivot, cell, class.String()); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := f.SetCellStyle(SheetPivot, cell, cell, classStyles[class]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	_ = f.SetColWidth(SheetPivot, "A", "A", 20)
	return nil
}

func writeSummary(f *excelize.File, report *analytics.Report, header int) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cur := report.Currency
	headers := []interface{}{
		"Property", "Months active",
		"Total revenue (" + cur.Primary + ")",
		"Total threshold (" + cur.Primary + ")",
		"Real earnings (" + cur.Primary + ")",
		"Real earnings (" + cur.Secondary + ")",
		"Performance %",
	}
	if err := f.SetSheetRow(SheetSummary, "A1", &headers); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetRowStyle(SheetSummary, 1, 1, header); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, r := range report.Performance.Rows {
		var pct interface{} = round2(r.PerformancePct)
		if !r.PerformanceDefined {
			pct = "n/a"
		}
		values := []interface{}{
			r.PropertyCode,
			r.MonthsActive,
			round2(r.TotalRevenue),
			round2(r.TotalThreshold),
			round2(r.RealEarnings),
			round2(r.RealEarnings * cur.ConversionRate),
			pct,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetSummary, cell, &values); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	if len(report.Performance.Excluded) > 0 {
		start := len(report.Performance.Rows) + 3
		if err := f.SetCellValue(SheetSummary, fmt.Sprintf("A%d", start), "Excluded by policy"); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		for k, audit := range report.Performance.Excluded {
			values := []interface{}{audit.PropertyCode, audit.MonthsActive}
			if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", start+k+1), &values); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 20)
	_ = f.SetColWidth(SheetSummary, "B", "G", 18)
	return nil
}

func writeRejected(f *excelize.File, rejected []analytics.Rejection, header int) error {
	if _, err := f.NewSheet(SheetRejected); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	headers := []interface{}{"Confirmation code", "Property", "Reason"}
	if err := f.SetSheetRow(SheetRejected, "A1", &headers); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := f.SetRowStyle(SheetRejected, 1, 1, header); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for i, r := range rejected {
		values := []interface{}{r.ConfirmationCode, r.PropertyCode, r.Reason}
		if err := f.SetSheetRow(SheetRejected, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	_ = f.SetColWidth(SheetRejected, "A", "B", 20)
	_ = f.SetColWidth(SheetRejected, "C", "C", 50)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
