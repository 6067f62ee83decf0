package report

import (
	"errors"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"
)

// FieldSummary pairs a summarized field with its statistics, preserving the
// report's field order.
type FieldSummary struct {
	Field   string
	Summary *Summary
}

// WriteXLSX writes one worksheet per summarized field. Sheets mirror the
// text rendering: a header row, then one row per source column with the
// statistics ordered mean, std, min, max, nan_count. NaN statistics are
// written as the string "NaN" since cells cannot hold one as a number.
func WriteXLSX(fields []FieldSummary, path string) error {
	if len(fields) == 0 {
		return errors.New("no summaries to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, fs := range fields {
		sheet := fs.Field
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet, err)
		}

		if err := setCell(f, sheet, 1, 1, "name"); err != nil {
			return err
		}
		for j, statName := range textStats {
			if err := setCell(f, sheet, j+2, 1, statName); err != nil {
				return err
			}
		}

		for r, row := range fs.Summary.Rows() {
			if err := setCell(f, sheet, 1, r+2, row.Name); err != nil {
				return err
			}
			for j, statName := range textStats {
				var value any
				switch v := row.Stat(statName); {
				case statName == StatNaNCount:
					value = row.NaNCount
				case math.IsNaN(v):
					value = "NaN"
				default:
					value = v
				}
				if err := setCell(f, sheet, j+2, r+2, value); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// setCell writes one cell addressed by 1-based column and row coordinates.
func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell address (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
