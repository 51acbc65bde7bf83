package excel

import (
	"encoding/csv"
	"io"

	"datadesk/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the table with a header row; missing cells are empty
func WriteCSV(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	rec := make([]string, t.NumCols())
	for _, row := range t.Rows {
		for j, cell := range row {
			rec[j] = cell.String()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the table to a single-sheet workbook. Missing cells are
// left unset so they read back as blanks.
func WriteXLSX(w io.Writer, t *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			if v.IsMissing() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v.Value()); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}
