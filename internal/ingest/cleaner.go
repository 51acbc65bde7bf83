package ingest

import (
	"fmt"
	"strings"

	"datadesk/domain/dataset"
)

// CleanReport counts what Clean removed
type CleanReport struct {
	EmptyRows          int `json:"empty_rows_removed"`
	EmptyColumns       int `json:"empty_columns_removed"`
	PlaceholderColumns int `json:"placeholder_columns_removed"`
	RenamedColumns     int `json:"renamed_columns"`
}

// Summary renders the report as a sentence
func (r CleanReport) Summary() string {
	s := fmt.Sprintf("Removed %d empty rows, %d empty columns, %d placeholder columns",
		r.EmptyRows, r.EmptyColumns, r.PlaceholderColumns)
	if r.RenamedColumns > 0 {
		s += fmt.Sprintf("; renamed %d duplicate columns", r.RenamedColumns)
	}
	return s
}

// Clean returns a normalized copy of t. It never imputes values and never
// fails; the input is not modified.
func Clean(t *dataset.Table) *dataset.Table {
	out, _ := CleanWithReport(t)
	return out
}

// CleanWithReport applies, in order: drop all-missing rows, drop
// all-missing columns, drop placeholder columns, dedupe names and
// renumber rows. Rows whose only values sat in placeholder columns are
// dropped too, so cleaning a cleaned table changes nothing.
func CleanWithReport(t *dataset.Table) (*dataset.Table, CleanReport) {
	var report CleanReport
	if t == nil {
		return dataset.NewTable(nil), report
	}

	keepCols := make([]bool, t.NumCols())
	for j := range keepCols {
		keepCols[j] = true
	}

	rows := dropEmptyRows(t.Rows, keepCols)
	report.EmptyRows = len(t.Rows) - len(rows)

	for j := range t.Columns {
		if columnAllMissing(rows, j) {
			keepCols[j] = false
			report.EmptyColumns++
		}
	}

	for j, name := range t.Columns {
		if keepCols[j] && strings.HasPrefix(name, PlaceholderPrefix) {
			keepCols[j] = false
			report.PlaceholderColumns++
		}
	}

	before := len(rows)
	rows = dropEmptyRows(rows, keepCols)
	report.EmptyRows += before - len(rows)

	var names []string
	var types []dataset.ColumnType
	for j, keep := range keepCols {
		if keep {
			names = append(names, t.Columns[j])
			types = append(types, t.Types[j])
		}
	}
	names, report.RenamedColumns = dedupeNames(names)

	out := dataset.NewTable(names)
	copy(out.Types, types)
	for _, row := range rows {
		cells := make([]dataset.Cell, 0, len(names))
		for j, keep := range keepCols {
			if keep {
				cells = append(cells, row[j])
			}
		}
		out.AppendRow(cells)
	}
	return out, report
}

// dropEmptyRows keeps rows with at least one non-missing cell among the
// kept columns
func dropEmptyRows(rows [][]dataset.Cell, keepCols []bool) [][]dataset.Cell {
	out := make([][]dataset.Cell, 0, len(rows))
	for _, row := range rows {
		for j, cell := range row {
			if keepCols[j] && !cell.IsMissing() {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func columnAllMissing(rows [][]dataset.Cell, j int) bool {
	for _, row := range rows {
		if !row[j].IsMissing() {
			return false
		}
	}
	return true
}

// dedupeNames suffixes repeated names with .1, .2, ... skipping any name
// already taken
func dedupeNames(names []string) ([]string, int) {
	used := make(map[string]bool, len(names))
	out := make([]string, len(names))
	renamed := 0
	for i, name := range names {
		candidate := name
		for k := 1; used[candidate]; k++ {
			candidate = fmt.Sprintf("%s.%d", name, k)
		}
		if candidate != name {
			renamed++
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out, renamed
}
