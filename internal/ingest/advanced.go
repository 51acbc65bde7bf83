package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"datadesk/domain/dataset"

	"github.com/montanaflynn/stats"
)

// UnknownText fills missing text cells in columns that have no mode
const UnknownText = "Unknown"

var (
	nameSeparators = regexp.MustCompile(`[\s\-.]+`)
	nameIllegal    = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	nameRepeats    = regexp.MustCompile(`_+`)
)

// dateLayouts are tried in order against a column's first value. The first
// one that matches is the only layout used for the rest of the column.
var dateLayouts = []struct {
	layout   string
	withTime bool
}{
	{"2006-01-02", false},
	{"01/02/2006", false},
	{"02/01/2006", false},
	{"2006-01-02 15:04:05", true},
	{"01/02/2006 15:04:05", true},
	{"02/01/2006 15:04:05", true},
	{"20060102", false},
}

// AdvancedClean derives an analysis-ready copy of t. On top of Clean it
// snake-cases column names, coerces text columns that are mostly numbers
// or dates, drops duplicate rows and fills every missing cell. The input
// is not modified.
func AdvancedClean(t *dataset.Table) (*dataset.Table, *dataset.AdvancedCleanReport) {
	report := &dataset.AdvancedCleanReport{
		OriginalRows:    t.NumRows(),
		OriginalColumns: t.NumCols(),
		Operations:      []string{},
		RenamedColumns:  map[string]string{},
		TypeChanges:     map[string]dataset.TypeChange{},
		MissingFilled:   map[string]int{},
	}

	out, base := CleanWithReport(t)
	if base.EmptyRows+base.EmptyColumns+base.PlaceholderColumns > 0 {
		report.Operations = append(report.Operations, base.Summary())
	}

	renameColumns(out, report)
	for j := range out.Columns {
		coerceColumn(out, j, report)
	}
	dropDuplicateRows(out, report)
	for j := range out.Columns {
		fillMissing(out, j, report)
	}

	// Rebuild so the index runs 0..n-1 again after row removal.
	final := dataset.NewTable(out.Columns)
	copy(final.Types, out.Types)
	for _, row := range out.Rows {
		final.AppendRow(row)
	}

	report.FinalRows = final.NumRows()
	report.FinalColumns = final.NumCols()
	report.RowsRemoved = report.OriginalRows - report.FinalRows
	report.ColumnsRemoved = report.OriginalColumns - report.FinalColumns
	report.Message = fmt.Sprintf("Cleaned %d rows x %d columns into %d rows x %d columns",
		report.OriginalRows, report.OriginalColumns, report.FinalRows, report.FinalColumns)
	return final, report
}

// SnakeName lowercases name and joins its words with underscores. Names
// with nothing left become column_<pos>.
func SnakeName(name string, pos int) string {
	s := nameSeparators.ReplaceAllString(strings.TrimSpace(name), "_")
	s = nameIllegal.ReplaceAllString(s, "")
	s = nameRepeats.ReplaceAllString(strings.ToLower(s), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fmt.Sprintf("column_%d", pos)
	}
	return s
}

func renameColumns(t *dataset.Table, report *dataset.AdvancedCleanReport) {
	used := make(map[string]bool, t.NumCols())
	for j, name := range t.Columns {
		base := SnakeName(name, j)
		candidate := base
		for k := 1; used[candidate]; k++ {
			candidate = fmt.Sprintf("%s_%d", base, k)
		}
		used[candidate] = true
		if candidate != name {
			report.RenamedColumns[name] = candidate
			t.Columns[j] = candidate
		}
	}
	if n := len(report.RenamedColumns); n > 0 {
		report.Operations = append(report.Operations, fmt.Sprintf("Standardized %d column names", n))
	}
}

// coerceColumn converts a text column when more than half of its values
// are numbers, or failing that dates. Values that do not convert become
// missing and are filled later.
func coerceColumn(t *dataset.Table, j int, report *dataset.AdvancedCleanReport) {
	if t.Types[j] != dataset.ColumnText {
		return
	}
	cells := t.Column(j)
	var values []string
	for _, c := range cells {
		if !c.IsMissing() {
			values = append(values, c.String())
		}
	}
	if len(values) == 0 {
		return
	}

	converted := 0
	for _, v := range values {
		if _, ok := ParseNumber(v); ok {
			converted++
		}
	}
	if converted*2 > len(values) {
		for i, c := range cells {
			cell := dataset.Missing()
			if f, ok := ParseNumber(c.String()); ok && !c.IsMissing() {
				cell = dataset.NumberCell(f)
			}
			t.Rows[i][j] = cell
		}
		markTypeChange(t, j, dataset.ColumnNumeric, len(values)-converted, report)
		return
	}

	layout, withTime, ok := detectDateLayout(values[0])
	if !ok {
		return
	}
	converted = 0
	for _, v := range values {
		if _, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			converted++
		}
	}
	if converted*2 <= len(values) {
		return
	}
	format := "2006-01-02"
	if withTime {
		format = "2006-01-02 15:04:05"
	}
	for i, c := range cells {
		cell := dataset.Missing()
		if ts, err := time.Parse(layout, strings.TrimSpace(c.String())); err == nil && !c.IsMissing() {
			cell = dataset.TextCell(ts.Format(format))
		}
		t.Rows[i][j] = cell
	}
	markTypeChange(t, j, dataset.ColumnDate, len(values)-converted, report)
}

func detectDateLayout(v string) (string, bool, bool) {
	v = strings.TrimSpace(v)
	for _, d := range dateLayouts {
		if _, err := time.Parse(d.layout, v); err == nil {
			return d.layout, d.withTime, true
		}
	}
	return "", false, false
}

func markTypeChange(t *dataset.Table, j int, to dataset.ColumnType, dropped int, report *dataset.AdvancedCleanReport) {
	name := t.Columns[j]
	report.TypeChanges[name] = dataset.TypeChange{From: t.Types[j], To: to}
	t.Types[j] = to
	op := fmt.Sprintf("Converted %q to %s", name, to)
	if dropped > 0 {
		op += fmt.Sprintf(" (%d unconvertible values cleared)", dropped)
	}
	report.Operations = append(report.Operations, op)
}

// dropDuplicateRows keeps the first occurrence of every distinct row
func dropDuplicateRows(t *dataset.Table, report *dataset.AdvancedCleanReport) {
	seen := make(map[string]bool, t.NumRows())
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		k := rowKey(row)
		if seen[k] {
			report.DuplicatesRemoved++
			continue
		}
		seen[k] = true
		kept = append(kept, row)
	}
	t.Rows = kept
	if report.DuplicatesRemoved > 0 {
		report.Operations = append(report.Operations,
			fmt.Sprintf("Removed %d duplicate rows", report.DuplicatesRemoved))
	}
}

// fillMissing imputes numeric columns with their median, boolean columns
// with their most common value (false when there is none) and every other
// column with its most common text (UnknownText when there is none).
func fillMissing(t *dataset.Table, j int, report *dataset.AdvancedCleanReport) {
	cells := t.Column(j)
	missing := 0
	for _, c := range cells {
		if c.IsMissing() {
			missing++
		}
	}
	if missing == 0 {
		return
	}

	var fill dataset.Cell
	var how string
	switch t.Types[j] {
	case dataset.ColumnNumeric:
		var values stats.Float64Data
		for _, c := range cells {
			if c.Kind == dataset.CellNumber {
				values = append(values, c.Num)
			}
		}
		median, err := values.Median()
		if err != nil {
			return
		}
		fill, how = dataset.NumberCell(median), "median"
	case dataset.ColumnBoolean:
		fill, how = dataset.BoolCell(false), "default"
		if m, ok := modeOf(cells); ok {
			fill, how = m, "mode"
		}
	default:
		fill, how = dataset.TextCell(UnknownText), "default"
		if m, ok := modeOf(cells); ok {
			fill, how = dataset.TextCell(m.String()), "mode"
		}
	}

	for i := range t.Rows {
		if t.Rows[i][j].IsMissing() {
			t.Rows[i][j] = fill
		}
	}
	name := t.Columns[j]
	report.MissingFilled[name] = missing
	report.Operations = append(report.Operations,
		fmt.Sprintf("Filled %d missing values in %q with %s %q", missing, name, how, fill.String()))
}

// modeOf returns the most frequent non-missing cell. Ties go to the value
// whose text sorts first.
func modeOf(cells []dataset.Cell) (dataset.Cell, bool) {
	counts := make(map[dataset.Cell]int)
	for _, c := range cells {
		if !c.IsMissing() {
			counts[c]++
		}
	}
	if len(counts) == 0 {
		return dataset.Missing(), false
	}
	candidates := make([]dataset.Cell, 0, len(counts))
	for c := range counts {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if counts[ca] != counts[cb] {
			return counts[ca] > counts[cb]
		}
		return ca.String() < cb.String()
	})
	return candidates[0], true
}
