package dataset

import (
	"encoding/json"
	"math"
	"strconv"
)

// CellKind tags the value held by a Cell
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumber
	CellText
	CellBoolean
)

// Cell is a single table value. The zero Cell is the missing marker, which
// is distinct from empty text and from zero.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
	Bool bool
}

func Missing() Cell             { return Cell{} }
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }
func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }
func BoolCell(b bool) Cell      { return Cell{Kind: CellBoolean, Bool: b} }

// IsMissing reports whether the cell is the missing marker
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Value returns the cell as a plain Go value; nil for missing and for
// non-finite numbers, which JSON cannot carry
func (c Cell) Value() any {
	switch c.Kind {
	case CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return nil
		}
		return c.Num
	case CellText:
		return c.Text
	case CellBoolean:
		return c.Bool
	}
	return nil
}

// String renders the cell for text output; missing renders as ""
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellText:
		return c.Text
	case CellBoolean:
		return strconv.FormatBool(c.Bool)
	}
	return ""
}

// MarshalJSON encodes missing cells as null
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}

// ColumnType is the inferred scalar type of a column
type ColumnType string

const (
	ColumnNumeric ColumnType = "numeric"
	ColumnBoolean ColumnType = "boolean"
	ColumnText    ColumnType = "text"
	ColumnMixed   ColumnType = "mixed"
	// ColumnDate holds ISO 8601 text; only the advanced cleaner produces it
	ColumnDate ColumnType = "date"
)

// Table is an ordered set of columns and positional rows. Every row holds
// exactly len(Columns) cells; Index carries each row's position label.
type Table struct {
	Columns []string
	Types   []ColumnType
	Rows    [][]Cell
	Index   []int
}

// NewTable creates an empty table with the given header
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	types := make([]ColumnType, len(columns))
	for i := range types {
		types[i] = ColumnText
	}
	return &Table{Columns: cols, Types: types, Rows: [][]Cell{}, Index: []int{}}
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// AppendRow adds a row, padding short rows with missing cells. Rows longer
// than the header are truncated; callers that must reject them check first.
func (t *Table) AppendRow(cells []Cell) {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	t.Index = append(t.Index, len(t.Index))
}

// Column returns the cells of column j
func (t *Table) Column(j int) []Cell {
	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Row returns row i keyed by column name
func (t *Table) Row(i int) map[string]Cell {
	out := make(map[string]Cell, len(t.Columns))
	for j, name := range t.Columns {
		out[name] = t.Rows[i][j]
	}
	return out
}

// Records returns up to limit rows as plain maps, suitable for JSON
// responses. limit < 0 returns every row.
func (t *Table) Records(limit int) []map[string]any {
	n := len(t.Rows)
	if limit >= 0 && limit < n {
		n = limit
	}
	out := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]any, len(t.Columns))
		for j, name := range t.Columns {
			rec[name] = t.Rows[i][j].Value()
		}
		out[i] = rec
	}
	return out
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	c := &Table{
		Columns: append([]string{}, t.Columns...),
		Types:   append([]ColumnType{}, t.Types...),
		Rows:    make([][]Cell, len(t.Rows)),
		Index:   append([]int{}, t.Index...),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append([]Cell{}, row...)
	}
	return c
}

// Equal compares header, types, index and every cell
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() || t.NumRows() != o.NumRows() || len(t.Index) != len(o.Index) {
		return false
	}
	for j := range t.Columns {
		if t.Columns[j] != o.Columns[j] || t.Types[j] != o.Types[j] {
			return false
		}
	}
	for i := range t.Rows {
		if t.Index[i] != o.Index[i] {
			return false
		}
		for j := range t.Rows[i] {
			if t.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

type tableJSON struct {
	Columns []string         `json:"columns"`
	Types   []ColumnType     `json:"types"`
	Index   []int            `json:"index"`
	Rows    []map[string]any `json:"rows"`
	Count   int              `json:"row_count"`
}

// MarshalJSON renders the table as column list plus record maps
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{
		Columns: t.Columns,
		Types:   t.Types,
		Index:   t.Index,
		Rows:    t.Records(-1),
		Count:   len(t.Rows),
	})
}
