package ingest

import (
	"testing"

	"datadesk/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersCSV = "Unit Price,Order-Date,Region,Active,Unnamed: 4\n" +
	"10,2024-01-05,north,yes,\n" +
	"abc,2024-01-06,,no,\n" +
	"12,not a date,south,yes,\n" +
	"10,2024-01-05,north,yes,\n" +
	",,,,\n"

func TestAdvancedCleanPipeline(t *testing.T) {
	raw := parseCSV(t, ordersCSV).Table
	before := raw.Clone()

	out, report := AdvancedClean(raw)
	assert.True(t, raw.Equal(before), "input table was modified")

	assert.Equal(t, []string{"unit_price", "order_date", "region", "active"}, out.Columns)
	assert.Equal(t, []dataset.ColumnType{
		dataset.ColumnNumeric, dataset.ColumnDate, dataset.ColumnText, dataset.ColumnBoolean,
	}, out.Types)
	assert.Equal(t, []int{0, 1, 2}, out.Index)
	require.Equal(t, 3, out.NumRows())

	assert.Equal(t, []dataset.Cell{
		dataset.NumberCell(10), dataset.TextCell("2024-01-05"), dataset.TextCell("north"), dataset.BoolCell(true),
	}, out.Rows[0])
	assert.Equal(t, []dataset.Cell{
		dataset.NumberCell(11), dataset.TextCell("2024-01-06"), dataset.TextCell("north"), dataset.BoolCell(false),
	}, out.Rows[1])
	assert.Equal(t, []dataset.Cell{
		dataset.NumberCell(12), dataset.TextCell("2024-01-05"), dataset.TextCell("south"), dataset.BoolCell(true),
	}, out.Rows[2])

	assert.Equal(t, 5, report.OriginalRows)
	assert.Equal(t, 5, report.OriginalColumns)
	assert.Equal(t, 3, report.FinalRows)
	assert.Equal(t, 4, report.FinalColumns)
	assert.Equal(t, 2, report.RowsRemoved)
	assert.Equal(t, 1, report.ColumnsRemoved)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, map[string]int{"unit_price": 1, "order_date": 1, "region": 1}, report.MissingFilled)
	assert.Equal(t, map[string]dataset.TypeChange{
		"unit_price": {From: dataset.ColumnText, To: dataset.ColumnNumeric},
		"order_date": {From: dataset.ColumnText, To: dataset.ColumnDate},
	}, report.TypeChanges)
	assert.Equal(t, "Unit Price", keyFor(report.RenamedColumns, "unit_price"))
	assert.Contains(t, report.Operations, "Removed 1 duplicate rows")
	assert.Equal(t, "Cleaned 5 rows x 5 columns into 3 rows x 4 columns", report.Message)
}

func keyFor(m map[string]string, value string) string {
	for k, v := range m {
		if v == value {
			return k
		}
	}
	return ""
}

func TestAdvancedCleanIsStable(t *testing.T) {
	once, _ := AdvancedClean(parseCSV(t, ordersCSV).Table)
	twice, report := AdvancedClean(once)

	assert.True(t, once.Equal(twice))
	assert.Empty(t, report.Operations)
	assert.Zero(t, report.RowsRemoved)
}

func TestSnakeName(t *testing.T) {
	tests := []struct {
		in   string
		pos  int
		want string
	}{
		{"  Unit Price ", 0, "unit_price"},
		{"Order-Date.v2", 1, "order_date_v2"},
		{"__a__b__", 2, "a_b"},
		{"Größe (kg)", 3, "größe_kg"},
		{"%%", 4, "column_4"},
		{"", 5, "column_5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SnakeName(tt.in, tt.pos))
		})
	}
}

func TestAdvancedCleanSuffixesCollidingNames(t *testing.T) {
	out, report := AdvancedClean(parseCSV(t, "A,a,a_1\n1,2,3\n").Table)
	assert.Equal(t, []string{"a", "a_1", "a_1_1"}, out.Columns)
	assert.Equal(t, map[string]string{"A": "a", "a": "a_1", "a_1": "a_1_1"}, report.RenamedColumns)
}

func TestAdvancedCleanLeavesMostlyTextColumns(t *testing.T) {
	out, report := AdvancedClean(parseCSV(t, "c\n1\nx\ny\n").Table)
	assert.Equal(t, dataset.ColumnText, out.Types[0])
	assert.Empty(t, report.TypeChanges)
	assert.Equal(t, dataset.TextCell("1"), out.Rows[0][0])
}

func TestAdvancedCleanDateTimes(t *testing.T) {
	out, report := AdvancedClean(parseCSV(t, "when\n01/31/2024 13:05:00\n02/01/2024 08:00:00\n").Table)
	require.Equal(t, dataset.ColumnDate, out.Types[0])
	assert.Equal(t, dataset.TextCell("2024-01-31 13:05:00"), out.Rows[0][0])
	assert.Equal(t, dataset.TextCell("2024-02-01 08:00:00"), out.Rows[1][0])
	assert.Empty(t, report.MissingFilled)
}

func TestAdvancedCleanFillsTextWithMode(t *testing.T) {
	out, report := AdvancedClean(parseCSV(t, "k,v\n1,b\n2,\n3,b\n4,a\n").Table)
	assert.Equal(t, dataset.TextCell("b"), out.Rows[1][1])
	assert.Equal(t, map[string]int{"v": 1}, report.MissingFilled)
}
