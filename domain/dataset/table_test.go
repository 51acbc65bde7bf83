package dataset

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellValue(t *testing.T) {
	assert.Nil(t, Missing().Value())
	assert.Equal(t, 2.5, NumberCell(2.5).Value())
	assert.Equal(t, "", TextCell("").Value(), "empty text is not missing")
	assert.Equal(t, false, BoolCell(false).Value())
	assert.Nil(t, NumberCell(math.Inf(1)).Value())
	assert.Nil(t, NumberCell(math.NaN()).Value())
}

func TestTableJSONWithNonFiniteCells(t *testing.T) {
	tbl := NewTable([]string{"x"})
	tbl.Types[0] = ColumnNumeric
	tbl.AppendRow([]Cell{NumberCell(1)})
	tbl.AppendRow([]Cell{NumberCell(math.Inf(-1))})

	data, err := json.Marshal(tbl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["x"],"types":["numeric"],"index":[0,1],"rows":[{"x":1},{"x":null}],"row_count":2}`, string(data))
}

func TestNumericStatsJSONWithOverflow(t *testing.T) {
	s := &NumericStats{Min: 1, Max: math.MaxFloat64, Mean: math.Inf(1), Median: 2, StdDev: math.NaN()}

	data, err := json.Marshal(ColumnProfile{Name: "big", Type: ColumnNumeric, Stats: s})
	require.NoError(t, err)

	var out struct {
		Stats map[string]any `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	stats := out.Stats
	assert.Equal(t, float64(1), stats["min"])
	assert.Nil(t, stats["mean"])
	assert.Nil(t, stats["std"])
	assert.Contains(t, stats, "mean")
}
