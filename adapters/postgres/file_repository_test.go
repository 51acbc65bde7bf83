package postgres

import (
	"testing"

	"datadesk/domain/core"
	"datadesk/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRowRoundTrip(t *testing.T) {
	f := dataset.NewUploadedFile(core.NewID(), "q1.xlsx", dataset.FileTypeSpreadsheet, []byte("PK"))
	f.Summary = "Excel file with 1 sheet(s), 2 rows and 3 columns"
	f.Metadata = dataset.FileMetadata{
		FileTag:     "excel",
		RowCount:    2,
		SourceRows:  3,
		ColumnCount: 3,
		Columns:     []string{"a", "b", "c"},
		ColumnTypes: map[string]dataset.ColumnType{"a": dataset.ColumnNumeric},
		Sheets:      []string{"Sheet1"},
		SheetCount:  1,
	}

	row, err := toFileRow(f)
	require.NoError(t, err)
	assert.Equal(t, "spreadsheet", row.FileType)
	assert.Contains(t, string(row.Metadata), `"source_rows":3`)

	back, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, f.ID, back.ID)
	assert.Equal(t, f.StoredName, back.StoredName)
	assert.Equal(t, f.Checksum, back.Checksum)
	assert.Equal(t, f.Metadata, back.Metadata)
	assert.Equal(t, dataset.FileTypeSpreadsheet, back.FileType)
}

func TestFileRowRejectsUnknownType(t *testing.T) {
	_, err := (&fileRow{FileType: "pdf"}).toDomain()
	assert.Error(t, err)
}
