package ingest

import (
	"testing"

	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     dataset.FileType
	}{
		{"sales.csv", dataset.FileTypeDelimited},
		{"SALES.CSV", dataset.FileTypeDelimited},
		{"report.xlsx", dataset.FileTypeSpreadsheet},
		{"notes.txt", dataset.FileTypePlainText},
		{"archive.2024.csv", dataset.FileTypeDelimited},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ft, err := DetectFormat(tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ft)
		})
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	for _, name := range []string{"data.json", "legacy.xls", "noext", "", "csv"} {
		_, err := DetectFormat(name)
		assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.GetCode(err), name)
	}
}

func TestDetectorAllowedSubset(t *testing.T) {
	d := NewDetector([]string{"CSV", ".txt", ".json"})
	assert.Equal(t, []string{".csv", ".txt"}, d.Extensions())

	_, err := d.Detect("book.xlsx")
	assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.GetCode(err))

	ft, err := d.Detect("a.csv")
	require.NoError(t, err)
	assert.Equal(t, dataset.FileTypeDelimited, ft)
}
