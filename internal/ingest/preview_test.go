package ingest

import (
	"testing"

	"datadesk/adapters/excel"
	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fiveRows = "n,label\n1,a\n2,b\n3,c\n4,d\n5,e\n"

func TestPreviewFewerRowsThanLimit(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	res, err := p.Preview(dataset.FileTypeDelimited, []byte(fiveRows), 10, -1)
	require.NoError(t, err)

	assert.Equal(t, []string{"n", "label"}, res.Columns)
	assert.Len(t, res.Rows, 5)
	assert.Equal(t, 5, res.Returned)
	assert.Equal(t, 5, res.Total)
	assert.False(t, res.Truncated)
}

func TestPreviewTruncates(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	res, err := p.Preview(dataset.FileTypeDelimited, []byte(fiveRows), 2, -1)
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, float64(1), res.Rows[0]["n"])
	assert.Equal(t, "b", res.Rows[1]["label"])
	assert.Equal(t, 5, res.Total)
	assert.True(t, res.Truncated)
}

func TestPreviewUsesKnownTotal(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	res, err := p.Preview(dataset.FileTypeDelimited, []byte(fiveRows), 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Returned)
	assert.Equal(t, 5, res.Total)
	assert.True(t, res.Truncated)
}

func TestPreviewWithKnownTotalStopsAtLimit(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	content := []byte("n\n1\n2\n3,extra\n")

	res, err := p.Preview(dataset.FileTypeDelimited, content, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Returned)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.Truncated)

	_, err = p.Preview(dataset.FileTypeDelimited, content, 2, -1)
	assert.Equal(t, apperrors.CodeParseError, apperrors.GetCode(err))
}

func TestPreviewKeepsRawRows(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	res, err := p.Preview(dataset.FileTypeDelimited, []byte("a,Unnamed: 1\n,\n1,\n"), 10, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Nil(t, res.Rows[0]["a"])
}

func TestPreviewPlainText(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	res, err := p.Preview(dataset.FileTypePlainText, []byte("l1\nl2\nl3\n"), 2, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"l1", "l2"}, res.Lines)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.Truncated)
}

func TestPreviewRejectsNonPositiveLimit(t *testing.T) {
	p := NewParser(excel.DefaultConfig())
	for _, limit := range []int{0, -3} {
		_, err := p.Preview(dataset.FileTypeDelimited, []byte(fiveRows), limit, -1)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
	}
}
