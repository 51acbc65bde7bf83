package excel

import (
	"bytes"
	"io"
	"testing"

	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain reads every record left in r
func drain(t *testing.T, r RowReader) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
}

func TestCSVReaderRecords(t *testing.T) {
	content := []byte("\xEF\xBB\xBFa,b,c\n1,,x\n\"q,uoted\",2\n")
	rows, err := drain(t, NewCSVReader(content, DefaultConfig()))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"1", "", "x"}, rows[1])
	assert.Equal(t, []string{"q,uoted", "2"}, rows[2])
}

func TestCSVReaderSyntaxError(t *testing.T) {
	content := []byte("a,b\n1,2\n3,\"unterminated\n")
	_, err := drain(t, NewCSVReader(content, DefaultConfig()))
	require.Error(t, err)

	assert.Equal(t, apperrors.CodeParseError, apperrors.GetCode(err))
	loc := apperrors.GetLocator(err)
	require.NotNil(t, loc)
	assert.GreaterOrEqual(t, loc.Row, 3)
}

func TestCSVReaderInvalidUTF8(t *testing.T) {
	content := []byte("a,b\n1,\xff\xfe\n")
	r := NewCSVReader(content, DefaultConfig())

	_, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeParseError, apperrors.GetCode(err))
	loc := apperrors.GetLocator(err)
	require.NotNil(t, loc)
	assert.Equal(t, 2, loc.Row)
	assert.Equal(t, int64(4), loc.Offset)
}

func TestCSVReaderLocate(t *testing.T) {
	r := NewCSVReader([]byte("h\nrow1\nrow2\n"), DefaultConfig())
	for i := 0; i < 3; i++ {
		_, err := r.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, apperrors.Locator{Row: 3, Offset: 7}, r.Locate())
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLineReader(t *testing.T) {
	content := []byte("first\r\nsecond\n\nlast")
	lines, err := ReadLines(content, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "", "last"}, lines)
}

func TestLineReaderInvalidUTF8(t *testing.T) {
	content := []byte("ok\nab\xffcd\n")
	_, err := ReadLines(content, DefaultConfig())
	require.Error(t, err)

	loc := apperrors.GetLocator(err)
	require.NotNil(t, loc)
	assert.Equal(t, 2, loc.Row)
	assert.Equal(t, 3, loc.Column)
	assert.Equal(t, int64(5), loc.Offset)
}

func TestXLSXRoundTrip(t *testing.T) {
	table := dataset.NewTable([]string{"name", "score", "active"})
	table.AppendRow([]dataset.Cell{dataset.TextCell("ann"), dataset.NumberCell(9.5), dataset.BoolCell(true)})
	table.AppendRow([]dataset.Cell{dataset.TextCell("bob"), dataset.Missing(), dataset.BoolCell(false)})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	r, err := NewXLSXReader(buf.Bytes(), DefaultConfig())
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"Sheet1"}, r.Sheets())
	rows, err := drain(t, r)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "score", "active"}, rows[0])
	assert.Equal(t, []string{"ann", "9.5", "TRUE"}, rows[1])
	assert.Equal(t, "bob", rows[2][0])
	assert.Equal(t, "", rows[2][1])
}

func TestXLSXCorruptContainer(t *testing.T) {
	_, err := NewXLSXReader([]byte("definitely not a zip"), DefaultConfig())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeParseError, apperrors.GetCode(err))
}

func TestWriteCSV(t *testing.T) {
	table := dataset.NewTable([]string{"a", "b"})
	table.AppendRow([]dataset.Cell{dataset.NumberCell(1), dataset.Missing()})
	table.AppendRow([]dataset.Cell{dataset.NumberCell(2.25), dataset.TextCell("x,y")})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))
	assert.Equal(t, "a,b\n1,\n2.25,\"x,y\"\n", buf.String())
}

func TestOpenRejectsPlainText(t *testing.T) {
	_, err := Open(dataset.FileTypePlainText, []byte("x"), DefaultConfig())
	assert.Error(t, err)
}
