package excel

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"unicode/utf8"

	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"

	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Open returns a lazy record reader for a tabular format
func Open(ft dataset.FileType, content []byte, cfg Config) (RowReader, error) {
	switch ft {
	case dataset.FileTypeDelimited:
		return NewCSVReader(content, cfg), nil
	case dataset.FileTypeSpreadsheet:
		return NewXLSXReader(content, cfg)
	case dataset.FileTypePlainText:
		return nil, fmt.Errorf("%s is not tabular", ft)
	}
	return nil, fmt.Errorf("unknown file type %q", ft)
}

// CSVReader reads delimited text record by record
type CSVReader struct {
	r      *csv.Reader
	start  int64
	record int
	line   int
	base   int64
}

// NewCSVReader wraps content in a csv.Reader. Records may have any number
// of fields; width checks belong to the caller.
func NewCSVReader(content []byte, cfg Config) *CSVReader {
	var base int64
	if bytes.HasPrefix(content, utf8BOM) {
		content = content[len(utf8BOM):]
		base = int64(len(utf8BOM))
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	if cfg.Comma != 0 {
		r.Comma = cfg.Comma
	}
	return &CSVReader{r: r, base: base}
}

// Next returns the next record
func (c *CSVReader) Next() ([]string, error) {
	c.start = c.r.InputOffset()
	rec, err := c.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, apperrors.ParseError(string(dataset.FileTypeDelimited), apperrors.Locator{
				Row:    pe.Line,
				Column: pe.Column,
				Offset: c.base + c.r.InputOffset(),
			}, pe.Err)
		}
		return nil, apperrors.ParseError(string(dataset.FileTypeDelimited), c.Locate(), err)
	}
	c.record++
	c.line, _ = c.r.FieldPos(0)
	for i, field := range rec {
		if !utf8.ValidString(field) {
			line, col := c.r.FieldPos(i)
			return nil, apperrors.ParseError(string(dataset.FileTypeDelimited), apperrors.Locator{
				Row:    line,
				Column: col,
				Offset: c.base + c.start,
			}, fmt.Errorf("invalid UTF-8 in field %d", i+1))
		}
	}
	return rec, nil
}

// Locate reports the 1-based line and starting byte offset of the last record
func (c *CSVReader) Locate() apperrors.Locator {
	return apperrors.Locator{Row: c.line, Offset: c.base + c.start}
}

func (c *CSVReader) Close() error { return nil }

// XLSXReader streams rows from one worksheet
type XLSXReader struct {
	f      *excelize.File
	rows   *excelize.Rows
	sheets []string
	row    int
}

// NewXLSXReader opens a workbook from memory and positions on the
// configured sheet, or the first one
func NewXLSXReader(content []byte, cfg Config) (*XLSXReader, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperrors.ParseError(string(dataset.FileTypeSpreadsheet), apperrors.Locator{}, err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, apperrors.ParseError(string(dataset.FileTypeSpreadsheet), apperrors.Locator{}, fmt.Errorf("workbook has no sheets"))
	}
	sheet := sheets[0]
	if cfg.Sheet != "" {
		sheet = cfg.Sheet
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, apperrors.ParseError(string(dataset.FileTypeSpreadsheet), apperrors.Locator{}, fmt.Errorf("open sheet %q: %w", sheet, err))
	}
	log.Printf("[XLSXReader] Opened workbook with %d sheet(s), reading %q", len(sheets), sheet)
	return &XLSXReader{f: f, rows: rows, sheets: sheets}, nil
}

// Sheets lists every worksheet in workbook order
func (x *XLSXReader) Sheets() []string {
	return x.sheets
}

// Next returns the next row's cell values
func (x *XLSXReader) Next() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, apperrors.ParseError(string(dataset.FileTypeSpreadsheet), apperrors.Locator{Row: x.row + 1}, err)
		}
		return nil, io.EOF
	}
	x.row++
	cols, err := x.rows.Columns()
	if err != nil {
		return nil, apperrors.ParseError(string(dataset.FileTypeSpreadsheet), x.Locate(), err)
	}
	return cols, nil
}

// Locate reports the 1-based worksheet row of the last record
func (x *XLSXReader) Locate() apperrors.Locator {
	return apperrors.Locator{Row: x.row}
}

func (x *XLSXReader) Close() error {
	if err := x.rows.Close(); err != nil {
		x.f.Close()
		return err
	}
	return x.f.Close()
}
