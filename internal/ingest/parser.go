package ingest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"datadesk/adapters/excel"
	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"
)

// PlaceholderPrefix marks index columns written by spreadsheet export
// tools, and the names given to blank header cells.
const PlaceholderPrefix = "Unnamed"

// Parsed is the uniform output of the parser: a table for tabular formats,
// lines for plain text.
type Parsed struct {
	FileType dataset.FileType
	Table    *dataset.Table
	Lines    []string
	Sheets   []string
}

// Parser turns raw bytes into a Parsed value
type Parser struct {
	cfg excel.Config
}

// NewParser creates a parser with the given reader settings
func NewParser(cfg excel.Config) *Parser {
	return &Parser{cfg: cfg}
}

// Parse dispatches on the file type
func (p *Parser) Parse(ft dataset.FileType, content []byte) (*Parsed, error) {
	switch ft {
	case dataset.FileTypeDelimited, dataset.FileTypeSpreadsheet:
		parsed, _, err := p.readTabular(ft, content, -1, false)
		return parsed, err
	case dataset.FileTypePlainText:
		lines, err := excel.ReadLines(content, p.cfg)
		if err != nil {
			return nil, err
		}
		return &Parsed{FileType: ft, Lines: lines}, nil
	}
	return nil, apperrors.InvalidInput(fmt.Sprintf("unknown file type %q", ft))
}

// readTabular reads the header and up to limit data rows (all rows when
// limit < 0). With countRest it keeps reading past the limit without
// keeping records so the caller learns the source's data row count.
func (p *Parser) readTabular(ft dataset.FileType, content []byte, limit int, countRest bool) (*Parsed, int, error) {
	rr, err := excel.Open(ft, content, p.cfg)
	if err != nil {
		return nil, 0, err
	}
	defer rr.Close()

	parsed := &Parsed{FileType: ft}
	if x, ok := rr.(*excel.XLSXReader); ok {
		parsed.Sheets = x.Sheets()
	}

	header, err := rr.Next()
	if err == io.EOF {
		parsed.Table = dataset.NewTable(nil)
		return parsed, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	header = normalizeHeader(header)

	var records [][]string
	total := 0
	for {
		// Rows past the limit are not read at all unless they are counted.
		if limit >= 0 && len(records) >= limit && !countRest {
			break
		}
		rec, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if len(rec) > len(header) {
			if ft == dataset.FileTypeDelimited {
				return nil, 0, apperrors.ParseError(string(ft), rr.Locate(),
					fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)))
			}
			// Worksheets trim blank trailing header cells, so wider data
			// rows extend the header with placeholder names.
			for j := len(header); j < len(rec); j++ {
				header = append(header, placeholderName(j))
			}
		}
		total++
		if limit >= 0 && len(records) >= limit {
			continue
		}
		records = append(records, rec)
	}

	parsed.Table = BuildTable(header, records)
	return parsed, total, nil
}

// BuildTable infers a type per column and converts every raw value
func BuildTable(header []string, records [][]string) *dataset.Table {
	t := dataset.NewTable(header)
	cols := len(header)

	for j := 0; j < cols; j++ {
		raw := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				raw[i] = rec[j]
			}
		}
		t.Types[j] = InferColumnType(raw)
	}

	for _, rec := range records {
		row := make([]dataset.Cell, cols)
		for j := 0; j < cols; j++ {
			var v string
			if j < len(rec) {
				v = rec[j]
			}
			row[j] = ConvertCell(v, t.Types[j])
		}
		t.AppendRow(row)
	}
	return t
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = placeholderName(i)
		}
		out[i] = h
	}
	return out
}

func placeholderName(i int) string {
	return fmt.Sprintf("%s: %d", PlaceholderPrefix, i)
}

// missingLiterals are read as the missing marker, matching what common
// dataframe tools treat as NA
var missingLiterals = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"NULL": true,
	"null": true,
	"None": true,
	"#N/A": true,
	"<NA>": true,
}

// IsMissingLiteral reports whether a raw value denotes missing data
func IsMissingLiteral(v string) bool {
	return missingLiterals[strings.TrimSpace(v)]
}

// ParseNumber parses a raw value as a finite float. Infinity spellings
// such as "inf" are not numbers here and keep their column textual.
func ParseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool accepts true/false, yes/no, y/n and 1/0 in any case
func ParseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y", "1":
		return true, true
	case "false", "no", "n", "0":
		return false, true
	}
	return false, false
}

// InferColumnType classifies raw values: numeric iff every non-missing
// value parses as a number, else boolean iff every non-missing value is a
// boolean literal, else text. A column with no values is numeric.
func InferColumnType(raw []string) dataset.ColumnType {
	numeric, boolean := true, true
	for _, v := range raw {
		if IsMissingLiteral(v) {
			continue
		}
		if numeric {
			if _, ok := ParseNumber(v); !ok {
				numeric = false
			}
		}
		if boolean {
			if _, ok := ParseBool(v); !ok {
				boolean = false
			}
		}
		if !numeric && !boolean {
			return dataset.ColumnText
		}
	}
	if numeric {
		return dataset.ColumnNumeric
	}
	return dataset.ColumnBoolean
}

// ConvertCell converts a raw value according to its column type
func ConvertCell(v string, typ dataset.ColumnType) dataset.Cell {
	if IsMissingLiteral(v) {
		return dataset.Missing()
	}
	switch typ {
	case dataset.ColumnNumeric:
		if f, ok := ParseNumber(v); ok {
			return dataset.NumberCell(f)
		}
	case dataset.ColumnBoolean:
		if b, ok := ParseBool(v); ok {
			return dataset.BoolCell(b)
		}
	}
	return dataset.TextCell(strings.TrimSpace(v))
}
