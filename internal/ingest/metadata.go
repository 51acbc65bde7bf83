package ingest

import (
	"fmt"

	"datadesk/domain/dataset"
)

// Footprint constants for EstimateMemory. They approximate a columnar
// in-memory frame: a fixed cost per column, an index slot per row and a
// per-cell cost that depends on the cell's kind.
const (
	columnOverheadBytes = 128
	indexBytesPerRow    = 8
	numericCellBytes    = 8
	boolCellBytes       = 1
	textCellOverhead    = 49
)

// ExtractMetadata derives the persisted metadata from a parsed file.
// SourceRows equals RowCount here; callers that extract from a cleaned
// table overwrite it with the raw count.
func ExtractMetadata(p *Parsed, size int64) dataset.FileMetadata {
	md := dataset.FileMetadata{
		FileTag:   p.FileType.Tag(),
		SizeBytes: size,
	}

	if p.FileType == dataset.FileTypePlainText {
		ts := AnalyzeText(p.Lines)
		md.RowCount = ts.TotalLines
		md.SourceRows = ts.TotalLines
		md.LineCount = ts.TotalLines
		md.WordCount = ts.TotalWords
		md.CharCount = ts.TotalCharacters
		md.AvgLineLength = ts.AverageLineLength
		md.MemoryBytes = int64(ts.TotalCharacters) + int64(ts.TotalLines)*indexBytesPerRow
		return md
	}

	t := p.Table
	md.RowCount = t.NumRows()
	md.SourceRows = t.NumRows()
	md.ColumnCount = t.NumCols()
	md.Columns = append([]string{}, t.Columns...)
	md.ColumnTypes = make(map[string]dataset.ColumnType, t.NumCols())
	for j, name := range t.Columns {
		md.ColumnTypes[name] = t.Types[j]
		if t.Types[j] == dataset.ColumnText && isMixed(t.Column(j)) {
			md.ColumnTypes[name] = dataset.ColumnMixed
		}
	}
	md.MissingCells = CountMissing(t)
	md.MemoryBytes = EstimateMemory(t)
	if p.FileType == dataset.FileTypeSpreadsheet {
		md.Sheets = append([]string{}, p.Sheets...)
		md.SheetCount = len(p.Sheets)
	}
	return md
}

// CountMissing sums missing cells across every column
func CountMissing(t *dataset.Table) int {
	n := 0
	for _, row := range t.Rows {
		for _, cell := range row {
			if cell.IsMissing() {
				n++
			}
		}
	}
	return n
}

// EstimateMemory approximates the in-memory size of t. Every term is
// non-negative and grows with rows or columns, so the estimate is
// monotonic in both for a fixed schema.
func EstimateMemory(t *dataset.Table) int64 {
	if t == nil {
		return 0
	}
	total := int64(t.NumCols()) * columnOverheadBytes
	total += int64(t.NumRows()) * indexBytesPerRow
	for _, name := range t.Columns {
		total += int64(len(name))
	}
	for _, row := range t.Rows {
		for _, cell := range row {
			total += cellBytes(cell)
		}
	}
	return total
}

func cellBytes(c dataset.Cell) int64 {
	switch c.Kind {
	case dataset.CellText:
		return textCellOverhead + int64(len(c.Text))
	case dataset.CellBoolean:
		return boolCellBytes
	}
	return numericCellBytes
}

// UploadSummary is the one-line description stored with a file
func UploadSummary(ft dataset.FileType, md dataset.FileMetadata) string {
	switch ft {
	case dataset.FileTypeDelimited:
		return fmt.Sprintf("CSV file with %d rows and %d columns", md.RowCount, md.ColumnCount)
	case dataset.FileTypeSpreadsheet:
		return fmt.Sprintf("Excel file with %d sheet(s), %d rows and %d columns", md.SheetCount, md.RowCount, md.ColumnCount)
	case dataset.FileTypePlainText:
		return fmt.Sprintf("Text file with %d lines and %d characters", md.LineCount, md.CharCount)
	}
	return ""
}
