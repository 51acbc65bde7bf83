package ingest

import (
	"io"

	"datadesk/adapters/excel"
	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"
)

// Preview returns at most limit rows (or lines) from the start of the raw,
// uncleaned source. When knownTotal >= 0 it is reported as the source size
// and reading stops right after the limit; a negative knownTotal makes
// Preview read on to count the remaining records without keeping them.
func (p *Parser) Preview(ft dataset.FileType, content []byte, limit, knownTotal int) (*dataset.PreviewResult, error) {
	if limit <= 0 {
		return nil, apperrors.InvalidInput("preview limit must be a positive integer")
	}
	countRest := knownTotal < 0

	switch ft {
	case dataset.FileTypeDelimited, dataset.FileTypeSpreadsheet:
		parsed, seen, err := p.readTabular(ft, content, limit, countRest)
		if err != nil {
			return nil, err
		}
		t := parsed.Table
		return newPreview(ft, t.Columns, t.Records(-1), nil, t.NumRows(), seen, knownTotal), nil

	case dataset.FileTypePlainText:
		lr := excel.NewLineReader(content, p.cfg)
		lines := make([]string, 0, limit)
		seen := 0
		for {
			if len(lines) >= limit && !countRest {
				break
			}
			line, err := lr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			seen++
			if len(lines) < limit {
				lines = append(lines, line)
			}
		}
		return newPreview(ft, nil, nil, lines, len(lines), seen, knownTotal), nil
	}
	return nil, apperrors.InvalidInput("unknown file type " + string(ft))
}

func newPreview(ft dataset.FileType, columns []string, rows []map[string]any, lines []string, returned, seen, knownTotal int) *dataset.PreviewResult {
	total := seen
	if knownTotal >= 0 {
		total = knownTotal
	}
	return &dataset.PreviewResult{
		FileType:  ft,
		Columns:   columns,
		Rows:      rows,
		Lines:     lines,
		Returned:  returned,
		Total:     total,
		Truncated: seen > returned || total > returned,
	}
}
