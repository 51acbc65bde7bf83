package ingest

import (
	"sort"
	"strings"
	"unicode/utf8"

	"datadesk/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Analyze profiles every column of t. An empty table yields zero
// aggregates and an empty profile map.
func Analyze(t *dataset.Table) *dataset.AnalysisResult {
	result := &dataset.AnalysisResult{
		RowCount:    t.NumRows(),
		ColumnCount: t.NumCols(),
		ColumnOrder: []string{},
		Columns:     make(map[string]dataset.ColumnProfile, t.NumCols()),
		MemoryBytes: EstimateMemory(t),
	}

	for j, name := range t.Columns {
		profile := ProfileColumn(name, t.Column(j))
		result.ColumnOrder = append(result.ColumnOrder, name)
		result.Columns[name] = profile
		result.TotalMissing += profile.Missing

		switch profile.Type {
		case dataset.ColumnNumeric:
			result.NumericColumns++
		case dataset.ColumnBoolean:
			result.BooleanColumns++
		default:
			result.TextColumns++
		}
	}
	return result
}

// ProfileColumn classifies one column and, when numeric, summarizes it
func ProfileColumn(name string, cells []dataset.Cell) dataset.ColumnProfile {
	profile := dataset.ColumnProfile{Name: name, Type: classify(cells)}

	unique := make(map[dataset.Cell]struct{})
	var values []float64
	for _, c := range cells {
		if c.IsMissing() {
			profile.Missing++
			continue
		}
		profile.Count++
		unique[c] = struct{}{}
		if c.Kind == dataset.CellNumber {
			values = append(values, c.Num)
		}
	}
	profile.Unique = len(unique)

	if profile.Type == dataset.ColumnNumeric {
		if len(values) == 0 {
			profile.NoData = true
		} else {
			profile.Stats = numericStats(values)
		}
	}
	return profile
}

// classify applies the column rule to typed cells: numeric when every
// non-missing cell is a number, boolean when every one is a boolean,
// otherwise text. A column with nothing but missing cells is numeric.
func classify(cells []dataset.Cell) dataset.ColumnType {
	numeric, boolean := true, true
	for _, c := range cells {
		switch c.Kind {
		case dataset.CellMissing:
			continue
		case dataset.CellNumber:
			boolean = false
		case dataset.CellBoolean:
			numeric = false
		default:
			return dataset.ColumnText
		}
	}
	switch {
	case numeric:
		return dataset.ColumnNumeric
	case boolean:
		return dataset.ColumnBoolean
	}
	return dataset.ColumnText
}

func numericStats(values []float64) *dataset.NumericStats {
	data := stats.Float64Data(values)
	s := &dataset.NumericStats{}
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	if len(values) > 1 {
		s.StdDev, _ = stats.StandardDeviationSample(data)
	}

	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	s.P25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.P75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	return s
}

// AnalyzeText counts lines, whitespace separated words and characters
func AnalyzeText(lines []string) *dataset.TextStats {
	ts := &dataset.TextStats{TotalLines: len(lines)}
	for _, line := range lines {
		ts.TotalWords += len(strings.Fields(line))
		ts.TotalCharacters += utf8.RuneCountInString(line)
	}
	if ts.TotalLines > 0 {
		ts.AverageLineLength = float64(ts.TotalCharacters) / float64(ts.TotalLines)
	}
	return ts
}
