package ingest

import (
	"fmt"
	"strings"

	"datadesk/domain/dataset"
)

// Rating labels
const (
	ratingExcellent = "Excellent"
	ratingGood      = "Good"
	ratingFair      = "Fair"
	ratingPoor      = "Needs Improvement"
)

// AssessQuality inspects the raw table and scores its readiness. Each
// detected problem counts as one issue.
func AssessQuality(raw *dataset.Table) *dataset.QualityReport {
	report := &dataset.QualityReport{Issues: []string{}, Recommendations: []string{}}

	if raw.NumRows() == 0 {
		report.Issues = append(report.Issues, "File has no data rows")
		report.Recommendations = append(report.Recommendations, "Upload a file with a header row and at least one data row")
	}

	for j, name := range raw.Columns {
		if strings.HasPrefix(name, PlaceholderPrefix) {
			report.Issues = append(report.Issues, fmt.Sprintf("%s: placeholder index column", name))
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("Drop column %q, it carries no data", name))
			continue
		}

		cells := raw.Column(j)
		missing := 0
		for _, c := range cells {
			if c.IsMissing() {
				missing++
			}
		}
		if missing > 0 {
			pct := 100 * float64(missing) / float64(len(cells))
			report.Issues = append(report.Issues, fmt.Sprintf("%s: %d missing values (%.1f%%)", name, missing, pct))
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("Fill or drop missing values in %q", name))
		}

		if isMixed(cells) {
			report.Issues = append(report.Issues, fmt.Sprintf("%s: mixed numeric and text values", name))
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("Standardize the values in %q to a single type", name))
		}
	}

	if dups := countDuplicateRows(raw); dups > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d duplicate rows", dups))
		report.Recommendations = append(report.Recommendations, "Remove duplicate rows")
	}

	_, cleanReport := CleanWithReport(raw)
	report.CleaningSummary = cleanReport.Summary()
	report.Score, report.Rating = Score(len(report.Issues))
	return report
}

// Score maps an issue count to a readiness score and rating
func Score(issues int) (int, string) {
	switch {
	case issues == 0:
		return 100, ratingExcellent
	case issues <= 2:
		return 80, ratingGood
	case issues <= 4:
		return 60, ratingFair
	}
	return 40, ratingPoor
}

// isMixed reports a text column holding both number-like and other values
func isMixed(cells []dataset.Cell) bool {
	var numeric, other bool
	for _, c := range cells {
		if c.Kind != dataset.CellText {
			continue
		}
		if _, ok := ParseNumber(c.Text); ok {
			numeric = true
		} else {
			other = true
		}
		if numeric && other {
			return true
		}
	}
	return false
}

// countDuplicateRows counts non-empty rows identical to an earlier row
func countDuplicateRows(t *dataset.Table) int {
	seen := make(map[string]bool, t.NumRows())
	dups := 0
	for _, row := range t.Rows {
		empty := true
		for _, c := range row {
			if !c.IsMissing() {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		k := rowKey(row)
		if seen[k] {
			dups++
		}
		seen[k] = true
	}
	return dups
}

// rowKey identifies a row by the kind and text of every cell
func rowKey(row []dataset.Cell) string {
	var key strings.Builder
	for _, c := range row {
		fmt.Fprintf(&key, "%d:%s\x1f", c.Kind, c.String())
	}
	return key.String()
}
