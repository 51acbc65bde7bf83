package dataset

import (
	"encoding/json"
	"math"

	"datadesk/domain/core"
)

// NumericStats summarizes the non-missing values of a numeric column
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

// MarshalJSON writes non-finite statistics as null. Sums over values near
// the float64 limit overflow to infinity.
func (s NumericStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
		Mean   *float64 `json:"mean"`
		Median *float64 `json:"median"`
		StdDev *float64 `json:"std"`
		P25    *float64 `json:"p25"`
		P75    *float64 `json:"p75"`
	}{finite(s.Min), finite(s.Max), finite(s.Mean), finite(s.Median), finite(s.StdDev), finite(s.P25), finite(s.P75)})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ColumnProfile is the per-column output of the analyzer. Stats is nil for
// non-numeric columns and for numeric columns with no data.
type ColumnProfile struct {
	Name    string        `json:"name"`
	Type    ColumnType    `json:"type"`
	Count   int           `json:"count"`
	Missing int           `json:"missing"`
	Unique  int           `json:"unique"`
	Stats   *NumericStats `json:"stats,omitempty"`
	NoData  bool          `json:"no_data,omitempty"`
}

// TextStats describes a plain-text file
type TextStats struct {
	TotalLines        int     `json:"total_lines"`
	TotalWords        int     `json:"total_words"`
	TotalCharacters   int     `json:"total_characters"`
	AverageLineLength float64 `json:"average_line_length"`
}

// AnalysisResult holds per-column profiles plus file-level aggregates
type AnalysisResult struct {
	FileType       FileType                 `json:"file_type,omitempty"`
	RowCount       int                      `json:"row_count"`
	ColumnCount    int                      `json:"column_count"`
	ColumnOrder    []string                 `json:"column_order"`
	Columns        map[string]ColumnProfile `json:"columns"`
	TotalMissing   int                      `json:"total_missing"`
	MemoryBytes    int64                    `json:"memory_usage"`
	NumericColumns int                      `json:"numeric_columns"`
	TextColumns    int                      `json:"text_columns"`
	BooleanColumns int                      `json:"boolean_columns"`
	Text           *TextStats               `json:"text,omitempty"`
}

// PreviewResult is a bounded window over the start of a file. Total is the
// full row (or line) count of the source so callers can tell the preview
// was cut short.
type PreviewResult struct {
	FileType  FileType         `json:"file_type"`
	Columns   []string         `json:"columns,omitempty"`
	Rows      []map[string]any `json:"rows,omitempty"`
	Lines     []string         `json:"lines,omitempty"`
	Returned  int              `json:"returned"`
	Total     int              `json:"total"`
	Truncated bool             `json:"truncated"`
}

// QualityReport scores how ready a table is for analysis
type QualityReport struct {
	Issues          []string `json:"issues"`
	Score           int      `json:"score"`
	Rating          string   `json:"rating"`
	Recommendations []string `json:"recommendations"`
	CleaningSummary string   `json:"cleaning_summary,omitempty"`
}

// TypeChange records a column converted by the advanced cleaner
type TypeChange struct {
	From ColumnType `json:"from"`
	To   ColumnType `json:"to"`
}

// AdvancedCleanReport describes every change AdvancedClean made
type AdvancedCleanReport struct {
	OriginalRows      int                   `json:"original_rows"`
	OriginalColumns   int                   `json:"original_columns"`
	FinalRows         int                   `json:"final_rows"`
	FinalColumns      int                   `json:"final_columns"`
	RowsRemoved       int                   `json:"total_rows_removed"`
	ColumnsRemoved    int                   `json:"total_columns_removed"`
	Operations        []string              `json:"operations_performed"`
	RenamedColumns    map[string]string     `json:"columns_renamed"`
	TypeChanges       map[string]TypeChange `json:"data_type_changes"`
	DuplicatesRemoved int                   `json:"duplicates_removed"`
	MissingFilled     map[string]int        `json:"missing_values_handled"`
	Message           string                `json:"message"`
}

// AdvancedCleanResult is a derived table plus its report. It is computed
// on request and never replaces the stored file.
type AdvancedCleanResult struct {
	FileID core.ID              `json:"file_id"`
	Table  *Table               `json:"table"`
	Report *AdvancedCleanReport `json:"report"`
}
