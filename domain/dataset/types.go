package dataset

import (
	"fmt"
	"time"

	"datadesk/domain/core"
)

// FileType is the closed set of formats the pipeline understands
type FileType string

const (
	FileTypeDelimited   FileType = "delimited-text"
	FileTypeSpreadsheet FileType = "spreadsheet"
	FileTypePlainText   FileType = "plain-text"
)

// AllFileTypes lists every supported format in detection order
var AllFileTypes = []FileType{FileTypeDelimited, FileTypeSpreadsheet, FileTypePlainText}

// Extension returns the filename suffix that selects this format
func (ft FileType) Extension() string {
	switch ft {
	case FileTypeDelimited:
		return ".csv"
	case FileTypeSpreadsheet:
		return ".xlsx"
	case FileTypePlainText:
		return ".txt"
	}
	return ""
}

// Tag returns the short label used in summaries and persisted rows
func (ft FileType) Tag() string {
	switch ft {
	case FileTypeDelimited:
		return "csv"
	case FileTypeSpreadsheet:
		return "excel"
	case FileTypePlainText:
		return "text"
	}
	return "unknown"
}

// IsTabular reports whether the format parses into a Table
func (ft FileType) IsTabular() bool {
	return ft == FileTypeDelimited || ft == FileTypeSpreadsheet
}

// Valid reports whether ft is one of the supported formats
func (ft FileType) Valid() bool {
	return ft.Extension() != ""
}

// ParseFileType accepts either the canonical name or the short tag
func ParseFileType(s string) (FileType, error) {
	for _, ft := range AllFileTypes {
		if s == string(ft) || s == ft.Tag() {
			return ft, nil
		}
	}
	return "", fmt.Errorf("unknown file type %q", s)
}

// UploadedFile is the durable record of a successful ingest
type UploadedFile struct {
	ID               core.ID      `json:"id"`
	OwnerID          core.ID      `json:"owner_id"`
	OriginalFilename string       `json:"filename"`
	StoredName       string       `json:"-"`
	FileType         FileType     `json:"file_type"`
	SizeBytes        int64        `json:"size_bytes"`
	Checksum         core.Hash    `json:"checksum"`
	Summary          string       `json:"summary"`
	Metadata         FileMetadata `json:"metadata"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewUploadedFile creates a record with a fresh ID
func NewUploadedFile(owner core.ID, filename string, ft FileType, content []byte) *UploadedFile {
	return &UploadedFile{
		ID:               core.NewID(),
		OwnerID:          owner,
		OriginalFilename: filename,
		StoredName:       core.BlobName(ft.Extension()),
		FileType:         ft,
		SizeBytes:        int64(len(content)),
		Checksum:         core.NewHash(content),
		CreatedAt:        core.Now().Time(),
	}
}

// OwnedBy reports whether the record belongs to the given user
func (f *UploadedFile) OwnedBy(owner core.ID) bool {
	return f != nil && !owner.IsEmpty() && f.OwnerID == owner
}

// FileMetadata is what the metadata extractor derives from a parsed file.
// Column fields are empty for plain-text files; line fields are zero for
// tabular files. SourceRows counts data rows before cleaning.
type FileMetadata struct {
	FileTag      string                `json:"file_type"`
	SizeBytes    int64                 `json:"file_size"`
	RowCount     int                   `json:"rows"`
	SourceRows   int                   `json:"source_rows"`
	ColumnCount  int                   `json:"columns"`
	Columns      []string              `json:"column_names,omitempty"`
	ColumnTypes  map[string]ColumnType `json:"data_types,omitempty"`
	MissingCells int                   `json:"missing_values"`
	MemoryBytes  int64                 `json:"memory_usage"`

	SheetCount int      `json:"sheet_count,omitempty"`
	Sheets     []string `json:"sheets,omitempty"`

	LineCount     int     `json:"lines,omitempty"`
	WordCount     int     `json:"words,omitempty"`
	CharCount     int     `json:"characters,omitempty"`
	AvgLineLength float64 `json:"average_line_length,omitempty"`
}

// ResultKind classifies history entries
type ResultKind string

const (
	ResultSummary  ResultKind = "summary"
	ResultAnswer   ResultKind = "answer"
	ResultAnalysis ResultKind = "analysis"
)

// FileResult is one entry of a user's history: an LLM answer or a stored
// summary produced for one of their files.
type FileResult struct {
	ID          core.ID    `json:"id"`
	FileID      core.ID    `json:"file_id"`
	OwnerID     core.ID    `json:"owner_id"`
	Kind        ResultKind `json:"kind"`
	Prompt      string     `json:"prompt,omitempty"`
	Content     string     `json:"content"`
	ContentHTML string     `json:"content_html,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
