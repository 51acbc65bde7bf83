package ingest

import (
	"path/filepath"
	"strings"

	"datadesk/domain/dataset"
	apperrors "datadesk/internal/errors"
)

// Detector classifies uploads by filename suffix. Content is never
// inspected, so a file with a misleading extension is misclassified rather
// than rejected.
type Detector struct {
	allowed map[string]dataset.FileType
}

// NewDetector builds a detector limited to the given extensions. Extensions
// outside the supported set are ignored; nil allows every supported format.
func NewDetector(extensions []string) *Detector {
	d := &Detector{allowed: make(map[string]dataset.FileType)}
	if extensions == nil {
		for _, ft := range dataset.AllFileTypes {
			d.allowed[ft.Extension()] = ft
		}
		return d
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		for _, ft := range dataset.AllFileTypes {
			if ft.Extension() == ext {
				d.allowed[ext] = ft
			}
		}
	}
	return d
}

// Detect maps filename to a file type or fails with UnsupportedFormat
func (d *Detector) Detect(filename string) (dataset.FileType, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ft, ok := d.allowed[ext]; ok {
		return ft, nil
	}
	return "", apperrors.UnsupportedFormat(filename)
}

// Extensions lists the accepted suffixes in canonical order
func (d *Detector) Extensions() []string {
	var out []string
	for _, ft := range dataset.AllFileTypes {
		if _, ok := d.allowed[ft.Extension()]; ok {
			out = append(out, ft.Extension())
		}
	}
	return out
}

// DetectFormat classifies filename against every supported format
func DetectFormat(filename string) (dataset.FileType, error) {
	return NewDetector(nil).Detect(filename)
}
