package excel

import (
	apperrors "datadesk/internal/errors"
)

// RowReader yields raw records one at a time so callers can stop early.
// Next returns io.EOF after the last record.
type RowReader interface {
	Next() ([]string, error)
	// Locate describes the position of the record most recently returned
	Locate() apperrors.Locator
	Close() error
}
