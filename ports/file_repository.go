package ports

import (
	"context"

	"datadesk/domain/core"
	"datadesk/domain/dataset"
)

// FileRepository defines the interface for uploaded file records
type FileRepository interface {
	Create(ctx context.Context, f *dataset.UploadedFile) error
	GetByID(ctx context.Context, id core.ID) (*dataset.UploadedFile, error)
	ListByOwner(ctx context.Context, ownerID core.ID, limit, offset int) ([]*dataset.UploadedFile, error)
	CountByOwner(ctx context.Context, ownerID core.ID) (int, error)
	UpdateSummary(ctx context.Context, id core.ID, summary string) error
	Delete(ctx context.Context, id core.ID) error
}

// ResultRepository stores the history of answers and summaries
type ResultRepository interface {
	Create(ctx context.Context, r *dataset.FileResult) error
	ListByOwner(ctx context.Context, ownerID core.ID, limit, offset int) ([]*dataset.FileResult, error)
	ListByFile(ctx context.Context, fileID core.ID) ([]*dataset.FileResult, error)
	DeleteByFile(ctx context.Context, fileID core.ID) error
}
