package postgres

import (
	"context"
	"fmt"
	"time"

	"datadesk/domain/core"
	"datadesk/domain/dataset"
	"datadesk/ports"

	"github.com/jmoiron/sqlx"
)

type resultRow struct {
	ID          string    `db:"id"`
	FileID      string    `db:"file_id"`
	OwnerID     string    `db:"owner_id"`
	Kind        string    `db:"kind"`
	Prompt      string    `db:"prompt"`
	Content     string    `db:"content"`
	ContentHTML string    `db:"content_html"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r resultRow) toDomain() *dataset.FileResult {
	return &dataset.FileResult{
		ID:          core.ID(r.ID),
		FileID:      core.ID(r.FileID),
		OwnerID:     core.ID(r.OwnerID),
		Kind:        dataset.ResultKind(r.Kind),
		Prompt:      r.Prompt,
		Content:     r.Content,
		ContentHTML: r.ContentHTML,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

const resultColumns = `id, file_id, owner_id, kind, COALESCE(prompt, '') AS prompt, content,
	COALESCE(content_html, '') AS content_html, created_at`

// resultRepository implements ports.ResultRepository
type resultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, res *dataset.FileResult) error {
	row := resultRow{
		ID:          res.ID.String(),
		FileID:      res.FileID.String(),
		OwnerID:     res.OwnerID.String(),
		Kind:        string(res.Kind),
		Prompt:      res.Prompt,
		Content:     res.Content,
		ContentHTML: res.ContentHTML,
		CreatedAt:   res.CreatedAt,
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO file_results (id, file_id, owner_id, kind, prompt, content, content_html, created_at)
		VALUES (:id, :file_id, :owner_id, :kind, :prompt, :content, :content_html, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("failed to create result: %w", err)
	}
	return nil
}

func (r *resultRepository) ListByOwner(ctx context.Context, ownerID core.ID, limit, offset int) ([]*dataset.FileResult, error) {
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+resultColumns+`
		FROM file_results
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, ownerID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	return toResults(rows), nil
}

func (r *resultRepository) ListByFile(ctx context.Context, fileID core.ID) ([]*dataset.FileResult, error) {
	var rows []resultRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+resultColumns+`
		FROM file_results
		WHERE file_id = $1
		ORDER BY created_at DESC, id DESC`, fileID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	return toResults(rows), nil
}

func (r *resultRepository) DeleteByFile(ctx context.Context, fileID core.ID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM file_results WHERE file_id = $1`, fileID.String()); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	return nil
}

func toResults(rows []resultRow) []*dataset.FileResult {
	out := make([]*dataset.FileResult, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}
