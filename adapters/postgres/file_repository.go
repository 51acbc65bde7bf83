package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"datadesk/domain/core"
	"datadesk/domain/dataset"
	"datadesk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const fileColumns = `id, owner_id, original_filename, stored_name, file_type, size_bytes,
	checksum, COALESCE(summary, '') AS summary, metadata, created_at`

// fileRow is the database shape of an uploaded file
type fileRow struct {
	ID               string    `db:"id"`
	OwnerID          string    `db:"owner_id"`
	OriginalFilename string    `db:"original_filename"`
	StoredName       string    `db:"stored_name"`
	FileType         string    `db:"file_type"`
	SizeBytes        int64     `db:"size_bytes"`
	Checksum         string    `db:"checksum"`
	Summary          string    `db:"summary"`
	Metadata         []byte    `db:"metadata"`
	CreatedAt        time.Time `db:"created_at"`
}

func toFileRow(f *dataset.UploadedFile) (*fileRow, error) {
	metadataJSON, err := json.Marshal(f.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	return &fileRow{
		ID:               f.ID.String(),
		OwnerID:          f.OwnerID.String(),
		OriginalFilename: f.OriginalFilename,
		StoredName:       f.StoredName,
		FileType:         string(f.FileType),
		SizeBytes:        f.SizeBytes,
		Checksum:         f.Checksum.String(),
		Summary:          f.Summary,
		Metadata:         metadataJSON,
		CreatedAt:        f.CreatedAt,
	}, nil
}

func (r *fileRow) toDomain() (*dataset.UploadedFile, error) {
	ft, err := dataset.ParseFileType(r.FileType)
	if err != nil {
		return nil, err
	}
	f := &dataset.UploadedFile{
		ID:               core.ID(r.ID),
		OwnerID:          core.ID(r.OwnerID),
		OriginalFilename: r.OriginalFilename,
		StoredName:       r.StoredName,
		FileType:         ft,
		SizeBytes:        r.SizeBytes,
		Checksum:         core.Hash(r.Checksum),
		Summary:          r.Summary,
		CreatedAt:        r.CreatedAt.UTC(),
	}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &f.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return f, nil
}

// fileRepository implements ports.FileRepository
type fileRepository struct {
	db *sqlx.DB
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *sqlx.DB) ports.FileRepository {
	return &fileRepository{db: db}
}

// Create inserts a new file record. The owner's user row is locked for
// the transaction so concurrent uploads see each other's inserts, and the
// insert fails with core.ErrQuotaExceeded once the plan limit is reached.
func (r *fileRepository) Create(ctx context.Context, f *dataset.UploadedFile) error {
	row, err := toFileRow(f)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxFiles int
	err = tx.GetContext(ctx, &maxFiles, `
		SELECT p.max_files FROM users u JOIN plans p ON p.id = u.plan_id
		WHERE u.id = $1 FOR UPDATE OF u`, row.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.NewNotFoundError("user", row.OwnerID)
		}
		return fmt.Errorf("failed to lock owner: %w", err)
	}
	var used int
	if err := tx.GetContext(ctx, &used, `SELECT COUNT(*) FROM files WHERE owner_id = $1`, row.OwnerID); err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}
	if used >= maxFiles {
		return core.ErrQuotaExceeded
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO files (
			id, owner_id, original_filename, stored_name, file_type, size_bytes,
			checksum, summary, metadata, created_at
		) VALUES (
			:id, :owner_id, :original_filename, :stored_name, :file_type, :size_bytes,
			:checksum, :summary, :metadata, :created_at
		)`, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: file %s", core.ErrAlreadyExists, f.ID)
		}
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file: %w", err)
	}
	return nil
}

// GetByID retrieves a file record by its ID
func (r *fileRepository) GetByID(ctx context.Context, id core.ID) (*dataset.UploadedFile, error) {
	var row fileRow
	err := r.db.GetContext(ctx, &row, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("file", id.String())
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return row.toDomain()
}

// ListByOwner retrieves an owner's files, newest first
func (r *fileRepository) ListByOwner(ctx context.Context, ownerID core.ID, limit, offset int) ([]*dataset.UploadedFile, error) {
	var rows []fileRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+fileColumns+`
		FROM files
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, ownerID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}

	files := make([]*dataset.UploadedFile, 0, len(rows))
	for i := range rows {
		f, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// CountByOwner counts the files an owner currently stores
func (r *fileRepository) CountByOwner(ctx context.Context, ownerID core.ID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM files WHERE owner_id = $1`, ownerID.String()); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

// UpdateSummary replaces a file's summary
func (r *fileRepository) UpdateSummary(ctx context.Context, id core.ID, summary string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE files SET summary = $2 WHERE id = $1`, id.String(), summary)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return requireRow(res, "file", id)
}

// Delete removes a file record; its results go with it through the
// foreign key cascade
func (r *fileRepository) Delete(ctx context.Context, id core.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return requireRow(res, "file", id)
}

func requireRow(res sql.Result, resource string, id core.ID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return core.NewNotFoundError(resource, id.String())
	}
	return nil
}
