package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"datadesk/domain/core"
	"datadesk/domain/dataset"
	"datadesk/models"
	"datadesk/ports"
)

// FileRepository keeps file records in memory
type FileRepository struct {
	mu    sync.RWMutex
	files map[core.ID]dataset.UploadedFile
}

// NewFileRepository creates an empty in-memory file repository
func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[core.ID]dataset.UploadedFile)}
}

var _ ports.FileRepository = (*FileRepository)(nil)

func (r *FileRepository) Create(ctx context.Context, f *dataset.UploadedFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.files[f.ID]; exists {
		return fmt.Errorf("%w: file %s", core.ErrAlreadyExists, f.ID)
	}
	r.files[f.ID] = *f
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id core.ID) (*dataset.UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[id]
	if !ok {
		return nil, core.NewNotFoundError("file", id.String())
	}
	return &f, nil
}

func (r *FileRepository) ListByOwner(ctx context.Context, ownerID core.ID, limit, offset int) ([]*dataset.UploadedFile, error) {
	r.mu.RLock()
	var owned []*dataset.UploadedFile
	for _, f := range r.files {
		if f.OwnerID == ownerID {
			f := f
			owned = append(owned, &f)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return page(owned, limit, offset), nil
}

func (r *FileRepository) CountByOwner(ctx context.Context, ownerID core.ID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, f := range r.files {
		if f.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *FileRepository) UpdateSummary(ctx context.Context, id core.ID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return core.NewNotFoundError("file", id.String())
	}
	f.Summary = summary
	r.files[id] = f
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id core.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[id]; !ok {
		return core.NewNotFoundError("file", id.String())
	}
	delete(r.files, id)
	return nil
}

// ResultRepository keeps history entries in insertion order
type ResultRepository struct {
	mu      sync.RWMutex
	results []dataset.FileResult
}

// NewResultRepository creates an empty in-memory result repository
func NewResultRepository() *ResultRepository {
	return &ResultRepository{}
}

var _ ports.ResultRepository = (*ResultRepository)(nil)

func (r *ResultRepository) Create(ctx context.Context, res *dataset.FileResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, *res)
	return nil
}

// ListByOwner returns newest entries first
func (r *ResultRepository) ListByOwner(ctx context.Context, ownerID core.ID, limit, offset int) ([]*dataset.FileResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*dataset.FileResult
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].OwnerID == ownerID {
			res := r.results[i]
			out = append(out, &res)
		}
	}
	return page(out, limit, offset), nil
}

func (r *ResultRepository) ListByFile(ctx context.Context, fileID core.ID) ([]*dataset.FileResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*dataset.FileResult
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].FileID == fileID {
			res := r.results[i]
			out = append(out, &res)
		}
	}
	return out, nil
}

func (r *ResultRepository) DeleteByFile(ctx context.Context, fileID core.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.results[:0]
	for _, res := range r.results {
		if res.FileID != fileID {
			kept = append(kept, res)
		}
	}
	r.results = kept
	return nil
}

// UserRepository keeps users and plans in memory
type UserRepository struct {
	mu    sync.RWMutex
	users map[core.ID]models.User
	plans map[string]models.Plan
}

// NewUserRepository creates a repository seeded with the given plans
func NewUserRepository(plans []models.Plan) *UserRepository {
	r := &UserRepository{
		users: make(map[core.ID]models.User),
		plans: make(map[string]models.Plan, len(plans)),
	}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) EnsureUser(ctx context.Context, userID core.ID, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		return &u, nil
	}
	now := time.Now().UTC()
	u := models.User{
		ID:        userID,
		Email:     email,
		PlanID:    models.FreePlanID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.users[userID] = u
	return &u, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID core.ID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, core.NewNotFoundError("user", userID.String())
	}
	return &u, nil
}

func (r *UserRepository) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plans[planID]
	if !ok {
		return nil, core.NewNotFoundError("plan", planID)
	}
	return &p, nil
}

// SetUser stores u as-is, replacing any existing user with the same ID
func (r *UserRepository) SetUser(u models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
