package memory

import (
	"context"
	"testing"
	"time"

	"datadesk/domain/core"
	"datadesk/domain/dataset"
	"datadesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository()
	owner := core.NewID()

	older := dataset.NewUploadedFile(owner, "a.csv", dataset.FileTypeDelimited, []byte("a\n1\n"))
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := dataset.NewUploadedFile(owner, "b.csv", dataset.FileTypeDelimited, []byte("b\n2\n"))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	assert.ErrorIs(t, repo.Create(ctx, newer), core.ErrAlreadyExists)

	list, err := repo.ListByOwner(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	list, err = repo.ListByOwner(ctx, owner, 1, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, older.ID, list[0].ID)

	list, err = repo.ListByOwner(ctx, owner, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, repo.UpdateSummary(ctx, older.ID, "updated"))
	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Summary)

	n, err := repo.CountByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.True(t, core.IsNotFoundError(err))
	assert.True(t, core.IsNotFoundError(repo.Delete(ctx, older.ID)))
}

func TestResultRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewResultRepository()
	owner, fileA, fileB := core.NewID(), core.NewID(), core.NewID()

	for i, fid := range []core.ID{fileA, fileB, fileA} {
		require.NoError(t, repo.Create(ctx, &dataset.FileResult{
			ID: core.NewID(), FileID: fid, OwnerID: owner, Kind: dataset.ResultAnswer,
			Content: string(rune('x' + i)),
		}))
	}

	all, err := repo.ListByOwner(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "z", all[0].Content)

	byFile, err := repo.ListByFile(ctx, fileA)
	require.NoError(t, err)
	assert.Len(t, byFile, 2)

	require.NoError(t, repo.DeleteByFile(ctx, fileA))
	all, err = repo.ListByOwner(ctx, owner, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, fileB, all[0].FileID)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(models.DefaultPlans(5))
	id := core.NewID()

	_, err := repo.GetUserByID(ctx, id)
	assert.True(t, core.IsNotFoundError(err))

	u, err := repo.EnsureUser(ctx, id, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.FreePlanID, u.PlanID)
	assert.True(t, u.IsActive)

	again, err := repo.EnsureUser(ctx, id, "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", again.Email)

	plan, err := repo.GetPlan(ctx, models.FreePlanID)
	require.NoError(t, err)
	assert.Equal(t, 5, plan.MaxFiles)

	_, err = repo.GetPlan(ctx, "enterprise")
	assert.True(t, core.IsNotFoundError(err))
}

func TestBlobStorage(t *testing.T) {
	ctx := context.Background()
	b := NewBlobStorage()
	content := []byte("payload")

	require.NoError(t, b.Put(ctx, "k", content))
	content[0] = 'X'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	ok, err := b.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Delete(ctx, "k"))
	_, err = b.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
	assert.True(t, core.IsNotFoundError(b.Delete(ctx, "k")))
}
