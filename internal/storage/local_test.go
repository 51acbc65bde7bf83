package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"datadesk/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalFileStorage(dir)
	require.NoError(t, err)

	name := core.BlobName(".csv")
	require.NoError(t, s.Put(ctx, name, []byte("a,b\n1,2\n")))

	ok, err := s.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, s.Delete(ctx, name))
	ok, err = s.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, name)
	assert.ErrorIs(t, err, core.ErrBlobNotFound)
	assert.ErrorIs(t, s.Delete(ctx, name), core.ErrBlobNotFound)
}

func TestLocalFileStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.csv", `a\b.csv`, ".hidden"} {
		assert.Error(t, s.Put(context.Background(), name, []byte("x")), name)
	}
}

func TestNewLocalFileStorageRequiresPath(t *testing.T) {
	_, err := NewLocalFileStorage("")
	assert.Error(t, err)
}
