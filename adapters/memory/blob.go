package memory

import (
	"context"
	"sync"

	"datadesk/domain/core"
	"datadesk/ports"
)

// BlobStorage keeps file bytes in memory
type BlobStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStorage creates an empty in-memory blob store
func NewBlobStorage() *BlobStorage {
	return &BlobStorage{blobs: make(map[string][]byte)}
}

var _ ports.BlobStorage = (*BlobStorage)(nil)

func (b *BlobStorage) Put(ctx context.Context, name string, content []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[name] = append([]byte(nil), content...)
	return nil
}

func (b *BlobStorage) Get(ctx context.Context, name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	content, ok := b.blobs[name]
	if !ok {
		return nil, core.ErrBlobNotFound
	}
	return append([]byte(nil), content...), nil
}

func (b *BlobStorage) Delete(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[name]; !ok {
		return core.ErrBlobNotFound
	}
	delete(b.blobs, name)
	return nil
}

func (b *BlobStorage) Exists(ctx context.Context, name string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.blobs[name]
	return ok, nil
}

// Len reports how many blobs are stored
func (b *BlobStorage) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.blobs)
}
