package store

import (
	"context"
	"errors"

	"ardelivero-storefront/storefront/internal/storage"
)

var errDiskFull = errors.New("disk full")

// flakyStorage fails writes while failing is set.
type flakyStorage struct {
	*storage.MemoryStorage
	failing bool
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (f *flakyStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.failing {
		return errDiskFull
	}
	return f.MemoryStorage.Set(ctx, key, value)
}

func (f *flakyStorage) Remove(ctx context.Context, key string) error {
	if f.failing {
		return errDiskFull
	}
	return f.MemoryStorage.Remove(ctx, key)
}
