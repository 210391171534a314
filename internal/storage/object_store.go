// Package storage uploads recipe images to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/andcook/andcook/backend/config"
)

// ObjectStore provides access to object storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// New builds the store selected by cfg.Backend, wrapped in a circuit breaker.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	var (
		store ObjectStore
		err   error
	)
	switch cfg.Backend {
	case config.StorageMinio:
		store, err = NewMinioStore(ctx, cfg)
	case config.StorageS3, "":
		store, err = NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return NewBreakerStore(store, cfg.Backend), nil
}
