package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/andcook/andcook/backend/internal/logging"
)

// ErrStorageUnavailable is returned while the breaker is open.
var ErrStorageUnavailable = errors.New("object storage temporarily unavailable")

// BreakerStore fails fast after repeated storage errors instead of holding
// upload requests open against a dead backend.
type BreakerStore struct {
	next ObjectStore
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerStore(next ObjectStore, name string) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "storage-" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := logging.WithComponent("storage")
			l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("storage circuit breaker state changed")
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *BreakerStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Put(ctx, key, r, size, contentType)
	})
	return translate(err)
}

func translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrStorageUnavailable
	}
	return err
}
