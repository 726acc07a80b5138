package ratelimit

import (
	"context"
	"io"

	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// Backend throttles Read on a wrapped storage backend. List and Stat pass
// through untouched.
type Backend struct {
	storage.Backend
	limiter *Limiter
}

// WrapBackend returns b itself when limiter is nil
func WrapBackend(b storage.Backend, limiter *Limiter) storage.Backend {
	if limiter == nil {
		return b
	}
	return &Backend{Backend: b, limiter: limiter}
}

// Read opens path on the wrapped backend and throttles the stream
func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := b.Backend.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewReadCloser(ctx, rc, b.limiter), nil
}
