package media

import (
	"context"
	"io"

	"github.com/clipstream/clipstream-backend/internal/common/resilience"
)

// guarded routes every media host call through a circuit breaker, so a host
// outage fails fast instead of tying up upload handlers for the full timeout.
type guarded struct {
	inner   Uploader
	breaker resilience.CircuitBreakerInterface
}

func Guard(inner Uploader, breaker resilience.CircuitBreakerInterface) Uploader {
	return &guarded{inner: inner, breaker: breaker}
}

func (g *guarded) Upload(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (Object, error) {
	var obj Object
	err := g.breaker.Call(ctx, func(ctx context.Context) error {
		var callErr error
		obj, callErr = g.inner.Upload(ctx, kind, r, size, contentType)
		return callErr
	})
	if err != nil {
		return Object{}, err
	}
	return obj, nil
}

func (g *guarded) Remove(ctx context.Context, key string) error {
	return g.breaker.Call(ctx, func(ctx context.Context) error {
		return g.inner.Remove(ctx, key)
	})
}
