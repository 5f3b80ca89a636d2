package media

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/clipstream/clipstream-backend/internal/observability/metrics"
)

// Kinds classify what an upload is so limits and destinations can differ.
const (
	KindVideo     = "video"
	KindThumbnail = "thumbnail"
	KindAvatar    = "avatar"
	KindCover     = "cover"
)

var ErrEmptyFile = errors.New("media: empty file")

// Object is a stored media asset: the public URL to serve it from and the
// host-side key needed to delete it later.
type Object struct {
	URL string
	Key string
}

// Uploader moves a staged file to the media host. Implementations are the S3
// host and the local-disk host; callers never see which one is behind it.
type Uploader interface {
	Upload(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (Object, error)
	Remove(ctx context.Context, key string) error
}

// instrumented wraps an Uploader with the upload metrics so both hosts report
// the same way.
type instrumented struct {
	inner Uploader
}

func Instrument(inner Uploader) Uploader {
	return &instrumented{inner: inner}
}

func (m *instrumented) Upload(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (Object, error) {
	start := time.Now()

	obj, err := m.inner.Upload(ctx, kind, r, size, contentType)
	metrics.MediaUploadDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(kind, "error").Inc()
		return Object{}, err
	}

	metrics.MediaUploadsTotal.WithLabelValues(kind, "success").Inc()
	metrics.MediaUploadBytes.Add(float64(size))
	return obj, nil
}

func (m *instrumented) Remove(ctx context.Context, key string) error {
	return m.inner.Remove(ctx, key)
}
