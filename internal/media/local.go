package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
)

// LocalHost stores media on local disk under baseDir, keyed the same way the
// S3 host keys objects. It is the default driver for development and tests.
type LocalHost struct {
	baseDir    string
	publicBase string
}

func NewLocalHost(baseDir, publicBase string) (*LocalHost, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalHost{baseDir: baseDir, publicBase: publicBase}, nil
}

func (h *LocalHost) Upload(ctx context.Context, kind string, r io.Reader, size int64, contentType string) (Object, error) {
	if size <= 0 {
		return Object{}, ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	key := filepath.ToSlash(filepath.Join(kind, uuid.NewString()))

	dst := filepath.Join(h.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, commonerrors.ErrMediaHostError.WithCause(err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return Object{}, commonerrors.ErrMediaHostError.WithCause(err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return Object{}, commonerrors.ErrMediaHostError.WithCause(err)
	}

	return Object{
		URL: fmt.Sprintf("%s/%s", h.publicBase, key),
		Key: key,
	}, nil
}

func (h *LocalHost) Remove(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	// Keys are host-generated, but reject traversal anyway.
	if strings.Contains(key, "..") {
		return commonerrors.ErrMediaHostError
	}

	err := os.Remove(filepath.Join(h.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return commonerrors.ErrMediaHostError.WithCause(err)
	}
	return nil
}
