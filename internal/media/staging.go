package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// StagedFile is a multipart upload parked on local disk before the media host
// accepts it, mirroring how uploads land in a temp directory first so a failed
// handoff never leaves a half-written object on the host.
type StagedFile struct {
	Path        string
	Size        int64
	ContentType string
	Filename    string
}

func (sf *StagedFile) Open() (*os.File, error) {
	return os.Open(sf.Path)
}

func (sf *StagedFile) Discard() {
	if sf != nil && sf.Path != "" {
		os.Remove(sf.Path)
	}
}

// Stager writes multipart form files into its directory.
type Stager struct {
	dir string
}

func NewStager(dir string) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Stager{dir: dir}, nil
}

// StageForm pulls the named file out of a parsed multipart request. A missing
// field returns (nil, nil) so optional files need no error dance.
func (s *Stager) StageForm(r *http.Request, field string, maxSize int64) (*StagedFile, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read form file %q: %w", field, err)
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, fmt.Errorf("file %q exceeds %d bytes", field, maxSize)
	}

	return s.stage(file, header)
}

func (s *Stager) stage(file multipart.File, header *multipart.FileHeader) (*StagedFile, error) {
	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	size, err := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &StagedFile{
		Path:        tmp.Name(),
		Size:        size,
		ContentType: contentType,
		Filename:    filepath.Base(header.Filename),
	}, nil
}
