package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/forum/config"
)

// BlobStore is the upload collaborator: it accepts a file and returns a
// stable retrievable URL. The forum never hands raw file paths to clients.
type BlobStore interface {
	Store(file *multipart.FileHeader, subdir string) (string, error)
}

// LocalBlobStore keeps uploads on local disk under date-partitioned
// directories and serves them from the static route.
type LocalBlobStore struct {
	baseDir string
	baseURL string
	maxSize int64
}

// NewLocalBlobStore builds the store from configuration.
func NewLocalBlobStore(cfg config.AppConfig) *LocalBlobStore {
	return &LocalBlobStore{
		baseDir: cfg.UploadDir,
		baseURL: strings.TrimRight(cfg.UploadBaseURL, "/"),
		maxSize: int64(cfg.UploadMaxSizeMB) * 1024 * 1024,
	}
}

// Store writes the upload to disk under subdir/yyyy/mm/dd with a uuid object
// name and returns its public URL.
func (s *LocalBlobStore) Store(file *multipart.FileHeader, subdir string) (string, error) {
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", fmt.Errorf("file exceeds %d bytes", s.maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	now := time.Now()
	rel := path.Join(subdir, now.Format("2006"), now.Format("01"), now.Format("02"))
	dir := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// LimitedReader backstops clients that lie about Content-Length.
	limit := s.maxSize
	if limit <= 0 {
		limit = 1 << 30
	}
	written, err := io.Copy(dst, &io.LimitedReader{R: src, N: limit + 1})
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	if written > limit {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("file exceeds %d bytes", limit)
	}

	return s.baseURL + "/" + path.Join(rel, name), nil
}
