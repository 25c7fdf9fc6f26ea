// Package blob stores uploaded listing images on disk and hands out
// retrievable reference paths.
package blob

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RefPrefix is the public retrieval path every stored blob is served under.
const RefPrefix = "/uploads/"

var (
	// ErrUnsupportedType is returned for anything that is not a
	// jpeg/png/webp upload.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrTooLarge is returned when an upload exceeds the configured cap.
	ErrTooLarge = errors.New("image exceeds size limit")
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store keeps uploads in a flat directory with generated names, so a
// hostile original filename can never influence where bytes land.
type Store struct {
	dir      string
	maxBytes int64
	log      logrus.FieldLogger
}

// New creates a blob store rooted at dir.
func New(dir string, maxBytes int64, logger logrus.FieldLogger) *Store {
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		log:      logger.WithField("component", "blob"),
	}
}

// Dir returns the directory blobs are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Initialize ensures the upload directory exists.
func (s *Store) Initialize() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Save persists one uploaded image and returns its reference path.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dstPath := filepath.Join(s.dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write blob file: %w", err)
	}

	s.log.WithFields(logrus.Fields{"name": name, "bytes": written}).Info("Image stored")
	return RefPrefix + name, nil
}

// Resolve maps a reference path back to the file it names. References
// outside the store resolve to ok=false.
func (s *Store) Resolve(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return "", false
	}
	name := filepath.Base(strings.TrimPrefix(ref, RefPrefix))
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
