package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStore abstracts the upload directory so services can be tested
// without touching the filesystem.
type FileStore interface {
	// Save persists an uploaded part under a generated unique name and
	// returns that bare filename.
	Save(file *multipart.FileHeader, field string) (string, error)
	// Remove deletes a stored file by bare filename. A missing file is
	// not an error.
	Remove(name string) error
	// Dir returns the directory served under /uploads.
	Dir() string
}

type diskStore struct {
	dir string
}

// NewDiskStore ensures the upload directory exists and returns a store
// rooted there.
func NewDiskStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Dir() string { return s.dir }

// GenerateFilename builds a collision-free name from the form field, the
// current timestamp, a random suffix and the original extension.
func GenerateFilename(field, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), suffix, ext)
}

func (s *diskStore) Save(file *multipart.FileHeader, field string) (string, error) {
	name := GenerateFilename(field, file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", field, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

func (s *diskStore) Remove(name string) error {
	// Only ever operate on a bare filename inside the upload dir.
	name = filepath.Base(name)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
