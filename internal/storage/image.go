// Package storage persists uploaded room images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads whose extension is not an
// accepted image format.
var ErrUnsupportedImage = errors.New("unsupported image format")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ImageStore writes room images under a base directory.  Stored names
// are random, so uploads never collide and client-supplied names never
// touch the filesystem.
type ImageStore struct {
	dir string
}

// NewImageStore creates the base directory if needed.
func NewImageStore(dir string) (*ImageStore, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// Save stores the upload and returns the generated file name.  Only the
// extension of originalName is used; the rest is discarded.
func (s *ImageStore) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt[ext] {
		return "", ErrUnsupportedImage
	}
	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Path resolves a stored name to its on-disk path, rejecting anything
// that escapes the base directory.
func (s *ImageStore) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", os.ErrNotExist
	}
	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

// Remove deletes a stored image.  Missing files are not an error.
func (s *ImageStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
