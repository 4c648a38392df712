package imagestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not png or jpeg.
var ErrUnsupportedType = errors.New("imagestore: unsupported image type")

// Store is the contract for persisting uploaded post images.
type Store interface {
	// Save persists the image and returns its public URL path.
	Save(filename string, r io.Reader) (string, error)
	// Remove deletes a previously saved image by its public URL path.
	Remove(imageURL string) error
}

// DiskStore implements Store on the local filesystem. Saved images are
// addressable under /images/.
type DiskStore struct {
	dir    string
	logger *log.Logger
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir string, logger *log.Logger) (*DiskStore, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &DiskStore{dir: dir, logger: logger}, nil
}

// Dir returns the backing directory, for static serving.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the upload to disk under a fresh name and returns its URL path.
func (s *DiskStore) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg":
	default:
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image file: %w", err)
	}
	return "/images/" + name, nil
}

// Remove deletes the image behind the URL path. A missing file is not an
// error.
func (s *DiskStore) Remove(imageURL string) error {
	name := path.Base(imageURL)
	if name == "." || name == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
