package imagestore

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return store
}

func TestSaveAndRemove(t *testing.T) {
	store := newTestStore(t)

	url, err := store.Save("shot.JPG", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/images/") || !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("url = %q", url)
	}

	onDisk := filepath.Join(store.Dir(), filepath.Base(url))
	payload, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(payload) != "jpeg-bytes" {
		t.Fatalf("saved payload = %q", payload)
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Fatalf("file still present after Remove: %v", err)
	}

	// Removing again is not an error.
	if err := store.Remove(url); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save("same.png", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second, err := store.Save("same.png", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if first == second {
		t.Fatalf("two saves of the same filename collided: %q", first)
	}
}

func TestSaveRejectsUnsupportedTypes(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"script.sh", "photo.gif", "raw.CR2", "noext"} {
		if _, err := store.Save(name, strings.NewReader("x")); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("Save(%q) error = %v, want ErrUnsupportedType", name, err)
		}
	}
}

func TestRemoveIgnoresPathTraversal(t *testing.T) {
	store := newTestStore(t)

	outside := filepath.Join(filepath.Dir(store.Dir()), "victim.txt")
	if err := os.WriteFile(outside, []byte("keep me"), 0o644); err != nil {
		t.Fatalf("write victim: %v", err)
	}

	// Remove only ever considers the base name inside the store directory.
	if err := store.Remove("/images/../victim.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside the store was deleted: %v", err)
	}
}
