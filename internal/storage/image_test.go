package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) *ImageStore {
	t.Helper()
	s, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	return s
}

func TestSaveAndResolve(t *testing.T) {
	s := newStore(t)

	name, err := s.Save(strings.NewReader("fake-png-bytes"), "salle.PNG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(name) != ".png" {
		t.Fatalf("stored name %q, want .png extension", name)
	}
	if name == "salle.png" {
		t.Fatal("stored name must not reuse the client file name")
	}

	p, err := s.Path(name)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake-png-bytes" {
		t.Fatalf("stored content = %q", data)
	}
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	s := newStore(t)
	if _, err := s.Save(strings.NewReader("x"), "malware.exe"); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("err = %v, want ErrUnsupportedImage", err)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"../secret.png", "a/b.png", ""} {
		if _, err := s.Path(name); err == nil {
			t.Errorf("Path(%q) succeeded, want error", name)
		}
	}
}

func TestRemoveMissingIsNoError(t *testing.T) {
	s := newStore(t)
	if err := s.Remove("never-stored.png"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
}
