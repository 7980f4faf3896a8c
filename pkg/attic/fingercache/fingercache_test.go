package fingercache

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)

	entry := &Entry{Size: 42, Mtime: 1700000000, SHA256: "abcd"}
	if err := s.Put("/arc", "photos/1.jpg", entry); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get("/arc", "photos/1.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *got != *entry {
		t.Errorf("Get() = %+v, want %+v", got, entry)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Get("/arc", "nope.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_PutBatch(t *testing.T) {
	s := openTestStore(t)

	entries := map[string]*Entry{
		"a.txt": {Size: 1, Mtime: 10, SHA256: "h1"},
		"b.txt": {Size: 2, Mtime: 20, SHA256: "h2"},
	}
	if err := s.PutBatch("/arc", entries); err != nil {
		t.Fatalf("PutBatch() error = %v", err)
	}

	for rel, want := range entries {
		got, err := s.Get("/arc", rel)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", rel, err)
		}
		if *got != *want {
			t.Errorf("Get(%q) = %+v, want %+v", rel, got, want)
		}
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	s := openTestStore(t)

	_ = s.Put("/arc", "a.txt", &Entry{SHA256: "h1"})
	_ = s.Put("/other", "a.txt", &Entry{SHA256: "h2"})

	if err := s.DeletePrefix("/arc"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}

	if _, err := s.Get("/arc", "a.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted root entry still present, err = %v", err)
	}
	if _, err := s.Get("/other", "a.txt"); err != nil {
		t.Errorf("unrelated root was deleted: %v", err)
	}
}

func TestEntry_Valid(t *testing.T) {
	t.Parallel()

	entry := &Entry{Size: 10, Mtime: 100, SHA256: "h"}

	if !entry.Valid(10, 100) {
		t.Error("matching size+mtime must validate")
	}
	if entry.Valid(11, 100) {
		t.Error("size mismatch must invalidate")
	}
	if entry.Valid(10, 101) {
		t.Error("mtime mismatch must invalidate")
	}
}

func TestMakeKey_RootIsolation(t *testing.T) {
	t.Parallel()

	// Keys for different roots must never collide even when the path
	// strings concatenate identically.
	k1 := string(MakeKey("/a/b", "c.txt"))
	k2 := string(MakeKey("/a", "b/c.txt"))
	if k1 == k2 {
		t.Error("keys from different roots collide")
	}
}
