package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/attic/pkg/attic/reconcile"
)

func sampleReport() *reconcile.Report {
	r := reconcile.NewReport("/my_archive")
	r.Add(reconcile.Change{Status: reconcile.StatusUnchanged, Path: "a.txt"})
	r.Add(reconcile.Change{Status: reconcile.StatusUnchanged, Path: "b.txt"})
	r.Add(reconcile.Change{Status: reconcile.StatusNew, Path: "c.txt"})
	return r
}

func TestLog_Record(t *testing.T) {
	t.Parallel()

	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entry, err := log.Record(OpVerify, sampleReport())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if entry.Operation != OpVerify {
		t.Errorf("Operation = %q, want %q", entry.Operation, OpVerify)
	}
	if entry.Root != "/my_archive" {
		t.Errorf("Root = %q, want /my_archive", entry.Root)
	}
	if entry.Counts["unchanged"] != 2 || entry.Counts["new"] != 1 {
		t.Errorf("Counts = %v, want unchanged:2 new:1", entry.Counts)
	}
	if entry.Total != 3 {
		t.Errorf("Total = %d, want 3", entry.Total)
	}
	if entry.ID == "" {
		t.Error("ID must not be empty")
	}
}

func TestLog_ListNewestFirst(t *testing.T) {
	t.Parallel()

	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := log.Record(OpVerify, sampleReport())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := log.Record(OpTriage, sampleReport())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := log.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != second.ID || entries[1].ID != first.ID {
		t.Errorf("List() order = [%s, %s], want newest first", entries[0].ID, entries[1].ID)
	}

	limited, err := log.List(1)
	if err != nil {
		t.Fatalf("List(1) error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Errorf("List(1) = %v, want only newest entry", limited)
	}
}

func TestLog_ListEmptyDirectory(t *testing.T) {
	t.Parallel()

	log, err := New(filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entries, err := log.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List() = %v, want empty", entries)
	}
}

func TestLog_Cleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	log, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	old, err := log.Record(OpVerify, sampleReport())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	// Age the file past the retention window.
	oldPath := filepath.Join(dir, old.ID+".json")
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	fresh, err := log.Record(OpTriage, sampleReport())
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if err := log.Cleanup(7); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	entries, err := log.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != fresh.ID {
		t.Errorf("after cleanup entries = %v, want only %s", entries, fresh.ID)
	}
}

func TestNew_EmptyDir(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Error("New(\"\") must fail")
	}
}
