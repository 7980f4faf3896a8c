// Package types provides the core data model for the attic archive auditor.
// It defines file fingerprint records, directory snapshots, and the deletion
// ledger, along with the validation rules that keep snapshots well-formed.
package types

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// ErrInvalidPath is returned when a relative path is empty, absolute, or
// escapes the scan root.
var ErrInvalidPath = errors.New("invalid relative path")

// ErrDuplicatePath is returned when a snapshot already contains a record for
// the given relative path.
var ErrDuplicatePath = errors.New("duplicate relative path")

// FileRecord is the fingerprint of one regular file as of a scan or snapshot.
type FileRecord struct {
	// Path is the file's path relative to the scan root, using forward
	// slashes. It is the record's key within a snapshot and is not
	// serialized inside the record itself.
	Path string `json:"-"`

	// SHA256 is the hex-encoded SHA-256 digest of the file's full content.
	SHA256 string `json:"sha256"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Ctime is the inode change time as Unix seconds.
	Ctime int64 `json:"ctime"`

	// Mtime is the last modification time as Unix seconds.
	Mtime int64 `json:"mtime"`
}

// SameContent reports whether the two records have identical content digests.
func (r FileRecord) SameContent(other FileRecord) bool {
	return r.SHA256 == other.SHA256
}

// SameMetadata reports whether size and both timestamps match.
func (r FileRecord) SameMetadata(other FileRecord) bool {
	return r.Size == other.Size && r.Ctime == other.Ctime && r.Mtime == other.Mtime
}

// ValidateRelPath checks that p is a usable relative path: non-empty, not
// absolute, and containing no parent-directory segments.
func ValidateRelPath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%w: %q escapes the root", ErrInvalidPath, p)
	}
	return nil
}

// Snapshot is a point-in-time mapping of relative paths to fingerprints for
// one directory tree. Snapshots are never mutated after reconciliation; a new
// snapshot supersedes the old one on each successful run.
type Snapshot struct {
	// Root is the absolute path of the directory tree the snapshot
	// describes.
	Root string `json:"root"`

	// Sequence increases by one on every save. It totally orders the
	// snapshots taken of a root.
	Sequence uint64 `json:"sequence"`

	// TakenAt records when the snapshot was persisted. Informational;
	// Sequence is the ordering authority.
	TakenAt time.Time `json:"taken_at"`

	// Files maps relative path to the file's fingerprint record.
	Files map[string]FileRecord `json:"files"`
}

// NewSnapshot returns an empty snapshot for the given root.
func NewSnapshot(root string) *Snapshot {
	return &Snapshot{
		Root:  root,
		Files: make(map[string]FileRecord),
	}
}

// Add inserts a record keyed by its relative path. It rejects invalid paths
// and duplicates.
func (s *Snapshot) Add(rec FileRecord) error {
	if err := ValidateRelPath(rec.Path); err != nil {
		return err
	}
	if _, ok := s.Files[rec.Path]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePath, rec.Path)
	}
	s.Files[rec.Path] = rec
	return nil
}

// Get returns the record for the given relative path.
func (s *Snapshot) Get(relPath string) (FileRecord, bool) {
	rec, ok := s.Files[relPath]
	return rec, ok
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Files)
}

// DeletionEntry records content the user deliberately removed from staging.
// It is keyed in the ledger by the content's SHA-256 digest.
type DeletionEntry struct {
	// Path is the relative path the content had when it was deleted.
	// Informational; the digest is the identity.
	Path string `json:"path"`

	// Size is the byte length the content had.
	Size int64 `json:"size"`

	// Mtime is the last modification time the file had, Unix seconds.
	Mtime int64 `json:"mtime"`

	// DeletedAt is when the deletion was first recorded.
	DeletedAt time.Time `json:"deleted_at"`
}

// DeletionLedger accumulates deletion entries across runs. Entries are only
// ever added; content once recorded stays recorded for the lifetime of the
// archive.
type DeletionLedger struct {
	// Entries maps hex SHA-256 digest to the deletion record.
	Entries map[string]DeletionEntry `json:"entries"`
}

// NewDeletionLedger returns an empty ledger.
func NewDeletionLedger() *DeletionLedger {
	return &DeletionLedger{Entries: make(map[string]DeletionEntry)}
}

// Has reports whether the ledger contains the given content digest.
func (l *DeletionLedger) Has(sha256 string) bool {
	if l == nil {
		return false
	}
	_, ok := l.Entries[sha256]
	return ok
}

// Add records a deletion for the given digest. The first entry for a digest
// wins; later additions of the same content are ignored so that the ledger
// grows monotonically and never rewrites history.
func (l *DeletionLedger) Add(sha256 string, entry DeletionEntry) {
	if _, ok := l.Entries[sha256]; ok {
		return
	}
	l.Entries[sha256] = entry
}

// Len returns the number of ledger entries.
func (l *DeletionLedger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}
