// Package store owns the on-disk snapshot and deletion-ledger formats. It
// reads and writes the JSON sidecar files that live inside audited
// directories, always replacing them atomically so a crash mid-write can
// never destroy the previous valid state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jamesainslie/attic/pkg/attic/logging"
	"github.com/jamesainslie/attic/pkg/attic/types"
)

// Sidecar file names, relative to the directory they describe.
const (
	// SnapshotFilename holds the archive directory's snapshot.
	SnapshotFilename = "attic.archive.json"
	// DeletionsFilename holds the archive's deletion ledger.
	DeletionsFilename = "attic.deletions.json"
	// StagingFilename holds the staging directory's snapshot.
	StagingFilename = "attic.staging.json"
)

// snapshotVersion is the current snapshot file format version.
const snapshotVersion = 1

// ledgerVersion is the current deletion ledger file format version.
const ledgerVersion = 1

// ErrCorruptMetadata is returned when a snapshot or ledger file exists but
// cannot be parsed. Callers must abort rather than treat the file as empty:
// an empty treatment would silently forget all prior history.
var ErrCorruptMetadata = errors.New("corrupt metadata file")

var logger = logging.Get("store")

// IsSidecar reports whether name (a base file name) is one of the sidecar
// files the store owns. The scanner uses this to keep metadata files out of
// their own snapshots.
func IsSidecar(name string) bool {
	switch name {
	case SnapshotFilename, DeletionsFilename, StagingFilename:
		return true
	}
	return false
}

// snapshotFile is the persisted snapshot structure.
type snapshotFile struct {
	Version  int                         `json:"version"`
	Root     string                      `json:"root"`
	Sequence uint64                      `json:"sequence"`
	TakenAt  time.Time                   `json:"taken_at"`
	Files    map[string]types.FileRecord `json:"files"`
}

// ledgerFile is the persisted deletion ledger structure.
type ledgerFile struct {
	Version int                            `json:"version"`
	Entries map[string]types.DeletionEntry `json:"entries"`
}

// LoadSnapshot reads a snapshot file. It returns (nil, nil) when the file
// does not exist (first run) and ErrCorruptMetadata when the file exists but
// cannot be parsed or fails validation.
func LoadSnapshot(path string) (*types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, path, err)
	}
	if f.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptMetadata, path, f.Version)
	}

	snap := types.NewSnapshot(f.Root)
	snap.Sequence = f.Sequence
	snap.TakenAt = f.TakenAt
	for relPath, rec := range f.Files {
		rec.Path = relPath
		if err := snap.Add(rec); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, path, err)
		}
	}

	logger.Debug("loaded snapshot", "path", path, "files", snap.Len(), "sequence", snap.Sequence)
	return snap, nil
}

// SaveSnapshot writes a snapshot atomically. The stored sequence is one past
// the snapshot's current sequence and TakenAt is stamped at save time, so
// persisted snapshots of a root are always totally ordered.
func SaveSnapshot(path string, snap *types.Snapshot) error {
	snap.Sequence++
	snap.TakenAt = time.Now().UTC()

	f := snapshotFile{
		Version:  snapshotVersion,
		Root:     snap.Root,
		Sequence: snap.Sequence,
		TakenAt:  snap.TakenAt,
		Files:    snap.Files,
	}
	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	logger.Debug("saved snapshot", "path", path, "files", snap.Len(), "sequence", snap.Sequence)
	return nil
}

// LoadDeletionLedger reads a deletion ledger file. A missing file yields an
// empty ledger; a present but unparsable file is ErrCorruptMetadata.
func LoadDeletionLedger(path string) (*types.DeletionLedger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewDeletionLedger(), nil
		}
		return nil, fmt.Errorf("read deletion ledger %s: %w", path, err)
	}

	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, path, err)
	}
	if f.Version != ledgerVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorruptMetadata, path, f.Version)
	}

	ledger := types.NewDeletionLedger()
	if f.Entries != nil {
		ledger.Entries = f.Entries
	}
	logger.Debug("loaded deletion ledger", "path", path, "entries", ledger.Len())
	return ledger, nil
}

// SaveDeletionLedger writes the ledger atomically.
func SaveDeletionLedger(path string, ledger *types.DeletionLedger) error {
	f := ledgerFile{
		Version: ledgerVersion,
		Entries: ledger.Entries,
	}
	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal deletion ledger: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("write deletion ledger %s: %w", path, err)
	}

	logger.Debug("saved deletion ledger", "path", path, "entries", ledger.Len())
	return nil
}

// RemoveSidecar deletes a now-useless sidecar file, logging the removal. The
// caller decides when a sidecar is stale (a staging snapshot whose directory
// has emptied out); the store only performs and records the action.
func RemoveSidecar(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove sidecar %s: %w", path, err)
	}
	logger.Info("removed empty sidecar", "path", path)
	return nil
}

// writeFileAtomic writes data to path via a temp file and rename, so readers
// never observe a partial file and a crash leaves the previous version
// intact.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// SidecarPath joins a directory with one of the sidecar file names.
func SidecarPath(dir, name string) string {
	return filepath.Join(dir, name)
}
