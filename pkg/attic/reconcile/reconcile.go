// Package reconcile implements the reconciliation engine: it diffs a
// persisted snapshot against a fresh scan of the same tree, classifies every
// file, detects renames by content digest, and produces the superseding
// snapshot. It never touches the filesystem; scans arrive as in-memory record
// slices and snapshots as values.
package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jamesainslie/attic/pkg/attic/types"
)

// ErrIntegrityViolation is returned by CheckStrict when an archive expected
// to be append-only shows changed or deleted content.
var ErrIntegrityViolation = errors.New("archive integrity violation")

// diffResult holds the intermediate classification of a snapshot-vs-scan
// comparison before rename resolution.
type diffResult struct {
	changes []Change
	// renamed maps old path to new path for records reclassified in the
	// rename pass.
	renamed map[string]string
}

// VerifyAndUpdate compares the reference snapshot against a fresh scan of
// root and returns the superseding snapshot plus the classified report.
// The scan is ground truth: the updated snapshot always adopts the current
// records, whatever the classification says.
//
// ref may be nil on the first run; every scanned file then classifies as new.
func VerifyAndUpdate(root string, ref *types.Snapshot, scan []types.FileRecord) (*types.Snapshot, *Report, error) {
	current, err := snapshotFromScan(root, scan)
	if err != nil {
		return nil, nil, err
	}

	report := NewReport(root)
	diff := diffSnapshots(ref, current)
	for _, c := range diff.changes {
		report.Add(c)
	}
	return current, report, nil
}

// DeletionRecord pairs a content digest with its ledger entry. Triage returns
// these for the caller to merge into the persisted deletion ledger.
type DeletionRecord struct {
	SHA256 string
	Entry  types.DeletionEntry
}

// TriageNewFiles reconciles a staging directory against its own previous
// snapshot, the archive's snapshot, and the deletion ledger.
//
// Files that disappeared from staging since the previous run (and were not
// renamed within it) become deletion records: the user looked at them and
// chose not to keep them. Content that reappears in the archive is the
// exception — it was moved in, not thrown away, and never enters the ledger.
// Files still present are checked against the archive
// (duplicate_of_archive) and the ledger (previously_rejected) by content
// digest. The returned staging snapshot is a full replacement built from the
// scan; staging state is transient and never merged.
func TriageNewFiles(
	stagingRoot string,
	archive *types.Snapshot,
	ledger *types.DeletionLedger,
	prevStaging *types.Snapshot,
	scan []types.FileRecord,
) (*Report, *types.Snapshot, []DeletionRecord, error) {
	current, err := snapshotFromScan(stagingRoot, scan)
	if err != nil {
		return nil, nil, nil, err
	}

	report := NewReport(stagingRoot)
	diff := diffSnapshots(prevStaging, current)

	// Index the archive by content digest, used both for duplicate detection
	// and to keep moved-in content out of the deletion ledger. Multiple
	// archive paths can share a digest; keep the lexically smallest so the
	// report is deterministic.
	archiveByHash := make(map[string]string)
	if archive != nil {
		for p, rec := range archive.Files {
			if prev, ok := archiveByHash[rec.SHA256]; !ok || p < prev {
				archiveByHash[rec.SHA256] = p
			}
		}
	}

	var deletions []DeletionRecord
	now := time.Now().UTC()
	for _, c := range diff.changes {
		switch c.Status {
		case StatusDeleted:
			rec := c.OldRecord
			if _, archived := archiveByHash[rec.SHA256]; !archived {
				deletions = append(deletions, DeletionRecord{
					SHA256: rec.SHA256,
					Entry: types.DeletionEntry{
						Path:      rec.Path,
						Size:      rec.Size,
						Mtime:     rec.Mtime,
						DeletedAt: now,
					},
				})
			}
			report.Add(c)
		default:
			// Archive and ledger checks take precedence over the
			// within-staging classification: the point of triage is to
			// tell the user which content is already settled.
			rec := c.NewRecord
			if archPath, ok := archiveByHash[rec.SHA256]; ok {
				c.Status = StatusDuplicateOfArchive
				c.ArchivePath = archPath
			} else if ledger.Has(rec.SHA256) {
				c.Status = StatusPreviouslyRejected
			}
			report.Add(c)
		}
	}
	return report, current, deletions, nil
}

// CheckStrict returns ErrIntegrityViolation when the report contains changed
// or deleted files. Verify runs use it when the caller treats the archive as
// append-only; the engine itself only classifies.
func CheckStrict(r *Report) error {
	violations := r.Count(StatusContentChanged) + r.Count(StatusDeleted)
	if violations > 0 {
		return fmt.Errorf("%w: %d changed, %d deleted under %s",
			ErrIntegrityViolation,
			r.Count(StatusContentChanged), r.Count(StatusDeleted), r.Root)
	}
	return nil
}

// snapshotFromScan builds a snapshot from scanner output, rejecting invalid
// or duplicate relative paths.
func snapshotFromScan(root string, scan []types.FileRecord) (*types.Snapshot, error) {
	snap := types.NewSnapshot(root)
	for _, rec := range scan {
		if err := snap.Add(rec); err != nil {
			return nil, fmt.Errorf("scan of %s: %w", root, err)
		}
	}
	return snap, nil
}

// diffSnapshots classifies every path in ref and current. Paths present in
// both compare by digest then metadata; one-sided paths become tentative
// deleted/new and go through the rename pass. Output order is deterministic
// regardless of scan order: matched and new paths ascend by current path,
// deletions ascend by old path.
func diffSnapshots(ref, current *types.Snapshot) diffResult {
	var refFiles map[string]types.FileRecord
	if ref != nil {
		refFiles = ref.Files
	}

	var tentativeNew, tentativeDeleted []types.FileRecord
	var matched []Change

	for _, p := range sortedPaths(current.Files) {
		cur := current.Files[p]
		old, ok := refFiles[p]
		if !ok {
			tentativeNew = append(tentativeNew, cur)
			continue
		}
		switch {
		case !old.SameContent(cur):
			matched = append(matched, Change{
				Status: StatusContentChanged, Path: p,
				OldRecord: old, NewRecord: cur,
			})
		case !old.SameMetadata(cur):
			matched = append(matched, Change{
				Status: StatusMetadataChanged, Path: p,
				OldRecord: old, NewRecord: cur,
			})
		default:
			matched = append(matched, Change{
				Status: StatusUnchanged, Path: p,
				OldRecord: old, NewRecord: cur,
			})
		}
	}

	for _, p := range sortedPaths(refFiles) {
		if _, ok := current.Files[p]; !ok {
			tentativeDeleted = append(tentativeDeleted, refFiles[p])
		}
	}

	renames, remainingDeleted, remainingNew := matchRenames(tentativeDeleted, tentativeNew)

	result := diffResult{renamed: make(map[string]string, len(renames))}
	result.changes = append(result.changes, matched...)
	for _, rn := range renames {
		result.renamed[rn.OldPath] = rn.Path
		result.changes = append(result.changes, rn)
	}
	for _, rec := range remainingNew {
		result.changes = append(result.changes, Change{
			Status: StatusNew, Path: rec.Path, NewRecord: rec,
		})
	}
	for _, rec := range remainingDeleted {
		result.changes = append(result.changes, Change{
			Status: StatusDeleted, Path: rec.Path, OldRecord: rec,
		})
	}
	return result
}

// matchRenames pairs tentatively deleted records against tentatively new
// records that share a content digest. When several records on either side
// share a digest, pairing is by ascending old path against ascending new
// path — deterministic and independent of scan order, with no guessing
// beyond that. Unpaired records keep their tentative classification.
func matchRenames(deleted, added []types.FileRecord) (renames []Change, remainingDeleted, remainingNew []types.FileRecord) {
	oldByHash := groupByHash(deleted)
	newByHash := groupByHash(added)

	pairedOld := make(map[string]bool)
	pairedNew := make(map[string]bool)

	for hash, olds := range oldByHash {
		news, ok := newByHash[hash]
		if !ok {
			continue
		}
		n := len(olds)
		if len(news) < n {
			n = len(news)
		}
		for i := 0; i < n; i++ {
			renames = append(renames, Change{
				Status:    StatusRenamed,
				Path:      news[i].Path,
				OldPath:   olds[i].Path,
				OldRecord: olds[i],
				NewRecord: news[i],
			})
			pairedOld[olds[i].Path] = true
			pairedNew[news[i].Path] = true
		}
	}

	sort.Slice(renames, func(i, j int) bool { return renames[i].Path < renames[j].Path })

	for _, rec := range deleted {
		if !pairedOld[rec.Path] {
			remainingDeleted = append(remainingDeleted, rec)
		}
	}
	for _, rec := range added {
		if !pairedNew[rec.Path] {
			remainingNew = append(remainingNew, rec)
		}
	}
	return renames, remainingDeleted, remainingNew
}

// groupByHash buckets records by digest, each bucket sorted by ascending
// relative path.
func groupByHash(recs []types.FileRecord) map[string][]types.FileRecord {
	m := make(map[string][]types.FileRecord)
	for _, rec := range recs {
		m[rec.SHA256] = append(m[rec.SHA256], rec)
	}
	for hash := range m {
		bucket := m[hash]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].Path < bucket[j].Path })
		m[hash] = bucket
	}
	return m
}

// sortedPaths returns the map's keys in ascending order.
func sortedPaths(files map[string]types.FileRecord) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
