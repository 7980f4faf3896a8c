package reconcile

import "github.com/jamesainslie/attic/pkg/attic/types"

// Status classifies one file in a reconciliation report. Every file receives
// exactly one status.
type Status string

// Classification statuses.
const (
	// StatusUnchanged means same path, same digest, same metadata.
	StatusUnchanged Status = "unchanged"
	// StatusMetadataChanged means same path and digest but different
	// size or timestamps.
	StatusMetadataChanged Status = "metadata_changed"
	// StatusContentChanged means same path, different digest.
	StatusContentChanged Status = "content_changed"
	// StatusRenamed means different path, same digest, matched 1:1.
	StatusRenamed Status = "renamed"
	// StatusNew means the path and digest were not seen before.
	StatusNew Status = "new"
	// StatusDeleted means the path vanished and no rename matched it.
	StatusDeleted Status = "deleted"
	// StatusDuplicateOfArchive means a staging file whose content already
	// exists in the archive.
	StatusDuplicateOfArchive Status = "duplicate_of_archive"
	// StatusPreviouslyRejected means a staging file whose content is in
	// the deletion ledger.
	StatusPreviouslyRejected Status = "previously_rejected"
)

// Change describes the classification of a single file.
type Change struct {
	// Status is the classification.
	Status Status `json:"status"`

	// Path is the file's current relative path. For deleted files it is
	// the path the file had in the reference snapshot.
	Path string `json:"path"`

	// OldPath is set for renames: the path in the reference snapshot.
	OldPath string `json:"old_path,omitempty"`

	// ArchivePath is set for duplicate_of_archive: where the same content
	// lives in the archive.
	ArchivePath string `json:"archive_path,omitempty"`

	// OldRecord is the reference-side record, zero for new files.
	OldRecord types.FileRecord `json:"-"`

	// NewRecord is the scan-side record, zero for deleted files.
	NewRecord types.FileRecord `json:"-"`
}

// Report collects the classified changes of one reconciliation pass. Counts
// are derived from the change list and are exact; rendering is left to the
// output package.
type Report struct {
	// Root is the directory the report describes.
	Root string `json:"root"`

	// Changes lists every classified file in deterministic order.
	Changes []Change `json:"changes"`

	// Warnings carries non-fatal scan problems (skipped entries,
	// unreadable files) for display.
	Warnings []string `json:"warnings,omitempty"`

	counts map[Status]int
}

// NewReport returns an empty report for the given root.
func NewReport(root string) *Report {
	return &Report{Root: root, counts: make(map[Status]int)}
}

// Add appends a change and updates the counts.
func (r *Report) Add(c Change) {
	r.Changes = append(r.Changes, c)
	r.counts[c.Status]++
}

// Count returns the number of changes with the given status.
func (r *Report) Count(s Status) int {
	return r.counts[s]
}

// Total returns the number of classified files.
func (r *Report) Total() int {
	return len(r.Changes)
}

// ByStatus returns the changes carrying the given status, in report order.
func (r *Report) ByStatus(s Status) []Change {
	var out []Change
	for _, c := range r.Changes {
		if c.Status == s {
			out = append(out, c)
		}
	}
	return out
}

// AllVerified reports whether every file classified unchanged: the tree
// matches its snapshot exactly.
func (r *Report) AllVerified() bool {
	return r.Count(StatusUnchanged) == r.Total()
}
