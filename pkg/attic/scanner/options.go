// Package scanner fingerprints directory trees. It walks a root in parallel,
// hashes every regular file, and returns the per-file records the
// reconciliation engine consumes. Non-regular entries and unreadable files
// are skipped with warnings; only a missing or non-directory root is fatal.
package scanner

import (
	"errors"
	"runtime"

	"github.com/jamesainslie/attic/pkg/attic/fingercache"
)

// ErrNotDirectory is returned when the scan root does not exist or is not a
// directory.
var ErrNotDirectory = errors.New("scan root is not a directory")

// Options configures a scan.
type Options struct {
	// Root is the directory to fingerprint.
	Root string

	// Exclude contains doublestar patterns matched against relative
	// paths; matching files are left out of the scan.
	Exclude []string

	// Workers is the walk parallelism. Zero uses the CPU count.
	Workers int

	// Cache, when non-nil, supplies digests for files whose size and
	// mtime have not changed since the last run.
	Cache *fingercache.Store
}

// Validate applies defaults for unset values.
func (o *Options) Validate() error {
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	return nil
}
