// Package output provides formatters for displaying reconciliation results
// in various output formats (plain, json, pretty).
//
// The package uses a registry pattern so formatters can be selected at
// runtime by name.
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/attic/pkg/attic/reconcile"
)

// ScanStats summarizes the fingerprinting work behind a section.
type ScanStats struct {
	// FilesScanned is the number of regular files fingerprinted.
	FilesScanned int64 `json:"files_scanned"`

	// BytesHashed is the total bytes fed through the hasher.
	BytesHashed int64 `json:"bytes_hashed"`

	// CacheHits is the number of digests served from the fingerprint
	// cache.
	CacheHits int64 `json:"cache_hits"`

	// Duration is the scan wall time.
	Duration time.Duration `json:"duration"`
}

// Section is the result of reconciling one directory: the archive, or the
// staging tree during triage.
type Section struct {
	// Title labels the section ("archive", "staging").
	Title string `json:"title"`

	// Root is the directory the section describes.
	Root string `json:"root"`

	// Report holds the classified changes.
	Report *reconcile.Report `json:"report"`

	// Stats summarizes the underlying scan.
	Stats ScanStats `json:"stats"`

	// LedgerAdded is the number of deletion entries recorded this run
	// (triage only).
	LedgerAdded int `json:"ledger_added,omitempty"`

	// SidecarRemoved is set when the staging sidecar was deleted because
	// the directory emptied out.
	SidecarRemoved bool `json:"sidecar_removed,omitempty"`
}

// Result is the complete output of one run.
type Result struct {
	// Sections lists the reconciled directories in run order.
	Sections []Section `json:"sections"`
}

// countOrder fixes the display order of classification counts.
var countOrder = []reconcile.Status{
	reconcile.StatusUnchanged,
	reconcile.StatusMetadataChanged,
	reconcile.StatusContentChanged,
	reconcile.StatusRenamed,
	reconcile.StatusNew,
	reconcile.StatusDeleted,
	reconcile.StatusDuplicateOfArchive,
	reconcile.StatusPreviouslyRejected,
}

// Formatter is the interface all output formatters implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds a formatter factory, replacing any existing formatter with
// the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
