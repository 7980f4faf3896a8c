// Package auditlog records one entry per auditor run so `attic history` can
// show what happened to an archive over time. Entries are small JSON files,
// written atomically and pruned by age.
package auditlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/attic/pkg/attic/reconcile"
)

// OperationType represents the kind of run recorded.
type OperationType string

const (
	// OpVerify is an archive verification run.
	OpVerify OperationType = "verify"
	// OpTriage is a staging triage run.
	OpTriage OperationType = "triage"
)

// Entry is one recorded run.
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Operation OperationType  `json:"operation"`
	Root      string         `json:"root"`
	Counts    map[string]int `json:"counts"`
	Total     int            `json:"total"`
}

// Log manages run history entries under a directory.
type Log struct {
	dir string
	mu  sync.Mutex
}

// New creates a Log rooted at dir. The directory is created on first write.
func New(dir string) (*Log, error) {
	if dir == "" {
		return nil, errors.New("audit log directory cannot be empty")
	}
	return &Log{dir: dir}, nil
}

// Record persists an entry summarizing a reconciliation report.
func (l *Log) Record(op OperationType, report *reconcile.Report) (*Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}

	counts := make(map[string]int)
	for _, c := range report.Changes {
		counts[string(c.Status)]++
	}

	entry := &Entry{
		ID:        fmt.Sprintf("%s-%s", op, uuid.NewString()),
		Timestamp: time.Now().UTC(),
		Operation: op,
		Root:      report.Root,
		Counts:    counts,
		Total:     report.Total(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal audit entry: %w", err)
	}

	path := filepath.Join(l.dir, entry.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("rename audit entry: %w", err)
	}
	return entry, nil
}

// List returns entries sorted newest first. A limit of zero or less returns
// everything.
func (l *Log) List(limit int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read audit log directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			// Skip files that can't be parsed.
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Cleanup removes entries older than retentionDays.
func (l *Log) Cleanup(retentionDays int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	files, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read audit log directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(l.dir, f.Name()))
		}
	}
	return nil
}
