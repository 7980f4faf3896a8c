package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/attic/pkg/attic/fingercache"
	"github.com/jamesainslie/attic/pkg/attic/logging"
	"github.com/jamesainslie/attic/pkg/attic/store"
	"github.com/jamesainslie/attic/pkg/attic/types"
)

var logger = logging.Get("scanner")

// Result is the outcome of a scan.
type Result struct {
	// Records holds one fingerprint per regular file found. Order is not
	// guaranteed; the walk is parallel.
	Records []types.FileRecord

	// FilesScanned is the number of regular files fingerprinted.
	FilesScanned int64

	// BytesHashed is the total bytes fed through the hasher (cache hits
	// excluded).
	BytesHashed int64

	// CacheHits and CacheMisses count fingerprint cache outcomes.
	CacheHits   int64
	CacheMisses int64

	// Warnings lists skipped entries and per-file read errors.
	Warnings []string

	// Elapsed is the total scan duration.
	Elapsed time.Duration
}

// Scanner fingerprints one directory tree.
type Scanner struct {
	opts Options

	filesScanned atomic.Int64
	bytesHashed  atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64

	records   []types.FileRecord
	recordsMu sync.Mutex

	warnings   []string
	warningsMu sync.Mutex

	cacheEntries   map[string]*fingercache.Entry
	cacheEntriesMu sync.Mutex

	root string
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	_ = opts.Validate()
	return &Scanner{opts: opts}
}

// Scan walks the root and returns a fingerprint record for every regular
// file. It blocks until the walk completes or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}
	s.root = root

	if s.opts.Cache != nil {
		s.cacheEntries = make(map[string]*fingercache.Entry)
	}

	conf := fastwalk.Config{
		Follow:     false, // Never follow symlinks.
		NumWorkers: s.opts.Workers,
	}
	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.visit(path, d, err)
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	s.flushCacheEntries()

	logger.Debug("scan complete",
		"root", root,
		"files", s.filesScanned.Load(),
		"cache_hits", s.cacheHits.Load(),
		"elapsed", time.Since(start))

	return &Result{
		Records:      s.records,
		FilesScanned: s.filesScanned.Load(),
		BytesHashed:  s.bytesHashed.Load(),
		CacheHits:    s.cacheHits.Load(),
		CacheMisses:  s.cacheMisses.Load(),
		Warnings:     s.warnings,
		Elapsed:      time.Since(start),
	}, nil
}

// validateRoot resolves the root to an absolute path and confirms it is a
// directory.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", s.opts.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNotDirectory, root)
		}
		return "", fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return root, nil
}

// visit handles one walk entry: filter, stat, fingerprint.
func (s *Scanner) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		// Unreadable entry, likely deleted mid-scan. Warn and continue.
		s.warn("cannot read %s: %v", path, err)
		return nil
	}
	if d.IsDir() {
		return nil
	}

	rel, relErr := filepath.Rel(s.root, path)
	if relErr != nil {
		s.warn("cannot relativize %s: %v", path, relErr)
		return nil
	}
	rel = filepath.ToSlash(rel)

	// The store's sidecar files describe this tree; they never belong in
	// their own snapshot.
	if rel == filepath.Base(rel) && store.IsSidecar(rel) {
		return nil
	}

	if !d.Type().IsRegular() {
		s.warn("skipping non-regular file %s", path)
		return nil
	}

	if s.isExcluded(rel) {
		return nil
	}

	info, infoErr := d.Info()
	if infoErr != nil {
		s.warn("cannot stat %s: %v", path, infoErr)
		return nil
	}

	size := info.Size()
	mtime := info.ModTime().Unix()
	ctime := statCtime(path, info)

	digest, err := s.fingerprint(path, rel, size, mtime)
	if err != nil {
		s.warn("cannot hash %s: %v", path, err)
		return nil
	}

	s.filesScanned.Add(1)
	rec := types.FileRecord{
		Path:   rel,
		SHA256: digest,
		Size:   size,
		Ctime:  ctime,
		Mtime:  mtime,
	}
	s.recordsMu.Lock()
	s.records = append(s.records, rec)
	s.recordsMu.Unlock()
	return nil
}

// fingerprint returns the file's digest, consulting the cache first.
func (s *Scanner) fingerprint(path, rel string, size, mtime int64) (string, error) {
	if s.opts.Cache != nil {
		entry, err := s.opts.Cache.Get(s.root, rel)
		if err == nil && entry.Valid(size, mtime) {
			s.cacheHits.Add(1)
			return entry.SHA256, nil
		}
		if err != nil && !errors.Is(err, fingercache.ErrNotFound) {
			logger.Warn("cache read failed", "path", rel, "error", err)
		}
		s.cacheMisses.Add(1)
	}

	digest, err := hashFile(path)
	if err != nil {
		return "", err
	}
	s.bytesHashed.Add(size)

	if s.opts.Cache != nil {
		s.cacheEntriesMu.Lock()
		s.cacheEntries[rel] = &fingercache.Entry{Size: size, Mtime: mtime, SHA256: digest}
		s.cacheEntriesMu.Unlock()
	}
	return digest, nil
}

// flushCacheEntries writes fresh fingerprints back to the cache.
func (s *Scanner) flushCacheEntries() {
	if s.opts.Cache == nil || len(s.cacheEntries) == 0 {
		return
	}
	if err := s.opts.Cache.PutBatch(s.root, s.cacheEntries); err != nil {
		logger.Warn("cache update failed", "root", s.root, "error", err)
	}
}

// isExcluded reports whether the relative path matches an exclude pattern.
func (s *Scanner) isExcluded(rel string) bool {
	for _, pattern := range s.opts.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// warn records a non-fatal scan problem.
func (s *Scanner) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg)
	s.warningsMu.Lock()
	s.warnings = append(s.warnings, msg)
	s.warningsMu.Unlock()
}

// hashFile computes the hex SHA-256 digest of the file's full content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
