package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jamesainslie/attic/pkg/attic/auditlog"
	"github.com/jamesainslie/attic/pkg/attic/config"
	"github.com/jamesainslie/attic/pkg/attic/fingercache"
	"github.com/jamesainslie/attic/pkg/attic/logging"
	"github.com/jamesainslie/attic/pkg/attic/output"
	"github.com/jamesainslie/attic/pkg/attic/reconcile"
	"github.com/jamesainslie/attic/pkg/attic/scanner"
	"github.com/jamesainslie/attic/pkg/attic/store"
	"github.com/jamesainslie/attic/pkg/attic/types"
)

// ErrPrecondition marks invalid arguments detected before any scan begins.
var ErrPrecondition = errors.New("precondition failed")

// runContext carries the shared resources of one CLI invocation.
type runContext struct {
	cache *fingercache.Store
	audit *auditlog.Log
}

// newRunContext initializes logging and opens the fingerprint cache and
// audit log according to the effective configuration.
func newRunContext() (*runContext, error) {
	if err := initLogging(); err != nil {
		return nil, err
	}
	rc := &runContext{}

	if viper.GetBool("cache.enabled") && !viper.GetBool("no_cache") {
		cachePath := viper.GetString("cache.path")
		cacheStore, err := fingercache.Open(cachePath)
		if err != nil {
			// A broken cache must never block an audit.
			logging.Get("cli").Warn("fingerprint cache unavailable", "path", cachePath, "error", err)
		} else {
			rc.cache = cacheStore
		}
	}

	if viper.GetBool("auditlog.enabled") {
		auditLog, err := auditlog.New(viper.GetString("auditlog.path"))
		if err != nil {
			return nil, err
		}
		rc.audit = auditLog
	}
	return rc, nil
}

// Close releases the run's resources.
func (rc *runContext) Close() {
	if rc.cache != nil {
		_ = rc.cache.Close()
	}
	logging.Close()
}

// resolveDir expands and absolutizes a directory argument.
func resolveDir(arg string) (string, error) {
	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", arg, err)
	}
	return abs, nil
}

// checkNotNested rejects directory pairs where one contains the other. The
// check runs before any scan: auditing a staging tree that lives inside the
// archive (or vice versa) would double-count every file.
func checkNotNested(a, b string) error {
	relAB, errAB := filepath.Rel(a, b)
	relBA, errBA := filepath.Rel(b, a)
	if errAB != nil || errBA != nil {
		// Unrelated roots (different volumes); nothing to reject.
		return nil
	}
	if !strings.HasPrefix(relAB, "..") || !strings.HasPrefix(relBA, "..") {
		return fmt.Errorf("%w: %s and %s overlap; one must not contain the other", ErrPrecondition, a, b)
	}
	return nil
}

// scanTree fingerprints a directory using the run's cache and settings.
func (rc *runContext) scanTree(ctx context.Context, root string) (*scanner.Result, error) {
	s := scanner.New(scanner.Options{
		Root:    root,
		Exclude: viper.GetStringSlice("exclude"),
		Workers: viper.GetInt("workers"),
		Cache:   rc.cache,
	})
	return s.Scan(ctx)
}

// verifyArchive runs the archive workflow: scan, reconcile against the
// stored snapshot, persist the superseding snapshot. In strict mode a
// changed or deleted file aborts the run before the snapshot is replaced.
func (rc *runContext) verifyArchive(ctx context.Context, dir string) (output.Section, *types.Snapshot, error) {
	snapshotPath := store.SidecarPath(dir, store.SnapshotFilename)
	ref, err := store.LoadSnapshot(snapshotPath)
	if err != nil {
		return output.Section{}, nil, err
	}

	scan, err := rc.scanTree(ctx, dir)
	if err != nil {
		return output.Section{}, nil, err
	}

	updated, report, err := reconcile.VerifyAndUpdate(dir, ref, scan.Records)
	if err != nil {
		return output.Section{}, nil, err
	}
	report.Warnings = scan.Warnings

	section := output.Section{
		Title:  "archive",
		Root:   dir,
		Report: report,
		Stats: output.ScanStats{
			FilesScanned: scan.FilesScanned,
			BytesHashed:  scan.BytesHashed,
			CacheHits:    scan.CacheHits,
			Duration:     scan.Elapsed,
		},
	}

	if viper.GetBool("strict") {
		if err := reconcile.CheckStrict(report); err != nil {
			// Keep the previous snapshot so the violation is still
			// reported on the next run.
			return section, nil, err
		}
	}

	if ref != nil {
		updated.Sequence = ref.Sequence
	}
	if err := store.SaveSnapshot(snapshotPath, updated); err != nil {
		return section, nil, err
	}
	rc.recordRun(auditlog.OpVerify, report)
	return section, updated, nil
}

// triageStaging runs the staging workflow against an already verified
// archive snapshot.
func (rc *runContext) triageStaging(ctx context.Context, archiveDir, stagingDir string, archive *types.Snapshot) (output.Section, error) {
	ledgerPath := store.SidecarPath(archiveDir, store.DeletionsFilename)
	ledger, err := store.LoadDeletionLedger(ledgerPath)
	if err != nil {
		return output.Section{}, err
	}

	stagingPath := store.SidecarPath(stagingDir, store.StagingFilename)
	prevStaging, err := store.LoadSnapshot(stagingPath)
	if err != nil {
		return output.Section{}, err
	}

	scan, err := rc.scanTree(ctx, stagingDir)
	if err != nil {
		return output.Section{}, err
	}

	report, updatedStaging, deletions, err := reconcile.TriageNewFiles(stagingDir, archive, ledger, prevStaging, scan.Records)
	if err != nil {
		return output.Section{}, err
	}
	report.Warnings = scan.Warnings

	added := 0
	for _, d := range deletions {
		if !ledger.Has(d.SHA256) {
			added++
		}
		ledger.Add(d.SHA256, d.Entry)
	}
	if added > 0 {
		if err := store.SaveDeletionLedger(ledgerPath, ledger); err != nil {
			return output.Section{}, err
		}
	}

	section := output.Section{
		Title:  "staging",
		Root:   stagingDir,
		Report: report,
		Stats: output.ScanStats{
			FilesScanned: scan.FilesScanned,
			BytesHashed:  scan.BytesHashed,
			CacheHits:    scan.CacheHits,
			Duration:     scan.Elapsed,
		},
		LedgerAdded: added,
	}

	if updatedStaging.Len() == 0 {
		// Everything was moved out or discarded; the sidecar is the last
		// artifact left and keeping it would make an empty directory
		// look tracked.
		if err := store.RemoveSidecar(stagingPath); err != nil {
			return section, err
		}
		if prevStaging != nil {
			section.SidecarRemoved = true
		}
	} else {
		if prevStaging != nil {
			updatedStaging.Sequence = prevStaging.Sequence
		}
		if err := store.SaveSnapshot(stagingPath, updatedStaging); err != nil {
			return section, err
		}
	}

	rc.recordRun(auditlog.OpTriage, report)
	return section, nil
}

// recordRun writes an audit-log entry; failures are logged, never fatal.
func (rc *runContext) recordRun(op auditlog.OperationType, report *reconcile.Report) {
	if rc.audit == nil {
		return
	}
	if _, err := rc.audit.Record(op, report); err != nil {
		logging.Get("cli").Warn("failed to record audit entry", "error", err)
	}
	if days := viper.GetInt("auditlog.retention_days"); days > 0 {
		_ = rc.audit.Cleanup(days)
	}
}

// render formats the result with the configured formatter and prints it.
func render(result *output.Result) error {
	name := viper.GetString("output")
	formatter, err := output.Get(name)
	if err != nil {
		return fmt.Errorf("%s (available: %s)", err, strings.Join(output.Available(), ", "))
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return err
	}
	if !viper.GetBool("quiet") {
		fmt.Print(buf.String())
	}
	return nil
}
