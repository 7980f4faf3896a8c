package main

import (
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/attic/pkg/attic/auditlog"
)

func TestFormatHistoryEntry(t *testing.T) {
	t.Parallel()

	entry := auditlog.Entry{
		Timestamp: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		Operation: auditlog.OpVerify,
		Root:      "/my_archive",
		Counts: map[string]int{
			"unchanged":       3,
			"new":             2,
			"content_changed": 1,
		},
		Total: 6,
	}

	got := formatHistoryEntry(entry)

	// Counts render in sorted status order, not map order.
	want := "(6 files: content_changed 1, new 2, unchanged 3)"
	if !strings.HasSuffix(got, want) {
		t.Errorf("formatHistoryEntry() = %q, want suffix %q", got, want)
	}
	if !strings.Contains(got, "verify") {
		t.Errorf("formatHistoryEntry() = %q, missing operation", got)
	}
	if !strings.Contains(got, "/my_archive") {
		t.Errorf("formatHistoryEntry() = %q, missing root", got)
	}

	// Deterministic across calls.
	if again := formatHistoryEntry(entry); again != got {
		t.Errorf("formatHistoryEntry() not stable: %q vs %q", got, again)
	}
}
