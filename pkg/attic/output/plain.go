package output

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/attic/pkg/attic/reconcile"
)

// PlainFormatter produces unstyled text suitable for scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for i, sec := range r.Sections {
		if i > 0 {
			w.WriteString("\n")
		}
		f.formatSection(w, &sec)
	}
	return nil
}

func (f *PlainFormatter) formatSection(w *bytes.Buffer, sec *Section) {
	fmt.Fprintf(w, "%s %s\n", sec.Title, sec.Root)
	fmt.Fprintf(w, "  scanned %d files (%s hashed, %d cache hits) in %s\n",
		sec.Stats.FilesScanned,
		humanize.IBytes(uint64(sec.Stats.BytesHashed)),
		sec.Stats.CacheHits,
		sec.Stats.Duration.Round(timeRounding))

	if sec.Report.AllVerified() {
		fmt.Fprintf(w, "  all %d files verified unchanged\n", sec.Report.Total())
	} else {
		w.WriteString("  " + countsLine(sec.Report) + "\n")
	}

	for _, c := range sec.Report.Changes {
		switch c.Status {
		case reconcile.StatusUnchanged:
			// Omitted: unchanged files are the quiet majority.
		case reconcile.StatusRenamed:
			fmt.Fprintf(w, "  renamed %s -> %s\n", c.OldPath, c.Path)
		case reconcile.StatusDuplicateOfArchive:
			fmt.Fprintf(w, "  duplicate %s (archived as %s)\n", c.Path, c.ArchivePath)
		default:
			fmt.Fprintf(w, "  %s %s\n", c.Status, c.Path)
		}
	}

	if sec.LedgerAdded > 0 {
		fmt.Fprintf(w, "  remembered %d deletions\n", sec.LedgerAdded)
	}
	if sec.SidecarRemoved {
		w.WriteString("  removed staging metadata file (directory is empty)\n")
	}
	for _, warning := range sec.Report.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
