package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/attic/pkg/attic/reconcile"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	for i, sec := range r.Sections {
		if i > 0 {
			w.WriteString("\n")
		}
		f.formatSection(w, &sec)
	}
	return nil
}

func (f *PrettyFormatter) formatSection(w *bytes.Buffer, sec *Section) {
	title := TitleStyle.Render(sec.Title) + " " + sec.Root
	stats := MutedStyle.Render(fmt.Sprintf("%d files, %s hashed, %d cache hits, %s",
		sec.Stats.FilesScanned,
		humanize.IBytes(uint64(sec.Stats.BytesHashed)),
		sec.Stats.CacheHits,
		sec.Stats.Duration.Round(timeRounding)))
	w.WriteString(HeaderBox.Render(title + "\n" + stats))
	w.WriteString("\n")

	if sec.Report.AllVerified() {
		w.WriteString(SuccessStyle.Render(
			fmt.Sprintf("  all %d files verified unchanged", sec.Report.Total())))
		w.WriteString("\n")
	} else {
		w.WriteString("  " + countsLine(sec.Report) + "\n")
	}

	for _, c := range sec.Report.Changes {
		line := f.changeLine(c)
		if line != "" {
			w.WriteString(line + "\n")
		}
	}

	if sec.LedgerAdded > 0 {
		w.WriteString(MutedStyle.Render(
			fmt.Sprintf("  remembered %d deletions", sec.LedgerAdded)))
		w.WriteString("\n")
	}
	if sec.SidecarRemoved {
		w.WriteString(MutedStyle.Render("  removed staging metadata file (directory is empty)"))
		w.WriteString("\n")
	}
	if len(sec.Report.Warnings) > 0 {
		var sb strings.Builder
		for _, warning := range sec.Report.Warnings {
			sb.WriteString("  warning: " + warning + "\n")
		}
		w.WriteString(WarningStyle.Render(strings.TrimRight(sb.String(), "\n")))
		w.WriteString("\n")
	}
}

// changeLine renders one classified change, or "" for statuses that stay
// silent in the listing.
func (f *PrettyFormatter) changeLine(c reconcile.Change) string {
	switch c.Status {
	case reconcile.StatusUnchanged:
		return ""
	case reconcile.StatusRenamed:
		return WarningStyle.Render(fmt.Sprintf("  renamed %s -> %s", c.OldPath, c.Path))
	case reconcile.StatusMetadataChanged:
		return WarningStyle.Render(fmt.Sprintf("  metadata changed %s", c.Path))
	case reconcile.StatusContentChanged:
		return DangerStyle.Render(fmt.Sprintf("  content changed %s", c.Path))
	case reconcile.StatusDeleted:
		return DangerStyle.Render(fmt.Sprintf("  deleted %s", c.Path))
	case reconcile.StatusNew:
		return SuccessStyle.Render(fmt.Sprintf("  new %s", c.Path))
	case reconcile.StatusDuplicateOfArchive:
		return MutedStyle.Render(fmt.Sprintf("  duplicate %s (archived as %s)", c.Path, c.ArchivePath))
	case reconcile.StatusPreviouslyRejected:
		return MutedStyle.Render(fmt.Sprintf("  previously rejected %s", c.Path))
	default:
		return fmt.Sprintf("  %s %s", c.Status, c.Path)
	}
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
