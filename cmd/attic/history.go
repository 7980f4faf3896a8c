package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/attic/pkg/attic/auditlog"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past verify and triage runs",
	Long: `View the history of verify and triage runs.

Each run records its classification counts, so you can see when files were
added, changed, or removed from the archive.`,
	RunE: runHistory,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove history entries older than the retention period",
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getAuditLog returns the audit log at the configured path.
func getAuditLog() (*auditlog.Log, error) {
	return auditlog.New(viper.GetString("auditlog.path"))
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, args []string) error {
	l, err := getAuditLog()
	if err != nil {
		return err
	}

	entries, err := l.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return nil
	}

	for _, entry := range entries {
		fmt.Println(formatHistoryEntry(entry))
	}
	return nil
}

// formatHistoryEntry renders one run, counts sorted by status so repeated
// invocations print identically.
func formatHistoryEntry(entry auditlog.Entry) string {
	statuses := make([]string, 0, len(entry.Counts))
	for status := range entry.Counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s %d", status, entry.Counts[status]))
	}
	return fmt.Sprintf("%s  %-6s %s  (%d files: %s)",
		entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
		entry.Operation,
		entry.Root,
		entry.Total,
		strings.Join(parts, ", "))
}

// runHistoryClean prunes old entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	l, err := getAuditLog()
	if err != nil {
		return err
	}
	days := viper.GetInt("auditlog.retention_days")
	if err := l.Cleanup(days); err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	fmt.Printf("Removed entries older than %d days.\n", days)
	return nil
}
