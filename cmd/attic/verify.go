package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/attic/pkg/attic/output"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <archive-dir>",
	Short: "Verify an archive and update its snapshot",
	Long: `Verify scans the archive directory, compares every file against the
snapshot from the previous run, and writes the updated snapshot.

Unchanged files are confirmed; changed, renamed, new, and deleted files are
reported with exact counts. With --strict, any changed or deleted file makes
the run fail and the previous snapshot is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// runVerify handles the verify command.
func runVerify(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	rc, err := newRunContext()
	if err != nil {
		return err
	}
	defer rc.Close()

	section, _, err := rc.verifyArchive(cmd.Context(), dir)
	if err != nil {
		// Render what was classified before failing, so a strict
		// violation still shows the user what changed.
		if section.Report != nil {
			_ = render(&output.Result{Sections: []output.Section{section}})
		}
		printError("%v", err)
		return err
	}
	return render(&output.Result{Sections: []output.Section{section}})
}
