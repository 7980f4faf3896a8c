package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/attic/pkg/attic/output"
)

var triageCmd = &cobra.Command{
	Use:   "triage <archive-dir> <staging-dir>",
	Short: "Verify the archive, then triage an incoming directory",
	Long: `Triage verifies the archive exactly like the verify command, then checks
every file in the staging directory against the archive's content and the
deletion ledger:

  - content already in the archive is reported as a duplicate
  - content you previously removed from staging is reported as rejected
  - files that vanished from staging since the last run are remembered in
    the deletion ledger so they are never re-imported

The two directories must not contain each other; this is checked before any
scanning starts.`,
	Args: cobra.ExactArgs(2),
	RunE: runTriage,
}

func init() {
	rootCmd.AddCommand(triageCmd)
}

// runTriage handles the triage command.
func runTriage(cmd *cobra.Command, args []string) error {
	archiveDir, err := resolveDir(args[0])
	if err != nil {
		return err
	}
	stagingDir, err := resolveDir(args[1])
	if err != nil {
		return err
	}
	if err := checkNotNested(archiveDir, stagingDir); err != nil {
		printError("%v", err)
		return err
	}

	rc, err := newRunContext()
	if err != nil {
		return err
	}
	defer rc.Close()

	archiveSection, archiveSnap, err := rc.verifyArchive(cmd.Context(), archiveDir)
	if err != nil {
		if archiveSection.Report != nil {
			_ = render(&output.Result{Sections: []output.Section{archiveSection}})
		}
		printError("%v", err)
		return err
	}

	stagingSection, err := rc.triageStaging(cmd.Context(), archiveDir, stagingDir, archiveSnap)
	if err != nil {
		_ = render(&output.Result{Sections: []output.Section{archiveSection}})
		printError("%v", err)
		return err
	}

	return render(&output.Result{
		Sections: []output.Section{archiveSection, stagingSection},
	})
}
