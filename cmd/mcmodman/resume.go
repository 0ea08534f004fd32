package main

import (
	"errors"
	"fmt"

	"mcmodman/internal/core"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Finish an interrupted switch",
	Long: `Re-run the last switch if it stopped part way, for example because a file
could not be moved. Files already moved are skipped.

Examples:
  mcmodman resume`,
	Args: cobra.NoArgs,
	RunE: runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	service, _, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer service.Close()

	out := cmd.OutOrStdout()

	last, result, err := service.Resume(cmd.Context())
	if errors.Is(err, core.ErrNothingToResume) {
		if jsonOutput {
			return writeJSON(out, map[string]string{"outcome": "nothing-to-resume"})
		}
		fmt.Fprintln(out, "Nothing to resume.")
		return nil
	}
	if err != nil {
		if !jsonOutput {
			reportSwitchError(cmd.ErrOrStderr(), err)
		}
		return err
	}

	if jsonOutput {
		return writeJSON(out, newSwitchJSON(result))
	}
	if verbose {
		fmt.Fprintf(out, "Resuming switch %s started %s\n", last.ID, formatTime(last.StartedAt))
	}
	printSwitchResult(out, result)
	return nil
}
