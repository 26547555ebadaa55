package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trrcms",
		Short:         "TRRCMS survey import pipeline operations tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newDetectCmd())
	cmd.AddCommand(newReviewCompleteCmd())
	cmd.AddCommand(newCommitCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newAbandonCmd())
	cmd.AddCommand(newCleanupCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newFindingsCmd())
	cmd.AddCommand(newApproveCmd())
	cmd.AddCommand(newConflictsCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newExportReportCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVocabCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
