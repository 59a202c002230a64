// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/runlog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the extraction run history",
	Long: `Status reads the run history database and prints recent extraction
runs. With --last it shows the per-document outcomes of the most recent
run, including failure reasons and records flagged for manual review.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	recordsDir, _ := cmd.Flags().GetString("records-dir")
	last, _ := cmd.Flags().GetBool("last")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := runlog.NewStore(recordsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if last {
		return printLastRun(store)
	}

	runs, err := store.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No extraction runs recorded.")
		return nil
	}

	fmt.Printf("%-22s  %-24s  %-9s  %-9s  %-7s  %-6s\n",
		"Started", "Model", "Extracted", "Skipped", "Failed", "Forced")
	fmt.Println(strings.Repeat("-", 86))
	for _, run := range runs {
		forced := ""
		if run.Forced {
			forced = "yes"
		}
		fmt.Printf("%-22s  %-24s  %-9d  %-9d  %-7d  %-6s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Model,
			run.Extracted, run.Skipped, run.Failed, forced)
	}
	return nil
}

func printLastRun(store *runlog.Store) error {
	run, err := store.LastRun(context.Background())
	if err != nil {
		return err
	}
	if run == nil {
		fmt.Println("No extraction runs recorded.")
		return nil
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	fmt.Printf("  Counts:   extracted %d, skipped %d, failed %d\n\n",
		run.Extracted, run.Skipped, run.Failed)

	for _, doc := range run.Documents {
		fmt.Printf("  %-9s  %2d. %s\n", doc.Status, doc.SequenceNumber, doc.Citation)
		if doc.FailureReason != "" {
			fmt.Printf("             %s\n", doc.FailureReason)
		}
		for _, warning := range doc.Warnings {
			fmt.Printf("             review: %s\n", warning)
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().String("records-dir", defaultRecordsDir, "folder containing the run history database")
	statusCmd.Flags().Bool("last", false, "show per-document outcomes of the most recent run")
	statusCmd.Flags().Int("limit", 10, "maximum runs to list")

	rootCmd.AddCommand(statusCmd)
}
