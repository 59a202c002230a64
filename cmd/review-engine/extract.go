// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/extract"
	"github.com/pdiddy/review-engine/internal/ingest"
	"github.com/pdiddy/review-engine/internal/llm"
	"github.com/pdiddy/review-engine/internal/runlog"
	"github.com/pdiddy/review-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract evidence from each PDF against the research questions",
	Long: `Extract sends each source PDF to the AI backend with the research
questions and framing, normalizes the JSON reply, and persists one record
per document under records/. Documents with a valid record are skipped on
re-runs; use --force to re-extract everything.

Each batch is logged to the run history database (see status).`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("project")
	force, _ := cmd.Flags().GetBool("force")
	limit, _ := cmd.Flags().GetInt("limit")

	project, err := ingest.LoadProject(configPath)
	if err != nil {
		return err
	}

	cfg := extractionConfigFromFlags(cmd)
	client, err := llm.New(context.Background(), cfg.AIConfig)
	if err != nil {
		return err
	}

	started := time.Now()
	summary, err := extract.ExtractAll(context.Background(), client, project, cfg,
		extract.Options{Force: force, Limit: limit}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)

	if err := logRun(project, cfg, summary, started, force); err != nil {
		fmt.Fprintf(os.Stderr, "warning: run log write failed: %v\n", err)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", summary.Failed)
	}
	return nil
}

func extractionConfigFromFlags(cmd *cobra.Command) types.ExtractionConfig {
	pdfDir, _ := cmd.Flags().GetString("pdf-dir")
	recordsDir, _ := cmd.Flags().GetString("records-dir")
	delay, _ := cmd.Flags().GetDuration("call-delay")

	return types.ExtractionConfig{
		AIConfig:   aiConfigFromFlags(cmd),
		PDFDir:     pdfDir,
		RecordsDir: recordsDir,
		CallDelay:  delay,
	}
}

// logRun appends the batch outcome to the run history database. Failures
// here are reported as warnings; the extraction itself already succeeded.
func logRun(project *types.Project, cfg types.ExtractionConfig, summary extract.BatchSummary, started time.Time, forced bool) error {
	store, err := runlog.NewStore(cfg.RecordsDir)
	if err != nil {
		return err
	}
	defer store.Close()

	run := runlog.RunRecord{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Model:      cfg.Model,
		Forced:     forced,
		Extracted:  summary.Extracted,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
	}

	failures := make(map[int]string, len(summary.Failures))
	for _, f := range summary.Failures {
		failures[f.SequenceNumber] = f.Reason
	}
	warnings := make(map[int][]string, len(summary.Reviews))
	for _, r := range summary.Reviews {
		warnings[r.SequenceNumber] = r.Warnings
	}
	skipped := make(map[int]bool, len(summary.SkippedSequences))
	for _, seq := range summary.SkippedSequences {
		skipped[seq] = true
	}

	processed := summary.Total()
	for i, src := range project.Sources {
		if i >= processed {
			break
		}
		doc := runlog.DocumentRecord{
			SequenceNumber: src.SequenceNumber,
			Filename:       src.Filename,
			Citation:       src.Citation,
			Status:         runlog.StatusExtracted,
			Warnings:       warnings[src.SequenceNumber],
		}
		if skipped[src.SequenceNumber] {
			doc.Status = runlog.StatusSkipped
		}
		if reason, ok := failures[src.SequenceNumber]; ok {
			doc.Status = runlog.StatusFailed
			doc.FailureReason = reason
		}
		run.Documents = append(run.Documents, doc)
	}

	_, err = store.RecordRun(context.Background(), run)
	return err
}

func init() {
	extractCmd.Flags().String("project", defaultConfigPath, "path to the project file")
	extractCmd.Flags().String("pdf-dir", defaultPDFDir, "folder containing the numbered PDFs")
	extractCmd.Flags().String("records-dir", defaultRecordsDir, "folder for extraction records")
	extractCmd.Flags().Bool("force", false, "re-extract documents that already have a record")
	extractCmd.Flags().Int("limit", 0, "stop after this many documents (0 = all)")
	extractCmd.Flags().Duration("call-delay", time.Second, "minimum spacing between AI calls")
	extractCmd.Flags().String("provider", "gemini", "AI backend: gemini or openai")
	extractCmd.Flags().String("model", "", "model identifier (default: backend-specific)")
	extractCmd.Flags().Int("max-retries", 3, "retry attempts for transient API errors")

	rootCmd.AddCommand(extractCmd)
}
