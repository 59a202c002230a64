// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/aggregate"
	"github.com/pdiddy/review-engine/internal/checkpoint"
	"github.com/pdiddy/review-engine/internal/extract"
	"github.com/pdiddy/review-engine/internal/framing"
	"github.com/pdiddy/review-engine/internal/ingest"
	"github.com/pdiddy/review-engine/internal/llm"
	"github.com/pdiddy/review-engine/pkg/types"
)

// spotCheckCount is how many documents are extracted before the operator
// gets a chance to inspect quality and abort a misconfigured batch early.
const spotCheckCount = 3

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline with interactive checkpoints",
	Long: `Run executes every stage in order: ingest, framing, extraction, and
aggregation, pausing at three checkpoints for operator review: after
configuration, after the first few extractions, and before archiving. Use
--yes for unattended runs.

Extraction is resumable: re-running skips documents that already have a
valid record, so an interrupted batch picks up where it left off.`,
	RunE: runPipeline,
}

// pipelineConfigFromFlags assembles the full stage configuration for one
// pipeline run.
func pipelineConfigFromFlags(cmd *cobra.Command) types.PipelineConfig {
	skipFraming, _ := cmd.Flags().GetBool("skip-framing")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	archiveDir, _ := cmd.Flags().GetString("archive-dir")

	framingAI := aiConfigFromFlags(cmd)
	if framingAI.Model == "" && framingAI.Provider != types.ProviderOpenAI {
		// Framing is a light text-only call; the extraction model would be
		// overkill for it.
		framingAI.Model = "gemini-3-flash-preview"
	}

	return types.PipelineConfig{
		Ingest: ingestConfigFromFlags(cmd),
		Framing: types.FramingConfig{
			AIConfig: framingAI,
			Skip:     skipFraming,
		},
		Extraction: extractionConfigFromFlags(cmd),
		Output: types.OutputConfig{
			OutputDir:  outputDir,
			ArchiveDir: archiveDir,
		},
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfigFromFlags(cmd)
	aggregateOnly, _ := cmd.Flags().GetBool("aggregate-only")
	testMode, _ := cmd.Flags().GetBool("test")
	force, _ := cmd.Flags().GetBool("force")
	yes, _ := cmd.Flags().GetBool("yes")

	var confirmer checkpoint.Confirmer = &checkpoint.Terminal{In: os.Stdin, Out: os.Stdout}
	if yes {
		confirmer = checkpoint.Auto{}
	}

	ctx := context.Background()
	configPath := cfg.Ingest.ProjectPath

	if !aggregateOnly {
		phase("INGEST")
		project, problems, err := ingest.Run(cfg.Ingest, os.Stdout)
		if err != nil {
			return err
		}

		phase("TRANSLATE FRAMING")
		project.Framing = framing.Run(ctx, cfg.Framing, project.ContextRaw, os.Stdout)
		if err := ingest.WriteProject(project, configPath); err != nil {
			return err
		}

		checkpoint.RenderConfigReview(os.Stdout, project, problems)
		ok, err := confirmer.Confirm("Approve configuration and continue to extraction?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("\nEdit %s and re-run (use --skip-framing to keep manual framing edits).\n", configPath)
			return nil
		}

		phase("EXTRACT")
		if err := extractPhase(ctx, cfg.Extraction, project, confirmer, testMode, force); err != nil {
			return err
		}
	}

	project, err := ingest.LoadProject(configPath)
	if err != nil {
		return err
	}

	phase("AGGREGATE")
	outputs, err := writeOutputs(project, cfg.Extraction.RecordsDir, cfg.Output)
	if err != nil {
		return err
	}

	store, err := extract.NewStore(cfg.Extraction.RecordsDir)
	if err != nil {
		return err
	}
	records, err := store.LoadAll()
	if err != nil {
		return err
	}
	coverages := aggregate.Coverage(records, project.Questions)
	checkpoint.RenderFinalReview(os.Stdout, coverages, outputs)

	ok, err := confirmer.Confirm("Approve outputs and archive this run?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("\nOutputs saved but not archived. Re-run with --aggregate-only after inspecting.")
		return nil
	}

	phase("ARCHIVE")
	dest, err := archiveRun(configPath, cfg.Extraction.RecordsDir, cfg.Output)
	if err != nil {
		return err
	}
	fmt.Printf("Archived to %s/\n", dest)
	return nil
}

// extractPhase runs extraction in two batches: a small spot-check batch the
// operator reviews, then the remainder. The second batch never forces, so
// the spot-checked documents are not re-extracted.
func extractPhase(ctx context.Context, cfg types.ExtractionConfig, project *types.Project, confirmer checkpoint.Confirmer, testMode, force bool) error {
	client, err := llm.New(ctx, cfg.AIConfig)
	if err != nil {
		return err
	}

	started := time.Now()
	fmt.Printf("Extracting first %d sources for spot-check...\n\n", spotCheckCount)
	summary, err := extract.ExtractAll(ctx, client, project, cfg,
		extract.Options{Force: force, Limit: spotCheckCount}, os.Stdout)
	if err != nil {
		return err
	}

	if !testMode {
		store, err := extract.NewStore(cfg.RecordsDir)
		if err != nil {
			return err
		}
		records, err := store.LoadAll()
		if err != nil {
			return err
		}
		checkpoint.RenderSpotCheck(os.Stdout, records, project.Questions)

		ok, err := confirmer.Confirm("Continue with the remaining sources?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("\nInspect the records in %s/ and re-run; adjust the framing if extractions miss the mark.\n", cfg.RecordsDir)
			return fmt.Errorf("extraction aborted at spot-check")
		}

		if len(project.Sources) > spotCheckCount {
			fmt.Println("\nContinuing with remaining sources...")
			rest, err := extract.ExtractAll(ctx, client, project, cfg, extract.Options{}, os.Stdout)
			if err != nil {
				return err
			}
			summary = mergeSummaries(summary, rest, firstBatchExtracted(project, summary))
		}
	}

	fmt.Printf("\nextracted: %d, skipped: %d, failed: %d\n",
		summary.Extracted, summary.Skipped, summary.Failed)

	if err := logRun(project, cfg, summary, started, force); err != nil {
		fmt.Fprintf(os.Stderr, "warning: run log write failed: %v\n", err)
	}

	if summary.HasFailures() {
		fmt.Fprintf(os.Stderr, "warning: %d document(s) failed extraction; aggregation will cover the rest\n", summary.Failed)
	}
	return nil
}

// firstBatchExtracted returns the sequence numbers the spot-check batch
// actually extracted: the documents it processed minus those it skipped or
// failed.
func firstBatchExtracted(project *types.Project, first extract.BatchSummary) map[int]bool {
	notExtracted := make(map[int]bool, first.Skipped+first.Failed)
	for _, seq := range first.SkippedSequences {
		notExtracted[seq] = true
	}
	for _, f := range first.Failures {
		notExtracted[f.SequenceNumber] = true
	}

	extracted := make(map[int]bool, first.Extracted)
	for i, src := range project.Sources {
		if i >= first.Total() {
			break
		}
		if !notExtracted[src.SequenceNumber] {
			extracted[src.SequenceNumber] = true
		}
	}
	return extracted
}

// mergeSummaries reconciles the spot-check batch with the full batch that
// follows it. The full batch revisits every source: documents extracted
// during the spot-check show up as skipped, and documents that failed are
// re-attempted. The full batch is therefore authoritative, except that
// spot-check extractions must be reclassified from skipped back to
// extracted, keeping their review flags.
func mergeSummaries(first, rest extract.BatchSummary, firstExtracted map[int]bool) extract.BatchSummary {
	merged := extract.BatchSummary{
		Extracted: rest.Extracted,
		Failed:    rest.Failed,
		Failures:  rest.Failures,
		Reviews:   rest.Reviews,
	}

	for _, seq := range rest.SkippedSequences {
		if firstExtracted[seq] {
			merged.Extracted++
			continue
		}
		merged.Skipped++
		merged.SkippedSequences = append(merged.SkippedSequences, seq)
	}

	for _, review := range first.Reviews {
		if firstExtracted[review.SequenceNumber] {
			merged.Reviews = append(merged.Reviews, review)
		}
	}
	return merged
}

func phase(name string) {
	fmt.Printf("\n%s\n  PHASE: %s\n%s\n\n", divider, name, divider)
}

var divider = "=============================================================================="

// archiveRun copies the project file, records, and outputs into a
// timestamped folder under the archive directory.
func archiveRun(configPath, recordsDir string, out types.OutputConfig) (string, error) {
	dest := filepath.Join(out.ArchiveDir, time.Now().Format("2006-01-02_150405"))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	if err := copyFileTo(configPath, filepath.Join(dest, filepath.Base(configPath))); err != nil {
		return "", err
	}
	if err := copyTree(recordsDir, filepath.Join(dest, filepath.Base(recordsDir))); err != nil {
		return "", err
	}
	if err := copyTree(out.OutputDir, filepath.Join(dest, filepath.Base(out.OutputDir))); err != nil {
		return "", err
	}
	return dest, nil
}

func copyTree(from, to string) error {
	return filepath.WalkDir(from, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFileTo(path, target)
	})
}

func copyFileTo(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("opening %s: %w", from, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("creating %s: %w", to, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying %s: %w", from, err)
	}
	return dst.Close()
}

func init() {
	runCmd.Flags().String("excel", defaultFormPath, "path to the Microsoft Forms Excel export")
	runCmd.Flags().String("pdfs", defaultPDFInputDir, "folder containing the requester's PDFs")
	runCmd.Flags().String("pdf-dir", defaultPDFDir, "destination folder for numbered PDFs")
	runCmd.Flags().String("project", defaultConfigPath, "path for the project file")
	runCmd.Flags().String("records-dir", defaultRecordsDir, "folder for extraction records")
	runCmd.Flags().String("output-dir", defaultOutputDir, "folder for generated review outputs")
	runCmd.Flags().String("archive-dir", defaultArchiveDir, "folder for archived runs")
	runCmd.Flags().Bool("test", false, "test mode: only process the first few sources")
	runCmd.Flags().Bool("skip-framing", false, "use the raw context instead of AI framing translation")
	runCmd.Flags().Bool("aggregate-only", false, "skip ingest and extraction, only aggregate")
	runCmd.Flags().Bool("force", false, "re-extract documents that already have a record")
	runCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompts")
	runCmd.Flags().Duration("call-delay", time.Second, "minimum spacing between AI calls")
	runCmd.Flags().String("provider", "gemini", "AI backend: gemini or openai")
	runCmd.Flags().String("model", "", "model identifier (default: backend-specific)")
	runCmd.Flags().Int("max-retries", 3, "retry attempts for transient API errors")

	rootCmd.AddCommand(runCmd)
}
