// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/aggregate"
	"github.com/pdiddy/review-engine/internal/extract"
	"github.com/pdiddy/review-engine/internal/ingest"
	"github.com/pdiddy/review-engine/pkg/types"
)

const (
	narrativeFile = "review_by_rq.md"
	matrixFile    = "extraction_matrix.xlsx"
	quotesFile    = "supporting_quotes.csv"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Render the review outputs from persisted extraction records",
	Long: `Aggregate folds the extraction records under records/ into the review
outputs: a markdown narrative grouped by research question, an Excel
evidence matrix with one row per document-question pairing, and a CSV of
all supporting quotes for spot-checking.

Aggregation makes no AI calls and can be re-run at any time, including
against a partial extraction set.`,
	RunE: runAggregate,
}

func runAggregate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("project")
	recordsDir, _ := cmd.Flags().GetString("records-dir")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	project, err := ingest.LoadProject(configPath)
	if err != nil {
		return err
	}

	_, err = writeOutputs(project, recordsDir, types.OutputConfig{OutputDir: outputDir})
	return err
}

// writeOutputs renders all three aggregation outputs and returns their
// paths. Shared between the aggregate subcommand and the full pipeline.
func writeOutputs(project *types.Project, recordsDir string, out types.OutputConfig) ([]string, error) {
	store, err := extract.NewStore(recordsDir)
	if err != nil {
		return nil, err
	}
	records, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no extraction records in %s: run extract first", recordsDir)
	}

	if err := os.MkdirAll(out.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	mdPath := filepath.Join(out.OutputDir, narrativeFile)
	fmt.Printf("Generating %s...\n", mdPath)
	narrative := aggregate.RenderNarrative(records, project, time.Now().Format("2006-01-02"))
	if err := os.WriteFile(mdPath, []byte(narrative), 0o644); err != nil {
		return nil, fmt.Errorf("writing narrative: %w", err)
	}

	xlsxPath := filepath.Join(out.OutputDir, matrixFile)
	fmt.Printf("Generating %s...\n", xlsxPath)
	rows := aggregate.MatrixRows(records, project.Questions)
	if err := aggregate.WriteMatrixXLSX(rows, xlsxPath); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(out.OutputDir, quotesFile)
	fmt.Printf("Generating %s...\n", csvPath)
	if err := aggregate.WriteQuotesCSV(records, project.Questions, csvPath); err != nil {
		return nil, err
	}

	return []string{mdPath, xlsxPath, csvPath}, nil
}

func init() {
	aggregateCmd.Flags().String("project", defaultConfigPath, "path to the project file")
	aggregateCmd.Flags().String("records-dir", defaultRecordsDir, "folder containing extraction records")
	aggregateCmd.Flags().String("output-dir", defaultOutputDir, "folder for generated review outputs")

	rootCmd.AddCommand(aggregateCmd)
}
