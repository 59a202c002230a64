// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/ingest"
	"github.com/pdiddy/review-engine/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse the intake form and match PDFs to sources",
	Long: `Ingest reads the Microsoft Forms Excel export, extracts the project
metadata, research questions, and citation list, matches each citation to a
PDF in the input folder, and copies the PDFs under numbered names. The
result is written as the project configuration file that the remaining
stages read.`,
	RunE: runIngestCmd,
}

func runIngestCmd(cmd *cobra.Command, args []string) error {
	_, problems, err := ingest.Run(ingestConfigFromFlags(cmd), os.Stdout)
	if err != nil {
		return err
	}
	for _, problem := range problems {
		fmt.Fprintf(os.Stderr, "warning: %s\n", problem)
	}
	return nil
}

func ingestConfigFromFlags(cmd *cobra.Command) types.IngestConfig {
	formPath, _ := cmd.Flags().GetString("excel")
	pdfInputDir, _ := cmd.Flags().GetString("pdfs")
	pdfDir, _ := cmd.Flags().GetString("pdf-dir")
	configPath, _ := cmd.Flags().GetString("project")

	return types.IngestConfig{
		FormPath:    formPath,
		PDFDir:      pdfInputDir,
		RenamedDir:  pdfDir,
		ProjectPath: configPath,
	}
}

func init() {
	ingestCmd.Flags().String("excel", defaultFormPath, "path to the Microsoft Forms Excel export")
	ingestCmd.Flags().String("pdfs", defaultPDFInputDir, "folder containing the requester's PDFs")
	ingestCmd.Flags().String("pdf-dir", defaultPDFDir, "destination folder for numbered PDFs")
	ingestCmd.Flags().String("project", defaultConfigPath, "path for the generated project file")

	rootCmd.AddCommand(ingestCmd)
}
