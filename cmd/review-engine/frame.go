// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/framing"
	"github.com/pdiddy/review-engine/internal/ingest"
	"github.com/pdiddy/review-engine/pkg/types"
)

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Translate the project context into extraction framing",
	Long: `Frame rewrites the requester's plain-language context as a structured
framing paragraph that steers extraction without biasing it. The translated
framing is saved back into the project file; edit it there and re-run with
--skip to keep manual changes.

Framing is text-only, so it works with either backend. When the backend is
unavailable the raw context is reshaped with a template instead.`,
	RunE: runFrame,
}

func runFrame(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("project")

	project, err := ingest.LoadProject(configPath)
	if err != nil {
		return err
	}

	project.Framing = framing.Run(context.Background(), framingConfigFromFlags(cmd), project.ContextRaw, os.Stdout)

	for _, warning := range framing.Validate(project.Framing) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	if err := ingest.WriteProject(project, configPath); err != nil {
		return err
	}
	fmt.Printf("Framing saved to %s\n", configPath)
	return nil
}

func framingConfigFromFlags(cmd *cobra.Command) types.FramingConfig {
	skip, _ := cmd.Flags().GetBool("skip")
	return types.FramingConfig{
		AIConfig: aiConfigFromFlags(cmd),
		Skip:     skip,
	}
}

func init() {
	frameCmd.Flags().String("project", defaultConfigPath, "path to the project file")
	frameCmd.Flags().Bool("skip", false, "use the raw context instead of AI translation")
	frameCmd.Flags().String("provider", "gemini", "AI backend: gemini or openai")
	frameCmd.Flags().String("model", "gemini-3-flash-preview", "model identifier for framing translation")
	frameCmd.Flags().Int("max-retries", 3, "retry attempts for transient API errors")

	rootCmd.AddCommand(frameCmd)
}
