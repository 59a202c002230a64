// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-engine/internal/secrets"
	"github.com/pdiddy/review-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// Default project layout. Every path can be overridden by a flag; the
// defaults match the directory structure `review-engine run` creates.
const (
	defaultFormPath    = "input/form_response.xlsx"
	defaultPDFInputDir = "input/pdfs"
	defaultPDFDir      = "pdfs"
	defaultRecordsDir  = "records"
	defaultConfigPath  = "config/project.yaml"
	defaultOutputDir   = "output"
	defaultArchiveDir  = "runs"
)

// rootCmd is the base command for the review-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "review-engine",
	Short: "Batch literature review extraction from academic PDFs",
	Long: `review-engine turns a folder of academic PDFs and a set of research
questions into a structured literature review: a markdown narrative grouped
by research question and a tabular evidence matrix.

Each pipeline stage is a subcommand: ingest, frame, extract, and aggregate.
Use run to execute the full pipeline with interactive checkpoints.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-engine.yaml or ~/.config/review-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-engine"))
		}
	}

	viper.SetEnvPrefix("REVIEW_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// aiConfigFromFlags assembles the AI backend configuration for a command
// that has provider and model flags. The API key comes from .secrets/ with
// an environment fallback.
func aiConfigFromFlags(cmd *cobra.Command) types.AIConfig {
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	retries, _ := cmd.Flags().GetInt("max-retries")

	secretKey := "gemini-api-key"
	if types.AIProvider(provider) == types.ProviderOpenAI {
		secretKey = "openai-api-key"
	}

	return types.AIConfig{
		Provider:   types.AIProvider(provider),
		Model:      model,
		APIKey:     secretDefault(secretKey, ""),
		MaxRetries: retries,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
