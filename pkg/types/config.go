// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the review pipeline:
// stage configurations, project definitions, and extraction records.
package types

import "time"

// AIProvider identifies the generative AI backend used for a stage.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderOpenAI AIProvider = "openai"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the AI backend: gemini or openai.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "gemini-3-pro-preview").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for transient API
	// failures (default 1).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// IngestConfig holds settings for the ingest stage.
type IngestConfig struct {
	// FormPath is the path to the Microsoft Forms Excel export.
	FormPath string `json:"form_path" yaml:"form_path"`

	// PDFDir is the folder containing the requester's original PDFs.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// RenamedDir is where numbered copies of matched PDFs are written.
	RenamedDir string `json:"renamed_dir" yaml:"renamed_dir"`

	// ProjectPath is where the generated project.yaml is written.
	ProjectPath string `json:"project_path" yaml:"project_path"`
}

// FramingConfig holds settings for the framing translation stage.
type FramingConfig struct {
	AIConfig `yaml:",inline"`

	// Skip bypasses the AI translation and uses the fallback framing
	// assembled from the raw form context.
	Skip bool `json:"skip" yaml:"skip"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	AIConfig `yaml:",inline"`

	// PDFDir is the folder of numbered PDFs produced by ingest.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// RecordsDir is the base directory for persisted extraction records
	// (contains one JSON file per document and index/review.db).
	RecordsDir string `json:"records_dir" yaml:"records_dir"`

	// CallDelay is the minimum spacing between AI calls (default 1s),
	// keeping the batch under the provider's rate limits.
	CallDelay time.Duration `json:"call_delay" yaml:"call_delay"`
}

// OutputConfig holds settings for the aggregation stage.
type OutputConfig struct {
	// OutputDir is the directory for generated review outputs
	// (markdown review, evidence matrix, quotes CSV).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ArchiveDir is where approved runs are archived.
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Ingest     IngestConfig     `json:"ingest" yaml:"ingest"`
	Framing    FramingConfig    `json:"framing" yaml:"framing"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}
