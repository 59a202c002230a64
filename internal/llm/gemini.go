// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pdiddy/review-engine/pkg/types"
)

const defaultGeminiModel = "gemini-3-pro-preview"

// extractionTemperature keeps extraction replies close to the document text.
const extractionTemperature float32 = 0.2

// GeminiClient calls the Gemini API. PDFs are uploaded through the File
// API, referenced in the generation request, and deleted afterwards.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini backend from cfg.
func NewGeminiClient(ctx context.Context, cfg types.AIConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Name identifies the backend.
func (c *GeminiClient) Name() string { return "gemini" }

// SupportsAttachments reports that Gemini accepts PDF uploads.
func (c *GeminiClient) SupportsAttachments() bool { return true }

// GenerateText returns the model's text reply to prompt.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// GenerateFromPDF uploads the PDF, generates a JSON reply with the PDF and
// prompt as parts, and deletes the uploaded file. Deletion failures are
// ignored; the File API expires uploads on its own.
func (c *GeminiClient) GenerateFromPDF(ctx context.Context, pdfPath, prompt string) ([]byte, error) {
	file, err := c.client.Files.UploadFromPath(ctx, pdfPath, nil)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", pdfPath, err)
	}
	defer func() {
		_, _ = c.client.Files.Delete(ctx, file.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromURI(file.URI, file.MIMEType),
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temp := extractionTemperature
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate from %s: %w", pdfPath, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty reply for %s", pdfPath)
	}
	return []byte(text), nil
}
