// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/review-engine/pkg/types"
)

// OpenAIClient calls the OpenAI Chat Completions API. It serves the
// text-only framing stage; it cannot attach PDFs, so extraction requires
// the Gemini backend.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI backend from cfg.
func NewOpenAIClient(cfg types.AIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}, nil
}

// Name identifies the backend.
func (c *OpenAIClient) Name() string { return "openai" }

// SupportsAttachments reports that OpenAI chat completions cannot take
// PDF attachments.
func (c *OpenAIClient) SupportsAttachments() bool { return false }

// GenerateText returns the model's text reply to prompt.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateFromPDF always fails: the chat API has no PDF attachment support.
func (c *OpenAIClient) GenerateFromPDF(ctx context.Context, pdfPath, prompt string) ([]byte, error) {
	return nil, ErrNoAttachments
}
