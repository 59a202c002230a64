// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the generative AI backends used by the framing and
// extraction stages. The rest of the pipeline depends only on the Client
// interface so tests can supply a mock.
package llm

import (
	"context"
	"errors"
)

// ErrNoAttachments is returned by backends that cannot send PDF
// attachments when asked to generate from a PDF.
var ErrNoAttachments = errors.New("backend does not support PDF attachments")

// Client is a generative AI backend. Calls may be slow (tens of seconds)
// and replies may be malformed; callers own retry and validation.
type Client interface {
	// Name identifies the backend ("gemini", "openai").
	Name() string

	// SupportsAttachments reports whether GenerateFromPDF works on this
	// backend. Extraction requires an attachment-capable backend.
	SupportsAttachments() bool

	// GenerateText returns the model's text reply to prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// GenerateFromPDF sends the PDF at pdfPath together with prompt and
	// returns the raw reply text. Backends without attachment support
	// return ErrNoAttachments.
	GenerateFromPDF(ctx context.Context, pdfPath, prompt string) ([]byte, error)
}
