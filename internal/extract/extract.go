// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract sends each source PDF to the AI backend, normalizes the
// reply into a typed extraction record, and persists one record per
// document. Documents are processed sequentially in citation order; a
// single document's failure never aborts the batch.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/review-engine/internal/llm"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Options control one extraction batch.
type Options struct {
	// Force re-extracts documents that already have a valid record.
	Force bool

	// Limit stops after processing this many documents (0 = all).
	// Used by test mode and the spot-check checkpoint.
	Limit int
}

// DocumentFailure records why one document produced no record.
type DocumentFailure struct {
	SequenceNumber int
	Filename       string
	Reason         string
}

// ReviewFlag marks a persisted document whose reply needed soft coercion
// and should be manually reviewed.
type ReviewFlag struct {
	SequenceNumber int
	Warnings       []string
}

// BatchSummary holds counts and details from one extraction batch.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int

	Failures []DocumentFailure
	Reviews  []ReviewFlag

	// SkippedSequences lists the sequence numbers of documents skipped
	// because a valid record already existed.
	SkippedSequences []int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// backoffBase controls the base duration for retry backoff. Tests override
// this to avoid real sleeps.
var backoffBase = 2 * time.Second

const defaultCallDelay = time.Second

// ExtractAll runs one extraction batch: for each source in sequence order
// it skips documents with a valid persisted record (unless opts.Force),
// otherwise sends the PDF and prompt to the backend, normalizes the reply,
// and persists the record. Transient backend errors are retried with
// backoff; normalization hard failures are not, since a structurally bad
// reply is unlikely to improve on immediate retry. Progress is reported
// line-by-line on w.
func ExtractAll(ctx context.Context, client llm.Client, project *types.Project, cfg types.ExtractionConfig, opts Options, w io.Writer) (BatchSummary, error) {
	if len(project.Questions) == 0 {
		return BatchSummary{}, fmt.Errorf("no research questions configured")
	}
	if len(project.Sources) == 0 {
		return BatchSummary{}, fmt.Errorf("no sources configured")
	}
	if !client.SupportsAttachments() {
		return BatchSummary{}, fmt.Errorf("backend %q cannot send PDF attachments; extraction requires gemini", client.Name())
	}

	store, err := NewStore(cfg.RecordsDir)
	if err != nil {
		return BatchSummary{}, err
	}

	delay := cfg.CallDelay
	if delay <= 0 {
		delay = defaultCallDelay
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var summary BatchSummary
	processed := 0

	for _, src := range project.Sources {
		if opts.Limit > 0 && processed >= opts.Limit {
			break
		}
		processed++

		if !opts.Force && store.HasValid(src, project.Questions) {
			fmt.Fprintf(w, "skipped %s (already extracted)\n", src.Filename)
			summary.Skipped++
			summary.SkippedSequences = append(summary.SkippedSequences, src.SequenceNumber)
			continue
		}

		fmt.Fprintf(w, "extracting %s\n", src.Filename)

		pdfPath := filepath.Join(cfg.PDFDir, src.Filename)
		record, warnings, err := extractOne(ctx, client, store, src, project, pdfPath, limiter, maxRetries)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			fmt.Fprintf(w, "failed  %s: %v\n", src.Filename, err)
			summary.Failed++
			summary.Failures = append(summary.Failures, DocumentFailure{
				SequenceNumber: src.SequenceNumber,
				Filename:       src.Filename,
				Reason:         err.Error(),
			})
			continue
		}

		if len(warnings) > 0 {
			summary.Reviews = append(summary.Reviews, ReviewFlag{
				SequenceNumber: src.SequenceNumber,
				Warnings:       warnings,
			})
			for _, warning := range warnings {
				fmt.Fprintf(w, "  review: %s\n", warning)
			}
		}

		fmt.Fprintf(w, "extracted %s (%d/%d questions with evidence)\n",
			src.Filename, record.EvidenceCount(), len(project.Questions))
		summary.Extracted++
	}

	return summary, nil
}

// extractOne handles a single document: rate limit, backend call with
// retry on transient errors, normalization, persistence.
func extractOne(ctx context.Context, client llm.Client, store *Store, src types.Source, project *types.Project, pdfPath string, limiter *rate.Limiter, maxRetries int) (*types.ExtractionRecord, []string, error) {
	prompt, err := BuildPrompt(src, project.Questions, project.Framing)
	if err != nil {
		return nil, nil, err
	}

	reply, err := callWithRetry(ctx, client, limiter, pdfPath, prompt, maxRetries)
	if err != nil {
		return nil, nil, err
	}

	record, warnings, err := Normalize(reply, src, project.Questions)
	if err != nil {
		return nil, nil, err
	}

	if err := store.Write(src, record); err != nil {
		return nil, nil, err
	}
	return record, warnings, nil
}

// callWithRetry sends the PDF and prompt, retrying transient backend
// errors with exponential backoff.
func callWithRetry(ctx context.Context, client llm.Client, limiter *rate.Limiter, pdfPath, prompt string, maxRetries int) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		reply, err := client.GenerateFromPDF(ctx, pdfPath, prompt)
		if err == nil {
			return reply, nil
		}
		if errors.Is(err, llm.ErrNoAttachments) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
