// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog keeps a SQLite history of extraction runs. Each run stores
// its batch counts plus a per-document row with the outcome, so an operator
// can ask what happened to a given source without digging through console
// scrollback. The log is append-only; record files under records/ remain
// the source of truth for extraction content.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "review.db"

// Document statuses recorded per source.
const (
	StatusExtracted = "extracted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// DocumentRecord is the outcome for one source in one run.
type DocumentRecord struct {
	SequenceNumber int
	Filename       string
	Citation       string
	Status         string

	// FailureReason is set when Status is failed.
	FailureReason string

	// Warnings holds soft-normalization notes flagged for review.
	Warnings []string
}

// RunRecord is one extraction run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Model      string
	Forced     bool
	Extracted  int
	Skipped    int
	Failed     int
	Documents  []DocumentRecord
}

// Store manages the run log SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the run log database at dir/review.db,
// creating the schema if it does not exist.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening run log database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating run log schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			model TEXT,
			forced INTEGER NOT NULL DEFAULT 0,
			extracted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			run_id TEXT NOT NULL REFERENCES runs(id),
			sequence_number INTEGER NOT NULL,
			filename TEXT NOT NULL,
			citation TEXT,
			status TEXT NOT NULL,
			failure_reason TEXT,
			warnings TEXT,
			PRIMARY KEY (run_id, sequence_number)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun appends a run and its per-document outcomes. A missing run ID
// is filled in; the assigned ID is returned.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	forced := 0
	if run.Forced {
		forced = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, model, forced, extracted, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Model, forced, run.Extracted, run.Skipped, run.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (run_id, sequence_number, filename, citation, status, failure_reason, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing document insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range run.Documents {
		warningsJSON, _ := json.Marshal(doc.Warnings)
		_, err := stmt.ExecContext(ctx,
			run.ID, doc.SequenceNumber, doc.Filename, doc.Citation,
			doc.Status, doc.FailureReason, string(warningsJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting document %d: %w", doc.SequenceNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first, without their
// document rows.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, model, forced, extracted, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		var started, finished string
		var forced int
		if err := rows.Scan(&run.ID, &started, &finished, &run.Model, &forced,
			&run.Extracted, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		run.Forced = forced != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run with its document rows, or nil when
// the log is empty.
func (s *Store) LastRun(ctx context.Context) (*RunRecord, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	run := runs[0]
	docs, err := s.RunDocuments(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Documents = docs
	return &run, nil
}

// RunDocuments returns the per-document outcomes for a run, ordered by
// sequence number.
func (s *Store) RunDocuments(ctx context.Context, runID string) ([]DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence_number, filename, citation, status, failure_reason, warnings
		 FROM documents WHERE run_id = ? ORDER BY sequence_number`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		var warningsJSON string
		if err := rows.Scan(&doc.SequenceNumber, &doc.Filename, &doc.Citation,
			&doc.Status, &doc.FailureReason, &warningsJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if warningsJSON != "" {
			_ = json.Unmarshal([]byte(warningsJSON), &doc.Warnings)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
