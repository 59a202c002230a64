// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runlog

import (
	"context"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(started time.Time) RunRecord {
	return RunRecord{
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Model:      "gemini-3-pro-preview",
		Extracted:  2,
		Skipped:    1,
		Failed:     1,
		Documents: []DocumentRecord{
			{SequenceNumber: 1, Filename: "01_Adams_2021.pdf", Citation: "Adams (2021)", Status: StatusSkipped},
			{SequenceNumber: 2, Filename: "02_Baker_2022.pdf", Citation: "Baker (2022)", Status: StatusExtracted},
			{
				SequenceNumber: 3,
				Filename:       "03_Chen_2023.pdf",
				Citation:       "Chen (2023)",
				Status:         StatusExtracted,
				Warnings:       []string{"rq2: unknown direction \"inconclusive\" treated as mixed"},
			},
			{
				SequenceNumber: 4,
				Filename:       "04_Diaz_2024.pdf",
				Citation:       "Diaz (2024)",
				Status:         StatusFailed,
				FailureReason:  "rq1: has_evidence missing",
			},
		},
	}
}

func TestRecordRunAssignsID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	id, err := store.RecordRun(ctx, testRun(time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated run ID")
	}

	explicit := testRun(time.Now())
	explicit.ID = "run-explicit"
	got, err := store.RecordRun(ctx, explicit)
	if err != nil {
		t.Fatal(err)
	}
	if got != "run-explicit" {
		t.Fatalf("expected explicit ID to be kept, got %q", got)
	}
}

func TestRunDocumentsRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := testRun(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	id, err := store.RecordRun(ctx, run)
	if err != nil {
		t.Fatal(err)
	}

	docs, err := store.RunDocuments(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(docs))
	}
	for i, doc := range docs {
		if doc.SequenceNumber != i+1 {
			t.Errorf("document %d out of order: sequence %d", i, doc.SequenceNumber)
		}
	}

	failed := docs[3]
	if failed.Status != StatusFailed {
		t.Errorf("expected failed status, got %q", failed.Status)
	}
	if failed.FailureReason != "rq1: has_evidence missing" {
		t.Errorf("unexpected failure reason %q", failed.FailureReason)
	}

	flagged := docs[2]
	if len(flagged.Warnings) != 1 || flagged.Warnings[0] != "rq2: unknown direction \"inconclusive\" treated as mixed" {
		t.Errorf("unexpected warnings %v", flagged.Warnings)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := testRun(base.Add(time.Duration(i) * time.Hour))
		run.Documents = nil
		if _, err := store.RecordRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
	if runs[0].Model != "gemini-3-pro-preview" {
		t.Errorf("unexpected model %q", runs[0].Model)
	}
}

func TestLastRun(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	got, err := store.LastRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty log, got %+v", got)
	}

	older := testRun(time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))
	older.Documents = nil
	if _, err := store.RecordRun(ctx, older); err != nil {
		t.Fatal(err)
	}
	newer := testRun(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	newer.Forced = true
	if _, err := store.RecordRun(ctx, newer); err != nil {
		t.Fatal(err)
	}

	got, err = store.LastRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected a run")
	}
	if !got.Forced {
		t.Error("expected the forced run to be last")
	}
	if len(got.Documents) != 4 {
		t.Errorf("expected 4 documents, got %d", len(got.Documents))
	}
	if got.Extracted != 2 || got.Skipped != 1 || got.Failed != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
}
