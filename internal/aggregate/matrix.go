// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/review-engine/pkg/types"
)

const maxAnswerRunes = 500

// MatrixRow is one document-question pairing in the evidence matrix.
type MatrixRow struct {
	SequenceNumber int
	Citation       string
	StudyType      string
	SampleN        string
	QuestionID     string
	HasEvidence    bool
	Answer         string
	EffectSize     string
	Direction      types.Direction
	QuoteCount     int
}

// MatrixHeader returns the column headings for the evidence matrix, in the
// order WriteMatrixXLSX emits them.
func MatrixHeader() []string {
	return []string{
		"Source #",
		"Citation",
		"Study Type",
		"Sample N",
		"Research Question",
		"Has Evidence",
		"Finding",
		"Effect Size",
		"Direction",
		"Quote Count",
	}
}

// MatrixRows builds the full document-by-question cross product, including
// pairings with no evidence so the matrix shows gaps explicitly. Rows are
// ordered by sequence number, then by question declaration order.
func MatrixRows(records []*types.ExtractionRecord, questions []types.ResearchQuestion) []MatrixRow {
	coverages := Coverage(records, questions)
	if len(coverages) == 0 {
		return nil
	}

	// Coverage groups by question; the matrix groups by document, so
	// re-index entries per record before emitting rows.
	byQuestion := make(map[string]map[int]types.EvidenceEntry, len(questions))
	for _, cov := range coverages {
		bySeq := make(map[int]types.EvidenceEntry, len(cov.Entries))
		for _, ce := range cov.Entries {
			bySeq[ce.Record.SequenceNumber] = ce.Entry
		}
		byQuestion[cov.Question.ID] = bySeq
	}

	var rows []MatrixRow
	for _, ce := range coverageDocuments(coverages[0]) {
		for _, q := range questions {
			row := MatrixRow{
				SequenceNumber: ce.SequenceNumber,
				Citation:       ce.Citation,
				StudyType:      ce.StudyType,
				SampleN:        sampleN(ce.Sample),
				QuestionID:     strings.ToUpper(q.ID),
				Direction:      types.DirectionNone,
			}
			if entry, ok := byQuestion[q.ID][ce.SequenceNumber]; ok {
				row.HasEvidence = true
				row.Answer = truncateRunes(entry.Answer, maxAnswerRunes)
				if entry.EffectSize != nil {
					row.EffectSize = *entry.EffectSize
				}
				row.Direction = entry.Direction
				row.QuoteCount = len(entry.SupportingQuotes)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// coverageDocuments recovers the sequence-ordered document list from a
// coverage entry, merging documents with and without evidence.
func coverageDocuments(cov types.QuestionCoverage) []*types.ExtractionRecord {
	docs := make([]*types.ExtractionRecord, 0, cov.TotalDocuments)
	for _, ce := range cov.Entries {
		docs = append(docs, ce.Record)
	}
	docs = append(docs, cov.Without...)
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SequenceNumber < docs[j].SequenceNumber
	})
	return docs
}

func sampleN(s types.Sample) string {
	if s.N == nil {
		return ""
	}
	return fmt.Sprintf("%d", *s.N)
}

// WriteMatrixXLSX writes the evidence matrix workbook to path.
func WriteMatrixXLSX(rows []MatrixRow, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Evidence Matrix"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range MatrixHeader() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		evidence := "No"
		if row.HasEvidence {
			evidence = "Yes"
		}
		values := []any{
			row.SequenceNumber,
			row.Citation,
			row.StudyType,
			row.SampleN,
			row.QuestionID,
			evidence,
			row.Answer,
			row.EffectSize,
			string(row.Direction),
			row.QuoteCount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10) // source
	_ = f.SetColWidth(sheet, "B", "B", 32) // citation
	_ = f.SetColWidth(sheet, "C", "D", 14) // study type, sample
	_ = f.SetColWidth(sheet, "E", "F", 18) // question, evidence
	_ = f.SetColWidth(sheet, "G", "G", 80) // finding
	_ = f.SetColWidth(sheet, "H", "J", 14) // effect, direction, quotes

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write matrix: %w", err)
	}
	return nil
}

// WriteQuotesCSV writes every supporting quote across all records to a CSV,
// one row per quote, for spot-checking extractions against the PDFs.
func WriteQuotesCSV(records []*types.ExtractionRecord, questions []types.ResearchQuestion, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create quotes file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Source #", "Citation", "Research Question", "Quote", "Location"}); err != nil {
		return fmt.Errorf("write quotes header: %w", err)
	}

	for _, cov := range Coverage(records, questions) {
		for _, ce := range cov.Entries {
			for _, q := range ce.Entry.SupportingQuotes {
				row := []string{
					fmt.Sprintf("%d", ce.Record.SequenceNumber),
					ce.Record.Citation,
					strings.ToUpper(cov.Question.ID),
					q.Text,
					q.Location,
				}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("write quote row: %w", err)
				}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush quotes: %w", err)
	}
	return f.Close()
}
