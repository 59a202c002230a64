// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Direction classifies the reported association between the studied
// exposure and its outcomes.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionMixed    Direction = "mixed"
	DirectionNone     Direction = "none"
)

// ParseDirection normalizes a free-text direction value case-insensitively.
// Empty and "null" map to none. The second return value is false when the
// input matches no known direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return DirectionPositive, true
	case "negative":
		return DirectionNegative, true
	case "mixed":
		return DirectionMixed, true
	case "none", "null", "":
		return DirectionNone, true
	}
	return DirectionNone, false
}

// Quote is one supporting passage with its location in the document
// (page number, section name, or paragraph reference).
type Quote struct {
	Text     string `json:"quote" yaml:"quote"`
	Location string `json:"location" yaml:"location"`
}

// EvidenceEntry is one research question's result for one document.
//
// Invariant: when HasEvidence is false, Direction is DirectionNone and
// SupportingQuotes is empty.
type EvidenceEntry struct {
	HasEvidence bool `json:"has_evidence" yaml:"has_evidence"`

	// Answer summarizes the document's findings for the question; empty
	// only when HasEvidence is false.
	Answer string `json:"answer" yaml:"answer"`

	SupportingQuotes []Quote `json:"supporting_quotes,omitempty" yaml:"supporting_quotes,omitempty"`

	// EffectSize is the magnitude exactly as reported (e.g. "d = 0.42").
	// nil means the study reported none; an empty string is a reported
	// blank and is kept distinct from absence.
	EffectSize *string `json:"effect_size" yaml:"effect_size"`

	Direction Direction `json:"direction" yaml:"direction"`
}

// Sample describes the study participants as reported by the document.
type Sample struct {
	// N is the sample size, nil when not applicable (e.g. theoretical work).
	N          *int   `json:"n" yaml:"n"`
	AgeRange   string `json:"age_range,omitempty" yaml:"age_range,omitempty"`
	Population string `json:"population,omitempty" yaml:"population,omitempty"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ExtractionRecord holds everything extracted from one document. Records
// are written once after a successful normalization pass and never
// mutated; re-extraction replaces the whole record. Field names are
// stable so older record sets stay readable by aggregation-only reruns.
type ExtractionRecord struct {
	SequenceNumber int    `json:"source_number" yaml:"source_number"`
	Filename       string `json:"filename" yaml:"filename"`

	// Citation is the "Author (Year)" label as reported by the model and
	// may differ from the project's citation list.
	Citation string `json:"citation" yaml:"citation"`

	// Title is the full article title as reported by the model.
	Title string `json:"title" yaml:"title"`

	// StudyType classifies the methodology (e.g. "RCT", "meta-analysis").
	StudyType string `json:"study_type" yaml:"study_type"`

	Sample Sample `json:"sample" yaml:"sample"`

	// Evidence maps research question ID to that question's result.
	// A valid record carries exactly one entry per configured question.
	Evidence map[string]EvidenceEntry `json:"extractions" yaml:"extractions"`
}

// EvidenceCount returns the number of questions this record has evidence for.
func (r *ExtractionRecord) EvidenceCount() int {
	n := 0
	for _, e := range r.Evidence {
		if e.HasEvidence {
			n++
		}
	}
	return n
}

// CoverageEntry pairs a record with its evidence entry for one question.
type CoverageEntry struct {
	Record *ExtractionRecord
	Entry  EvidenceEntry
}

// QuestionCoverage summarizes evidence for one research question across
// the full record set. It is derived data: recomputed on every
// aggregation pass, never persisted.
type QuestionCoverage struct {
	Question ResearchQuestion

	// WithEvidence counts records whose entry for this question has
	// HasEvidence true.
	WithEvidence int

	// TotalDocuments counts all records considered, including those
	// without evidence for this question.
	TotalDocuments int

	// Entries lists records with evidence, ordered by sequence number.
	Entries []CoverageEntry

	// Without lists records lacking evidence, ordered by sequence number.
	Without []*ExtractionRecord
}

// Percent returns the evidence coverage as a percentage, 0 when no
// documents were considered.
func (c QuestionCoverage) Percent() float64 {
	if c.TotalDocuments == 0 {
		return 0
	}
	return float64(c.WithEvidence) / float64(c.TotalDocuments) * 100
}
