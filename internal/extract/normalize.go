// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/review-engine/internal/llm"
	"github.com/pdiddy/review-engine/pkg/types"
)

// HardFailure reports why a raw reply could not become a valid record.
// The whole document is rejected: a partially-evidenced record silently
// skewing coverage percentages is worse than a visible failure.
type HardFailure struct {
	Reasons []string
}

func (e *HardFailure) Error() string {
	return "normalization failed: " + strings.Join(e.Reasons, "; ")
}

func hardf(format string, args ...any) *HardFailure {
	return &HardFailure{Reasons: []string{fmt.Sprintf(format, args...)}}
}

// rawResponse mirrors the JSON shape the extraction prompt requests.
type rawResponse struct {
	SourceNumber int                        `json:"source_number"`
	Filename     string                     `json:"filename"`
	Citation     string                     `json:"citation"`
	Title        string                     `json:"title"`
	StudyType    string                     `json:"study_type"`
	Sample       rawSample                  `json:"sample"`
	Extractions  map[string]json.RawMessage `json:"extractions"`
}

type rawSample struct {
	N          *float64 `json:"n"`
	AgeRange   string   `json:"age_range"`
	Population string   `json:"population"`
	Notes      string   `json:"notes"`
}

type rawEvidence struct {
	HasEvidence      *bool             `json:"has_evidence"`
	Answer           string            `json:"answer"`
	SupportingQuotes []json.RawMessage `json:"supporting_quotes"`
	EffectSize       *string           `json:"effect_size"`
	Direction        *string           `json:"direction"`
}

// rawQuote accepts both key spellings models produce for quote text.
type rawQuote struct {
	Quote    string `json:"quote"`
	Text     string `json:"text"`
	Location string `json:"location"`
}

// Normalize coerces one raw model reply into a valid ExtractionRecord for
// src, or returns a *HardFailure naming every violated rule. The returned
// warnings record soft coercions (unrecognized direction values, echoed
// metadata mismatches) that flag the document for manual review without
// rejecting it.
func Normalize(reply []byte, src types.Source, questions []types.ResearchQuestion) (*types.ExtractionRecord, []string, error) {
	data, ok := llm.SalvageJSON(string(reply))
	if !ok {
		return nil, nil, hardf("reply contains no parseable JSON object")
	}

	if err := validateShape(data); err != nil {
		return nil, nil, &HardFailure{Reasons: []string{err.Error()}}
	}

	var raw rawResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, hardf("decoding reply: %v", err)
	}

	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if raw.SourceNumber != 0 && raw.SourceNumber != src.SequenceNumber {
		warnf("reply echoed source number %d, expected %d", raw.SourceNumber, src.SequenceNumber)
	}

	record := &types.ExtractionRecord{
		SequenceNumber: src.SequenceNumber,
		Filename:       src.Filename,
		Citation:       raw.Citation,
		Title:          raw.Title,
		StudyType:      raw.StudyType,
		Sample: types.Sample{
			AgeRange:   raw.Sample.AgeRange,
			Population: raw.Sample.Population,
			Notes:      raw.Sample.Notes,
		},
		Evidence: make(map[string]types.EvidenceEntry, len(questions)),
	}
	if raw.Sample.N != nil {
		n := int(*raw.Sample.N)
		record.Sample.N = &n
	}
	if record.StudyType == "" {
		record.StudyType = "other"
		warnf("missing study_type, defaulted to %q", record.StudyType)
	}

	var hard []string
	for _, q := range questions {
		rawEntry, present := raw.Extractions[q.ID]
		if !present {
			hard = append(hard, fmt.Sprintf("%s: no evidence entry in reply", q.ID))
			continue
		}
		entry, entryWarnings, errs := normalizeEvidence(q.ID, rawEntry)
		warnings = append(warnings, entryWarnings...)
		if len(errs) > 0 {
			hard = append(hard, errs...)
			continue
		}
		record.Evidence[q.ID] = entry
	}

	// Keys the project never configured are dropped, not persisted.
	known := questionSet(questions)
	var unknown []string
	for key := range raw.Extractions {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		warnf("reply contains entry for unknown question %q, dropped", key)
	}

	if len(hard) > 0 {
		sort.Strings(hard)
		return nil, nil, &HardFailure{Reasons: hard}
	}

	return record, warnings, nil
}

// normalizeEvidence coerces one question's raw entry. Returned errs are
// hard-failure reasons; warnings are soft coercions.
func normalizeEvidence(questionID string, data json.RawMessage) (types.EvidenceEntry, []string, []string) {
	var raw rawEvidence
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.EvidenceEntry{}, nil, []string{fmt.Sprintf("%s: decoding evidence entry: %v", questionID, err)}
	}

	var warnings, errs []string

	if raw.HasEvidence == nil {
		errs = append(errs, fmt.Sprintf("%s: missing has_evidence", questionID))
		return types.EvidenceEntry{}, nil, errs
	}

	entry := types.EvidenceEntry{
		HasEvidence: *raw.HasEvidence,
		Answer:      strings.TrimSpace(raw.Answer),
		EffectSize:  raw.EffectSize,
	}

	for i, rq := range raw.SupportingQuotes {
		quote, err := normalizeQuote(rq)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: quote %d: %v", questionID, i+1, err))
			continue
		}
		entry.SupportingQuotes = append(entry.SupportingQuotes, quote)
	}

	rawDir := ""
	if raw.Direction != nil {
		rawDir = *raw.Direction
	}
	direction, recognized := types.ParseDirection(rawDir)
	if !recognized {
		// The field is open text from the model; an unknown value is
		// coerced to mixed and flagged for manual review rather than
		// rejecting the document.
		direction = types.DirectionMixed
		warnings = append(warnings, fmt.Sprintf("%s: unrecognized direction %q coerced to %q", questionID, rawDir, types.DirectionMixed))
	}
	entry.Direction = direction

	if entry.HasEvidence {
		if entry.Answer == "" {
			errs = append(errs, fmt.Sprintf("%s: empty answer with has_evidence true", questionID))
		}
	} else {
		if len(entry.SupportingQuotes) > 0 {
			errs = append(errs, fmt.Sprintf("%s: supporting quotes present with has_evidence false", questionID))
		}
		if entry.Direction != types.DirectionNone {
			warnings = append(warnings, fmt.Sprintf("%s: direction %q with has_evidence false coerced to %q", questionID, entry.Direction, types.DirectionNone))
			entry.Direction = types.DirectionNone
		}
	}

	if len(errs) > 0 {
		return types.EvidenceEntry{}, warnings, errs
	}
	return entry, warnings, nil
}

// normalizeQuote accepts a structured {quote, location} pair or a bare
// string. The model frequently omits location; bare strings become a pair
// with location "unknown".
func normalizeQuote(data json.RawMessage) (types.Quote, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return types.Quote{Text: s, Location: "unknown"}, nil
	}

	var rq rawQuote
	if err := json.Unmarshal(data, &rq); err != nil {
		return types.Quote{}, fmt.Errorf("neither string nor object")
	}

	text := rq.Quote
	if text == "" {
		text = rq.Text
	}
	location := rq.Location
	if location == "" {
		location = "unknown"
	}
	return types.Quote{Text: text, Location: location}, nil
}

func questionSet(questions []types.ResearchQuestion) map[string]struct{} {
	set := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		set[q.ID] = struct{}{}
	}
	return set
}
