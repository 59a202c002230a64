// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/review-engine/pkg/types"
)

var testQuestions = []types.ResearchQuestion{
	{ID: "RQ1", Text: "What is the impact of technology on learning outcomes?"},
	{ID: "RQ2", Text: "How does screen time affect cognitive development?"},
}

var testSource = types.Source{
	SequenceNumber: 3,
	Citation:       "Kong et al. (2023)",
	Filename:       "03_Kong_2023.pdf",
}

// validReply builds a well-formed reply covering both test questions, with
// evidence for RQ1 only.
func validReply() map[string]any {
	return map[string]any{
		"source_number": 3,
		"filename":      "03_Kong_2023.pdf",
		"citation":      "Kong et al. (2023)",
		"title":         "Media multitasking and cognition",
		"study_type":    "meta-analysis",
		"sample": map[string]any{
			"n":          287,
			"age_range":  "12-18",
			"population": "adolescents",
		},
		"extractions": map[string]any{
			"RQ1": map[string]any{
				"has_evidence": true,
				"answer":       "Heavy multitaskers showed reduced task performance.",
				"supporting_quotes": []any{
					map[string]any{"quote": "performance declined significantly", "location": "p. 12"},
				},
				"effect_size": "d = 0.42",
				"direction":   "negative",
			},
			"RQ2": map[string]any{
				"has_evidence":      false,
				"answer":            "No relevant evidence in this article.",
				"supporting_quotes": []any{},
				"effect_size":       nil,
				"direction":         nil,
			},
		},
	}
}

func marshalReply(t *testing.T, reply map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(reply)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestNormalizeValidReply(t *testing.T) {
	record, warnings, err := Normalize(marshalReply(t, validReply()), testSource, testQuestions)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if record.SequenceNumber != 3 || record.Filename != "03_Kong_2023.pdf" {
		t.Errorf("record identity = %d/%s", record.SequenceNumber, record.Filename)
	}
	if record.Citation != "Kong et al. (2023)" {
		t.Errorf("citation = %q", record.Citation)
	}
	if record.Sample.N == nil || *record.Sample.N != 287 {
		t.Errorf("sample n = %v", record.Sample.N)
	}

	// Exactly one entry per configured question.
	if len(record.Evidence) != len(testQuestions) {
		t.Fatalf("evidence entries = %d, want %d", len(record.Evidence), len(testQuestions))
	}

	rq1 := record.Evidence["RQ1"]
	if !rq1.HasEvidence || rq1.Direction != types.DirectionNegative {
		t.Errorf("RQ1 = %+v", rq1)
	}
	if rq1.EffectSize == nil || *rq1.EffectSize != "d = 0.42" {
		t.Errorf("RQ1 effect size = %v", rq1.EffectSize)
	}
	if len(rq1.SupportingQuotes) != 1 || rq1.SupportingQuotes[0].Location != "p. 12" {
		t.Errorf("RQ1 quotes = %v", rq1.SupportingQuotes)
	}

	rq2 := record.Evidence["RQ2"]
	if rq2.HasEvidence || rq2.Direction != types.DirectionNone || len(rq2.SupportingQuotes) != 0 {
		t.Errorf("RQ2 = %+v", rq2)
	}
	if rq2.EffectSize != nil {
		t.Errorf("RQ2 effect size = %v, want nil", rq2.EffectSize)
	}
}

func TestNormalizeMissingQuestionIsHardFailure(t *testing.T) {
	reply := validReply()
	delete(reply["extractions"].(map[string]any), "RQ2")

	record, _, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if record != nil {
		t.Fatal("partial record accepted; whole record must be rejected")
	}

	var hard *HardFailure
	if !errors.As(err, &hard) {
		t.Fatalf("error = %v, want *HardFailure", err)
	}
	if !strings.Contains(hard.Error(), "RQ2") {
		t.Errorf("failure does not name the missing question: %v", hard)
	}
}

func TestNormalizeUnknownDirectionCoercedToMixed(t *testing.T) {
	reply := validReply()
	rq1 := reply["extractions"].(map[string]any)["RQ1"].(map[string]any)
	rq1["direction"] = "inconclusive"

	record, warnings, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err != nil {
		t.Fatalf("soft failure must not reject the record: %v", err)
	}
	if got := record.Evidence["RQ1"].Direction; got != types.DirectionMixed {
		t.Errorf("direction = %q, want mixed", got)
	}
	if len(warnings) == 0 || !strings.Contains(warnings[0], "inconclusive") {
		t.Errorf("expected review warning naming the raw value, got %v", warnings)
	}
}

func TestNormalizeDirectionCaseInsensitive(t *testing.T) {
	for _, raw := range []string{"Positive", "POSITIVE", " positive "} {
		reply := validReply()
		reply["extractions"].(map[string]any)["RQ1"].(map[string]any)["direction"] = raw

		record, warnings, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if len(warnings) != 0 {
			t.Errorf("%q should normalize without warnings, got %v", raw, warnings)
		}
		if got := record.Evidence["RQ1"].Direction; got != types.DirectionPositive {
			t.Errorf("%q normalized to %q", raw, got)
		}
	}
}

func TestNormalizeStringQuoteReinterpreted(t *testing.T) {
	reply := validReply()
	rq1 := reply["extractions"].(map[string]any)["RQ1"].(map[string]any)
	rq1["supporting_quotes"] = []any{"performance declined significantly"}

	record, _, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err != nil {
		t.Fatal(err)
	}
	quotes := record.Evidence["RQ1"].SupportingQuotes
	if len(quotes) != 1 {
		t.Fatalf("quotes = %v", quotes)
	}
	if quotes[0].Text != "performance declined significantly" || quotes[0].Location != "unknown" {
		t.Errorf("quote = %+v", quotes[0])
	}
}

func TestNormalizeQuotesWithoutEvidenceIsHardFailure(t *testing.T) {
	reply := validReply()
	rq2 := reply["extractions"].(map[string]any)["RQ2"].(map[string]any)
	rq2["supporting_quotes"] = []any{
		map[string]any{"quote": "stray quote", "location": "p. 1"},
	}

	_, _, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	var hard *HardFailure
	if !errors.As(err, &hard) {
		t.Fatalf("error = %v, want *HardFailure", err)
	}
}

func TestNormalizeDirectionWithoutEvidenceCoercedToNone(t *testing.T) {
	reply := validReply()
	rq2 := reply["extractions"].(map[string]any)["RQ2"].(map[string]any)
	rq2["direction"] = "positive"

	record, warnings, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err != nil {
		t.Fatal(err)
	}
	if got := record.Evidence["RQ2"].Direction; got != types.DirectionNone {
		t.Errorf("direction = %q, want none", got)
	}
	if len(warnings) == 0 {
		t.Error("coercion should be flagged for review")
	}
}

func TestNormalizeEmptyAnswerWithEvidenceIsHardFailure(t *testing.T) {
	reply := validReply()
	reply["extractions"].(map[string]any)["RQ1"].(map[string]any)["answer"] = "  "

	_, _, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	var hard *HardFailure
	if !errors.As(err, &hard) {
		t.Fatalf("error = %v, want *HardFailure", err)
	}
	if !strings.Contains(hard.Error(), "RQ1") {
		t.Errorf("failure does not name the question: %v", hard)
	}
}

func TestNormalizeMissingHasEvidenceIsHardFailure(t *testing.T) {
	reply := validReply()
	delete(reply["extractions"].(map[string]any)["RQ1"].(map[string]any), "has_evidence")

	_, _, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err == nil {
		t.Fatal("entry without has_evidence accepted")
	}
}

func TestNormalizeEffectSizeEmptyStringDistinctFromAbsent(t *testing.T) {
	reply := validReply()
	reply["extractions"].(map[string]any)["RQ1"].(map[string]any)["effect_size"] = ""

	record, _, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err != nil {
		t.Fatal(err)
	}
	es := record.Evidence["RQ1"].EffectSize
	if es == nil {
		t.Fatal("explicit empty string collapsed into absence")
	}
	if *es != "" {
		t.Errorf("effect size = %q", *es)
	}
}

func TestNormalizeFencedReply(t *testing.T) {
	fenced := fmt.Sprintf("```json\n%s\n```", marshalReply(t, validReply()))
	if _, _, err := Normalize([]byte(fenced), testSource, testQuestions); err != nil {
		t.Fatalf("fenced JSON rejected: %v", err)
	}
}

func TestNormalizeNonJSONReply(t *testing.T) {
	_, _, err := Normalize([]byte("I was unable to read this document."), testSource, testQuestions)
	var hard *HardFailure
	if !errors.As(err, &hard) {
		t.Fatalf("error = %v, want *HardFailure", err)
	}
}

func TestNormalizeUnknownQuestionDropped(t *testing.T) {
	reply := validReply()
	reply["extractions"].(map[string]any)["RQ9"] = map[string]any{
		"has_evidence": true,
		"answer":       "spurious",
	}

	record, warnings, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := record.Evidence["RQ9"]; ok {
		t.Error("unconfigured question persisted")
	}
	if len(warnings) == 0 || !strings.Contains(warnings[0], "RQ9") {
		t.Errorf("expected drop warning for RQ9, got %v", warnings)
	}
}

func TestNormalizeEchoedSequenceMismatchWarns(t *testing.T) {
	reply := validReply()
	reply["source_number"] = 7

	record, warnings, err := Normalize(marshalReply(t, reply), testSource, testQuestions)
	if err != nil {
		t.Fatal(err)
	}
	// The project's sequence number is authoritative.
	if record.SequenceNumber != 3 {
		t.Errorf("sequence = %d, want 3", record.SequenceNumber)
	}
	if len(warnings) == 0 {
		t.Error("mismatched echo should warn")
	}
}
