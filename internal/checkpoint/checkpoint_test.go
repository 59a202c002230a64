// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checkpoint

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-engine/pkg/types"
)

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"\n", true},
		{"n\n", false},
		{"no\n", false},
		{"anything else\n", false},
		{"y", true}, // EOF without newline
	}
	for _, tt := range tests {
		term := &Terminal{In: strings.NewReader(tt.input), Out: &bytes.Buffer{}}
		got, err := term.Confirm("Continue?")
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestTerminalConfirmWritesPrompt(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{In: strings.NewReader("y\n"), Out: &out}
	_, err := term.Confirm("Approve and continue to extraction?")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Approve and continue to extraction?")
	assert.Contains(t, out.String(), "[Y/n]")
}

func TestAutoConfirm(t *testing.T) {
	ok, err := Auto{}.Confirm("anything")
	require.NoError(t, err)
	assert.True(t, ok)
}

func testProject() *types.Project {
	return &types.Project{
		Project: types.ProjectMeta{Name: "Exercise Review", Requester: "Dr. Vance", Date: "2026-08-01"},
		Questions: []types.ResearchQuestion{
			{ID: "rq1", Text: "What is the effect of exercise on depression?", Keywords: []string{"exercise", "depression"}},
			{ID: "rq2", Text: "Does exercise improve sleep quality?"},
		},
		Sources: []types.Source{
			{SequenceNumber: 1, Citation: "Adams (2021)", OriginalFilename: "adams.pdf", Filename: "01_Adams_2021.pdf"},
			{SequenceNumber: 2, Citation: "Baker (2022)", Filename: "02_Baker_2022.pdf"},
		},
		Framing: "This review examines exercise effects in adolescents.",
	}
}

func TestRenderConfigReview(t *testing.T) {
	var out bytes.Buffer
	RenderConfigReview(&out, testProject(), []string{"missing PDF for source 2"})

	s := out.String()
	assert.Contains(t, s, "LITERATURE REVIEW EXTRACTION PIPELINE")
	assert.Contains(t, s, "Project:   Exercise Review")
	assert.Contains(t, s, "Adams (2021)")
	assert.Contains(t, s, "Status: 1/2 files matched")
	assert.Contains(t, s, "missing PDF for source 2")
	assert.Contains(t, s, "[RQ1] What is the effect of exercise on depression?")
	assert.Contains(t, s, "Keywords: exercise, depression")
	assert.Contains(t, s, "This review examines exercise effects in adolescents.")
}

func TestRenderConfigReviewElidesLongSourceList(t *testing.T) {
	project := testProject()
	project.Sources = nil
	for i := 1; i <= 14; i++ {
		project.Sources = append(project.Sources, types.Source{
			SequenceNumber: i,
			Citation:       "Author (2020)",
		})
	}

	var out bytes.Buffer
	RenderConfigReview(&out, project, nil)
	assert.Contains(t, out.String(), "... and 4 more")
	assert.Contains(t, out.String(), "Status: 0/14 files matched")
}

func TestRenderSpotCheck(t *testing.T) {
	n := 42
	records := []*types.ExtractionRecord{
		{
			SequenceNumber: 1,
			Citation:       "Adams (2021)",
			StudyType:      "rct",
			Sample:         types.Sample{N: &n, AgeRange: "12-18"},
			Evidence: map[string]types.EvidenceEntry{
				"rq1": {
					HasEvidence:      true,
					Answer:           "Exercise reduced depressive symptoms.",
					SupportingQuotes: []types.Quote{{Text: "symptoms declined", Location: "p. 4"}},
					Direction:        types.DirectionPositive,
				},
				"rq2": {Direction: types.DirectionNone},
			},
		},
	}

	var out bytes.Buffer
	RenderSpotCheck(&out, records, testProject().Questions)

	s := out.String()
	assert.Contains(t, s, "EXTRACTION SPOT-CHECK")
	assert.Contains(t, s, "Source 1: Adams (2021)")
	assert.Contains(t, s, "Study type: rct")
	assert.Contains(t, s, "Sample: n=42, 12-18")
	assert.Contains(t, s, "evidence")
	assert.Contains(t, s, "Exercise reduced depressive symptoms.")
	assert.Contains(t, s, "'symptoms declined'")
	assert.Contains(t, s, "no evidence")
}

func TestRenderSpotCheckLimitsRecords(t *testing.T) {
	var records []*types.ExtractionRecord
	for i := 1; i <= 5; i++ {
		records = append(records, &types.ExtractionRecord{SequenceNumber: i, Citation: "Author (2020)"})
	}

	var out bytes.Buffer
	RenderSpotCheck(&out, records, nil)
	assert.Contains(t, out.String(), "Source 3:")
	assert.NotContains(t, out.String(), "Source 4:")
}

func TestRenderFinalReview(t *testing.T) {
	questions := testProject().Questions
	coverages := []types.QuestionCoverage{
		{Question: questions[0], WithEvidence: 2, TotalDocuments: 4},
		{Question: questions[1], WithEvidence: 0, TotalDocuments: 4},
	}

	var out bytes.Buffer
	RenderFinalReview(&out, coverages, []string{"output/review.md", "output/matrix.xlsx"})

	s := out.String()
	assert.Contains(t, s, "EXTRACTION COMPLETE")
	assert.Contains(t, s, "2/4 (50%)")
	assert.Contains(t, s, "0/4 (0%)")
	assert.Contains(t, s, "-> output/review.md")
	assert.Contains(t, s, "-> output/matrix.xlsx")
}

func TestCoverageBarWidth(t *testing.T) {
	tests := []float64{0, 33, 50, 100}
	for _, pct := range tests {
		bar := coverageBar(pct)
		hashes := strings.Count(bar, "#")
		dashes := strings.Count(bar, "-")
		assert.Equal(t, barWidth, hashes+dashes, "percent %.0f", pct)
	}
}
