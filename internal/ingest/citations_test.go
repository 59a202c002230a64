// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"testing"

	"github.com/pdiddy/review-engine/pkg/types"
)

func TestAuthorYear(t *testing.T) {
	tests := []struct {
		citation string
		want     string
	}{
		{"Kong et al. (2023)", "Kong_2023"},
		{"Smith & Jones (2024)", "Smith_Jones_2024"},
		{"Williams (2024)", "Williams_2024"},
		{"Rioja et al (2023)", "Rioja_2023"},
		{"No Year Given", "NoYearGiven_XXXX"},
		{"(2021)", "Unknown_2021"},
		{"", "Unknown_XXXX"},
	}

	for _, tt := range tests {
		t.Run(tt.citation, func(t *testing.T) {
			if got := AuthorYear(tt.citation); got != tt.want {
				t.Errorf("AuthorYear(%q) = %q, want %q", tt.citation, got, tt.want)
			}
		})
	}
}

func TestParseCitations(t *testing.T) {
	text := `Kong et al. (2023) - Media multitasking meta-analysis

Rioja et al. (2023) - Executive function longitudinal study
Williams (2024)
`
	sources := ParseCitations(text)

	if len(sources) != 3 {
		t.Fatalf("got %d sources, want 3", len(sources))
	}

	want := []types.Source{
		{SequenceNumber: 1, Citation: "Kong et al. (2023)", Title: "Media multitasking meta-analysis", Filename: "01_Kong_2023.pdf"},
		{SequenceNumber: 2, Citation: "Rioja et al. (2023)", Title: "Executive function longitudinal study", Filename: "02_Rioja_2023.pdf"},
		{SequenceNumber: 3, Citation: "Williams (2024)", Title: "", Filename: "03_Williams_2024.pdf"},
	}
	for i, w := range want {
		got := sources[i]
		if got.SequenceNumber != w.SequenceNumber || got.Citation != w.Citation || got.Title != w.Title || got.Filename != w.Filename {
			t.Errorf("source %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestParseCitationsEmpty(t *testing.T) {
	if got := ParseCitations("  \n \n"); got != nil {
		t.Errorf("expected nil sources for blank input, got %v", got)
	}
}
