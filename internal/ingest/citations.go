// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// citations.go turns the requester's free-text citation list into numbered
// sources and derives filesystem-safe slugs from author-year labels.
package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/review-engine/pkg/types"
)

var (
	// yearRe matches the parenthesized publication year: (2023).
	yearRe = regexp.MustCompile(`\((\d{4})\)`)

	// etAlRe strips "et al." (with or without the period) from author parts.
	etAlRe = regexp.MustCompile(`\s*et\s+al\.?`)

	// nonAlphaRe removes everything except letters and underscores from a slug.
	nonAlphaRe = regexp.MustCompile(`[^a-zA-Z_]`)

	// multiUnderscoreRe collapses runs of underscores left by removal.
	multiUnderscoreRe = regexp.MustCompile(`_+`)
)

// ParseCitations parses a newline-separated citation list into ordered
// sources. Each line is "Citation - Title"; lines without the " - "
// separator are treated as citation-only. Line order defines the 1-based
// sequence numbers and therefore the citation order of every downstream
// output.
func ParseCitations(text string) []types.Source {
	var sources []types.Source
	seq := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seq++

		citation, title := line, ""
		if c, t, found := strings.Cut(line, " - "); found {
			citation, title = strings.TrimSpace(c), strings.TrimSpace(t)
		}

		sources = append(sources, types.Source{
			SequenceNumber: seq,
			Citation:       citation,
			Title:          title,
			Filename:       fmt.Sprintf("%02d_%s.pdf", seq, AuthorYear(citation)),
		})
	}
	return sources
}

// AuthorYear derives a filename slug from a citation label:
//
//	"Kong et al. (2023)"   -> "Kong_2023"
//	"Smith & Jones (2024)" -> "Smith_Jones_2024"
//
// A missing year becomes "XXXX"; unparseable author parts become "Unknown".
func AuthorYear(citation string) string {
	year := "XXXX"
	if m := yearRe.FindStringSubmatch(citation); m != nil {
		year = m[1]
	}

	// Author part is everything before the year.
	authors := citation
	if idx := yearRe.FindStringIndex(citation); idx != nil {
		authors = citation[:idx[0]]
	}
	authors = etAlRe.ReplaceAllString(authors, "")
	authors = strings.ReplaceAll(authors, "&", "_")
	authors = nonAlphaRe.ReplaceAllString(authors, "")
	authors = multiUnderscoreRe.ReplaceAllString(authors, "_")
	authors = strings.Trim(authors, "_")

	if authors == "" {
		authors = "Unknown"
	}
	return authors + "_" + year
}
