// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/review-engine/pkg/types"
)

const (
	maxQuoteRunes = 300
	maxTitleRunes = 60
)

// RenderNarrative produces the markdown literature review. The generated
// date is supplied by the caller so the same record set always renders to
// identical bytes.
func RenderNarrative(records []*types.ExtractionRecord, project *types.Project, generated string) string {
	ordered := make([]*types.ExtractionRecord, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})
	records = ordered

	coverages := Coverage(records, project.Questions)

	var b strings.Builder
	fmt.Fprintf(&b, "# Literature Review: %s\n\n", project.Project.Name)
	fmt.Fprintf(&b, "**Generated:** %s\n", generated)
	if project.Project.Requester != "" {
		fmt.Fprintf(&b, "**Requester:** %s\n", project.Project.Requester)
	}
	fmt.Fprintf(&b, "**Sources analysed:** %d\n", len(records))
	fmt.Fprintf(&b, "**Research questions:** %d\n\n", len(project.Questions))
	b.WriteString("---\n")

	for _, cov := range coverages {
		renderQuestion(&b, cov)
	}

	renderReferences(&b, records)
	return b.String()
}

func renderQuestion(b *strings.Builder, cov types.QuestionCoverage) {
	q := cov.Question
	fmt.Fprintf(b, "\n## %s: %s\n\n", strings.ToUpper(q.ID), shortTitle(q.Text))
	fmt.Fprintf(b, "> %s\n\n", q.Text)
	fmt.Fprintf(b, "**Evidence found in %d/%d sources (%.0f%%)**\n",
		cov.WithEvidence, cov.TotalDocuments, cov.Percent())

	if len(cov.Entries) > 0 {
		b.WriteString("\n### Summary of Findings\n")
		for _, ce := range cov.Entries {
			renderFinding(b, ce)
		}
	}

	if len(cov.Without) > 0 {
		b.WriteString("\n### Sources Without Evidence for This Question\n\n")
		for _, r := range cov.Without {
			fmt.Fprintf(b, "- Source %d: %s\n", r.SequenceNumber, r.Citation)
		}
	}

	b.WriteString("\n---\n")
}

func renderFinding(b *strings.Builder, ce types.CoverageEntry) {
	r := ce.Record
	entry := ce.Entry

	fmt.Fprintf(b, "\n**%s [Source %d]**\n\n", r.Citation, r.SequenceNumber)
	fmt.Fprintf(b, "%s\n", entry.Answer)
	if entry.EffectSize != nil && *entry.EffectSize != "" {
		fmt.Fprintf(b, "\n*Effect size: %s*\n", *entry.EffectSize)
	}
	if len(entry.SupportingQuotes) > 0 {
		q := entry.SupportingQuotes[0]
		fmt.Fprintf(b, "\n> \"%s\"\n", truncateRunes(q.Text, maxQuoteRunes))
		if q.Location != "" {
			fmt.Fprintf(b, "> — %s\n", q.Location)
		}
	}
}

func renderReferences(b *strings.Builder, records []*types.ExtractionRecord) {
	if len(records) == 0 {
		return
	}
	b.WriteString("\n## References\n\n")
	for _, r := range records {
		line := r.Citation
		if r.Title != "" {
			line = fmt.Sprintf("%s %s.", r.Citation, r.Title)
		}
		fmt.Fprintf(b, "%d. %s\n", r.SequenceNumber, line)
	}
}

// shortTitle condenses a research question into a heading. Questions are
// usually phrased "What is the effect of X on Y?"; the interrogative
// scaffolding adds nothing to a heading, so strip a leading stock phrase
// and trim to a readable length.
func shortTitle(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "?")
	lower := strings.ToLower(s)
	for _, prefix := range []string{
		"what is the effect of ",
		"what is the impact of ",
		"what are the effects of ",
		"what is the relationship between ",
		"how does ",
		"how do ",
		"does ",
		"do ",
		"is ",
		"are ",
	} {
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	if s == "" {
		return strings.TrimSpace(text)
	}
	runes := []rune(s)
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return truncateRunes(string(runes), maxTitleRunes)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
