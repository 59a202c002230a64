// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package checkpoint

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/review-engine/pkg/types"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 2).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("4")).
			Padding(0, 1)
)

const (
	maxListedSources  = 10
	maxSpotChecked    = 3
	barWidth          = 25
	maxInlineCitation = 50
)

// RenderConfigReview shows the loaded project: sources and their match
// status, research questions, and the framing that will steer extraction.
func RenderConfigReview(w io.Writer, project *types.Project, problems []string) {
	fmt.Fprintln(w, bannerStyle.Render("LITERATURE REVIEW EXTRACTION PIPELINE"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Project:   %s\n", project.Project.Name)
	fmt.Fprintf(w, "  Requester: %s\n", project.Project.Requester)
	fmt.Fprintf(w, "  Date:      %s\n", project.Project.Date)

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render("  SOURCE DOCUMENTS"))
	matched := 0
	for i, src := range project.Sources {
		if src.OriginalFilename != "" {
			matched++
		}
		if i >= maxListedSources {
			continue
		}
		mark := warnStyle.Render("x")
		if src.OriginalFilename != "" {
			mark = okStyle.Render("+")
		}
		fmt.Fprintf(w, "  %s %2d. %s\n", mark, src.SequenceNumber, clip(src.Citation, maxInlineCitation))
	}
	if extra := len(project.Sources) - maxListedSources; extra > 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("      ... and %d more", extra)))
	}
	fmt.Fprintf(w, "\n  Status: %d/%d files matched\n", matched, len(project.Sources))

	if len(problems) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle.Render("  PROBLEMS"))
		for _, p := range problems {
			fmt.Fprintf(w, "  %s\n", warnStyle.Render("- "+p))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("  RESEARCH QUESTIONS (%d)", len(project.Questions))))
	for _, q := range project.Questions {
		fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(q.ID), q.Text)
		if len(q.Keywords) > 0 {
			fmt.Fprintln(w, dimStyle.Render("      Keywords: "+strings.Join(q.Keywords, ", ")))
		}
	}

	if project.Framing != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render("  FRAMING"))
		fmt.Fprintln(w, panelStyle.Render(project.Framing))
	}
}

// RenderSpotCheck shows the first few extraction records so the operator
// can judge quality before the batch continues unattended.
func RenderSpotCheck(w io.Writer, records []*types.ExtractionRecord, questions []types.ResearchQuestion) {
	fmt.Fprintln(w, bannerStyle.Render("EXTRACTION SPOT-CHECK"))
	fmt.Fprintln(w)

	if len(records) > maxSpotChecked {
		records = records[:maxSpotChecked]
	}
	for _, r := range records {
		fmt.Fprintf(w, "  Source %d: %s\n", r.SequenceNumber, r.Citation)
		fmt.Fprintf(w, "    Study type: %s\n", r.StudyType)
		if r.Sample.N != nil {
			age := r.Sample.AgeRange
			if age == "" {
				age = "age unknown"
			}
			fmt.Fprintf(w, "    Sample: n=%d, %s\n", *r.Sample.N, age)
		}
		fmt.Fprintln(w)

		for _, q := range questions {
			entry, ok := r.Evidence[q.ID]
			if !ok || !entry.HasEvidence {
				fmt.Fprintf(w, "    %s: %s\n", strings.ToUpper(q.ID), dimStyle.Render("no evidence"))
				continue
			}
			fmt.Fprintf(w, "    %s: %s\n", strings.ToUpper(q.ID), okStyle.Render("evidence"))
			fmt.Fprintf(w, "      %s\n", dimStyle.Render(clip(entry.Answer, 100)))
			if len(entry.SupportingQuotes) > 0 {
				fmt.Fprintf(w, "      %s\n", dimStyle.Render("'"+clip(entry.SupportingQuotes[0].Text, 80)+"'"))
			}
		}
		fmt.Fprintln(w)
	}
}

// RenderFinalReview shows per-question coverage bars and the output files
// written by aggregation.
func RenderFinalReview(w io.Writer, coverages []types.QuestionCoverage, outputs []string) {
	fmt.Fprintln(w, bannerStyle.Render("EXTRACTION COMPLETE"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, sectionStyle.Render("  EVIDENCE COVERAGE BY RESEARCH QUESTION"))
	fmt.Fprintln(w)

	for _, cov := range coverages {
		fmt.Fprintf(w, "  %s\n", strings.ToUpper(cov.Question.ID))
		fmt.Fprintf(w, "  [%s] %d/%d (%.0f%%)\n\n",
			coverageBar(cov.Percent()), cov.WithEvidence, cov.TotalDocuments, cov.Percent())
	}

	fmt.Fprintln(w, sectionStyle.Render("  OUTPUT FILES"))
	for _, path := range outputs {
		fmt.Fprintf(w, "  -> %s\n", path)
	}
}

func coverageBar(percent float64) string {
	filled := int(percent / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	return okStyle.Render(strings.Repeat("#", filled)) + dimStyle.Render(strings.Repeat("-", barWidth-filled))
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
