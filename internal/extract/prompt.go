// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/review-engine/pkg/types"
)

// extractionPromptTmpl is the prompt sent with each PDF. It restates the
// framing context, lists every research question, and pins the exact JSON
// shape the normalizer expects.
var extractionPromptTmpl = template.Must(template.New("extraction").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`You are a research assistant extracting evidence from academic articles for a systematic literature review.

## Context
{{.Framing}}

## Your Task
Read this article carefully and answer each research question below based ONLY on evidence explicitly stated in the article.

Source Number: {{.SourceNumber}}
Filename: {{.Filename}}

## Research Questions

{{range .Questions}}### {{.ID}}
{{.Text}}
{{if .Keywords}}Relevant keywords: {{join .Keywords ", "}}
{{end}}
{{end}}## Required Output Format

Return a JSON object with exactly this structure:

{
  "source_number": {{.SourceNumber}},
  "filename": "{{.Filename}}",
  "citation": "<Author (Year) format - use 'et al.' for 3+ authors>",
  "title": "<Full article title as it appears>",
  "study_type": "<meta-analysis / systematic review / RCT / quasi-experimental / longitudinal / cross-sectional / qualitative / theoretical / other>",
  "sample": {
    "n": <number or null if not applicable>,
    "age_range": "<age range string or null>",
    "population": "<description of participants>",
    "notes": "<any relevant notes about the sample>"
  },
  "extractions": {
{{range $i, $q := .Questions}}{{if $i}},
{{end}}    "{{$q.ID}}": {
      "has_evidence": <true/false>,
      "answer": "<summary of findings OR 'No relevant evidence in this article'>",
      "supporting_quotes": [
        {"quote": "<exact quote from article>", "location": "<page number or section>"}
      ],
      "effect_size": "<as reported in article, or null>",
      "direction": "<positive/negative/mixed/null>"
    }{{end}}
  }
}

## Critical Instructions

1. **Evidence-based only**: Report ONLY findings explicitly stated in the article. Do not infer, speculate, or generalise beyond what the text says.

2. **Exact quotes required**: For each question where has_evidence is true, provide at least one exact quote from the article with its location (page number, section name, or paragraph reference).

3. **No evidence is valid**: If the article does not address a research question, set has_evidence to false and state "No relevant evidence in this article." in the answer field. Every research question MUST have an entry in extractions.

4. **Effect sizes**: Report effect sizes exactly as stated (e.g., "r = 0.35", "d = 0.42", "OR = 2.1"). Set to null if not reported or not applicable.

5. **Direction**: "positive" = better outcomes, "negative" = worse outcomes, "mixed" = both, null = no evidence or not applicable.

6. **Study type**: Classify based on the methodology section. Use "other" only if none of the categories fit.

7. **Citation format**: "Author (Year)" for 1-2 authors, "Author et al. (Year)" for 3+ authors.

Return ONLY valid JSON. No markdown formatting, no explanatory text.`))

// promptData feeds extractionPromptTmpl.
type promptData struct {
	SourceNumber int
	Filename     string
	Framing      string
	Questions    []types.ResearchQuestion
}

// BuildPrompt renders the extraction prompt for one source document.
func BuildPrompt(src types.Source, questions []types.ResearchQuestion, framing string) (string, error) {
	var buf bytes.Buffer
	err := extractionPromptTmpl.Execute(&buf, promptData{
		SourceNumber: src.SequenceNumber,
		Filename:     src.Filename,
		Framing:      framing,
		Questions:    questions,
	})
	if err != nil {
		return "", fmt.Errorf("rendering extraction prompt: %w", err)
	}
	return buf.String(), nil
}
