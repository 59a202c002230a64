// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package framing turns the requester's plain-language project context
// into the structured paragraph embedded in every extraction prompt. The
// translation is text-only, so any configured model provider can serve it;
// when the provider is unavailable or the stage is skipped, a template
// fallback keeps the pipeline moving.
package framing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pdiddy/review-engine/internal/llm"
	"github.com/pdiddy/review-engine/pkg/types"
)

var framingPromptTmpl = template.Must(template.New("framing").Parse(`You are helping structure context for an academic literature review extraction task.

The requester provided this plain-language description of their review:

---
WHAT THIS REVIEW IS ABOUT:
{{.Description}}

TARGET POPULATION:
{{.Population}}

KEY CONSTRUCTS OF INTEREST:
{{.Constructs}}

FOCUS AREA:
{{.Focus}}
---

Rewrite this as a concise "light framing" paragraph (4-6 sentences) that:
1. States the review's focus clearly in the first sentence
2. Defines the target population precisely
3. Lists key constructs with brief operational definitions
4. Notes the application context

The framing should help an AI extraction model understand what to look for WITHOUT biasing it toward any particular findings or conclusions. Use neutral, descriptive language.

Output ONLY the framing paragraph, nothing else. Use this structure:

This review examines [topic] in [population with age range if specified].

Key constructs of interest include:
- [Construct 1]: [brief definition]
- [Construct 2]: [brief definition]
- [etc.]

The focus is on findings relevant to [application context].`))

// Run executes the framing stage and returns the framing paragraph. When
// the stage is skipped, or the backend cannot be reached, the template
// fallback is used so the pipeline keeps moving; degradations are reported
// on w.
func Run(ctx context.Context, cfg types.FramingConfig, raw types.ContextRaw, w io.Writer) string {
	if cfg.Skip {
		fmt.Fprintln(w, "Using raw context (framing translation skipped)")
		return Fallback(raw)
	}

	client, err := llm.New(ctx, cfg.AIConfig)
	if err != nil {
		fmt.Fprintf(w, "warning: AI backend unavailable: %v\n", err)
		fmt.Fprintln(w, "falling back to raw context")
		return Fallback(raw)
	}

	fmt.Fprintln(w, "Translating framing...")
	translated, err := Translate(ctx, client, raw)
	if err != nil {
		fmt.Fprintf(w, "warning: framing translation failed: %v\n", err)
		fmt.Fprintln(w, "falling back to raw context")
		return Fallback(raw)
	}
	return translated
}

// Translate asks the model to restate the raw context as a light framing
// paragraph.
func Translate(ctx context.Context, client llm.Client, raw types.ContextRaw) (string, error) {
	data := raw
	for _, f := range []*string{&data.Description, &data.Population, &data.Constructs, &data.Focus} {
		if *f == "" {
			*f = "Not specified"
		}
	}

	var b strings.Builder
	if err := framingPromptTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("build framing prompt: %w", err)
	}

	reply, err := client.GenerateText(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("translate framing: %w", err)
	}

	framing := strings.TrimSpace(reply)
	if framing == "" {
		return "", fmt.Errorf("translate framing: model returned an empty reply")
	}
	return framing, nil
}

// Fallback builds a framing paragraph from the raw context alone, for runs
// without an API key or with the framing stage skipped.
func Fallback(raw types.ContextRaw) string {
	d := withDefaults(raw)
	return fmt.Sprintf(`This review examines %s

Target population: %s

Key constructs of interest: %s

The focus is on findings relevant to %s.`,
		d.Description, d.Population, d.Constructs, d.Focus)
}

func withDefaults(raw types.ContextRaw) types.ContextRaw {
	if raw.Description == "" {
		raw.Description = "the specified topic"
	}
	if raw.Population == "" {
		raw.Population = "the target population"
	}
	if raw.Constructs == "" {
		raw.Constructs = "relevant constructs"
	}
	if raw.Focus == "" {
		raw.Focus = "the specified context"
	}
	return raw
}

// Validate sanity-checks a framing paragraph and returns human-readable
// warnings. Warnings are advisory; the operator decides whether to proceed.
func Validate(framing string) []string {
	var warnings []string

	if len(framing) < 100 {
		warnings = append(warnings, "framing is very short (< 100 characters)")
	}
	if len(framing) > 2000 {
		warnings = append(warnings, "framing is very long (> 2000 characters)")
	}

	lower := strings.ToLower(framing)
	if !strings.Contains(lower, "population") && !strings.Contains(lower, "participants") {
		warnings = append(warnings, "framing may not clearly specify the target population")
	}
	if !strings.Contains(lower, "construct") && !strings.Contains(framing, "-") {
		warnings = append(warnings, "framing may not list key constructs")
	}
	return warnings
}
