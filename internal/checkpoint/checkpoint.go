// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint implements the human-in-the-loop pauses between
// pipeline stages. Each checkpoint renders a summary panel and asks the
// operator to approve before the pipeline continues. Rendering writes to an
// io.Writer and confirmation is an interface, so the full pipeline stays
// testable and an unattended run can substitute auto-approval.
package checkpoint

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Terminal is the interactive Confirmer. An empty answer approves, so the
// operator can hold enter through checkpoints they trust.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func (t *Terminal) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(t.Out, "\n%s [Y/n] ", promptStyle.Render(prompt))

	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Auto approves every checkpoint without prompting. Used for --yes runs
// and tests.
type Auto struct{}

func (Auto) Confirm(string) (bool, error) { return true, nil }
