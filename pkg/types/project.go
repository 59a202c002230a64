// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResearchQuestion is one fixed question the review seeks evidence for
// across all documents. Questions come from the project configuration and
// are never mutated after ingest.
type ResearchQuestion struct {
	// ID is a short code unique within a project (e.g. "RQ1").
	ID string `json:"id" yaml:"id"`

	// Text is the full question.
	Text string `json:"text" yaml:"text"`

	// Keywords guide the operator and the extraction prompt; they are
	// not enforced against document content.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Source describes one PDF in the review set. The 1-based sequence number
// defines citation order and is stable for the life of the project.
type Source struct {
	// SequenceNumber is the 1-based position in the citation list.
	SequenceNumber int `json:"sequence_number" yaml:"sequence_number"`

	// Citation is the human-readable label, e.g. "Kong et al. (2023)".
	Citation string `json:"citation" yaml:"citation"`

	// Title is the short title from the requester's citation list.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// OriginalFilename is the matched file in the requester's PDF folder,
	// empty when no match was found.
	OriginalFilename string `json:"original_filename,omitempty" yaml:"original_filename,omitempty"`

	// Filename is the numbered name used after renaming, e.g. "03_Kong_2023.pdf".
	Filename string `json:"filename" yaml:"filename"`
}

// ContextRaw holds the requester's plain-language project context as
// captured by the intake form.
type ContextRaw struct {
	Description string `json:"description" yaml:"description"`
	Population  string `json:"population" yaml:"population"`
	Constructs  string `json:"constructs" yaml:"constructs"`
	Focus       string `json:"focus,omitempty" yaml:"focus,omitempty"`
}

// ProjectMeta identifies the review project and its requester.
type ProjectMeta struct {
	Name        string `json:"name" yaml:"name"`
	Requester   string `json:"requester" yaml:"requester"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Date        string `json:"date" yaml:"date"`
}

// Project is the full project configuration persisted as project.yaml.
// Ingest creates it from the intake form; framing fills in Framing; the
// remaining stages only read it.
type Project struct {
	Project   ProjectMeta        `json:"project" yaml:"project"`
	Questions []ResearchQuestion `json:"research_questions" yaml:"research_questions"`
	Sources   []Source           `json:"sources" yaml:"sources"`

	// ContextRaw is the requester's context exactly as submitted.
	ContextRaw ContextRaw `json:"context_raw" yaml:"context_raw"`

	// Framing is the structured restatement of ContextRaw used to guide
	// extraction. Empty until the framing stage has run.
	Framing string `json:"framing,omitempty" yaml:"framing,omitempty"`
}

// QuestionByID returns the research question with the given ID, or false
// when the project has no such question.
func (p *Project) QuestionByID(id string) (ResearchQuestion, bool) {
	for _, q := range p.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return ResearchQuestion{}, false
}

// SourceBySequence returns the source with the given sequence number, or
// false when the project has no such source.
func (p *Project) SourceBySequence(n int) (Source, bool) {
	for _, s := range p.Sources {
		if s.SequenceNumber == n {
			return s, true
		}
	}
	return Source{}, false
}
