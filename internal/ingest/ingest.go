// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest parses the intake form export and prepares the project
// configuration: research questions, numbered sources, and raw framing
// context. No AI calls are made in this stage.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/pkg/types"
)

// maxFormQuestions is the number of rqN column groups the intake form carries.
const maxFormQuestions = 5

// Run executes the full ingest stage: parse the form export, match the
// requester's PDFs to citations, copy matches under numbered names, and
// persist the project file. The returned problems are advisory; the
// config-review checkpoint shows them to the operator.
func Run(cfg types.IngestConfig, w io.Writer) (*types.Project, []string, error) {
	fmt.Fprintf(w, "Parsing %s...\n", cfg.FormPath)
	project, err := ParseForm(cfg.FormPath)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateProject(project); err != nil {
		return nil, nil, err
	}

	fmt.Fprintf(w, "Matching PDFs in %s...\n", cfg.PDFDir)
	unmatched, err := MatchPDFs(project.Sources, cfg.PDFDir)
	if err != nil {
		return nil, nil, err
	}
	if len(unmatched) > 0 {
		fmt.Fprintf(w, "Unmatched PDFs: %s\n", strings.Join(unmatched, ", "))
	}

	problems := ValidateSetup(project, cfg.PDFDir)

	fmt.Fprintf(w, "Copying PDFs to %s/...\n", cfg.RenamedDir)
	if err := RenamePDFs(project.Sources, cfg.PDFDir, cfg.RenamedDir, w); err != nil {
		return nil, nil, err
	}

	if err := WriteProject(project, cfg.ProjectPath); err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(w, "Project saved to %s\n", cfg.ProjectPath)
	return project, problems, nil
}

// ParseForm reads a Microsoft Forms Excel export and returns the project
// configuration it describes. Forms appends one row per response; the most
// recent (last) row wins.
func ParseForm(xlsxPath string) (*types.Project, error) {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("opening form export %s: %w", xlsxPath, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("form export %s has no response rows", xlsxPath)
	}

	fields := rowFields(rows[0], rows[len(rows)-1])

	project := &types.Project{
		Project: types.ProjectMeta{
			Name:        defaultIfEmpty(fields["project_name"], "Untitled Project"),
			Requester:   defaultIfEmpty(fields["requester_name"], "Unknown"),
			Email:       fields["requester_email"],
			Description: fields["project_description"],
			Date:        time.Now().Format("2006-01-02"),
		},
		ContextRaw: types.ContextRaw{
			Description: fields["context_description"],
			Population:  fields["context_population"],
			Constructs:  fields["context_constructs"],
			Focus:       fields["context_focus"],
		},
	}

	count := maxFormQuestions
	if n, err := strconv.Atoi(fields["rq_count"]); err == nil && n > 0 && n < count {
		count = n
	}
	for i := 1; i <= count; i++ {
		id := fields[fmt.Sprintf("rq%d_id", i)]
		text := fields[fmt.Sprintf("rq%d_text", i)]
		if id == "" || text == "" {
			continue
		}
		project.Questions = append(project.Questions, types.ResearchQuestion{
			ID:       id,
			Text:     text,
			Keywords: splitKeywords(fields[fmt.Sprintf("rq%d_keywords", i)]),
		})
	}

	project.Sources = ParseCitations(fields["source_citations"])

	return project, nil
}

// rowFields zips the header row with a data row into a map of trimmed
// cell values. Short rows (Excel drops trailing empty cells) yield empty
// strings for the missing columns.
func rowFields(header, data []string) map[string]string {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		value := ""
		if i < len(data) {
			value = strings.TrimSpace(data[i])
		}
		fields[strings.TrimSpace(name)] = value
	}
	return fields
}

func splitKeywords(s string) []string {
	var keywords []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

func defaultIfEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// WriteProject marshals the project configuration to path as YAML.
func WriteProject(project *types.Project, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadProject reads a project.yaml written by WriteProject.
func LoadProject(path string) (*types.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config: %w", err)
	}
	var project types.Project
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parsing project config: %w", err)
	}
	return &project, nil
}

// ValidateProject checks the configuration preconditions for extraction:
// at least one research question and one source. Violations are fatal and
// reported before any AI call is made.
func ValidateProject(project *types.Project) error {
	if len(project.Questions) == 0 {
		return fmt.Errorf("project has no research questions")
	}
	if len(project.Sources) == 0 {
		return fmt.Errorf("project has no sources")
	}
	seen := make(map[string]bool, len(project.Questions))
	for _, q := range project.Questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate research question ID %q", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// ValidateSetup checks that every source has a matched PDF on disk.
// It returns one message per problem rather than failing on the first,
// so the config-review checkpoint can show the full list.
func ValidateSetup(project *types.Project, pdfDir string) []string {
	var problems []string
	for _, src := range project.Sources {
		if src.OriginalFilename == "" {
			problems = append(problems, fmt.Sprintf("source %d (%s): no matching PDF found", src.SequenceNumber, truncate(src.Citation, 40)))
			continue
		}
		if err := ValidatePDF(filepath.Join(pdfDir, src.OriginalFilename)); err != nil {
			problems = append(problems, fmt.Sprintf("source %d: %v", src.SequenceNumber, err))
		}
	}
	return problems
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
