// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/review-engine/pkg/types"
)

// writeFormExport builds a minimal Forms-style export with a header row and
// the given response rows.
func writeFormExport(t *testing.T, rows ...[]string) string {
	t.Helper()

	header := []string{
		"project_name", "requester_name", "requester_email", "project_description",
		"rq_count",
		"rq1_id", "rq1_text", "rq1_keywords",
		"rq2_id", "rq2_text", "rq2_keywords",
		"source_citations",
		"context_description", "context_population", "context_constructs", "context_focus",
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "form_response.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func sampleRow() []string {
	return []string{
		"Screen Time Review", "Jane Doe", "jane@example.com", "A systematic review",
		"2",
		"RQ1", "What is the impact of technology on learning outcomes?", "technology, learning",
		"RQ2", "How does screen time affect cognitive development?", "screen time, cognition",
		"Kong et al. (2023) - Media multitasking meta-analysis\nWilliams (2024) - Educational technology review",
		"Effects of digital technology on development.", "Adolescents aged 12-18", "Screen time, attention", "Educational settings",
	}
}

func TestParseForm(t *testing.T) {
	path := writeFormExport(t, sampleRow())

	project, err := ParseForm(path)
	require.NoError(t, err)

	assert.Equal(t, "Screen Time Review", project.Project.Name)
	assert.Equal(t, "Jane Doe", project.Project.Requester)

	require.Len(t, project.Questions, 2)
	assert.Equal(t, "RQ1", project.Questions[0].ID)
	assert.Equal(t, []string{"technology", "learning"}, project.Questions[0].Keywords)

	require.Len(t, project.Sources, 2)
	assert.Equal(t, "Kong et al. (2023)", project.Sources[0].Citation)
	assert.Equal(t, "01_Kong_2023.pdf", project.Sources[0].Filename)
	assert.Equal(t, 2, project.Sources[1].SequenceNumber)

	assert.Equal(t, "Adolescents aged 12-18", project.ContextRaw.Population)
}

func TestParseFormLastRowWins(t *testing.T) {
	older := sampleRow()
	older[0] = "Old Project"
	path := writeFormExport(t, older, sampleRow())

	project, err := ParseForm(path)
	require.NoError(t, err)
	assert.Equal(t, "Screen Time Review", project.Project.Name)
}

func TestParseFormNoResponses(t *testing.T) {
	path := writeFormExport(t)
	_, err := ParseForm(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response rows")
}

func TestProjectRoundTrip(t *testing.T) {
	project := &types.Project{
		Project:   types.ProjectMeta{Name: "P", Requester: "R", Date: "2026-01-05"},
		Questions: []types.ResearchQuestion{{ID: "RQ1", Text: "Q?", Keywords: []string{"k"}}},
		Sources:   []types.Source{{SequenceNumber: 1, Citation: "Kong et al. (2023)", Filename: "01_Kong_2023.pdf"}},
		Framing:   "This review examines...",
	}

	path := filepath.Join(t.TempDir(), "config", "project.yaml")
	require.NoError(t, WriteProject(project, path))

	loaded, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, project, loaded)
}

func TestRun(t *testing.T) {
	formPath := writeFormExport(t, sampleRow())

	tmpDir := t.TempDir()
	pdfInput := filepath.Join(tmpDir, "input", "pdfs")
	require.NoError(t, os.MkdirAll(pdfInput, 0o755))
	writePDF(t, pdfInput, "kong 2023 multitasking.pdf")

	cfg := types.IngestConfig{
		FormPath:    formPath,
		PDFDir:      pdfInput,
		RenamedDir:  filepath.Join(tmpDir, "pdfs"),
		ProjectPath: filepath.Join(tmpDir, "config", "project.yaml"),
	}

	var out strings.Builder
	project, problems, err := Run(cfg, &out)
	require.NoError(t, err)

	// Source 1 matched and copied; source 2 has no PDF.
	assert.Equal(t, "kong 2023 multitasking.pdf", project.Sources[0].OriginalFilename)
	assert.FileExists(t, filepath.Join(cfg.RenamedDir, "01_Kong_2023.pdf"))
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "source 2")

	loaded, err := LoadProject(cfg.ProjectPath)
	require.NoError(t, err)
	assert.Equal(t, project, loaded)

	assert.Contains(t, out.String(), "Parsing "+formPath)
	assert.Contains(t, out.String(), "Project saved to "+cfg.ProjectPath)
}

func TestRunBadForm(t *testing.T) {
	cfg := types.IngestConfig{FormPath: filepath.Join(t.TempDir(), "missing.xlsx")}
	_, _, err := Run(cfg, &strings.Builder{})
	require.Error(t, err)
}

func TestValidateProject(t *testing.T) {
	valid := &types.Project{
		Questions: []types.ResearchQuestion{{ID: "RQ1", Text: "Q?"}},
		Sources:   []types.Source{{SequenceNumber: 1, Citation: "A (2020)"}},
	}
	assert.NoError(t, ValidateProject(valid))

	noQuestions := &types.Project{Sources: valid.Sources}
	assert.Error(t, ValidateProject(noQuestions))

	noSources := &types.Project{Questions: valid.Questions}
	assert.Error(t, ValidateProject(noSources))

	dupIDs := &types.Project{
		Questions: []types.ResearchQuestion{{ID: "RQ1", Text: "a"}, {ID: "RQ1", Text: "b"}},
		Sources:   valid.Sources,
	}
	assert.Error(t, ValidateProject(dupIDs))
}
