// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// match.go pairs the requester's PDF files with their citations and copies
// them into the numbered layout the extraction stage expects.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdiddy/review-engine/pkg/types"
)

var digitYearRe = regexp.MustCompile(`\d{4}`)

// MatchPDFs pairs PDF files in pdfDir with sources by scoring author-name
// and year substrings against each filename. Each PDF is claimed by at
// most one source. The returned slice lists PDFs no source claimed.
// Sources are updated in place with their OriginalFilename.
func MatchPDFs(sources []types.Source, pdfDir string) ([]string, error) {
	entries, err := os.ReadDir(pdfDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading PDF directory %s: %w", pdfDir, err)
	}

	var unmatched []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			unmatched = append(unmatched, e.Name())
		}
	}

	for i := range sources {
		slug := strings.ToLower(AuthorYear(sources[i].Citation))
		best, bestScore := -1, 0
		for j, name := range unmatched {
			if score := matchScore(slug, strings.ToLower(name)); score > bestScore {
				best, bestScore = j, score
			}
		}
		if best >= 0 {
			sources[i].OriginalFilename = unmatched[best]
			unmatched = append(unmatched[:best], unmatched[best+1:]...)
		}
	}

	return unmatched, nil
}

// matchScore counts author-name parts (3+ characters) of the slug found in
// the filename, plus one for a year match. Zero means no plausible match.
func matchScore(slug, filename string) int {
	score := 0
	for _, part := range strings.Split(slug, "_") {
		if len(part) >= 3 && part != "xxxx" && !digitYearRe.MatchString(part) && strings.Contains(filename, part) {
			score++
		}
	}
	if year := digitYearRe.FindString(slug); year != "" && strings.Contains(filename, year) {
		score++
	}
	return score
}

// RenamePDFs copies matched PDFs from inputDir into outputDir under their
// numbered filenames, reporting progress per source on w. Sources without
// a match are reported and skipped.
func RenamePDFs(sources []types.Source, inputDir, outputDir string, w io.Writer) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating renamed PDF directory: %w", err)
	}

	for _, src := range sources {
		if src.OriginalFilename == "" {
			fmt.Fprintf(w, "  %2d. skipped (no matching PDF): %s\n", src.SequenceNumber, truncate(src.Citation, 40))
			continue
		}
		from := filepath.Join(inputDir, src.OriginalFilename)
		to := filepath.Join(outputDir, src.Filename)
		if err := copyFile(from, to); err != nil {
			return fmt.Errorf("copying source %d: %w", src.SequenceNumber, err)
		}
		fmt.Fprintf(w, "  %2d. %s -> %s\n", src.SequenceNumber, src.OriginalFilename, src.Filename)
	}
	return nil
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// pdfMagic is the header every well-formed PDF starts with.
var pdfMagic = []byte("%PDF-")

const (
	minPDFSize = 1024
	maxPDFSize = 100 << 20
)

// ValidatePDF checks that path exists, is plausibly sized, and carries the
// PDF magic bytes.
func ValidatePDF(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", path)
	}
	if info.Size() < minPDFSize {
		return fmt.Errorf("file too small, may be empty: %s", path)
	}
	if info.Size() > maxPDFSize {
		return fmt.Errorf("file too large (>100MB): %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if !bytes.Equal(header, pdfMagic) {
		return fmt.Errorf("invalid PDF header: %s", path)
	}
	return nil
}
