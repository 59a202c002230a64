// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Store persists extraction records as one JSON file per document under
// its directory. Files are named after the numbered PDF (NN_Author_Year.json)
// so the record set reads as the citation list. Records are append-only:
// a write replaces the whole file, there are no partial updates, and the
// presence of a valid file is the resumability check.
type Store struct {
	dir string
}

// NewStore creates the records directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating records directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the records directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(src types.Source) string {
	name := strings.TrimSuffix(src.Filename, filepath.Ext(src.Filename)) + ".json"
	return filepath.Join(s.dir, name)
}

// HasValid reports whether a persisted record for src exists, parses, and
// carries an evidence entry for every configured question. Anything less
// counts as absent so a re-run extracts the document again.
func (s *Store) HasValid(src types.Source, questions []types.ResearchQuestion) bool {
	record, err := s.Load(src)
	if err != nil {
		return false
	}
	for _, q := range questions {
		if _, ok := record.Evidence[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Write persists the record for src, replacing any previous one.
func (s *Store) Write(src types.Source, record *types.ExtractionRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %d: %w", record.SequenceNumber, err)
	}
	if err := os.WriteFile(s.path(src), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing record %d: %w", record.SequenceNumber, err)
	}
	return nil
}

// Load reads the persisted record for src.
func (s *Store) Load(src types.Source) (*types.ExtractionRecord, error) {
	data, err := os.ReadFile(s.path(src))
	if err != nil {
		return nil, fmt.Errorf("reading record %d: %w", src.SequenceNumber, err)
	}
	var record types.ExtractionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing record %d: %w", src.SequenceNumber, err)
	}
	return &record, nil
}

// LoadAll reads every record file in the store, ordered by sequence
// number. The set may be smaller than the project's source list when some
// documents failed or were never extracted; aggregation works over
// whatever is present.
func (s *Store) LoadAll() ([]*types.ExtractionRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading records directory %s: %w", s.dir, err)
	}

	var records []*types.ExtractionRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var record types.ExtractionRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SequenceNumber < records[j].SequenceNumber
	})
	return records, nil
}
