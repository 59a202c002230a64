// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate folds persisted extraction records into coverage
// summaries and renders the review outputs. It owns no state: every pass
// recomputes from whatever records are present, so an aggregation-only
// rerun works against a partial or older extraction set.
package aggregate

import (
	"sort"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Coverage computes per-question evidence coverage over the record set.
// Questions keep their project-declared order; entries within a question
// are ordered by sequence number. A question absent from a record's
// evidence map counts as no evidence for that record.
func Coverage(records []*types.ExtractionRecord, questions []types.ResearchQuestion) []types.QuestionCoverage {
	ordered := make([]*types.ExtractionRecord, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SequenceNumber < ordered[j].SequenceNumber
	})

	coverages := make([]types.QuestionCoverage, 0, len(questions))
	for _, q := range questions {
		cov := types.QuestionCoverage{
			Question:       q,
			TotalDocuments: len(ordered),
		}
		for _, r := range ordered {
			entry, ok := r.Evidence[q.ID]
			if ok && entry.HasEvidence {
				cov.WithEvidence++
				cov.Entries = append(cov.Entries, types.CoverageEntry{Record: r, Entry: entry})
			} else {
				cov.Without = append(cov.Without, r)
			}
		}
		coverages = append(coverages, cov)
	}
	return coverages
}
