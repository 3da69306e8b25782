// Package merge aligns per-rater annotation sets against a reference set,
// producing one joined table keyed by sample ID.
package merge

import (
	"fmt"
	"log/slog"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
)

// Row is one annotated sample from a single source file. For the reference
// source the sample carries the prompt/response text; rater sources usually
// carry only the ID.
type Row struct {
	Sample  model.Sample
	Opinion model.Opinion
}

// Source is one table of opinions from a single rater identity.
type Source struct {
	Rater model.RaterID
	Rows  []Row
}

// Warning reports a non-fatal merge anomaly: a rater annotated a sample the
// reference does not know about, usually a stale or mismatched file version.
// The offending row is dropped; the merge proceeds.
type Warning struct {
	Rater    model.RaterID
	SampleID string
}

func (w Warning) String() string {
	return fmt.Sprintf("sample %q from rater %q is not in the reference table; row dropped", w.SampleID, w.Rater)
}

// Merge joins the reference source and every rater source into a single
// table, one record per reference sample, in the reference's original order.
//
// Samples the reference knows but a rater skipped get no opinion for that
// rater. Samples a rater knows but the reference does not are dropped and
// surfaced as Warnings. A duplicate sample ID within any one source is fatal
// for the merge and reported via common.ErrDuplicateSample.
func Merge(reference Source, raters []Source) (model.JoinedTable, []Warning, error) {
	if reference.Rater == "" {
		reference.Rater = model.RaterReference
	}

	if err := checkDuplicates(reference); err != nil {
		return model.JoinedTable{}, nil, err
	}
	for _, src := range raters {
		if err := checkDuplicates(src); err != nil {
			return model.JoinedTable{}, nil, err
		}
	}

	records := make([]model.JoinedRecord, 0, len(reference.Rows))
	byID := make(map[string]int, len(reference.Rows))

	for _, row := range reference.Rows {
		op := row.Opinion
		op.Rater = reference.Rater
		rec := model.JoinedRecord{
			Sample:   row.Sample,
			Opinions: map[model.RaterID]model.Opinion{reference.Rater: op},
		}
		byID[row.Sample.ID] = len(records)
		records = append(records, rec)
	}

	var warnings []Warning
	raterIDs := make([]model.RaterID, 0, len(raters))

	for _, src := range raters {
		raterIDs = append(raterIDs, src.Rater)
		for _, row := range src.Rows {
			idx, ok := byID[row.Sample.ID]
			if !ok {
				w := Warning{Rater: src.Rater, SampleID: row.Sample.ID}
				warnings = append(warnings, w)
				slog.Warn("dropping sample not present in reference",
					"rater", src.Rater,
					"sample_id", row.Sample.ID)
				continue
			}
			op := row.Opinion
			op.Rater = src.Rater
			records[idx].Opinions[src.Rater] = op
		}
	}

	table := model.JoinedTable{
		Raters:  append([]model.RaterID{reference.Rater}, raterIDs...),
		Records: records,
	}

	return table, warnings, nil
}

func checkDuplicates(src Source) error {
	seen := make(map[string]struct{}, len(src.Rows))
	for _, row := range src.Rows {
		if row.Sample.ID == "" {
			return fmt.Errorf("source %q contains a row with an empty sample id", src.Rater)
		}
		if _, dup := seen[row.Sample.ID]; dup {
			return fmt.Errorf("%w: sample %q appears twice in source %q", common.ErrDuplicateSample, row.Sample.ID, src.Rater)
		}
		seen[row.Sample.ID] = struct{}{}
	}
	return nil
}
