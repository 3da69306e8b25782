package agreement

import (
	"github.com/triadlab/concord/internal/model"
)

// ConfusionMatrix cross-tabulates a rater's categories against the reference
// over the pair's complete cases. The axes are the full taxonomy universe,
// so a category neither side used still appears with zero rows and columns.
func (e *Engine) ConfusionMatrix(table model.JoinedTable, rater, reference model.RaterID) model.ConfusionMatrix {
	cats := e.tax.Categories()
	counts := make([][]int, len(cats))
	for i := range counts {
		counts[i] = make([]int, len(cats))
	}

	n := 0
	for _, rec := range e.completeCases(table, []model.RaterID{rater, reference}) {
		ri, _ := e.tax.Index(rec.Category(reference))
		ci, _ := e.tax.Index(rec.Category(rater))
		counts[ri][ci]++
		n++
	}

	return model.ConfusionMatrix{
		Rater:      rater,
		Reference:  reference,
		Categories: cats,
		Counts:     counts,
		N:          n,
	}
}

// FindDisagreements returns, in the table's original order, every sample
// where the named raters did not all assign the same category.
//
// With strict set, a record missing any named rater's opinion is skipped
// outright. Without it, disagreement among whichever opinions are present is
// enough to flag the sample; absent opinions are carried as absent, never
// counted as a dissenting vote. ERROR labels are real opinions here: a judge
// that could not decide genuinely differs from a rater that picked a stance.
func (e *Engine) FindDisagreements(table model.JoinedTable, raters []model.RaterID, strict bool) []model.Disagreement {
	var out []model.Disagreement

	for _, rec := range table.Records {
		present := make([]model.Category, 0, len(raters))
		opinions := make(map[model.RaterID]model.Opinion, len(raters))

		for _, rater := range raters {
			op, ok := rec.Opinion(rater)
			if !ok {
				continue
			}
			opinions[rater] = op
			if !op.Category.IsMissing() {
				present = append(present, op.Category)
			}
		}

		if strict && len(present) < len(raters) {
			continue
		}
		if len(present) < 2 {
			continue
		}

		agreed := true
		for _, c := range present[1:] {
			if c != present[0] {
				agreed = false
				break
			}
		}
		if agreed {
			continue
		}

		out = append(out, model.Disagreement{
			Sample:   rec.Sample,
			Opinions: opinions,
		})
	}

	return out
}
