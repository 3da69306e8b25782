// Package agreement computes inter-rater reliability statistics over a
// joined annotation table: multi-rater and pairwise chance-corrected
// agreement, raw accuracy, per-category agreement, concurrence counts,
// confusion matrices, and disagreement extraction.
//
// Every computation treats its input table as read-only. Statistical edge
// cases (a category the reference never used, a pair with no overlap) are
// reported through explicit undefined markers; only structurally impossible
// requests (fewer than two raters, fewer than two complete cases for a
// multi-rater statistic) fail with common.ErrInsufficientData.
package agreement

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/taxonomy"
)

// Statistic names as they appear in results and reports.
const (
	StatFleissKappa = "fleiss_kappa"
	StatCohenKappa  = "cohen_kappa"
	StatAccuracy    = "accuracy"
)

// Engine computes agreement statistics for one taxonomy.
type Engine struct {
	tax       taxonomy.Taxonomy
	interpret taxonomy.Interpreter
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterpreter overrides the kappa interpretation policy the engine
// attaches to its results. The default is the taxonomy's own policy.
func WithInterpreter(fn taxonomy.Interpreter) Option {
	return func(e *Engine) { e.interpret = fn }
}

// NewEngine creates an agreement engine over the given taxonomy.
func NewEngine(tax taxonomy.Taxonomy, opts ...Option) *Engine {
	e := &Engine{
		tax:       tax,
		interpret: tax.Interpreter(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FleissKappa computes the multi-rater chance-corrected agreement across the
// named raters, over the subset of records every one of them labeled with a
// taxonomy category. Fails with common.ErrInsufficientData when fewer than
// two raters are named or fewer than two complete cases exist.
func (e *Engine) FleissKappa(table model.JoinedTable, raters []model.RaterID) (model.AgreementResult, error) {
	if len(raters) < 2 {
		return model.AgreementResult{}, fmt.Errorf("%w: fleiss kappa needs at least 2 raters, got %d", common.ErrInsufficientData, len(raters))
	}

	complete := e.completeCases(table, raters)
	n := len(complete)
	if n < 2 {
		return model.AgreementResult{}, fmt.Errorf("%w: fleiss kappa needs at least 2 complete cases, got %d", common.ErrInsufficientData, n)
	}

	nr := float64(len(raters))
	k := e.tax.Size()

	// counts[i][j] is how many of the raters assigned category j to sample i.
	counts := make([][]float64, n)
	for i, rec := range complete {
		counts[i] = make([]float64, k)
		for _, rater := range raters {
			j, ok := e.tax.Index(rec.Category(rater))
			if !ok {
				continue
			}
			counts[i][j]++
		}
	}

	// Marginal category proportions across all ratings.
	pj := make([]float64, k)
	for _, row := range counts {
		floats.Add(pj, row)
	}
	floats.Scale(1/(float64(n)*nr), pj)

	pe := 0.0
	for _, p := range pj {
		pe += p * p
	}

	// Per-sample observed agreement.
	pi := make([]float64, n)
	for i, row := range counts {
		sumSq := 0.0
		for _, c := range row {
			sumSq += c * c
		}
		pi[i] = (sumSq - nr) / (nr * (nr - 1))
	}
	pbar := stat.Mean(pi, nil)

	kappa := 1.0
	if pe != 1.0 {
		kappa = (pbar - pe) / (1 - pe)
	}

	return model.AgreementResult{
		Statistic:      StatFleissKappa,
		Value:          kappa,
		Defined:        true,
		Interpretation: e.interpret(kappa),
		Raters:         copyRaters(raters),
		N:              n,
	}, nil
}

// PairwiseKappa computes Cohen's kappa for every unordered pair of the named
// raters. Each pair is scored over its own complete-case subset, so a record
// a third rater skipped still counts for the pairs that do cover it.
func (e *Engine) PairwiseKappa(table model.JoinedTable, raters []model.RaterID) ([]model.PairwiseResult, error) {
	if len(raters) < 2 {
		return nil, fmt.Errorf("%w: pairwise kappa needs at least 2 raters, got %d", common.ErrInsufficientData, len(raters))
	}

	results := make([]model.PairwiseResult, 0, len(raters)*(len(raters)-1)/2)
	for i := 0; i < len(raters); i++ {
		for j := i + 1; j < len(raters); j++ {
			results = append(results, e.CohenKappa(table, raters[i], raters[j]))
		}
	}
	return results, nil
}

// CohenKappa computes the chance-corrected agreement between two raters over
// their joint complete-case subset. A pair with no overlap yields an
// undefined result rather than an error, so one empty pair cannot block a
// larger report.
func (e *Engine) CohenKappa(table model.JoinedTable, a, b model.RaterID) model.PairwiseResult {
	complete := e.completeCases(table, []model.RaterID{a, b})
	n := len(complete)
	if n == 0 {
		return model.PairwiseResult{A: a, B: b, Defined: false}
	}

	k := e.tax.Size()
	observed := 0
	marginA := make([]float64, k)
	marginB := make([]float64, k)

	for _, rec := range complete {
		ca, cb := rec.Category(a), rec.Category(b)
		if ca == cb {
			observed++
		}
		if ia, ok := e.tax.Index(ca); ok {
			marginA[ia]++
		}
		if ib, ok := e.tax.Index(cb); ok {
			marginB[ib]++
		}
	}

	po := float64(observed) / float64(n)
	pe := floats.Dot(marginA, marginB) / (float64(n) * float64(n))

	kappa := 1.0
	if pe != 1.0 {
		kappa = (po - pe) / (1 - pe)
	}

	return model.PairwiseResult{A: a, B: b, Kappa: kappa, Defined: true, N: n}
}

// Accuracy computes the fraction of the pair's complete cases where the
// rater's category exactly equals the reference's.
func (e *Engine) Accuracy(table model.JoinedTable, rater, reference model.RaterID) model.AgreementResult {
	complete := e.completeCases(table, []model.RaterID{rater, reference})
	n := len(complete)
	if n == 0 {
		return model.AgreementResult{
			Statistic: StatAccuracy,
			Raters:    []model.RaterID{rater, reference},
		}
	}

	matches := 0
	for _, rec := range complete {
		if rec.Category(rater) == rec.Category(reference) {
			matches++
		}
	}

	return model.AgreementResult{
		Statistic: StatAccuracy,
		Value:     float64(matches) / float64(n),
		Defined:   true,
		Raters:    []model.RaterID{rater, reference},
		N:         n,
	}
}

// PerCategoryAgreement computes, for every taxonomy category, the
// recall-style agreement of the rater against the reference: of the
// complete-case samples the reference labeled c, the fraction the rater also
// labeled c. The denominator is reference occurrences, not rater
// predictions; a category the reference never used yields an undefined cell.
func (e *Engine) PerCategoryAgreement(table model.JoinedTable, rater, reference model.RaterID) []model.CategoryAgreement {
	complete := e.completeCases(table, []model.RaterID{rater, reference})

	out := make([]model.CategoryAgreement, 0, e.tax.Size())
	for _, cat := range e.tax.Categories() {
		total, matched := 0, 0
		for _, rec := range complete {
			if rec.Category(reference) != cat {
				continue
			}
			total++
			if rec.Category(rater) == cat {
				matched++
			}
		}

		ca := model.CategoryAgreement{
			Category:  cat,
			Rater:     rater,
			Reference: reference,
			N:         total,
		}
		if total > 0 {
			ca.Agreement = float64(matched) / float64(total)
			ca.Defined = true
		}
		out = append(out, ca)
	}
	return out
}

// Concurrence counts agreement patterns across the named raters over their
// global complete-case subset: full concurrence, at-least-two concurrence,
// largest-bloc-of-exactly-two, and total disarray.
func (e *Engine) Concurrence(table model.JoinedTable, raters []model.RaterID) (model.ConcurrenceStats, error) {
	if len(raters) < 2 {
		return model.ConcurrenceStats{}, fmt.Errorf("%w: concurrence needs at least 2 raters, got %d", common.ErrInsufficientData, len(raters))
	}

	stats := model.ConcurrenceStats{Raters: copyRaters(raters)}
	for _, rec := range e.completeCases(table, raters) {
		stats.N++

		blocs := make(map[model.Category]int, len(raters))
		for _, rater := range raters {
			blocs[rec.Category(rater)]++
		}

		largest := 0
		for _, size := range blocs {
			if size > largest {
				largest = size
			}
		}

		switch {
		case len(blocs) == 1:
			stats.AllAgree++
			stats.AnyTwoAgree++
		case largest >= 2:
			stats.AnyTwoAgree++
			if largest == 2 {
				stats.ExactlyTwoAgree++
			}
		default:
			stats.NoAgreement++
		}
	}

	return stats, nil
}

// completeCases returns the records where every named rater assigned a
// category from the closed universe. ERROR and missing opinions both
// disqualify a record: neither is a stance to agree with.
func (e *Engine) completeCases(table model.JoinedTable, raters []model.RaterID) []model.JoinedRecord {
	out := make([]model.JoinedRecord, 0, len(table.Records))
	for _, rec := range table.Records {
		ok := true
		for _, rater := range raters {
			if !e.tax.Contains(rec.Category(rater)) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func copyRaters(raters []model.RaterID) []model.RaterID {
	out := make([]model.RaterID, len(raters))
	copy(out, raters)
	return out
}
