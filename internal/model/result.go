package model

import "time"

// AgreementResult is one computed agreement statistic. Value is meaningful
// only when Defined is true; an undefined statistic must be rendered as
// "n/a", never as zero.
type AgreementResult struct {
	Statistic      string
	Value          float64
	Defined        bool
	Interpretation string
	Raters         []RaterID
	N              int
}

// PairwiseResult is Cohen's kappa for one unordered rater pair, computed over
// that pair's own complete-case subset.
type PairwiseResult struct {
	A       RaterID
	B       RaterID
	Kappa   float64
	Defined bool
	N       int
}

// CategoryAgreement is the recall-style per-category agreement for one
// rater-vs-reference pair: of the complete-case samples the reference labeled
// Category, the fraction the rater labeled the same way. Undefined when the
// reference never used the category.
type CategoryAgreement struct {
	Category  Category
	Rater     RaterID
	Reference RaterID
	Agreement float64
	Defined   bool
	N         int
}

// ConcurrenceStats counts agreement patterns over the complete-case subset of
// a rater set: how often every rater concurred, how often at least two did,
// how often the largest concurring bloc was exactly two, and how often all
// opinions differed.
type ConcurrenceStats struct {
	Raters          []RaterID
	N               int
	AllAgree        int
	AnyTwoAgree     int
	ExactlyTwoAgree int
	NoAgreement     int
}

// AllAgreePct returns AllAgree as a percentage of N, or 0 for an empty set.
func (s ConcurrenceStats) AllAgreePct() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(s.AllAgree) / float64(s.N) * 100
}

// AnyTwoAgreePct returns AnyTwoAgree as a percentage of N, or 0 for an empty set.
func (s ConcurrenceStats) AnyTwoAgreePct() float64 {
	if s.N == 0 {
		return 0
	}
	return float64(s.AnyTwoAgree) / float64(s.N) * 100
}

// ConfusionMatrix cross-tabulates one rater's categories against the
// reference over that pair's complete cases. Rows are the reference truth,
// columns the rater's assignment. The category axes are the fixed taxonomy
// universe, so zero-occurrence categories still appear.
type ConfusionMatrix struct {
	Rater      RaterID
	Reference  RaterID
	Categories []Category
	Counts     [][]int
	N          int
}

// At returns the count of complete-case samples the reference labeled ref and
// the rater labeled got. Unknown categories count zero.
func (m ConfusionMatrix) At(ref, got Category) int {
	ri, ok := m.index(ref)
	if !ok {
		return 0
	}
	ci, ok := m.index(got)
	if !ok {
		return 0
	}
	return m.Counts[ri][ci]
}

// RowSum returns the number of complete-case samples with the given
// reference category.
func (m ConfusionMatrix) RowSum(ref Category) int {
	ri, ok := m.index(ref)
	if !ok {
		return 0
	}
	sum := 0
	for _, v := range m.Counts[ri] {
		sum += v
	}
	return sum
}

// ColSum returns the number of complete-case samples the rater assigned the
// given category.
func (m ConfusionMatrix) ColSum(got Category) int {
	ci, ok := m.index(got)
	if !ok {
		return 0
	}
	sum := 0
	for _, row := range m.Counts {
		sum += row[ci]
	}
	return sum
}

func (m ConfusionMatrix) index(c Category) (int, bool) {
	for i, cat := range m.Categories {
		if cat == c {
			return i, true
		}
	}
	return 0, false
}

// Disagreement is one sample where at least two of the inspected raters
// assigned different categories, carried with every rater's opinion so a
// reviewer sees the full picture. Raters with no opinion are simply absent
// from Opinions; absence is reported, never treated as a dissenting vote.
type Disagreement struct {
	Sample   Sample
	Opinions map[RaterID]Opinion
}

// AnalysisRun is one persisted analysis: which raters were compared, the
// headline multi-rater kappa, and every scalar statistic computed.
type AnalysisRun struct {
	ID        string
	CreatedAt time.Time
	Raters    []RaterID
	NSamples  int
	Results   []AgreementResult
	Pairwise  []PairwiseResult
}
