// Package report assembles computed agreement statistics into ordered,
// render-ready structures and renders them as text, terminal output, and CSV.
// The aggregator performs no computation of its own and keeps every scalar at
// full float64 precision; display rounding is the renderer's business.
package report

import (
	"time"

	"github.com/triadlab/concord/internal/model"
)

// Block kinds.
const (
	KindStatistic     = "statistic"
	KindPairwise      = "pairwise"
	KindConcurrence   = "concurrence"
	KindVsReference   = "vs_reference"
	KindPerCategory   = "per_category"
	KindConfusion     = "confusion"
	KindDisagreements = "disagreements"
)

// VsReference bundles one rater's comparison against the reference.
type VsReference struct {
	Rater       model.RaterID
	Accuracy    model.AgreementResult
	Kappa       model.PairwiseResult
	Confusion   model.ConfusionMatrix
	PerCategory []model.CategoryAgreement
}

// Block is one titled section of a report. Exactly one payload field is set,
// according to Kind.
type Block struct {
	Kind          string
	Title         string
	Statistic     *model.AgreementResult
	Pairwise      []model.PairwiseResult
	Concurrence   *model.ConcurrenceStats
	VsReference   []VsReference
	PerCategory   []model.CategoryAgreement
	Confusion     *model.ConfusionMatrix
	Disagreements []model.Disagreement
}

// Report is the ordered set of blocks handed to rendering.
type Report struct {
	GeneratedAt time.Time
	Blocks      []Block
}

// Aggregator collects blocks in the order they are added.
type Aggregator struct {
	blocks []Block
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddStatistic appends a single-scalar block.
func (a *Aggregator) AddStatistic(title string, r model.AgreementResult) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindStatistic, Title: title, Statistic: &r})
	return a
}

// AddPairwise appends a pairwise-kappa block.
func (a *Aggregator) AddPairwise(title string, rs []model.PairwiseResult) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindPairwise, Title: title, Pairwise: rs})
	return a
}

// AddConcurrence appends a concurrence-count block.
func (a *Aggregator) AddConcurrence(title string, s model.ConcurrenceStats) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindConcurrence, Title: title, Concurrence: &s})
	return a
}

// AddVsReference appends a rater-vs-reference summary block.
func (a *Aggregator) AddVsReference(title string, rs []VsReference) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindVsReference, Title: title, VsReference: rs})
	return a
}

// AddPerCategory appends a per-category agreement block.
func (a *Aggregator) AddPerCategory(title string, cs []model.CategoryAgreement) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindPerCategory, Title: title, PerCategory: cs})
	return a
}

// AddConfusion appends a confusion-matrix block.
func (a *Aggregator) AddConfusion(title string, m model.ConfusionMatrix) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindConfusion, Title: title, Confusion: &m})
	return a
}

// AddDisagreements appends a disagreement-listing block.
func (a *Aggregator) AddDisagreements(title string, ds []model.Disagreement) *Aggregator {
	a.blocks = append(a.blocks, Block{Kind: KindDisagreements, Title: title, Disagreements: ds})
	return a
}

// Build returns the assembled report.
func (a *Aggregator) Build() Report {
	blocks := make([]Block, len(a.blocks))
	copy(blocks, a.blocks)
	return Report{
		GeneratedAt: time.Now(),
		Blocks:      blocks,
	}
}
