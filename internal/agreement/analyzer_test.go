package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triadlab/concord/internal/model"
)

func TestConfusionMatrix(t *testing.T) {
	e := newTestEngine(t)
	m := e.ConfusionMatrix(studyTable(), a1, ref)

	assert.Equal(t, a1, m.Rater)
	assert.Equal(t, ref, m.Reference)
	assert.Equal(t, 3, m.N)

	// s1: both CORRECTIVE; s2: both REFUSAL; s3: reference MIXED, rater
	// CORRECTIVE.
	assert.Equal(t, 1, m.At(model.CategoryCorrective, model.CategoryCorrective))
	assert.Equal(t, 1, m.At(model.CategoryRefusal, model.CategoryRefusal))
	assert.Equal(t, 1, m.At(model.CategoryMixed, model.CategoryCorrective))
	assert.Equal(t, 0, m.At(model.CategoryMixed, model.CategoryMixed))

	// Axes are the full universe even for unused categories.
	require.Len(t, m.Categories, 4)
	assert.Equal(t, 0, m.RowSum(model.CategoryReinforcing))
	assert.Equal(t, 0, m.ColSum(model.CategoryReinforcing))

	// Row sums follow the reference's usage, column sums the rater's.
	assert.Equal(t, 1, m.RowSum(model.CategoryMixed))
	assert.Equal(t, 2, m.ColSum(model.CategoryCorrective))
}

func TestConfusionMatrix_ExcludesIncompleteCases(t *testing.T) {
	e := newTestEngine(t)
	table := buildTable(
		[]model.RaterID{ref, a1},
		[][]model.Category{
			{model.CategoryRefusal, model.CategoryRefusal},
			{model.CategoryError, model.CategoryRefusal},
			{model.CategoryMixed, model.CategoryMissing},
		},
	)

	m := e.ConfusionMatrix(table, a1, ref)
	assert.Equal(t, 1, m.N)
	assert.Equal(t, 1, m.At(model.CategoryRefusal, model.CategoryRefusal))
}

func TestFindDisagreements(t *testing.T) {
	e := newTestEngine(t)
	raters := []model.RaterID{ref, a1, a2}

	disagreements := e.FindDisagreements(studyTable(), raters, false)
	require.Len(t, disagreements, 2)

	// s1 is unanimous; s2 and s3 each have a dissenter.
	assert.Equal(t, "s2", disagreements[0].Sample.ID)
	assert.Equal(t, "s3", disagreements[1].Sample.ID)

	// Every present opinion rides along for review.
	require.Len(t, disagreements[0].Opinions, 3)
	assert.Equal(t, model.CategoryMixed, disagreements[0].Opinions[a2].Category)
}

func TestFindDisagreements_UnanimousTableIsEmpty(t *testing.T) {
	e := newTestEngine(t)
	raters := []model.RaterID{ref, a1, a2}

	table := buildTable(
		raters,
		[][]model.Category{
			{model.CategoryRefusal, model.CategoryRefusal, model.CategoryRefusal},
			{model.CategoryMixed, model.CategoryMixed, model.CategoryMixed},
		},
	)

	assert.Empty(t, e.FindDisagreements(table, raters, false))
	assert.Empty(t, e.FindDisagreements(table, raters, true))
}

func TestFindDisagreements_MissingOpinions(t *testing.T) {
	e := newTestEngine(t)
	raters := []model.RaterID{ref, a1, a2}

	table := buildTable(
		raters,
		[][]model.Category{
			// Two present opinions differ; the absent one is not a vote.
			{model.CategoryRefusal, model.CategoryMixed, model.CategoryMissing},
			// Only one present opinion: nothing to disagree about.
			{model.CategoryRefusal, model.CategoryMissing, model.CategoryMissing},
			// Two present opinions concur.
			{model.CategoryMixed, model.CategoryMissing, model.CategoryMixed},
		},
	)

	loose := e.FindDisagreements(table, raters, false)
	require.Len(t, loose, 1)
	assert.Equal(t, "s1", loose[0].Sample.ID)
	_, hasAbsent := loose[0].Opinions[a2]
	assert.False(t, hasAbsent)

	// Strict mode only inspects samples every rater labeled.
	strict := e.FindDisagreements(table, raters, true)
	assert.Empty(t, strict)
}

func TestFindDisagreements_ErrorIsARealOpinion(t *testing.T) {
	e := newTestEngine(t)
	raters := []model.RaterID{ref, a1}

	table := buildTable(
		raters,
		[][]model.Category{
			{model.CategoryError, model.CategoryRefusal},
			{model.CategoryError, model.CategoryError},
		},
	)

	disagreements := e.FindDisagreements(table, raters, false)
	require.Len(t, disagreements, 1)
	assert.Equal(t, "s1", disagreements[0].Sample.ID)
}
