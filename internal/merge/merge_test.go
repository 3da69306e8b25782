package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
)

func row(id string, category model.Category) Row {
	return Row{
		Sample:  model.Sample{ID: id},
		Opinion: model.Opinion{Category: category},
	}
}

func TestMerge(t *testing.T) {
	reference := Source{
		Rows: []Row{
			row("s1", model.CategoryCorrective),
			row("s2", model.CategoryRefusal),
			row("s3", model.CategoryMixed),
		},
	}
	annotator := Source{
		Rater: "Annotator1",
		Rows: []Row{
			row("s3", model.CategoryMixed),
			row("s1", model.CategoryCorrective),
		},
	}

	table, warnings, err := Merge(reference, []Source{annotator})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Reference first, then raters in merge order.
	assert.Equal(t, []model.RaterID{model.RaterReference, "Annotator1"}, table.Raters)

	// Records keep the reference's order, not the annotator's.
	require.Equal(t, 3, table.Len())
	assert.Equal(t, "s1", table.Records[0].Sample.ID)
	assert.Equal(t, "s2", table.Records[1].Sample.ID)
	assert.Equal(t, "s3", table.Records[2].Sample.ID)

	// A sample the annotator skipped folds to missing for them.
	assert.Equal(t, model.CategoryRefusal, table.Records[1].Category(model.RaterReference))
	assert.Equal(t, model.CategoryMissing, table.Records[1].Category("Annotator1"))

	// Opinions carry their owner's identity regardless of what the row said.
	op, ok := table.Records[0].Opinion("Annotator1")
	require.True(t, ok)
	assert.Equal(t, model.RaterID("Annotator1"), op.Rater)
}

func TestMerge_DropsUnknownSamples(t *testing.T) {
	reference := Source{
		Rows: []Row{row("s1", model.CategoryRefusal)},
	}
	annotator := Source{
		Rater: "Annotator1",
		Rows: []Row{
			row("s1", model.CategoryRefusal),
			row("stale-42", model.CategoryMixed),
		},
	}

	table, warnings, err := Merge(reference, []Source{annotator})
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, model.RaterID("Annotator1"), warnings[0].Rater)
	assert.Equal(t, "stale-42", warnings[0].SampleID)
	assert.Contains(t, warnings[0].String(), "stale-42")

	// The merge itself succeeds and never grows past the reference.
	assert.Equal(t, 1, table.Len())
}

func TestMerge_DuplicateSampleIsFatal(t *testing.T) {
	tests := []struct {
		name      string
		reference Source
		raters    []Source
	}{
		{
			name: "duplicate in reference",
			reference: Source{
				Rows: []Row{
					row("s1", model.CategoryRefusal),
					row("s1", model.CategoryMixed),
				},
			},
		},
		{
			name: "duplicate in annotator",
			reference: Source{
				Rows: []Row{row("s1", model.CategoryRefusal)},
			},
			raters: []Source{{
				Rater: "Annotator1",
				Rows: []Row{
					row("s1", model.CategoryRefusal),
					row("s1", model.CategoryRefusal),
				},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Merge(tt.reference, tt.raters)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrDuplicateSample)
		})
	}
}

func TestMerge_EmptySampleIDIsFatal(t *testing.T) {
	reference := Source{
		Rows: []Row{row("", model.CategoryRefusal)},
	}

	_, _, err := Merge(reference, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sample id")
}

func TestMerge_Idempotent(t *testing.T) {
	reference := Source{
		Rows: []Row{
			row("s1", model.CategoryCorrective),
			row("s2", model.CategoryRefusal),
		},
	}
	annotators := []Source{
		{Rater: "Annotator1", Rows: []Row{row("s1", model.CategoryCorrective)}},
		{Rater: "Annotator2", Rows: []Row{row("s2", model.CategoryMixed)}},
	}

	first, _, err := Merge(reference, annotators)
	require.NoError(t, err)
	second, _, err := Merge(reference, annotators)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("merge is not deterministic (-first +second):\n%s", diff)
	}
}
