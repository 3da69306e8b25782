package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
)

func TestNormalizeString(t *testing.T) {
	tax := Default()

	tests := []struct {
		name    string
		input   string
		want    model.Category
		wantErr bool
	}{
		{
			name:  "canonical name",
			input: "CORRECTIVE",
			want:  model.CategoryCorrective,
		},
		{
			name:  "lowercase name",
			input: "refusal",
			want:  model.CategoryRefusal,
		},
		{
			name:  "mixed case with whitespace",
			input: "  Mixed  ",
			want:  model.CategoryMixed,
		},
		{
			name:  "numeric code",
			input: "2",
			want:  model.CategoryReinforcing,
		},
		{
			name:  "numeric code with whitespace",
			input: " 4 ",
			want:  model.CategoryMixed,
		},
		{
			name:  "error sentinel",
			input: "ERROR",
			want:  model.CategoryError,
		},
		{
			name:  "error sentinel lowercase",
			input: "error",
			want:  model.CategoryError,
		},
		{
			name:  "empty cell is missing",
			input: "",
			want:  model.CategoryMissing,
		},
		{
			name:  "whitespace only is missing",
			input: "   ",
			want:  model.CategoryMissing,
		},
		{
			name:    "unknown name",
			input:   "SARCASTIC",
			wantErr: true,
		},
		{
			name:    "unknown code",
			input:   "7",
			wantErr: true,
		},
		{
			name:    "zero code",
			input:   "0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tax.NormalizeString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrInvalidLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRawLabels(t *testing.T) {
	tax := Default()

	got, err := tax.Normalize(MissingLabel())
	require.NoError(t, err)
	assert.Equal(t, model.CategoryMissing, got)

	got, err = tax.Normalize(CodeLabel(3))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCorrective, got)

	_, err = tax.Normalize(CodeLabel(99))
	assert.ErrorIs(t, err, common.ErrInvalidLabel)

	// NameLabel folds digit text into codes; the two entry points agree.
	got, err = tax.Normalize(NameLabel("1"))
	require.NoError(t, err)
	assert.Equal(t, model.CategoryRefusal, got)
}

func TestNormalize_CodeAndNameAgree(t *testing.T) {
	tax := Default()

	codes := map[string]string{
		"1": "refusal",
		"2": "Reinforcing",
		"3": " CORRECTIVE ",
		"4": "mixed",
	}
	for code, name := range codes {
		byCode, err := tax.NormalizeString(code)
		require.NoError(t, err)
		byName, err := tax.NormalizeString(name)
		require.NoError(t, err)
		assert.Equal(t, byCode, byName, "code %s and name %q must resolve identically", code, name)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name       string
		categories []model.Category
		codes      map[int]model.Category
	}{
		{
			name:       "too few categories",
			categories: []model.Category{model.CategoryRefusal},
		},
		{
			name:       "duplicate category after folding",
			categories: []model.Category{"REFUSAL", "refusal"},
		},
		{
			name:       "blank category",
			categories: []model.Category{"REFUSAL", "  "},
		},
		{
			name:       "non-positive code",
			categories: []model.Category{"A", "B"},
			codes:      map[int]model.Category{0: "A"},
		},
		{
			name:       "code maps outside universe",
			categories: []model.Category{"A", "B"},
			codes:      map[int]model.Category{1: "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.categories, tt.codes)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestUniverseMembership(t *testing.T) {
	tax := Default()

	assert.True(t, tax.Contains(model.CategoryRefusal))
	assert.False(t, tax.Contains(model.CategoryError))
	assert.False(t, tax.Contains(model.CategoryMissing))

	_, ok := tax.Index(model.CategoryError)
	assert.False(t, ok, "ERROR normalizes but is not a universe member")

	i, ok := tax.Index(model.CategoryCorrective)
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, 4, tax.Size())
}

func TestInterpretLandisKoch(t *testing.T) {
	tests := []struct {
		want  string
		kappa float64
	}{
		{"Poor (worse than random)", -0.5},
		{"Slight agreement", 0.0},
		{"Slight agreement", 0.15},
		{"Fair agreement", 0.20},
		{"Moderate agreement", 0.40},
		{"Substantial agreement", 0.65},
		{"Almost perfect agreement", 0.80},
		{"Almost perfect agreement", 1.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpretLandisKoch(tt.kappa), "kappa=%v", tt.kappa)
	}
}

func TestWithInterpreter(t *testing.T) {
	custom := func(_ float64) string { return "custom" }

	tax, err := New(
		[]model.Category{"A", "B"},
		nil,
		WithInterpreter(custom),
	)
	require.NoError(t, err)
	assert.Equal(t, "custom", tax.Interpret(0.9))
}
