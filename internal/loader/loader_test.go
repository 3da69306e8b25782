package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/taxonomy"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return New(taxonomy.Default())
}

func TestLoadReference(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "judged.csv",
		"annotation_id,user_prompt,llm_response,llm_judge_classification\n"+
			"s1,Is the moon cheese?,No.,CORRECTIVE\n"+
			"s2,Tell me how,I can't help with that,REFUSAL\n"+
			"s3,What about this,Partly right,ERROR\n")

	src, err := newTestLoader(t).LoadReference(path)
	require.NoError(t, err)

	assert.Equal(t, model.RaterReference, src.Rater)
	require.Len(t, src.Rows, 3)
	assert.Equal(t, "s1", src.Rows[0].Sample.ID)
	assert.Equal(t, "Is the moon cheese?", src.Rows[0].Sample.Prompt)
	assert.Equal(t, "No.", src.Rows[0].Sample.Response)
	assert.Equal(t, model.CategoryCorrective, src.Rows[0].Opinion.Category)
	assert.Equal(t, model.CategoryError, src.Rows[2].Opinion.Category)
}

func TestLoadAnnotator(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annotator2_batch1.csv",
		"annotation_id,human_classification,confidence,notes\n"+
			"s1,corrective,High,\n"+
			"s2,3,low,double-checked\n"+
			"s3,,,\n")

	src, err := newTestLoader(t).LoadAnnotator(path)
	require.NoError(t, err)

	assert.Equal(t, model.RaterID("Annotator2"), src.Rater)
	require.Len(t, src.Rows, 3)

	// Names fold case; codes resolve through the taxonomy mapping.
	assert.Equal(t, model.CategoryCorrective, src.Rows[0].Opinion.Category)
	assert.Equal(t, model.ConfidenceHigh, src.Rows[0].Opinion.Confidence)
	assert.Equal(t, model.CategoryCorrective, src.Rows[1].Opinion.Category)
	assert.Equal(t, model.ConfidenceLow, src.Rows[1].Opinion.Confidence)
	assert.Equal(t, "double-checked", src.Rows[1].Opinion.Note)

	// A blank cell is an unfinished row, not an error.
	assert.Equal(t, model.CategoryMissing, src.Rows[2].Opinion.Category)
}

func TestLoadAnnotator_UnknownLabelFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annotator1.csv",
		"annotation_id,human_classification\n"+
			"s1,SARCASTIC\n")

	_, err := newTestLoader(t).LoadAnnotator(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidLabel)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadFile_ColumnResolution(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		row     string
		wantErr string
	}{
		{
			name:   "unnamed first column becomes the id",
			header: ",human_classification",
			row:    "s1,REFUSAL",
		},
		{
			name:   "pandas-style unnamed column",
			header: "Unnamed: 0,human_classification",
			row:    "s1,REFUSAL",
		},
		{
			name:   "classification suffix fallback",
			header: "annotation_id,reviewer_classification",
			row:    "s1,REFUSAL",
		},
		{
			name:    "no id column",
			header:  "foo,human_classification",
			row:     "s1,REFUSAL",
			wantErr: "no sample id column",
		},
		{
			name:    "no classification column",
			header:  "annotation_id,verdict",
			row:     "s1,REFUSAL",
			wantErr: "no classification column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "annotator1.csv", tt.header+"\n"+tt.row+"\n")

			src, err := newTestLoader(t).LoadAnnotator(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, src.Rows, 1)
			assert.Equal(t, "s1", src.Rows[0].Sample.ID)
			assert.Equal(t, model.CategoryRefusal, src.Rows[0].Opinion.Category)
		})
	}
}

func TestLoadFile_SkipsBlankTrailingRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "annotator1.csv",
		"annotation_id,human_classification\n"+
			"s1,REFUSAL\n"+
			",\n")

	src, err := newTestLoader(t).LoadAnnotator(path)
	require.NoError(t, err)
	assert.Len(t, src.Rows, 1)
}

func TestLoadAnnotators_SortedGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "annotator2.csv", "annotation_id,human_classification\ns1,MIXED\n")
	writeFile(t, dir, "annotator1.csv", "annotation_id,human_classification\ns1,REFUSAL\n")

	sources, err := newTestLoader(t).LoadAnnotators(filepath.Join(dir, "annotator*.csv"))
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, model.RaterID("Annotator1"), sources[0].Rater)
	assert.Equal(t, model.RaterID("Annotator2"), sources[1].Rater)

	_, err = newTestLoader(t).LoadAnnotators(filepath.Join(dir, "nothing*.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no annotator files found")
}

func TestAnnotatorName(t *testing.T) {
	tests := []struct {
		path string
		want model.RaterID
	}{
		{"annotations/annotator1.csv", "Annotator1"},
		{"annotations/Annotator2_final.csv", "Annotator2"},
		{"annotations/batch3_annotator12.csv", "Annotator12"},
		{"annotations/alice.csv", "alice"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AnnotatorName(tt.path), tt.path)
	}
}
