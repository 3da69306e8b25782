package model

import (
	"testing"
)

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		input  string
		want   Confidence
		wantOK bool
	}{
		{"High", ConfidenceHigh, true},
		{"HIGH", ConfidenceHigh, true},
		{" medium ", ConfidenceMedium, true},
		{"low", ConfidenceLow, true},
		{"", ConfidenceNone, true},
		{"   ", ConfidenceNone, true},
		{"very sure", ConfidenceNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseConfidence(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseConfidence(%q) = (%q, %v), want (%q, %v)",
				tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCategoryIsMissing(t *testing.T) {
	if CategoryRefusal.IsMissing() {
		t.Error("REFUSAL should not be missing")
	}
	if CategoryError.IsMissing() {
		t.Error("ERROR is a real label, not a missing one")
	}
	if !CategoryMissing.IsMissing() {
		t.Error("the empty category is the missing state")
	}
}

func TestJoinedRecordCategory(t *testing.T) {
	rec := JoinedRecord{
		Sample: Sample{ID: "s1"},
		Opinions: map[RaterID]Opinion{
			"Annotator1": {Rater: "Annotator1", Category: CategoryMixed},
		},
	}

	if got := rec.Category("Annotator1"); got != CategoryMixed {
		t.Errorf("Category(Annotator1) = %q, want MIXED", got)
	}
	if got := rec.Category("Annotator2"); got != CategoryMissing {
		t.Errorf("Category of absent rater = %q, want missing", got)
	}
}

func TestConfusionMatrixSums(t *testing.T) {
	m := ConfusionMatrix{
		Categories: []Category{CategoryRefusal, CategoryMixed},
		Counts:     [][]int{{2, 1}, {0, 3}},
		N:          6,
	}

	if got := m.At(CategoryRefusal, CategoryMixed); got != 1 {
		t.Errorf("At(REFUSAL, MIXED) = %d, want 1", got)
	}
	if got := m.RowSum(CategoryRefusal); got != 3 {
		t.Errorf("RowSum(REFUSAL) = %d, want 3", got)
	}
	if got := m.ColSum(CategoryMixed); got != 4 {
		t.Errorf("ColSum(MIXED) = %d, want 4", got)
	}
	if got := m.At("UNKNOWN", CategoryMixed); got != 0 {
		t.Errorf("At with unknown category = %d, want 0", got)
	}
}
