package model

// JoinedRecord is one sample with every rater's opinion merged in. Absent
// raters simply have no entry in Opinions; callers should go through
// Category, which folds absence into CategoryMissing.
type JoinedRecord struct {
	Sample   Sample
	Opinions map[RaterID]Opinion
}

// Category returns the rater's assigned category for this record, or
// CategoryMissing if the rater never gave an opinion.
func (r JoinedRecord) Category(rater RaterID) Category {
	op, ok := r.Opinions[rater]
	if !ok {
		return CategoryMissing
	}
	return op.Category
}

// Opinion returns the rater's opinion and whether one exists.
func (r JoinedRecord) Opinion(rater RaterID) (Opinion, bool) {
	op, ok := r.Opinions[rater]
	return op, ok
}

// JoinedTable is the merged view of all opinions, one record per sample, in
// the reference table's original order. It is treated as read-only by every
// consumer: statistics are computed over it, never into it.
type JoinedTable struct {
	// Raters lists every column in the table, reference first, then the
	// rater sources in the order they were merged.
	Raters  []RaterID
	Records []JoinedRecord
}

// Len returns the number of merged records.
func (t JoinedTable) Len() int { return len(t.Records) }
