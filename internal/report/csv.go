package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/triadlab/concord/internal/model"
)

// csvFloat renders a float at full precision for CSV output, or "n/a" when
// the value is undefined. Display rounding belongs to human-facing renderers
// only; CSV consumers get the exact computed value.
func csvFloat(value float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// WritePairwiseCSV writes every pairwise kappa as one CSV row.
func WritePairwiseCSV(w io.Writer, results []model.PairwiseResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rater_a", "rater_b", "cohen_kappa", "n_samples"}); err != nil {
		return fmt.Errorf("failed to write pairwise header: %w", err)
	}
	for _, r := range results {
		row := []string{string(r.A), string(r.B), csvFloat(r.Kappa, r.Defined), strconv.Itoa(r.N)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write pairwise row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteVsReferenceCSV writes each rater's accuracy and kappa against the
// reference as one CSV row.
func WriteVsReferenceCSV(w io.Writer, comparisons []VsReference) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rater", "accuracy", "cohen_kappa", "n_samples"}); err != nil {
		return fmt.Errorf("failed to write vs-reference header: %w", err)
	}
	for _, v := range comparisons {
		row := []string{
			string(v.Rater),
			csvFloat(v.Accuracy.Value, v.Accuracy.Defined),
			csvFloat(v.Kappa.Kappa, v.Kappa.Defined),
			strconv.Itoa(v.Accuracy.N),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write vs-reference row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePerCategoryCSV writes the per-category agreement table: one row per
// category, one column per rater. Cells for categories the reference never
// used read "n/a", never "0".
func WritePerCategoryCSV(w io.Writer, comparisons []VsReference) error {
	if len(comparisons) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)

	header := []string{"category"}
	for _, v := range comparisons {
		header = append(header, string(v.Rater))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write per-category header: %w", err)
	}

	for i, cat := range comparisons[0].PerCategory {
		row := []string{string(cat.Category)}
		for _, v := range comparisons {
			cell := ""
			if i < len(v.PerCategory) {
				cell = csvFloat(v.PerCategory[i].Agreement, v.PerCategory[i].Defined)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write per-category row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteConfusionCSV writes one confusion matrix: rows are reference truth,
// columns the rater's assignment.
func WriteConfusionCSV(w io.Writer, m model.ConfusionMatrix) error {
	cw := csv.NewWriter(w)

	header := []string{fmt.Sprintf("%s\\%s", m.Reference, m.Rater)}
	for _, c := range m.Categories {
		header = append(header, string(c))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write confusion header: %w", err)
	}

	for i, c := range m.Categories {
		row := []string{string(c)}
		for j := range m.Categories {
			row = append(row, strconv.Itoa(m.Counts[i][j]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write confusion row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDisagreementsCSV writes every disagreement with each listed rater's
// category, confidence and note, plus the sample's prompt and response text
// passed through untouched. Absent opinions leave their cells empty.
func WriteDisagreementsCSV(w io.Writer, raters []model.RaterID, disagreements []model.Disagreement) error {
	cw := csv.NewWriter(w)

	header := []string{"sample_id"}
	for _, rater := range raters {
		header = append(header,
			string(rater),
			string(rater)+"_confidence",
			string(rater)+"_note")
	}
	header = append(header, "prompt", "response")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write disagreements header: %w", err)
	}

	for _, d := range disagreements {
		row := []string{d.Sample.ID}
		for _, rater := range raters {
			op, ok := d.Opinions[rater]
			if !ok {
				row = append(row, "", "", "")
				continue
			}
			row = append(row, string(op.Category), string(op.Confidence), op.Note)
		}
		row = append(row, d.Sample.Prompt, d.Sample.Response)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write disagreements row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMergedCSV writes the full joined table, one row per sample in
// reference order, for arbitrary downstream re-querying.
func WriteMergedCSV(w io.Writer, table model.JoinedTable) error {
	cw := csv.NewWriter(w)

	header := []string{"sample_id", "prompt", "response"}
	for _, rater := range table.Raters {
		header = append(header,
			string(rater),
			string(rater)+"_confidence",
			string(rater)+"_note")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write merged header: %w", err)
	}

	for _, rec := range table.Records {
		row := []string{rec.Sample.ID, rec.Sample.Prompt, rec.Sample.Response}
		for _, rater := range table.Raters {
			op, ok := rec.Opinion(rater)
			if !ok {
				row = append(row, "", "", "")
				continue
			}
			row = append(row, string(op.Category), string(op.Confidence), op.Note)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write merged row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
