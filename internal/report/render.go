package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/triadlab/concord/internal/model"
)

const ruleWidth = 80

// FormatValue renders a statistic value with the given precision, or "n/a"
// when the statistic could not be computed. Undefined must never be rendered
// as 0.0: a reader cannot be allowed to mistake missing data for perfect
// disagreement.
func FormatValue(value float64, defined bool, precision int) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", precision, value)
}

// FormatPercent renders a fraction as a percentage, or "n/a" when undefined.
func FormatPercent(value float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", value*100)
}

// RenderText renders the full report as plain text, one numbered section per
// block.
func RenderText(r Report) string {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString("INTER-RATER AGREEMENT REPORT\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	for i, block := range r.Blocks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ToUpper(block.Title))
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
		renderBlockText(&b, block)
		b.WriteString("\n")
	}

	return b.String()
}

func renderBlockText(b *strings.Builder, block Block) {
	switch block.Kind {
	case KindStatistic:
		s := block.Statistic
		fmt.Fprintf(b, "%s: %s\n", statisticLabel(s.Statistic), FormatValue(s.Value, s.Defined, 3))
		if s.Interpretation != "" {
			fmt.Fprintf(b, "Interpretation: %s\n", s.Interpretation)
		}
		fmt.Fprintf(b, "Number of samples: %d\n", s.N)

	case KindPairwise:
		for _, p := range block.Pairwise {
			fmt.Fprintf(b, "%s vs %s: %s (n=%d)\n", p.A, p.B, FormatValue(p.Kappa, p.Defined, 3), p.N)
		}

	case KindConcurrence:
		s := block.Concurrence
		fmt.Fprintf(b, "All raters agree: %d/%d (%.1f%%)\n", s.AllAgree, s.N, s.AllAgreePct())
		fmt.Fprintf(b, "At least 2 raters agree: %d/%d (%.1f%%)\n", s.AnyTwoAgree, s.N, s.AnyTwoAgreePct())
		fmt.Fprintf(b, "Exactly 2 raters agree: %d/%d\n", s.ExactlyTwoAgree, s.N)
		fmt.Fprintf(b, "No agreement (all different): %d/%d\n", s.NoAgreement, s.N)

	case KindVsReference:
		for _, v := range block.VsReference {
			fmt.Fprintf(b, "%s vs %s:\n", v.Rater, v.Kappa.B)
			fmt.Fprintf(b, "  Accuracy: %s\n", FormatPercent(v.Accuracy.Value, v.Accuracy.Defined))
			fmt.Fprintf(b, "  Cohen's Kappa: %s\n", FormatValue(v.Kappa.Kappa, v.Kappa.Defined, 3))
			fmt.Fprintf(b, "  Number of samples: %d\n", v.Accuracy.N)
		}

	case KindPerCategory:
		for _, c := range block.PerCategory {
			fmt.Fprintf(b, "%s (%s vs %s): %s (n=%d)\n",
				c.Category, c.Rater, c.Reference, FormatPercent(c.Agreement, c.Defined), c.N)
		}

	case KindConfusion:
		renderConfusionText(b, *block.Confusion)

	case KindDisagreements:
		if len(block.Disagreements) == 0 {
			b.WriteString("No disagreements found.\n")
			return
		}
		for _, d := range block.Disagreements {
			fmt.Fprintf(b, "Sample %s:\n", d.Sample.ID)
			for _, rater := range sortedRaters(d.Opinions) {
				op := d.Opinions[rater]
				label := string(op.Category)
				if op.Category.IsMissing() {
					label = "(missing)"
				}
				fmt.Fprintf(b, "  %s: %s\n", rater, label)
			}
		}
	}
}

func renderConfusionText(b *strings.Builder, m model.ConfusionMatrix) {
	fmt.Fprintf(b, "Rows: %s truth, columns: %s assignment (n=%d)\n", m.Reference, m.Rater, m.N)

	width := 12
	for _, c := range m.Categories {
		if len(c) >= width {
			width = len(c) + 1
		}
	}

	fmt.Fprintf(b, "%*s", width, "")
	for _, c := range m.Categories {
		fmt.Fprintf(b, "%*s", width, c)
	}
	b.WriteString("\n")

	for i, c := range m.Categories {
		fmt.Fprintf(b, "%*s", width, c)
		for j := range m.Categories {
			fmt.Fprintf(b, "%*d", width, m.Counts[i][j])
		}
		b.WriteString("\n")
	}
}

func sortedRaters(opinions map[model.RaterID]model.Opinion) []model.RaterID {
	out := make([]model.RaterID, 0, len(opinions))
	for rater := range opinions {
		out = append(out, rater)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func statisticLabel(name string) string {
	switch name {
	case "fleiss_kappa":
		return "Fleiss' Kappa"
	case "cohen_kappa":
		return "Cohen's Kappa"
	case "accuracy":
		return "Accuracy"
	default:
		return name
	}
}

// RenderTerminal renders the report for an interactive terminal, with styled
// section headers. The body text is identical to RenderText.
func RenderTerminal(r Report) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Inter-Rater Agreement Report") + "\n\n")

	for i, block := range r.Blocks {
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%d. %s", i+1, block.Title)) + "\n")
		var body strings.Builder
		renderBlockText(&body, block)
		b.WriteString(body.String())
		b.WriteString("\n")
	}

	return b.String()
}
