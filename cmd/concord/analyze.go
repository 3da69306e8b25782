package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/triadlab/concord/internal/agreement"
	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/loader"
	"github.com/triadlab/concord/internal/merge"
	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/report"
	"github.com/triadlab/concord/internal/storage"
	"github.com/triadlab/concord/internal/taxonomy"
	"github.com/triadlab/concord/internal/viz"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute agreement statistics from annotation files",
		Long: `Analyze merges the reference (LLM judge) file with every annotator file,
computes Fleiss' kappa, pairwise Cohen's kappa, accuracy and per-category
agreement against the reference, and writes text, CSV, and optional HTML
reports.`,
		Example: `  concord analyze --reference results/judged.csv --annotators 'annotations/annotator*.csv'
  concord analyze --reference judged.csv --annotators 'annotator*.csv' --charts --save`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("reference", "r", "", "reference classification file (required)")
	cmd.Flags().StringP("annotators", "a", "", "glob pattern for annotator files (required)")
	cmd.Flags().StringP("output", "o", "analysis_output", "directory for report files")
	cmd.Flags().Bool("charts", false, "also write an HTML chart dashboard")
	cmd.Flags().Bool("save", false, "persist the run to the local database")
	cmd.Flags().Bool("strict", false, "only count disagreements among samples every rater labeled")
	cmd.Flags().Bool("include-reference", false, "include the reference as a rater in Fleiss' kappa")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("annotators")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	referencePattern, _ := cmd.Flags().GetString("reference")
	annotatorPattern, _ := cmd.Flags().GetString("annotators")
	outputDir, _ := cmd.Flags().GetString("output")
	charts, _ := cmd.Flags().GetBool("charts")
	save, _ := cmd.Flags().GetBool("save")
	strict, _ := cmd.Flags().GetBool("strict")
	includeReference, _ := cmd.Flags().GetBool("include-reference")

	tax, err := taxonomyFromConfig()
	if err != nil {
		return fmt.Errorf("failed to build taxonomy: %w", err)
	}
	ld := loader.New(tax)

	referencePath, err := resolveFile(referencePattern)
	if err != nil {
		return err
	}
	reference, err := ld.LoadReference(referencePath)
	if err != nil {
		return err
	}

	annotatorFiles, err := filepath.Glob(annotatorPattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %s: %w", annotatorPattern, err)
	}
	if len(annotatorFiles) == 0 {
		return fmt.Errorf("no annotator files found matching pattern: %s", annotatorPattern)
	}
	sort.Strings(annotatorFiles)

	bar := progressbar.NewOptions(len(annotatorFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Loading annotator files..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	annotators := make([]merge.Source, 0, len(annotatorFiles))
	for _, path := range annotatorFiles {
		src, err := ld.LoadAnnotator(path)
		if err != nil {
			return err
		}
		annotators = append(annotators, src)
		_ = bar.Add(1)
	}

	table, warnings, err := merge.Merge(reference, annotators)
	if err != nil {
		return fmt.Errorf("failed to merge annotation files: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, report.FormatWarning(w.String()))
	}

	annotatorIDs := make([]model.RaterID, len(annotators))
	for i, src := range annotators {
		annotatorIDs[i] = src.Rater
	}

	run, rep, comparisons := computeRun(tax, table, annotatorIDs, includeReference, strict)

	fmt.Println(report.RenderTerminal(rep))

	if err := writeReports(outputDir, rep, table, comparisons); err != nil {
		return err
	}
	fmt.Println(report.FormatSuccess(fmt.Sprintf("Reports written to %s", outputDir)))

	if charts {
		chartPath := filepath.Join(outputDir, "charts.html")
		if err := viz.WriteDashboard(chartPath, run.Pairwise, comparisons); err != nil {
			return err
		}
		fmt.Println(report.FormatSuccess(fmt.Sprintf("Charts written to %s", chartPath)))
	}

	if save {
		store, err := storage.NewSQLiteStorage(defaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()

		ctx := cmd.Context()
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		if err := store.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Println(report.FormatSuccess(fmt.Sprintf("Run %s saved", run.ID)))
	}

	return nil
}

// computeRun runs every statistic over the merged table and assembles both
// the persistable run record and the renderable report.
func computeRun(tax taxonomy.Taxonomy, table model.JoinedTable, annotators []model.RaterID, includeReference, strict bool) (*model.AnalysisRun, report.Report, []report.VsReference) {
	engine := agreement.NewEngine(tax)

	fleissRaters := annotators
	if includeReference {
		fleissRaters = append([]model.RaterID{model.RaterReference}, annotators...)
	}

	fleiss, err := engine.FleissKappa(table, fleissRaters)
	if err != nil {
		// A single annotator or no complete cases is a data condition, not a
		// crash; report the statistic as undefined.
		if errors.Is(err, common.ErrInsufficientData) {
			slog.Warn("Fleiss' kappa unavailable", "reason", err)
		} else {
			slog.Error("fleiss kappa failed", "error", err)
		}
		fleiss = model.AgreementResult{
			Statistic: agreement.StatFleissKappa,
			Raters:    fleissRaters,
		}
	}

	var pairwise []model.PairwiseResult
	if len(annotators) >= 2 {
		pairwise, err = engine.PairwiseKappa(table, annotators)
		if err != nil {
			slog.Warn("pairwise kappa unavailable", "reason", err)
		}
	}

	comparisons := make([]report.VsReference, 0, len(annotators))
	for _, rater := range annotators {
		comparisons = append(comparisons, report.VsReference{
			Rater:       rater,
			Accuracy:    engine.Accuracy(table, rater, model.RaterReference),
			Kappa:       engine.CohenKappa(table, rater, model.RaterReference),
			Confusion:   engine.ConfusionMatrix(table, rater, model.RaterReference),
			PerCategory: engine.PerCategoryAgreement(table, rater, model.RaterReference),
		})
	}

	allRaters := append([]model.RaterID{model.RaterReference}, annotators...)
	disagreements := engine.FindDisagreements(table, allRaters, strict)

	agg := report.NewAggregator().
		AddStatistic("Inter-Annotator Agreement", fleiss)
	if len(pairwise) > 0 {
		agg.AddPairwise("Pairwise Agreement", pairwise)
	}
	if len(annotators) >= 2 {
		concurrence, err := engine.Concurrence(table, annotators)
		if err == nil {
			agg.AddConcurrence("Annotator Concurrence", concurrence)
		}
	}
	agg.AddVsReference("Agreement with LLM Judge", comparisons).
		AddDisagreements("Disagreements", disagreements)

	rep := agg.Build()

	run := &model.AnalysisRun{
		CreatedAt: time.Now().UTC(),
		Raters:    allRaters,
		NSamples:  table.Len(),
		Results:   []model.AgreementResult{fleiss},
		Pairwise:  pairwise,
	}
	for _, v := range comparisons {
		run.Results = append(run.Results, v.Accuracy)
		run.Pairwise = append(run.Pairwise, v.Kappa)
	}

	return run, rep, comparisons
}

// writeReports writes the text report and every CSV into dir, creating it
// if needed.
func writeReports(dir string, rep report.Report, table model.JoinedTable, comparisons []report.VsReference) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte(report.RenderText(rep)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	writers := map[string]func(io.Writer) error{
		"merged.csv": func(w io.Writer) error {
			return report.WriteMergedCSV(w, table)
		},
		"vs_reference.csv": func(w io.Writer) error {
			return report.WriteVsReferenceCSV(w, comparisons)
		},
		"per_category.csv": func(w io.Writer) error {
			return report.WritePerCategoryCSV(w, comparisons)
		},
	}
	for _, block := range rep.Blocks {
		switch block.Kind {
		case report.KindPairwise:
			pairwise := block.Pairwise
			writers["pairwise.csv"] = func(w io.Writer) error {
				return report.WritePairwiseCSV(w, pairwise)
			}
		case report.KindDisagreements:
			disagreements := block.Disagreements
			writers["disagreements.csv"] = func(w io.Writer) error {
				return report.WriteDisagreementsCSV(w, table.Raters, disagreements)
			}
		}
	}
	for _, v := range comparisons {
		confusion := v.Confusion
		writers[fmt.Sprintf("confusion_%s.csv", v.Rater)] = func(w io.Writer) error {
			return report.WriteConfusionCSV(w, confusion)
		}
	}

	for name, write := range writers {
		if err := writeCSVFile(filepath.Join(dir, name), write); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
