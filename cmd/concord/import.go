package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/triadlab/concord/internal/loader"
	"github.com/triadlab/concord/internal/merge"
	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/report"
	"github.com/triadlab/concord/internal/storage"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import annotation files into the local database",
		Long: `Import loads the reference file and every annotator file, normalizes their
labels, and stores samples and annotations in the local SQLite database.
Re-importing a file replaces its previous annotations.`,
		Example: `  concord import --reference results/judged.csv --annotators 'annotations/annotator*.csv'`,
		RunE:    runImport,
	}

	cmd.Flags().StringP("reference", "r", "", "reference classification file (required)")
	cmd.Flags().StringP("annotators", "a", "", "glob pattern for annotator files")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	referencePattern, _ := cmd.Flags().GetString("reference")
	annotatorPattern, _ := cmd.Flags().GetString("annotators")

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

	sources := []merge.Source{reference}
	if annotatorPattern != "" {
		matches, err := filepath.Glob(annotatorPattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", annotatorPattern, err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			src, err := ld.LoadAnnotator(path)
			if err != nil {
				return err
			}
			sources = append(sources, src)
		}
	}

	store, err := storage.NewSQLiteStorage(defaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing annotation files..."),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	total := 0
	for _, src := range sources {
		samples := make([]model.Sample, 0, len(src.Rows))
		annotations := make([]model.Annotation, 0, len(src.Rows))
		for _, row := range src.Rows {
			samples = append(samples, row.Sample)
			annotations = append(annotations, model.Annotation{
				SampleID: row.Sample.ID,
				Opinion:  row.Opinion,
			})
		}

		// The reference file carries prompt and response text; annotator
		// files usually repeat it, and the upsert keeps the latest copy.
		if err := store.SaveSamples(ctx, samples); err != nil {
			return fmt.Errorf("failed to save samples from %s: %w", src.Rater, err)
		}
		if err := store.SaveAnnotations(ctx, src.Rater, annotations); err != nil {
			return fmt.Errorf("failed to save annotations from %s: %w", src.Rater, err)
		}
		total += len(annotations)
		_ = bar.Add(1)
	}

	fmt.Println(report.FormatSuccess(fmt.Sprintf(
		"Imported %d annotations from %d raters", total, len(sources))))
	return nil
}
