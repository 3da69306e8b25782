package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/triadlab/concord/internal/agreement"
	"github.com/triadlab/concord/internal/report"
	"github.com/triadlab/concord/internal/storage"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved analysis runs",
		RunE:  runRuns,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one saved run with its statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	})

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	store, err := storage.NewSQLiteStorage(defaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No saved runs. Use 'concord analyze --save' to record one.")
		return nil
	}

	fmt.Println(report.FormatTitle("Saved Runs"))
	for _, run := range runs {
		raters := make([]string, len(run.Raters))
		for i, r := range run.Raters {
			raters[i] = string(r)
		}
		fmt.Printf("%s  %s  %d samples  [%s]\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.NSamples,
			strings.Join(raters, ", "))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := storage.NewSQLiteStorage(defaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	run, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.FormatTitle(fmt.Sprintf("Run %s", run.ID)))
	fmt.Printf("Created:  %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Samples:  %d\n\n", run.NSamples)

	for _, r := range run.Results {
		label := r.Statistic
		if label == agreement.StatFleissKappa {
			label = "Fleiss' kappa"
		}
		line := fmt.Sprintf("%-14s %s", label, report.FormatValue(r.Value, r.Defined, 4))
		if r.Interpretation != "" {
			line += fmt.Sprintf(" (%s)", r.Interpretation)
		}
		if len(r.Raters) > 0 {
			names := make([]string, len(r.Raters))
			for i, id := range r.Raters {
				names[i] = string(id)
			}
			line += "  " + strings.Join(names, ", ")
		}
		fmt.Println(line)
	}

	if len(run.Pairwise) > 0 {
		fmt.Println()
		fmt.Println("Pairwise Cohen's kappa:")
		for _, p := range run.Pairwise {
			fmt.Printf("  %s vs %s: %s (n=%d)\n",
				p.A, p.B, report.FormatValue(p.Kappa, p.Defined, 4), p.N)
		}
	}

	return nil
}
