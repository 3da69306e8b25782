package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/taxonomy"
)

// taxonomyFromConfig builds the study taxonomy from viper's analysis.* keys,
// falling back to the built-in default taxonomy when nothing is configured.
func taxonomyFromConfig() (taxonomy.Taxonomy, error) {
	var opts []taxonomy.Option
	if viper.IsSet("analysis.kappa_thresholds") {
		opts = append(opts, taxonomy.WithInterpreter(thresholdsFromConfig()))
	}

	names := viper.GetStringSlice("analysis.categories")
	if len(names) == 0 {
		if len(opts) == 0 {
			return taxonomy.Default(), nil
		}
		def := taxonomy.Default()
		codes := map[int]model.Category{
			1: model.CategoryRefusal,
			2: model.CategoryReinforcing,
			3: model.CategoryCorrective,
			4: model.CategoryMixed,
		}
		return taxonomy.New(def.Categories(), codes, opts...)
	}

	categories := make([]model.Category, len(names))
	for i, n := range names {
		categories[i] = model.Category(n)
	}

	codes := make(map[int]model.Category)
	for codeStr, label := range viper.GetStringMapString("analysis.code_to_label") {
		code, err := strconv.Atoi(codeStr)
		if err != nil {
			return taxonomy.Taxonomy{}, fmt.Errorf("invalid category code %q: %w", codeStr, err)
		}
		codes[code] = model.Category(label)
	}

	return taxonomy.New(categories, codes, opts...)
}

func thresholdsFromConfig() taxonomy.Interpreter {
	th := taxonomy.LandisKochThresholds
	if v := viper.GetFloat64("analysis.kappa_thresholds.poor"); viper.IsSet("analysis.kappa_thresholds.poor") {
		th.Poor = v
	}
	if v := viper.GetFloat64("analysis.kappa_thresholds.slight"); viper.IsSet("analysis.kappa_thresholds.slight") {
		th.Slight = v
	}
	if v := viper.GetFloat64("analysis.kappa_thresholds.fair"); viper.IsSet("analysis.kappa_thresholds.fair") {
		th.Fair = v
	}
	if v := viper.GetFloat64("analysis.kappa_thresholds.moderate"); viper.IsSet("analysis.kappa_thresholds.moderate") {
		th.Moderate = v
	}
	if v := viper.GetFloat64("analysis.kappa_thresholds.substantial"); viper.IsSet("analysis.kappa_thresholds.substantial") {
		th.Substantial = v
	}
	return taxonomy.InterpreterFromThresholds(th)
}

// resolveFile expands a glob pattern and returns the first match, so flags
// like --reference 'results/*_judged.csv' survive dataset renames.
func resolveFile(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	if len(matches) > 0 {
		return matches[0], nil
	}
	if _, err := os.Stat(pattern); err == nil {
		return pattern, nil
	}
	return "", fmt.Errorf("no file found matching: %s", pattern)
}

// defaultDBPath returns the configured database path, or the standard
// location under the user's data directory.
func defaultDBPath() string {
	if path := viper.GetString("database.path"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "concord.db"
	}
	return filepath.Join(home, ".local", "share", "concord", "concord.db")
}
