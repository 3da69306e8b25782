package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triadlab/concord/internal/model"
)

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch1_judged.csv")
	require.NoError(t, os.WriteFile(path, []byte("annotation_id\n"), 0o644))

	got, err := resolveFile(filepath.Join(dir, "*_judged.csv"))
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = resolveFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = resolveFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestTaxonomyFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// No configuration: the built-in study taxonomy.
	tax, err := taxonomyFromConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, tax.Size())
	assert.True(t, tax.Contains(model.CategoryRefusal))

	// Custom categories and codes.
	viper.Set("analysis.categories", []string{"SAFE", "UNSAFE", "UNCLEAR"})
	viper.Set("analysis.code_to_label", map[string]string{"1": "SAFE", "2": "UNSAFE", "3": "UNCLEAR"})

	tax, err = taxonomyFromConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, tax.Size())

	got, err := tax.NormalizeString("2")
	require.NoError(t, err)
	assert.Equal(t, model.Category("UNSAFE"), got)

	// A bad code is a config error, not a crash.
	viper.Set("analysis.code_to_label", map[string]string{"one": "SAFE"})
	_, err = taxonomyFromConfig()
	assert.Error(t, err)
}

func TestThresholdsFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("analysis.kappa_thresholds.substantial", 0.9)
	interpret := thresholdsFromConfig()

	// 0.85 clears the default Substantial bound but not the custom one.
	assert.Equal(t, "Substantial agreement", interpret(0.85))
	assert.Equal(t, "Almost perfect agreement", interpret(0.95))
}
