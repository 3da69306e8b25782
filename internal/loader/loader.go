// Package loader reads annotation CSV files — one reference file from the
// automated judge and any number of per-annotator files — and normalizes
// their labels at the boundary, so nothing downstream ever sees a raw cell.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/triadlab/concord/internal/merge"
	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/taxonomy"
)

// Column name candidates, checked case-insensitively in order. Annotation
// exports are inconsistent about these, so the loader meets them halfway.
var (
	idColumns        = []string{"annotation_id", "sample_id", "id"}
	referenceColumns = []string{"llm_judge_classification", "response_classification", "reference_classification"}
	annotatorColumns = []string{"human_classification", "classification"}
	promptColumns    = []string{"user_prompt", "user prompt", "prompt"}
	responseColumns  = []string{"llm_response", "llm response", "response"}
)

var annotatorNamePattern = regexp.MustCompile(`(?i)annotator(\d+)`)

// Loader reads annotation files against one taxonomy.
type Loader struct {
	tax taxonomy.Taxonomy
}

// New creates a loader for the given taxonomy.
func New(tax taxonomy.Taxonomy) *Loader {
	return &Loader{tax: tax}
}

// LoadReference reads the automated judge's file into a merge source under
// the distinguished reference identity.
func (l *Loader) LoadReference(path string) (merge.Source, error) {
	rows, err := l.loadFile(path, referenceColumns)
	if err != nil {
		return merge.Source{}, err
	}

	slog.Info("loaded reference file",
		"file", filepath.Base(path),
		"samples", len(rows))

	return merge.Source{Rater: model.RaterReference, Rows: rows}, nil
}

// LoadAnnotator reads one human annotator's file. The rater identity is
// derived from the filename.
func (l *Loader) LoadAnnotator(path string) (merge.Source, error) {
	rows, err := l.loadFile(path, annotatorColumns)
	if err != nil {
		return merge.Source{}, err
	}

	rater := AnnotatorName(path)
	completed := 0
	for _, row := range rows {
		if !row.Opinion.Category.IsMissing() {
			completed++
		}
	}

	slog.Info("loaded annotator file",
		"file", filepath.Base(path),
		"rater", rater,
		"samples", len(rows),
		"completed", completed)

	return merge.Source{Rater: rater, Rows: rows}, nil
}

// LoadAnnotators reads every annotator file matching the glob pattern, in
// sorted filename order.
func (l *Loader) LoadAnnotators(pattern string) ([]merge.Source, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no annotator files found matching pattern: %s", pattern)
	}
	sort.Strings(matches)

	sources := make([]merge.Source, 0, len(matches))
	for _, path := range matches {
		src, err := l.LoadAnnotator(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// AnnotatorName derives a rater identity from an annotator filename:
// anything containing "annotatorN" becomes AnnotatorN, otherwise the file
// stem is used as-is.
func AnnotatorName(path string) model.RaterID {
	base := filepath.Base(path)
	if m := annotatorNamePattern.FindStringSubmatch(base); m != nil {
		return model.RaterID("Annotator" + m[1])
	}
	return model.RaterID(strings.TrimSuffix(base, filepath.Ext(base)))
}

func (l *Loader) loadFile(path string, labelCandidates []string) ([]merge.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	cols, err := resolveColumns(header, labelCandidates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows []merge.Row
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++

		row, err := l.parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if row.Sample.ID == "" {
			// Trailing blank lines are common in hand-edited exports.
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// columns holds the resolved index of each field, -1 when absent.
type columns struct {
	id         int
	label      int
	confidence int
	notes      int
	prompt     int
	response   int
}

func resolveColumns(header []string, labelCandidates []string) (columns, error) {
	cols := columns{id: -1, label: -1, confidence: -1, notes: -1, prompt: -1, response: -1}

	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols.id = findColumn(folded, idColumns)
	if cols.id < 0 {
		// Spreadsheet exports often lose the name of the index column;
		// treat an unnamed first column as the ID.
		if len(folded) > 0 && (folded[0] == "" || strings.HasPrefix(folded[0], "unnamed")) {
			cols.id = 0
		} else {
			return cols, fmt.Errorf("no sample id column found (have: %s)", strings.Join(header, ", "))
		}
	}

	cols.label = findColumn(folded, labelCandidates)
	if cols.label < 0 {
		cols.label = findSuffixColumn(folded, "_classification")
	}
	if cols.label < 0 {
		return cols, fmt.Errorf("no classification column found, expected one of: %s", strings.Join(labelCandidates, ", "))
	}

	cols.confidence = findColumn(folded, []string{"confidence"})
	cols.notes = findColumn(folded, []string{"notes", "note"})
	cols.prompt = findColumn(folded, promptColumns)
	cols.response = findColumn(folded, responseColumns)

	return cols, nil
}

func findColumn(folded []string, candidates []string) int {
	for _, want := range candidates {
		for i, h := range folded {
			if h == want {
				return i
			}
		}
	}
	return -1
}

func findSuffixColumn(folded []string, suffix string) int {
	for i, h := range folded {
		if strings.HasSuffix(h, suffix) {
			return i
		}
	}
	return -1
}

func (l *Loader) parseRow(record []string, cols columns) (merge.Row, error) {
	field := func(idx int) string {
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	category, err := l.tax.NormalizeString(field(cols.label))
	if err != nil {
		return merge.Row{}, err
	}

	confidence, ok := model.ParseConfidence(field(cols.confidence))
	if !ok {
		slog.Warn("unrecognized confidence value, treating as unset",
			"sample_id", field(cols.id),
			"value", field(cols.confidence))
	}

	return merge.Row{
		Sample: model.Sample{
			ID:       field(cols.id),
			Prompt:   field(cols.prompt),
			Response: field(cols.response),
		},
		Opinion: model.Opinion{
			Category:   category,
			Confidence: confidence,
			Note:       field(cols.notes),
		},
	}, nil
}
