// Package taxonomy defines the closed category universe for a study and the
// normalization of raw annotation labels into it. A Taxonomy value is
// immutable after construction and is threaded explicitly into every
// component that needs it, so analyses over different taxonomies can run side
// by side.
package taxonomy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
)

// Interpreter maps a kappa value to a qualitative bucket string. The
// agreement engine treats this as an injected policy and never hardcodes
// thresholds of its own.
type Interpreter func(kappa float64) string

// rawKind tags the shape of a raw annotation cell.
type rawKind int

const (
	rawMissing rawKind = iota
	rawCode
	rawName
)

// RawLabel is the tagged union a raw annotation cell is captured as at the
// ingestion boundary: absent, a numeric code, or a textual name. Raw values
// never travel past Normalize.
type RawLabel struct {
	name string
	code int
	kind rawKind
}

// MissingLabel returns the absent-cell label.
func MissingLabel() RawLabel { return RawLabel{kind: rawMissing} }

// CodeLabel returns a label carrying a numeric category code.
func CodeLabel(code int) RawLabel { return RawLabel{kind: rawCode, code: code} }

// NameLabel returns a label carrying free text. Blank or all-whitespace text
// is captured as missing; digit-only text is captured as a code, matching how
// spreadsheet exports blur the two.
func NameLabel(name string) RawLabel {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return MissingLabel()
	}
	if code, err := strconv.Atoi(trimmed); err == nil {
		return CodeLabel(code)
	}
	return RawLabel{kind: rawName, name: trimmed}
}

// Taxonomy is the closed category enumeration for one study, together with
// its integer-code mapping and kappa interpretation policy.
type Taxonomy struct {
	categories []model.Category
	index      map[model.Category]int
	codes      map[int]model.Category
	names      map[string]model.Category
	interpret  Interpreter
}

// Option configures a Taxonomy at construction time.
type Option func(*Taxonomy)

// WithInterpreter substitutes the kappa interpretation policy.
func WithInterpreter(fn Interpreter) Option {
	return func(t *Taxonomy) { t.interpret = fn }
}

// New builds a Taxonomy from a category list and a code mapping. Every code
// must map to a listed category, and category names must be unique after
// case folding.
func New(categories []model.Category, codes map[int]model.Category, opts ...Option) (Taxonomy, error) {
	if len(categories) < 2 {
		return Taxonomy{}, fmt.Errorf("%w: a taxonomy needs at least 2 categories, got %d", common.ErrInvalidConfig, len(categories))
	}

	t := Taxonomy{
		categories: make([]model.Category, len(categories)),
		index:      make(map[model.Category]int, len(categories)),
		codes:      make(map[int]model.Category, len(codes)),
		names:      make(map[string]model.Category, len(categories)+1),
		interpret:  InterpretLandisKoch,
	}
	copy(t.categories, categories)

	for i, c := range categories {
		key := foldName(string(c))
		if key == "" {
			return Taxonomy{}, fmt.Errorf("%w: blank category name at position %d", common.ErrInvalidConfig, i)
		}
		if _, dup := t.names[key]; dup {
			return Taxonomy{}, fmt.Errorf("%w: duplicate category %q", common.ErrInvalidConfig, c)
		}
		t.index[c] = i
		t.names[key] = c
	}

	// ERROR is always resolvable even though it is outside the universe:
	// the judge emits it when a stance cannot be determined.
	if _, taken := t.names[foldName(string(model.CategoryError))]; !taken {
		t.names[foldName(string(model.CategoryError))] = model.CategoryError
	}

	for code, c := range codes {
		if code <= 0 {
			return Taxonomy{}, fmt.Errorf("%w: category codes must be positive, got %d", common.ErrInvalidConfig, code)
		}
		if _, ok := t.index[c]; !ok && c != model.CategoryError {
			return Taxonomy{}, fmt.Errorf("%w: code %d maps to unknown category %q", common.ErrInvalidConfig, code, c)
		}
		t.codes[code] = c
	}

	for _, opt := range opts {
		opt(&t)
	}

	return t, nil
}

// Default returns the study taxonomy: REFUSAL, REINFORCING, CORRECTIVE and
// MIXED with codes 1-4, interpreted on the Landis-Koch scale.
func Default() Taxonomy {
	t, err := New(
		[]model.Category{
			model.CategoryRefusal,
			model.CategoryReinforcing,
			model.CategoryCorrective,
			model.CategoryMixed,
		},
		map[int]model.Category{
			1: model.CategoryRefusal,
			2: model.CategoryReinforcing,
			3: model.CategoryCorrective,
			4: model.CategoryMixed,
		},
	)
	if err != nil {
		panic(fmt.Sprintf("default taxonomy is invalid: %v", err))
	}
	return t
}

// Categories returns the category universe in its declared order.
func (t Taxonomy) Categories() []model.Category {
	out := make([]model.Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// Size returns the number of categories in the universe.
func (t Taxonomy) Size() int { return len(t.categories) }

// Index returns a category's position in the universe. ERROR and missing are
// not part of the universe and report ok=false.
func (t Taxonomy) Index(c model.Category) (int, bool) {
	i, ok := t.index[c]
	return i, ok
}

// Contains reports whether the category belongs to the closed universe.
func (t Taxonomy) Contains(c model.Category) bool {
	_, ok := t.index[c]
	return ok
}

// Normalize resolves a raw label to its canonical category. Missing input
// yields CategoryMissing; anything non-empty that resolves to neither a known
// code nor a known name fails with an error wrapping common.ErrInvalidLabel.
// It never guesses: an unknown value is rejected, not coerced.
func (t Taxonomy) Normalize(raw RawLabel) (model.Category, error) {
	switch raw.kind {
	case rawMissing:
		return model.CategoryMissing, nil
	case rawCode:
		c, ok := t.codes[raw.code]
		if !ok {
			return model.CategoryMissing, fmt.Errorf("%w: code %d is not in the configured mapping", common.ErrInvalidLabel, raw.code)
		}
		return c, nil
	case rawName:
		c, ok := t.names[foldName(raw.name)]
		if !ok {
			return model.CategoryMissing, fmt.Errorf("%w: %q is not a known category", common.ErrInvalidLabel, raw.name)
		}
		return c, nil
	default:
		return model.CategoryMissing, fmt.Errorf("%w: unrecognized raw label", common.ErrInvalidLabel)
	}
}

// NormalizeString is Normalize over a raw text cell.
func (t Taxonomy) NormalizeString(s string) (model.Category, error) {
	return t.Normalize(NameLabel(s))
}

// Interpret maps a kappa value through the configured policy.
func (t Taxonomy) Interpret(kappa float64) string {
	return t.interpret(kappa)
}

// Interpreter returns the configured interpretation policy.
func (t Taxonomy) Interpreter() Interpreter { return t.interpret }

func foldName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
