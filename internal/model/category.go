// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Category is one value from the closed classification taxonomy assigned to a
// response. Categories are nominal: no ordering is implied by their values.
type Category string

// The default study taxonomy, plus the two sentinel states.
const (
	CategoryRefusal     Category = "REFUSAL"
	CategoryReinforcing Category = "REINFORCING"
	CategoryCorrective  Category = "CORRECTIVE"
	CategoryMixed       Category = "MIXED"

	// CategoryError means the judge could not determine a stance for the
	// response. It is a real label, not an absent one.
	CategoryError Category = "ERROR"

	// CategoryMissing is the absent-opinion state. It never appears in an
	// input file as a label; it exists so merged tables can represent gaps
	// explicitly rather than by omission.
	CategoryMissing Category = ""
)

// IsMissing reports whether the category is the absent-opinion state.
func (c Category) IsMissing() bool { return c == CategoryMissing }

// Confidence is an annotator's self-reported certainty. It is informational
// only and never participates in agreement computation.
type Confidence string

const (
	ConfidenceNone   Confidence = ""
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// ParseConfidence maps a raw cell to a Confidence level, case-insensitively.
// Blank input is ConfidenceNone; unrecognized input returns ok=false.
func ParseConfidence(raw string) (Confidence, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ConfidenceNone, true
	case "low":
		return ConfidenceLow, true
	case "medium":
		return ConfidenceMedium, true
	case "high":
		return ConfidenceHigh, true
	default:
		return ConfidenceNone, false
	}
}
