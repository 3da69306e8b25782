package model

// RaterID identifies a source of opinions: a human annotator or the
// automated judge.
type RaterID string

// RaterReference is the distinguished identity other raters are compared
// against. In LLM-as-judge validation this is the judge's column.
const RaterReference RaterID = "reference"

// Sample is one evaluated unit: a prompt, the system-under-test response, and
// a stable identifier unique within a dataset version. Samples are produced
// upstream and are read-only here.
type Sample struct {
	ID       string
	Prompt   string
	Response string
}

// Opinion is one rater's judgment of a sample's category.
type Opinion struct {
	Rater      RaterID
	Category   Category
	Confidence Confidence
	Note       string
}

// Annotation ties an opinion to its sample ID, the shape annotation rows
// arrive in from files and leave in toward storage.
type Annotation struct {
	SampleID string
	Opinion  Opinion
}
