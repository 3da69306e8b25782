// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/triadlab/concord/internal/model"
)

// Storage defines the contract for the persistence layer: the annotated
// samples of a study and the analysis runs computed over them.
type Storage interface {
	// Sample operations
	SaveSamples(ctx context.Context, samples []model.Sample) error
	GetSamples(ctx context.Context) ([]model.Sample, error)

	// Annotation operations
	SaveAnnotations(ctx context.Context, rater model.RaterID, annotations []model.Annotation) error
	GetAnnotations(ctx context.Context, rater model.RaterID) ([]model.Annotation, error)
	ListRaters(ctx context.Context) ([]model.RaterID, error)

	// Analysis run operations
	SaveRun(ctx context.Context, run *model.AnalysisRun) error
	GetRun(ctx context.Context, id string) (*model.AnalysisRun, error)
	ListRuns(ctx context.Context) ([]model.AnalysisRun, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
