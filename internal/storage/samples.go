package storage

import (
	"context"
	"fmt"

	"github.com/triadlab/concord/internal/model"
)

// SaveSamples upserts a batch of samples. Prompt and response text are
// overwritten on conflict so re-imports refresh stale copies.
func (s *SQLiteStorage) SaveSamples(ctx context.Context, samples []model.Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("samples cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (id, prompt, response) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			prompt = excluded.prompt,
			response = excluded.response
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, sample := range samples {
		if sample.ID == "" {
			return fmt.Errorf("sample with empty id")
		}
		if _, err := stmt.ExecContext(ctx, sample.ID, sample.Prompt, sample.Response); err != nil {
			return fmt.Errorf("failed to save sample %s: %w", sample.ID, err)
		}
	}

	return tx.Commit()
}

// GetSamples returns every stored sample in insertion order.
func (s *SQLiteStorage) GetSamples(ctx context.Context) ([]model.Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, response FROM samples ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []model.Sample
	for rows.Next() {
		var sample model.Sample
		if err := rows.Scan(&sample.ID, &sample.Prompt, &sample.Response); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

// SaveAnnotations upserts one rater's annotations. At most one opinion per
// (sample, rater) pair exists; a re-import replaces the previous opinion.
func (s *SQLiteStorage) SaveAnnotations(ctx context.Context, rater model.RaterID, annotations []model.Annotation) error {
	if rater == "" {
		return fmt.Errorf("rater cannot be empty")
	}
	if len(annotations) == 0 {
		return fmt.Errorf("annotations cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotations (sample_id, rater, category, confidence, note)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sample_id, rater) DO UPDATE SET
			category = excluded.category,
			confidence = excluded.confidence,
			note = excluded.note
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare annotation insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range annotations {
		if a.SampleID == "" {
			return fmt.Errorf("annotation with empty sample id")
		}
		_, err := stmt.ExecContext(ctx,
			a.SampleID,
			string(rater),
			string(a.Opinion.Category),
			string(a.Opinion.Confidence),
			a.Opinion.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to save annotation for sample %s: %w", a.SampleID, err)
		}
	}

	return tx.Commit()
}

// GetAnnotations returns one rater's annotations in sample insertion order.
func (s *SQLiteStorage) GetAnnotations(ctx context.Context, rater model.RaterID) ([]model.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.sample_id, a.category, a.confidence, a.note
		FROM annotations a
		JOIN samples s ON s.id = a.sample_id
		WHERE a.rater = ?
		ORDER BY s.rowid
	`, string(rater))
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var annotations []model.Annotation
	for rows.Next() {
		var a model.Annotation
		var category, confidence string
		if err := rows.Scan(&a.SampleID, &category, &confidence, &a.Opinion.Note); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		a.Opinion.Rater = rater
		a.Opinion.Category = model.Category(category)
		a.Opinion.Confidence = model.Confidence(confidence)
		annotations = append(annotations, a)
	}

	return annotations, rows.Err()
}

// ListRaters returns every rater identity with at least one stored
// annotation, reference first, the rest sorted by name.
func (s *SQLiteStorage) ListRaters(ctx context.Context) ([]model.RaterID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT rater FROM annotations
		ORDER BY rater != ?, rater
	`, string(model.RaterReference))
	if err != nil {
		return nil, fmt.Errorf("failed to query raters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var raters []model.RaterID
	for rows.Next() {
		var rater string
		if err := rows.Scan(&rater); err != nil {
			return nil, fmt.Errorf("failed to scan rater: %w", err)
		}
		raters = append(raters, model.RaterID(rater))
	}

	return raters, rows.Err()
}
