package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triadlab/concord/internal/common"
	"github.com/triadlab/concord/internal/model"
)

// SaveRun persists an analysis run and its scalar results. A missing ID or
// timestamp is filled in here so callers can hand over freshly computed runs
// directly.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.AnalysisRun) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, raters, n_samples)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.CreatedAt, joinRaters(run.Raters), run.NSamples)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_results (run_id, statistic, rater_a, rater_b, value, defined, interpretation, n_samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range run.Results {
		raterA, raterB := resultPair(r.Raters)
		_, err := stmt.ExecContext(ctx,
			run.ID, r.Statistic, raterA, raterB,
			nullableValue(r.Value, r.Defined), r.Defined, r.Interpretation, r.N)
		if err != nil {
			return fmt.Errorf("failed to save %s result: %w", r.Statistic, err)
		}
	}

	for _, p := range run.Pairwise {
		_, err := stmt.ExecContext(ctx,
			run.ID, "cohen_kappa", string(p.A), string(p.B),
			nullableValue(p.Kappa, p.Defined), p.Defined, "", p.N)
		if err != nil {
			return fmt.Errorf("failed to save pairwise result: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun loads one analysis run with its results.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.AnalysisRun, error) {
	run := &model.AnalysisRun{ID: id}

	var raters string
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at, raters, n_samples FROM runs WHERE id = ?
	`, id).Scan(&run.CreatedAt, &raters, &run.NSamples)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	run.Raters = splitRaters(raters)

	rows, err := s.db.QueryContext(ctx, `
		SELECT statistic, rater_a, rater_b, value, defined, interpretation, n_samples
		FROM run_results WHERE run_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load run results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			statistic, interpretation string
			raterA                    string
			raterB                    sql.NullString
			value                     sql.NullFloat64
			defined                   bool
			n                         int
		)
		if err := rows.Scan(&statistic, &raterA, &raterB, &value, &defined, &interpretation, &n); err != nil {
			return nil, fmt.Errorf("failed to scan run result: %w", err)
		}

		if statistic == "cohen_kappa" && raterB.Valid {
			run.Pairwise = append(run.Pairwise, model.PairwiseResult{
				A:       model.RaterID(raterA),
				B:       model.RaterID(raterB.String),
				Kappa:   value.Float64,
				Defined: defined,
				N:       n,
			})
			continue
		}

		result := model.AgreementResult{
			Statistic:      statistic,
			Value:          value.Float64,
			Defined:        defined,
			Interpretation: interpretation,
			N:              n,
			Raters:         splitRaters(raterA),
		}
		if raterB.Valid && raterB.String != "" {
			result.Raters = append(result.Raters, model.RaterID(raterB.String))
		}
		run.Results = append(run.Results, result)
	}

	return run, rows.Err()
}

// ListRuns returns every stored run, newest first, without per-statistic
// results.
func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]model.AnalysisRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, raters, n_samples FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.AnalysisRun
	for rows.Next() {
		var run model.AnalysisRun
		var raters string
		if err := rows.Scan(&run.ID, &run.CreatedAt, &raters, &run.NSamples); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Raters = splitRaters(raters)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func joinRaters(raters []model.RaterID) string {
	parts := make([]string, len(raters))
	for i, r := range raters {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func splitRaters(s string) []model.RaterID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]model.RaterID, len(parts))
	for i, p := range parts {
		out[i] = model.RaterID(p)
	}
	return out
}

func resultPair(raters []model.RaterID) (string, any) {
	switch len(raters) {
	case 0:
		return "", nil
	case 1:
		return string(raters[0]), nil
	case 2:
		return string(raters[0]), string(raters[1])
	default:
		// Multi-rater statistics store the whole set in rater_a.
		return joinRaters(raters), nil
	}
}

func nullableValue(value float64, defined bool) any {
	if !defined {
		return nil
	}
	return value
}
