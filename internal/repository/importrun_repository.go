package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/model"
)

// ImportRunRepository provides data access methods for the import_run table.
type ImportRunRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewImportRunRepository creates a new ImportRunRepository with the provided database connection.
func NewImportRunRepository(db *sql.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

func (r *ImportRunRepository) WithTx(tx *sql.Tx) *ImportRunRepository {
	return &ImportRunRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ImportRunRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Create records the start of an import run.
func (r *ImportRunRepository) Create(run *model.ImportRun) error {
	query := `
		INSERT INTO import_run (id, kind, filename, status, message, stats, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().Exec(query,
		run.ID, run.Kind, run.Filename, run.Status, run.Message, run.Stats, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}

	return nil
}

// UpdateStats replaces the stats snapshot of a running import.
// Called as batches commit so status queries see progress.
func (r *ImportRunRepository) UpdateStats(id, stats string) error {
	_, err := r.getQuerier().Exec(`UPDATE import_run SET stats = ? WHERE id = ?`, stats, id)
	if err != nil {
		return fmt.Errorf("failed to update import run stats: %w", err)
	}
	return nil
}

// Finish marks an import run completed or failed with its final statistics.
func (r *ImportRunRepository) Finish(id, status string, message *string, stats string, finishedAt time.Time) error {
	query := `
		UPDATE import_run
		SET status = ?, message = ?, stats = ?, finished_at = ?
		WHERE id = ?
	`

	_, err := r.getQuerier().Exec(query, status, message, stats, finishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finish import run: %w", err)
	}

	return nil
}

// GetRun retrieves a single import run by ID.
// Returns apperrors.ErrImportRunNotFound if no run exists.
func (r *ImportRunRepository) GetRun(id string) (*model.ImportRun, error) {
	query := `
		SELECT id, kind, filename, status, message, stats, started_at, finished_at
		FROM import_run
		WHERE id = ?
	`

	var run model.ImportRun
	err := r.getQuerier().QueryRow(query, id).Scan(
		&run.ID,
		&run.Kind,
		&run.Filename,
		&run.Status,
		&run.Message,
		&run.Stats,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrImportRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import run: %w", err)
	}

	return &run, nil
}

// GetRuns retrieves recent import runs, newest first.
func (r *ImportRunRepository) GetRuns(limit int) ([]model.ImportRun, error) {
	query := `
		SELECT id, kind, filename, status, message, stats, started_at, finished_at
		FROM import_run
		ORDER BY started_at DESC
	`
	var args []any

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import runs: %w", err)
	}
	defer rows.Close()

	runs := []model.ImportRun{}

	for rows.Next() {
		var run model.ImportRun
		err := rows.Scan(
			&run.ID,
			&run.Kind,
			&run.Filename,
			&run.Status,
			&run.Message,
			&run.Stats,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import run: %w", err)
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import runs: %w", err)
	}

	return runs, nil
}
