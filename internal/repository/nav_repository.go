package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/model"
)

// NavRepository provides data access methods for the nav_history table.
type NavRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewNavRepository creates a new NavRepository with the provided database connection.
func NewNavRepository(db *sql.DB) *NavRepository {
	return &NavRepository{db: db}
}

func (r *NavRepository) WithTx(tx *sql.Tx) *NavRepository {
	return &NavRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *NavRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// NavInsert is the write shape for one NAV row produced by the importer.
type NavInsert struct {
	Isin string
	Date time.Time
	Nav  float64
}

// GetNavHistory retrieves NAV records for a fund in ascending date order,
// optionally bounded by start and end dates (inclusive).
func (r *NavRepository) GetNavHistory(isin string, start, end *time.Time) ([]model.NavRecord, error) {
	query := `
		SELECT id, isin, date, nav, last_updated
		FROM nav_history
		WHERE isin = ?
	`
	args := []any{isin}

	if start != nil {
		query += ` AND date >= ?`
		args = append(args, *start)
	}
	if end != nil {
		query += ` AND date <= ?`
		args = append(args, *end)
	}

	query += ` ORDER BY date`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nav history: %w", err)
	}
	defer rows.Close()

	records := []model.NavRecord{}

	for rows.Next() {
		var n model.NavRecord
		if err := rows.Scan(&n.ID, &n.Isin, &n.Date, &n.Nav, &n.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan nav record: %w", err)
		}
		records = append(records, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nav history: %w", err)
	}

	return records, nil
}

// GetLatestNav retrieves the most recent NAV record for a fund.
// Returns nil if the fund has no NAV history.
func (r *NavRepository) GetLatestNav(isin string) (*model.NavRecord, error) {
	query := `
		SELECT id, isin, date, nav, last_updated
		FROM nav_history
		WHERE isin = ?
		ORDER BY date DESC
		LIMIT 1
	`

	var n model.NavRecord
	err := r.getQuerier().QueryRow(query, isin).Scan(&n.ID, &n.Isin, &n.Date, &n.Nav, &n.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest nav: %w", err)
	}

	return &n, nil
}

// InsertNavRecords inserts NAV rows via a prepared statement. NAV history
// carries a surrogate key, so every row is an insert; deduplication is the
// caller's job via a prior clear.
func (r *NavRepository) InsertNavRecords(records []NavInsert, now time.Time) error {
	stmt, err := r.getQuerier().Prepare(`
		INSERT INTO nav_history (isin, date, nav, last_updated)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare nav insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Isin, rec.Date, rec.Nav, now); err != nil {
			return fmt.Errorf("failed to insert nav for %s: %w", rec.Isin, err)
		}
	}

	return nil
}

// DeleteAll removes every NAV history row.
func (r *NavRepository) DeleteAll() error {
	if _, err := r.getQuerier().Exec(`DELETE FROM nav_history`); err != nil {
		return fmt.Errorf("failed to clear nav history: %w", err)
	}
	return nil
}
