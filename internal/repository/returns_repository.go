package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/model"
)

// ReturnsRepository provides data access methods for the fund_returns table.
type ReturnsRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewReturnsRepository creates a new ReturnsRepository with the provided database connection.
func NewReturnsRepository(db *sql.DB) *ReturnsRepository {
	return &ReturnsRepository{db: db}
}

func (r *ReturnsRepository) WithTx(tx *sql.Tx) *ReturnsRepository {
	return &ReturnsRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *ReturnsRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ReturnsUpsert is the write shape for one returns row produced by the importer.
// Nil fields are absent in the source and must not overwrite stored values.
type ReturnsUpsert struct {
	Isin      string
	Return1M  *float64
	Return3M  *float64
	Return6M  *float64
	ReturnYTD *float64
	Return1Y  *float64
	Return3Y  *float64
	Return5Y  *float64
}

// GetReturns retrieves the returns record for a fund.
// Returns apperrors.ErrReturnsNotFound if none exists.
func (r *ReturnsRepository) GetReturns(isin string) (*model.FundReturns, error) {
	query := `
		SELECT isin, return_1m, return_3m, return_6m, return_ytd, return_1y, return_3y, return_5y, last_updated
		FROM fund_returns
		WHERE isin = ?
	`

	var fr model.FundReturns
	err := r.getQuerier().QueryRow(query, isin).Scan(
		&fr.Isin,
		&fr.Return1M,
		&fr.Return3M,
		&fr.Return6M,
		&fr.ReturnYTD,
		&fr.Return1Y,
		&fr.Return3Y,
		&fr.Return5Y,
		&fr.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrReturnsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query returns: %w", err)
	}

	return &fr, nil
}

// UpsertReturns inserts or updates returns rows via a prepared statement.
// On conflict, absent (nil) fields preserve the stored values.
func (r *ReturnsRepository) UpsertReturns(records []ReturnsUpsert, now time.Time) error {
	stmt, err := r.getQuerier().Prepare(`
		INSERT INTO fund_returns (isin, return_1m, return_3m, return_6m, return_ytd, return_1y, return_3y, return_5y, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isin) DO UPDATE SET
			return_1m = COALESCE(excluded.return_1m, fund_returns.return_1m),
			return_3m = COALESCE(excluded.return_3m, fund_returns.return_3m),
			return_6m = COALESCE(excluded.return_6m, fund_returns.return_6m),
			return_ytd = COALESCE(excluded.return_ytd, fund_returns.return_ytd),
			return_1y = COALESCE(excluded.return_1y, fund_returns.return_1y),
			return_3y = COALESCE(excluded.return_3y, fund_returns.return_3y),
			return_5y = COALESCE(excluded.return_5y, fund_returns.return_5y),
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare returns upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.Isin,
			rec.Return1M,
			rec.Return3M,
			rec.Return6M,
			rec.ReturnYTD,
			rec.Return1Y,
			rec.Return3Y,
			rec.Return5Y,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert returns %s: %w", rec.Isin, err)
		}
	}

	return nil
}

// ExistingIsins returns which of the given ISINs already have a returns row.
func (r *ReturnsRepository) ExistingIsins(isins []string) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	if len(isins) == 0 {
		return existing, nil
	}

	marks, args := placeholders(isins)
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `SELECT isin FROM fund_returns WHERE isin IN (` + marks + `)`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing returns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isin string
		if err := rows.Scan(&isin); err != nil {
			return nil, fmt.Errorf("failed to scan existing returns isin: %w", err)
		}
		existing[isin] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing returns: %w", err)
	}

	return existing, nil
}

// DeleteByIsins removes returns rows for the given ISINs.
func (r *ReturnsRepository) DeleteByIsins(isins []string) error {
	if len(isins) == 0 {
		return nil
	}

	marks, args := placeholders(isins)
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `DELETE FROM fund_returns WHERE isin IN (` + marks + `)`

	if _, err := r.getQuerier().Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete returns: %w", err)
	}

	return nil
}
