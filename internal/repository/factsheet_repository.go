package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/model"
)

// FactSheetRepository provides data access methods for the fund_factsheet table.
type FactSheetRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFactSheetRepository creates a new FactSheetRepository with the provided database connection.
func NewFactSheetRepository(db *sql.DB) *FactSheetRepository {
	return &FactSheetRepository{db: db}
}

func (r *FactSheetRepository) WithTx(tx *sql.Tx) *FactSheetRepository {
	return &FactSheetRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *FactSheetRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// FactSheetUpsert is the write shape for one factsheet row produced by the importer.
// Nil fields are absent in the source and must not overwrite stored values.
type FactSheetUpsert struct {
	Isin         string
	FundManager  *string
	Aum          *float64
	ExpenseRatio *float64
	LaunchDate   *time.Time
	ExitLoad     *string
}

// GetFactSheet retrieves the factsheet for a fund.
// Returns apperrors.ErrFactSheetNotFound if none exists.
func (r *FactSheetRepository) GetFactSheet(isin string) (*model.FactSheet, error) {
	query := `
		SELECT isin, fund_manager, aum, expense_ratio, launch_date, exit_load, last_updated
		FROM fund_factsheet
		WHERE isin = ?
	`

	var fs model.FactSheet
	err := r.getQuerier().QueryRow(query, isin).Scan(
		&fs.Isin,
		&fs.FundManager,
		&fs.Aum,
		&fs.ExpenseRatio,
		&fs.LaunchDate,
		&fs.ExitLoad,
		&fs.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrFactSheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query factsheet: %w", err)
	}

	return &fs, nil
}

// UpsertFactSheets inserts or updates factsheet rows via a prepared
// statement. On conflict, absent (nil) fields preserve the stored values so
// partial source files never null out existing data.
func (r *FactSheetRepository) UpsertFactSheets(records []FactSheetUpsert, now time.Time) error {
	stmt, err := r.getQuerier().Prepare(`
		INSERT INTO fund_factsheet (isin, fund_manager, aum, expense_ratio, launch_date, exit_load, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isin) DO UPDATE SET
			fund_manager = COALESCE(excluded.fund_manager, fund_factsheet.fund_manager),
			aum = COALESCE(excluded.aum, fund_factsheet.aum),
			expense_ratio = COALESCE(excluded.expense_ratio, fund_factsheet.expense_ratio),
			launch_date = COALESCE(excluded.launch_date, fund_factsheet.launch_date),
			exit_load = COALESCE(excluded.exit_load, fund_factsheet.exit_load),
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare factsheet upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(rec.Isin, rec.FundManager, rec.Aum, rec.ExpenseRatio, rec.LaunchDate, rec.ExitLoad, now)
		if err != nil {
			return fmt.Errorf("failed to upsert factsheet %s: %w", rec.Isin, err)
		}
	}

	return nil
}

// ExistingIsins returns which of the given ISINs already have a factsheet row.
func (r *FactSheetRepository) ExistingIsins(isins []string) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	if len(isins) == 0 {
		return existing, nil
	}

	marks, args := placeholders(isins)
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `SELECT isin FROM fund_factsheet WHERE isin IN (` + marks + `)`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing factsheets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isin string
		if err := rows.Scan(&isin); err != nil {
			return nil, fmt.Errorf("failed to scan existing factsheet isin: %w", err)
		}
		existing[isin] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing factsheets: %w", err)
	}

	return existing, nil
}

// DeleteByIsins removes factsheets for the given ISINs.
func (r *FactSheetRepository) DeleteByIsins(isins []string) error {
	if len(isins) == 0 {
		return nil
	}

	marks, args := placeholders(isins)
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `DELETE FROM fund_factsheet WHERE isin IN (` + marks + `)`

	if _, err := r.getQuerier().Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete factsheets: %w", err)
	}

	return nil
}
