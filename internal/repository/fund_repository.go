package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/model"
)

// FundRepository provides data access methods for the fund table.
type FundRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFundRepository creates a new FundRepository with the provided database connection.
func NewFundRepository(db *sql.DB) *FundRepository {
	return &FundRepository{db: db}
}

func (r *FundRepository) WithTx(tx *sql.Tx) *FundRepository {
	return &FundRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *FundRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// FundFilter narrows GetFunds results. Zero values mean "no filter".
type FundFilter struct {
	Search   string // matches scheme_name or isin, substring
	AmcName  string
	FundType string
	Limit    int
	Offset   int
}

// FundUpsert is the write shape for one fund row produced by the importer.
type FundUpsert struct {
	Isin        string
	SchemeName  string
	FundType    string
	FundSubtype *string
	AmcName     string
}

// GetFunds retrieves funds matching the filter, ordered by scheme name.
// Returns an empty slice if no funds match.
func (r *FundRepository) GetFunds(filter FundFilter) ([]model.Fund, error) {
	query := `
		SELECT isin, scheme_name, fund_type, fund_subtype, amc_name, created_at, updated_at
		FROM fund
		WHERE 1=1
	`
	var args []any

	if filter.Search != "" {
		query += ` AND (scheme_name LIKE ? OR isin LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if filter.AmcName != "" {
		query += ` AND amc_name = ?`
		args = append(args, filter.AmcName)
	}
	if filter.FundType != "" {
		query += ` AND fund_type = ?`
		args = append(args, filter.FundType)
	}

	query += ` ORDER BY scheme_name`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund table: %w", err)
	}
	defer rows.Close()

	funds := []model.Fund{}

	for rows.Next() {
		var f model.Fund
		err := rows.Scan(
			&f.Isin,
			&f.SchemeName,
			&f.FundType,
			&f.FundSubtype,
			&f.AmcName,
			&f.CreatedAt,
			&f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund table results: %w", err)
		}
		funds = append(funds, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund table: %w", err)
	}

	return funds, nil
}

// GetFund retrieves a single fund by ISIN.
// Returns apperrors.ErrFundNotFound if no fund exists for the ISIN.
func (r *FundRepository) GetFund(isin string) (*model.Fund, error) {
	query := `
		SELECT isin, scheme_name, fund_type, fund_subtype, amc_name, created_at, updated_at
		FROM fund
		WHERE isin = ?
	`

	var f model.Fund
	err := r.getQuerier().QueryRow(query, isin).Scan(
		&f.Isin,
		&f.SchemeName,
		&f.FundType,
		&f.FundSubtype,
		&f.AmcName,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrFundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fund: %w", err)
	}

	return &f, nil
}

// ListIsins returns the set of all fund ISINs currently in the store.
// The importer uses this for referential checks against child records.
func (r *FundRepository) ListIsins() (map[string]struct{}, error) {
	rows, err := r.getQuerier().Query(`SELECT isin FROM fund`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund isins: %w", err)
	}
	defer rows.Close()

	isins := map[string]struct{}{}
	for rows.Next() {
		var isin string
		if err := rows.Scan(&isin); err != nil {
			return nil, fmt.Errorf("failed to scan fund isin: %w", err)
		}
		isins[isin] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund isins: %w", err)
	}

	return isins, nil
}

// ExistingIsins returns which of the given ISINs already have a fund row.
// Used to attribute upserts to created vs updated counts.
func (r *FundRepository) ExistingIsins(isins []string) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	if len(isins) == 0 {
		return existing, nil
	}

	marks, args := placeholders(isins)
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `SELECT isin FROM fund WHERE isin IN (` + marks + `)`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing funds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isin string
		if err := rows.Scan(&isin); err != nil {
			return nil, fmt.Errorf("failed to scan existing fund isin: %w", err)
		}
		existing[isin] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing funds: %w", err)
	}

	return existing, nil
}

// UpsertFunds inserts or updates the given fund rows via a prepared
// statement. On ISIN conflict all provided fields overwrite, except
// fund_subtype which is preserved when the incoming value is absent.
func (r *FundRepository) UpsertFunds(records []FundUpsert, now time.Time) error {
	stmt, err := r.getQuerier().Prepare(`
		INSERT INTO fund (isin, scheme_name, fund_type, fund_subtype, amc_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isin) DO UPDATE SET
			scheme_name = excluded.scheme_name,
			fund_type = excluded.fund_type,
			fund_subtype = COALESCE(excluded.fund_subtype, fund.fund_subtype),
			amc_name = excluded.amc_name,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fund upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(rec.Isin, rec.SchemeName, rec.FundType, rec.FundSubtype, rec.AmcName, now, now)
		if err != nil {
			return fmt.Errorf("failed to upsert fund %s: %w", rec.Isin, err)
		}
	}

	return nil
}

// DeleteByIsins removes funds for the given ISINs. Child rows (factsheet,
// returns, holdings, NAV history) cascade.
func (r *FundRepository) DeleteByIsins(isins []string) error {
	if len(isins) == 0 {
		return nil
	}

	marks, args := placeholders(isins)
	//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
	query := `DELETE FROM fund WHERE isin IN (` + marks + `)`

	if _, err := r.getQuerier().Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete funds: %w", err)
	}

	return nil
}

// ListAmcNames returns the distinct AMC names present in the fund table.
func (r *FundRepository) ListAmcNames() ([]string, error) {
	rows, err := r.getQuerier().Query(`SELECT DISTINCT amc_name FROM fund ORDER BY amc_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query amc names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan amc name: %w", err)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amc names: %w", err)
	}

	return names, nil
}
