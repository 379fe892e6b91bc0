package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/model"
)

// HoldingRepository provides data access methods for the fund_holding table.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// HoldingInsert is the write shape for one holding row produced by the importer.
type HoldingInsert struct {
	Isin            string
	InstrumentName  string
	InstrumentType  *string
	Sector          *string
	PercentageToNav *float64
	Quantity        *float64
	Value           *float64
	Coupon          *float64
	YieldValue      *float64
	InstrumentIsin  *string
	AmcName         *string
	SchemeName      *string
}

// GetHoldings retrieves all holdings for a fund, ordered by descending
// weight in the portfolio. Returns an empty slice if the fund has none.
func (r *HoldingRepository) GetHoldings(isin string) ([]model.Holding, error) {
	query := `
		SELECT id, isin, instrument_name, instrument_type, sector, percentage_to_nav,
		       quantity, value, coupon, yield_value, instrument_isin, amc_name, scheme_name, last_updated
		FROM fund_holding
		WHERE isin = ?
		ORDER BY percentage_to_nav DESC
	`

	rows, err := r.getQuerier().Query(query, isin)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}

	for rows.Next() {
		var h model.Holding
		err := rows.Scan(
			&h.ID,
			&h.Isin,
			&h.InstrumentName,
			&h.InstrumentType,
			&h.Sector,
			&h.PercentageToNav,
			&h.Quantity,
			&h.Value,
			&h.Coupon,
			&h.YieldValue,
			&h.InstrumentIsin,
			&h.AmcName,
			&h.SchemeName,
			&h.LastUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// InsertHoldings inserts holding rows via a prepared statement. Holdings
// carry a surrogate key, so every row is an insert; deduplication is the
// caller's job via a prior clear.
func (r *HoldingRepository) InsertHoldings(records []HoldingInsert, now time.Time) error {
	stmt, err := r.getQuerier().Prepare(`
		INSERT INTO fund_holding (isin, instrument_name, instrument_type, sector, percentage_to_nav,
			quantity, value, coupon, yield_value, instrument_isin, amc_name, scheme_name, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare holding insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			rec.Isin,
			rec.InstrumentName,
			rec.InstrumentType,
			rec.Sector,
			rec.PercentageToNav,
			rec.Quantity,
			rec.Value,
			rec.Coupon,
			rec.YieldValue,
			rec.InstrumentIsin,
			rec.AmcName,
			rec.SchemeName,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert holding for %s: %w", rec.Isin, err)
		}
	}

	return nil
}

// DeleteAll removes every holding row.
func (r *HoldingRepository) DeleteAll() error {
	if _, err := r.getQuerier().Exec(`DELETE FROM fund_holding`); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}
	return nil
}

// CountByIsin returns the number of holdings stored for a fund.
func (r *HoldingRepository) CountByIsin(isin string) (int, error) {
	var count int
	err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM fund_holding WHERE isin = ?`, isin).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count holdings: %w", err)
	}
	return count, nil
}
