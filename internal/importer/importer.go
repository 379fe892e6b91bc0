// Package importer loads mutual-fund reference data from spreadsheet and
// CSV exports into the relational store. Rows are normalized, validated and
// persisted strictly in file order; writes happen in fixed-size chunks, one
// transaction per chunk.
package importer

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/repository"
	"github.com/fundsetu/mfdata-backend/internal/sourcefile"
)

// Importer runs bulk imports against the fund schema. It is synchronous and
// not safe for concurrent runs against the same store; callers that need a
// run-level gate provide their own (see service.ImportService).
type Importer struct {
	db         *sql.DB
	funds      *repository.FundRepository
	factsheets *repository.FactSheetRepository
	returns    *repository.ReturnsRepository
	holdings   *repository.HoldingRepository
	navs       *repository.NavRepository
	now        func() time.Time
}

// New creates an Importer over the given repositories.
func New(
	db *sql.DB,
	funds *repository.FundRepository,
	factsheets *repository.FactSheetRepository,
	returns *repository.ReturnsRepository,
	holdings *repository.HoldingRepository,
	navs *repository.NavRepository,
) *Importer {
	return &Importer{
		db:         db,
		funds:      funds,
		factsheets: factsheets,
		returns:    returns,
		holdings:   holdings,
		navs:       navs,
		now:        time.Now,
	}
}

// Options controls one import run.
type Options struct {
	// ClearExisting deletes prior data before importing: scoped to the
	// ISINs present in the file for factsheet and returns, the whole table
	// for holdings and NAV.
	ClearExisting bool
	// BatchSize is the number of accepted rows per transaction. Must be >= 1.
	BatchSize int
	// Progress, when set, receives a statistics snapshot after every
	// committed batch.
	Progress func(Stats)
}

// ImportKind dispatches to the importer for the given record kind.
func (im *Importer) ImportKind(kind Kind, table *sourcefile.Table, opts Options) (*Stats, error) {
	switch kind {
	case KindFactsheet:
		return im.ImportFactsheet(table, opts)
	case KindHoldings:
		return im.ImportHoldings(table, opts)
	case KindReturns:
		return im.ImportReturns(table, opts)
	case KindNav:
		return im.ImportNav(table, opts)
	default:
		return newStats(), fmt.Errorf("unknown import kind: %q", kind)
	}
}

// ImportAll runs the supplied files in the fixed order factsheet →
// holdings → returns → NAV. The order matters: factsheet import is the only
// kind that creates funds, and the other kinds validate against them.
// A fatal error stops the sequence; the report keeps the statistics of every
// kind that ran.
func (im *Importer) ImportAll(files map[Kind]*sourcefile.Table, opts Options) (*Report, error) {
	report := &Report{}

	for _, kind := range []Kind{KindFactsheet, KindHoldings, KindReturns, KindNav} {
		table := files[kind]
		if table == nil {
			continue
		}

		stats, err := im.ImportKind(kind, table, opts)

		switch kind {
		case KindFactsheet:
			report.Factsheet = stats
		case KindHoldings:
			report.Holdings = stats
		case KindReturns:
			report.Returns = stats
		case KindNav:
			report.Nav = stats
		}

		if err != nil {
			return report, fmt.Errorf("%s import: %w", kind, err)
		}
	}

	return report, nil
}

// ImportFactsheet imports fund and factsheet data. Rows with a usable ISIN
// upsert both the fund and its factsheet; absent fields never overwrite
// stored values.
func (im *Importer) ImportFactsheet(table *sourcefile.Table, opts Options) (*Stats, error) {
	stats := newStats()
	if opts.BatchSize < 1 {
		return stats, apperrors.ErrInvalidBatchSize
	}

	stats.RowsSeen = len(table.Rows)

	accepted := make([]factsheetRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := normalizeFactsheet(row)
		if !checkIsin(rec.isin, stats) {
			continue
		}
		accepted = append(accepted, rec)
		stats.RowsAccepted++
	}

	log.Printf("import: factsheet file has %d rows, %d accepted", stats.RowsSeen, stats.RowsAccepted)

	if opts.ClearExisting && len(accepted) > 0 {
		isins := make([]string, 0, len(accepted))
		seen := map[string]struct{}{}
		for _, rec := range accepted {
			if _, ok := seen[rec.isin]; ok {
				continue
			}
			seen[rec.isin] = struct{}{}
			isins = append(isins, rec.isin)
		}
		if err := im.clearFunds(isins); err != nil {
			return stats, err
		}
	}

	now := im.now().UTC()
	err := im.runChunks(len(accepted), opts.BatchSize, stats, opts.Progress,
		func(tx *sql.Tx, start, end int) (int, int, error) {
			chunk := accepted[start:end]

			isins := make([]string, len(chunk))
			for i, rec := range chunk {
				isins[i] = rec.isin
			}

			// Existence is read inside the chunk transaction so earlier
			// committed chunks of this run are attributed correctly.
			fundExisting, err := im.funds.WithTx(tx).ExistingIsins(isins)
			if err != nil {
				return 0, 0, err
			}
			factExisting, err := im.factsheets.WithTx(tx).ExistingIsins(isins)
			if err != nil {
				return 0, 0, err
			}

			var created, updated int
			fundUpserts := make([]repository.FundUpsert, 0, len(chunk))
			factUpserts := make([]repository.FactSheetUpsert, 0, len(chunk))

			for _, rec := range chunk {
				if _, ok := fundExisting[rec.isin]; ok {
					updated++
				} else {
					created++
					fundExisting[rec.isin] = struct{}{}
				}
				if _, ok := factExisting[rec.isin]; ok {
					updated++
				} else {
					created++
					factExisting[rec.isin] = struct{}{}
				}

				fundUpserts = append(fundUpserts, repository.FundUpsert{
					Isin:        rec.isin,
					SchemeName:  rec.schemeName,
					FundType:    rec.fundType,
					FundSubtype: rec.fundSubtype,
					AmcName:     rec.amcName,
				})
				factUpserts = append(factUpserts, repository.FactSheetUpsert{
					Isin:         rec.isin,
					FundManager:  rec.fundManager,
					Aum:          rec.aum,
					ExpenseRatio: rec.expenseRatio,
					LaunchDate:   rec.launchDate,
					ExitLoad:     rec.exitLoad,
				})
			}

			// Funds first: factsheets reference them.
			if err := im.funds.WithTx(tx).UpsertFunds(fundUpserts, now); err != nil {
				return 0, 0, err
			}
			if err := im.factsheets.WithTx(tx).UpsertFactSheets(factUpserts, now); err != nil {
				return 0, 0, err
			}

			return created, updated, nil
		})

	log.Printf("import: factsheet completed: created=%d updated=%d batches=%d",
		stats.EntitiesCreated, stats.EntitiesUpdated, stats.BatchesCommitted)

	return stats, err
}

// ImportReturns imports trailing returns. Rows referencing an unknown fund
// are skipped with reason no_fund.
func (im *Importer) ImportReturns(table *sourcefile.Table, opts Options) (*Stats, error) {
	stats := newStats()
	if opts.BatchSize < 1 {
		return stats, apperrors.ErrInvalidBatchSize
	}

	stats.RowsSeen = len(table.Rows)

	candidates := make([]returnsRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := normalizeReturns(row)
		if !checkIsin(rec.isin, stats) {
			continue
		}
		candidates = append(candidates, rec)
	}

	if opts.ClearExisting && len(candidates) > 0 {
		isins := make([]string, 0, len(candidates))
		seen := map[string]struct{}{}
		for _, rec := range candidates {
			if _, ok := seen[rec.isin]; ok {
				continue
			}
			seen[rec.isin] = struct{}{}
			isins = append(isins, rec.isin)
		}
		if err := im.clearReturns(isins); err != nil {
			return stats, err
		}
	}

	fundSet, err := im.funds.ListIsins()
	if err != nil {
		return stats, fmt.Errorf("%w: failed to load fund isins: %v", apperrors.ErrImportFatal, err)
	}

	accepted := make([]returnsRecord, 0, len(candidates))
	for _, rec := range candidates {
		if !checkFundExists(rec.isin, fundSet, stats) {
			continue
		}
		accepted = append(accepted, rec)
		stats.RowsAccepted++
	}

	log.Printf("import: returns file has %d rows, %d accepted", stats.RowsSeen, stats.RowsAccepted)

	now := im.now().UTC()
	err = im.runChunks(len(accepted), opts.BatchSize, stats, opts.Progress,
		func(tx *sql.Tx, start, end int) (int, int, error) {
			chunk := accepted[start:end]

			isins := make([]string, len(chunk))
			for i, rec := range chunk {
				isins[i] = rec.isin
			}

			existing, err := im.returns.WithTx(tx).ExistingIsins(isins)
			if err != nil {
				return 0, 0, err
			}

			var created, updated int
			upserts := make([]repository.ReturnsUpsert, 0, len(chunk))
			for _, rec := range chunk {
				if _, ok := existing[rec.isin]; ok {
					updated++
				} else {
					created++
					existing[rec.isin] = struct{}{}
				}
				upserts = append(upserts, repository.ReturnsUpsert{
					Isin:      rec.isin,
					Return1M:  rec.return1M,
					Return3M:  rec.return3M,
					Return6M:  rec.return6M,
					ReturnYTD: rec.returnYTD,
					Return1Y:  rec.return1Y,
					Return3Y:  rec.return3Y,
					Return5Y:  rec.return5Y,
				})
			}

			if err := im.returns.WithTx(tx).UpsertReturns(upserts, now); err != nil {
				return 0, 0, err
			}

			return created, updated, nil
		})

	log.Printf("import: returns completed: created=%d updated=%d batches=%d",
		stats.EntitiesCreated, stats.EntitiesUpdated, stats.BatchesCommitted)

	return stats, err
}

// ImportHoldings imports portfolio holdings. Holdings carry a surrogate key,
// so every accepted row is inserted; deduplication is the caller's job via
// ClearExisting.
func (im *Importer) ImportHoldings(table *sourcefile.Table, opts Options) (*Stats, error) {
	stats := newStats()
	if opts.BatchSize < 1 {
		return stats, apperrors.ErrInvalidBatchSize
	}

	stats.RowsSeen = len(table.Rows)

	if opts.ClearExisting && len(table.Rows) > 0 {
		if err := im.clearHoldings(); err != nil {
			return stats, err
		}
	}

	fundSet, err := im.funds.ListIsins()
	if err != nil {
		return stats, fmt.Errorf("%w: failed to load fund isins: %v", apperrors.ErrImportFatal, err)
	}

	accepted := make([]holdingRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := normalizeHolding(row)
		if !checkIsin(rec.isin, stats) {
			continue
		}
		if !checkFundExists(rec.isin, fundSet, stats) {
			continue
		}
		accepted = append(accepted, rec)
		stats.RowsAccepted++
	}

	log.Printf("import: holdings file has %d rows, %d accepted", stats.RowsSeen, stats.RowsAccepted)

	now := im.now().UTC()
	err = im.runChunks(len(accepted), opts.BatchSize, stats, opts.Progress,
		func(tx *sql.Tx, start, end int) (int, int, error) {
			chunk := accepted[start:end]

			inserts := make([]repository.HoldingInsert, 0, len(chunk))
			for _, rec := range chunk {
				inserts = append(inserts, repository.HoldingInsert{
					Isin:            rec.isin,
					InstrumentName:  rec.instrumentName,
					InstrumentType:  rec.instrumentType,
					Sector:          rec.sector,
					PercentageToNav: rec.percentageToNav,
					Quantity:        rec.quantity,
					Value:           rec.value,
					Coupon:          rec.coupon,
					YieldValue:      rec.yieldValue,
					InstrumentIsin:  rec.instrumentIsin,
					AmcName:         rec.amcName,
					SchemeName:      rec.schemeName,
				})
			}

			if err := im.holdings.WithTx(tx).InsertHoldings(inserts, now); err != nil {
				return 0, 0, err
			}

			return len(inserts), 0, nil
		})

	log.Printf("import: holdings completed: created=%d batches=%d",
		stats.EntitiesCreated, stats.BatchesCommitted)

	return stats, err
}

// ImportNav imports NAV history. Rows need a usable ISIN referencing an
// existing fund, a parseable date, and a positive NAV; every accepted row is
// inserted.
func (im *Importer) ImportNav(table *sourcefile.Table, opts Options) (*Stats, error) {
	stats := newStats()
	if opts.BatchSize < 1 {
		return stats, apperrors.ErrInvalidBatchSize
	}

	stats.RowsSeen = len(table.Rows)

	if opts.ClearExisting && len(table.Rows) > 0 {
		if err := im.clearNav(); err != nil {
			return stats, err
		}
	}

	fundSet, err := im.funds.ListIsins()
	if err != nil {
		return stats, fmt.Errorf("%w: failed to load fund isins: %v", apperrors.ErrImportFatal, err)
	}

	accepted := make([]navRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := normalizeNav(row)
		if !checkIsin(rec.isin, stats) {
			continue
		}
		if !checkFundExists(rec.isin, fundSet, stats) {
			continue
		}
		if !validateNav(rec, stats) {
			continue
		}
		accepted = append(accepted, rec)
		stats.RowsAccepted++
	}

	log.Printf("import: nav file has %d rows, %d accepted", stats.RowsSeen, stats.RowsAccepted)

	now := im.now().UTC()
	err = im.runChunks(len(accepted), opts.BatchSize, stats, opts.Progress,
		func(tx *sql.Tx, start, end int) (int, int, error) {
			chunk := accepted[start:end]

			inserts := make([]repository.NavInsert, 0, len(chunk))
			for _, rec := range chunk {
				inserts = append(inserts, repository.NavInsert{
					Isin: rec.isin,
					Date: *rec.date,
					Nav:  *rec.nav,
				})
			}

			if err := im.navs.WithTx(tx).InsertNavRecords(inserts, now); err != nil {
				return 0, 0, err
			}

			return len(inserts), 0, nil
		})

	log.Printf("import: nav completed: created=%d batches=%d",
		stats.EntitiesCreated, stats.BatchesCommitted)

	return stats, err
}

// clearFunds deletes funds and factsheets for the given ISINs in one
// transaction, committed before any import chunk runs. Child rows cascade.
// A failure here is run-fatal: a half-applied clear must never be left
// interleaved with imported data.
func (im *Importer) clearFunds(isins []string) error {
	tx, err := im.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin clear transaction: %v", apperrors.ErrImportFatal, err)
	}

	if err := im.factsheets.WithTx(tx).DeleteByIsins(isins); err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to clear factsheets: %v", apperrors.ErrImportFatal, err)
	}
	if err := im.funds.WithTx(tx).DeleteByIsins(isins); err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to clear funds: %v", apperrors.ErrImportFatal, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit clear: %v", apperrors.ErrImportFatal, err)
	}

	log.Printf("import: cleared fund and factsheet data for %d isins", len(isins))
	return nil
}

// clearReturns deletes returns rows for the given ISINs in one transaction.
func (im *Importer) clearReturns(isins []string) error {
	tx, err := im.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin clear transaction: %v", apperrors.ErrImportFatal, err)
	}

	if err := im.returns.WithTx(tx).DeleteByIsins(isins); err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to clear returns: %v", apperrors.ErrImportFatal, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit clear: %v", apperrors.ErrImportFatal, err)
	}

	log.Printf("import: cleared returns data for %d isins", len(isins))
	return nil
}

// clearHoldings empties the whole holdings table in one transaction.
func (im *Importer) clearHoldings() error {
	tx, err := im.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin clear transaction: %v", apperrors.ErrImportFatal, err)
	}

	if err := im.holdings.WithTx(tx).DeleteAll(); err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to clear holdings: %v", apperrors.ErrImportFatal, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit clear: %v", apperrors.ErrImportFatal, err)
	}

	log.Println("import: cleared existing holdings")
	return nil
}

// clearNav empties the whole NAV history table in one transaction.
func (im *Importer) clearNav() error {
	tx, err := im.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin clear transaction: %v", apperrors.ErrImportFatal, err)
	}

	if err := im.navs.WithTx(tx).DeleteAll(); err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to clear nav history: %v", apperrors.ErrImportFatal, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit clear: %v", apperrors.ErrImportFatal, err)
	}

	log.Println("import: cleared existing nav history")
	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		log.Printf("import: rollback failed: %v", err)
	}
}
