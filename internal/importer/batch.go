package importer

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
)

// applyFunc persists accepted rows [start, end) inside the given
// transaction and reports how many entities it created and updated.
type applyFunc func(tx *sql.Tx, start, end int) (created, updated int, err error)

// runChunks applies n accepted records in consecutive chunks of at most
// batchSize, one transaction per chunk, in file order. A chunk that fails is
// rolled back whole and recorded on the stats; the run continues with the
// next chunk. Connection-fatal errors abort the run and are returned wrapped
// in apperrors.ErrImportFatal, with stats reflecting all chunks committed
// before the failure.
func (im *Importer) runChunks(n, batchSize int, stats *Stats, progress func(Stats), apply applyFunc) error {
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}

		tx, err := im.db.Begin()
		if err != nil {
			return fmt.Errorf("%w: failed to begin transaction for rows %d-%d: %v",
				apperrors.ErrImportFatal, start+1, end, err)
		}

		created, updated, err := apply(tx, start, end)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("import: rollback of rows %d-%d failed: %v", start+1, end, rbErr)
			}
			if isFatal(err) {
				return fmt.Errorf("%w: rows %d-%d: %v", apperrors.ErrImportFatal, start+1, end, err)
			}
			stats.ChunkErrors = append(stats.ChunkErrors, ChunkError{
				FirstRow: start + 1,
				LastRow:  end,
				Error:    err.Error(),
			})
			log.Printf("import: chunk rows %d-%d rolled back: %v", start+1, end, err)
			continue
		}

		if err := tx.Commit(); err != nil {
			if isFatal(err) {
				return fmt.Errorf("%w: commit of rows %d-%d: %v", apperrors.ErrImportFatal, start+1, end, err)
			}
			stats.ChunkErrors = append(stats.ChunkErrors, ChunkError{
				FirstRow: start + 1,
				LastRow:  end,
				Error:    err.Error(),
			})
			log.Printf("import: commit of rows %d-%d failed: %v", start+1, end, err)
			continue
		}

		stats.EntitiesCreated += created
		stats.EntitiesUpdated += updated
		stats.BatchesCommitted++

		if progress != nil {
			progress(stats.Clone())
		}
	}

	return nil
}

// isFatal classifies an error as connection-level. Data-level errors (e.g.
// constraint violations) cost one chunk; connection loss costs the run.
func isFatal(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "bad connection")
}
