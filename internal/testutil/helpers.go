package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/importer"
	"github.com/fundsetu/mfdata-backend/internal/repository"
	"github.com/fundsetu/mfdata-backend/internal/service"
)

// NewTestImporter creates an Importer wired to fresh repositories over db.
func NewTestImporter(t *testing.T, db *sql.DB) *importer.Importer {
	t.Helper()

	return importer.New(
		db,
		repository.NewFundRepository(db),
		repository.NewFactSheetRepository(db),
		repository.NewReturnsRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewNavRepository(db),
	)
}

// NewTestFundService creates a FundService wired to fresh repositories over db.
func NewTestFundService(t *testing.T, db *sql.DB) *service.FundService {
	t.Helper()

	return service.NewFundService(
		repository.NewFundRepository(db),
		repository.NewFactSheetRepository(db),
		repository.NewReturnsRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewNavRepository(db),
	)
}

// NewTestImportService creates an ImportService wired to fresh repositories
// over db, with the given default batch size.
func NewTestImportService(t *testing.T, db *sql.DB, defaultBatchSize int) *service.ImportService {
	t.Helper()

	return service.NewImportService(
		NewTestImporter(t, db),
		repository.NewImportRunRepository(db),
		defaultBatchSize,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeISIN generates a realistic ISIN code for testing.
//
// Example usage:
//
//	isin := testutil.MakeISIN("IN")
//	// Returns: "IN1A2B3C4D5E"
func MakeISIN(prefix string) string {
	if prefix == "" {
		prefix = "IN"
	}
	return prefix + randomAlphanumeric(10)
}

// MakeSchemeName generates a unique scheme name for testing.
//
// Example usage:
//
//	name := testutil.MakeSchemeName("Bluechip Fund")
//	// Returns: "Bluechip Fund XYZ789"
func MakeSchemeName(base string) string {
	if base == "" {
		base = "Scheme"
	}
	return base + " " + randomAlphanumeric(6)
}

// StrPtr returns a pointer to the given string.
func StrPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to the given float64.
func FloatPtr(f float64) *float64 {
	return &f
}

// Date builds a UTC midnight time for the given calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to a UTC midnight time for the given date.
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
