package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrFundNotFound indicates that a fund with the given ISIN does not exist.
	ErrFundNotFound = errors.New("fund not found")

	// ErrFactSheetNotFound indicates that no factsheet exists for the given ISIN.
	ErrFactSheetNotFound = errors.New("factsheet not found")

	// ErrReturnsNotFound indicates that no returns record exists for the given ISIN.
	ErrReturnsNotFound = errors.New("returns not found")

	// ErrImportRunNotFound indicates that an import run with the given ID does not exist.
	ErrImportRunNotFound = errors.New("import run not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidIsin indicates that a provided identifier is not a plausible ISIN.
	ErrInvalidIsin = errors.New("invalid ISIN")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidBatchSize indicates a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")

	// ErrUnsupportedFileType indicates an upload with an unknown record kind
	// or an unsupported file extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrEmptyFile indicates a source file with no data rows.
	ErrEmptyFile = errors.New("file contains no data rows")
)

// Import execution errors.
var (
	// ErrImportInProgress indicates another import run currently holds the
	// single-run gate.
	ErrImportInProgress = errors.New("an import is already in progress")

	// ErrImportFatal indicates the run was aborted by a connection-level
	// failure; partial statistics are still reported.
	ErrImportFatal = errors.New("import aborted")
)
