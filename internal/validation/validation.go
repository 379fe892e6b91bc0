package validation

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
)

// isinPattern accepts alphanumeric identifiers between 5 and 12 characters.
// A canonical ISIN is exactly 12, but the store also carries shorter house
// codes, so path parameters are checked to the same floor the importer uses.
var isinPattern = regexp.MustCompile(`^[A-Za-z0-9]{5,12}$`)

// ValidateIsin checks an ISIN path or query parameter.
func ValidateIsin(isin string) error {
	if !isinPattern.MatchString(isin) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidIsin, isin)
	}
	return nil
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid UUID format: %s", id)
	}
	return nil
}

// ParseDate parses a date query parameter in "2006-01-02" or RFC3339 format.
func ParseDate(str string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", str)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return parsed.UTC(), nil
}

// AllowedUploadFile reports whether the uploaded filename has a supported
// source-file extension.
func AllowedUploadFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}
