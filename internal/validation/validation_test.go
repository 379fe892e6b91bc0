package validation_test

import (
	"testing"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/validation"
)

// TestValidateIsin tests identifier validation for request parameters.
func TestValidateIsin(t *testing.T) {
	tests := []struct {
		name  string
		isin  string
		valid bool
	}{
		{"canonical ISIN", "INF123456789", true},
		{"short house code", "TEST001", true},
		{"minimum length", "AB123", true},
		{"too short", "AB12", false},
		{"too long", "INF1234567890", false},
		{"empty", "", false},
		{"path traversal", "../etc", false},
		{"whitespace", "INF 123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateIsin(tt.isin)
			if tt.valid && err != nil {
				t.Errorf("ValidateIsin(%q) = %v, want nil", tt.isin, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("ValidateIsin(%q) = nil, want error", tt.isin)
			}
		})
	}
}

// TestValidateUUID tests run-ID validation.
func TestValidateUUID(t *testing.T) {
	if err := validation.ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("Expected valid UUID, got %v", err)
	}
	if err := validation.ValidateUUID("not-a-uuid"); err == nil {
		t.Error("Expected error for malformed UUID")
	}
}

// TestParseDate tests query-parameter date parsing.
func TestParseDate(t *testing.T) {
	t.Run("parses calendar date", func(t *testing.T) {
		parsed, err := validation.ParseDate("2024-03-15")

		if err != nil {
			t.Fatalf("ParseDate() returned unexpected error: %v", err)
		}
		expected := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
		if !parsed.Equal(expected) {
			t.Errorf("ParseDate() = %v, want %v", parsed, expected)
		}
	})

	t.Run("parses RFC3339", func(t *testing.T) {
		parsed, err := validation.ParseDate("2024-03-15T10:30:00Z")

		if err != nil {
			t.Fatalf("ParseDate() returned unexpected error: %v", err)
		}
		if parsed.Hour() != 10 {
			t.Errorf("Expected time component preserved, got %v", parsed)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := validation.ParseDate("15th March"); err == nil {
			t.Error("Expected error for unparseable date")
		}
	})
}

// TestAllowedUploadFile tests upload extension screening.
func TestAllowedUploadFile(t *testing.T) {
	allowed := []string{"funds.csv", "funds.xlsx", "funds.xls", "FUNDS.XLSX"}
	for _, name := range allowed {
		if !validation.AllowedUploadFile(name) {
			t.Errorf("Expected %q to be allowed", name)
		}
	}

	rejected := []string{"funds.pdf", "funds", "funds.csv.exe"}
	for _, name := range rejected {
		if validation.AllowedUploadFile(name) {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}
