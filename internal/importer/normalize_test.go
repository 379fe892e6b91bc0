package importer

import (
	"testing"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/sourcefile"
)

// TestLookup tests column synonym resolution.
//
// WHY: Source files come from different exporters that disagree on column
// names and blank conventions. Resolution order and "nan" handling decide
// whether a cell counts as data or as absent.
func TestLookup(t *testing.T) {
	t.Run("first present synonym wins", func(t *testing.T) {
		row := sourcefile.Row{"AMC Name": "Acme", "AMC": "Other"}

		value, ok := lookup(row, "AMC Name", "AMC")

		if !ok || value != "Acme" {
			t.Errorf("Expected (Acme, true), got (%q, %v)", value, ok)
		}
	})

	t.Run("falls through blank synonym", func(t *testing.T) {
		row := sourcefile.Row{"AMC Name": "  ", "AMC": "Acme"}

		value, ok := lookup(row, "AMC Name", "AMC")

		if !ok || value != "Acme" {
			t.Errorf("Expected (Acme, true), got (%q, %v)", value, ok)
		}
	})

	t.Run("nan cells are absent regardless of case", func(t *testing.T) {
		for _, cell := range []string{"nan", "NaN", "NAN"} {
			row := sourcefile.Row{"AUM": cell}
			if _, ok := lookup(row, "AUM"); ok {
				t.Errorf("Expected %q to be treated as absent", cell)
			}
		}
	})

	t.Run("missing column is absent", func(t *testing.T) {
		row := sourcefile.Row{"ISIN": "INF123456789"}

		if _, ok := lookup(row, "AUM"); ok {
			t.Error("Expected absent for missing column")
		}
	})
}

// TestParseFloat tests numeric cell parsing.
//
// WHY: Financial exports carry thousands separators and percent signs.
// Unparseable values must become absent, never zero.
func TestParseFloat(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"12.5", 12.5, true},
		{"1,234.56", 1234.56, true},
		{"15.2%", 15.2, true},
		{" 10 ", 10, true},
		{"-3.4", -3.4, true},
		{"abc", 0, false},
		{"", 0, false},
		{"%", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseFloat(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseFloat(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("parseFloat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestParseDate tests date cell parsing across the accepted layouts.
func TestParseDate(t *testing.T) {
	expected := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"ISO", "2024-03-15"},
		{"day first dashes", "15-03-2024"},
		{"day first slashes", "15/03/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.input)
			if !ok {
				t.Fatalf("parseDate(%q) failed", tt.input)
			}
			if !got.Equal(expected) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.input, got, expected)
			}
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		if _, ok := parseDate("not-a-date"); ok {
			t.Error("Expected parse failure")
		}
	})
}

// TestNormalizeFactsheet tests factsheet row normalization.
//
// WHY: The synonym lists and optional-field handling here decide what the
// upsert writes. A wrong fallback silently corrupts fund master data.
func TestNormalizeFactsheet(t *testing.T) {
	t.Run("full row with primary column names", func(t *testing.T) {
		row := sourcefile.Row{
			"ISIN":          "INF123456789",
			"Scheme Name":   "Acme Bluechip Fund",
			"Fund Type":     "Equity",
			"Fund Sub Type": "Large Cap",
			"AMC Name":      "Acme AMC",
			"Fund Manager":  "J. Doe",
			"AUM":           "1,234.5",
			"Expense Ratio": "0.45%",
			"Launch Date":   "2020-01-15",
			"Exit Load":     "1% before 1Y",
		}

		rec := normalizeFactsheet(row)

		if rec.isin != "INF123456789" {
			t.Errorf("isin = %q", rec.isin)
		}
		if rec.schemeName != "Acme Bluechip Fund" {
			t.Errorf("schemeName = %q", rec.schemeName)
		}
		if rec.fundSubtype == nil || *rec.fundSubtype != "Large Cap" {
			t.Errorf("fundSubtype = %v", rec.fundSubtype)
		}
		if rec.aum == nil || *rec.aum != 1234.5 {
			t.Errorf("aum = %v", rec.aum)
		}
		if rec.expenseRatio == nil || *rec.expenseRatio != 0.45 {
			t.Errorf("expenseRatio = %v", rec.expenseRatio)
		}
		if rec.launchDate == nil || !rec.launchDate.Equal(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("launchDate = %v", rec.launchDate)
		}
	})

	t.Run("alternate column names", func(t *testing.T) {
		row := sourcefile.Row{
			"ISIN":        "INF123456789",
			"Scheme Name": "Acme Fund",
			"Type":        "Debt",
			"AMC":         "Acme AMC",
			"AUM (₹ Cr)":  "500",
		}

		rec := normalizeFactsheet(row)

		if rec.fundType != "Debt" {
			t.Errorf("fundType = %q, want Debt", rec.fundType)
		}
		if rec.amcName != "Acme AMC" {
			t.Errorf("amcName = %q", rec.amcName)
		}
		if rec.aum == nil || *rec.aum != 500 {
			t.Errorf("aum = %v", rec.aum)
		}
	})

	t.Run("absent optionals stay nil", func(t *testing.T) {
		row := sourcefile.Row{
			"ISIN":        "INF123456789",
			"Scheme Name": "Acme Fund",
			"Fund Type":   "Equity",
			"AMC Name":    "Acme AMC",
			"AUM":         "nan",
		}

		rec := normalizeFactsheet(row)

		if rec.aum != nil {
			t.Errorf("Expected nil aum for nan cell, got %v", *rec.aum)
		}
		if rec.fundManager != nil || rec.launchDate != nil || rec.exitLoad != nil {
			t.Error("Expected absent optionals to be nil")
		}
	})

	t.Run("unparseable number stays nil, never zero", func(t *testing.T) {
		row := sourcefile.Row{"ISIN": "INF123456789", "AUM": "N.A."}

		rec := normalizeFactsheet(row)

		if rec.aum != nil {
			t.Errorf("Expected nil aum, got %v", *rec.aum)
		}
	})
}

// TestNormalizeHolding tests holdings row normalization.
//
// WHY: Holdings files key rows by the scheme's ISIN under "Scheme ISIN" while
// "ISIN" names the held instrument. Swapping the two attaches holdings to the
// wrong fund.
func TestNormalizeHolding(t *testing.T) {
	row := sourcefile.Row{
		"Scheme ISIN":        "INF123456789",
		"ISIN":               "INE001A01036",
		"Name of Instrument": "Acme Industries Ltd",
		"Industry":           "Chemicals",
		"% to Net Assets":    "4.25",
		"Quantity":           "10,000",
	}

	rec := normalizeHolding(row)

	if rec.isin != "INF123456789" {
		t.Errorf("scheme isin = %q", rec.isin)
	}
	if rec.instrumentIsin == nil || *rec.instrumentIsin != "INE001A01036" {
		t.Errorf("instrumentIsin = %v", rec.instrumentIsin)
	}
	if rec.instrumentName != "Acme Industries Ltd" {
		t.Errorf("instrumentName = %q", rec.instrumentName)
	}
	if rec.sector == nil || *rec.sector != "Chemicals" {
		t.Errorf("sector = %v", rec.sector)
	}
	if rec.percentageToNav == nil || *rec.percentageToNav != 4.25 {
		t.Errorf("percentageToNav = %v", rec.percentageToNav)
	}
	if rec.quantity == nil || *rec.quantity != 10000 {
		t.Errorf("quantity = %v", rec.quantity)
	}
}

// TestNormalizeNav tests NAV row normalization.
func TestNormalizeNav(t *testing.T) {
	t.Run("valid row", func(t *testing.T) {
		row := sourcefile.Row{"ISIN": "INF123456789", "Date": "2024-03-15", "NAV": "25.4321"}

		rec := normalizeNav(row)

		if rec.isin != "INF123456789" {
			t.Errorf("isin = %q", rec.isin)
		}
		if rec.date == nil || !rec.date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("date = %v", rec.date)
		}
		if rec.nav == nil || *rec.nav != 25.4321 {
			t.Errorf("nav = %v", rec.nav)
		}
	})

	t.Run("bad date and value stay nil for the validator", func(t *testing.T) {
		row := sourcefile.Row{"ISIN": "INF123456789", "Date": "soon", "NAV": "much"}

		rec := normalizeNav(row)

		if rec.date != nil || rec.nav != nil {
			t.Error("Expected nil date and nav for unparseable cells")
		}
	})
}
