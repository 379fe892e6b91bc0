package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/sourcefile"
)

// Source files come from different exporters that disagree on column names,
// so every canonical field is resolved through an ordered synonym list:
// the first present, non-blank column wins. Blank cells, the literal text
// "nan" (any case) and absent columns all mean "not provided", never zero.

// dateFormats accepted for launch dates and NAV dates, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// lookup resolves a field through its column synonyms.
func lookup(row sourcefile.Row, synonyms ...string) (string, bool) {
	for _, name := range synonyms {
		value, ok := row.Get(name)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || strings.EqualFold(value, "nan") {
			continue
		}
		return value, true
	}
	return "", false
}

// optString returns the field as a pointer, nil when absent.
func optString(row sourcefile.Row, synonyms ...string) *string {
	value, ok := lookup(row, synonyms...)
	if !ok {
		return nil
	}
	return &value
}

// stringOr returns the field value, or fallback when absent.
func stringOr(row sourcefile.Row, fallback string, synonyms ...string) string {
	value, ok := lookup(row, synonyms...)
	if !ok {
		return fallback
	}
	return value
}

// optFloat parses the field as a decimal, nil when absent or unparseable.
// Unparseable never becomes zero: silently corrupting financial figures is
// worse than dropping them.
func optFloat(row sourcefile.Row, synonyms ...string) *float64 {
	value, ok := lookup(row, synonyms...)
	if !ok {
		return nil
	}
	parsed, ok := parseFloat(value)
	if !ok {
		return nil
	}
	return &parsed
}

// optDate parses the field as a calendar date, nil when absent or unparseable.
func optDate(row sourcefile.Row, synonyms ...string) *time.Time {
	value, ok := lookup(row, synonyms...)
	if !ok {
		return nil
	}
	parsed, ok := parseDate(value)
	if !ok {
		return nil
	}
	return &parsed
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// factsheetRecord is the canonical shape of one factsheet source row.
type factsheetRecord struct {
	isin         string
	schemeName   string
	fundType     string
	fundSubtype  *string
	amcName      string
	fundManager  *string
	aum          *float64
	expenseRatio *float64
	launchDate   *time.Time
	exitLoad     *string
}

func normalizeFactsheet(row sourcefile.Row) factsheetRecord {
	return factsheetRecord{
		isin:         stringOr(row, "", "ISIN"),
		schemeName:   stringOr(row, "", "Scheme Name"),
		fundType:     stringOr(row, "", "Fund Type", "Type"),
		fundSubtype:  optString(row, "Fund Sub Type", "Subtype"),
		amcName:      stringOr(row, "", "AMC Name", "AMC"),
		fundManager:  optString(row, "Fund Manager", "Fund Manager(s)"),
		aum:          optFloat(row, "AUM", "AUM (₹ Cr)"),
		expenseRatio: optFloat(row, "Expense Ratio"),
		launchDate:   optDate(row, "Launch Date"),
		exitLoad:     optString(row, "Exit Load"),
	}
}

// returnsRecord is the canonical shape of one returns source row.
type returnsRecord struct {
	isin      string
	return1M  *float64
	return3M  *float64
	return6M  *float64
	returnYTD *float64
	return1Y  *float64
	return3Y  *float64
	return5Y  *float64
}

func normalizeReturns(row sourcefile.Row) returnsRecord {
	return returnsRecord{
		isin:      stringOr(row, "", "ISIN"),
		return1M:  optFloat(row, "1M Return", "Return 1M"),
		return3M:  optFloat(row, "3M Return", "Return 3M"),
		return6M:  optFloat(row, "6M Return", "Return 6M"),
		returnYTD: optFloat(row, "YTD Return", "Return YTD"),
		return1Y:  optFloat(row, "1Y Return", "Return 1Y"),
		return3Y:  optFloat(row, "3Y Return", "Return 3Y"),
		return5Y:  optFloat(row, "5Y Return", "Return 5Y"),
	}
}

// holdingRecord is the canonical shape of one holdings source row.
// isin is the scheme's ISIN; instrumentIsin the held instrument's.
type holdingRecord struct {
	isin            string
	instrumentName  string
	instrumentType  *string
	sector          *string
	percentageToNav *float64
	quantity        *float64
	value           *float64
	coupon          *float64
	yieldValue      *float64
	instrumentIsin  *string
	amcName         *string
	schemeName      *string
}

func normalizeHolding(row sourcefile.Row) holdingRecord {
	return holdingRecord{
		isin:            stringOr(row, "", "Scheme ISIN"),
		instrumentName:  stringOr(row, "", "Name of Instrument", "Instrument Name"),
		instrumentType:  optString(row, "Type", "Instrument Type"),
		sector:          optString(row, "Industry", "Sector"),
		percentageToNav: optFloat(row, "% to Net Assets", "% to NAV"),
		quantity:        optFloat(row, "Quantity"),
		value:           optFloat(row, "Market Value", "Value"),
		coupon:          optFloat(row, "Coupon"),
		yieldValue:      optFloat(row, "Yield"),
		instrumentIsin:  optString(row, "ISIN"),
		amcName:         optString(row, "AMC", "AMC Name"),
		schemeName:      optString(row, "Scheme Name"),
	}
}

// navRecord is the canonical shape of one NAV source row.
// date and nav stay optional here; the validator decides their fate.
type navRecord struct {
	isin string
	date *time.Time
	nav  *float64
}

func normalizeNav(row sourcefile.Row) navRecord {
	return navRecord{
		isin: stringOr(row, "", "ISIN"),
		date: optDate(row, "Date", "NAV Date"),
		nav:  optFloat(row, "NAV", "Net Asset Value"),
	}
}
