package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/model"
)

// FundBuilder provides a fluent interface for creating test funds.
//
// Example usage:
//
//	// Simple creation with defaults
//	fund := testutil.NewFund().Build(t, db)
//
//	// Customized fund
//	fund := testutil.NewFund().
//	    WithIsin("INF123456789").
//	    WithAmcName("Acme AMC").
//	    WithFundType("Debt").
//	    Build(t, db)
type FundBuilder struct {
	Isin        string
	SchemeName  string
	FundType    string
	FundSubtype *string
	AmcName     string
}

// NewFund creates a FundBuilder with sensible defaults.
func NewFund() *FundBuilder {
	return &FundBuilder{
		Isin:       MakeISIN("IN"),
		SchemeName: MakeSchemeName("Test Scheme"),
		FundType:   "Equity",
		AmcName:    "Test AMC",
	}
}

// WithIsin sets a custom ISIN.
func (b *FundBuilder) WithIsin(isin string) *FundBuilder {
	b.Isin = isin
	return b
}

// WithSchemeName sets a custom scheme name.
func (b *FundBuilder) WithSchemeName(name string) *FundBuilder {
	b.SchemeName = name
	return b
}

// WithFundType sets a custom fund type.
func (b *FundBuilder) WithFundType(fundType string) *FundBuilder {
	b.FundType = fundType
	return b
}

// WithFundSubtype sets a custom fund subtype.
func (b *FundBuilder) WithFundSubtype(subtype string) *FundBuilder {
	b.FundSubtype = &subtype
	return b
}

// WithAmcName sets a custom AMC name.
func (b *FundBuilder) WithAmcName(amcName string) *FundBuilder {
	b.AmcName = amcName
	return b
}

// Build creates the fund in the database and returns it.
func (b *FundBuilder) Build(t *testing.T, db *sql.DB) model.Fund {
	t.Helper()

	now := time.Now().UTC()

	query := `
		INSERT INTO fund (isin, scheme_name, fund_type, fund_subtype, amc_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.Isin, b.SchemeName, b.FundType, b.FundSubtype, b.AmcName, now, now)
	if err != nil {
		t.Fatalf("Failed to create test fund: %v", err)
	}

	return model.Fund{
		Isin:        b.Isin,
		SchemeName:  b.SchemeName,
		FundType:    b.FundType,
		FundSubtype: b.FundSubtype,
		AmcName:     b.AmcName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// FactSheetBuilder provides a fluent interface for creating test factsheets.
type FactSheetBuilder struct {
	Isin         string
	FundManager  *string
	Aum          *float64
	ExpenseRatio *float64
	LaunchDate   *time.Time
	ExitLoad     *string
}

// NewFactSheet creates a FactSheetBuilder for the given fund ISIN.
func NewFactSheet(isin string) *FactSheetBuilder {
	return &FactSheetBuilder{
		Isin:        isin,
		FundManager: StrPtr("Test Manager"),
		Aum:         FloatPtr(1000.0),
	}
}

// WithFundManager sets a custom fund manager.
func (b *FactSheetBuilder) WithFundManager(name string) *FactSheetBuilder {
	b.FundManager = &name
	return b
}

// WithAum sets a custom AUM.
func (b *FactSheetBuilder) WithAum(aum float64) *FactSheetBuilder {
	b.Aum = &aum
	return b
}

// WithExpenseRatio sets a custom expense ratio.
func (b *FactSheetBuilder) WithExpenseRatio(ratio float64) *FactSheetBuilder {
	b.ExpenseRatio = &ratio
	return b
}

// WithLaunchDate sets a custom launch date.
func (b *FactSheetBuilder) WithLaunchDate(date time.Time) *FactSheetBuilder {
	b.LaunchDate = &date
	return b
}

// Build creates the factsheet in the database and returns it.
func (b *FactSheetBuilder) Build(t *testing.T, db *sql.DB) model.FactSheet {
	t.Helper()

	now := time.Now().UTC()

	query := `
		INSERT INTO fund_factsheet (isin, fund_manager, aum, expense_ratio, launch_date, exit_load, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.Isin, b.FundManager, b.Aum, b.ExpenseRatio, b.LaunchDate, b.ExitLoad, now)
	if err != nil {
		t.Fatalf("Failed to create test factsheet: %v", err)
	}

	return model.FactSheet{
		Isin:         b.Isin,
		FundManager:  b.FundManager,
		Aum:          b.Aum,
		ExpenseRatio: b.ExpenseRatio,
		LaunchDate:   b.LaunchDate,
		ExitLoad:     b.ExitLoad,
		LastUpdated:  now,
	}
}

// NavRecordBuilder provides a fluent interface for creating NAV history rows.
type NavRecordBuilder struct {
	Isin string
	Date time.Time
	Nav  float64
}

// NewNavRecord creates a NavRecordBuilder for the given fund ISIN.
func NewNavRecord(isin string) *NavRecordBuilder {
	return &NavRecordBuilder{
		Isin: isin,
		Date: Date(2024, 1, 1),
		Nav:  10.0,
	}
}

// WithDate sets a custom valuation date.
func (b *NavRecordBuilder) WithDate(date time.Time) *NavRecordBuilder {
	b.Date = date
	return b
}

// WithNav sets a custom NAV value.
func (b *NavRecordBuilder) WithNav(nav float64) *NavRecordBuilder {
	b.Nav = nav
	return b
}

// Build creates the NAV record in the database and returns it.
func (b *NavRecordBuilder) Build(t *testing.T, db *sql.DB) model.NavRecord {
	t.Helper()

	now := time.Now().UTC()

	result, err := db.Exec(
		`INSERT INTO nav_history (isin, date, nav, last_updated) VALUES (?, ?, ?, ?)`,
		b.Isin, b.Date, b.Nav, now,
	)
	if err != nil {
		t.Fatalf("Failed to create test NAV record: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read NAV record ID: %v", err)
	}

	return model.NavRecord{
		ID:          id,
		Isin:        b.Isin,
		Date:        b.Date,
		Nav:         b.Nav,
		LastUpdated: now,
	}
}

// Convenience functions

// CreateFund creates a fund with the given ISIN and default values.
//
// Example usage:
//
//	fund := testutil.CreateFund(t, db, "INF123456789")
func CreateFund(t *testing.T, db *sql.DB, isin string) model.Fund {
	t.Helper()
	return NewFund().WithIsin(isin).Build(t, db)
}

// CreateFunds creates multiple funds with unique ISINs.
//
// Example usage:
//
//	funds := testutil.CreateFunds(t, db, 5)
//	// Creates 5 funds with auto-generated ISINs
func CreateFunds(t *testing.T, db *sql.DB, count int) []model.Fund {
	t.Helper()

	funds := make([]model.Fund, count)
	for i := 0; i < count; i++ {
		funds[i] = NewFund().Build(t, db)
	}
	return funds
}

// CreateHolding creates a holding row for the given fund ISIN.
func CreateHolding(t *testing.T, db *sql.DB, isin, instrumentName string, percentageToNav float64) model.Holding {
	t.Helper()

	now := time.Now().UTC()

	result, err := db.Exec(
		`INSERT INTO fund_holding (isin, instrument_name, percentage_to_nav, last_updated) VALUES (?, ?, ?, ?)`,
		isin, instrumentName, percentageToNav, now,
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read holding ID: %v", err)
	}

	return model.Holding{
		ID:              id,
		Isin:            isin,
		InstrumentName:  instrumentName,
		PercentageToNav: FloatPtr(percentageToNav),
		LastUpdated:     now,
	}
}
