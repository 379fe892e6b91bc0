package importer_test

import (
	"errors"
	"testing"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/importer"
	"github.com/fundsetu/mfdata-backend/internal/repository"
	"github.com/fundsetu/mfdata-backend/internal/sourcefile"
	"github.com/fundsetu/mfdata-backend/internal/testutil"
)

// table builds a sourcefile.Table from literal rows.
func table(rows ...sourcefile.Row) *sourcefile.Table {
	return &sourcefile.Table{Rows: rows}
}

func factsheetRow(isin, scheme string) sourcefile.Row {
	return sourcefile.Row{
		"ISIN":        isin,
		"Scheme Name": scheme,
		"Fund Type":   "Equity",
		"AMC Name":    "Acme AMC",
	}
}

// TestImportFactsheet tests fund and factsheet ingestion.
//
// WHY: Factsheet import is the only path that creates funds; its counting,
// skipping and partial-update behavior define what every downstream kind
// can rely on.
func TestImportFactsheet(t *testing.T) {
	opts := importer.Options{BatchSize: 100}

	t.Run("creates funds and factsheets, skips unusable identifiers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		stats, err := im.ImportFactsheet(table(
			factsheetRow("TEST001", "Fund One"),
			factsheetRow("-", "Placeholder Row"),
			factsheetRow("TEST003", "Fund Three"),
		), opts)

		if err != nil {
			t.Fatalf("ImportFactsheet() returned unexpected error: %v", err)
		}
		if stats.RowsSeen != 3 {
			t.Errorf("RowsSeen = %d, want 3", stats.RowsSeen)
		}
		if stats.RowsAccepted != 2 {
			t.Errorf("RowsAccepted = %d, want 2", stats.RowsAccepted)
		}
		if stats.SkippedByReason[string(importer.SkipInvalidIsin)] != 1 {
			t.Errorf("invalid_isin skips = %d, want 1", stats.SkippedByReason[string(importer.SkipInvalidIsin)])
		}
		// Each accepted row creates a fund and a factsheet.
		if stats.EntitiesCreated != 4 {
			t.Errorf("EntitiesCreated = %d, want 4", stats.EntitiesCreated)
		}
		if stats.BatchesCommitted != 1 {
			t.Errorf("BatchesCommitted = %d, want 1", stats.BatchesCommitted)
		}

		funds := repository.NewFundRepository(db)
		if _, err := funds.GetFund("TEST001"); err != nil {
			t.Errorf("Expected fund TEST001 to exist: %v", err)
		}
		if _, err := funds.GetFund("TEST003"); err != nil {
			t.Errorf("Expected fund TEST003 to exist: %v", err)
		}
	})

	t.Run("re-import counts updates, not creates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		file := table(factsheetRow("TEST001", "Fund One"))
		if _, err := im.ImportFactsheet(file, opts); err != nil {
			t.Fatalf("First import failed: %v", err)
		}

		stats, err := im.ImportFactsheet(file, opts)

		if err != nil {
			t.Fatalf("Second import failed: %v", err)
		}
		if stats.EntitiesCreated != 0 {
			t.Errorf("EntitiesCreated = %d, want 0 on re-import", stats.EntitiesCreated)
		}
		if stats.EntitiesUpdated != 2 {
			t.Errorf("EntitiesUpdated = %d, want 2 on re-import", stats.EntitiesUpdated)
		}
	})

	t.Run("duplicate isin in one file merges and counts as update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		full := factsheetRow("TEST001", "Fund One")
		full["Fund Manager"] = "J. Doe"
		full["AUM"] = "1500"

		blank := factsheetRow("", "No Identifier Row")

		// Later occurrence of the same fund, carrying only a fresh AUM.
		revised := factsheetRow("TEST001", "Fund One")
		revised["AUM"] = "1600"

		stats, err := im.ImportFactsheet(table(full, blank, revised), opts)

		if err != nil {
			t.Fatalf("ImportFactsheet() returned unexpected error: %v", err)
		}
		if stats.RowsSeen != 3 || stats.RowsAccepted != 2 {
			t.Errorf("Rows = %d seen / %d accepted, want 3/2", stats.RowsSeen, stats.RowsAccepted)
		}
		if stats.SkippedByReason[string(importer.SkipInvalidIsin)] != 1 {
			t.Errorf("invalid_isin skips = %d, want 1", stats.SkippedByReason[string(importer.SkipInvalidIsin)])
		}
		// First occurrence creates fund + factsheet, the duplicate updates both.
		if stats.EntitiesCreated != 2 || stats.EntitiesUpdated != 2 {
			t.Errorf("Expected (created=2, updated=2), got (%d, %d)",
				stats.EntitiesCreated, stats.EntitiesUpdated)
		}

		funds, err := repository.NewFundRepository(db).GetFunds(repository.FundFilter{})
		if err != nil {
			t.Fatalf("GetFunds() failed: %v", err)
		}
		if len(funds) != 1 {
			t.Errorf("Expected 1 fund row, got %d", len(funds))
		}

		// The duplicate's AUM wins; its omitted manager is preserved.
		sheet, err := repository.NewFactSheetRepository(db).GetFactSheet("TEST001")
		if err != nil {
			t.Fatalf("GetFactSheet() failed: %v", err)
		}
		if sheet.Aum == nil || *sheet.Aum != 1600 {
			t.Errorf("Aum = %v, want 1600", sheet.Aum)
		}
		if sheet.FundManager == nil || *sheet.FundManager != "J. Doe" {
			t.Errorf("FundManager = %v, want preserved J. Doe", sheet.FundManager)
		}
	})

	t.Run("absent fields never overwrite stored values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		full := factsheetRow("TEST001", "Fund One")
		full["Fund Manager"] = "J. Doe"
		full["AUM"] = "1500"
		if _, err := im.ImportFactsheet(table(full), opts); err != nil {
			t.Fatalf("First import failed: %v", err)
		}

		// Second file updates AUM but omits the manager.
		partial := factsheetRow("TEST001", "Fund One")
		partial["AUM"] = "1600"
		if _, err := im.ImportFactsheet(table(partial), opts); err != nil {
			t.Fatalf("Second import failed: %v", err)
		}

		sheet, err := repository.NewFactSheetRepository(db).GetFactSheet("TEST001")
		if err != nil {
			t.Fatalf("GetFactSheet() failed: %v", err)
		}
		if sheet.Aum == nil || *sheet.Aum != 1600 {
			t.Errorf("Aum = %v, want 1600", sheet.Aum)
		}
		if sheet.FundManager == nil || *sheet.FundManager != "J. Doe" {
			t.Errorf("FundManager = %v, want preserved value J. Doe", sheet.FundManager)
		}
	})

	t.Run("clear existing resets only the file's funds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		keep := factsheetRow("TEST001", "Untouched Fund")
		keep["Fund Manager"] = "J. Doe"
		reset := factsheetRow("TEST002", "Reset Fund")
		reset["Fund Manager"] = "A. Smith"
		if _, err := im.ImportFactsheet(table(keep, reset), opts); err != nil {
			t.Fatalf("Seed import failed: %v", err)
		}

		// Re-import only TEST002, without the manager, clearing first.
		cleared := importer.Options{BatchSize: 100, ClearExisting: true}
		if _, err := im.ImportFactsheet(table(factsheetRow("TEST002", "Reset Fund")), cleared); err != nil {
			t.Fatalf("Clearing import failed: %v", err)
		}

		sheets := repository.NewFactSheetRepository(db)

		// The clear dropped the old TEST002 row, so the omitted manager is
		// gone rather than preserved.
		resetSheet, err := sheets.GetFactSheet("TEST002")
		if err != nil {
			t.Fatalf("GetFactSheet(TEST002) failed: %v", err)
		}
		if resetSheet.FundManager != nil {
			t.Errorf("Expected cleared fund to lose its manager, got %v", *resetSheet.FundManager)
		}

		// TEST001 was not in the file and must be untouched.
		keptSheet, err := sheets.GetFactSheet("TEST001")
		if err != nil {
			t.Fatalf("GetFactSheet(TEST001) failed: %v", err)
		}
		if keptSheet.FundManager == nil || *keptSheet.FundManager != "J. Doe" {
			t.Errorf("Expected TEST001 to keep its manager, got %v", keptSheet.FundManager)
		}
	})

	t.Run("rejects batch size below one", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		_, err := im.ImportFactsheet(table(factsheetRow("TEST001", "Fund One")), importer.Options{})

		if !errors.Is(err, apperrors.ErrInvalidBatchSize) {
			t.Errorf("Expected ErrInvalidBatchSize, got %v", err)
		}
	})
}

// TestImportReturns tests trailing-return ingestion and the referential rule.
func TestImportReturns(t *testing.T) {
	opts := importer.Options{BatchSize: 100}

	t.Run("skips rows for unknown funds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")

		stats, err := im.ImportReturns(table(
			sourcefile.Row{"ISIN": "TEST001", "1Y Return": "12.5"},
			sourcefile.Row{"ISIN": "TEST999", "1Y Return": "9.9"},
		), opts)

		if err != nil {
			t.Fatalf("ImportReturns() returned unexpected error: %v", err)
		}
		if stats.RowsAccepted != 1 {
			t.Errorf("RowsAccepted = %d, want 1", stats.RowsAccepted)
		}
		if stats.SkippedByReason[string(importer.SkipNoFund)] != 1 {
			t.Errorf("no_fund skips = %d, want 1", stats.SkippedByReason[string(importer.SkipNoFund)])
		}

		returns, err := repository.NewReturnsRepository(db).GetReturns("TEST001")
		if err != nil {
			t.Fatalf("GetReturns() failed: %v", err)
		}
		if returns.Return1Y == nil || *returns.Return1Y != 12.5 {
			t.Errorf("Return1Y = %v, want 12.5", returns.Return1Y)
		}
	})

	t.Run("upsert preserves horizons the file omits", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")

		first := table(sourcefile.Row{"ISIN": "TEST001", "1Y Return": "12.5", "3Y Return": "40.0"})
		if _, err := im.ImportReturns(first, opts); err != nil {
			t.Fatalf("First import failed: %v", err)
		}

		second := table(sourcefile.Row{"ISIN": "TEST001", "1Y Return": "13.0"})
		stats, err := im.ImportReturns(second, opts)
		if err != nil {
			t.Fatalf("Second import failed: %v", err)
		}
		if stats.EntitiesUpdated != 1 || stats.EntitiesCreated != 0 {
			t.Errorf("Expected (created=0, updated=1), got (%d, %d)",
				stats.EntitiesCreated, stats.EntitiesUpdated)
		}

		returns, err := repository.NewReturnsRepository(db).GetReturns("TEST001")
		if err != nil {
			t.Fatalf("GetReturns() failed: %v", err)
		}
		if returns.Return1Y == nil || *returns.Return1Y != 13.0 {
			t.Errorf("Return1Y = %v, want 13.0", returns.Return1Y)
		}
		if returns.Return3Y == nil || *returns.Return3Y != 40.0 {
			t.Errorf("Return3Y = %v, want preserved 40.0", returns.Return3Y)
		}
	})
}

// TestImportHoldings tests holdings ingestion.
//
// WHY: Holdings carry a surrogate key, so re-import without clearing
// duplicates rows. The clear scope is the whole table, which is the
// documented trade-off for full-portfolio refreshes.
func TestImportHoldings(t *testing.T) {
	opts := importer.Options{BatchSize: 100}

	holdingRow := func(isin, instrument string) sourcefile.Row {
		return sourcefile.Row{
			"Scheme ISIN":        isin,
			"Name of Instrument": instrument,
			"% to Net Assets":    "5.0",
		}
	}

	t.Run("inserts accepted rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")

		stats, err := im.ImportHoldings(table(
			holdingRow("TEST001", "Acme Industries"),
			holdingRow("TEST001", "Globex Corp"),
			holdingRow("TEST999", "Orphan Instrument"),
		), opts)

		if err != nil {
			t.Fatalf("ImportHoldings() returned unexpected error: %v", err)
		}
		if stats.EntitiesCreated != 2 {
			t.Errorf("EntitiesCreated = %d, want 2", stats.EntitiesCreated)
		}
		if stats.SkippedByReason[string(importer.SkipNoFund)] != 1 {
			t.Errorf("no_fund skips = %d, want 1", stats.SkippedByReason[string(importer.SkipNoFund)])
		}

		holdings, err := repository.NewHoldingRepository(db).GetHoldings("TEST001")
		if err != nil {
			t.Fatalf("GetHoldings() failed: %v", err)
		}
		if len(holdings) != 2 {
			t.Errorf("Expected 2 holdings, got %d", len(holdings))
		}
	})

	t.Run("re-import without clearing duplicates rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")

		file := table(holdingRow("TEST001", "Acme Industries"))
		for i := 0; i < 2; i++ {
			if _, err := im.ImportHoldings(file, opts); err != nil {
				t.Fatalf("Import %d failed: %v", i+1, err)
			}
		}

		holdings, err := repository.NewHoldingRepository(db).GetHoldings("TEST001")
		if err != nil {
			t.Fatalf("GetHoldings() failed: %v", err)
		}
		if len(holdings) != 2 {
			t.Errorf("Expected duplicated holding (2 rows), got %d", len(holdings))
		}
	})

	t.Run("clear existing wipes the whole table", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")
		testutil.CreateFund(t, db, "TEST002")
		testutil.CreateHolding(t, db, "TEST002", "Stale Instrument", 3.0)

		cleared := importer.Options{BatchSize: 100, ClearExisting: true}
		if _, err := im.ImportHoldings(table(holdingRow("TEST001", "Acme Industries")), cleared); err != nil {
			t.Fatalf("ImportHoldings() returned unexpected error: %v", err)
		}

		repo := repository.NewHoldingRepository(db)
		otherFund, err := repo.GetHoldings("TEST002")
		if err != nil {
			t.Fatalf("GetHoldings(TEST002) failed: %v", err)
		}
		if len(otherFund) != 0 {
			t.Errorf("Expected table-wide clear to drop TEST002 holdings, found %d", len(otherFund))
		}
	})
}

// TestImportNav tests NAV history ingestion.
func TestImportNav(t *testing.T) {
	opts := importer.Options{BatchSize: 100}

	t.Run("classifies each rejection under its own reason", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")

		stats, err := im.ImportNav(table(
			sourcefile.Row{"ISIN": "TEST001", "Date": "2024-03-15", "NAV": "25.43"},
			sourcefile.Row{"ISIN": "TEST001", "Date": "not-a-date", "NAV": "25.43"},
			sourcefile.Row{"ISIN": "TEST001", "Date": "2024-03-16", "NAV": "0"},
			sourcefile.Row{"ISIN": "TEST999", "Date": "2024-03-15", "NAV": "10.0"},
			sourcefile.Row{"ISIN": "-", "Date": "2024-03-15", "NAV": "10.0"},
		), opts)

		if err != nil {
			t.Fatalf("ImportNav() returned unexpected error: %v", err)
		}
		if stats.RowsAccepted != 1 {
			t.Errorf("RowsAccepted = %d, want 1", stats.RowsAccepted)
		}
		expected := map[string]int{
			string(importer.SkipInvalidDate): 1,
			string(importer.SkipInvalidNav):  1,
			string(importer.SkipNoFund):      1,
			string(importer.SkipInvalidIsin): 1,
		}
		for reason, count := range expected {
			if stats.SkippedByReason[reason] != count {
				t.Errorf("skips[%s] = %d, want %d", reason, stats.SkippedByReason[reason], count)
			}
		}
	})

	t.Run("accepted rows land on the time series", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)
		testutil.CreateFund(t, db, "TEST001")

		_, err := im.ImportNav(table(
			sourcefile.Row{"ISIN": "TEST001", "Date": "2024-03-15", "NAV": "25.43"},
			sourcefile.Row{"ISIN": "TEST001", "Date": "2024-03-16", "NAV": "25.51"},
		), opts)
		if err != nil {
			t.Fatalf("ImportNav() returned unexpected error: %v", err)
		}

		records, err := repository.NewNavRepository(db).GetNavHistory("TEST001", nil, nil)
		if err != nil {
			t.Fatalf("GetNavHistory() failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("Expected 2 NAV records, got %d", len(records))
		}
	})
}

// TestImportAll tests the combined run.
//
// WHY: The fixed kind order is what lets a NAV file reference funds created
// by the factsheet file of the same run.
func TestImportAll(t *testing.T) {
	t.Run("later kinds see funds created earlier in the run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		report, err := im.ImportAll(map[importer.Kind]*sourcefile.Table{
			importer.KindFactsheet: table(factsheetRow("TEST001", "Fund One")),
			importer.KindNav: table(
				sourcefile.Row{"ISIN": "TEST001", "Date": "2024-03-15", "NAV": "25.43"},
			),
		}, importer.Options{BatchSize: 100})

		if err != nil {
			t.Fatalf("ImportAll() returned unexpected error: %v", err)
		}
		if report.Factsheet == nil || report.Factsheet.RowsAccepted != 1 {
			t.Errorf("Factsheet stats = %+v, want 1 accepted", report.Factsheet)
		}
		if report.Nav == nil || report.Nav.RowsAccepted != 1 {
			t.Errorf("Nav stats = %+v, want 1 accepted row referencing the new fund", report.Nav)
		}
		if report.Holdings != nil || report.Returns != nil {
			t.Error("Expected nil stats for kinds without files")
		}
	})

	t.Run("invalid batch size stops at the first kind", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		im := testutil.NewTestImporter(t, db)

		report, err := im.ImportAll(map[importer.Kind]*sourcefile.Table{
			importer.KindFactsheet: table(factsheetRow("TEST001", "Fund One")),
			importer.KindNav:       table(sourcefile.Row{"ISIN": "TEST001", "Date": "2024-03-15", "NAV": "25.43"}),
		}, importer.Options{})

		if !errors.Is(err, apperrors.ErrInvalidBatchSize) {
			t.Fatalf("Expected ErrInvalidBatchSize, got %v", err)
		}
		if report.Factsheet == nil {
			t.Error("Expected the failing kind's stats to be kept on the report")
		}
		if report.Nav != nil {
			t.Error("Expected the run to stop before the NAV kind")
		}
	})
}
