package service_test

import (
	"errors"
	"testing"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/testutil"
)

// TestFundService_GetHoldings tests holdings retrieval with the fund check.
func TestFundService_GetHoldings(t *testing.T) {
	t.Run("returns holdings ordered by weight", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)

		fund := testutil.CreateFund(t, db, "TEST001")
		testutil.CreateHolding(t, db, fund.Isin, "Small Position", 1.5)
		testutil.CreateHolding(t, db, fund.Isin, "Large Position", 8.0)

		holdings, err := svc.GetHoldings(fund.Isin)

		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(holdings) != 2 {
			t.Fatalf("Expected 2 holdings, got %d", len(holdings))
		}
		if holdings[0].InstrumentName != "Large Position" {
			t.Errorf("Expected largest position first, got %q", holdings[0].InstrumentName)
		}
	})

	t.Run("empty portfolio yields empty slice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)
		testutil.CreateFund(t, db, "TEST001")

		holdings, err := svc.GetHoldings("TEST001")

		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(holdings) != 0 {
			t.Errorf("Expected empty slice, got %d holdings", len(holdings))
		}
	})

	t.Run("unknown fund returns ErrFundNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)

		_, err := svc.GetHoldings("TEST999")

		if !errors.Is(err, apperrors.ErrFundNotFound) {
			t.Errorf("Expected ErrFundNotFound, got %v", err)
		}
	})
}

// TestFundService_GetNavHistory tests date-range handling.
func TestFundService_GetNavHistory(t *testing.T) {
	t.Run("rejects inverted range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)
		testutil.CreateFund(t, db, "TEST001")

		start := testutil.Date(2024, 3, 15)
		end := testutil.Date(2024, 3, 10)
		_, err := svc.GetNavHistory("TEST001", &start, &end)

		if !errors.Is(err, apperrors.ErrInvalidDateRange) {
			t.Errorf("Expected ErrInvalidDateRange, got %v", err)
		}
	})

	t.Run("unknown fund returns ErrFundNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)

		_, err := svc.GetNavHistory("TEST999", nil, nil)

		if !errors.Is(err, apperrors.ErrFundNotFound) {
			t.Errorf("Expected ErrFundNotFound, got %v", err)
		}
	})

	t.Run("returns records within range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)
		fund := testutil.CreateFund(t, db, "TEST001")
		testutil.NewNavRecord(fund.Isin).WithDate(testutil.Date(2024, 3, 12)).Build(t, db)
		testutil.NewNavRecord(fund.Isin).WithDate(testutil.Date(2024, 3, 20)).Build(t, db)

		start := testutil.Date(2024, 3, 10)
		end := testutil.Date(2024, 3, 15)
		records, err := svc.GetNavHistory(fund.Isin, &start, &end)

		if err != nil {
			t.Fatalf("GetNavHistory() returned unexpected error: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("Expected 1 record in range, got %d", len(records))
		}
	})
}

// TestFundService_GetFundComplete tests the aggregated view.
//
// WHY: The complete endpoint must degrade gracefully: a fund imported
// without returns or NAV data is still a valid fund, not a 500.
func TestFundService_GetFundComplete(t *testing.T) {
	t.Run("missing sections come back null, not as errors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)
		fund := testutil.CreateFund(t, db, "TEST001")

		complete, err := svc.GetFundComplete(fund.Isin)

		if err != nil {
			t.Fatalf("GetFundComplete() returned unexpected error: %v", err)
		}
		if complete.Fund.Isin != fund.Isin {
			t.Errorf("Fund.Isin = %q, want %q", complete.Fund.Isin, fund.Isin)
		}
		if complete.FactSheet != nil || complete.Returns != nil || complete.LatestNav != nil {
			t.Error("Expected missing sections to be nil")
		}
		if len(complete.Holdings) != 0 {
			t.Errorf("Expected no holdings, got %d", len(complete.Holdings))
		}
	})

	t.Run("aggregates all sections", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)
		fund := testutil.CreateFund(t, db, "TEST001")
		testutil.NewFactSheet(fund.Isin).WithAum(1500).Build(t, db)
		testutil.CreateHolding(t, db, fund.Isin, "Acme Industries", 4.5)
		testutil.NewNavRecord(fund.Isin).WithDate(testutil.Date(2024, 3, 14)).WithNav(24.8).Build(t, db)
		testutil.NewNavRecord(fund.Isin).WithDate(testutil.Date(2024, 3, 15)).WithNav(25.0).Build(t, db)

		complete, err := svc.GetFundComplete(fund.Isin)

		if err != nil {
			t.Fatalf("GetFundComplete() returned unexpected error: %v", err)
		}
		if complete.FactSheet == nil || complete.FactSheet.Aum == nil || *complete.FactSheet.Aum != 1500 {
			t.Errorf("FactSheet = %+v, want Aum 1500", complete.FactSheet)
		}
		if len(complete.Holdings) != 1 {
			t.Errorf("Expected 1 holding, got %d", len(complete.Holdings))
		}
		if complete.LatestNav == nil || complete.LatestNav.Nav != 25.0 {
			t.Errorf("LatestNav = %+v, want 25.0", complete.LatestNav)
		}
	})

	t.Run("unknown fund returns ErrFundNotFound", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundService(t, db)

		_, err := svc.GetFundComplete("TEST999")

		if !errors.Is(err, apperrors.ErrFundNotFound) {
			t.Errorf("Expected ErrFundNotFound, got %v", err)
		}
	})
}
