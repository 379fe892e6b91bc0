package service

import (
	"errors"
	"time"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/model"
	"github.com/fundsetu/mfdata-backend/internal/repository"
)

// FundService handles read access to fund reference data.
type FundService struct {
	fundRepo      *repository.FundRepository
	factsheetRepo *repository.FactSheetRepository
	returnsRepo   *repository.ReturnsRepository
	holdingRepo   *repository.HoldingRepository
	navRepo       *repository.NavRepository
}

// NewFundService creates a new FundService with the provided repository dependencies.
func NewFundService(
	fundRepo *repository.FundRepository,
	factsheetRepo *repository.FactSheetRepository,
	returnsRepo *repository.ReturnsRepository,
	holdingRepo *repository.HoldingRepository,
	navRepo *repository.NavRepository,
) *FundService {
	return &FundService{
		fundRepo:      fundRepo,
		factsheetRepo: factsheetRepo,
		returnsRepo:   returnsRepo,
		holdingRepo:   holdingRepo,
		navRepo:       navRepo,
	}
}

// GetFunds retrieves funds matching the filter.
func (s *FundService) GetFunds(filter repository.FundFilter) ([]model.Fund, error) {
	return s.fundRepo.GetFunds(filter)
}

// GetFund retrieves a single fund by ISIN.
func (s *FundService) GetFund(isin string) (*model.Fund, error) {
	return s.fundRepo.GetFund(isin)
}

// GetFactSheet retrieves the factsheet for a fund.
func (s *FundService) GetFactSheet(isin string) (*model.FactSheet, error) {
	return s.factsheetRepo.GetFactSheet(isin)
}

// GetReturns retrieves the returns record for a fund.
func (s *FundService) GetReturns(isin string) (*model.FundReturns, error) {
	return s.returnsRepo.GetReturns(isin)
}

// GetHoldings retrieves the holdings of a fund.
// Returns apperrors.ErrFundNotFound if the fund does not exist.
func (s *FundService) GetHoldings(isin string) ([]model.Holding, error) {
	if _, err := s.fundRepo.GetFund(isin); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetHoldings(isin)
}

// GetNavHistory retrieves NAV records for a fund, optionally bounded by an
// inclusive date range. Returns apperrors.ErrInvalidDateRange when the start
// date is after the end date.
func (s *FundService) GetNavHistory(isin string, start, end *time.Time) ([]model.NavRecord, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, apperrors.ErrInvalidDateRange
	}
	if _, err := s.fundRepo.GetFund(isin); err != nil {
		return nil, err
	}
	return s.navRepo.GetNavHistory(isin, start, end)
}

// GetFundComplete aggregates the fund with its factsheet, returns, holdings
// and latest NAV. Sections that do not exist come back null rather than
// failing the whole response.
func (s *FundService) GetFundComplete(isin string) (*model.FundComplete, error) {
	fund, err := s.fundRepo.GetFund(isin)
	if err != nil {
		return nil, err
	}

	complete := &model.FundComplete{Fund: *fund}

	factsheet, err := s.factsheetRepo.GetFactSheet(isin)
	if err != nil && !errors.Is(err, apperrors.ErrFactSheetNotFound) {
		return nil, err
	}
	complete.FactSheet = factsheet

	returns, err := s.returnsRepo.GetReturns(isin)
	if err != nil && !errors.Is(err, apperrors.ErrReturnsNotFound) {
		return nil, err
	}
	complete.Returns = returns

	holdings, err := s.holdingRepo.GetHoldings(isin)
	if err != nil {
		return nil, err
	}
	complete.Holdings = holdings

	latestNav, err := s.navRepo.GetLatestNav(isin)
	if err != nil {
		return nil, err
	}
	complete.LatestNav = latestNav

	return complete, nil
}

// GetAmcNames retrieves the distinct AMC names in the system.
func (s *FundService) GetAmcNames() ([]string, error) {
	return s.fundRepo.ListAmcNames()
}
