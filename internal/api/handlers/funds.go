package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fundsetu/mfdata-backend/internal/apperrors"
	"github.com/fundsetu/mfdata-backend/internal/api/response"
	"github.com/fundsetu/mfdata-backend/internal/repository"
	"github.com/fundsetu/mfdata-backend/internal/service"
	"github.com/fundsetu/mfdata-backend/internal/validation"
)

// FundHandler handles fund-related HTTP requests
type FundHandler struct {
	fundService *service.FundService
}

// NewFundHandler creates a new FundHandler
func NewFundHandler(fundService *service.FundService) *FundHandler {
	return &FundHandler{
		fundService: fundService,
	}
}

// GetAllFunds handles GET requests for the fund list.
// Supports filtering via search, amc and fund_type query parameters and
// paging via limit/offset.
//
// Endpoint: GET /api/funds
func (h *FundHandler) GetAllFunds(w http.ResponseWriter, r *http.Request) {
	filter := repository.FundFilter{
		Search:   r.URL.Query().Get("search"),
		AmcName:  r.URL.Query().Get("amc"),
		FundType: r.URL.Query().Get("fund_type"),
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			response.RespondError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			response.RespondError(w, http.StatusBadRequest, "invalid offset", v)
			return
		}
		filter.Offset = offset
	}

	funds, err := h.fundService.GetFunds(filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve funds", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, funds)
}

// GetFund handles GET requests for a single fund.
//
// Endpoint: GET /api/funds/{isin}
func (h *FundHandler) GetFund(w http.ResponseWriter, r *http.Request) {
	isin, ok := h.isinParam(w, r)
	if !ok {
		return
	}

	fund, err := h.fundService.GetFund(isin)
	if err != nil {
		h.respondFundError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, fund)
}

// GetFactSheet handles GET requests for a fund's factsheet.
//
// Endpoint: GET /api/funds/{isin}/factsheet
func (h *FundHandler) GetFactSheet(w http.ResponseWriter, r *http.Request) {
	isin, ok := h.isinParam(w, r)
	if !ok {
		return
	}

	factsheet, err := h.fundService.GetFactSheet(isin)
	if err != nil {
		if errors.Is(err, apperrors.ErrFactSheetNotFound) {
			response.RespondError(w, http.StatusNotFound, "factsheet not found", isin)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve factsheet", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, factsheet)
}

// GetReturns handles GET requests for a fund's returns.
//
// Endpoint: GET /api/funds/{isin}/returns
func (h *FundHandler) GetReturns(w http.ResponseWriter, r *http.Request) {
	isin, ok := h.isinParam(w, r)
	if !ok {
		return
	}

	returns, err := h.fundService.GetReturns(isin)
	if err != nil {
		if errors.Is(err, apperrors.ErrReturnsNotFound) {
			response.RespondError(w, http.StatusNotFound, "returns not found", isin)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve returns", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, returns)
}

// GetHoldings handles GET requests for a fund's holdings.
//
// Endpoint: GET /api/funds/{isin}/holdings
func (h *FundHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	isin, ok := h.isinParam(w, r)
	if !ok {
		return
	}

	holdings, err := h.fundService.GetHoldings(isin)
	if err != nil {
		h.respondFundError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, holdings)
}

// GetNavHistory handles GET requests for a fund's NAV history.
// Accepts optional start_date and end_date query parameters (inclusive).
//
// Endpoint: GET /api/funds/{isin}/nav
func (h *FundHandler) GetNavHistory(w http.ResponseWriter, r *http.Request) {
	isin, ok := h.isinParam(w, r)
	if !ok {
		return
	}

	var start, end *time.Time
	if v := r.URL.Query().Get("start_date"); v != "" {
		parsed, err := validation.ParseDate(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid start_date", v)
			return
		}
		start = &parsed
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		parsed, err := validation.ParseDate(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid end_date", v)
			return
		}
		end = &parsed
	}

	records, err := h.fundService.GetNavHistory(isin, start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, "invalid date range", "start_date is after end_date")
			return
		}
		h.respondFundError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// GetFundComplete handles GET requests for a fund with all related data.
//
// Endpoint: GET /api/funds/{isin}/complete
func (h *FundHandler) GetFundComplete(w http.ResponseWriter, r *http.Request) {
	isin, ok := h.isinParam(w, r)
	if !ok {
		return
	}

	complete, err := h.fundService.GetFundComplete(isin)
	if err != nil {
		h.respondFundError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, complete)
}

// GetAmcNames handles GET requests for the distinct AMC names.
//
// Endpoint: GET /api/funds/amcs
func (h *FundHandler) GetAmcNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.fundService.GetAmcNames()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve AMC names", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, names)
}

// isinParam extracts and validates the isin path parameter, writing a 400
// response when it is malformed.
func (h *FundHandler) isinParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	isin := chi.URLParam(r, "isin")
	if err := validation.ValidateIsin(isin); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid ISIN", isin)
		return "", false
	}
	return isin, true
}

func (h *FundHandler) respondFundError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrFundNotFound) {
		response.RespondError(w, http.StatusNotFound, "fund not found", nil)
		return
	}
	response.RespondError(w, http.StatusInternalServerError, "failed to retrieve fund data", err.Error())
}
