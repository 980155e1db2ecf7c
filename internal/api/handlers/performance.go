package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ycliang/portfolio-performance-engine/internal/api/response"
	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
)

// PerformanceHandler handles HTTP requests for return calculations.
type PerformanceHandler struct {
	performanceService *service.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler with the provided service dependency.
func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
	}
}

// YearPerformance handles GET requests for a portfolio's calendar-year
// returns. Missing historical inputs never fail the calculation; they
// are reported in the missingPrices list with isComplete=false.
//
// Endpoint: GET /api/portfolio/{uuid}/performance?year=
// Response: 200 OK with YearPerformance
// Error: 400 Bad Request if the year parameter is missing or malformed
// Error: 404 Not Found if portfolio not found or owned by another user
func (h *PerformanceHandler) YearPerformance(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	year, err := parseYearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidYear.Error(), err.Error())
		return
	}

	performance, err := h.performanceService.CalculateYearPerformance(r.Context(), userID(r), portfolioID, year)
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculateReturns.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, performance)
}

// AggregatePerformance handles GET requests for calendar-year returns
// across all of the user's portfolios, grouped by home currency.
//
// Endpoint: GET /api/performance/aggregate?year=
// Response: 200 OK with AggregatePerformance
// Error: 400 Bad Request if the year parameter is missing or malformed
func (h *PerformanceHandler) AggregatePerformance(w http.ResponseWriter, r *http.Request) {
	year, err := parseYearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidYear.Error(), err.Error())
		return
	}

	performance, err := h.performanceService.CalculateAggregatePerformance(r.Context(), userID(r), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculateReturns.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, performance)
}

// XIRR handles GET requests for a portfolio's money-weighted annualized
// return over its full cash-flow history. Transactions whose exchange
// rate cannot be auto-filled are excluded from the series and listed in
// missingExchangeRates.
//
// Endpoint: GET /api/portfolio/{uuid}/xirr?asOf=
// Response: 200 OK with XIRRResult
// Error: 400 Bad Request if the asOf parameter is malformed
// Error: 404 Not Found if portfolio not found or owned by another user
func (h *PerformanceHandler) XIRR(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	asOf, err := parseDateParam(r, "asOf")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), err.Error())
		return
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	result, err := h.performanceService.CalculateXIRR(r.Context(), userID(r), portfolioID, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculateReturns.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
