package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
	"github.com/ycliang/portfolio-performance-engine/internal/api/response"
	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
	"github.com/ycliang/portfolio-performance-engine/internal/validation"
)

// SplitHandler handles HTTP requests for stock split endpoints. Splits
// are global registry entries, not per-user data.
type SplitHandler struct {
	splitService *service.SplitService
}

// NewSplitHandler creates a new SplitHandler with the provided service dependency.
func NewSplitHandler(splitService *service.SplitService) *SplitHandler {
	return &SplitHandler{
		splitService: splitService,
	}
}

// Splits handles GET requests to list all registered stock splits.
//
// Endpoint: GET /api/split
// Response: 200 OK with array of StockSplit
func (h *SplitHandler) Splits(w http.ResponseWriter, _ *http.Request) {
	splits, err := h.splitService.GetSplits()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSplits.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, splits)
}

// CreateSplit handles POST requests to register a stock split.
// Registered splits apply to all existing and future transactions for
// the symbol/market dated on or before the effective date.
//
// Endpoint: POST /api/split
// Request Body: CreateSplitRequest (symbol, market, effectiveDate, ratio)
// Response: 201 Created with StockSplit
// Error: 400 Bad Request if validation fails
// Error: 409 Conflict if a split for the same symbol/market/date exists
func (h *SplitHandler) CreateSplit(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateSplitRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateSplit(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	market, err := model.ParseMarket(req.Market)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	split, err := h.splitService.RegisterSplit(req.Symbol, market, effectiveDate, req.Ratio)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidSplitRatio), errors.Is(err, apperrors.ErrInvalidTicker):
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		case errors.Is(err, apperrors.ErrDuplicateEntry):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to register split", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, split)
}

// DeleteSplit handles DELETE requests to remove a registered split.
// Split adjustment is derived on read, so deleting a split immediately
// un-adjusts all affected transactions.
//
// Endpoint: DELETE /api/split/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the split does not exist
func (h *SplitHandler) DeleteSplit(w http.ResponseWriter, r *http.Request) {
	splitID := chi.URLParam(r, "uuid")

	if err := h.splitService.DeleteSplit(splitID); err != nil {
		if errors.Is(err, apperrors.ErrSplitNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSplitNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete split", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
