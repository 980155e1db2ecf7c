package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
	"github.com/ycliang/portfolio-performance-engine/internal/api/response"
	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
	"github.com/ycliang/portfolio-performance-engine/internal/validation"
)

// MarketDataHandler handles HTTP requests for the historical
// market-data cache: lazy lookups and manual entries.
type MarketDataHandler struct {
	histService     *service.HistoricalDataService
	providerService *service.ProviderConfigService
}

// NewMarketDataHandler creates a new MarketDataHandler with the provided service dependencies.
func NewMarketDataHandler(histService *service.HistoricalDataService, providerService *service.ProviderConfigService) *MarketDataHandler {
	return &MarketDataHandler{
		histService:     histService,
		providerService: providerService,
	}
}

// YearEndPrice handles GET requests for a ticker's year-end closing price.
// Served from the cache when present, otherwise fetched from the market
// provider for the ticker's market and persisted. An unresolvable price
// is reported as resolved=false rather than an error.
//
// Endpoint: GET /api/marketdata/year-end-price?ticker=&market=&year=
// Response: 200 OK with Resolution
// Error: 400 Bad Request if a parameter is missing or malformed
func (h *MarketDataHandler) YearEndPrice(w http.ResponseWriter, r *http.Request) {
	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTicker.Error(), "")
		return
	}

	year, err := parseYearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidYear.Error(), err.Error())
		return
	}

	market := model.MarketForTicker(ticker)
	if raw := r.URL.Query().Get("market"); raw != "" {
		market, err = model.ParseMarket(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid market", err.Error())
			return
		}
	}

	resolution, err := h.histService.GetOrFetchYearEndPrice(r.Context(), ticker, market, year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to resolve year-end price", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, resolution)
}

// YearEndRate handles GET requests for a currency pair's year-end rate.
//
// Endpoint: GET /api/marketdata/year-end-rate?from=&to=&year=
// Response: 200 OK with Resolution
func (h *MarketDataHandler) YearEndRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), "")
		return
	}

	year, err := parseYearParam(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidYear.Error(), err.Error())
		return
	}

	resolution, err := h.histService.GetOrFetchYearEndRate(r.Context(), from, to, year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to resolve year-end rate", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, resolution)
}

// TransactionRate handles GET requests for a currency pair's rate on a
// specific date.
//
// Endpoint: GET /api/marketdata/transaction-rate?from=&to=&date=
// Response: 200 OK with Resolution
func (h *MarketDataHandler) TransactionRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCurrency.Error(), "")
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil || date.IsZero() {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDate.Error(), "")
		return
	}

	resolution, err := h.histService.GetOrFetchTransactionRate(r.Context(), from, to, date)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to resolve transaction rate", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, resolution)
}

// SaveYearEndPrice handles POST requests to record a manual year-end
// price. The cache is append-only: saving over an existing key returns
// 409 Conflict.
//
// Endpoint: POST /api/marketdata/year-end-price
// Request Body: SaveYearEndPriceRequest
// Response: 201 Created with HistoricalYearEndData
// Error: 409 Conflict if the cache key is already populated
func (h *MarketDataHandler) SaveYearEndPrice(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveYearEndPriceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSaveYearEndPrice(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	actualDate, err := time.Parse("2006-01-02", req.ActualDate)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, err := h.histService.SaveManualYearEndPrice(req.Ticker, req.Currency, req.Year, req.Value, actualDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCacheEntryExists):
			response.RespondError(w, http.StatusConflict, apperrors.ErrCacheEntryExists.Error(), "")
		case errors.Is(err, apperrors.ErrInvalidRate):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRate.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveCacheEntry.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// SaveYearEndRate handles POST requests to record a manual year-end
// exchange rate.
//
// Endpoint: POST /api/marketdata/year-end-rate
// Request Body: SaveYearEndRateRequest
// Response: 201 Created with HistoricalYearEndData
// Error: 409 Conflict if the cache key is already populated
func (h *MarketDataHandler) SaveYearEndRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveYearEndRateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSaveYearEndRate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	actualDate, err := time.Parse("2006-01-02", req.ActualDate)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, err := h.histService.SaveManualYearEndRate(req.From, req.To, req.Year, req.Value, actualDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCacheEntryExists):
			response.RespondError(w, http.StatusConflict, apperrors.ErrCacheEntryExists.Error(), "")
		case errors.Is(err, apperrors.ErrInvalidRate):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRate.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveCacheEntry.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// SaveTransactionRate handles POST requests to record a manual
// transaction-date exchange rate.
//
// Endpoint: POST /api/marketdata/transaction-rate
// Request Body: SaveTransactionRateRequest
// Response: 201 Created with HistoricalExchangeRate
// Error: 409 Conflict if the cache key is already populated
func (h *MarketDataHandler) SaveTransactionRate(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveTransactionRateRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSaveTransactionRate(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	actualDate, err := time.Parse("2006-01-02", req.ActualDate)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry, err := h.histService.SaveManualTransactionRate(req.From, req.To, date, req.Rate, actualDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCacheEntryExists):
			response.RespondError(w, http.StatusConflict, apperrors.ErrCacheEntryExists.Error(), "")
		case errors.Is(err, apperrors.ErrInvalidRate):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRate.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSaveCacheEntry.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}

// SaveProviderToken handles POST requests to store an encrypted
// provider API token. Guarded by the internal API key middleware.
//
// Endpoint: POST /api/internal/provider-token
// Request Body: SaveProviderTokenRequest
// Response: 204 No Content
func (h *MarketDataHandler) SaveProviderToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveProviderTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Provider == "" || req.Token == "" {
		response.RespondError(w, http.StatusBadRequest, "provider and token are required", "")
		return
	}

	if err := h.providerService.SaveToken(model.PriceSource(req.Provider), req.Token, req.Enabled); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to save provider token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
