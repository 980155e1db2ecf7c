package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
	"github.com/ycliang/portfolio-performance-engine/internal/api/response"
	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
	"github.com/ycliang/portfolio-performance-engine/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
	snapshotService    *service.SnapshotService
	portfolioService   *service.PortfolioService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependencies.
func NewTransactionHandler(
	transactionService *service.TransactionService,
	snapshotService *service.SnapshotService,
	portfolioService *service.PortfolioService,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		snapshotService:    snapshotService,
		portfolioService:   portfolioService,
	}
}

// TransactionsPerPortfolio handles GET requests to retrieve transactions for a portfolio.
// Supports optional from/to date filters (YYYY-MM-DD).
//
// Endpoint: GET /api/portfolio/{uuid}/transactions?from=&to=
// Response: 200 OK with array of StockTransaction
// Error: 400 Bad Request if a date filter is malformed or the range is inverted
// Error: 404 Not Found if portfolio not found or owned by another user
func (h *TransactionHandler) TransactionsPerPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	from, err := parseDateParam(r, "from")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}

	transactions, err := h.transactionService.GetTransactions(userID(r), portfolioID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
		case errors.Is(err, apperrors.ErrInvalidDateRange):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests to record a stock transaction.
// Cash-flow transactions also get a portfolio snapshot recorded.
//
// Endpoint: POST /api/portfolio/{uuid}/transactions
// Request Body: CreateTransactionRequest
// Response: 201 Created with StockTransaction
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if portfolio not found or owned by another user
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	market := model.MarketForTicker(req.Ticker)
	if strings.TrimSpace(req.Market) != "" {
		market, err = model.ParseMarket(req.Market)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
	}

	tx := model.StockTransaction{
		PortfolioID:      portfolioID,
		Date:             date,
		Ticker:           req.Ticker,
		Type:             model.TransactionType(strings.ToUpper(req.Type)),
		Shares:           req.Shares,
		PricePerShare:    req.PricePerShare,
		Fees:             req.Fees,
		Market:           market,
		ExchangeRate:     req.ExchangeRate,
		ExternallyFunded: req.ExternallyFunded,
	}

	created, err := h.transactionService.CreateTransaction(userID(r), tx)
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to create transaction", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, created)
}

// DeleteTransaction handles DELETE requests to soft-delete a transaction.
// The transaction's snapshot, if any, is removed with it.
//
// Endpoint: DELETE /api/portfolio/{uuid}/transactions/{transactionId}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the portfolio or transaction does not exist
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")
	transactionID := chi.URLParam(r, "transactionId")

	if err := validation.ValidateUUID(transactionID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
		return
	}

	err := h.transactionService.DeleteTransaction(userID(r), portfolioID, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to delete transaction", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Snapshots handles GET requests to list portfolio snapshots in a date range.
//
// Endpoint: GET /api/portfolio/{uuid}/snapshots?from=&to=
// Response: 200 OK with array of TransactionPortfolioSnapshot
func (h *TransactionHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	if _, err := h.portfolioService.GetPortfolio(userID(r), portfolioID); err != nil {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
		return
	}

	from, err := parseDateParam(r, "from")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}

	snapshots, err := h.snapshotService.GetSnapshots(portfolioID, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveSnapshots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}

// BackfillSnapshots handles POST requests to create snapshots for
// cash-flow transactions that lack one.
//
// Endpoint: POST /api/portfolio/{uuid}/snapshots/backfill?from=&to=
// Response: 200 OK with {"created": n}
func (h *TransactionHandler) BackfillSnapshots(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	if _, err := h.portfolioService.GetPortfolio(userID(r), portfolioID); err != nil {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), "")
		return
	}

	from, err := parseDateParam(r, "from")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date filter", err.Error())
		return
	}

	created, err := h.snapshotService.Backfill(portfolioID, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to backfill snapshots", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"created": created})
}
