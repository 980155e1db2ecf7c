package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	"BUY": true, "SELL": true, "SPLIT": true, "ADJUSTMENT": true,
}

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - ticker: Must be non-empty
//   - type: Must be one of: BUY, SELL, SPLIT, ADJUSTMENT
//   - shares: Must be positive
//   - pricePerShare: Must be positive
//
// Optional fields:
//   - market: Must parse to a known market if provided; inferred from
//     the ticker shape when omitted
//   - exchangeRate: Must be positive if provided
//   - fees: Must be non-negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[strings.ToUpper(req.Type)] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Shares <= 0.0 {
		errors["shares"] = "shares must be positive"
	}

	if req.PricePerShare <= 0.0 {
		errors["pricePerShare"] = "pricePerShare must be positive"
	}

	if req.Fees < 0.0 {
		errors["fees"] = "fees cannot be negative"
	}

	if strings.TrimSpace(req.Market) != "" {
		if _, err := model.ParseMarket(req.Market); err != nil {
			errors["market"] = err.Error()
		}
	}

	if req.ExchangeRate != nil && *req.ExchangeRate <= 0.0 {
		errors["exchangeRate"] = "exchangeRate must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
