package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
)

// validateCurrencyCode checks that a currency code is a three-letter string.
func validateCurrencyCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("currency is required")
	}
	if len(code) != 3 {
		return fmt.Errorf("invalid currency code: %s", code)
	}
	return nil
}

// ValidateSaveYearEndPrice validates a manual year-end price entry.
func ValidateSaveYearEndPrice(req request.SaveYearEndPriceRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}
	if err := validateCurrencyCode(req.Currency); err != nil {
		errors["currency"] = err.Error()
	}
	if req.Year < 1900 || req.Year > 2200 {
		errors["year"] = fmt.Sprintf("invalid year: %d", req.Year)
	}
	if req.Value <= 0.0 {
		errors["value"] = "value must be positive"
	}
	if strings.TrimSpace(req.ActualDate) == "" {
		errors["actualDate"] = "actualDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ActualDate); err != nil {
		errors["actualDate"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateSaveYearEndRate validates a manual year-end exchange rate entry.
func ValidateSaveYearEndRate(req request.SaveYearEndRateRequest) error {
	errors := make(map[string]string)

	if err := validateCurrencyCode(req.From); err != nil {
		errors["from"] = err.Error()
	}
	if err := validateCurrencyCode(req.To); err != nil {
		errors["to"] = err.Error()
	}
	if req.Year < 1900 || req.Year > 2200 {
		errors["year"] = fmt.Sprintf("invalid year: %d", req.Year)
	}
	if req.Value <= 0.0 {
		errors["value"] = "value must be positive"
	}
	if strings.TrimSpace(req.ActualDate) == "" {
		errors["actualDate"] = "actualDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ActualDate); err != nil {
		errors["actualDate"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateSaveTransactionRate validates a manual transaction-date
// exchange rate entry.
func ValidateSaveTransactionRate(req request.SaveTransactionRateRequest) error {
	errors := make(map[string]string)

	if err := validateCurrencyCode(req.From); err != nil {
		errors["from"] = err.Error()
	}
	if err := validateCurrencyCode(req.To); err != nil {
		errors["to"] = err.Error()
	}
	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}
	if req.Rate <= 0.0 {
		errors["rate"] = "rate must be positive"
	}
	if strings.TrimSpace(req.ActualDate) == "" {
		errors["actualDate"] = "actualDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ActualDate); err != nil {
		errors["actualDate"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
