package validation

import (
	"strings"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
)

// ValidateCreatePortfolio validates a portfolio creation request.
//
// Required fields:
//   - name: Must be non-empty
//   - baseCurrency: Must be a three-letter currency code
//   - homeCurrency: Must be a three-letter currency code
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	if err := validateCurrencyCode(req.BaseCurrency); err != nil {
		errors["baseCurrency"] = err.Error()
	}
	if err := validateCurrencyCode(req.HomeCurrency); err != nil {
		errors["homeCurrency"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdatePortfolio validates a portfolio update request.
// All fields are optional, but if provided, they must meet the same
// constraints as create.
func ValidateUpdatePortfolio(req request.UpdatePortfolioRequest) error {
	errors := make(map[string]string)

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errors["name"] = "name is required"
	}
	if req.BaseCurrency != nil {
		if err := validateCurrencyCode(*req.BaseCurrency); err != nil {
			errors["baseCurrency"] = err.Error()
		}
	}
	if req.HomeCurrency != nil {
		if err := validateCurrencyCode(*req.HomeCurrency); err != nil {
			errors["homeCurrency"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
