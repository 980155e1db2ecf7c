package validation

import (
	"strings"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// ValidateCreateSplit validates a stock split registration request.
//
// Required fields:
//   - symbol: Must be non-empty
//   - market: Must parse to a known market
//   - effectiveDate: Must be in YYYY-MM-DD format
//   - ratio: Must be positive (e.g., 4 for a 1-to-4 split)
func ValidateCreateSplit(req request.CreateSplitRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.Market) == "" {
		errors["market"] = "market is required"
	} else if _, err := model.ParseMarket(req.Market); err != nil {
		errors["market"] = err.Error()
	}

	if strings.TrimSpace(req.EffectiveDate) == "" {
		errors["effectiveDate"] = "effectiveDate is required"
	} else if _, err := time.Parse("2006-01-02", req.EffectiveDate); err != nil {
		errors["effectiveDate"] = err.Error()
	}

	if req.Ratio <= 0.0 {
		errors["ratio"] = "ratio must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
