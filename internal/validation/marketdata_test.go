package validation_test

import (
	"errors"
	"testing"

	"github.com/ycliang/portfolio-performance-engine/internal/api/request"
	"github.com/ycliang/portfolio-performance-engine/internal/validation"
)

// TestValidateSaveYearEndPrice tests manual year-end price validation.
//
// WHY: Manual cache entries are immutable once accepted; bad values
// have to be caught before they are written, not after.
func TestValidateSaveYearEndPrice(t *testing.T) {
	valid := request.SaveYearEndPriceRequest{
		Ticker:     "ASML.AS",
		Currency:   "EUR",
		Year:       2023,
		Value:      680.5,
		ActualDate: "2023-12-29",
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := validation.ValidateSaveYearEndPrice(valid); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("rejects bad fields", func(t *testing.T) {
		req := request.SaveYearEndPriceRequest{
			Currency:   "EURO",
			Year:       1492,
			Value:      0,
			ActualDate: "29-12-2023",
		}

		err := validation.ValidateSaveYearEndPrice(req)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		for _, field := range []string{"ticker", "currency", "year", "value", "actualDate"} {
			if _, ok := verr.Fields[field]; !ok {
				t.Errorf("Expected an error for field %q, got %v", field, verr.Fields)
			}
		}
	})
}

// TestValidateSaveTransactionRate tests manual transaction-date rate
// validation.
func TestValidateSaveTransactionRate(t *testing.T) {
	valid := request.SaveTransactionRateRequest{
		From:       "GBP",
		To:         "USD",
		Date:       "2024-03-15",
		Rate:       1.27,
		ActualDate: "2024-03-15",
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := validation.ValidateSaveTransactionRate(valid); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("rejects a non-positive rate", func(t *testing.T) {
		req := valid
		req.Rate = -1

		err := validation.ValidateSaveTransactionRate(req)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := verr.Fields["rate"]; !ok {
			t.Errorf("Expected a rate error, got %v", verr.Fields)
		}
	})

	t.Run("rejects malformed currency codes", func(t *testing.T) {
		req := valid
		req.From = "POUND"
		req.To = ""

		err := validation.ValidateSaveTransactionRate(req)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if len(verr.Fields) != 2 {
			t.Errorf("Expected from and to errors, got %v", verr.Fields)
		}
	})
}

// TestValidateCreateSplit tests split registration validation.
func TestValidateCreateSplit(t *testing.T) {
	valid := request.CreateSplitRequest{
		Symbol:        "AAPL",
		Market:        "US",
		EffectiveDate: "2020-08-31",
		Ratio:         4,
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := validation.ValidateCreateSplit(valid); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("rejects a reverse-split ratio of zero", func(t *testing.T) {
		req := valid
		req.Ratio = 0

		err := validation.ValidateCreateSplit(req)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := verr.Fields["ratio"]; !ok {
			t.Errorf("Expected a ratio error, got %v", verr.Fields)
		}
	})

	t.Run("requires an explicit market", func(t *testing.T) {
		req := valid
		req.Market = ""

		err := validation.ValidateCreateSplit(req)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := verr.Fields["market"]; !ok {
			t.Errorf("Expected a market error, got %v", verr.Fields)
		}
	})
}

// TestValidateCreatePortfolio tests portfolio creation validation.
func TestValidateCreatePortfolio(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		req := request.CreatePortfolioRequest{Name: "Retirement", BaseCurrency: "USD", HomeCurrency: "EUR"}
		if err := validation.ValidateCreatePortfolio(req); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("rejects missing name and bad currencies", func(t *testing.T) {
		req := request.CreatePortfolioRequest{Name: "  ", BaseCurrency: "US", HomeCurrency: ""}

		err := validation.ValidateCreatePortfolio(req)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		for _, field := range []string{"name", "baseCurrency", "homeCurrency"} {
			if _, ok := verr.Fields[field]; !ok {
				t.Errorf("Expected an error for field %q, got %v", field, verr.Fields)
			}
		}
	})

	t.Run("update validates only provided fields", func(t *testing.T) {
		name := "Renamed"
		if err := validation.ValidateUpdatePortfolio(request.UpdatePortfolioRequest{Name: &name}); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}

		bad := "X"
		err := validation.ValidateUpdatePortfolio(request.UpdatePortfolioRequest{BaseCurrency: &bad})
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := verr.Fields["baseCurrency"]; !ok {
			t.Errorf("Expected a baseCurrency error, got %v", verr.Fields)
		}
	})
}
