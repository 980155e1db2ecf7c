package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// YahooClient fetches historical prices from the Yahoo Finance chart
// API. It is the fallback for Euronext-listed instruments, which Stooq
// does not cover.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooClient creates a new Yahoo Finance client with default HTTP settings.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// NewYahooClientWithBaseURL creates a client against a custom base URL.
func NewYahooClientWithBaseURL(baseURL string) *YahooClient {
	c := NewYahooClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Source identifies this provider in cache rows.
func (c *YahooClient) Source() model.PriceSource {
	return model.SourceYahoo
}

// yahooResponse represents the raw JSON response structure from the
// Yahoo Finance chart API:
//   - Chart.Result: array of result objects (typically one element)
//   - Chart.Result[].Meta: symbol metadata (currency, exchange)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: price data arrays
//   - Chart.Error: optional error message from Yahoo
type yahooResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// GetYearEndPrice returns the close on the last trading day of the year.
func (c *YahooClient) GetYearEndPrice(ctx context.Context, ticker string, year int) (PricePoint, error) {
	return c.GetPriceOnDate(ctx, ticker, time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC))
}

// GetPriceOnDate returns the close on the nearest trading day on or
// before the given date. Queries a two-week window ending at the date
// and picks the latest close in range.
func (c *YahooClient) GetPriceOnDate(ctx context.Context, ticker string, date time.Time) (PricePoint, error) {
	end := date.AddDate(0, 0, 1) // period2 is exclusive of the final day
	start := date.AddDate(0, 0, -14)

	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		strings.TrimSpace(ticker),
		start.Unix(),
		end.Unix(),
	)

	response, err := c.queryYahoo(ctx, url)
	if err != nil {
		return PricePoint{}, err
	}
	if len(response.Chart.Result) == 0 {
		return PricePoint{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}

	result := response.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return PricePoint{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return PricePoint{}, fmt.Errorf("mismatched data lengths for %s", ticker)
	}

	cutoff := date.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	var best PricePoint
	found := false
	for i, ts := range result.Timestamp {
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if !day.Before(cutoff) || closes[i] == 0 {
			continue
		}
		if !found || day.After(best.ActualDate) {
			best = PricePoint{
				Price:      closes[i],
				Currency:   result.Meta.Currency,
				ActualDate: day,
			}
			found = true
		}
	}
	if !found {
		return PricePoint{}, fmt.Errorf("%w: %s on or before %s", ErrNotFound, ticker, date.Format("2006-01-02"))
	}
	return best, nil
}

// queryYahoo executes an HTTP request against the Yahoo Finance API.
// Sets a browser-like User-Agent; the API blocks default Go clients.
func (c *YahooClient) queryYahoo(ctx context.Context, url string) (yahooResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return yahooResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return yahooResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return yahooResponse{}, err
	}

	var response yahooResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return yahooResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}

	return response, nil
}
