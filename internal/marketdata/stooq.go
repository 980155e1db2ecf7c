package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// StooqClient fetches daily historical prices and exchange rates from
// the Stooq CSV endpoint. Stooq covers most US/UK listings and major
// currency pairs but not Euronext.
type StooqClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewStooqClient creates a Stooq client with default HTTP settings.
func NewStooqClient() *StooqClient {
	return &StooqClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://stooq.com",
	}
}

// NewStooqClientWithBaseURL creates a client against a custom base URL.
// Used by tests to point at a local server.
func NewStooqClientWithBaseURL(baseURL string) *StooqClient {
	c := NewStooqClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Source identifies this provider in cache rows.
func (c *StooqClient) Source() model.PriceSource {
	return model.SourceStooq
}

// GetYearEndPrice returns the close on the last trading day of the year.
func (c *StooqClient) GetYearEndPrice(ctx context.Context, ticker string, year int) (PricePoint, error) {
	// December is enough to find the last trading day of the year.
	from := time.Date(year, 12, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	return c.lastCloseInRange(ctx, stooqSymbol(ticker), from, to)
}

// GetPriceOnDate returns the close on the nearest trading day on or
// before the given date.
func (c *StooqClient) GetPriceOnDate(ctx context.Context, ticker string, date time.Time) (PricePoint, error) {
	// Two weeks back covers any holiday stretch.
	from := date.AddDate(0, 0, -14)
	return c.lastCloseInRange(ctx, stooqSymbol(ticker), from, date)
}

// GetExchangeRate returns the from->to rate on the nearest trading day
// on or before the given date. Stooq quotes currency pairs as a single
// lowercase symbol, e.g. "usdtwd".
func (c *StooqClient) GetExchangeRate(ctx context.Context, from, to string, date time.Time) (RatePoint, error) {
	symbol := strings.ToLower(from + to)
	point, err := c.lastCloseInRange(ctx, symbol, date.AddDate(0, 0, -14), date)
	if err != nil {
		return RatePoint{}, err
	}
	return RatePoint{Rate: point.Price, ActualDate: point.ActualDate}, nil
}

// lastCloseInRange downloads the daily CSV for [from, to] and returns
// the most recent close in the range.
func (c *StooqClient) lastCloseInRange(ctx context.Context, symbol string, from, to time.Time) (PricePoint, error) {
	url := fmt.Sprintf(
		"%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		c.baseURL,
		symbol,
		from.Format("20060102"),
		to.Format("20060102"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PricePoint{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PricePoint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PricePoint{}, fmt.Errorf("stooq returned status %d for %s", resp.StatusCode, symbol)
	}

	point, err := parseStooqCSV(resp.Body)
	if err != nil {
		return PricePoint{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}
	return point, nil
}

// parseStooqCSV reads a Stooq daily CSV (Date,Open,High,Low,Close,...)
// and returns the last data row. Stooq answers "No data" in the body
// for unknown symbols, which fails the header check here.
func parseStooqCSV(body io.Reader) (PricePoint, error) {
	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return PricePoint{}, fmt.Errorf("empty response")
	}
	if len(header) < 5 || !strings.EqualFold(header[0], "Date") {
		return PricePoint{}, fmt.Errorf("unexpected response header")
	}

	var last []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return PricePoint{}, err
		}
		if len(record) >= 5 {
			last = record
		}
	}
	if last == nil {
		return PricePoint{}, fmt.Errorf("no data rows")
	}

	date, err := time.Parse("2006-01-02", last[0])
	if err != nil {
		return PricePoint{}, fmt.Errorf("bad date %q: %w", last[0], err)
	}
	closePrice, err := strconv.ParseFloat(last[4], 64)
	if err != nil {
		return PricePoint{}, fmt.Errorf("bad close %q: %w", last[4], err)
	}

	return PricePoint{Price: closePrice, ActualDate: date}, nil
}

// stooqSymbol maps a ticker to Stooq's symbol convention: US tickers
// get a ".us" suffix, London tickers swap ".L" for ".uk", and symbols
// that already carry a market suffix pass through lowercased.
func stooqSymbol(ticker string) string {
	t := strings.ToLower(strings.TrimSpace(ticker))
	if strings.HasSuffix(t, ".l") {
		return strings.TrimSuffix(t, ".l") + ".uk"
	}
	if strings.Contains(t, ".") {
		return t
	}
	return t + ".us"
}
