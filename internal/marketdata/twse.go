package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// TWSEClient fetches daily closing prices for Taiwan-listed stocks from
// the TWSE STOCK_DAY report. The endpoint returns one month of daily
// rows per call.
type TWSEClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewTWSEClient creates a TWSE client with default HTTP settings.
func NewTWSEClient() *TWSEClient {
	return &TWSEClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://www.twse.com.tw",
	}
}

// NewTWSEClientWithBaseURL creates a client against a custom base URL.
func NewTWSEClientWithBaseURL(baseURL string) *TWSEClient {
	c := NewTWSEClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Source identifies this provider in cache rows.
func (c *TWSEClient) Source() model.PriceSource {
	return model.SourceTWSE
}

// twseResponse is the raw STOCK_DAY JSON payload. Data rows are string
// arrays: [date, volume, value, open, high, low, close, change, count].
type twseResponse struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

// GetYearEndPrice returns the close on the last trading day on or
// before Dec 31 of the given year.
func (c *TWSEClient) GetYearEndPrice(ctx context.Context, ticker string, year int) (PricePoint, error) {
	return c.GetPriceOnDate(ctx, ticker, time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC))
}

// GetPriceOnDate returns the close on the nearest trading day on or
// before the given date. Looks at the requested month first and walks
// back one month when the date falls before that month's first session.
func (c *TWSEClient) GetPriceOnDate(ctx context.Context, ticker string, date time.Time) (PricePoint, error) {
	for _, month := range []time.Time{date, date.AddDate(0, -1, 0)} {
		point, err := c.lastCloseInMonth(ctx, ticker, month, date)
		if err == nil {
			return point, nil
		}
		if ctx.Err() != nil {
			return PricePoint{}, ctx.Err()
		}
	}
	return PricePoint{}, fmt.Errorf("%w: %s on or before %s", ErrNotFound, ticker, date.Format("2006-01-02"))
}

func (c *TWSEClient) lastCloseInMonth(ctx context.Context, ticker string, month, cutoff time.Time) (PricePoint, error) {
	url := fmt.Sprintf(
		"%s/en/exchangeReport/STOCK_DAY?response=json&date=%s&stockNo=%s",
		c.baseURL,
		month.Format("20060102"),
		strings.TrimSpace(ticker),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PricePoint{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PricePoint{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PricePoint{}, fmt.Errorf("twse returned status %d for %s", resp.StatusCode, ticker)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PricePoint{}, err
	}

	var payload twseResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return PricePoint{}, err
	}
	if !strings.EqualFold(payload.Stat, "OK") || len(payload.Data) == 0 {
		return PricePoint{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}

	var best PricePoint
	found := false
	for _, row := range payload.Data {
		if len(row) < 7 {
			continue
		}
		rowDate, err := parseTWSEDate(row[0])
		if err != nil || rowDate.After(cutoff) {
			continue
		}
		closePrice, err := strconv.ParseFloat(strings.ReplaceAll(row[6], ",", ""), 64)
		if err != nil {
			continue
		}
		if !found || rowDate.After(best.ActualDate) {
			best = PricePoint{Price: closePrice, Currency: "TWD", ActualDate: rowDate}
			found = true
		}
	}
	if !found {
		return PricePoint{}, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	return best, nil
}

// parseTWSEDate accepts both the Gregorian form of the English report
// ("2021/01/04") and the ROC-calendar form ("110/01/04").
func parseTWSEDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006/01/02", s); err == nil {
		return t.UTC(), nil
	}
	parts := strings.Split(s, "/")
	if len(parts) == 3 {
		rocYear, err := strconv.Atoi(parts[0])
		if err == nil && rocYear < 1000 {
			month, merr := strconv.Atoi(parts[1])
			day, derr := strconv.Atoi(parts[2])
			if merr == nil && derr == nil {
				return time.Date(rocYear+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized TWSE date: %q", s)
}
