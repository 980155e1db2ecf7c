package model

import (
	"fmt"
	"strings"
)

// Market identifies the exchange a ticker trades on. Provider selection
// and currency conversion both dispatch on this value rather than on
// ticker-shape sniffing at call sites.
type Market string

const (
	MarketTW Market = "TW"
	MarketUS Market = "US"
	MarketUK Market = "UK"
	MarketEU Market = "EU"
)

// ParseMarket converts a string into a Market value.
func ParseMarket(s string) (Market, error) {
	switch Market(strings.ToUpper(strings.TrimSpace(s))) {
	case MarketTW:
		return MarketTW, nil
	case MarketUS:
		return MarketUS, nil
	case MarketUK:
		return MarketUK, nil
	case MarketEU:
		return MarketEU, nil
	}
	return "", fmt.Errorf("unknown market: %q", s)
}

// Currency returns the trading currency for the market.
func (m Market) Currency() string {
	switch m {
	case MarketTW:
		return "TWD"
	case MarketUK:
		return "GBP"
	case MarketEU:
		return "EUR"
	default:
		return "USD"
	}
}

// IsZeroFX reports whether instruments on this market trade in the given
// home currency, meaning conversion uses an implicit rate of 1 and no FX
// lookup is needed.
func (m Market) IsZeroFX(homeCurrency string) bool {
	return strings.EqualFold(m.Currency(), homeCurrency)
}

// euronextSuffixes are ticker suffixes for Euronext-listed instruments.
var euronextSuffixes = []string{".AS", ".PA", ".BR", ".LS", ".MI"}

// MarketForTicker infers a market from the shape of a ticker symbol:
// a numeric prefix means a Taiwan listing, a ".L" suffix means London,
// Euronext suffixes mean an EU listing, everything else defaults to US.
func MarketForTicker(ticker string) Market {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return MarketUS
	}
	if t[0] >= '0' && t[0] <= '9' {
		return MarketTW
	}
	if strings.HasSuffix(t, ".L") {
		return MarketUK
	}
	for _, suffix := range euronextSuffixes {
		if strings.HasSuffix(t, suffix) {
			return MarketEU
		}
	}
	return MarketUS
}
