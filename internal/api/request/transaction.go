package request

type CreateTransactionRequest struct {
	Date             string   `json:"date"`
	Ticker           string   `json:"ticker"`
	Type             string   `json:"type"`
	Shares           float64  `json:"shares"`
	PricePerShare    float64  `json:"pricePerShare"`
	Fees             float64  `json:"fees"`
	Market           string   `json:"market,omitempty"`
	ExchangeRate     *float64 `json:"exchangeRate,omitempty"`
	ExternallyFunded bool     `json:"externallyFunded"`
}
