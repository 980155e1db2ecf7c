package request

type SaveYearEndPriceRequest struct {
	Ticker     string  `json:"ticker"`
	Currency   string  `json:"currency"`
	Year       int     `json:"year"`
	Value      float64 `json:"value"`
	ActualDate string  `json:"actualDate"`
}

type SaveYearEndRateRequest struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Year       int     `json:"year"`
	Value      float64 `json:"value"`
	ActualDate string  `json:"actualDate"`
}

type SaveTransactionRateRequest struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Date       string  `json:"date"`
	Rate       float64 `json:"rate"`
	ActualDate string  `json:"actualDate"`
}

type SaveProviderTokenRequest struct {
	Provider string `json:"provider"`
	Token    string `json:"token"`
	Enabled  bool   `json:"enabled"`
}
