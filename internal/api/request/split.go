package request

type CreateSplitRequest struct {
	Symbol        string  `json:"symbol"`
	Market        string  `json:"market"`
	EffectiveDate string  `json:"effectiveDate"`
	Ratio         float64 `json:"ratio"`
}
