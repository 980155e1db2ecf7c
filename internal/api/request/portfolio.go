package request

type CreatePortfolioRequest struct {
	Name         string `json:"name"`
	BaseCurrency string `json:"baseCurrency"`
	HomeCurrency string `json:"homeCurrency"`
}

type UpdatePortfolioRequest struct {
	Name         *string `json:"name,omitempty"`
	BaseCurrency *string `json:"baseCurrency,omitempty"`
	HomeCurrency *string `json:"homeCurrency,omitempty"`
}
