package docModel

import "encoding/json"

// Portfolio is the persisted portfolio document.
type Portfolio struct {
	Stocks      []StockHolding `json:"stocks"`
	LastUpdated string         `json:"lastUpdated"`
	Version     string         `json:"version,omitempty"`
}

type StockHolding struct {
	Symbol       string      `json:"symbol"`
	Quantity     int         `json:"quantity"`
	AveragePrice json.Number `json:"averagePrice"`
}
