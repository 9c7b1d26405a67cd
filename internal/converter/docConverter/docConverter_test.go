package docConverter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	data := []byte(`{
		"stocks": [
			{"symbol": "VAS.AX", "quantity": 19, "averagePrice": 98.87},
			{"symbol": "GONE", "quantity": 0, "averagePrice": 1}
		],
		"lastUpdated": "2025-01-02T03:04:05.000Z"
	}`)

	portfolio, _, err := Decode(data)
	require.NoError(t, err)

	require.Len(t, portfolio.Holdings, 1)
	h := portfolio.Holdings["VAS.AX"]
	assert.Equal(t, 19, h.Quantity)
	assert.True(t, h.AveragePrice.Equal(decimal.RequireFromString("98.87")))
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), portfolio.LastUpdated.UTC())
}

func TestDecode_NoStocksArray(t *testing.T) {
	portfolio, _, err := Decode([]byte(`{"lastUpdated": ""}`))
	require.NoError(t, err)
	assert.Empty(t, portfolio.Holdings)
}

func TestDecode_Rejects(t *testing.T) {
	tests := map[string]string{
		"duplicate symbol": `{"stocks": [{"symbol": "A", "quantity": 1, "averagePrice": 1}, {"symbol": "A", "quantity": 2, "averagePrice": 1}]}`,
		"missing symbol":   `{"stocks": [{"quantity": 1, "averagePrice": 1}]}`,
		"negative qty":     `{"stocks": [{"symbol": "A", "quantity": -1, "averagePrice": 1}]}`,
		"bad timestamp":    `{"stocks": [], "lastUpdated": "yesterday"}`,
		"not json":         `<xml/>`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestEncode(t *testing.T) {
	portfolio := model.NewPortfolio().
		WithHolding(model.StockHolding{Symbol: "VAS.AX", Quantity: 24, AveragePrice: decimal.RequireFromString("99.1054166666666667")}).
		WithHolding(model.StockHolding{Symbol: "AAPL", Quantity: 1, AveragePrice: decimal.NewFromInt(150)})
	portfolio.LastUpdated = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := Encode(portfolio, "v1")
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "v1", raw["version"])
	assert.Equal(t, "2025-01-02T03:04:05Z", raw["lastUpdated"])

	stocks := raw["stocks"].([]any)
	require.Len(t, stocks, 2)
	assert.Equal(t, "AAPL", stocks[0].(map[string]any)["symbol"])
	assert.Contains(t, string(data), `"averagePrice": 99.1054166666666667`)

	back, doc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "v1", doc.Version)
	assert.True(t, back.Holdings["VAS.AX"].AveragePrice.Equal(portfolio.Holdings["VAS.AX"].AveragePrice))
}
