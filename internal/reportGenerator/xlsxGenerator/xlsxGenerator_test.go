package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerate(t *testing.T) {
	p := model.NewPortfolio().
		WithHolding(model.StockHolding{Symbol: "MSFT", Quantity: 2, AveragePrice: decimal.RequireFromString("400")}).
		WithHolding(model.StockHolding{Symbol: "AAPL", Quantity: 10, AveragePrice: decimal.RequireFromString("150.5")})
	p.LastUpdated = time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	data, ext, err := New().Generate(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "Portfolio on 2025-03-01T12:30:00Z", rows[0][0])
	assert.Equal(t, []string{"symbol", "quantity", "average price", "cost"}, rows[1])
	assert.Equal(t, []string{"AAPL", "10", "150.5", "1505"}, rows[2])
	assert.Equal(t, []string{"MSFT", "2", "400", "800"}, rows[3])
	assert.Equal(t, "total", rows[4][0])
	assert.Equal(t, "2305", rows[4][3])
}

func TestGenerate_Empty(t *testing.T) {
	data, _, err := New().Generate(context.Background(), model.NewPortfolio())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Portfolio", rows[0][0])
	assert.Equal(t, "total", rows[2][0])
}
