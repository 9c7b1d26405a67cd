package model

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type StockHolding struct {
	Symbol       string
	Quantity     int
	AveragePrice decimal.Decimal
}

// CostBasis is the total amount paid for the holding.
func (h StockHolding) CostBasis() decimal.Decimal {
	return h.AveragePrice.Mul(decimal.NewFromInt(int64(h.Quantity)))
}

// Portfolio is always read and written whole. Version is the opaque token of the
// persisted copy it was read from, empty when nothing has been persisted yet.
type Portfolio struct {
	Holdings    map[string]StockHolding
	LastUpdated time.Time
	Version     string
}

func NewPortfolio() Portfolio {
	return Portfolio{Holdings: make(map[string]StockHolding)}
}

func (p Portfolio) Holding(symbol string) (StockHolding, bool) {
	h, ok := p.Holdings[symbol]
	return h, ok
}

// WithHolding returns a copy of the portfolio with h spliced in. A holding with zero
// quantity is removed instead of stored.
func (p Portfolio) WithHolding(h StockHolding) Portfolio {
	holdings := make(map[string]StockHolding, len(p.Holdings)+1)
	maps.Copy(holdings, p.Holdings)

	if h.Quantity == 0 {
		delete(holdings, h.Symbol)
	} else {
		holdings[h.Symbol] = h
	}

	p.Holdings = holdings
	return p
}

// SortedHoldings returns the holdings ordered by symbol.
func (p Portfolio) SortedHoldings() []StockHolding {
	symbols := slices.Sorted(maps.Keys(p.Holdings))
	res := make([]StockHolding, 0, len(symbols))
	for _, symbol := range symbols {
		res = append(res, p.Holdings[symbol])
	}
	return res
}
