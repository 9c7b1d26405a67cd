package ledger

import (
	"fmt"
	"math"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/shopspring/decimal"
)

// SellPolicy decides what happens to the average price of the lot left after a
// partial sell.
type SellPolicy string

const (
	// SellPolicyResidual prices the remaining lot at (total cost - proceeds) / remaining
	// quantity, where proceeds are valued at the sell price. The remaining average
	// therefore depends on the sell price and can even turn negative.
	SellPolicyResidual SellPolicy = "residual"
	// SellPolicyAverage keeps the average cost of the remaining lot unchanged.
	SellPolicyAverage SellPolicy = "average"
)

func ParseSellPolicy(s string) (SellPolicy, error) {
	switch SellPolicy(s) {
	case SellPolicyResidual, "":
		return SellPolicyResidual, nil
	case SellPolicyAverage:
		return SellPolicyAverage, nil
	default:
		return "", fmt.Errorf("unknown sell policy %q", s)
	}
}

type Calculator struct {
	sellPolicy SellPolicy
}

func NewCalculator(sellPolicy SellPolicy) *Calculator {
	return &Calculator{sellPolicy: sellPolicy}
}

// ApplyBuy adds tx to existing, which may be nil when the symbol is not held yet.
// A buy whose total quantity would not fit in an int is rejected.
func (c *Calculator) ApplyBuy(existing *model.StockHolding, tx model.StockTransaction) (model.StockHolding, error) {
	if existing == nil {
		return model.StockHolding{
			Symbol:       tx.Symbol,
			Quantity:     tx.Quantity,
			AveragePrice: tx.Price,
		}, nil
	}

	if tx.Quantity > math.MaxInt-existing.Quantity {
		return model.StockHolding{}, &QuantityOverflowError{
			Symbol:    existing.Symbol,
			Held:      existing.Quantity,
			Requested: tx.Quantity,
		}
	}

	totalCost := existing.CostBasis().Add(tx.Price.Mul(decimal.NewFromInt(int64(tx.Quantity))))
	totalQuantity := existing.Quantity + tx.Quantity

	return model.StockHolding{
		Symbol:       existing.Symbol,
		Quantity:     totalQuantity,
		AveragePrice: totalCost.Div(decimal.NewFromInt(int64(totalQuantity))),
	}, nil
}

// ApplySell removes tx from existing. Selling everything yields a holding with zero
// quantity, which the caller drops from the portfolio.
func (c *Calculator) ApplySell(existing *model.StockHolding, tx model.StockTransaction) (model.StockHolding, error) {
	if existing == nil {
		return model.StockHolding{}, &NotFoundError{Symbol: tx.Symbol}
	}

	if tx.Quantity > existing.Quantity {
		return model.StockHolding{}, &InsufficientQuantityError{
			Symbol:    existing.Symbol,
			Available: existing.Quantity,
			Requested: tx.Quantity,
		}
	}

	newQuantity := existing.Quantity - tx.Quantity
	if newQuantity == 0 {
		return model.StockHolding{Symbol: existing.Symbol, AveragePrice: decimal.Zero}, nil
	}

	newAverage := existing.AveragePrice
	if c.sellPolicy != SellPolicyAverage {
		proceeds := tx.Price.Mul(decimal.NewFromInt(int64(tx.Quantity)))
		newAverage = existing.CostBasis().Sub(proceeds).Div(decimal.NewFromInt(int64(newQuantity)))
	}

	return model.StockHolding{
		Symbol:       existing.Symbol,
		Quantity:     newQuantity,
		AveragePrice: newAverage,
	}, nil
}

// Apply locates the holding for tx.Symbol and dispatches on the transaction direction.
func (c *Calculator) Apply(portfolio model.Portfolio, tx model.StockTransaction) (model.StockHolding, error) {
	var existing *model.StockHolding
	if h, ok := portfolio.Holding(tx.Symbol); ok {
		existing = &h
	}

	switch tx.Direction {
	case model.Buy:
		return c.ApplyBuy(existing, tx)
	case model.Sell:
		return c.ApplySell(existing, tx)
	default:
		return model.StockHolding{}, InvalidField("type")
	}
}
