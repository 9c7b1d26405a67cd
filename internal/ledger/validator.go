package ledger

import (
	"strings"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
)

// Validate checks an inbound transaction and turns it into a StockTransaction.
// Rules are checked in order and the first failure wins. A zero quantity or price
// counts as missing.
func Validate(req model.TransactionRequest) (model.StockTransaction, error) {
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return model.StockTransaction{}, MissingField("symbol")
	}

	if req.Quantity <= 0 {
		return model.StockTransaction{}, MissingField("quantity")
	}

	if !req.Price.IsPositive() {
		return model.StockTransaction{}, MissingField("price")
	}

	if strings.TrimSpace(req.Type) == "" {
		return model.StockTransaction{}, MissingField("type")
	}

	direction, ok := model.ParseDirection(req.Type)
	if !ok {
		return model.StockTransaction{}, InvalidField("type")
	}

	return model.StockTransaction{
		Symbol:    symbol,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Direction: direction,
	}, nil
}
