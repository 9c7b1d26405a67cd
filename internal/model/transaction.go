package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, true
	case Sell:
		return Sell, true
	default:
		return "", false
	}
}

// TransactionRequest is an inbound transaction as it arrives at the system boundary.
// Zero values mean the field was absent.
type TransactionRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type,omitempty"`
}

// StockTransaction is a validated transaction. It is only built by ledger.Validate.
type StockTransaction struct {
	Symbol    string
	Quantity  int
	Price     decimal.Decimal
	Direction Direction
}

type MutationResult struct {
	Transaction StockTransaction
	Holding     StockHolding
	// Removed is set when a sell liquidated the whole holding.
	Removed bool
}
