package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/shopspring/decimal"
)

const DefaultOrderType = "MARKET"

var ErrInvalidCommand = errors.New("Invalid command format")

var commandRe = regexp.MustCompile(`(BUY|SELL)\s+([A-Z.]+)\s+(\d+)(?:\s+@(\w+)(?:\s+(\d+(?:\.\d+)?))?)?`)

// Command is a trade typed by a person, e.g. "buy VAS.AX 5 @limit 100.00".
type Command struct {
	Direction model.Direction
	Symbol    string
	Quantity  int
	OrderType string
	// Price is nil when the command did not name one.
	Price *decimal.Decimal
}

// Parse matches text case-insensitively against
// (BUY|SELL) SYMBOL QTY [@ORDERTYPE [PRICE]].
func Parse(text string) (Command, error) {
	m := commandRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(text)))
	if m == nil {
		return Command{}, ErrInvalidCommand
	}

	quantity, err := strconv.Atoi(m[3])
	if err != nil {
		return Command{}, ErrInvalidCommand
	}

	cmd := Command{
		Direction: model.Direction(m[1]),
		Symbol:    m[2],
		Quantity:  quantity,
		OrderType: DefaultOrderType,
	}

	if m[4] != "" {
		cmd.OrderType = m[4]
	}

	if m[5] != "" {
		price, err := decimal.NewFromString(m[5])
		if err != nil {
			return Command{}, ErrInvalidCommand
		}
		cmd.Price = &price
	}

	return cmd, nil
}

// Request turns the command into a transaction request. A missing price is left zero
// and rejected by validation.
func (c Command) Request() model.TransactionRequest {
	req := model.TransactionRequest{
		Symbol:   c.Symbol,
		Quantity: c.Quantity,
		Type:     string(c.Direction),
	}
	if c.Price != nil {
		req.Price = *c.Price
	}
	return req
}
