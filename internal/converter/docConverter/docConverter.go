package docConverter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/model/docModel"
	"github.com/shopspring/decimal"
)

func ConvertHolding(doc docModel.StockHolding) (model.StockHolding, error) {
	avg := decimal.Zero
	if doc.AveragePrice != "" {
		var err error
		avg, err = decimal.NewFromString(doc.AveragePrice.String())
		if err != nil {
			return model.StockHolding{}, fmt.Errorf("averagePrice of %s: %w", doc.Symbol, err)
		}
	}

	return model.StockHolding{
		Symbol:       doc.Symbol,
		Quantity:     doc.Quantity,
		AveragePrice: avg,
	}, nil
}

// ConvertPortfolio builds a portfolio from a persisted document. The version token is
// left for the caller, since not every backend keeps it inside the document.
func ConvertPortfolio(doc docModel.Portfolio) (model.Portfolio, error) {
	portfolio := model.NewPortfolio()

	for _, stock := range doc.Stocks {
		if stock.Symbol == "" {
			return model.Portfolio{}, fmt.Errorf("holding without symbol")
		}
		if _, ok := portfolio.Holdings[stock.Symbol]; ok {
			return model.Portfolio{}, fmt.Errorf("duplicate holding %s", stock.Symbol)
		}
		if stock.Quantity < 0 {
			return model.Portfolio{}, fmt.Errorf("negative quantity for %s", stock.Symbol)
		}
		if stock.Quantity == 0 {
			continue
		}

		holding, err := ConvertHolding(stock)
		if err != nil {
			return model.Portfolio{}, err
		}
		portfolio.Holdings[stock.Symbol] = holding
	}

	if doc.LastUpdated != "" {
		lastUpdated, err := time.Parse(time.RFC3339Nano, doc.LastUpdated)
		if err != nil {
			return model.Portfolio{}, fmt.Errorf("lastUpdated: %w", err)
		}
		portfolio.LastUpdated = lastUpdated
	}

	return portfolio, nil
}

func ConvertToDocHolding(holding model.StockHolding) docModel.StockHolding {
	return docModel.StockHolding{
		Symbol:       holding.Symbol,
		Quantity:     holding.Quantity,
		AveragePrice: json.Number(holding.AveragePrice.String()),
	}
}

func ConvertToDoc(portfolio model.Portfolio) docModel.Portfolio {
	holdings := portfolio.SortedHoldings()
	doc := docModel.Portfolio{
		Stocks: make([]docModel.StockHolding, 0, len(holdings)),
	}

	for _, holding := range holdings {
		doc.Stocks = append(doc.Stocks, ConvertToDocHolding(holding))
	}

	if !portfolio.LastUpdated.IsZero() {
		doc.LastUpdated = portfolio.LastUpdated.UTC().Format(time.RFC3339Nano)
	}

	return doc
}

// Decode parses a serialized document. A document without a stocks array is read as an
// empty portfolio.
func Decode(data []byte) (model.Portfolio, docModel.Portfolio, error) {
	doc := docModel.Portfolio{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Portfolio{}, docModel.Portfolio{}, err
	}

	portfolio, err := ConvertPortfolio(doc)
	if err != nil {
		return model.Portfolio{}, docModel.Portfolio{}, err
	}

	return portfolio, doc, nil
}

// Encode serializes the portfolio, embedding version when it is not empty.
func Encode(portfolio model.Portfolio, version string) ([]byte, error) {
	doc := ConvertToDoc(portfolio)
	doc.Version = version
	return json.MarshalIndent(doc, "", "  ")
}
