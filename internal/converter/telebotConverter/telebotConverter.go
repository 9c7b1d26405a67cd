package telebotConverter

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/model/tg/tgCallback"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
)

const timeLayout = "2006-01-02 15:04 MST"

func PortfolioResponse(portfolio model.Portfolio) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	holdings := portfolio.SortedHoldings()
	if len(holdings) == 0 {
		sb.WriteString("📊 Portfolio is empty\n")
	} else {
		sb.WriteString(fmt.Sprintf("📊 Portfolio: %d positions\n\n", len(holdings)))
	}

	total := decimal.Zero
	holdingBtns := make([]tele.Btn, 0, len(holdings))
	for i, holding := range holdings {
		holdingBtns = append(holdingBtns, markup.Data(holding.Symbol, tgCallback.Holding, holding.Symbol))

		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, holding.Symbol))
		sb.WriteString(fmt.Sprintf("   ▸ Quantity: %d\n", holding.Quantity))
		sb.WriteString(fmt.Sprintf("   ▸ Average price: %s\n", holding.AveragePrice.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("   ▸ Cost: %s\n\n", holding.CostBasis().StringFixed(2)))

		total = total.Add(holding.CostBasis())
	}

	if len(holdings) > 0 {
		sb.WriteString(fmt.Sprintf("💰 Total cost: %s\n", total.StringFixed(2)))
	}

	if !portfolio.LastUpdated.IsZero() {
		sb.WriteString(fmt.Sprintf("🕒 Updated: %s\n", portfolio.LastUpdated.UTC().Format(timeLayout)))
	}

	rows := make([]tele.Row, 0, 2)
	if len(holdingBtns) > 0 {
		rows = append(rows, markup.Row(holdingBtns...))
	}
	rows = append(rows, markup.Row(markup.Data("🔄 Refresh", tgCallback.RefreshPortfolio)))
	markup.Inline(rows...)

	return sb.String(), markup
}

func HoldingResponse(holding model.StockHolding) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", holding.Symbol))
	sb.WriteString(fmt.Sprintf("   ▸ Quantity: %d\n", holding.Quantity))
	sb.WriteString(fmt.Sprintf("   ▸ Average price: %s\n", holding.AveragePrice.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("   ▸ Cost: %s\n", holding.CostBasis().StringFixed(2)))

	return sb.String()
}

func MutationResponse(res model.MutationResult) string {
	tx := res.Transaction
	head := fmt.Sprintf("✅ %s %d %s @ %s\n", tx.Direction, tx.Quantity, tx.Symbol, tx.Price.String())

	if res.Removed {
		return head + fmt.Sprintf("%s is no longer in the portfolio", tx.Symbol)
	}

	return head + HoldingResponse(res.Holding)
}
