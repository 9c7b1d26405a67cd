package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Holdings"

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the holdings as a single-sheet workbook. An empty portfolio still
// produces a workbook with the header and a zero total.
func (g *XLSXGenerator) Generate(ctx context.Context, portfolio model.Portfolio) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		slog.Error("got error while renaming Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillSheet(f, portfolio); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, portfolio model.Portfolio) error {
	err := f.MergeCell(SheetName, "A1", "D1")
	if err != nil {
		return err
	}

	title := "Portfolio"
	if !portfolio.LastUpdated.IsZero() {
		title = fmt.Sprintf("Portfolio on %s", portfolio.LastUpdated.UTC().Format(time.RFC3339))
	}
	_ = f.SetCellStr(SheetName, "A1", title)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(SheetName, "A1", "A1", titleStyle); err != nil {
		return fmt.Errorf("apply title style: %w", err)
	}

	_ = f.SetCellStr(SheetName, "A2", "symbol")
	_ = f.SetCellStr(SheetName, "B2", "quantity")
	_ = f.SetCellStr(SheetName, "C2", "average price")
	_ = f.SetCellStr(SheetName, "D2", "cost")

	total := decimal.Zero
	holdings := portfolio.SortedHoldings()
	for i, holding := range holdings {
		row := i + 3
		_ = f.SetCellStr(SheetName, fmt.Sprintf("A%d", row), holding.Symbol)
		_ = f.SetCellInt(SheetName, fmt.Sprintf("B%d", row), int64(holding.Quantity))
		_ = f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), holding.AveragePrice.InexactFloat64())
		_ = f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), holding.CostBasis().InexactFloat64())

		total = total.Add(holding.CostBasis())
	}

	totalRow := len(holdings) + 3
	_ = f.SetCellStr(SheetName, fmt.Sprintf("A%d", totalRow), "total")
	_ = f.SetCellValue(SheetName, fmt.Sprintf("D%d", totalRow), total.InexactFloat64())

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#d9ead3"},
		},
	})
	if err != nil {
		return err
	}

	return f.SetCellStyle(SheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("D%d", totalRow), totalStyle)
}
