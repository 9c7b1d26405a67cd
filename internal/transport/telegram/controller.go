package telegram

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/portfolio_ledger/internal/converter/telebotConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/ledger"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/parser"
	"github.com/KotFed0t/portfolio_ledger/utils"
	tele "gopkg.in/telebot.v4"
)

const (
	internalErrMsg = "something went wrong, try again later"
	helpMsg        = "Send a trade as text, e.g.\n" +
		"BUY AAPL 10 @limit 150.25\n" +
		"SELL VAS.AX 5 @market 101\n\n" +
		"/portfolio shows your holdings"
)

type LedgerService interface {
	ApplyTransaction(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error)
	GetPortfolio(ctx context.Context) (model.Portfolio, error)
	GetHolding(ctx context.Context, symbol string) (model.StockHolding, error)
}

type Controller struct {
	ledgerService LedgerService
}

func NewController(ledgerService LedgerService) *Controller {
	return &Controller{ledgerService: ledgerService}
}

func (ctrl *Controller) Start(c tele.Context) error {
	return c.Send(helpMsg)
}

func (ctrl *Controller) Portfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	portfolio, err := ctrl.ledgerService.GetPortfolio(ctx)
	if err != nil {
		slog.Error("got error from ledgerService.GetPortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.PortfolioResponse(portfolio))
}

func (ctrl *Controller) RefreshPortfolio(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	portfolio, err := ctrl.ledgerService.GetPortfolio(ctx)
	if err != nil {
		slog.Error("got error from ledgerService.GetPortfolio", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Respond(&tele.CallbackResponse{Text: internalErrMsg})
	}

	if err := c.Respond(); err != nil {
		slog.Debug("callback respond failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}
	return c.Edit(telebotConverter.PortfolioResponse(portfolio))
}

func (ctrl *Controller) ShowHolding(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := c.Respond(); err != nil {
		slog.Debug("callback respond failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	holding, err := ctrl.ledgerService.GetHolding(ctx, c.Data())
	if err != nil {
		var notFoundErr *ledger.NotFoundError
		if errors.As(err, &notFoundErr) {
			return c.Send(err.Error())
		}
		slog.Error("got error from ledgerService.GetHolding", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.HoldingResponse(holding))
}

// ProcessCommand applies a trade typed as free text.
func (ctrl *Controller) ProcessCommand(c tele.Context) error {
	ctx := utils.CreateCtxWithRqID(c)
	rqID := utils.GetRequestIDFromCtx(ctx)

	cmd, err := parser.Parse(c.Text())
	if err != nil {
		return c.Send(err.Error() + "\n\n" + helpMsg)
	}

	res, err := ctrl.ledgerService.ApplyTransaction(ctx, cmd.Request())
	if err != nil {
		var (
			validationErr   *ledger.ValidationError
			notFoundErr     *ledger.NotFoundError
			insufficientErr *ledger.InsufficientQuantityError
			overflowErr     *ledger.QuantityOverflowError
		)
		if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) || errors.As(err, &insufficientErr) || errors.As(err, &overflowErr) {
			return c.Send(err.Error())
		}
		slog.Error("got error from ledgerService.ApplyTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return c.Send(internalErrMsg)
	}

	return c.Send(telebotConverter.MutationResponse(res))
}
