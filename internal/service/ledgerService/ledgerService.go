package ledgerService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository"
	"github.com/KotFed0t/portfolio_ledger/internal/ledger"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/service"
	"github.com/KotFed0t/portfolio_ledger/utils"
)

type Repository interface {
	GetPortfolio(ctx context.Context) (model.Portfolio, error)
	PutPortfolio(ctx context.Context, portfolio model.Portfolio, expectedVersion string) (version string, err error)
}

// LedgerService applies transactions to the persisted portfolio. Every mutation is a
// read-modify-write guarded by the repository's version precondition and is retried
// from a fresh read when it loses a race.
type LedgerService struct {
	repo        Repository
	calc        *ledger.Calculator
	maxAttempts int
	now         func() time.Time
}

func New(cfg *config.Config, repo Repository) *LedgerService {
	sellPolicy, err := ledger.ParseSellPolicy(cfg.Ledger.SellPolicy)
	if err != nil {
		slog.Error("invalid ledger sell policy", slog.String("err", err.Error()))
		panic(err)
	}

	maxAttempts := cfg.Ledger.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &LedgerService{
		repo:        repo,
		calc:        ledger.NewCalculator(sellPolicy),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (s *LedgerService) Buy(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error) {
	req.Type = string(model.Buy)
	return s.ApplyTransaction(ctx, req)
}

func (s *LedgerService) Sell(ctx context.Context, req model.TransactionRequest) (model.MutationResult, error) {
	req.Type = string(model.Sell)
	return s.ApplyTransaction(ctx, req)
}

// ApplyTransaction validates req and applies it in the direction named by req.Type.
func (s *LedgerService) ApplyTransaction(ctx context.Context, req model.TransactionRequest) (res model.MutationResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ApplyTransaction"

	slog.Debug("ApplyTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("request", req))
	defer func() {
		slog.Debug("ApplyTransaction finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	tx, err := ledger.Validate(req)
	if err != nil {
		slog.Warn("transaction rejected", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.MutationResult{}, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		res, err = s.mutate(ctx, tx)
		if err == nil {
			slog.Info(
				"transaction applied",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("symbol", tx.Symbol),
				slog.String("direction", string(tx.Direction)),
				slog.Int("quantity", res.Holding.Quantity),
				slog.String("averagePrice", res.Holding.AveragePrice.String()),
				slog.Bool("removed", res.Removed),
				slog.Int("attempt", attempt),
			)
			return res, nil
		}

		if !errors.Is(err, repository.ErrConflict) {
			return model.MutationResult{}, err
		}

		slog.Warn(
			"portfolio changed concurrently, retrying",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Int("maxAttempts", s.maxAttempts),
		)
	}

	slog.Error("retries exhausted", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	return model.MutationResult{}, fmt.Errorf("%w: %d attempts: %w", service.ErrContention, s.maxAttempts, err)
}

// mutate runs one fetch, compute, persist cycle. A conflicting write is returned as is
// so the caller can retry it.
func (s *LedgerService) mutate(ctx context.Context, tx model.StockTransaction) (model.MutationResult, error) {
	portfolio, err := s.repo.GetPortfolio(ctx)
	if err != nil {
		return model.MutationResult{}, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}

	holding, err := s.calc.Apply(portfolio, tx)
	if err != nil {
		return model.MutationResult{}, err
	}

	updated := portfolio.WithHolding(holding)
	updated.LastUpdated = s.stamp(portfolio.LastUpdated)

	_, err = s.repo.PutPortfolio(ctx, updated, portfolio.Version)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return model.MutationResult{}, err
		}
		return model.MutationResult{}, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}

	return model.MutationResult{
		Transaction: tx,
		Holding:     holding,
		Removed:     holding.Quantity == 0,
	}, nil
}

// stamp never moves lastUpdated backwards, even if the local clock is behind the
// writer of the previous version.
func (s *LedgerService) stamp(previous time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(previous) {
		return previous
	}
	return now
}

func (s *LedgerService) GetPortfolio(ctx context.Context) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op))

	portfolio, err := s.repo.GetPortfolio(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, fmt.Errorf("%w: %w", service.ErrStorageUnavailable, err)
	}

	return portfolio, nil
}

func (s *LedgerService) GetHolding(ctx context.Context, symbol string) (model.StockHolding, error) {
	portfolio, err := s.GetPortfolio(ctx)
	if err != nil {
		return model.StockHolding{}, err
	}

	holding, ok := portfolio.Holding(symbol)
	if !ok {
		return model.StockHolding{}, &ledger.NotFoundError{Symbol: symbol}
	}

	return holding, nil
}
