package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository"
	"github.com/KotFed0t/portfolio_ledger/internal/converter/docConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/internal/model/dbModel"
	"github.com/KotFed0t/portfolio_ledger/utils"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
)

// Postgres keeps the portfolio document in one row; the version column is the token.
type Postgres struct {
	db  *sqlx.DB
	key string
}

func NewPostgres(cfg *config.Config, db *sqlx.DB) *Postgres {
	return &Postgres{db: db, key: cfg.Storage.PortfolioKey}
}

func (p *Postgres) GetPortfolio(ctx context.Context) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPortfolio"
	query := `
		SELECT portfolio_key, document, version, last_updated
		FROM portfolios
		WHERE portfolio_key = $1
		`

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", portfolio.Version))
		}
	}()

	row := dbModel.PortfolioDocument{}
	err = p.db.QueryRowxContext(ctx, query, p.key).StructScan(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewPortfolio(), nil
		}
		return model.Portfolio{}, fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}

	portfolio, _, err = docConverter.Decode(row.Document)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: decode: %w", repository.ErrStorageUnavailable, err)
	}
	portfolio.Version = strconv.FormatInt(row.Version, 10)

	return portfolio, nil
}

func (p *Postgres) PutPortfolio(ctx context.Context, portfolio model.Portfolio, expectedVersion string) (version string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.PutPortfolio"
	params := map[string]any{
		"portfolioKey":    p.key,
		"expectedVersion": expectedVersion,
	}

	slog.Debug("PutPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("PutPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("PutPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", version))
		}
	}()

	document, err := docConverter.Encode(portfolio, "")
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", repository.ErrStorageUnavailable, err)
	}

	var newVersion int64
	if expectedVersion == "" {
		query := `
			INSERT INTO portfolios (portfolio_key, document, version, last_updated)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (portfolio_key) DO NOTHING
			RETURNING version
			`
		err = p.db.QueryRowxContext(ctx, query, p.key, document, portfolio.LastUpdated).Scan(&newVersion)
	} else {
		expected, parseErr := strconv.ParseInt(expectedVersion, 10, 64)
		if parseErr != nil {
			return "", fmt.Errorf("%w: malformed version %q", repository.ErrConflict, expectedVersion)
		}

		query := `
			UPDATE portfolios
			SET
				document = $1,
				version = version + 1,
				last_updated = $2
			WHERE
				portfolio_key = $3
				AND version = $4
			RETURNING version
			`
		err = p.db.QueryRowxContext(ctx, query, document, portfolio.LastUpdated, p.key, expected).Scan(&newVersion)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: version %q is stale", repository.ErrConflict, expectedVersion)
		}
		return "", fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}

	return strconv.FormatInt(newVersion, 10), nil
}
