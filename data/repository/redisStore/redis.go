package redisStore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository"
	"github.com/KotFed0t/portfolio_ledger/internal/converter/docConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	docField     = "doc"
	versionField = "version"
)

// RedisStore keeps the portfolio document and its version in one redis hash.
// Conditional writes use WATCH + MULTI/EXEC.
type RedisStore struct {
	redis *redis.Client
	key   string
}

func NewRedisStore(redisClient *redis.Client, cfg *config.Config) *RedisStore {
	return &RedisStore{redis: redisClient, key: cfg.Storage.PortfolioKey}
}

func (r *RedisStore) GetPortfolio(ctx context.Context) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", r.key))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", portfolio.Version))
		}
	}()

	return r.read(ctx, r.redis)
}

func (r *RedisStore) PutPortfolio(ctx context.Context, portfolio model.Portfolio, expectedVersion string) (version string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisStore.PutPortfolio"

	slog.Debug("PutPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("expectedVersion", expectedVersion))
	defer func() {
		if err != nil {
			slog.Error("PutPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("PutPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", version))
		}
	}()

	version = uuid.NewString()
	payload, err := docConverter.Encode(portfolio, "")
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", repository.ErrStorageUnavailable, err)
	}

	err = r.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, r.key, versionField).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
		}

		if current != expectedVersion {
			return fmt.Errorf("%w: stored %q, expected %q", repository.ErrConflict, current, expectedVersion)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, docField, payload, versionField, version)
			return nil
		})
		return err
	}, r.key)

	switch {
	case err == nil:
		return version, nil
	case errors.Is(err, redis.TxFailedErr):
		return "", fmt.Errorf("%w: %w", repository.ErrConflict, err)
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrStorageUnavailable):
		return "", err
	default:
		return "", fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}
}

func (r *RedisStore) read(ctx context.Context, c redis.Cmdable) (model.Portfolio, error) {
	values, err := c.HMGet(ctx, r.key, docField, versionField).Result()
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}

	doc, _ := values[0].(string)
	version, _ := values[1].(string)
	if doc == "" {
		return model.NewPortfolio(), nil
	}

	portfolio, _, err := docConverter.Decode([]byte(doc))
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: decode: %w", repository.ErrStorageUnavailable, err)
	}
	portfolio.Version = version

	return portfolio, nil
}
