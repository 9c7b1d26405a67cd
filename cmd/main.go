package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data"
	"github.com/KotFed0t/portfolio_ledger/data/repository/localFile"
	"github.com/KotFed0t/portfolio_ledger/data/repository/postgres"
	"github.com/KotFed0t/portfolio_ledger/data/repository/redisStore"
	"github.com/KotFed0t/portfolio_ledger/data/repository/s3Store"
	"github.com/KotFed0t/portfolio_ledger/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_ledger/internal/httpserver"
	"github.com/KotFed0t/portfolio_ledger/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/portfolio_ledger/internal/scheduler"
	"github.com/KotFed0t/portfolio_ledger/internal/service/ledgerService"
	"github.com/KotFed0t/portfolio_ledger/internal/service/reportService"
	"github.com/KotFed0t/portfolio_ledger/internal/tgbot"
	"github.com/KotFed0t/portfolio_ledger/internal/transport/rest"
	"github.com/KotFed0t/portfolio_ledger/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.String("storageBackend", cfg.Storage.Backend), slog.String("httpAddr", cfg.HTTP.Addr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo := newRepository(ctx, cfg)
	defer closeRepo()

	ledgerSrv := ledgerService.New(cfg, repo)

	httpServer := httpserver.New(cfg, rest.NewRouter(rest.NewHandler(ledgerSrv)))
	httpServer.Start()
	defer httpServer.Stop()

	if cfg.Report.Enabled {
		googleCloudStorage := googleDriveApi.New(ctx, cfg)
		reportSrv := reportService.New(ledgerSrv, xlsxGenerator.New(), googleCloudStorage)

		sched := scheduler.New()
		sched.NewCrontabJob("export holdings report", func(ctx context.Context) error {
			_, err := reportSrv.ExportHoldingsReport(ctx)
			return err
		}, cfg.Report.Crontab, false)
		sched.NewIntervalJob("delete old reports", reportSrv.CleanupReports, cfg.Report.CleanupInterval, true)
		sched.Start()
		defer sched.Stop()
	}

	if cfg.Telegram.Enabled {
		tgController := telegram.NewController(ledgerSrv)

		tgBot := tgbot.New(cfg, tgController)
		tgBot.Start()
		defer tgBot.Stop()
	}

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

// newRepository connects the storage backend selected by STORAGE_BACKEND. The returned
// func releases its client.
func newRepository(ctx context.Context, cfg *config.Config) (ledgerService.Repository, func()) {
	switch cfg.Storage.Backend {
	case config.BackendS3:
		return s3Store.New(data.NewS3Client(ctx, cfg), cfg), func() {}
	case config.BackendRedis:
		redisClient := data.NewRedisClient(ctx, cfg)
		return redisStore.NewRedisStore(redisClient, cfg), func() { _ = redisClient.Close() }
	case config.BackendPostgres:
		pgClient := data.NewPostgresClient(ctx, cfg)
		return postgres.NewPostgres(cfg, pgClient), func() { _ = pgClient.Close() }
	default:
		return localFile.New(cfg), func() {}
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
