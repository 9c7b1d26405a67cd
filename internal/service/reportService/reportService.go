package reportService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/KotFed0t/portfolio_ledger/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/utils"
)

const fileTimeLayout = "2006-01-02_15-04-05"

type PortfolioReader interface {
	GetPortfolio(ctx context.Context) (model.Portfolio, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, portfolio model.Portfolio) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type ReportService struct {
	portfolio    PortfolioReader
	generator    ReportGenerator
	cloudStorage CloudStorage
	now          func() time.Time
}

func New(portfolio PortfolioReader, generator ReportGenerator, cloudStorage CloudStorage) *ReportService {
	return &ReportService{
		portfolio:    portfolio,
		generator:    generator,
		cloudStorage: cloudStorage,
		now:          time.Now,
	}
}

// ExportHoldingsReport renders the current holdings and uploads them, returning the
// download link.
func (s *ReportService) ExportHoldingsReport(ctx context.Context) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.ExportHoldingsReport"

	slog.Debug("ExportHoldingsReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		if err != nil {
			slog.Error("ExportHoldingsReport failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Info("ExportHoldingsReport completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("link", downloadLink))
		}
	}()

	portfolio, err := s.portfolio.GetPortfolio(ctx)
	if err != nil {
		return "", fmt.Errorf("get portfolio: %w", err)
	}

	fileBytes, ext, err := s.generator.Generate(ctx, portfolio)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}

	filename := googleDriveApi.ReportPrefix + s.now().UTC().Format(fileTimeLayout) + ext

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}

	return downloadLink, nil
}

func (s *ReportService) CleanupReports(ctx context.Context) error {
	return s.cloudStorage.DeleteOldFiles(ctx)
}
