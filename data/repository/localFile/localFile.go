package localFile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/KotFed0t/portfolio_ledger/config"
	"github.com/KotFed0t/portfolio_ledger/data/repository"
	"github.com/KotFed0t/portfolio_ledger/internal/converter/docConverter"
	"github.com/KotFed0t/portfolio_ledger/internal/model"
	"github.com/KotFed0t/portfolio_ledger/utils"
	"github.com/google/uuid"
)

// LocalFile keeps the portfolio in a JSON file. The version token lives inside the
// document. Conditional writes are serialized by an in-process mutex, so the file must
// not be shared between processes.
type LocalFile struct {
	path string
	mu   sync.Mutex
}

func New(cfg *config.Config) *LocalFile {
	return &LocalFile{path: cfg.LocalFile.Path}
}

func NewWithPath(path string) *LocalFile {
	return &LocalFile{path: path}
}

func (f *LocalFile) GetPortfolio(ctx context.Context) (portfolio model.Portfolio, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LocalFile.GetPortfolio"

	slog.Debug("GetPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("path", f.path))
	defer func() {
		if err != nil {
			slog.Error("GetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", portfolio.Version))
		}
	}()

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.read()
}

func (f *LocalFile) PutPortfolio(ctx context.Context, portfolio model.Portfolio, expectedVersion string) (version string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LocalFile.PutPortfolio"

	slog.Debug("PutPortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("expectedVersion", expectedVersion))
	defer func() {
		if err != nil {
			slog.Error("PutPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("PutPortfolio completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("version", version))
		}
	}()

	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return "", err
	}

	if current.Version != expectedVersion {
		return "", fmt.Errorf("%w: stored %q, expected %q", repository.ErrConflict, current.Version, expectedVersion)
	}

	version = uuid.NewString()
	data, err := docConverter.Encode(portfolio, version)
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", repository.ErrStorageUnavailable, err)
	}

	if err = f.writeAtomic(data); err != nil {
		return "", fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}

	return version, nil
}

func (f *LocalFile) read() (model.Portfolio, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewPortfolio(), nil
		}
		return model.Portfolio{}, fmt.Errorf("%w: %w", repository.ErrStorageUnavailable, err)
	}

	portfolio, doc, err := docConverter.Decode(data)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("%w: decode %s: %w", repository.ErrStorageUnavailable, f.path, err)
	}
	portfolio.Version = doc.Version

	return portfolio, nil
}

func (f *LocalFile) writeAtomic(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
