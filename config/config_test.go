package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{"APP_NAME": "portfolio_ledger"}})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "portfolio.json", cfg.LocalFile.Path)
	assert.Equal(t, 3, cfg.Ledger.MaxAttempts)
	assert.Equal(t, "residual", cfg.Ledger.SellPolicy)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.Telegram.Enabled)
}

func TestParse_S3(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{
		"STORAGE_BACKEND":     "s3",
		"S3_BUCKET":           "portfolio-bucket",
		"S3_REGION":           "ap-southeast-2",
		"LEDGER_MAX_ATTEMPTS": "5",
	}})
	require.NoError(t, err)

	assert.Equal(t, "portfolio-bucket", cfg.S3.Bucket)
	assert.Equal(t, "stocks/portfolio.json", cfg.S3.Key)
	assert.Equal(t, 5, cfg.Ledger.MaxAttempts)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown backend":       {"STORAGE_BACKEND": "ftp"},
		"s3 without bucket":     {"STORAGE_BACKEND": "s3"},
		"redis without host":    {"STORAGE_BACKEND": "redis"},
		"postgres without host": {"STORAGE_BACKEND": "postgres"},
		"zero attempts":         {"LEDGER_MAX_ATTEMPTS": "0"},
		"unknown sell policy":   {"LEDGER_SELL_POLICY": "fifo"},
		"telegram no token":     {"TELEGRAM_ENABLED": "true"},
		"report no credentials": {"REPORT_ENABLED": "true"},
	}

	for name, environment := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parse(env.Options{Environment: environment})
			assert.Error(t, err)
		})
	}
}
