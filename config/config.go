package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP        HTTP
	Storage     Storage
	LocalFile   LocalFile
	S3          S3
	Postgres    Postgres
	Redis       Redis
	Ledger      Ledger
	Telegram    Telegram
	Report      Report
	GoogleDrive GoogleDrive
}

type HTTP struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
}

type Storage struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"file"`
	// PortfolioKey names the portfolio inside shared backends (redis key, postgres row).
	PortfolioKey string `env:"PORTFOLIO_KEY" envDefault:"stocks/portfolio.json"`
}

type LocalFile struct {
	Path string `env:"PORTFOLIO_FILE" envDefault:"portfolio.json"`
}

type S3 struct {
	Bucket       string `env:"S3_BUCKET"`
	Key          string `env:"S3_KEY" envDefault:"stocks/portfolio.json"`
	Region       string `env:"S3_REGION"`
	Endpoint     string `env:"S3_ENDPOINT"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT" envDefault:"5432"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type Ledger struct {
	MaxAttempts int    `env:"LEDGER_MAX_ATTEMPTS" envDefault:"3"`
	SellPolicy  string `env:"LEDGER_SELL_POLICY" envDefault:"residual"`
}

type Telegram struct {
	Enabled    bool          `env:"TELEGRAM_ENABLED"`
	Token      string        `env:"TELEGRAM_TOKEN"`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type Report struct {
	Enabled         bool          `env:"REPORT_ENABLED"`
	Crontab         string        `env:"REPORT_CRONTAB" envDefault:"0 0 18 * * *"`
	CleanupInterval time.Duration `env:"REPORT_CLEANUP_INTERVAL" envDefault:"24h"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := parse(env.Options{})
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that only matter for the selected backend and the
// optional features.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendFile:
		if c.LocalFile.Path == "" {
			errs = append(errs, errors.New("PORTFOLIO_FILE is required for the file backend"))
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
		if c.S3.Key == "" {
			errs = append(errs, errors.New("S3_KEY is required for the s3 backend"))
		}
	case BackendRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required for the redis backend"))
		}
	case BackendPostgres:
		if c.Postgres.Host == "" || c.Postgres.DbName == "" || c.Postgres.User == "" {
			errs = append(errs, errors.New("PG_HOST, PG_DB_NAME and PG_USER are required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	if c.Ledger.MaxAttempts < 1 {
		errs = append(errs, errors.New("LEDGER_MAX_ATTEMPTS must be at least 1"))
	}

	switch c.Ledger.SellPolicy {
	case "", "residual", "average":
	default:
		errs = append(errs, fmt.Errorf("unknown LEDGER_SELL_POLICY %q", c.Ledger.SellPolicy))
	}

	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("TELEGRAM_TOKEN is required when telegram is enabled"))
	}

	if c.Report.Enabled && c.GoogleDrive.CredentialsFile == "" {
		errs = append(errs, errors.New("GOOGLE_DRIVE_CREDENTIALS_FILE is required when reports are enabled"))
	}

	return errors.Join(errs...)
}
