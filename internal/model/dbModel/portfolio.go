package dbModel

import "time"

type PortfolioDocument struct {
	PortfolioKey string    `db:"portfolio_key"`
	Document     []byte    `db:"document"`
	Version      int64     `db:"version"`
	LastUpdated  time.Time `db:"last_updated"`
}
