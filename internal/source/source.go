// Package source loads the raw item and rating tables from a collaborator.
package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/db"
	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
	"github.com/kailas-cloud/bookrec/internal/source/csvfile"
	"github.com/kailas-cloud/bookrec/internal/source/parquetfile"
	"github.com/kailas-cloud/bookrec/internal/source/redishash"
	"github.com/kailas-cloud/bookrec/internal/source/sqlitedb"
)

// Supported drivers.
const (
	DriverCSV     = "csv"
	DriverParquet = "parquet"
	DriverSQLite  = "sqlite"
	DriverRedis   = "redis"
)

// Source yields the raw item table and the raw rating table.
type Source interface {
	Items(ctx context.Context) (dataset.Table, error)
	Ratings(ctx context.Context) (dataset.Table, error)
}

// Config selects and parameterizes a driver.
type Config struct {
	Driver       string
	ItemsPath    string
	RatingsPath  string
	Delimiter    rune
	SQLiteDSN    string
	ItemsTable   string
	RatingsTable string
	KeyPrefix    string
	// Columns tells the redis driver how to name the rating columns; zero means Book-Crossing headers.
	Columns redishash.Columns
}

// Store is what the redis driver needs from the database.
type Store interface {
	db.HashStore
	db.KVStore
}

// New creates the configured source. store is only used by the redis driver and may be nil otherwise.
func New(cfg Config, store Store, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case DriverCSV:
		return csvfile.New(cfg.ItemsPath, cfg.RatingsPath, cfg.Delimiter), nil
	case DriverParquet:
		return parquetfile.New(cfg.ItemsPath, cfg.RatingsPath), nil
	case DriverSQLite:
		return sqlitedb.New(cfg.SQLiteDSN, cfg.ItemsTable, cfg.RatingsTable), nil
	case DriverRedis:
		if store == nil {
			return nil, fmt.Errorf("%w: redis source requires a database store", domain.ErrConfiguration)
		}
		cols := cfg.Columns
		if cols == (redishash.Columns{}) {
			cols = redishash.DefaultColumns()
		}
		return redishash.New(store, cfg.KeyPrefix, cols, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown source driver %q", domain.ErrConfiguration, cfg.Driver)
	}
}
