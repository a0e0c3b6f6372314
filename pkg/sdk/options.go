package bookrec

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver       string // "csv", "parquet", "sqlite" or "custom"
	itemsPath    string
	ratingsPath  string
	delimiter    rune
	dsn          string
	itemsTable   string
	ratingsTable string
	source       Source

	minUserRatings  int
	minTitleRatings int
	priceSeed       uint64
	workers         int
	defaultK        int
	popularMin      int
	popularLimit    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCSV reads the tables from delimited files. A zero delimiter means ','.
func WithCSV(itemsPath, ratingsPath string, delimiter rune) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "csv"
		c.itemsPath = itemsPath
		c.ratingsPath = ratingsPath
		c.delimiter = delimiter
	})
}

// WithParquet reads the tables from flat Parquet files.
func WithParquet(itemsPath, ratingsPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "parquet"
		c.itemsPath = itemsPath
		c.ratingsPath = ratingsPath
	})
}

// WithSQLite reads the tables from a SQLite database.
// Empty table names default to "books" and "ratings".
func WithSQLite(dsn, itemsTable, ratingsTable string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.dsn = dsn
		c.itemsTable = itemsTable
		c.ratingsTable = ratingsTable
	})
}

// WithSource uses a caller-provided loader. Columns must use the Book-Crossing headers.
func WithSource(src Source) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "custom"
		c.source = src
	})
}

// WithThresholds sets the density filters.
// Defaults: users with at least 100 ratings, titles with at least 20 ratings from those users.
func WithThresholds(minUserRatings, minTitleRatings int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minUserRatings = minUserRatings
		c.minTitleRatings = minTitleRatings
	})
}

// WithPriceSeed makes synthesized prices reproducible. Zero seeds from the clock (default).
func WithPriceSeed(seed uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.priceSeed = seed
	})
}

// WithWorkers bounds the goroutines computing similarity rows. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithDefaultK sets how many recommendations Recommend returns when k <= 0. Default: 9.
func WithDefaultK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultK = k
	})
}

// WithPopular sets the popularity list cut-off and length. Defaults: 250 ratings, 50 titles.
func WithPopular(minRatings, limit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.popularMin = minRatings
		c.popularLimit = limit
	})
}

// WithLogger enables structured logging of the build and of failed queries.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts, durations, build stages)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
