// Command bookrec-seed copies the book and rating tables from files into Redis.
//
// Usage:
//
//	bookrec-seed -items Books.csv -ratings Ratings.csv             # CSV (delimiter from config)
//	bookrec-seed -format parquet -items books.parquet -ratings ratings.parquet
//	bookrec-seed -format sqlite -dsn file:books.db                 # tables from source.sqlite
//
// The Redis address, password and key prefix come from the ENV config file
// (database section). Re-running overwrites books and merges ratings.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/config"
	dbRedis "github.com/kailas-cloud/bookrec/internal/db/redis"
	logpkg "github.com/kailas-cloud/bookrec/internal/logger"
	"github.com/kailas-cloud/bookrec/internal/source"
	"github.com/kailas-cloud/bookrec/internal/source/redishash"
	"github.com/kailas-cloud/bookrec/internal/version"
)

type options struct {
	format      string
	itemsPath   string
	ratingsPath string
	dsn         string
	prefix      string
	configPath  string
}

func main() {
	var opts options
	flag.StringVar(&opts.format, "format", source.DriverCSV, "input format: csv, parquet or sqlite")
	flag.StringVar(&opts.itemsPath, "items", "", "path to the books table")
	flag.StringVar(&opts.ratingsPath, "ratings", "", "path to the ratings table")
	flag.StringVar(&opts.dsn, "dsn", "", "sqlite DSN (format=sqlite)")
	flag.StringVar(&opts.prefix, "prefix", "", "Redis key prefix (default: database.key_prefix)")
	flag.StringVar(&opts.configPath, "config", "", "config file (default: config/<ENV>.yaml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "bookrec-seed:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srcCfg, err := seedSourceConfig(opts, cfg)
	if err != nil {
		return err
	}
	src, err := source.New(srcCfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	start := time.Now()
	items, err := src.Items(ctx)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}
	ratings, err := src.Ratings(ctx)
	if err != nil {
		return fmt.Errorf("read ratings: %w", err)
	}
	logger.Info("Source tables read",
		zap.String("format", srcCfg.Driver),
		zap.Int("item_rows", items.Len()),
		zap.Int("rating_rows", ratings.Len()),
	)

	prefix := opts.prefix
	if prefix == "" {
		prefix = cfg.Database.KeyPrefix
	}
	cols := redishash.Columns{
		ItemID:       cfg.Source.Columns.ItemID,
		UserID:       cfg.Source.Columns.UserID,
		RatingItemID: cfg.Source.Columns.RatingItemID,
		Rating:       cfg.Source.Columns.Rating,
	}

	stats, err := redishash.NewWriter(store, prefix, cols, logger).Write(ctx, items, ratings)
	if err != nil {
		return fmt.Errorf("seed redis: %w", err)
	}

	logger.Info("Seeding complete",
		zap.String("prefix", prefix),
		zap.Int("books", stats.Books),
		zap.Int("skipped_books", stats.SkippedBooks),
		zap.Int("duplicate_books", stats.DuplicateBooks),
		zap.Int("users", stats.Users),
		zap.Int("ratings", stats.Ratings),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// seedSourceConfig builds the file source the seeder reads from.
func seedSourceConfig(opts options, cfg config.Config) (source.Config, error) {
	srcCfg := source.Config{
		Driver:       opts.format,
		ItemsPath:    opts.itemsPath,
		RatingsPath:  opts.ratingsPath,
		Delimiter:    cfg.Source.DelimiterRune(),
		SQLiteDSN:    opts.dsn,
		ItemsTable:   cfg.Source.SQLite.ItemsTable,
		RatingsTable: cfg.Source.SQLite.RatingsTable,
	}

	switch opts.format {
	case source.DriverCSV, source.DriverParquet:
		if opts.itemsPath == "" || opts.ratingsPath == "" {
			return srcCfg, errors.New("-items and -ratings are required")
		}
	case source.DriverSQLite:
		if opts.dsn == "" {
			srcCfg.SQLiteDSN = cfg.Source.SQLite.DSN
		}
		if srcCfg.SQLiteDSN == "" {
			return srcCfg, errors.New("-dsn is required for format sqlite")
		}
	default:
		return srcCfg, fmt.Errorf("unsupported format %q (want csv, parquet or sqlite)", opts.format)
	}
	return srcCfg, nil
}
