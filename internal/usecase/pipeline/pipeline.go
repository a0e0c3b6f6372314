// Package pipeline runs the one-shot build: source tables -> catalog -> similarity index -> snapshot.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
	"github.com/kailas-cloud/bookrec/internal/usecase/catalog"
	"github.com/kailas-cloud/bookrec/internal/usecase/index"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

// Build stages, used as metric labels.
const (
	StageLoad     = "load"
	StageCatalog  = "catalog"
	StageIndex    = "index"
	StageSnapshot = "snapshot"
)

// Drop reasons, used as metric labels.
const (
	DropSkippedItem     = "skipped_item"
	DropDuplicateISBN   = "duplicate_isbn"
	DropUnknownISBN     = "unknown_isbn"
	DropMalformedRating = "malformed_rating"
	DropInactiveUser    = "inactive_user"
	DropRareTitle       = "rare_title"
)

// Config holds every build parameter.
type Config struct {
	Columns    catalog.Columns
	Thresholds index.Thresholds
	Popular    recommend.PopularConfig
	PriceMin   int
	PriceMax   int
	PriceSeed  uint64 // 0 = seeded from the clock
	Workers    int    // 0 = GOMAXPROCS
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Columns:    catalog.DefaultColumns(),
		Thresholds: index.DefaultThresholds(),
		Popular:    recommend.DefaultPopularConfig(),
		PriceMin:   catalog.DefaultPriceMin,
		PriceMax:   catalog.DefaultPriceMax,
	}
}

// Report summarizes a build.
type Report struct {
	Catalog  catalog.Stats
	Index    index.Stats
	Duration time.Duration
}

// Pipeline builds snapshots.
type Pipeline struct {
	cfg    Config
	prices catalog.PriceSource
	obs    Observer
	logger *zap.Logger
}

// New creates a pipeline. obs and logger may be nil.
func New(cfg Config, obs Observer, logger *zap.Logger) *Pipeline {
	if obs == nil {
		obs = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, obs: obs, logger: logger}
}

// WithPrices overrides the seeded price generator.
func (p *Pipeline) WithPrices(ps catalog.PriceSource) *Pipeline {
	p.prices = ps
	return p
}

// Run loads both tables concurrently, then builds the catalog, the index and the snapshot.
func (p *Pipeline) Run(ctx context.Context, src Source) (*recommend.Snapshot, Report, error) {
	var rep Report
	began := time.Now()

	var items, ratings dataset.Table
	err := p.stage(StageLoad, func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			if items, err = src.Items(gctx); err != nil {
				return fmt.Errorf("load items: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if ratings, err = src.Ratings(gctx); err != nil {
				return fmt.Errorf("load ratings: %w", err)
			}
			return nil
		})
		return g.Wait() //nolint:wrapcheck // wrapped inside the goroutines
	})
	if err != nil {
		return nil, rep, err
	}
	p.logger.Info("Source tables loaded", zap.Int("item_rows", items.Len()), zap.Int("rating_rows", ratings.Len()))

	var cat catalog.Result
	err = p.stage(StageCatalog, func() error {
		var err error
		cat, err = catalog.New(p.cfg.Columns, p.priceSource(), p.logger).Build(ctx, items, ratings)
		return err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return nil, rep, fmt.Errorf("build catalog: %w", err)
	}
	rep.Catalog = cat.Stats
	p.obs.Dropped(DropSkippedItem, cat.Stats.SkippedItems)
	p.obs.Dropped(DropDuplicateISBN, cat.Stats.DuplicateISBNs)
	p.obs.Dropped(DropUnknownISBN, cat.Stats.UnknownISBNRatings)
	p.obs.Dropped(DropMalformedRating, cat.Stats.MalformedRatings)

	var idx index.Result
	err = p.stage(StageIndex, func() error {
		var err error
		idx, err = index.New(p.cfg.Thresholds, p.cfg.Workers, p.logger).Build(ctx, cat.Ratings)
		return err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return nil, rep, fmt.Errorf("build index: %w", err)
	}
	rep.Index = idx.Stats
	p.obs.Dropped(DropInactiveUser, idx.Stats.InputEvents-idx.Stats.ActiveEvents)
	p.obs.Dropped(DropRareTitle, idx.Stats.ActiveEvents-idx.Stats.FinalEvents)

	var snap *recommend.Snapshot
	err = p.stage(StageSnapshot, func() error {
		var err error
		snap, err = recommend.NewSnapshot(cat.Catalog, idx.Index, cat.Ratings, p.cfg.Popular)
		return err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return nil, rep, fmt.Errorf("build snapshot: %w", err)
	}

	p.obs.Sizes(cat.Stats.Books, cat.Stats.JoinedRatings, idx.Stats.SurvivingUsers, idx.Stats.SurvivingTitles)
	rep.Duration = time.Since(began)

	p.logger.Info("Snapshot ready",
		zap.Int("books", cat.Stats.Books),
		zap.Int("joined_ratings", cat.Stats.JoinedRatings),
		zap.Int("index_titles", idx.Stats.SurvivingTitles),
		zap.Int("index_users", idx.Stats.SurvivingUsers),
		zap.Int("popular", len(snap.Popular())),
		zap.Duration("duration", rep.Duration),
	)
	return snap, rep, nil
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	if err != nil {
		p.logger.Error("Build stage failed", zap.String("stage", name), zap.Duration("duration", d), zap.Error(err))
		return err
	}
	p.obs.StageDone(name, d)
	p.logger.Debug("Build stage done", zap.String("stage", name), zap.Duration("duration", d))
	return nil
}

func (p *Pipeline) priceSource() catalog.PriceSource {
	if p.prices != nil {
		return p.prices
	}
	return catalog.NewPriceGenerator(p.cfg.PriceSeed, p.cfg.PriceMin, p.cfg.PriceMax)
}
