package bookrec

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/bookrec/internal/domain"
	logpkg "github.com/kailas-cloud/bookrec/internal/logger"
	"github.com/kailas-cloud/bookrec/internal/source"
	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	"github.com/kailas-cloud/bookrec/internal/usecase/pipeline"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

// recommendUseCase is the internal interface for queries, swapped in tests.
type recommendUseCase interface {
	Recommend(ctx context.Context, title string, k int) ([]recommend.Recommendation, error)
	Popular(ctx context.Context) ([]recommend.PopularBook, error)
	Titles() []string
}

// Client answers recommendation queries from an immutable in-memory snapshot.
// It is safe for concurrent use.
type Client struct {
	svc       recommendUseCase
	healthSvc healthUseCase
	stats     BuildStats
	obs       *observer
}

// New loads the tables and builds the snapshot. It blocks until the build finishes
// or ctx is cancelled.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	src, err := buildSource(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	logger := logpkg.FromSlog(cfg.logger)

	start := time.Now()
	snap, report, err := pipeline.New(pipelineConfig(cfg), obs, logger).Run(ctx, src)
	obs.observe("build", start, err)
	if err != nil {
		return nil, fmt.Errorf("bookrec: build snapshot: %w", err)
	}

	svc := recommend.New(snap, cfg.defaultK, nil, logger)
	return &Client{
		svc:       svc,
		healthSvc: healthuc.New(svc, nil),
		stats:     statsFromReport(report),
		obs:       obs,
	}, nil
}

func buildSource(cfg *clientConfig) (pipeline.Source, error) {
	switch cfg.driver {
	case "":
		return nil, fmt.Errorf("bookrec: %w: no source configured (use WithCSV, WithParquet, WithSQLite or WithSource)",
			domain.ErrConfiguration)
	case "custom":
		if cfg.source == nil {
			return nil, fmt.Errorf("bookrec: %w: WithSource requires a non-nil source", domain.ErrConfiguration)
		}
		return cfg.source, nil
	}

	src, err := source.New(source.Config{
		Driver:       cfg.driver,
		ItemsPath:    cfg.itemsPath,
		RatingsPath:  cfg.ratingsPath,
		Delimiter:    cfg.delimiter,
		SQLiteDSN:    cfg.dsn,
		ItemsTable:   cfg.itemsTable,
		RatingsTable: cfg.ratingsTable,
	}, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("bookrec: %w", err)
	}
	return src, nil
}

func pipelineConfig(cfg *clientConfig) pipeline.Config {
	pc := pipeline.DefaultConfig()
	if cfg.minUserRatings > 0 {
		pc.Thresholds.MinUserRatings = cfg.minUserRatings
	}
	if cfg.minTitleRatings > 0 {
		pc.Thresholds.MinTitleRatings = cfg.minTitleRatings
	}
	if cfg.popularMin > 0 {
		pc.Popular.MinRatings = cfg.popularMin
	}
	if cfg.popularLimit > 0 {
		pc.Popular.Limit = cfg.popularLimit
	}
	pc.PriceSeed = cfg.priceSeed
	pc.Workers = cfg.workers
	return pc
}

func statsFromReport(r pipeline.Report) BuildStats {
	return BuildStats{
		Books:          r.Catalog.Books,
		Titles:         r.Catalog.Titles,
		JoinedRatings:  r.Catalog.JoinedRatings,
		IndexUsers:     r.Index.SurvivingUsers,
		IndexTitles:    r.Index.SurvivingTitles,
		SkippedItems:   r.Catalog.SkippedItems,
		DuplicateISBNs: r.Catalog.DuplicateISBNs,
		UnknownISBNs:   r.Catalog.UnknownISBNRatings,
		Malformed:      r.Catalog.MalformedRatings,
		Duration:       r.Duration,
	}
}

// Recommend returns up to k titles most similar to title, best first.
// k <= 0 uses the default of 9. Unknown titles return ErrNotFound.
func (c *Client) Recommend(ctx context.Context, title string, k int) (_ []Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, err) }()

	recs, err := c.svc.Recommend(ctx, title, k)
	if err != nil {
		return nil, fmt.Errorf("recommend %q: %w", title, err)
	}

	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{
			Title:    r.Title,
			Author:   r.Author,
			ImageURL: r.ImageURL,
			Price:    r.Price,
			Score:    r.Score,
		}
	}
	return out, nil
}

// Popular returns the highly rated titles computed at build time.
func (c *Client) Popular(ctx context.Context) (_ []PopularBook, err error) {
	start := time.Now()
	defer func() { c.obs.observe("popular", start, err) }()

	books, err := c.svc.Popular(ctx)
	if err != nil {
		return nil, fmt.Errorf("popular: %w", err)
	}

	out := make([]PopularBook, len(books))
	for i, b := range books {
		out[i] = PopularBook{
			Title:      b.Title,
			Author:     b.Author,
			ImageURL:   b.ImageURL,
			NumRatings: b.NumRatings,
			AvgRating:  b.AvgRating,
		}
	}
	return out, nil
}

// Titles returns every title Recommend accepts, in index order.
func (c *Client) Titles() []string {
	return c.svc.Titles()
}

// Stats returns what the build kept and dropped.
func (c *Client) Stats() BuildStats {
	return c.stats
}
