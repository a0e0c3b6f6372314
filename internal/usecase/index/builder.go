package index

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/bookrec/internal/domain/rating"
	"github.com/kailas-cloud/bookrec/internal/domain/similarity"
)

// Stats describes how many events, users and titles survived each stage.
type Stats struct {
	InputEvents     int
	ActiveEvents    int // after the active-user filter
	FinalEvents     int // after the frequent-title filter
	SurvivingUsers  int
	SurvivingTitles int
}

// Result is the similarity index plus build statistics.
type Result struct {
	Index similarity.Index
	Stats Stats
}

// Builder computes the item-item similarity index from joined ratings.
type Builder struct {
	thresholds Thresholds
	workers    int
	logger     *zap.Logger
}

// New creates an index builder. workers <= 0 uses GOMAXPROCS.
func New(th Thresholds, workers int, logger *zap.Logger) *Builder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{thresholds: th, workers: workers, logger: logger}
}

// Build applies the active-user filter, then the frequent-title filter on its output,
// pivots the survivors and computes pairwise cosine similarity.
// Fewer than two surviving titles yield a degenerate index, not an error.
func (b *Builder) Build(ctx context.Context, events []rating.Event) (Result, error) {
	stats := Stats{InputEvents: len(events)}

	active := FilterActiveUsers(events, b.thresholds.MinUserRatings)
	stats.ActiveEvents = len(active)

	final := FilterFrequentTitles(active, b.thresholds.MinTitleRatings)
	stats.FinalEvents = len(final)

	m := BuildMatrix(final)
	stats.SurvivingUsers = len(m.Users)
	stats.SurvivingTitles = len(m.Titles)

	b.logger.Info("Rating matrix built",
		zap.Int("input_events", stats.InputEvents),
		zap.Int("active_events", stats.ActiveEvents),
		zap.Int("final_events", stats.FinalEvents),
		zap.Int("users", stats.SurvivingUsers),
		zap.Int("titles", stats.SurvivingTitles),
	)

	if len(m.Titles) < 2 {
		b.logger.Warn("Too few titles survived the density filters, index is degenerate",
			zap.Int("titles", len(m.Titles)),
			zap.Int("min_user_ratings", b.thresholds.MinUserRatings),
			zap.Int("min_title_ratings", b.thresholds.MinTitleRatings),
		)
		idx, err := degenerate(m)
		if err != nil {
			return Result{}, err
		}
		return Result{Index: idx, Stats: stats}, nil
	}

	scores, err := b.similarities(ctx, m)
	if err != nil {
		return Result{}, fmt.Errorf("compute similarities: %w", err)
	}

	idx, err := similarity.New(m.Titles, scores, len(m.Users))
	if err != nil {
		return Result{}, fmt.Errorf("assemble index: %w", err)
	}
	return Result{Index: idx, Stats: stats}, nil
}

// similarities fills a row-major n*n matrix. Row i's task writes cells (i, j) and (j, i)
// for j > i only, so tasks never share a cell.
func (b *Builder) similarities(ctx context.Context, m Matrix) ([]float64, error) {
	n := len(m.Titles)
	scores := make([]float64, n*n)

	units := make([][]float64, n)
	for i, row := range m.Values {
		units[i] = unit(row)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i*n+i] = 1
			for j := i + 1; j < n; j++ {
				s := clampUnit(dot(units[i], units[j]))
				scores[i*n+j] = s
				scores[j*n+i] = s
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return scores, nil
}

func degenerate(m Matrix) (similarity.Index, error) {
	if len(m.Titles) == 0 {
		return similarity.Empty(), nil
	}
	idx, err := similarity.New(m.Titles, []float64{1}, len(m.Users))
	if err != nil {
		return similarity.Index{}, fmt.Errorf("assemble degenerate index: %w", err)
	}
	return idx, nil
}
