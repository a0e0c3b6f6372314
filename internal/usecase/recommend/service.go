package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/domain"
)

// DefaultK is the number of recommendations returned when k <= 0.
const DefaultK = 9

// Service answers similarity and popularity queries from a Snapshot.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	snap     *Snapshot
	defaultK int
	recorder Recorder
	logger   *zap.Logger
}

// New creates a recommendation service. defaultK <= 0 uses DefaultK; recorder and logger may be nil.
func New(snap *Snapshot, defaultK int, recorder Recorder, logger *zap.Logger) *Service {
	if defaultK <= 0 {
		defaultK = DefaultK
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{snap: snap, defaultK: defaultK, recorder: recorder, logger: logger}
}

// Recommend returns up to k titles most similar to title, best first, never title itself.
func (s *Service) Recommend(ctx context.Context, title string, k int) ([]Recommendation, error) {
	recs, err := s.recommend(ctx, title, k)
	switch {
	case err == nil:
		s.recorder.RecordQuery(OutcomeOK)
	case errors.Is(err, domain.ErrTitleNotFound):
		s.recorder.RecordQuery(OutcomeNotFound)
		s.logger.Debug("Title not found", zap.String("title", title), zap.Error(err))
	default:
		s.recorder.RecordQuery(OutcomeError)
		s.logger.Error("Recommend failed", zap.String("title", title), zap.Error(err))
	}
	return recs, err
}

func (s *Service) recommend(ctx context.Context, title string, k int) ([]Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if k <= 0 {
		k = s.defaultK
	}

	idx := s.snap.Index()
	if idx.Degenerate() {
		return nil, fmt.Errorf("%w: %w", domain.ErrTitleNotFound, domain.ErrIndexDegenerate)
	}
	q, ok := idx.Position(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrTitleNotFound, title)
	}

	row := idx.Row(q)
	order := rank(row, q)

	// order[0] is always q.
	candidates := order[1:]
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	cat := s.snap.Catalog()
	out := make([]Recommendation, 0, len(candidates))
	for _, i := range candidates {
		t := idx.Title(i)
		b, ok := cat.ByTitle(t)
		if !ok {
			return nil, fmt.Errorf("%w: title %q has no catalog entry", domain.ErrConsistency, t)
		}
		out = append(out, Recommendation{
			Title:    t,
			Author:   b.Author(),
			ImageURL: b.ImageURL(),
			Price:    b.Price(),
			Score:    row[i],
		})
	}
	return out, nil
}

// rank orders all positions: q first, then score descending, then position ascending.
func rank(row []float64, q int) []int {
	order := make([]int, len(row))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if ia == q || ib == q {
			return ia == q && ib != q
		}
		if row[ia] != row[ib] {
			return row[ia] > row[ib]
		}
		return ia < ib
	})
	return order
}

// Popular returns the precomputed popular titles.
func (s *Service) Popular(ctx context.Context) ([]PopularBook, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("popular: %w", err)
	}
	return s.snap.Popular(), nil
}

// Titles returns every recommendable title in index order.
func (s *Service) Titles() []string {
	return s.snap.Index().Titles()
}

// CheckIndex reports domain.ErrIndexDegenerate when no neighbors can be served.
func (s *Service) CheckIndex(_ context.Context) error {
	if s.snap.Index().Degenerate() {
		return domain.ErrIndexDegenerate
	}
	return nil
}
