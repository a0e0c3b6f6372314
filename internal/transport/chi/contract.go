package chi

import (
	"context"

	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

// Recommender answers similarity and popularity queries.
type Recommender interface {
	Recommend(ctx context.Context, title string, k int) ([]recommend.Recommendation, error)
	Popular(ctx context.Context) ([]recommend.PopularBook, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
