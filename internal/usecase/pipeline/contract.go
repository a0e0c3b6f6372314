package pipeline

import (
	"context"
	"time"

	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

// Source yields the raw tables.
type Source interface {
	Items(ctx context.Context) (dataset.Table, error)
	Ratings(ctx context.Context) (dataset.Table, error)
}

// Observer receives build measurements. Implemented by the metrics layer.
type Observer interface {
	StageDone(stage string, d time.Duration)
	Dropped(reason string, n int)
	Sizes(books, joined, users, titles int)
}

type nopObserver struct{}

func (nopObserver) StageDone(string, time.Duration) {}
func (nopObserver) Dropped(string, int)             {}
func (nopObserver) Sizes(int, int, int, int)        {}
