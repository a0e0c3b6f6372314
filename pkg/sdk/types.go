package bookrec

import (
	"context"
	"time"

	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

// Table is a raw header plus string rows, as produced by a Source.
type Table = dataset.Table

// Source loads the raw book and rating tables.
type Source interface {
	Items(ctx context.Context) (Table, error)
	Ratings(ctx context.Context) (Table, error)
}

// Recommendation is one title similar to the query title.
type Recommendation struct {
	Title    string
	Author   string
	ImageURL string
	Price    int
	Score    float64 // cosine similarity in [0, 1]
}

// PopularBook is a highly rated title with its rating aggregate.
type PopularBook struct {
	Title      string
	Author     string
	ImageURL   string
	NumRatings int
	AvgRating  float64
}

// BuildStats summarizes the snapshot built by New.
type BuildStats struct {
	Books          int
	Titles         int
	JoinedRatings  int
	IndexUsers     int
	IndexTitles    int
	SkippedItems   int
	DuplicateISBNs int
	UnknownISBNs   int
	Malformed      int
	Duration       time.Duration
}
