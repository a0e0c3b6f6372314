package recommend

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/catalog"
	"github.com/kailas-cloud/bookrec/internal/domain/rating"
)

// Popular list defaults.
const (
	DefaultPopularMinRatings = 250
	DefaultPopularLimit      = 50
)

// PopularConfig controls the popular titles list.
type PopularConfig struct {
	MinRatings int
	Limit      int
}

// DefaultPopularConfig returns the production settings.
func DefaultPopularConfig() PopularConfig {
	return PopularConfig{MinRatings: DefaultPopularMinRatings, Limit: DefaultPopularLimit}
}

// ComputePopular groups joined ratings by title and returns the best rated titles
// with at least cfg.MinRatings ratings. Order: mean desc, count desc, title asc.
// Limit <= 0 returns every qualifying title.
func ComputePopular(cat *catalog.Catalog, events []rating.Event, cfg PopularConfig) ([]PopularBook, error) {
	type agg struct {
		title string
		sum   float64
		count int
	}

	byTitle := make(map[string]*agg)
	for i := range events {
		e := &events[i]
		a, ok := byTitle[e.Title()]
		if !ok {
			a = &agg{title: e.Title()}
			byTitle[e.Title()] = a
		}
		a.sum += e.Value()
		a.count++
	}

	ranked := make([]*agg, 0, len(byTitle))
	for _, a := range byTitle {
		if a.count >= cfg.MinRatings {
			ranked = append(ranked, a)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		mi := ranked[i].sum / float64(ranked[i].count)
		mj := ranked[j].sum / float64(ranked[j].count)
		if mi != mj {
			return mi > mj
		}
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].title < ranked[j].title
	})
	if cfg.Limit > 0 && len(ranked) > cfg.Limit {
		ranked = ranked[:cfg.Limit]
	}

	out := make([]PopularBook, 0, len(ranked))
	for _, a := range ranked {
		b, ok := cat.ByTitle(a.title)
		if !ok {
			return nil, fmt.Errorf("%w: popular title %q has no catalog entry", domain.ErrConsistency, a.title)
		}
		out = append(out, PopularBook{
			Title:      a.title,
			Author:     b.Author(),
			ImageURL:   b.ImageURL(),
			NumRatings: a.count,
			AvgRating:  a.sum / float64(a.count),
		})
	}
	return out, nil
}
