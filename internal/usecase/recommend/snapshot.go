package recommend

import (
	"fmt"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/catalog"
	"github.com/kailas-cloud/bookrec/internal/domain/rating"
	"github.com/kailas-cloud/bookrec/internal/domain/similarity"
)

// Snapshot is the read-only state behind every query: catalog, similarity index
// and the precomputed popular list. It is never modified after NewSnapshot.
type Snapshot struct {
	catalog catalog.Catalog
	index   similarity.Index
	popular []PopularBook
}

// NewSnapshot checks that every indexed title has a catalog entry and computes
// the popular list from the joined ratings.
func NewSnapshot(
	cat catalog.Catalog, idx similarity.Index,
	events []rating.Event, popular PopularConfig,
) (*Snapshot, error) {
	for i := 0; i < idx.Len(); i++ {
		if _, ok := cat.ByTitle(idx.Title(i)); !ok {
			return nil, fmt.Errorf("%w: indexed title %q has no catalog entry",
				domain.ErrConsistency, idx.Title(i))
		}
	}

	list, err := ComputePopular(&cat, events, popular)
	if err != nil {
		return nil, fmt.Errorf("compute popular: %w", err)
	}

	return &Snapshot{catalog: cat, index: idx, popular: list}, nil
}

// Catalog returns the book catalog.
func (s *Snapshot) Catalog() *catalog.Catalog { return &s.catalog }

// Index returns the similarity index.
func (s *Snapshot) Index() *similarity.Index { return &s.index }

// Popular returns a copy of the popular list.
func (s *Snapshot) Popular() []PopularBook {
	out := make([]PopularBook, len(s.popular))
	copy(out, s.popular)
	return out
}
