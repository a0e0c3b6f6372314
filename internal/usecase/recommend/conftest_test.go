package recommend

import (
	"fmt"
	"testing"

	"github.com/kailas-cloud/bookrec/internal/domain/book"
	"github.com/kailas-cloud/bookrec/internal/domain/catalog"
	"github.com/kailas-cloud/bookrec/internal/domain/rating"
	"github.com/kailas-cloud/bookrec/internal/domain/similarity"
)

// --- Mocks ---

type recordingRecorder struct {
	outcomes []string
}

func (r *recordingRecorder) RecordQuery(outcome string) { r.outcomes = append(r.outcomes, outcome) }

// --- Fixtures ---

func catalogFor(t *testing.T, titles ...string) catalog.Catalog {
	t.Helper()
	books := make([]book.Book, 0, len(titles))
	for i, title := range titles {
		b, err := book.New(fmt.Sprintf("isbn-%d", i), title, "Author of "+title,
			"http://img/"+title, 200+i)
		if err != nil {
			t.Fatalf("book.New: %v", err)
		}
		books = append(books, b)
	}
	return catalog.New(books)
}

func mustIndex(t *testing.T, titles []string, scores []float64) similarity.Index {
	t.Helper()
	idx, err := similarity.New(titles, scores, 3)
	if err != nil {
		t.Fatalf("similarity.New: %v", err)
	}
	return idx
}

func mustSnapshot(t *testing.T, cat catalog.Catalog, idx similarity.Index, events []rating.Event) *Snapshot {
	t.Helper()
	snap, err := NewSnapshot(cat, idx, events, DefaultPopularConfig())
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func titlesOf(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}
