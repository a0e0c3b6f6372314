package pipeline

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
	"github.com/kailas-cloud/bookrec/internal/usecase/index"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

// --- Mocks ---

type mockSource struct {
	items, ratings dataset.Table
	itemsErr       error
	ratingsErr     error
}

func (m *mockSource) Items(_ context.Context) (dataset.Table, error) { return m.items, m.itemsErr }
func (m *mockSource) Ratings(_ context.Context) (dataset.Table, error) {
	return m.ratings, m.ratingsErr
}

type recordingObserver struct {
	stages  []string
	dropped map[string]int
	sizes   [4]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{dropped: map[string]int{}}
}

func (o *recordingObserver) StageDone(stage string, _ time.Duration) { o.stages = append(o.stages, stage) }
func (o *recordingObserver) Dropped(reason string, n int)            { o.dropped[reason] += n }
func (o *recordingObserver) Sizes(books, joined, users, titles int) {
	o.sizes = [4]int{books, joined, users, titles}
}

// --- Fixtures ---

func fixtureSource() *mockSource {
	return &mockSource{
		items: dataset.Table{
			Columns: []string{"ISBN", "Book-Title", "Book-Author", "Image-URL-M"},
			Rows: [][]string{
				{"1", "Dune", "Herbert", "http://img/1"},
				{"2", "Emma", "Austen", "http://img/2"},
				{"3", "Ulysses", "Joyce", "http://img/3"},
				{"4", "Dune", "Herbert", "http://img/4"}, // second edition
				{"1", "Dup", "Nobody", ""},
				{"", "No ISBN", "Nobody", ""},
			},
		},
		ratings: dataset.Table{
			Columns: []string{"User-ID", "ISBN", "Book-Rating"},
			Rows: [][]string{
				{"u1", "1", "9"}, {"u1", "2", "3"}, {"u1", "3", "8"},
				{"u2", "4", "8"}, {"u2", "2", "2"}, {"u2", "3", "9"},
				{"u3", "1", "1"}, {"u3", "2", "9"},
				{"u4", "3", "7"}, // only one rating: inactive
				{"u1", "999", "5"},
				{"u2", "1", "n/a"},
			},
		},
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Thresholds = index.Thresholds{MinUserRatings: 2, MinTitleRatings: 2}
	cfg.Popular = recommend.PopularConfig{MinRatings: 3, Limit: 10}
	cfg.PriceSeed = 42
	cfg.Workers = 2
	return cfg
}

// --- Tests ---

func TestRun_BuildsServableSnapshot(t *testing.T) {
	obs := newRecordingObserver()
	snap, rep, err := New(testConfig(), obs, nil).Run(context.Background(), fixtureSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{StageLoad, StageCatalog, StageIndex, StageSnapshot}; !reflect.DeepEqual(obs.stages, want) {
		t.Errorf("stages = %v, want %v", obs.stages, want)
	}
	wantDropped := map[string]int{
		DropSkippedItem: 1, DropDuplicateISBN: 1, DropUnknownISBN: 1, DropMalformedRating: 1,
		DropInactiveUser: 1, DropRareTitle: 0,
	}
	if !reflect.DeepEqual(obs.dropped, wantDropped) {
		t.Errorf("dropped = %v, want %v", obs.dropped, wantDropped)
	}
	if want := [4]int{4, 9, 3, 3}; obs.sizes != want {
		t.Errorf("sizes = %v, want %v", obs.sizes, want)
	}
	if rep.Catalog.Titles != 3 || rep.Index.SurvivingTitles != 3 || rep.Duration <= 0 {
		t.Errorf("unexpected report: %+v", rep)
	}

	svc := recommend.New(snap, 0, nil, nil)
	recs, err := svc.Recommend(context.Background(), "Dune", 0)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	titles := make([]string, len(recs))
	for i, r := range recs {
		titles[i] = r.Title
		if r.Title == "Dune" {
			t.Error("query title in results")
		}
	}
	sort.Strings(titles)
	if !reflect.DeepEqual(titles, []string{"Emma", "Ulysses"}) {
		t.Errorf("titles = %v", titles)
	}

	// Both Dune editions count towards the popular aggregate; the representative is ISBN 1.
	pop, _ := svc.Popular(context.Background())
	for _, p := range pop {
		if p.Title == "Dune" && p.ImageURL != "http://img/1" {
			t.Errorf("representative not first in input order: %+v", p)
		}
	}
}

func TestRun_SeededPricesAreReproducible(t *testing.T) {
	prices := func() []int {
		snap, _, err := New(testConfig(), nil, nil).Run(context.Background(), fixtureSource())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var out []int
		for _, b := range snap.Catalog().Books() {
			out = append(out, b.Price())
		}
		return out
	}
	first, second := prices(), prices()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("prices differ across runs: %v vs %v", first, second)
	}
	for _, p := range first {
		if p < 200 || p > 1000 {
			t.Errorf("price %d out of range", p)
		}
	}
}

type constPrice int

func (c constPrice) Price() int { return int(c) }

func TestRun_WithPrices(t *testing.T) {
	snap, _, err := New(testConfig(), nil, nil).WithPrices(constPrice(555)).Run(context.Background(), fixtureSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, b := range snap.Catalog().Books() {
		if b.Price() != 555 {
			t.Fatalf("expected injected price, got %d", b.Price())
		}
	}
}

func TestRun_Errors(t *testing.T) {
	errSource := errors.New("disk on fire")

	tests := []struct {
		name   string
		src    func() *mockSource
		wantIs error
		stages int
	}{
		{
			name:   "ratings load fails",
			src:    func() *mockSource { s := fixtureSource(); s.ratingsErr = errSource; return s },
			wantIs: errSource,
			stages: 0,
		},
		{
			name:   "items load fails",
			src:    func() *mockSource { s := fixtureSource(); s.itemsErr = errSource; return s },
			wantIs: errSource,
			stages: 0,
		},
		{
			name: "missing columns",
			src: func() *mockSource {
				s := fixtureSource()
				s.items.Columns = []string{"ISBN", "title"}
				return s
			},
			wantIs: domain.ErrConfiguration,
			stages: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := newRecordingObserver()
			snap, _, err := New(testConfig(), obs, nil).Run(context.Background(), tt.src())
			if !errors.Is(err, tt.wantIs) {
				t.Fatalf("expected %v, got %v", tt.wantIs, err)
			}
			if snap != nil {
				t.Error("no snapshot expected on failure")
			}
			if len(obs.stages) != tt.stages {
				t.Errorf("completed stages = %v", obs.stages)
			}
		})
	}
}

func TestRun_DegenerateIndexIsNotAnError(t *testing.T) {
	cfg := testConfig()
	cfg.Thresholds = index.DefaultThresholds()

	snap, rep, err := New(cfg, nil, nil).Run(context.Background(), fixtureSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Index.SurvivingTitles != 0 || !snap.Index().Degenerate() {
		t.Errorf("expected degenerate index, got %+v", rep.Index)
	}
	_, err = recommend.New(snap, 0, nil, nil).Recommend(context.Background(), "Dune", 0)
	if !errors.Is(err, domain.ErrTitleNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
