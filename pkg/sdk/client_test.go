package bookrec

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var bookColumns = []string{"ISBN", "Book-Title", "Book-Author", "Image-URL-S", "Image-URL-M", "Image-URL-L"}

// tableSource serves fixed tables.
type tableSource struct {
	items, ratings Table
	err            error
}

func (s tableSource) Items(context.Context) (Table, error)   { return s.items, s.err }
func (s tableSource) Ratings(context.Context) (Table, error) { return s.ratings, s.err }

// fixture gives Alpha=[5,5,0], Beta=[5,5,0], Gamma=[0,5,3] over users u1..u3.
func fixture() tableSource {
	return tableSource{
		items: Table{
			Columns: bookColumns,
			Rows: [][]string{
				{"1", "Alpha", "Ann", "s1", "m1", "l1"},
				{"2", "Beta", "Bob", "s2", "m2", "l2"},
				{"3", "Gamma", "Gus", "s3", "m3", "l3"},
			},
		},
		ratings: Table{
			Columns: []string{"User-ID", "ISBN", "Book-Rating"},
			Rows: [][]string{
				{"u1", "1", "5"}, {"u1", "2", "5"},
				{"u2", "1", "5"}, {"u2", "2", "5"}, {"u2", "3", "5"},
				{"u3", "3", "3"},
			},
		},
	}
}

func newFixtureClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithSource(fixture()), WithThresholds(1, 1), WithPopular(1, 10), WithPriceSeed(7)}
	c, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_NoSource(t *testing.T) {
	_, err := New(context.Background())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNew_NilCustomSource(t *testing.T) {
	_, err := New(context.Background(), WithSource(nil))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNew_MissingColumns(t *testing.T) {
	src := fixture()
	src.items.Columns = []string{"ISBN", "Book-Title"}
	_, err := New(context.Background(), WithSource(src))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNew_SourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := New(context.Background(), WithSource(tableSource{err: boom}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestClient_Recommend(t *testing.T) {
	c := newFixtureClient(t)

	recs, err := c.Recommend(context.Background(), "Alpha", 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}

	wantGamma := 25 / (math.Sqrt(50) * math.Sqrt(34))
	want := []struct {
		title string
		score float64
	}{{"Beta", 1}, {"Gamma", wantGamma}}
	for i, w := range want {
		if recs[i].Title != w.title {
			t.Errorf("recs[%d].Title = %q, want %q", i, recs[i].Title, w.title)
		}
		if math.Abs(recs[i].Score-w.score) > 1e-9 {
			t.Errorf("recs[%d].Score = %v, want %v", i, recs[i].Score, w.score)
		}
		if recs[i].Price < 200 || recs[i].Price > 1000 {
			t.Errorf("recs[%d].Price = %d out of range", i, recs[i].Price)
		}
	}
	if recs[0].Author != "Bob" || recs[0].ImageURL != "m2" {
		t.Errorf("unexpected enrichment: %+v", recs[0])
	}
}

func TestClient_Recommend_KLimits(t *testing.T) {
	c := newFixtureClient(t)

	recs, err := c.Recommend(context.Background(), "Alpha", 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Beta" {
		t.Errorf("k=1: got %+v", recs)
	}
}

func TestClient_Recommend_NotFound(t *testing.T) {
	c := newFixtureClient(t)

	for _, title := range []string{"Omega", "alpha", ""} {
		_, err := c.Recommend(context.Background(), title, 3)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Recommend(%q): expected ErrNotFound, got %v", title, err)
		}
	}
}

func TestClient_ReproduciblePrices(t *testing.T) {
	a := newFixtureClient(t)
	b := newFixtureClient(t)

	ra, _ := a.Recommend(context.Background(), "Gamma", 2)
	rb, _ := b.Recommend(context.Background(), "Gamma", 2)
	for i := range ra {
		if ra[i].Price != rb[i].Price {
			t.Errorf("price of %q differs across builds: %d vs %d", ra[i].Title, ra[i].Price, rb[i].Price)
		}
	}
}

func TestClient_Popular(t *testing.T) {
	c := newFixtureClient(t)

	books, err := c.Popular(context.Background())
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	got := make([]string, len(books))
	for i, b := range books {
		got[i] = b.Title
	}
	want := []string{"Alpha", "Beta", "Gamma"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if books[2].AvgRating != 4 || books[2].NumRatings != 2 {
		t.Errorf("Gamma aggregate: got avg %v count %d", books[2].AvgRating, books[2].NumRatings)
	}
}

func TestClient_TitlesAndStats(t *testing.T) {
	c := newFixtureClient(t)

	titles := c.Titles()
	if len(titles) != 3 || titles[0] != "Alpha" || titles[2] != "Gamma" {
		t.Errorf("titles: got %v", titles)
	}

	s := c.Stats()
	if s.Books != 3 || s.JoinedRatings != 6 || s.IndexUsers != 3 || s.IndexTitles != 3 {
		t.Errorf("stats: got %+v", s)
	}
}

func TestClient_Health(t *testing.T) {
	c := newFixtureClient(t)
	if h := c.Health(context.Background()); h.Status != "ok" || h.Checks["index"] != "ok" {
		t.Errorf("healthy client: got %+v", h)
	}

	// Default thresholds leave nothing of the tiny fixture.
	d, err := New(context.Background(), WithSource(fixture()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h := d.Health(context.Background()); h.Status != "degraded" || h.Checks["index"] != "error" {
		t.Errorf("degenerate client: got %+v", h)
	}
	if _, err := d.Recommend(context.Background(), "Alpha", 3); !errors.Is(err, ErrNotFound) {
		t.Errorf("degenerate Recommend: expected ErrNotFound, got %v", err)
	}
}

func TestNew_CSV(t *testing.T) {
	dir := t.TempDir()
	items := filepath.Join(dir, "Books.csv")
	ratings := filepath.Join(dir, "Ratings.csv")

	writeFile(t, items, `"ISBN";"Book-Title";"Book-Author";"Image-URL-S";"Image-URL-M";"Image-URL-L"
"1";"Alpha";"Ann";"s1";"m1";"l1"
"2";"Beta";"Bob";"s2";"m2";"l2"
`)
	writeFile(t, ratings, `"User-ID";"ISBN";"Book-Rating"
"u1";"1";"5"
"u1";"2";"4"
"u2";"1";"3"
"u2";"2";"3"
`)

	c, err := New(context.Background(), WithCSV(items, ratings, ';'), WithThresholds(1, 1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	recs, err := c.Recommend(context.Background(), "Beta", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "Alpha" {
		t.Errorf("got %+v", recs)
	}
}

func TestNew_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, WithSource(fixture()), WithThresholds(1, 1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithParquet("b.parquet", "r.parquet").apply(cfg)
	if cfg.driver != "parquet" || cfg.itemsPath != "b.parquet" || cfg.ratingsPath != "r.parquet" {
		t.Errorf("parquet option: got %+v", cfg)
	}

	WithSQLite("file:x.db", "b", "r").apply(cfg)
	if cfg.driver != "sqlite" || cfg.dsn != "file:x.db" || cfg.itemsTable != "b" || cfg.ratingsTable != "r" {
		t.Errorf("sqlite option: got %+v", cfg)
	}

	WithWorkers(3).apply(cfg)
	WithDefaultK(4).apply(cfg)
	WithPriceSeed(99).apply(cfg)
	pc := pipelineConfig(cfg)
	if pc.Workers != 3 || pc.PriceSeed != 99 || cfg.defaultK != 4 {
		t.Errorf("pipeline config: got %+v", pc)
	}
	if pc.Thresholds.MinUserRatings != 100 || pc.Thresholds.MinTitleRatings != 20 {
		t.Errorf("default thresholds: got %+v", pc.Thresholds)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := newFixtureClient(t, WithPrometheus(reg), WithLogger(slog.New(slog.DiscardHandler)))

	_, _ = c.Recommend(context.Background(), "Alpha", 2)
	_, _ = c.Recommend(context.Background(), "Omega", 2)

	obs := c.obs.metrics
	if got := testutil.ToFloat64(obs.operations.WithLabelValues("recommend", "ok")); got != 1 {
		t.Errorf("recommend ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.operations.WithLabelValues("recommend", "not_found")); got != 1 {
		t.Errorf("recommend not_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.operations.WithLabelValues("build", "ok")); got != 1 {
		t.Errorf("build ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.sizes.WithLabelValues("index_titles")); got != 3 {
		t.Errorf("index_titles = %v, want 3", got)
	}
}

func TestObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = newFixtureClient(t, WithPrometheus(reg))
	c := newFixtureClient(t, WithPrometheus(reg))

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("build", "ok")); got != 2 {
		t.Errorf("build ok across clients = %v, want 2", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
