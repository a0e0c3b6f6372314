package catalog

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/book"
	domcat "github.com/kailas-cloud/bookrec/internal/domain/catalog"
	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
	"github.com/kailas-cloud/bookrec/internal/domain/rating"
)

// Columns maps collaborator headers to catalog fields.
// Price, ImageURLSmall and ImageURLLarge are optional; an empty name disables them.
type Columns struct {
	ItemID        string
	Title         string
	Author        string
	ImageURL      string
	ImageURLSmall string
	ImageURLLarge string
	Price         string

	UserID       string
	RatingItemID string
	Rating       string
}

// DefaultColumns returns the Book-Crossing dump headers.
func DefaultColumns() Columns {
	return Columns{
		ItemID:        "ISBN",
		Title:         "Book-Title",
		Author:        "Book-Author",
		ImageURL:      "Image-URL-M",
		ImageURLSmall: "Image-URL-S",
		ImageURLLarge: "Image-URL-L",
		UserID:        "User-ID",
		RatingItemID:  "ISBN",
		Rating:        "Book-Rating",
	}
}

// Stats counts what the build kept and dropped.
type Stats struct {
	ItemRows           int
	Books              int
	Titles             int
	SkippedItems       int // empty ISBN or title
	DuplicateISBNs     int
	RatingRows         int
	JoinedRatings      int
	UnknownISBNRatings int
	MalformedRatings   int
}

// Result is the cleaned catalog plus the joined ratings stream.
type Result struct {
	Catalog domcat.Catalog
	Ratings []rating.Event
	Stats   Stats
}

// Builder turns raw item and rating tables into a catalog and joined ratings.
type Builder struct {
	cols   Columns
	prices PriceSource
	logger *zap.Logger
}

// New creates a catalog builder.
func New(cols Columns, prices PriceSource, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{cols: cols, prices: prices, logger: logger}
}

// Build validates both tables, then builds the catalog and the inner join on ISBN.
// Missing required columns fail with domain.ErrConfiguration before any row is read.
func (b *Builder) Build(ctx context.Context, items, ratings dataset.Table) (Result, error) {
	if err := b.validate(items, ratings); err != nil {
		return Result{}, err
	}

	books, stats := b.books(items)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	cat := domcat.New(books)
	stats.Books = cat.Len()
	stats.Titles = cat.TitleCount()
	stats.DuplicateISBNs = len(books) - cat.Len()

	events := b.join(ratings, &cat, &stats)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	b.logger.Info("Catalog built",
		zap.Int("item_rows", stats.ItemRows),
		zap.Int("books", stats.Books),
		zap.Int("titles", stats.Titles),
		zap.Int("skipped_items", stats.SkippedItems),
		zap.Int("duplicate_isbns", stats.DuplicateISBNs),
		zap.Int("rating_rows", stats.RatingRows),
		zap.Int("joined_ratings", stats.JoinedRatings),
		zap.Int("unknown_isbn_ratings", stats.UnknownISBNRatings),
		zap.Int("malformed_ratings", stats.MalformedRatings),
	)

	return Result{Catalog: cat, Ratings: events, Stats: stats}, nil
}

func (b *Builder) validate(items, ratings dataset.Table) error {
	if missing := items.Missing(b.requiredItemColumns()...); len(missing) > 0 {
		return domain.NewMissingColumns("items", missing)
	}
	if missing := ratings.Missing(b.cols.UserID, b.cols.RatingItemID, b.cols.Rating); len(missing) > 0 {
		return domain.NewMissingColumns("ratings", missing)
	}
	optional := []string{b.cols.Price, b.cols.ImageURLSmall, b.cols.ImageURLLarge}
	for _, c := range optional {
		if c != "" && items.Index(c) < 0 {
			b.logger.Debug("Optional item column absent", zap.String("column", c))
		}
	}
	return nil
}

func (b *Builder) requiredItemColumns() []string {
	return []string{b.cols.ItemID, b.cols.Title, b.cols.Author, b.cols.ImageURL}
}

// books converts item rows in input order. Prices are drawn in row order,
// so a seeded PriceSource reproduces the same catalog.
func (b *Builder) books(items dataset.Table) ([]book.Book, Stats) {
	var (
		idCol     = items.Index(b.cols.ItemID)
		titleCol  = items.Index(b.cols.Title)
		authorCol = items.Index(b.cols.Author)
		urlCol    = items.Index(b.cols.ImageURL)
		smallCol  = optionalIndex(items, b.cols.ImageURLSmall)
		largeCol  = optionalIndex(items, b.cols.ImageURLLarge)
		priceCol  = optionalIndex(items, b.cols.Price)
	)

	stats := Stats{ItemRows: items.Len()}
	books := make([]book.Book, 0, items.Len())

	for _, row := range items.Rows {
		price := b.price(dataset.Cell(row, priceCol))
		bk, err := book.New(
			dataset.Cell(row, idCol),
			dataset.Cell(row, titleCol),
			dataset.Cell(row, authorCol),
			dataset.Cell(row, urlCol),
			price,
		)
		if err != nil {
			stats.SkippedItems++
			continue
		}
		books = append(books, bk.WithCovers(dataset.Cell(row, smallCol), dataset.Cell(row, largeCol)))
	}
	return books, stats
}

// price parses a supplied price or falls back to the PriceSource.
func (b *Builder) price(raw string) int {
	if raw = strings.TrimSpace(raw); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && !math.IsInf(v, 0) {
			return int(math.Round(v))
		}
	}
	if b.prices == nil {
		return 0
	}
	return b.prices.Price()
}

func (b *Builder) join(ratings dataset.Table, cat *domcat.Catalog, stats *Stats) []rating.Event {
	userCol := ratings.Index(b.cols.UserID)
	idCol := ratings.Index(b.cols.RatingItemID)
	valCol := ratings.Index(b.cols.Rating)

	stats.RatingRows = ratings.Len()
	events := make([]rating.Event, 0, ratings.Len())

	for _, row := range ratings.Rows {
		user := strings.TrimSpace(dataset.Cell(row, userCol))
		val, err := strconv.ParseFloat(strings.TrimSpace(dataset.Cell(row, valCol)), 64)
		if user == "" || err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
			stats.MalformedRatings++
			continue
		}
		bk, ok := cat.ByISBN(strings.TrimSpace(dataset.Cell(row, idCol)))
		if !ok {
			stats.UnknownISBNRatings++
			continue
		}
		events = append(events, rating.New(user, bk.ISBN(), bk.Title(), val))
	}
	stats.JoinedRatings = len(events)
	return events
}

func optionalIndex(t dataset.Table, column string) int {
	if column == "" {
		return -1
	}
	return t.Index(column)
}
