package redishash

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/db"
	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

// WriteStats counts what a Writer stored.
type WriteStats struct {
	Books          int
	SkippedBooks   int // empty identifier
	DuplicateBooks int // identifier already written; the first row wins
	Users          int
	Ratings        int
}

// Writer seeds the hash layout from raw tables.
type Writer struct {
	store  Store
	prefix string
	cols   Columns
	logger *zap.Logger
	now    func() time.Time
}

// NewWriter creates a Writer.
func NewWriter(store Store, prefix string, cols Columns, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, prefix: prefix, cols: cols, logger: logger, now: time.Now}
}

// Write stores books and ratings with pipelined HSETs, then stamps the meta key.
// A repeated ISBN in items is skipped so the stored book matches the first row, as the catalog does.
// Ratings of one user are merged into one hash; a later rating for the same ISBN wins.
func (w *Writer) Write(ctx context.Context, items, ratings dataset.Table) (WriteStats, error) {
	var stats WriteStats

	if missing := items.Missing(w.cols.ItemID); len(missing) > 0 {
		return stats, domain.NewMissingColumns("items", missing)
	}
	if missing := ratings.Missing(w.cols.UserID, w.cols.RatingItemID, w.cols.Rating); len(missing) > 0 {
		return stats, domain.NewMissingColumns("ratings", missing)
	}

	idCol := items.Index(w.cols.ItemID)
	books := make([]db.HashSetItem, 0, items.Len())
	seen := make(map[string]struct{}, items.Len())
	for _, row := range items.Rows {
		isbn := dataset.Cell(row, idCol)
		if isbn == "" {
			stats.SkippedBooks++
			continue
		}
		if _, dup := seen[isbn]; dup {
			stats.DuplicateBooks++
			continue
		}
		seen[isbn] = struct{}{}
		fields := make(map[string]string, len(items.Columns))
		for j, c := range items.Columns {
			if v := dataset.Cell(row, j); v != "" {
				fields[c] = v
			}
		}
		books = append(books, db.HashSetItem{Key: BookKey(w.prefix, isbn), Fields: fields})
	}
	if err := w.flush(ctx, books); err != nil {
		return stats, fmt.Errorf("write books: %w", err)
	}
	stats.Books = len(books)

	userCol := ratings.Index(w.cols.UserID)
	isbnCol := ratings.Index(w.cols.RatingItemID)
	valCol := ratings.Index(w.cols.Rating)

	byUser := make(map[string]map[string]string)
	var order []string
	for _, row := range ratings.Rows {
		user, isbn := dataset.Cell(row, userCol), dataset.Cell(row, isbnCol)
		if user == "" || isbn == "" {
			continue
		}
		h, ok := byUser[user]
		if !ok {
			h = make(map[string]string)
			byUser[user] = h
			order = append(order, user)
		}
		h[isbn] = dataset.Cell(row, valCol)
	}

	users := make([]db.HashSetItem, 0, len(order))
	for _, user := range order {
		users = append(users, db.HashSetItem{Key: RatingsKey(w.prefix, user), Fields: byUser[user]})
		stats.Ratings += len(byUser[user])
	}
	if err := w.flush(ctx, users); err != nil {
		return stats, fmt.Errorf("write ratings: %w", err)
	}
	stats.Users = len(users)

	stamp := w.now().UTC().Format(time.RFC3339)
	if err := w.store.Set(ctx, MetaKey(w.prefix), []byte(stamp)); err != nil {
		return stats, fmt.Errorf("write meta: %w", err)
	}

	w.logger.Info("Dataset written to Redis",
		zap.Int("books", stats.Books),
		zap.Int("skipped_books", stats.SkippedBooks),
		zap.Int("duplicate_books", stats.DuplicateBooks),
		zap.Int("users", stats.Users),
		zap.Int("ratings", stats.Ratings),
	)
	return stats, nil
}

func (w *Writer) flush(ctx context.Context, items []db.HashSetItem) error {
	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // context error
		}
		end := min(start+batchSize, len(items))
		if err := w.store.HSetMulti(ctx, items[start:end]); err != nil {
			return err //nolint:wrapcheck // db.Error carries the op
		}
		w.logger.Debug("Batch written", zap.Int("from", start), zap.Int("to", end))
	}
	return nil
}
