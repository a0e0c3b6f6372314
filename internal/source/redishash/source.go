package redishash

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/db"
	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

// Source reads the tables from the hash layout. Rows come out in key order,
// so the first book per title is the one with the smallest ISBN.
type Source struct {
	store  Store
	prefix string
	cols   Columns
	logger *zap.Logger
}

// New creates a Redis hash source.
func New(store Store, prefix string, cols Columns, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{store: store, prefix: prefix, cols: cols, logger: logger}
}

// Items reads every book hash. Columns are the sorted union of hash fields.
func (s *Source) Items(ctx context.Context) (dataset.Table, error) {
	s.logSeed(ctx)

	keys, err := s.keys(ctx, bookPrefix(s.prefix))
	if err != nil {
		return dataset.Table{}, err
	}
	hashes, err := fetch(ctx, s.store, keys)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("fetch books: %w", err)
	}

	fieldSet := make(map[string]struct{})
	for _, h := range hashes {
		for f := range h {
			fieldSet[f] = struct{}{}
		}
	}
	// The identifier always comes from the key, even if the hash lacks it.
	fieldSet[s.cols.ItemID] = struct{}{}

	columns := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		columns = append(columns, f)
	}
	sort.Strings(columns)

	t := dataset.Table{Columns: columns, Rows: make([][]string, 0, len(hashes))}
	idCol := t.Index(s.cols.ItemID)
	for i, h := range hashes {
		if len(h) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		rec := make([]string, len(columns))
		for j, c := range columns {
			rec[j] = h[c]
		}
		rec[idCol] = strings.TrimPrefix(keys[i], bookPrefix(s.prefix))
		t.Rows = append(t.Rows, rec)
	}

	s.logger.Info("Loaded books from Redis", zap.Int("books", t.Len()), zap.Int("columns", len(columns)))
	return t, nil
}

// Ratings reads every per-user ratings hash as (user, isbn, rating) rows.
func (s *Source) Ratings(ctx context.Context) (dataset.Table, error) {
	keys, err := s.keys(ctx, ratingsPrefix(s.prefix))
	if err != nil {
		return dataset.Table{}, err
	}
	hashes, err := fetch(ctx, s.store, keys)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("fetch ratings: %w", err)
	}

	t := dataset.Table{Columns: []string{s.cols.UserID, s.cols.RatingItemID, s.cols.Rating}}
	for i, h := range hashes {
		user := strings.TrimPrefix(keys[i], ratingsPrefix(s.prefix))
		isbns := make([]string, 0, len(h))
		for isbn := range h {
			isbns = append(isbns, isbn)
		}
		sort.Strings(isbns)
		for _, isbn := range isbns {
			t.Rows = append(t.Rows, []string{user, isbn, h[isbn]})
		}
	}

	s.logger.Info("Loaded ratings from Redis", zap.Int("users", len(keys)), zap.Int("ratings", t.Len()))
	return t, nil
}

func (s *Source) keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s*: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Source) logSeed(ctx context.Context) {
	raw, err := s.store.Get(ctx, MetaKey(s.prefix))
	switch {
	case err == nil:
		s.logger.Info("Redis dataset found", zap.String("seeded_at", string(raw)))
	case errors.Is(err, db.ErrKeyNotFound):
		s.logger.Warn("Redis dataset has no seed metadata", zap.String("key", MetaKey(s.prefix)))
	default:
		s.logger.Warn("Failed to read seed metadata", zap.Error(err))
	}
}
