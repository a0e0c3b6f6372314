// Package redishash stores and reads the raw tables as Redis hashes.
//
// Layout, with <p> the configured key prefix:
//
//	<p>book:<isbn>      hash, one field per item column
//	<p>ratings:<user>   hash, isbn -> rating
//	<p>meta:dataset     string, RFC 3339 seeding time
package redishash

import (
	"context"

	"github.com/kailas-cloud/bookrec/internal/db"
)

// Store is the subset of db.Store this package uses.
type Store interface {
	db.HashStore
	db.KVStore
}

// Columns names the item identifier column and the three rating columns.
type Columns struct {
	ItemID       string
	UserID       string
	RatingItemID string
	Rating       string
}

// DefaultColumns returns the Book-Crossing dump headers.
func DefaultColumns() Columns {
	return Columns{ItemID: "ISBN", UserID: "User-ID", RatingItemID: "ISBN", Rating: "Book-Rating"}
}

// batchSize bounds the keys per pipelined round-trip.
const batchSize = 1000

func bookPrefix(prefix string) string    { return prefix + "book:" }
func ratingsPrefix(prefix string) string { return prefix + "ratings:" }

// MetaKey is the key holding the seeding timestamp.
func MetaKey(prefix string) string { return prefix + "meta:dataset" }

// BookKey is the hash key of one book.
func BookKey(prefix, isbn string) string { return bookPrefix(prefix) + isbn }

// RatingsKey is the hash key of one user's ratings.
func RatingsKey(prefix, user string) string { return ratingsPrefix(prefix) + user }

// fetch loads hashes in batches, keeping key order.
func fetch(ctx context.Context, store Store, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, 0, len(keys))
	for start := 0; start < len(keys); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck // context error
		}
		end := min(start+batchSize, len(keys))
		batch, err := store.HGetAllMulti(ctx, keys[start:end])
		if err != nil {
			return nil, err //nolint:wrapcheck // db.Error carries the op
		}
		out = append(out, batch...)
	}
	return out, nil
}
