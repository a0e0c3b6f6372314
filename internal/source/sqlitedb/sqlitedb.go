// Package sqlitedb reads the item and rating tables from a SQLite database.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

// Default table names.
const (
	DefaultItemsTable   = "books"
	DefaultRatingsTable = "ratings"
)

// Source reads whole tables with SELECT *.
type Source struct {
	dsn          string
	itemsTable   string
	ratingsTable string
}

// New creates a SQLite source. Empty table names use the defaults.
func New(dsn, itemsTable, ratingsTable string) *Source {
	if itemsTable == "" {
		itemsTable = DefaultItemsTable
	}
	if ratingsTable == "" {
		ratingsTable = DefaultRatingsTable
	}
	return &Source{dsn: dsn, itemsTable: itemsTable, ratingsTable: ratingsTable}
}

// Items reads the item table.
func (s *Source) Items(ctx context.Context) (dataset.Table, error) {
	return s.readTable(ctx, s.itemsTable)
}

// Ratings reads the rating table.
func (s *Source) Ratings(ctx context.Context) (dataset.Table, error) {
	return s.readTable(ctx, s.ratingsTable)
}

func (s *Source) readTable(ctx context.Context, table string) (dataset.Table, error) {
	conn, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	t, err := ReadTable(ctx, conn, table)
	if err != nil {
		return dataset.Table{}, err
	}
	return t, nil
}

// ReadTable selects every row of table. NULLs become empty strings; numbers use their text form.
func ReadTable(ctx context.Context, conn *sql.DB, table string) (dataset.Table, error) {
	rows, err := conn.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return dataset.Table{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return dataset.Table{}, fmt.Errorf("columns %s: %w", table, err)
	}

	t := dataset.Table{Columns: cols}
	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return dataset.Table{}, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				rec[i] = v.String
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return dataset.Table{}, fmt.Errorf("iterate %s: %w", table, err)
	}
	return t, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
