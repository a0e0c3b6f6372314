// Package parquetfile reads flat parquet tables as string rows.
package parquetfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

// batchSize is the number of rows read per ReadRows call.
const batchSize = 1000

// Source reads the item and rating tables from two parquet files.
type Source struct {
	itemsPath   string
	ratingsPath string
}

// New creates a parquet source.
func New(itemsPath, ratingsPath string) *Source {
	return &Source{itemsPath: itemsPath, ratingsPath: ratingsPath}
}

// Items reads the item table.
func (s *Source) Items(ctx context.Context) (dataset.Table, error) {
	return ReadFile(ctx, s.itemsPath)
}

// Ratings reads the rating table.
func (s *Source) Ratings(ctx context.Context) (dataset.Table, error) {
	return ReadFile(ctx, s.ratingsPath)
}

// ReadFile reads every top-level leaf column of a parquet file.
// Values are rendered with their string form; nulls become empty strings.
// Nested columns are ignored.
func ReadFile(ctx context.Context, path string) (dataset.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return dataset.Table{}, fmt.Errorf("stat %s: %w", path, err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open parquet %s: %w", filepath.Base(path), err)
	}

	// leaf index -> position in Columns
	leafPos := make(map[int]int)
	var t dataset.Table
	for i, p := range pf.Schema().Columns() {
		if len(p) != 1 {
			continue
		}
		leafPos[i] = len(t.Columns)
		t.Columns = append(t.Columns, p[0])
	}

	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return dataset.Table{}, err //nolint:wrapcheck // context error
		}
		if err := readRowGroup(rg, leafPos, len(t.Columns), &t); err != nil {
			return dataset.Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, leafPos map[int]int, width int, t *dataset.Table) error {
	rows := parquet.NewRowGroupReader(rg)
	buf := make([]parquet.Row, batchSize)

	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			rec := make([]string, width)
			for _, v := range buf[i] {
				pos, ok := leafPos[v.Column()]
				if !ok || v.IsNull() {
					continue
				}
				rec[pos] = v.String()
			}
			t.Rows = append(t.Rows, rec)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
}
