// Package csvfile reads delimited text dumps such as the Book-Crossing CSVs.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/bookrec/internal/domain/dataset"
)

const (
	// checkEvery is how many records are read between context checks.
	checkEvery = 10000
	utf8BOM    = "\xef\xbb\xbf"
)

// Source reads the item and rating tables from two files.
type Source struct {
	itemsPath   string
	ratingsPath string
	delimiter   rune
}

// New creates a CSV source. A zero delimiter means ','.
func New(itemsPath, ratingsPath string, delimiter rune) *Source {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Source{itemsPath: itemsPath, ratingsPath: ratingsPath, delimiter: delimiter}
}

// Items reads the item table.
func (s *Source) Items(ctx context.Context) (dataset.Table, error) {
	return s.readFile(ctx, s.itemsPath)
}

// Ratings reads the rating table.
func (s *Source) Ratings(ctx context.Context) (dataset.Table, error) {
	return s.readFile(ctx, s.ratingsPath)
}

func (s *Source) readFile(ctx context.Context, path string) (dataset.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := Read(ctx, f, s.delimiter)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Read parses a header row followed by records. Quotes are parsed leniently
// and records may have fewer or more fields than the header.
func Read(ctx context.Context, r io.Reader, delimiter rune) (dataset.Table, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(len(utf8BOM)); err == nil && string(bom) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.Table{}, fmt.Errorf("empty input: missing header")
		}
		return dataset.Table{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := dataset.Table{Columns: header}
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return dataset.Table{}, err //nolint:wrapcheck // context error
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset.Table{}, fmt.Errorf("record %d: %w", n+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
