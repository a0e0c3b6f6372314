package source

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/bookrec/internal/domain"
	"github.com/kailas-cloud/bookrec/internal/source/csvfile"
	"github.com/kailas-cloud/bookrec/internal/source/parquetfile"
	"github.com/kailas-cloud/bookrec/internal/source/sqlitedb"
)

func TestNew_Drivers(t *testing.T) {
	tests := []struct {
		driver string
		check  func(Source) bool
	}{
		{DriverCSV, func(s Source) bool { _, ok := s.(*csvfile.Source); return ok }},
		{DriverParquet, func(s Source) bool { _, ok := s.(*parquetfile.Source); return ok }},
		{DriverSQLite, func(s Source) bool { _, ok := s.(*sqlitedb.Source); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			src, err := New(Config{Driver: tt.driver}, nil, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(src) {
				t.Errorf("unexpected source type %T", src)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown driver", Config{Driver: "mongo"}},
		{"empty driver", Config{}},
		{"redis without store", Config{Driver: DriverRedis}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, nil, nil)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
