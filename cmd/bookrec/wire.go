package main

import (
	"github.com/kailas-cloud/bookrec/internal/config"
	"github.com/kailas-cloud/bookrec/internal/source"
	"github.com/kailas-cloud/bookrec/internal/source/redishash"
	"github.com/kailas-cloud/bookrec/internal/usecase/catalog"
	"github.com/kailas-cloud/bookrec/internal/usecase/index"
	"github.com/kailas-cloud/bookrec/internal/usecase/pipeline"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
)

func sourceConfig(cfg config.Config) source.Config {
	s := cfg.Source
	return source.Config{
		Driver:       s.Driver,
		ItemsPath:    s.ItemsPath,
		RatingsPath:  s.RatingsPath,
		Delimiter:    s.DelimiterRune(),
		SQLiteDSN:    s.SQLite.DSN,
		ItemsTable:   s.SQLite.ItemsTable,
		RatingsTable: s.SQLite.RatingsTable,
		KeyPrefix:    cfg.Database.KeyPrefix,
		Columns: redishash.Columns{
			ItemID:       s.Columns.ItemID,
			UserID:       s.Columns.UserID,
			RatingItemID: s.Columns.RatingItemID,
			Rating:       s.Columns.Rating,
		},
	}
}

func pipelineConfig(cfg config.Config) pipeline.Config {
	c, p := cfg.Source.Columns, cfg.Pipeline
	return pipeline.Config{
		Columns: catalog.Columns{
			ItemID:        c.ItemID,
			Title:         c.Title,
			Author:        c.Author,
			ImageURL:      c.ImageURL,
			ImageURLSmall: c.ImageURLSmall,
			ImageURLLarge: c.ImageURLLarge,
			Price:         c.Price,
			UserID:        c.UserID,
			RatingItemID:  c.RatingItemID,
			Rating:        c.Rating,
		},
		Thresholds: index.Thresholds{
			MinUserRatings:  p.MinUserRatings,
			MinTitleRatings: p.MinTitleRatings,
		},
		Popular: recommend.PopularConfig{
			MinRatings: p.PopularMinRatings,
			Limit:      p.PopularLimit,
		},
		PriceMin:  p.PriceMin,
		PriceMax:  p.PriceMax,
		PriceSeed: p.PriceSeed,
		Workers:   p.Workers,
	}
}
