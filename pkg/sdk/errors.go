package bookrec

import "github.com/kailas-cloud/bookrec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	// ErrNotFound is returned by Recommend for titles outside the similarity index.
	ErrNotFound = domain.ErrTitleNotFound
	// ErrConfiguration is returned by New for missing columns or bad options.
	ErrConfiguration = domain.ErrConfiguration
	// ErrConsistency signals a broken build invariant.
	ErrConsistency = domain.ErrConsistency
)
