package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the similarity index can serve neighbors.
type IndexChecker interface {
	CheckIndex(ctx context.Context) error
}
