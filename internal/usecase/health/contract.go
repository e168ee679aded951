package health

import "context"

// DBPinger checks selection storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether a search index is active.
type IndexChecker interface {
	Ready() bool
}
