package search

import (
	"context"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// Loader supplies the complete document collection for one rebuild.
// A loader either returns every record or fails; partial sets are not accepted.
type Loader interface {
	Load(ctx context.Context) ([]document.Document, error)
}

// BuildObserver is notified after a new index became active.
type BuildObserver interface {
	IndexBuilt(docs []document.Document)
}
