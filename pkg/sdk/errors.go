package vocabsearch

import "github.com/kailas-cloud/vocabsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound       = domain.ErrNotFound
	ErrInvalidRequest = domain.ErrInvalidRequest
	ErrBuild          = domain.ErrBuild
	ErrIndexNotReady  = domain.ErrIndexNotReady
	// ErrPersistence marks a selection change that was applied but not stored.
	ErrPersistence = domain.ErrPersistence
)

// IsWarning reports whether err leaves a valid result behind, e.g. a failed
// selection write.
func IsWarning(err error) bool { return domain.IsWarning(err) }
