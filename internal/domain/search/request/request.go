package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
)

// Search parameter limits.
const (
	// MaxTermLength is the maximum allowed free-text term length.
	MaxTermLength   = 1024
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxFacetValues  = 64
)

// Request is a validated search query with its projection.
type Request struct {
	term      string
	selection document.Facets
	sort      sorting.Spec
	pageIndex int
	pageSize  int
}

// New validates and normalizes search parameters.
// The term is trimmed; an empty term with an empty selection is an unfiltered fetch.
// Defaults: pageSize=20, clamped to 100.
func New(term string, selection document.Facets, sort sorting.Spec, pageIndex, pageSize int) (Request, error) {
	term = strings.TrimSpace(term)
	if len(term) > MaxTermLength {
		return Request{}, fmt.Errorf("term too long (max %d chars)", MaxTermLength)
	}
	if pageIndex < 0 {
		return Request{}, fmt.Errorf("page must not be negative")
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if n := len(selection.Flatten()); n > MaxFacetValues {
		return Request{}, fmt.Errorf("too many facet values (max %d)", MaxFacetValues)
	}

	return Request{
		term:      term,
		selection: selection.Clone(),
		sort:      sort,
		pageIndex: pageIndex,
		pageSize:  pageSize,
	}, nil
}

// Term returns the free-text term.
func (r *Request) Term() string { return r.term }

// Selection returns the selected facet values per key.
func (r *Request) Selection() document.Facets { return r.selection }

// Sort returns the sort spec.
func (r *Request) Sort() sorting.Spec { return r.sort }

// PageIndex returns the zero-based page index.
func (r *Request) PageIndex() int { return r.pageIndex }

// PageSize returns the page size.
func (r *Request) PageSize() int { return r.pageSize }

// IsUnfiltered reports whether the request has neither a term nor a selection.
func (r *Request) IsUnfiltered() bool {
	return r.term == "" && r.selection.IsEmpty()
}
