package vocabsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
)

// SearchBuilder is a fluent builder for search queries.
// An empty term with no facets lists every vocabulary.
type SearchBuilder struct {
	c *Client

	term    string
	facets  document.Facets
	sortKey string
	order   Order
	page    int
	size    int
	err     error
}

// Term sets the free-text term. Every word must match a searchable field.
func (b *SearchBuilder) Term(t string) *SearchBuilder {
	b.term = t
	return b
}

// Facet adds selected values for key.
func (b *SearchBuilder) Facet(key FacetKey, values ...string) *SearchBuilder {
	k, err := document.ParseFacetKey(string(key))
	if err != nil {
		b.err = err
		return b
	}
	b.facets.Set(k, append(b.facets.Values(k), values...))
	return b
}

// SortBy sorts results by a field such as "title" or a numeric attribute.
func (b *SearchBuilder) SortBy(key string, order Order) *SearchBuilder {
	b.sortKey = key
	b.order = order
	return b
}

// Page selects the zero-based page.
func (b *SearchBuilder) Page(index int) *SearchBuilder {
	b.page = index
	return b
}

// Size sets the page size. Default 20, capped at 100.
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	b.size = n
	return b
}

// Do runs the query and returns the requested page.
func (b *SearchBuilder) Do(ctx context.Context) (p Page, err error) {
	start := time.Now()
	defer func() { b.c.obs.observe("search", start, err) }()

	if b.err != nil {
		return Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, b.err)
	}
	spec, err := sorting.NewSpec(b.sortKey, sorting.Order(b.order))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	req, err := request.New(b.term, b.facets, spec, b.page, b.size)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	res, err := b.c.searchSvc.Query(ctx, &req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return Page{
		Items:     documentsFromDomain(res.Items),
		Total:     res.Total,
		PageIndex: res.PageIndex,
		PageSize:  res.PageSize,
		PageCount: res.PageCount,
	}, nil
}
