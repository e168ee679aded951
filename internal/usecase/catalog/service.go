// Package catalog derives the selectable filter values from the indexed documents.
package catalog

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// Options maps every facet key to its distinct values in collation order.
// Keys without any value map to an empty, non-nil list.
type Options map[document.FacetKey][]string

// BuildFilterOptions collects the distinct values of keys in one pass over docs.
func BuildFilterOptions(docs []document.Document, keys []document.FacetKey, locale language.Tag) Options {
	seen := make(map[document.FacetKey]map[string]struct{}, len(keys))
	out := make(Options, len(keys))
	for _, k := range keys {
		seen[k] = make(map[string]struct{})
		out[k] = []string{}
	}

	for i := range docs {
		facets := docs[i].Facets()
		for _, k := range keys {
			for _, v := range facets.Values(k) {
				if _, ok := seen[k][v]; ok {
					continue
				}
				seen[k][v] = struct{}{}
				out[k] = append(out[k], v)
			}
		}
	}

	col := collate.New(locale)
	for _, k := range keys {
		col.SortStrings(out[k])
	}
	return out
}

// Service caches the filter options of the active index. It is refreshed by the
// engine after every successful build.
type Service struct {
	keys   []document.FacetKey
	locale language.Tag

	mu      sync.RWMutex
	options Options
}

// New creates a Service for keys. An empty keys list means every facet key.
func New(keys []document.FacetKey, locale language.Tag) *Service {
	if len(keys) == 0 {
		keys = document.FacetKeys
	}
	return &Service{keys: keys, locale: locale, options: BuildFilterOptions(nil, keys, locale)}
}

// IndexBuilt recomputes the options from the documents of a new index.
func (s *Service) IndexBuilt(docs []document.Document) {
	opts := BuildFilterOptions(docs, s.keys, s.locale)
	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
}

// Options returns a copy of the current filter options.
func (s *Service) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Options, len(s.options))
	for k, v := range s.options {
		out[k] = append([]string(nil), v...)
	}
	return out
}
