package vocabsearch

import (
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
)

// SessionState is a snapshot of a Session.
type SessionState struct {
	Term      string
	Selection map[FacetKey][]string
	SortKey   string
	Order     Order
	PageIndex int
	PageSize  int
	Total     int
	PageCount int
}

// Session holds the query state of one interactive user: term, selected
// facets, sort and page. Every change re-runs the query and notifies
// subscribers synchronously.
type Session struct {
	s *searchuc.Session
}

// State returns the current state.
func (s *Session) State() SessionState { return stateFromUseCase(s.s.State()) }

// Page returns the documents of the current page.
func (s *Session) Page() []Document { return documentsFromDomain(s.s.Page()) }

// Subscribe registers fn for state changes and returns a function removing it.
func (s *Session) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	return s.s.Subscribe(func(st searchuc.State) { fn(stateFromUseCase(st)) })
}

// SetTerm replaces the term and returns to the first page.
func (s *Session) SetTerm(term string) { s.s.SetTerm(term) }

// ToggleFacet selects or deselects value under key. Unknown keys are ignored.
func (s *Session) ToggleFacet(key FacetKey, value string) {
	s.s.ToggleFacet(document.FacetKey(key), value)
}

// SetSort changes the sort order and returns to the first page.
// An empty key restores the engine order.
func (s *Session) SetSort(key string, order Order) error {
	spec, err := sorting.NewSpec(key, sorting.Order(order))
	if err != nil {
		return err
	}
	s.s.SetSort(spec)
	return nil
}

// SetPage moves to a zero-based page. Negative indexes are ignored.
func (s *Session) SetPage(index int) { s.s.SetPage(index) }

// SetPageSize changes the page size and returns to the first page.
func (s *Session) SetPageSize(size int) { s.s.SetPageSize(size) }

// Reset clears term, facets and sort.
func (s *Session) Reset() { s.s.Reset() }

// Refresh re-runs the query, e.g. after Rebuild.
func (s *Session) Refresh() { s.s.Refresh() }

func stateFromUseCase(st searchuc.State) SessionState {
	sel := make(map[FacetKey][]string)
	for _, k := range document.FacetKeys {
		if v := st.Selection.Values(k); len(v) > 0 {
			sel[FacetKey(k)] = v
		}
	}
	w := st.Window()
	return SessionState{
		Term:      st.Term,
		Selection: sel,
		SortKey:   st.Sort.Key(),
		Order:     Order(st.Sort.Order()),
		PageIndex: st.PageIndex,
		PageSize:  st.PageSize,
		Total:     w.Total,
		PageCount: w.Count(),
	}
}
