package search

import (
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/page"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
	"github.com/kailas-cloud/vocabsearch/internal/domain/selection"
)

// State is a snapshot of one interactive query session.
type State struct {
	Term      string
	Selection document.Facets
	Sort      sorting.Spec
	PageIndex int
	PageSize  int
	Results   []document.Document // sorted, not paginated
}

// Window returns the pagination window of the state.
func (st State) Window() page.Window {
	return page.Window{Index: st.PageIndex, Size: st.PageSize, Total: len(st.Results)}
}

// Session owns the query state of one caller and re-evaluates it through the
// engine on every mutation. Observers are called synchronously after each
// change, outside the session lock.
type Session struct {
	svc *Service

	mu        sync.Mutex
	state     State
	raw       []document.Document // engine order, before sorting
	observers map[int]func(State)
	nextID    int
}

// NewSession starts a session with an empty selection, unsorted results and
// the unfiltered document list.
func NewSession(svc *Service, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = request.DefaultPageSize
	}
	s := &Session{svc: svc, observers: make(map[int]func(State))}
	s.raw = svc.FillAll()
	s.state = State{PageSize: pageSize, Results: s.raw}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Page returns the documents of the current page. It is recomputed on every call.
func (s *Session) Page() []document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page.Paginate(s.state.Results, s.state.PageIndex, s.state.PageSize)
}

// Subscribe registers fn for state changes and returns a function removing it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// SetTerm replaces the free-text term and returns to the first page.
func (s *Session) SetTerm(term string) {
	s.mutate(func(st *State) {
		st.Term = strings.TrimSpace(term)
		st.PageIndex = 0
	})
}

// ToggleFacet selects value under key, or deselects it if already selected.
// Unknown keys are ignored.
func (s *Session) ToggleFacet(key document.FacetKey, value string) {
	if !key.IsValid() || value == "" {
		return
	}
	s.mutate(func(st *State) {
		set := selection.FromValues(st.Selection.Values(key))
		set.Toggle(value)
		st.Selection.Set(key, set.Values())
		st.PageIndex = 0
	})
}

// SetSort changes the sort key and direction and returns to the first page.
func (s *Session) SetSort(spec sorting.Spec) {
	s.mu.Lock()
	s.state.Sort = spec
	s.state.PageIndex = 0
	s.state.Results = s.svc.Sort(s.raw, spec)
	snap, obs := s.snapshot(), s.observerList()
	s.mu.Unlock()
	notify(obs, snap)
}

// SetPage moves to the zero-based page index. Negative indexes are ignored;
// indexes past the end are kept and produce an empty page.
func (s *Session) SetPage(index int) {
	if index < 0 {
		return
	}
	s.mu.Lock()
	s.state.PageIndex = index
	snap, obs := s.snapshot(), s.observerList()
	s.mu.Unlock()
	notify(obs, snap)
}

// SetPageSize changes the page size and returns to the first page.
func (s *Session) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	s.mu.Lock()
	s.state.PageSize = min(size, request.MaxPageSize)
	s.state.PageIndex = 0
	snap, obs := s.snapshot(), s.observerList()
	s.mu.Unlock()
	notify(obs, snap)
}

// Reset clears term, selection and sort and fetches the unfiltered list again.
func (s *Session) Reset() {
	s.mu.Lock()
	s.raw = s.svc.FillAll()
	s.state = State{PageSize: s.state.PageSize, Results: s.raw}
	snap, obs := s.snapshot(), s.observerList()
	s.mu.Unlock()
	notify(obs, snap)
}

// Refresh re-evaluates the current query, e.g. after the index was rebuilt.
func (s *Session) Refresh() {
	s.mutate(func(*State) {})
}

// mutate applies fn and re-runs the query.
func (s *Session) mutate(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	s.raw = s.svc.Search(s.state.Term, s.state.Selection)
	s.state.Results = s.svc.Sort(s.raw, s.state.Sort)
	snap, obs := s.snapshot(), s.observerList()
	s.mu.Unlock()
	notify(obs, snap)
}

func (s *Session) snapshot() State {
	st := s.state
	st.Selection = s.state.Selection.Clone()
	st.Results = slices.Clone(s.state.Results)
	return st
}

func (s *Session) observerList() []func(State) {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(State), len(ids))
	for i, id := range ids {
		out[i] = s.observers[id]
	}
	return out
}

func notify(observers []func(State), st State) {
	for _, fn := range observers {
		fn(st)
	}
}
