package vocabsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/usecase/catalog"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
)

func TestSearchBuilder_PassesRequest(t *testing.T) {
	var got *request.Request
	c := &Client{searchSvc: &mockSearchUC{
		queryFn: func(_ context.Context, req *request.Request) (searchuc.Page, error) {
			got = req
			d, _ := document.New("v1", "Schulfächer", "", document.Facets{}, nil, nil)
			return searchuc.Page{Items: []document.Document{d}, Total: 41, PageIndex: 2, PageSize: 10, PageCount: 5}, nil
		},
	}}

	p, err := c.Search().
		Term("  fach ").
		Facet(FacetAbout, "Schule").
		Facet(FacetAbout, "Bildung").
		SortBy("title", Desc).
		Page(2).
		Size(10).
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if got.Term() != "fach" {
		t.Errorf("term = %q, want trimmed", got.Term())
	}
	sel := got.Selection()
	if v := sel.Values(document.FacetAbout); len(v) != 2 || v[0] != "Schule" || v[1] != "Bildung" {
		t.Errorf("about = %v", v)
	}
	if got.Sort().Key() != "title" || got.PageIndex() != 2 || got.PageSize() != 10 {
		t.Errorf("request = %+v", got)
	}
	if p.Total != 41 || p.PageCount != 5 || len(p.Items) != 1 || p.Items[0].ID != "v1" {
		t.Errorf("page = %+v", p)
	}
}

func TestSearchBuilder_InvalidInput(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		queryFn: func(context.Context, *request.Request) (searchuc.Page, error) {
			t.Fatal("query must not run")
			return searchuc.Page{}, nil
		},
	}}

	tests := []struct {
		name string
		b    *SearchBuilder
	}{
		{"unknown facet", c.Search().Facet("colour", "red")},
		{"unknown order", c.Search().SortBy("title", "sideways")},
		{"negative page", c.Search().Page(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Do(context.Background())
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestClient_Rebuild_Error(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		rebuildFn: func(context.Context) (int, error) {
			return 0, domain.NewBuildError(3, "x", document.ErrMissingID)
		},
	}}
	_, err := c.Rebuild(context.Background())
	if !errors.Is(err, ErrBuild) {
		t.Errorf("err = %v, want ErrBuild", err)
	}
}

func TestClient_Filters(t *testing.T) {
	c := &Client{filterSvc: &mockFilterUC{opts: catalog.Options{
		document.FacetAbout: {"Bildung", "Schule"},
		document.FacetTag:   {},
	}}}
	f := c.Filters()
	if len(f[FacetAbout]) != 2 {
		t.Errorf("about = %v", f[FacetAbout])
	}
	if v, ok := f[FacetTag]; !ok || len(v) != 0 {
		t.Errorf("tag = %v, %v", v, ok)
	}
}

func TestSelection_ToggleWarning(t *testing.T) {
	c := &Client{selSvc: &mockSelectionUC{
		toggleFn: func(_ context.Context, key, value string) ([]string, bool, error) {
			return []string{value}, true, domain.NewPersistenceWarning(key, errors.New("disk full"))
		},
	}}

	selected, err := c.Selection("favourites").Toggle(context.Background(), "v1")
	if !selected {
		t.Error("selection result must survive a failed write")
	}
	if !IsWarning(err) {
		t.Errorf("err = %v, want warning", err)
	}
}

func TestSelection_ResetError(t *testing.T) {
	c := &Client{selSvc: &mockSelectionUC{
		resetFn: func(context.Context, string) error { return errors.New("storage down") },
	}}
	err := c.Selection("favourites").Reset(context.Background())
	if err == nil || IsWarning(err) {
		t.Errorf("err = %v, want hard error", err)
	}
}

func TestSession(t *testing.T) {
	c := newTestClient(t)
	if _, err := c.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	s := c.NewSession(1)
	if st := s.State(); st.Total != 2 || st.PageCount != 2 {
		t.Fatalf("initial state = %+v, want 2 vocabularies over 2 pages", st)
	}

	var states []SessionState
	unsubscribe := s.Subscribe(func(st SessionState) { states = append(states, st) })

	s.SetPage(1)
	if page := s.Page(); len(page) != 1 || page[0].ID != "v2" {
		t.Errorf("page 1 = %+v", page)
	}

	s.ToggleFacet(FacetAbout, "Bildung")
	st := s.State()
	if st.PageIndex != 0 {
		t.Errorf("page index = %d, want reset to 0", st.PageIndex)
	}
	if st.Total != 2 || len(st.Selection[FacetAbout]) != 1 {
		t.Errorf("state = %+v", st)
	}

	if err := s.SetSort("title", "sideways"); err == nil {
		t.Error("expected invalid order error")
	}
	if err := s.SetSort("title", Asc); err != nil {
		t.Fatalf("SetSort: %v", err)
	}
	if page := s.Page(); page[0].ID != "c1" {
		t.Errorf("sorted first = %s, want c1", page[0].ID)
	}

	unsubscribe()
	s.Reset()
	if len(states) != 3 {
		t.Errorf("notifications = %d, want 3", len(states))
	}
	if st := s.State(); st.Total != 2 || len(st.Selection) != 0 || st.SortKey != "" {
		t.Errorf("state after reset = %+v", st)
	}
}
