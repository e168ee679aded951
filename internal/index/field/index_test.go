package field

import (
	"errors"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/vocabsearch/internal/index/tokenizer"
)

func newIndex(t *testing.T, fields ...string) *Index {
	t.Helper()
	if len(fields) == 0 {
		fields = []string{document.FieldTitle, document.FieldDescription}
	}
	x, err := New(tokenizer.New(language.German), fields)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return x
}

func rec(id, title, desc string) document.Document {
	d, err := document.New(id, title, desc, document.Facets{}, nil, nil)
	if err != nil {
		panic(err)
	}
	return d
}

func groupIDs(g result.Group) []string {
	return result.IDs(g.Hits)
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_Validation(t *testing.T) {
	enc := tokenizer.New(language.German)
	if _, err := New(enc, nil); err == nil {
		t.Error("expected error for no fields")
	}
	if _, err := New(enc, []string{"about"}); err == nil {
		t.Error("expected error for non-text field")
	}
	if _, err := New(enc, []string{"title", "title"}); err == nil {
		t.Error("expected error for duplicate field")
	}
}

func TestSearch_CaseFolding(t *testing.T) {
	x := newIndex(t)
	d1 := rec("1", "Straße der Bildung", "")
	d2 := rec("2", "Schule", "")
	x.Index(0, &d1)
	x.Index(1, &d2)

	for _, term := range []string{"STRASSE", "strasse", "Straße", "STRAS"} {
		groups, err := x.Search(term, SearchOptions{})
		if err != nil {
			t.Fatalf("Search(%q): %v", term, err)
		}
		if got := groupIDs(groups[0]); !equal(got, []string{"1"}) {
			t.Errorf("Search(%q) title hits = %v, want [1]", term, got)
		}
	}
}

func TestSearch_PartialWord(t *testing.T) {
	x := newIndex(t)
	d1 := rec("1", "Bildung", "")
	d2 := rec("2", "Schule", "")
	x.Index(0, &d1)
	x.Index(1, &d2)

	groups, err := x.Search("bild", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected one group per field, got %d", len(groups))
	}
	if got := groupIDs(groups[0]); !equal(got, []string{"1"}) {
		t.Errorf("title hits = %v, want [1]", got)
	}
	if len(groups[1].Hits) != 0 {
		t.Errorf("description hits = %v, want none", groupIDs(groups[1]))
	}
}

func TestSearch_EmptyTermIsQueryError(t *testing.T) {
	x := newIndex(t)
	for _, term := range []string{"", "   ", "?!"} {
		_, err := x.Search(term, SearchOptions{})
		if !errors.Is(err, ErrEmptyTerm) || !errors.Is(err, domain.ErrQuery) {
			t.Errorf("Search(%q) err = %v, want ErrEmptyTerm", term, err)
		}
	}
}

func TestSearch_UnknownTokenYieldsEmptyGroup(t *testing.T) {
	x := newIndex(t)
	d := rec("1", "Bildung", "")
	x.Index(0, &d)

	groups, err := x.Search("xyzzy", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, g := range groups {
		if len(g.Hits) != 0 {
			t.Errorf("field %s: hits = %v, want none", g.Field, groupIDs(g))
		}
	}
}

func TestSearch_UnknownField(t *testing.T) {
	x := newIndex(t, document.FieldTitle)
	_, err := x.Search("x", SearchOptions{Fields: []string{document.FieldDescription}})
	if !errors.Is(err, domain.ErrQuery) {
		t.Fatalf("err = %v, want ErrQuery", err)
	}
}

func TestSearch_AllWordsMustMatch(t *testing.T) {
	x := newIndex(t)
	d1 := rec("1", "Mathematik Schule", "")
	d2 := rec("2", "Mathematik", "")
	x.Index(0, &d1)
	x.Index(1, &d2)

	groups, err := x.Search("mathe schul", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := groupIDs(groups[0]); !equal(got, []string{"1"}) {
		t.Errorf("hits = %v, want [1]", got)
	}
}

func TestSearch_RelevanceOrder(t *testing.T) {
	x := newIndex(t)
	infix := rec("infix", "Weiterbildung", "")
	prefix := rec("prefix", "Bildungsplan", "")
	exact := rec("exact", "Bild", "")
	x.Index(0, &infix)
	x.Index(1, &prefix)
	x.Index(2, &exact)

	groups, err := x.Search("bild", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"exact", "prefix", "infix"}
	if got := groupIDs(groups[0]); !equal(got, want) {
		t.Errorf("hits = %v, want %v", got, want)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	x := newIndex(t)
	for i, id := range []string{"c", "a", "b"} {
		d := rec(id, "Schule", "")
		x.Index(uint32(i), &d)
	}
	groups, _ := x.Search("schule", SearchOptions{})
	if got := groupIDs(groups[0]); !equal(got, []string{"c", "a", "b"}) {
		t.Errorf("hits = %v, want [c a b]", got)
	}
}

func TestSearch_FilterAndLimit(t *testing.T) {
	x := newIndex(t)
	for i, id := range []string{"a", "b", "c"} {
		d := rec(id, "Schule", "")
		x.Index(uint32(i), &d)
	}

	groups, _ := x.Search("schule", SearchOptions{Filter: roaring.BitmapOf(0, 2)})
	if got := groupIDs(groups[0]); !equal(got, []string{"a", "c"}) {
		t.Errorf("filtered hits = %v, want [a c]", got)
	}

	groups, _ = x.Search("schule", SearchOptions{Limit: 1})
	if got := groupIDs(groups[0]); !equal(got, []string{"a"}) {
		t.Errorf("limited hits = %v, want [a]", got)
	}

	groups, _ = x.Search("schule", SearchOptions{Filter: roaring.New()})
	if len(groups[0].Hits) != 0 {
		t.Errorf("empty filter should yield no hits, got %v", groupIDs(groups[0]))
	}
}

func TestInsert_ReplacesPreviousPostings(t *testing.T) {
	x := newIndex(t)
	old := rec("1", "Bildung", "")
	x.Index(0, &old)
	repl := rec("1", "Schule", "")
	x.Index(0, &repl)

	groups, _ := x.Search("bildung", SearchOptions{})
	if len(groups[0].Hits) != 0 {
		t.Errorf("old postings survived: %v", groupIDs(groups[0]))
	}
	groups, _ = x.Search("schule", SearchOptions{})
	if got := groupIDs(groups[0]); !equal(got, []string{"1"}) {
		t.Errorf("hits = %v, want [1]", got)
	}
	if x.Len() != 1 {
		t.Errorf("Len() = %d, want 1", x.Len())
	}
	if x.Vocabulary(document.FieldTitle) != len(tokenizer.New(language.German).Tokens("Schule")) {
		t.Errorf("Vocabulary() = %d, stale tokens remain", x.Vocabulary(document.FieldTitle))
	}
}

func TestRemove(t *testing.T) {
	x := newIndex(t)
	d := rec("1", "Bildung", "Beschreibung")
	x.Index(0, &d)
	x.Remove(0)
	x.Remove(7)

	if x.Len() != 0 {
		t.Errorf("Len() = %d after Remove", x.Len())
	}
	if x.Vocabulary(document.FieldTitle) != 0 || x.Vocabulary(document.FieldDescription) != 0 {
		t.Error("postings survived Remove")
	}
}

func TestSearch_SameDocInTwoFields(t *testing.T) {
	x := newIndex(t)
	d := rec("1", "Bildung", "Bildungsstandards")
	x.Index(0, &d)

	groups, _ := x.Search("bildung", SearchOptions{})
	if len(groups[0].Hits) != 1 || len(groups[1].Hits) != 1 {
		t.Fatalf("expected a hit in each field, got %d and %d", len(groups[0].Hits), len(groups[1].Hits))
	}
	if groups[0].Field != document.FieldTitle || groups[1].Field != document.FieldDescription {
		t.Errorf("groups out of priority order: %s, %s", groups[0].Field, groups[1].Field)
	}
}
