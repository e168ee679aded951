package tag

import (
	"slices"
	"testing"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

func rec(id string, f document.Facets) document.Document {
	d, err := document.New(id, "", "", f, nil, nil)
	if err != nil {
		panic(err)
	}
	return d
}

func build(t *testing.T, docs ...document.Document) *Index {
	t.Helper()
	x := New()
	for i := range docs {
		x.Index(uint32(i), &docs[i])
	}
	return x
}

func TestFilterByTags_FlatOR(t *testing.T) {
	x := build(t,
		rec("0", document.Facets{About: []string{"math"}}),
		rec("1", document.Facets{EducationalLevel: []string{"school"}}),
		rec("2", document.Facets{About: []string{"physics"}}),
	)

	got := x.FilterByTags([]string{"math", "school"}).ToArray()
	if !slices.Equal(got, []uint32{0, 1}) {
		t.Errorf("FilterByTags = %v, want [0 1]", got)
	}
}

func TestFilterByTags_UnknownValue(t *testing.T) {
	x := build(t, rec("0", document.Facets{About: []string{"math"}}))
	if got := x.FilterByTags([]string{"X"}); !got.IsEmpty() {
		t.Errorf("FilterByTags(X) = %v, want empty", got.ToArray())
	}
	if got := x.FilterByTags(nil); !got.IsEmpty() {
		t.Errorf("FilterByTags(nil) = %v, want empty", got.ToArray())
	}
}

func TestFilter_AllKeys(t *testing.T) {
	x := build(t,
		rec("0", document.Facets{About: []string{"math"}, EducationalLevel: []string{"school"}}),
		rec("1", document.Facets{About: []string{"math"}, EducationalLevel: []string{"university"}}),
		rec("2", document.Facets{About: []string{"physics"}, EducationalLevel: []string{"school"}}),
	)
	sel := document.Facets{
		About:            []string{"math", "physics"},
		EducationalLevel: []string{"school"},
	}

	if got := x.Filter(sel, ModeAllKeys).ToArray(); !slices.Equal(got, []uint32{0, 2}) {
		t.Errorf("all_keys = %v, want [0 2]", got)
	}
	if got := x.Filter(sel, ModeAny).ToArray(); !slices.Equal(got, []uint32{0, 1, 2}) {
		t.Errorf("any = %v, want [0 1 2]", got)
	}

	missingKey := document.Facets{About: []string{"math"}, Identifier: []string{"nope"}}
	if got := x.Filter(missingKey, ModeAllKeys); !got.IsEmpty() {
		t.Errorf("unknown value under a selected key must empty the result, got %v", got.ToArray())
	}
}

func TestIndex_ReplacesRegistrations(t *testing.T) {
	x := New()
	d := rec("0", document.Facets{Tag: []string{"old"}})
	x.Index(0, &d)
	d = rec("0", document.Facets{Tag: []string{"new"}})
	x.Index(0, &d)

	if !x.Lookup(document.FacetTag, "old").IsEmpty() {
		t.Error("old tag survived re-index")
	}
	if !x.Lookup(document.FacetTag, "new").Contains(0) {
		t.Error("new tag missing after re-index")
	}
	if x.Values(document.FacetTag) != 1 {
		t.Errorf("Values(tag) = %d, want 1", x.Values(document.FacetTag))
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	x := build(t, rec("0", document.Facets{About: []string{"math"}}))
	bm := x.Lookup(document.FacetAbout, "math")
	bm.Add(42)
	if x.Lookup(document.FacetAbout, "math").Contains(42) {
		t.Error("mutating Lookup result leaked into index")
	}
}

func TestModeIsValid(t *testing.T) {
	if !ModeAny.IsValid() || !ModeAllKeys.IsValid() {
		t.Error("known modes must be valid")
	}
	if Mode("some").IsValid() {
		t.Error("unknown mode must be invalid")
	}
}
