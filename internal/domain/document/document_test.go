package document

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	facets := Facets{About: []string{"math"}, EducationalLevel: []string{"school"}}
	nums := map[string]float64{"concepts": 42}

	doc, err := New("https://example.org/v1", "Bildung", "desc", facets, []string{VocabularyType}, nums)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "https://example.org/v1" {
		t.Errorf("ID() = %q", doc.ID())
	}
	if doc.Title() != "Bildung" {
		t.Errorf("Title() = %q", doc.Title())
	}
	if doc.Description() != "desc" {
		t.Errorf("Description() = %q", doc.Description())
	}
	if got := doc.Facets(); len(got.About) != 1 || got.About[0] != "math" {
		t.Errorf("Facets().About = %v", got.About)
	}
	if !doc.IsVocabulary() {
		t.Error("IsVocabulary() = false, want true")
	}
	if doc.Numerics()["concepts"] != 42 {
		t.Errorf("Numerics() = %v", doc.Numerics())
	}
}

func TestNew_MissingID(t *testing.T) {
	_, err := New("", "title", "", Facets{}, nil, nil)
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestNew_IDTooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxIDLength+1), "title", "", Facets{}, nil, nil)
	if err == nil {
		t.Fatal("expected error for long ID")
	}
}

func TestNew_ClonesInputs(t *testing.T) {
	about := []string{"math"}
	nums := map[string]float64{"n": 1}

	doc, err := New("id", "", "", Facets{About: about}, nil, nums)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	about[0] = "mutated"
	nums["n"] = 999

	if doc.Facets().About[0] != "math" {
		t.Error("facet mutation leaked into document")
	}
	if doc.Numerics()["n"] != 1 {
		t.Error("numerics mutation leaked into document")
	}
}

func TestNew_DedupesTypesAndFacets(t *testing.T) {
	doc, err := New("id", "", "", Facets{Tag: []string{"a", "", "a", "b"}}, []string{"t", "t"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.Facets().Tag; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Tag = %v, want [a b]", got)
	}
	if got := doc.Types(); len(got) != 1 {
		t.Errorf("Types = %v, want one entry", got)
	}
}

func TestIsVocabulary_NoMarker(t *testing.T) {
	doc, _ := New("id", "", "", Facets{}, []string{"http://schema.org/Thing"}, nil)
	if doc.IsVocabulary() {
		t.Error("IsVocabulary() = true, want false")
	}
}

func TestText(t *testing.T) {
	doc, err := New("id-1", "Title", "Desc", Facets{}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		field string
		want  string
		ok    bool
	}{
		{FieldID, "id-1", true},
		{FieldTitle, "Title", true},
		{FieldDescription, "Desc", true},
		{"unknown", "", false},
	}
	for _, tc := range tests {
		got, ok := doc.Text(tc.field)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Text(%q) = (%q, %v), want (%q, %v)", tc.field, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseFacetKey(t *testing.T) {
	for _, k := range FacetKeys {
		if _, err := ParseFacetKey(string(k)); err != nil {
			t.Errorf("ParseFacetKey(%q): %v", k, err)
		}
	}
	if _, err := ParseFacetKey("color"); err == nil {
		t.Error("expected error for unknown facet key")
	}
}

func TestFacets_Flatten(t *testing.T) {
	f := Facets{
		About:            []string{"x", "y"},
		EducationalLevel: []string{"y", "z"},
		Tag:              []string{"t"},
	}
	got := f.Flatten()
	want := []string{"x", "y", "z", "t"}
	if len(got) != len(want) {
		t.Fatalf("Flatten() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Flatten()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFacets_ReadOnValues(t *testing.T) {
	doc, err := New("id-1", "", "", Facets{About: []string{"Schule", "Schule"}}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Read methods work on non-addressable values returned by accessors.
	if doc.Facets().IsEmpty() {
		t.Error("Facets() should not be empty")
	}
	if got := doc.Facets().Values(FacetAbout); len(got) != 1 || got[0] != "Schule" {
		t.Errorf("Values(about) = %v", got)
	}
	if got := doc.Facets().Flatten(); len(got) != 1 {
		t.Errorf("Flatten() = %v", got)
	}
}

func TestFacets_IsEmpty(t *testing.T) {
	var f Facets
	if !f.IsEmpty() {
		t.Error("zero Facets should be empty")
	}
	f.Set(FacetIdentifier, []string{"x"})
	if f.IsEmpty() {
		t.Error("Facets with identifier should not be empty")
	}
}
