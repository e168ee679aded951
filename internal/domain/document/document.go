package document

import (
	"errors"
	"fmt"
	"slices"
)

// VocabularyType is the type URI marking a record as a vocabulary (Wikidata "controlled vocabulary").
const VocabularyType = "http://www.wikidata.org/entity/Q1469824"

// MaxIDLength is the maximum accepted document identifier length.
const MaxIDLength = 2048

// ErrMissingID is returned by New when a record has no identifier.
var ErrMissingID = errors.New("document ID is required")

// Document is a vocabulary description record (immutable value object).
type Document struct {
	id          string
	title       string
	description string
	facets      Facets
	types       []string
	numerics    map[string]float64
}

// New validates and creates a Document.
// Only the ID is mandatory; every other attribute may be empty.
func New(id, title, description string, facets Facets, types []string, numerics map[string]float64) (Document, error) {
	if id == "" {
		return Document{}, ErrMissingID
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document ID too long (max %d)", MaxIDLength)
	}

	return Document{
		id:          id,
		title:       title,
		description: description,
		facets:      facets.Clone(),
		types:       dedupe(types),
		numerics:    cloneFloat64Map(numerics),
	}, nil
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Description returns the free-text description.
func (d *Document) Description() string { return d.description }

// Facets returns the faceted attributes.
func (d *Document) Facets() Facets { return d.facets }

// Types returns the type URIs.
func (d *Document) Types() []string { return d.types }

// Numerics returns the numeric attributes used for sorting.
func (d *Document) Numerics() map[string]float64 { return d.numerics }

// IsVocabulary reports whether the record carries the vocabulary type marker.
func (d *Document) IsVocabulary() bool {
	return slices.Contains(d.types, VocabularyType)
}

// Text returns the value of a plain text field (id, title or description).
func (d *Document) Text(field string) (string, bool) {
	switch field {
	case FieldTitle:
		return d.title, true
	case FieldDescription:
		return d.description, true
	case FieldID:
		return d.id, true
	}
	return "", false
}

// Text field names.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
)

// IsTextField reports whether name is a field that can be tokenized into the field index.
func IsTextField(name string) bool {
	return name == FieldTitle || name == FieldDescription
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func cloneFloat64Map(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
