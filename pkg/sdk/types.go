package vocabsearch

import (
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
	"github.com/kailas-cloud/vocabsearch/internal/index/tag"
)

// FacetKey names a filterable attribute.
type FacetKey string

// Facet keys.
const (
	FacetAbout            FacetKey = FacetKey(document.FacetAbout)
	FacetEducationalLevel FacetKey = FacetKey(document.FacetEducationalLevel)
	FacetIdentifier       FacetKey = FacetKey(document.FacetIdentifier)
	FacetTag              FacetKey = FacetKey(document.FacetTag)
)

// FacetMode controls how selected facet values combine.
type FacetMode string

// Facet modes.
const (
	// FacetModeAny matches documents carrying any selected value.
	FacetModeAny FacetMode = FacetMode(tag.ModeAny)
	// FacetModeAllKeys matches any value within a key and requires every selected key.
	FacetModeAllKeys FacetMode = FacetMode(tag.ModeAllKeys)
)

// Order is the sort direction.
type Order string

// Sort orders.
const (
	Asc  Order = Order(sorting.Asc)
	Desc Order = Order(sorting.Desc)
)

// VocabularyType marks a record as a vocabulary; unfiltered listings only
// contain such records.
const VocabularyType = document.VocabularyType

// Document is one vocabulary description.
type Document struct {
	ID               string
	Title            string
	Description      string
	About            []string
	EducationalLevel []string
	Identifier       []string
	Tag              []string
	Types            []string
	Numerics         map[string]float64
}

// Page is one page of search results.
type Page struct {
	Items     []Document
	Total     int // matches before pagination
	PageIndex int
	PageSize  int
	PageCount int
}

// Filters maps every facet key to its distinct values in collation order.
type Filters map[FacetKey][]string

func documentFromDomain(d *document.Document) Document {
	f := d.Facets()
	return Document{
		ID:               d.ID(),
		Title:            d.Title(),
		Description:      d.Description(),
		About:            f.About,
		EducationalLevel: f.EducationalLevel,
		Identifier:       f.Identifier,
		Tag:              f.Tag,
		Types:            d.Types(),
		Numerics:         d.Numerics(),
	}
}

func documentToDomain(d Document) (document.Document, error) {
	return document.New(d.ID, d.Title, d.Description, document.Facets{
		About:            d.About,
		EducationalLevel: d.EducationalLevel,
		Identifier:       d.Identifier,
		Tag:              d.Tag,
	}, d.Types, d.Numerics)
}

func documentsFromDomain(docs []document.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = documentFromDomain(&docs[i])
	}
	return out
}
