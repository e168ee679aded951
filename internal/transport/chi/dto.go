package chi

import (
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
)

// DocumentResponse is the wire form of an indexed document.
type DocumentResponse struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	About            []string           `json:"about"`
	EducationalLevel []string           `json:"educationalLevel"`
	Identifier       []string           `json:"identifier"`
	Tag              []string           `json:"tag"`
	Types            []string           `json:"type"`
	Numerics         map[string]float64 `json:"numerics,omitempty"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Items     []DocumentResponse `json:"items"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
	PageCount int                `json:"page_count"`
	HasNext   bool               `json:"has_next"`
}

// RebuildResponse reports a finished index rebuild.
type RebuildResponse struct {
	Documents int `json:"documents"`
}

// SelectionResponse is the current state of one selection set.
type SelectionResponse struct {
	Key      string   `json:"key"`
	Values   []string `json:"values"`
	Selected *bool    `json:"selected,omitempty"`
	Warning  string   `json:"warning,omitempty"`
}

// SelectionKeysResponse lists the known selection keys.
type SelectionKeysResponse struct {
	Keys []string `json:"keys"`
}

// ToggleRequest is the body of POST /selections/{key}/toggle.
type ToggleRequest struct {
	Value string `json:"value"`
}

// HealthResponse aggregates component checks.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d *document.Document) DocumentResponse {
	facets := d.Facets()
	return DocumentResponse{
		ID:               d.ID(),
		Title:            d.Title(),
		Description:      d.Description(),
		About:            nonNil(facets.About),
		EducationalLevel: nonNil(facets.EducationalLevel),
		Identifier:       nonNil(facets.Identifier),
		Tag:              nonNil(facets.Tag),
		Types:            nonNil(d.Types()),
		Numerics:         d.Numerics(),
	}
}

func pageToResponse(p searchuc.Page) SearchResponse {
	items := make([]DocumentResponse, len(p.Items))
	for i := range p.Items {
		items[i] = documentToResponse(&p.Items[i])
	}
	return SearchResponse{
		Items:     items,
		Total:     p.Total,
		Page:      p.PageIndex,
		Size:      p.PageSize,
		PageCount: p.PageCount,
		HasNext:   p.PageIndex < p.PageCount-1,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
