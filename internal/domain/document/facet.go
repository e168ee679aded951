package document

import "fmt"

// FacetKey names a filterable attribute. The set is closed.
type FacetKey string

const (
	// FacetAbout is the subject of a vocabulary.
	FacetAbout FacetKey = "about"
	// FacetEducationalLevel is the educational level a vocabulary targets.
	FacetEducationalLevel FacetKey = "educationalLevel"
	// FacetIdentifier is a free-form external identifier.
	FacetIdentifier FacetKey = "identifier"
	// FacetTag holds opaque classification tags.
	FacetTag FacetKey = "tag"
)

// FacetKeys lists every facet key in catalog order.
var FacetKeys = []FacetKey{FacetAbout, FacetEducationalLevel, FacetIdentifier, FacetTag}

// ParseFacetKey validates a facet key name.
func ParseFacetKey(s string) (FacetKey, error) {
	k := FacetKey(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown facet key %q", s)
	}
	return k, nil
}

// IsValid reports whether k is a known facet key.
func (k FacetKey) IsValid() bool {
	switch k {
	case FacetAbout, FacetEducationalLevel, FacetIdentifier, FacetTag:
		return true
	}
	return false
}

// Facets is the fixed-shape record of facet values. Each key holds zero, one or many values.
type Facets struct {
	About            []string `json:"about,omitempty" yaml:"about,omitempty"`
	EducationalLevel []string `json:"educationalLevel,omitempty" yaml:"educationalLevel,omitempty"`
	Identifier       []string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Tag              []string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// Values returns the values stored under key.
func (f Facets) Values(key FacetKey) []string {
	switch key {
	case FacetAbout:
		return f.About
	case FacetEducationalLevel:
		return f.EducationalLevel
	case FacetIdentifier:
		return f.Identifier
	case FacetTag:
		return f.Tag
	}
	return nil
}

// Set replaces the values stored under key. Unknown keys are ignored.
func (f *Facets) Set(key FacetKey, values []string) {
	switch key {
	case FacetAbout:
		f.About = values
	case FacetEducationalLevel:
		f.EducationalLevel = values
	case FacetIdentifier:
		f.Identifier = values
	case FacetTag:
		f.Tag = values
	}
}

// IsEmpty reports whether no key holds a value.
func (f Facets) IsEmpty() bool {
	for _, k := range FacetKeys {
		if len(f.Values(k)) > 0 {
			return false
		}
	}
	return true
}

// Flatten returns every value of every key in key order, without duplicates.
func (f Facets) Flatten() []string {
	var all []string
	for _, k := range FacetKeys {
		all = append(all, f.Values(k)...)
	}
	return dedupe(all)
}

// Clone returns a deep copy with empty and duplicate values removed.
func (f Facets) Clone() Facets {
	var c Facets
	for _, k := range FacetKeys {
		c.Set(k, dedupe(f.Values(k)))
	}
	return c
}
