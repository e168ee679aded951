// Package tag maps (facet key, value) pairs to the documents carrying them.
package tag

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// Mode selects how selected values from several facet keys combine.
type Mode string

const (
	// ModeAny matches documents carrying any selected value, whatever its key.
	ModeAny Mode = "any"
	// ModeAllKeys matches any value within a key and requires every selected key.
	ModeAllKeys Mode = "all_keys"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool { return m == ModeAny || m == ModeAllKeys }

type ref struct {
	key   document.FacetKey
	value string
}

// Index is the tag index. Posting lists hold document ordinals.
type Index struct {
	postings map[document.FacetKey]map[string]*roaring.Bitmap
	refs     map[uint32][]ref
}

// New creates an empty Index.
func New() *Index {
	p := make(map[document.FacetKey]map[string]*roaring.Bitmap, len(document.FacetKeys))
	for _, k := range document.FacetKeys {
		p[k] = make(map[string]*roaring.Bitmap)
	}
	return &Index{postings: p, refs: make(map[uint32][]ref)}
}

// Index registers every facet value of doc under ordinal ord, replacing earlier registrations.
func (x *Index) Index(ord uint32, doc *document.Document) {
	x.Remove(ord)
	facets := doc.Facets()
	var refs []ref
	for _, k := range document.FacetKeys {
		for _, v := range facets.Values(k) {
			bm, ok := x.postings[k][v]
			if !ok {
				bm = roaring.New()
				x.postings[k][v] = bm
			}
			bm.Add(ord)
			refs = append(refs, ref{key: k, value: v})
		}
	}
	x.refs[ord] = refs
}

// Remove drops every registration of ordinal ord.
func (x *Index) Remove(ord uint32) {
	for _, r := range x.refs[ord] {
		if bm, ok := x.postings[r.key][r.value]; ok {
			bm.Remove(ord)
			if bm.IsEmpty() {
				delete(x.postings[r.key], r.value)
			}
		}
	}
	delete(x.refs, ord)
}

// Lookup returns the ordinals holding value under key. The result is a copy.
func (x *Index) Lookup(key document.FacetKey, value string) *roaring.Bitmap {
	if bm, ok := x.postings[key][value]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// FilterByTags returns the ordinals carrying any of values under any facet key.
// Selections from different keys are not intersected here.
func (x *Index) FilterByTags(values []string) *roaring.Bitmap {
	var bms []*roaring.Bitmap
	for _, v := range values {
		for _, k := range document.FacetKeys {
			if bm, ok := x.postings[k][v]; ok {
				bms = append(bms, bm)
			}
		}
	}
	return union(bms)
}

// union never aliases a posting list.
func union(bms []*roaring.Bitmap) *roaring.Bitmap {
	switch len(bms) {
	case 0:
		return roaring.New()
	case 1:
		return bms[0].Clone()
	}
	return roaring.FastOr(bms...)
}

// Filter applies a per-key selection under mode. ModeAny flattens the selection
// and delegates to FilterByTags.
func (x *Index) Filter(sel document.Facets, mode Mode) *roaring.Bitmap {
	if mode != ModeAllKeys {
		return x.FilterByTags(sel.Flatten())
	}

	var out *roaring.Bitmap
	for _, k := range document.FacetKeys {
		vals := sel.Values(k)
		if len(vals) == 0 {
			continue
		}
		var bms []*roaring.Bitmap
		for _, v := range vals {
			if bm, ok := x.postings[k][v]; ok {
				bms = append(bms, bm)
			}
		}
		if len(bms) == 0 {
			return roaring.New()
		}
		u := union(bms)
		if out == nil {
			out = u
		} else {
			out.And(u)
		}
		if out.IsEmpty() {
			return out
		}
	}
	if out == nil {
		return roaring.New()
	}
	return out
}

// Values returns the number of distinct values registered under key.
func (x *Index) Values(key document.FacetKey) int {
	return len(x.postings[key])
}
