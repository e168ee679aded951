// Package sorting orders result lists for display.
package sorting

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// Order is the sort direction.
type Order string

const (
	// Unsorted keeps the input order.
	Unsorted Order = ""
	// Asc sorts ascending.
	Asc Order = "asc"
	// Desc sorts descending.
	Desc Order = "desc"
)

// IsValid reports whether o is a known direction.
func (o Order) IsValid() bool {
	return o == Unsorted || o == Asc || o == Desc
}

// Spec is a validated sort key and direction.
type Spec struct {
	key   string
	order Order
}

// NewSpec validates and creates a Spec. An empty key means unsorted regardless of order.
// A non-empty key without order defaults to ascending.
func NewSpec(key string, order Order) (Spec, error) {
	if !order.IsValid() {
		return Spec{}, fmt.Errorf("invalid sort order %q", order)
	}
	if key == "" {
		return Spec{}, nil
	}
	if order == Unsorted {
		order = Asc
	}
	return Spec{key: key, order: order}, nil
}

// Key returns the sort key.
func (s Spec) Key() string { return s.key }

// Order returns the sort direction.
func (s Spec) Order() Order { return s.order }

// IsUnsorted reports whether the spec leaves results in input order.
func (s Spec) IsUnsorted() bool { return s.key == "" }

// value is the comparable projection of one document under a key.
type value struct {
	str   string
	num   float64
	isNum bool
	ok    bool
}

func extract(doc *document.Document, key string) value {
	if s, ok := doc.Text(key); ok {
		return value{str: s, ok: s != ""}
	}
	if fk, err := document.ParseFacetKey(key); err == nil {
		facets := doc.Facets()
		vals := facets.Values(fk)
		if len(vals) == 0 {
			return value{}
		}
		return value{str: vals[0], ok: true}
	}
	if n, ok := doc.Numerics()[key]; ok {
		return value{num: n, isNum: true, ok: true}
	}
	return value{}
}

// Sort returns a stably sorted copy of docs. Numeric values compare numerically and
// everything else by locale collation. A missing value on either side compares equal,
// so incomparable pairs keep their input order. That relation is not transitive:
// when documents without the key sit between keyed ones, the result is only
// partially ordered and keyed documents may stay out of order relative to each other.
func Sort(docs []document.Document, spec Spec, locale language.Tag) []document.Document {
	out := slices.Clone(docs)
	if spec.IsUnsorted() || len(out) < 2 {
		return out
	}

	col := collate.New(locale)
	keyed := make([]value, len(out))
	for i := range out {
		keyed[i] = extract(&out[i], spec.key)
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		c := compare(col, keyed[a], keyed[b])
		if spec.order == Desc {
			return -c
		}
		return c
	})

	sorted := make([]document.Document, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func compare(col *collate.Collator, a, b value) int {
	if !a.ok || !b.ok {
		return 0
	}
	if a.isNum && b.isNum {
		return cmp.Compare(a.num, b.num)
	}
	if a.isNum != b.isNum {
		return 0
	}
	return col.CompareString(a.str, b.str)
}
