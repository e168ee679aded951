// Package field implements the inverted full-text index, one logical index per text field.
package field

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/vocabsearch/internal/index/tokenizer"
)

// ErrEmptyTerm is returned by Search for a term without any searchable word.
var ErrEmptyTerm = fmt.Errorf("%w: empty search term", domain.ErrQuery)

// Match weights per query word. A word that equals an indexed word outranks a
// prefix match, which outranks a match inside a word.
const (
	weightExact  = 3
	weightPrefix = 2
	weightInfix  = 1
)

type postingKind uint8

const (
	kindAny postingKind = iota
	kindPrefix
	kindExact
)

// postings holds one field's token -> ordinals maps.
type postings struct {
	any    map[string]*roaring.Bitmap
	prefix map[string]*roaring.Bitmap
	exact  map[string]*roaring.Bitmap
}

func newPostings() *postings {
	return &postings{
		any:    make(map[string]*roaring.Bitmap),
		prefix: make(map[string]*roaring.Bitmap),
		exact:  make(map[string]*roaring.Bitmap),
	}
}

func (p *postings) table(k postingKind) map[string]*roaring.Bitmap {
	switch k {
	case kindPrefix:
		return p.prefix
	case kindExact:
		return p.exact
	}
	return p.any
}

type ref struct {
	field string
	kind  postingKind
	token string
}

// FieldTokens is the analysis of one field of one document.
type FieldTokens struct {
	Field    string
	Tokens   []string // every index token (substrings in full mode)
	Prefixes []string
	Words    []string
}

// Analysis is the tokenized form of a document, computed without touching the index.
type Analysis struct {
	Fields []FieldTokens
}

// Index is the field index. Reads may run concurrently once building is done;
// Insert and Remove must not interleave with anything else.
type Index struct {
	enc    tokenizer.Encoder
	fields []string
	data   map[string]*postings
	ids    map[uint32]string
	refs   map[uint32][]ref
}

// New creates an Index over fields, listed in priority order.
func New(enc tokenizer.Encoder, fields []string) (*Index, error) {
	if len(fields) == 0 {
		return nil, errors.New("at least one searchable field is required")
	}
	data := make(map[string]*postings, len(fields))
	for _, f := range fields {
		if !document.IsTextField(f) {
			return nil, fmt.Errorf("field %q is not a text field", f)
		}
		if _, dup := data[f]; dup {
			return nil, fmt.Errorf("duplicate searchable field %q", f)
		}
		data[f] = newPostings()
	}
	return &Index{
		enc:    enc,
		fields: slices.Clone(fields),
		data:   data,
		ids:    make(map[uint32]string),
		refs:   make(map[uint32][]ref),
	}, nil
}

// Fields returns the searchable fields in priority order.
func (x *Index) Fields() []string { return slices.Clone(x.fields) }

// Analyze tokenizes the configured fields of doc. It is safe for concurrent use.
func (x *Index) Analyze(doc *document.Document) Analysis {
	a := Analysis{Fields: make([]FieldTokens, 0, len(x.fields))}
	for _, f := range x.fields {
		text, _ := doc.Text(f)
		words := x.enc.Words(text)
		if len(words) == 0 {
			continue
		}
		ft := FieldTokens{Field: f, Tokens: x.enc.Tokens(text)}
		seenWord := make(map[string]struct{}, len(words))
		seenPrefix := make(map[string]struct{}, len(words)*4)
		for _, w := range words {
			if _, ok := seenWord[w]; !ok {
				seenWord[w] = struct{}{}
				ft.Words = append(ft.Words, w)
			}
			for _, p := range x.enc.Prefixes(w) {
				if _, ok := seenPrefix[p]; !ok {
					seenPrefix[p] = struct{}{}
					ft.Prefixes = append(ft.Prefixes, p)
				}
			}
		}
		a.Fields = append(a.Fields, ft)
	}
	return a
}

// Index tokenizes and inserts doc under ordinal ord.
func (x *Index) Index(ord uint32, doc *document.Document) {
	x.Insert(ord, doc.ID(), x.Analyze(doc))
}

// Insert adds a pre-computed analysis under ordinal ord. Postings previously
// held by ord are cleared first, so re-inserting an ID replaces it.
func (x *Index) Insert(ord uint32, id string, a Analysis) {
	x.Remove(ord)
	x.ids[ord] = id

	var refs []ref
	for _, ft := range a.Fields {
		p, ok := x.data[ft.Field]
		if !ok {
			continue
		}
		refs = x.add(refs, p, ft.Field, kindAny, ft.Tokens, ord)
		refs = x.add(refs, p, ft.Field, kindPrefix, ft.Prefixes, ord)
		refs = x.add(refs, p, ft.Field, kindExact, ft.Words, ord)
	}
	x.refs[ord] = refs
}

func (x *Index) add(refs []ref, p *postings, f string, k postingKind, tokens []string, ord uint32) []ref {
	table := p.table(k)
	for _, tok := range tokens {
		bm, ok := table[tok]
		if !ok {
			bm = roaring.New()
			table[tok] = bm
		}
		bm.Add(ord)
		refs = append(refs, ref{field: f, kind: k, token: tok})
	}
	return refs
}

// Remove clears every posting held by ordinal ord.
func (x *Index) Remove(ord uint32) {
	refs, ok := x.refs[ord]
	if !ok {
		return
	}
	for _, r := range refs {
		table := x.data[r.field].table(r.kind)
		if bm, ok := table[r.token]; ok {
			bm.Remove(ord)
			if bm.IsEmpty() {
				delete(table, r.token)
			}
		}
	}
	delete(x.refs, ord)
	delete(x.ids, ord)
}

// Len returns the number of indexed documents.
func (x *Index) Len() int { return len(x.ids) }

// Vocabulary returns the number of distinct index tokens of field.
func (x *Index) Vocabulary(field string) int {
	p, ok := x.data[field]
	if !ok {
		return 0
	}
	return len(p.any)
}

// SearchOptions narrows a search.
type SearchOptions struct {
	// Fields limits the searched fields; empty means all, in priority order.
	Fields []string
	// Limit caps the hits per field; zero means unlimited.
	Limit int
	// Filter, when non-nil, restricts hits to these ordinals.
	Filter *roaring.Bitmap
}

// Search returns the hits of term per searched field, best first.
// Every word of term must match somewhere in the field. Unknown tokens yield an
// empty group. A term without words is an error.
func (x *Index) Search(term string, opts SearchOptions) ([]result.Group, error) {
	words := dedupeWords(x.enc.Words(term))
	if len(words) == 0 {
		return nil, ErrEmptyTerm
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = x.fields
	}

	groups := make([]result.Group, 0, len(fields))
	for _, f := range fields {
		p, ok := x.data[f]
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not indexed", domain.ErrQuery, f)
		}
		groups = append(groups, result.Group{Field: f, Hits: x.searchField(f, p, words, opts)})
	}
	return groups, nil
}

func (x *Index) searchField(f string, p *postings, words []string, opts SearchOptions) []result.Hit {
	var candidates *roaring.Bitmap
	for _, w := range words {
		bm, ok := p.any[w]
		if !ok {
			return nil
		}
		if candidates == nil {
			candidates = bm.Clone()
		} else {
			candidates.And(bm)
		}
		if candidates.IsEmpty() {
			return nil
		}
	}
	if opts.Filter != nil {
		candidates.And(opts.Filter)
	}
	if candidates.IsEmpty() {
		return nil
	}

	type scored struct {
		ord   uint32
		score int
	}
	ords := candidates.ToArray()
	hits := make([]scored, len(ords))
	for i, ord := range ords {
		hits[i] = scored{ord: ord, score: score(p, words, ord)}
	}
	// ToArray is ascending, so a stable sort keeps insertion order on ties.
	slices.SortStableFunc(hits, func(a, b scored) int { return b.score - a.score })

	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}

	out := make([]result.Hit, len(hits))
	for i, h := range hits {
		out[i] = result.New(x.ids[h.ord], f, float64(h.score))
	}
	return out
}

func score(p *postings, words []string, ord uint32) int {
	total := 0
	for _, w := range words {
		switch {
		case contains(p.exact, w, ord):
			total += weightExact
		case contains(p.prefix, w, ord):
			total += weightPrefix
		default:
			total += weightInfix
		}
	}
	return total
}

func contains(table map[string]*roaring.Bitmap, tok string, ord uint32) bool {
	bm, ok := table[tok]
	return ok && bm.Contains(ord)
}

func dedupeWords(words []string) []string {
	out := words[:0]
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
