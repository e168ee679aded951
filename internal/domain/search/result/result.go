package result

// Hit is a single field-index match before merge and deduplication.
type Hit struct {
	id    string
	field string
	score float64
}

// New creates a hit.
func New(id, field string, score float64) Hit {
	return Hit{id: id, field: field, score: score}
}

// ID returns the document identifier.
func (h *Hit) ID() string { return h.id }

// Field returns the indexed field that produced the match.
func (h *Hit) Field() string { return h.field }

// Score returns the relevance heuristic (higher is better).
func (h *Hit) Score() float64 { return h.score }

// Group holds the hits of one searched field, best first.
type Group struct {
	Field string
	Hits  []Hit
}

// Flatten concatenates groups in order and keeps the first hit per document ID.
// Field priority therefore decides which copy survives.
func Flatten(groups []Group) []Hit {
	var total int
	for _, g := range groups {
		total += len(g.Hits)
	}
	out := make([]Hit, 0, total)
	seen := make(map[string]struct{}, total)
	for _, g := range groups {
		for _, h := range g.Hits {
			if _, dup := seen[h.id]; dup {
				continue
			}
			seen[h.id] = struct{}{}
			out = append(out, h)
		}
	}
	return out
}

// IDs returns the document identifiers of hits in order.
func IDs(hits []Hit) []string {
	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].id
	}
	return ids
}
