// Package docstore keeps the full records behind the field and tag indexes.
package docstore

import (
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// Store maps document IDs to records in insertion order.
// Each ID owns a stable uint32 ordinal that the posting lists refer to.
// Store is not safe for concurrent mutation.
type Store struct {
	docs    []document.Document
	ordinal map[string]uint32
}

// New creates an empty Store.
func New() *Store {
	return &Store{ordinal: make(map[string]uint32)}
}

// Put stores doc. A record with an existing ID replaces the previous one in place,
// keeping its position and ordinal. It returns the ordinal and whether a record was replaced.
func (s *Store) Put(doc document.Document) (uint32, bool) {
	if ord, ok := s.ordinal[doc.ID()]; ok {
		s.docs[ord] = doc
		return ord, true
	}
	ord := uint32(len(s.docs))
	s.docs = append(s.docs, doc)
	s.ordinal[doc.ID()] = ord
	return ord, false
}

// Get returns the record for id.
func (s *Store) Get(id string) (document.Document, bool) {
	ord, ok := s.ordinal[id]
	if !ok {
		return document.Document{}, false
	}
	return s.docs[ord], true
}

// Ordinal returns the ordinal assigned to id.
func (s *Store) Ordinal(id string) (uint32, bool) {
	ord, ok := s.ordinal[id]
	return ord, ok
}

// At returns the record with ordinal ord.
func (s *Store) At(ord uint32) (document.Document, bool) {
	if int(ord) >= len(s.docs) {
		return document.Document{}, false
	}
	return s.docs[ord], true
}

// All returns every record in insertion order.
func (s *Store) All() []document.Document {
	out := make([]document.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.docs) }
