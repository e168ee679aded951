// Package selection holds user-toggled, ordered sets of document IDs.
package selection

import (
	"fmt"
	"regexp"
	"slices"
)

var keyRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxKeyLength is the maximum state key length.
const MaxKeyLength = 64

// ValidateKey checks a state key such as "favorites".
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("selection key is required")
	}
	if len(key) > MaxKeyLength {
		return fmt.Errorf("selection key too long (max %d)", MaxKeyLength)
	}
	if !keyRegex.MatchString(key) {
		return fmt.Errorf("selection key must be alphanumeric with dots, underscores and hyphens")
	}
	return nil
}

// Set is an insertion-ordered set of values without duplicates.
// The zero value is an empty set.
type Set struct {
	values []string
}

// FromValues builds a Set from persisted values, dropping empty strings and repeats.
func FromValues(values []string) Set {
	var s Set
	for _, v := range values {
		if v != "" && !s.Contains(v) {
			s.values = append(s.values, v)
		}
	}
	return s
}

// Toggle removes value if present, otherwise appends it.
// It reports whether value is present after the call.
func (s *Set) Toggle(value string) bool {
	if i := slices.Index(s.values, value); i >= 0 {
		s.values = slices.Delete(s.values, i, i+1)
		return false
	}
	s.values = append(s.values, value)
	return true
}

// Reset empties the set.
func (s *Set) Reset() { s.values = nil }

// Contains reports whether value is in the set.
func (s *Set) Contains(value string) bool {
	return slices.Contains(s.values, value)
}

// Len returns the number of values.
func (s *Set) Len() int { return len(s.values) }

// Values returns a copy of the values in insertion order. Never nil.
func (s *Set) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
