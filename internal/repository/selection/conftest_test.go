package selection

import (
	"context"
	"strings"

	"github.com/kailas-cloud/vocabsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStore) Scan(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
