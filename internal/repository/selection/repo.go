// Package selection persists selection state as one JSON array per state key.
package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/vocabsearch/internal/db"
)

// DefaultNamespace prefixes every persisted key.
const DefaultNamespace = "vocabsearch"

// store is the consumer interface for selection persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, prefix string) ([]string, error)
}

// Repo stores selection sets under "<namespace>:<stateKey>".
type Repo struct {
	store     store
	namespace string
}

// New creates a selection repository.
func New(s store, namespace string) *Repo {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Repo{store: s, namespace: namespace}
}

func (r *Repo) key(stateKey string) string {
	return r.namespace + ":" + stateKey
}

// Load returns the persisted values of stateKey verbatim. A missing entry is an empty set.
func (r *Repo) Load(ctx context.Context, stateKey string) ([]string, error) {
	data, err := r.store.Get(ctx, r.key(stateKey))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("get selection %s: %w", stateKey, err)
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode selection %s: %w", stateKey, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

// Save overwrites the persisted set of stateKey with values. An empty set is
// stored as an empty array.
func (r *Repo) Save(ctx context.Context, stateKey string, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode selection %s: %w", stateKey, err)
	}
	if err := r.store.Set(ctx, r.key(stateKey), data); err != nil {
		return fmt.Errorf("set selection %s: %w", stateKey, err)
	}
	return nil
}

// Keys lists the persisted state keys of the namespace in sorted order.
func (r *Repo) Keys(ctx context.Context) ([]string, error) {
	prefix := r.namespace + ":"
	raw, err := r.store.Scan(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan selections: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if sk, ok := strings.CutPrefix(k, prefix); ok && sk != "" {
			keys = append(keys, sk)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
