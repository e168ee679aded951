// Package selection manages the persisted, user-toggled selection sets.
package selection

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	domsel "github.com/kailas-cloud/vocabsearch/internal/domain/selection"
	"github.com/kailas-cloud/vocabsearch/internal/metrics"
)

// Service keeps selection sets in memory and writes every mutated set through
// to the repository. The in-memory set is the source of truth: a failed write
// is reported as a *domain.PersistenceWarning and never rolled back.
type Service struct {
	repo   Repository
	logger *zap.Logger

	mu   sync.Mutex
	sets map[string]*domsel.Set
}

// New creates a selection service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, sets: make(map[string]*domsel.Set)}
}

// Preload reads the persisted sets of keys, e.g. at startup.
func (s *Service) Preload(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		if err := domsel.ValidateKey(k); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		if _, err := s.load(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the values of key in insertion order.
func (s *Service) Get(ctx context.Context, key string) ([]string, error) {
	if err := domsel.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return set.Values(), nil
}

// Toggle removes value from key's set if present, otherwise appends it. It returns
// the updated values and whether value is now selected. A non-nil error
// satisfying domain.IsWarning accompanies valid results.
func (s *Service) Toggle(ctx context.Context, key, value string) ([]string, bool, error) {
	if err := domsel.ValidateKey(key); err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if value == "" {
		return nil, false, fmt.Errorf("%w: value is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.load(ctx, key)
	if err != nil {
		return nil, false, err
	}
	present := set.Toggle(value)
	values := set.Values()
	return values, present, s.persist(ctx, key, values)
}

// Reset clears key's set.
func (s *Service) Reset(ctx context.Context, key string) error {
	if err := domsel.ValidateKey(key); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[key]
	if !ok {
		set = &domsel.Set{}
		s.sets[key] = set
	}
	set.Reset()
	return s.persist(ctx, key, set.Values())
}

// Keys lists every known state key, persisted or in memory, sorted.
func (s *Service) Keys(ctx context.Context) ([]string, error) {
	persisted, err := s.repo.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	keys := slices.Clone(persisted)
	for k := range s.sets {
		if !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// load returns the cached set for key, reading it from the repository on first use.
// Caller must hold s.mu.
func (s *Service) load(ctx context.Context, key string) (*domsel.Set, error) {
	if set, ok := s.sets[key]; ok {
		return set, nil
	}
	values, err := s.repo.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load selection %s: %w", key, err)
	}
	set := domsel.FromValues(values)
	s.sets[key] = &set
	return &set, nil
}

func (s *Service) persist(ctx context.Context, key string, values []string) error {
	if err := s.repo.Save(ctx, key, values); err != nil {
		metrics.SelectionPersistErrorsTotal.Inc()
		s.logger.Warn("Selection not persisted, keeping in-memory state",
			zap.String("key", key),
			zap.Int("values", len(values)),
			zap.Error(err),
		)
		return domain.NewPersistenceWarning(key, err)
	}
	return nil
}
