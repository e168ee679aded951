package vocabsearch

import (
	"context"
	"fmt"
	"time"
)

// SelectionService manages one persisted selection set.
type SelectionService struct {
	key string
	svc selectionUseCase
	obs *observer
}

// Values returns the selected values in insertion order.
func (s *SelectionService) Values(ctx context.Context) (values []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("selection.get", start, err) }()

	values, err = s.svc.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("selection %s: %w", s.key, err)
	}
	return values, nil
}

// Toggle adds value if absent and removes it otherwise. It reports whether
// value is selected afterwards. If the change could not be stored the result
// is still valid and err satisfies IsWarning.
func (s *SelectionService) Toggle(ctx context.Context, value string) (selected bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("selection.toggle", start, err) }()

	_, selected, err = s.svc.Toggle(ctx, s.key, value)
	if err != nil {
		return selected, fmt.Errorf("toggle %s: %w", s.key, err)
	}
	return selected, nil
}

// Reset clears the set. A returned error satisfying IsWarning means the set is
// empty in memory but the stored copy was not updated.
func (s *SelectionService) Reset(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("selection.reset", start, err) }()

	if err = s.svc.Reset(ctx, s.key); err != nil {
		return fmt.Errorf("reset %s: %w", s.key, err)
	}
	return nil
}
