package selection

import "context"

// Repository persists whole selection sets per state key.
type Repository interface {
	Load(ctx context.Context, stateKey string) ([]string, error)
	Save(ctx context.Context, stateKey string, values []string) error
	Keys(ctx context.Context) ([]string, error)
}
