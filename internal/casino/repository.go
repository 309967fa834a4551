// internal/casino/repository.go
package casino

import "context"

// Repository persists the table state between process restarts. The service
// owns all mutation; the repository only stores and retrieves whole states.
type Repository interface {
	// Load returns the persisted table state, or nil when none exists yet.
	Load(ctx context.Context) (*TableState, error)

	// Save stores the given state, replacing any previous one.
	Save(ctx context.Context, state *TableState) error
}
