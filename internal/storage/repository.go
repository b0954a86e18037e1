package storage

import (
	"context"
)

// UserRepository defines the persisted set of subscribers.
// Implementations must make Register idempotent so concurrent handlers can
// call it without extra locking.
type UserRepository interface {
	// Register stores userID if it is not stored yet. Registering an existing
	// user is a no-op and not an error.
	Register(ctx context.Context, userID int64) error

	// ListAll returns every stored user ID in no particular order.
	ListAll(ctx context.Context) ([]int64, error)

	// Count returns the number of stored users.
	Count(ctx context.Context) (int, error)

	// Close gracefully shuts down the repository connection.
	Close() error
}
