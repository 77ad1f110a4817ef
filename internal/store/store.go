package store

import (
	"context"
	"errors"

	"ghost.confess/internal/models"
)

// ErrNotFound covers absent, expired, and deleted confessions alike.
// Expiry must be observably identical to deletion, so the store never
// reveals which of the three happened.
var ErrNotFound = errors.New("confession not found")

type Store interface {
	// Insert issues a fresh id for the confession, stores it, and returns
	// the id. Ids never collide with a live or previously issued id.
	Insert(ctx context.Context, c *models.Confession) (string, error)
	// Get returns the confession while it is live. Callers receive a
	// private copy; mutating it does not affect the stored record.
	Get(ctx context.Context, id string) (*models.Confession, error)
	// IncrementReads bumps the read counter and returns the new value.
	IncrementReads(ctx context.Context, id string) (int, error)
	// Delete removes the confession if present and reports whether a
	// record was actually removed. Deleting twice is not an error.
	Delete(ctx context.Context, id string) (bool, error)
	Close() error
}
