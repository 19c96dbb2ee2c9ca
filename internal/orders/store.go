package orders

import "context"

// Store persists orders. Implementations exist for Postgres, MongoDB and
// an in-memory map; they are interchangeable behind this interface.
type Store interface {
	// Insert persists a new order. Returns ErrTrackerExists if the tracker
	// id is already taken.
	Insert(ctx context.Context, o *Order) error

	GetByTrackerID(ctx context.Context, trackerID string) (*Order, error)

	// List returns all orders, newest-first by placedAt.
	List(ctx context.Context) ([]Order, error)

	// ListByEmail returns one customer's orders, newest-first by placedAt.
	ListByEmail(ctx context.Context, email string) ([]Order, error)

	// Update writes the full order record if the stored version still equals
	// expectedVersion. Returns ErrVersionConflict when another writer got
	// there first, ErrNotFound when the tracker id is unknown.
	Update(ctx context.Context, o *Order, expectedVersion int64) error

	// DeleteInvalid removes records with a missing tracker id. Maintenance
	// only; never called by the live system.
	DeleteInvalid(ctx context.Context) (int64, error)
}
