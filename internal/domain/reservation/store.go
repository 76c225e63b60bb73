package reservation

import "context"

// Store holds active reservations keyed by id with a secondary index on
// BookingKey. Implementations must keep both views consistent.
type Store interface {
	// Insert stores r only if neither its id nor its booking key is taken.
	// It returns ErrDuplicateID or ErrSlotTaken and writes nothing otherwise.
	Insert(ctx context.Context, r Reservation) error
	Get(ctx context.Context, id string) (Reservation, error)
	// Delete removes the reservation and frees its booking key.
	Delete(ctx context.Context, id string) (Reservation, error)
	// BookedTables returns the ids of tables reserved at the slot.
	BookedTables(ctx context.Context, restaurant, date, time string) (map[int]bool, error)
	// ListByPhone returns matching reservations once each, oldest first.
	ListByPhone(ctx context.Context, phone string) ([]Reservation, error)
}
