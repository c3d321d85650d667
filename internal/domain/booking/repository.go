package booking

import "context"

// Repository defines the persistence contract for booking records. Both the
// document-store and relational implementations present the same shape; which
// one backs a running service is a configuration concern.
type Repository interface {
	// Insert persists a new booking under its pre-assigned id.
	Insert(ctx context.Context, b *Booking) error

	// ListAll retrieves every booking ordered by creation time descending.
	ListAll(ctx context.Context) ([]*Booking, error)

	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindByIDAndPhone retrieves a booking only when both the id and the
	// phone number, exactly as submitted, match. Used by the status-check
	// path.
	FindByIDAndPhone(ctx context.Context, id int64, phone string) (*Booking, error)

	// UpdateStatus sets the status of the booking with the given id and
	// refreshes its updated_at timestamp. The returned bool reports whether
	// a record was found and changed.
	UpdateStatus(ctx context.Context, id int64, status Status) (bool, error)

	// MaxID returns the highest stored booking id, or 0 when the store is
	// empty.
	MaxID(ctx context.Context) (int64, error)

	// Ping probes the underlying store for the health endpoint.
	Ping(ctx context.Context) error
}
