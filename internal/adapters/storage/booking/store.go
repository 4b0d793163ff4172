package booking

import (
	"context"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/booking"
)

// Store defines the interface for booking persistence.
type Store interface {
	// GetByID retrieves a booking by ID.
	// PRE: id is non-empty
	// POST: Returns the booking or an error if not found
	GetByID(ctx context.Context, id string) (domain.Booking, error)

	// Save inserts or updates a booking.
	// PRE: booking has been validated
	// POST: Booking is persisted (insert or update)
	Save(ctx context.Context, b domain.Booking) error

	// List returns bookings matching the filter.
	// PRE: filter has valid parameters
	// POST: Returns matching bookings ordered by created_at desc
	List(ctx context.Context, filter ListFilter) ([]domain.Booking, error)

	// ListApprovedByDate returns all approved bookings on a calendar day.
	// PRE: date is YYYY-MM-DD
	// POST: Returns approved bookings for that day
	ListApprovedByDate(ctx context.Context, date string) ([]domain.Booking, error)

	// Delete removes a booking by ID.
	// PRE: id is non-empty
	// POST: Booking with given id is removed
	Delete(ctx context.Context, id string) error
}

// ListFilter defines query parameters for listing bookings.
type ListFilter struct {
	UserID    string
	Status    string
	Sacrament string
	Date      string
	Limit     int
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
