package announcement

import (
	"context"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/announcement"
)

// Store defines the interface for announcement persistence.
type Store interface {
	// GetByID retrieves an announcement by ID.
	// PRE: id is non-empty
	// POST: Returns the announcement or an error if not found
	GetByID(ctx context.Context, id string) (domain.Announcement, error)

	// Save inserts or updates an announcement.
	// PRE: announcement has been validated
	// POST: Announcement is persisted (insert or update)
	Save(ctx context.Context, a domain.Announcement) error

	// List returns announcements matching the filter.
	// PRE: filter has valid parameters
	// POST: Returns matching announcements, newest first
	List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error)

	// Delete removes an announcement by ID.
	// PRE: id is non-empty
	// POST: Announcement with given id is removed
	Delete(ctx context.Context, id string) error
}

// ListFilter defines query parameters for listing announcements.
type ListFilter struct {
	Type   string
	Status string
	Limit  int
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
