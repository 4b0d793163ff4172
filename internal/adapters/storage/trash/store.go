package trash

import (
	"context"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/trash"
)

// Store defines the interface for deleted-record persistence.
type Store interface {
	// Save persists a trash entry.
	// PRE: entry is valid
	// POST: Entry is persisted
	Save(ctx context.Context, e domain.Entry) error

	// GetByID retrieves a trash entry by ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error if not found
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// FindByRecord retrieves the trash entry holding a given record.
	// PRE: table and recordID are non-empty
	// POST: Returns the most recent matching entry or an error if none
	FindByRecord(ctx context.Context, table, recordID string) (domain.Entry, error)

	// List returns trash entries ordered by deletion time, newest first.
	// POST: Returns all entries, most recently deleted first
	List(ctx context.Context) ([]domain.Entry, error)

	// Delete removes a trash entry by ID.
	// PRE: id is non-empty
	// POST: Entry with given id is removed
	Delete(ctx context.Context, id string) error
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
