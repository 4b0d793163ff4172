package translog

import (
	"context"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/translog"
)

// Store defines the interface for transaction log persistence.
// Entries are append-only; there is no update or delete.
type Store interface {
	// Append persists a log entry.
	// PRE: entry is valid
	// POST: Entry is persisted
	Append(ctx context.Context, e domain.Entry) error

	// ListRecent returns the newest entries, most recent first.
	// PRE: limit > 0
	// POST: Returns at most limit entries ordered by timestamp desc
	ListRecent(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListByRecord returns the history of one record, most recent first.
	// PRE: table and recordID are non-empty
	// POST: Returns matching entries ordered by timestamp desc
	ListByRecord(ctx context.Context, table, recordID string) ([]domain.Entry, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLDB defines the database interface needed by the store.
type SQLDB interface {
	storage.SQLDB
}
