package record

import (
	"context"
	"errors"
)

// Store is the generic row-level access used by the admin table
// management, archive, and restore flows. Records are field maps keyed
// by column name; every table carries a TEXT id primary key.
type Store interface {
	// Get retrieves a record's full content by table and id.
	// PRE: table is managed, id is non-empty
	// POST: Returns the record or ErrNotFound
	Get(ctx context.Context, table, id string) (map[string]any, error)

	// List returns all records of a table.
	// PRE: table is managed
	// POST: Returns records in unspecified order
	List(ctx context.Context, table string) ([]map[string]any, error)

	// Insert writes a new record. The record must carry its id.
	// PRE: table is managed, record["id"] is set
	// POST: Record is persisted, its id is returned
	Insert(ctx context.Context, table string, rec map[string]any) (string, error)

	// Update overwrites the given fields of an existing record.
	// PRE: table is managed, id is non-empty, fields is non-empty
	// POST: Matching record is updated, ErrNotFound if absent
	Update(ctx context.Context, table, id string, fields map[string]any) error

	// Delete removes a record.
	// PRE: table is managed, id is non-empty
	// POST: Record is gone, ErrNotFound if it was absent
	Delete(ctx context.Context, table, id string) error
}

// Store errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrTableNotManaged = errors.New("table is not managed by the record store")
	ErrMissingID       = errors.New("record must carry an id")
	ErrBadColumn       = errors.New("invalid column name")
)
