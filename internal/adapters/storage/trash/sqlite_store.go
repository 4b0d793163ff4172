package trash

import (
	"context"
	"database/sql"
	"time"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/trash"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the trash Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new deleted-record store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const trashColumns = `id, original_table, record_id, record_data, deleted_by, deleted_by_email, deleted_at`

// Save persists a trash entry.
// PRE: entry is valid
// POST: Entry is persisted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deleted_records (id, original_table, record_id, record_data, deleted_by, deleted_by_email, deleted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OriginalTable, e.RecordID, e.RecordData,
		e.DeletedBy, e.DeletedByEmail, e.DeletedAt.Format(dateLayout))
	return err
}

// GetByID retrieves a trash entry by ID.
// PRE: id is non-empty
// POST: Returns the entry or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+trashColumns+` FROM deleted_records WHERE id = ?`, id)
	return scanEntry(row)
}

// FindByRecord retrieves the trash entry holding a given record.
// PRE: table and recordID are non-empty
// POST: Returns the most recent matching entry or an error if none
func (s *SQLiteStore) FindByRecord(ctx context.Context, table, recordID string) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+trashColumns+` FROM deleted_records
		 WHERE original_table = ? AND record_id = ?
		 ORDER BY deleted_at DESC LIMIT 1`,
		table, recordID)
	return scanEntry(row)
}

// List returns trash entries ordered by deletion time, newest first.
// POST: Returns all entries, most recently deleted first
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trashColumns+` FROM deleted_records ORDER BY deleted_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Delete removes a trash entry by ID.
// PRE: id is non-empty
// POST: Entry with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM deleted_records WHERE id = ?`, id)
	return err
}

// scanEntry scans a single row into an Entry.
func scanEntry(row *sql.Row) (domain.Entry, error) {
	var e domain.Entry
	var deletedAt string
	err := row.Scan(&e.ID, &e.OriginalTable, &e.RecordID, &e.RecordData,
		&e.DeletedBy, &e.DeletedByEmail, &deletedAt)
	if err != nil {
		return domain.Entry{}, err
	}
	e.DeletedAt, _ = time.Parse(dateLayout, deletedAt)
	return e, nil
}

// scanEntries scans multiple rows into a slice of Entries.
func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var deletedAt string
		err := rows.Scan(&e.ID, &e.OriginalTable, &e.RecordID, &e.RecordData,
			&e.DeletedBy, &e.DeletedByEmail, &deletedAt)
		if err != nil {
			return nil, err
		}
		e.DeletedAt, _ = time.Parse(dateLayout, deletedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
