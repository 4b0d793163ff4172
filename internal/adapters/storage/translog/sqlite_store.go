package translog

import (
	"context"
	"database/sql"
	"time"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/translog"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the translog Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new transaction log store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const logColumns = `id, table_name, action, record_id, old_data, new_data, performed_by, performed_by_email, timestamp`

// Append persists a log entry.
// PRE: entry is valid
// POST: Entry is persisted
func (s *SQLiteStore) Append(ctx context.Context, e domain.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_logs (id, table_name, action, record_id, old_data, new_data, performed_by, performed_by_email, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TableName, string(e.Action), e.RecordID,
		nullableString(e.OldData), nullableString(e.NewData),
		e.PerformedBy, e.PerformedByEmail, e.Timestamp.Format(dateLayout))
	return err
}

// ListRecent returns the newest entries, most recent first.
// PRE: limit > 0
// POST: Returns at most limit entries ordered by timestamp desc
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM transaction_logs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByRecord returns the history of one record, most recent first.
// PRE: table and recordID are non-empty
// POST: Returns matching entries ordered by timestamp desc
func (s *SQLiteStore) ListByRecord(ctx context.Context, table, recordID string) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM transaction_logs
		 WHERE table_name = ? AND record_id = ?
		 ORDER BY timestamp DESC`,
		table, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// scanEntries scans multiple rows into a slice of Entries.
func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var oldData, newData sql.NullString
		var timestamp string
		err := rows.Scan(&e.ID, &e.TableName, &e.Action, &e.RecordID,
			&oldData, &newData, &e.PerformedBy, &e.PerformedByEmail, &timestamp)
		if err != nil {
			return nil, err
		}
		e.OldData = oldData.String
		e.NewData = newData.String
		e.Timestamp, _ = time.Parse(dateLayout, timestamp)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
