package record

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"parish/internal/adapters/storage"
	"parish/internal/domain/tables"
)

// SQLiteStore implements the generic record Store using SQLite.
// Table names are checked against the registry allowlist and column
// names against a strict identifier pattern, since both are spliced
// into SQL text.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new generic record store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Get retrieves a record's full content by table and id.
// PRE: table is managed, id is non-empty
// POST: Returns the record or ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, table, id string) (map[string]any, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table), id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

// List returns all records of a table.
// PRE: table is managed
// POST: Returns records in unspecified order
func (s *SQLiteStore) List(ctx context.Context, table string) ([]map[string]any, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Insert writes a new record. The record must carry its id.
// PRE: table is managed, rec["id"] is a non-empty string
// POST: Record is persisted, its id is returned
func (s *SQLiteStore) Insert(ctx context.Context, table string, rec map[string]any) (string, error) {
	if err := checkTable(table); err != nil {
		return "", err
	}
	id, _ := rec["id"].(string)
	if id == "" {
		return "", ErrMissingID
	}

	cols := sortedColumns(rec)
	args := make([]any, 0, len(cols))
	marks := make([]string, 0, len(cols))
	for _, col := range cols {
		if !identPattern.MatchString(col) {
			return "", fmt.Errorf("%w: %q", ErrBadColumn, col)
		}
		args = append(args, rec[col])
		marks = append(marks, "?")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", err
	}
	return id, nil
}

// Update overwrites the given fields of an existing record.
// PRE: table is managed, id is non-empty, fields is non-empty
// POST: Matching record is updated, ErrNotFound if absent
func (s *SQLiteStore) Update(ctx context.Context, table, id string, fields map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update for %s/%s", table, id)
	}

	cols := sortedColumns(fields)
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		if col == "id" {
			continue
		}
		if !identPattern.MatchString(col) {
			return fmt.Errorf("%w: %q", ErrBadColumn, col)
		}
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a record.
// PRE: table is managed, id is non-empty
// POST: Record is gone, ErrNotFound if it was absent
func (s *SQLiteStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// checkTable rejects any table outside the registry allowlist.
func checkTable(table string) error {
	if !tables.Managed(table) {
		return fmt.Errorf("%w: %q", ErrTableNotManaged, table)
	}
	return nil
}

// sortedColumns returns the record's column names in stable order.
func sortedColumns(rec map[string]any) []string {
	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// scanRecords reads every row into a field map, converting raw byte
// columns to strings.
func scanRecords(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case []byte:
				rec[col] = string(v)
			default:
				rec[col] = v
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
