package announcement

import (
	"context"
	"database/sql"
	"time"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/announcement"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the announcement Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new announcement store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const announcementColumns = `id, type, status, title, content, event_date, created_by, created_at, published_at`

// GetByID retrieves an announcement by ID.
// PRE: id is non-empty
// POST: Returns the announcement or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcement WHERE id = ?`, id)
	return scanAnnouncement(row.Scan)
}

// Save inserts or updates an announcement.
// PRE: announcement has been validated
// POST: Announcement is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcement (id, type, status, title, content, event_date, created_by, created_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   type=excluded.type, status=excluded.status, title=excluded.title, content=excluded.content,
		   event_date=excluded.event_date, created_by=excluded.created_by,
		   created_at=excluded.created_at, published_at=excluded.published_at`,
		a.ID, a.Type, a.Status, a.Title, a.Content,
		nullableString(a.EventDate), nullableString(a.CreatedBy),
		a.CreatedAt.Format(dateLayout), nullableTime(a.PublishedAt))
	return err
}

// List returns announcements matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching announcements, newest first
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcement WHERE 1=1`
	args := []any{}

	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// Delete removes an announcement by ID.
// PRE: id is non-empty
// POST: Announcement with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM announcement WHERE id = ?`, id)
	return err
}

// scanAnnouncement extracts an Announcement from a row scanner function.
func scanAnnouncement(scan func(dest ...any) error) (domain.Announcement, error) {
	var a domain.Announcement
	var eventDate, createdBy, publishedAt sql.NullString
	var createdAt string
	err := scan(&a.ID, &a.Type, &a.Status, &a.Title, &a.Content,
		&eventDate, &createdBy, &createdAt, &publishedAt)
	if err != nil {
		return domain.Announcement{}, err
	}
	a.EventDate = eventDate.String
	a.CreatedBy = createdBy.String
	a.CreatedAt, _ = time.Parse(dateLayout, createdAt)
	if publishedAt.Valid && publishedAt.String != "" {
		a.PublishedAt, _ = time.Parse(dateLayout, publishedAt.String)
	}
	return a, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}
