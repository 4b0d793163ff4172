package booking

import (
	"context"
	"database/sql"
	"time"

	"parish/internal/adapters/storage"
	domain "parish/internal/domain/booking"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the booking Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const bookingColumns = `id, user_id, booking_sacrament, booking_date, booking_time, booking_pax,
		booking_status, booking_transaction, price, paid,
		wedding_docu_id, baptism_docu_id, burial_docu_id, created_at`

// GetByID retrieves a booking by ID.
// PRE: id is non-empty
// POST: Returns the booking or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM booking_tbl WHERE id = ?`, id)
	return scanBooking(row)
}

// Save inserts or updates a booking.
// PRE: booking has been validated
// POST: Booking is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, b domain.Booking) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking_tbl (id, user_id, booking_sacrament, booking_date, booking_time, booking_pax,
		   booking_status, booking_transaction, price, paid,
		   wedding_docu_id, baptism_docu_id, burial_docu_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id=excluded.user_id, booking_sacrament=excluded.booking_sacrament,
		   booking_date=excluded.booking_date, booking_time=excluded.booking_time,
		   booking_pax=excluded.booking_pax, booking_status=excluded.booking_status,
		   booking_transaction=excluded.booking_transaction, price=excluded.price, paid=excluded.paid,
		   wedding_docu_id=excluded.wedding_docu_id, baptism_docu_id=excluded.baptism_docu_id,
		   burial_docu_id=excluded.burial_docu_id, created_at=excluded.created_at`,
		b.ID, b.UserID, string(b.Sacrament), b.Date, b.Time, b.Pax,
		b.Status, nullableString(b.Transaction), b.Price, boolToInt(b.Paid),
		nullableString(b.WeddingDocID), nullableString(b.BaptismDocID), nullableString(b.BurialDocID),
		b.CreatedAt.Format(dateLayout))
	return err
}

// List returns bookings matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching bookings ordered by created_at desc
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_tbl WHERE 1=1`
	args := []any{}

	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		query += ` AND booking_status = ?`
		args = append(args, filter.Status)
	}
	if filter.Sacrament != "" {
		query += ` AND booking_sacrament = ?`
		args = append(args, filter.Sacrament)
	}
	if filter.Date != "" {
		query += ` AND booking_date = ?`
		args = append(args, filter.Date)
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
	return scanBookings(rows)
}

// ListApprovedByDate returns all approved bookings on a calendar day.
// PRE: date is YYYY-MM-DD
// POST: Returns approved bookings for that day
func (s *SQLiteStore) ListApprovedByDate(ctx context.Context, date string) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM booking_tbl
		 WHERE booking_date = ? AND booking_status = ?
		 ORDER BY booking_time ASC`,
		date, domain.StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// Delete removes a booking by ID.
// PRE: id is non-empty
// POST: Booking with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM booking_tbl WHERE id = ?`, id)
	return err
}

// scannedRow holds the raw scanned values from a booking row before conversion.
type scannedRow struct {
	transaction  sql.NullString
	paid         int
	weddingDocID sql.NullString
	baptismDocID sql.NullString
	burialDocID  sql.NullString
	createdAt    string
}

// scanBooking scans a single row into a Booking.
func scanBooking(row *sql.Row) (domain.Booking, error) {
	var b domain.Booking
	var s scannedRow
	err := row.Scan(&b.ID, &b.UserID, &b.Sacrament, &b.Date, &b.Time, &b.Pax,
		&b.Status, &s.transaction, &b.Price, &s.paid,
		&s.weddingDocID, &s.baptismDocID, &s.burialDocID, &s.createdAt)
	if err != nil {
		return domain.Booking{}, err
	}
	applyScanned(&b, &s)
	return b, nil
}

// scanBookings scans multiple rows into a slice of Bookings.
func scanBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var s scannedRow
		err := rows.Scan(&b.ID, &b.UserID, &b.Sacrament, &b.Date, &b.Time, &b.Pax,
			&b.Status, &s.transaction, &b.Price, &s.paid,
			&s.weddingDocID, &s.baptismDocID, &s.burialDocID, &s.createdAt)
		if err != nil {
			return nil, err
		}
		applyScanned(&b, &s)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// applyScanned converts raw scanned values into the Booking domain fields.
func applyScanned(b *domain.Booking, s *scannedRow) {
	b.Transaction = s.transaction.String
	b.Paid = s.paid != 0
	b.WeddingDocID = s.weddingDocID.String
	b.BaptismDocID = s.baptismDocID.String
	b.BurialDocID = s.burialDocID.String
	b.CreatedAt, _ = time.Parse(dateLayout, s.createdAt)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
