package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLDB is the database interface used by all stores.
// Both *sql.DB and *TimedDB satisfy this interface.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// migration is a single versioned schema change.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations is the ordered list of schema changes. Append only; never
// edit an applied migration.
var migrations = []migration{
	{
		version: 1,
		name:    "core tables",
		sql: `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		profile_id TEXT,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS user_tbl (
		id TEXT PRIMARY KEY,
		user_firstname TEXT NOT NULL,
		user_middle TEXT,
		user_lastname TEXT NOT NULL,
		user_gender TEXT,
		user_email TEXT NOT NULL UNIQUE,
		user_mobile TEXT,
		user_bday TEXT
	);

	CREATE TABLE IF NOT EXISTS admin_tbl (
		id TEXT PRIMARY KEY,
		admin_firstname TEXT NOT NULL,
		admin_lastname TEXT NOT NULL,
		admin_email TEXT NOT NULL UNIQUE,
		admin_mobile TEXT,
		admin_bday TEXT
	);

	CREATE TABLE IF NOT EXISTS priest_tbl (
		id TEXT PRIMARY KEY,
		priest_name TEXT NOT NULL,
		priest_diocese TEXT,
		priest_parish TEXT,
		priest_availability TEXT
	);

	CREATE TABLE IF NOT EXISTS document_tbl (
		id TEXT PRIMARY KEY,
		document_firstname TEXT NOT NULL,
		document_middle TEXT,
		document_lastname TEXT NOT NULL,
		document_gender TEXT,
		document_mobile TEXT,
		document_bday TEXT,
		document_status TEXT,
		document_baptismal TEXT,
		document_confirmation TEXT,
		document_wedding TEXT
	);

	CREATE TABLE IF NOT EXISTS donation_tbl (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		donation_amount REAL NOT NULL,
		donation_intercession TEXT,
		date_created TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS request_tbl (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_baptismcert TEXT,
		request_confirmationcert TEXT,
		document_id TEXT
	);

	CREATE TABLE IF NOT EXISTS booking_wedding_docu_tbl (
		id TEXT PRIMARY KEY,
		groom_fullname TEXT,
		bride_fullname TEXT,
		groom_1x1 TEXT,
		bride_1x1 TEXT
	);

	CREATE TABLE IF NOT EXISTS booking_baptism_docu_tbl (
		id TEXT PRIMARY KEY,
		child_fullname TEXT,
		child_bday TEXT,
		father_fullname TEXT,
		mother_fullname TEXT,
		godparents TEXT
	);

	CREATE TABLE IF NOT EXISTS booking_burial_docu_tbl (
		id TEXT PRIMARY KEY,
		deceased_fullname TEXT,
		deceased_dod TEXT,
		requester_relationship TEXT
	);

	CREATE TABLE IF NOT EXISTS booking_tbl (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		booking_sacrament TEXT NOT NULL,
		booking_date TEXT NOT NULL,
		booking_time TEXT NOT NULL,
		booking_pax INTEGER NOT NULL,
		booking_status TEXT NOT NULL,
		booking_transaction TEXT,
		price INTEGER NOT NULL DEFAULT 0,
		paid INTEGER NOT NULL DEFAULT 0,
		wedding_docu_id TEXT,
		baptism_docu_id TEXT,
		burial_docu_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deleted_records (
		id TEXT PRIMARY KEY,
		original_table TEXT NOT NULL,
		record_id TEXT NOT NULL,
		record_data TEXT NOT NULL,
		deleted_by TEXT NOT NULL,
		deleted_by_email TEXT NOT NULL,
		deleted_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transaction_logs (
		id TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		action TEXT NOT NULL,
		record_id TEXT NOT NULL,
		old_data TEXT,
		new_data TEXT,
		performed_by TEXT NOT NULL,
		performed_by_email TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	`,
	},
	{
		version: 2,
		name:    "announcements",
		sql: `
	CREATE TABLE IF NOT EXISTS announcement (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		event_date TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL,
		published_at TEXT
	);
	`,
	},
}

// MigrateDB applies all pending schema migrations in order, each inside
// its own transaction.
// PRE: db is a valid database connection
// POST: Schema is at LatestSchemaVersion
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("ensure schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version.
// PRE: schema_version table exists
// POST: Returns 0 for an empty database
func SchemaVersion(db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// LatestSchemaVersion returns the version the database will be at after
// all migrations apply.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}
