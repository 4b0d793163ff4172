package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "parish/internal/adapters/email"
	"parish/internal/adapters/gemini"
	web "parish/internal/adapters/http"
	"parish/internal/adapters/storage"
	accountStore "parish/internal/adapters/storage/account"
	announcementStore "parish/internal/adapters/storage/announcement"
	bookingStore "parish/internal/adapters/storage/booking"
	recordStore "parish/internal/adapters/storage/record"
	translogStore "parish/internal/adapters/storage/translog"
	trashStore "parish/internal/adapters/storage/trash"
	"parish/internal/application/orchestrators"
	"parish/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Wrap DB with query timing instrumentation
	timedDB := storage.NewTimedDB(db)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	recStore := recordStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:      acctStore,
		RecordStore:       recStore,
		BookingStore:      bookingStore.NewSQLiteStore(timedDB),
		TrashStore:        trashStore.NewSQLiteStore(timedDB),
		LogStore:          translogStore.NewSQLiteStore(timedDB),
		AnnouncementStore: announcementStore.NewSQLiteStore(timedDB),
	}

	// Seed the default admin account if no accounts exist yet
	if cfg.AdminPassword != "" {
		seedDeps := orchestrators.SeedAdminDeps{
			AccountStore: acctStore,
			RecordStore:  recStore,
			GenerateID:   uuid.NewString,
			Now:          time.Now,
		}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	} else {
		log.Println("PARISH_ADMIN_PASSWORD not set — skipping admin seed")
	}

	// Configure email sender
	if cfg.ResendAPIKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom), cfg.EmailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.EmailFrom)
		if cfg.Environment == "production" {
			log.Println("WARNING: PARISH_RESEND_API_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set PARISH_RESEND_API_KEY for real delivery)")
		}
	}

	// Configure the parish assistant chat client
	if cfg.GeminiAPIKey != "" {
		web.SetChatClient(gemini.NewHTTPClient(cfg.GeminiAPIKey, cfg.GeminiModel), true)
		log.Printf("Chat assistant configured (model=%s)", cfg.GeminiModel)
	} else {
		web.SetChatClient(gemini.NewNoopClient(), false)
		log.Println("Chat assistant configured (offline fallback — set PARISH_GEMINI_API_KEY for live responses)")
	}

	mux := web.NewMux("static", stores, cfg)

	log.Printf("Parish %s starting on %s (env=%s, schema=%d)", version, cfg.HTTPAddr, cfg.Environment, storage.LatestSchemaVersion())

	if err := http.ListenAndServe(cfg.HTTPAddr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
