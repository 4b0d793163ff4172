package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"parish/internal/adapters/email"
	"parish/internal/adapters/gemini"
	"parish/internal/adapters/http/middleware"
	accountStore "parish/internal/adapters/storage/account"
	announcementStore "parish/internal/adapters/storage/announcement"
	bookingStore "parish/internal/adapters/storage/booking"
	recordStore "parish/internal/adapters/storage/record"
	translogStore "parish/internal/adapters/storage/translog"
	trashStore "parish/internal/adapters/storage/trash"
	"parish/internal/config"
	"parish/internal/domain/booking"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	RecordStore       recordStore.Store
	BookingStore      bookingStore.Store
	TrashStore        trashStore.Store
	LogStore          translogStore.Store
	AnnouncementStore announcementStore.Store
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global token issuer for the JSON API (set by NewMux)
var tokens *middleware.Tokens

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string

// Global chat client for the parish assistant (set by SetChatClient)
var chatClient gemini.Client

// chatLive is true when the client talks to the real upstream service.
var chatLive bool

// appEnv is the running environment, surfaced by the health endpoint.
var appEnv = "development"

// conflictPolicy spaces approved bookings; set from config in NewMux.
var conflictPolicy = booking.DefaultConflictPolicy

// strictAuditLogging propagates restore log failures when true.
var strictAuditLogging = true

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from string) {
	emailSender = sender
	emailFromAddress = from
}

// SetChatClient sets the global chat client. live marks the client as
// backed by the real upstream service rather than the offline fallback.
func SetChatClient(client gemini.Client, live bool) {
	chatClient = client
	chatLive = live
}

// loadCSRFKey decodes the CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(keyHex, env string) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("PARISH_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if env == "production" {
		log.Fatal("PARISH_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set PARISH_CSRF_KEY for production.")
	return key
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, cfg config.App) http.Handler {
	stores = s
	sessions = middleware.NewSessionStore()
	tokens = middleware.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTExpireMin)*time.Minute)
	middleware.SecureCookies = cfg.Environment == "production"
	appEnv = cfg.Environment
	strictAuditLogging = cfg.StrictAuditLogging
	if cfg.BookingWindowMin > 0 {
		conflictPolicy = booking.ConflictPolicy{Window: time.Duration(cfg.BookingWindowMin) * time.Minute}
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey(cfg.CSRFKey, cfg.Environment)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> CORS -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CORS(cfg.CORSOrigins),
		middleware.CSRF(csrfKey, []string{"localhost:8080", "127.0.0.1:8080"}),
		middleware.Auth(sessions, tokens),
		middleware.RateLimit(limiter),
		middleware.Timing(),
	)
}

// registerRoutes attaches every handler to the mux.
func registerRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("/api/signup", handleSignup)
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/me", handleMe)

	// Member surface
	mux.HandleFunc("/api/bookings", handleBookings)
	mux.HandleFunc("/api/bookings/check", handleBookingCheck)
	mux.HandleFunc("/api/announcements", handleAnnouncements)
	mux.HandleFunc("/api/donations", handleDonations)
	mux.HandleFunc("/api/requests", handleCertificateRequests)

	// Parish assistant
	mux.HandleFunc("/api/gemini", handleChat)
	mux.HandleFunc("/api/health", handleHealth)

	// Admin back office
	mux.HandleFunc("/api/admin/dashboard", handleAdminDashboard)
	mux.HandleFunc("/api/admin/records/", handleAdminRecords)
	mux.HandleFunc("/api/admin/bookings/status", handleAdminBookingStatus)
	mux.HandleFunc("/api/admin/trash", handleAdminTrash)
	mux.HandleFunc("/api/admin/trash/restore", handleAdminTrashRestore)
	mux.HandleFunc("/api/admin/trash/purge", handleAdminTrashPurge)
	mux.HandleFunc("/api/admin/logs", handleAdminLogs)
	mux.HandleFunc("/api/admin/export/", handleAdminExport)
	mux.HandleFunc("/api/admin/announcements", handleAdminAnnouncements)
	mux.HandleFunc("/api/admin/announcements/publish", handleAdminAnnouncementPublish)
	mux.HandleFunc("/api/admin/announcements/delete", handleAdminAnnouncementDelete)
}
