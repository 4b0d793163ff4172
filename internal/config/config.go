package config

import (
	"github.com/kelseyhightower/envconfig"
)

// App holds all runtime configuration, read from PARISH_* environment
// variables.
type App struct {
	// Server
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DBPath string `envconfig:"DB_PATH" default:"parish.db"`

	// CSRF protection key, 64 hex characters
	CSRFKey string `envconfig:"CSRF_KEY"`

	// CORS allowed origins for the JSON API, comma-separated
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:8080,http://127.0.0.1:8080"`

	// JWT for the API surface
	JWTSecret    string `envconfig:"JWT_SECRET"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"120"`

	// Admin seeding
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@parish.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	// Email (Resend). Empty API key selects the noop sender.
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"Parish Office <noreply@parish.local>"`

	// Parish assistant chat. Empty API key selects the noop client.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// Conflict policy
	BookingWindowMin int `envconfig:"BOOKING_WINDOW_MIN" default:"60"`

	// Audit behavior. Strict propagates restore log failures.
	StrictAuditLogging bool `envconfig:"STRICT_AUDIT_LOGGING" default:"true"`
}

// Load reads configuration from the environment.
func Load() (App, error) {
	var c App
	err := envconfig.Process("PARISH", &c)
	return c, err
}
