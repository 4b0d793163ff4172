package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"parish/internal/adapters/http/middleware"
	"parish/internal/application/orchestrators"
	accountDomain "parish/internal/domain/account"
	"parish/internal/domain/actor"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// renderMarkdown converts markdown to sanitized HTML.
func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return buf.String()
}

// sessionActor builds the mutation actor identity from the session.
func sessionActor(sess middleware.Session) actor.Actor {
	name := sess.Name
	if name == "" {
		name = sess.Email
	}
	return actor.Actor{Name: name, Email: sess.Email}
}

// profileName looks up the display name behind an account's profile row.
// Falls back to the account email when the profile cannot be loaded.
func profileName(ctx context.Context, role, profileID, email string) string {
	if profileID == "" {
		return email
	}
	table, first, last := "user_tbl", "user_firstname", "user_lastname"
	if role == accountDomain.RoleAdmin {
		table, first, last = "admin_tbl", "admin_firstname", "admin_lastname"
	}
	rec, err := stores.RecordStore.Get(ctx, table, profileID)
	if err != nil {
		return email
	}
	name := strings.TrimSpace(str(rec[first]) + " " + str(rec[last]))
	if name == "" {
		return email
	}
	return name
}

// str coerces a record field to its string form, empty for nil.
func str(v any) string {
	s, _ := v.(string)
	return s
}

// --- Auth handlers ---

// handleSignup handles POST /api/signup.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.SignupInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	deps := orchestrators.SignupDeps{
		AccountStore: stores.AccountStore,
		RecordStore:  stores.RecordStore,
		GenerateID:   generateID,
		Now:          timeNow,
	}
	accountID, err := orchestrators.ExecuteSignup(r.Context(), input, deps)
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailAlreadyExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"account_id": accountID})
}

// handleLogin handles POST /api/login. A successful login sets the
// session cookie for browser flows and returns a bearer token for API
// clients.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	session := middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Role:      result.Role,
		ProfileID: result.ProfileID,
		Name:      profileName(r.Context(), result.Role, result.ProfileID, result.Email),
	}

	cookieToken, err := sessions.Create(session)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, cookieToken)

	bearer, err := tokens.Issue(session)
	if err != nil && !errors.Is(err, middleware.ErrNoSecret) {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token": bearer,
		"role":  result.Role,
		"email": result.Email,
		"name":  session.Name,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me, returning the authenticated identity.
func handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": sess.AccountID,
		"email":      sess.Email,
		"role":       sess.Role,
		"name":       sess.Name,
		"profile_id": sess.ProfileID,
	})
}
