package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens issues and verifies JWT bearer tokens for the JSON API.
// Browser flows use the session cookie; API clients present
// "Authorization: Bearer <token>" instead.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer. A zero ttl defaults to two hours.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// apiClaims carries the session identity inside the token.
type apiClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
	jwt.RegisteredClaims
}

var ErrNoSecret = errors.New("jwt secret is not configured")

// Issue signs a token for the given session identity.
// PRE: session carries AccountID, Email, and Role
// POST: Returns a signed token valid for the configured ttl
func (t *Tokens) Issue(session Session) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := apiClaims{
		Email:     session.Email,
		Role:      session.Role,
		Name:      session.Name,
		ProfileID: session.ProfileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses and validates a token, returning the session identity.
// PRE: token is a compact JWS string
// POST: Returns the embedded session if the signature and expiry hold
func (t *Tokens) Verify(token string) (Session, bool) {
	if len(t.secret) == 0 {
		return Session{}, false
	}
	var claims apiClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, false
	}
	session := Session{
		AccountID: claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		Name:      claims.Name,
		ProfileID: claims.ProfileID,
	}
	// iat is optional per RFC 7519; a signed token without it is still valid.
	if claims.IssuedAt != nil {
		session.CreatedAt = claims.IssuedAt.Time
	}
	return session, true
}

// FromRequest extracts and verifies a bearer token from the
// Authorization header.
func (t *Tokens) FromRequest(r *http.Request) (Session, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return Session{}, false
	}
	return t.Verify(strings.TrimPrefix(header, prefix))
}
