package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokens_IssueVerifyRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	token, err := tokens.Issue(Session{
		AccountID: "acct-1",
		Email:     "juan@example.com",
		Role:      "member",
		Name:      "Juan Dela Cruz",
		ProfileID: "prof-1",
	})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	sess, ok := tokens.Verify(token)
	if !ok {
		t.Fatal("Verify() rejected a freshly issued token")
	}
	if sess.AccountID != "acct-1" || sess.Email != "juan@example.com" ||
		sess.Role != "member" || sess.ProfileID != "prof-1" {
		t.Errorf("Verify() session = %+v", sess)
	}
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokens("secret-a", time.Hour).Issue(Session{AccountID: "a", Email: "a@x", Role: "member"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, ok := NewTokens("secret-b", time.Hour).Verify(token); ok {
		t.Error("Verify() accepted a token signed with a different secret")
	}
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := NewTokens("test-secret", -time.Minute)
	token, err := tokens.Issue(Session{AccountID: "a", Email: "a@x", Role: "member"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, ok := tokens.Verify(token); ok {
		t.Error("Verify() accepted an expired token")
	}
}

func TestTokens_VerifyWithoutIssuedAt(t *testing.T) {
	// Hand-signed token that omits iat, which RFC 7519 allows.
	// Verify must not dereference the missing claim.
	claims := apiClaims{
		Email: "a@x",
		Role:  "member",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	sess, ok := NewTokens("test-secret", time.Hour).Verify(token)
	if !ok {
		t.Fatal("Verify() rejected a valid token without iat")
	}
	if sess.AccountID != "acct-1" || !sess.CreatedAt.IsZero() {
		t.Errorf("Verify() session = %+v", sess)
	}
}

func TestTokens_IssueWithoutSecret(t *testing.T) {
	if _, err := NewTokens("", time.Hour).Issue(Session{AccountID: "a"}); err == nil {
		t.Error("Issue() with empty secret succeeded, want error")
	}
}

func TestTokens_FromRequest(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	token, _ := tokens.Issue(Session{AccountID: "acct-1", Email: "a@x", Role: "admin"})

	req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	sess, ok := tokens.FromRequest(req)
	if !ok || sess.Role != "admin" {
		t.Errorf("FromRequest() = %+v, %v", sess, ok)
	}

	plain := httptest.NewRequest("GET", "/", nil)
	if _, ok := tokens.FromRequest(plain); ok {
		t.Error("FromRequest() without header succeeded")
	}
}
