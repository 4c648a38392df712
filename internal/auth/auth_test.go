package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" {
		t.Fatalf("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("wrong password accepted")
	}
}

func TestTokenIssueVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue("user-123", "ada@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("userID = %s, want user-123", userID)
	}
}

func TestTokenVerifyRejections(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("another-secret", time.Hour)

	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Fatalf("garbage token accepted")
	}

	token, err := other.Issue("user-123", "ada@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}

	expired := NewTokenIssuer("secret", -time.Minute)
	token, err = expired.Issue("user-123", "ada@example.com")
	if err != nil {
		t.Fatalf("Issue expired: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue("user-123", "ada@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotUserID string
	handler := Middleware(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"invalid token", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusNoContent && gotUserID != "user-123" {
				t.Fatalf("context user = %q, want user-123", gotUserID)
			}
		})
	}
}
