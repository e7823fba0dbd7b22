package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"frontdesk/pkg/session"
)

func TestSessionAuth(t *testing.T) {
	const secret = "test-secret"

	token, err := session.IssueToken("alice", secret, time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotUsername string
	handler := SessionAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			t.Fatal("no session in context")
		}
		gotUsername = s.Username
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/services", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUsername != "alice" {
		t.Fatalf("username = %q, want alice", gotUsername)
	}
}

func TestSessionAuthRejectsMissingOrBadToken(t *testing.T) {
	handler := SessionAuth("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, authz := range []string{"", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/services", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("authz %q: status = %d, want 401", authz, rec.Code)
		}
	}
}
