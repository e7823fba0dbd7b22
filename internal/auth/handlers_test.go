package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"frontdesk/pkg/config"
	"frontdesk/pkg/garage"
	"frontdesk/pkg/session"
)

func newLoginBackend(t *testing.T, username, password string) *httptest.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") != username {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(garage.UserLogin{
			ID:       1,
			Username: username,
			Password: string(hash),
		})
	}))
}

func newTestHandlers(backend *httptest.Server) Handlers {
	log := logrus.New()
	log.SetOutput(&strings.Builder{})
	cfg := config.Config{
		Session: config.SessionConfig{Secret: "test-secret", TokenTTLHours: 1},
	}
	return Handlers{
		Cfg:    cfg,
		Garage: garage.New(config.BackendConfig{UserAPIEndpoint: backend.URL + "/v1/users"}, log),
		Log:    log,
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	backend := newLoginBackend(t, "alice", "hunter2")
	defer backend.Close()

	h := newTestHandlers(backend)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"alice","password":"hunter2"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Username != "alice" {
		t.Fatalf("username = %q", resp.Username)
	}

	v, err := session.VerifyToken(resp.Token, "test-secret", time.Now())
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if v.Username != "alice" {
		t.Fatalf("verified username = %q", v.Username)
	}
	if string(v.Credential) != resp.Token {
		t.Fatal("credential is not the raw session token")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	backend := newLoginBackend(t, "alice", "hunter2")
	defer backend.Close()

	h := newTestHandlers(backend)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	backend := newLoginBackend(t, "alice", "hunter2")
	defer backend.Close()

	h := newTestHandlers(backend)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"username":"mallory","password":"hunter2"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
