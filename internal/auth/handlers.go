package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"frontdesk/internal/api"
	"frontdesk/pkg/config"
	"frontdesk/pkg/garage"
	"frontdesk/pkg/session"
)

type Handlers struct {
	Cfg    config.Config
	Garage *garage.Client
	Log    *logrus.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login checks the password against the hash stored by the garage backend and
// issues a session token on success.
func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "username and password are required")
		return
	}

	u, err := h.Garage.UserForLogin(r.Context(), req.Username)
	if err != nil {
		h.Log.WithError(err).WithField("username", req.Username).Error("login lookup failed")
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid username or password")
		return
	}

	ttl := time.Duration(h.Cfg.Session.TokenTTLHours) * time.Hour
	now := time.Now()
	token, err := session.IssueToken(u.Username, h.Cfg.Session.Secret, now, ttl)
	if err != nil {
		h.Log.WithError(err).Error("issue session token failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to start session")
		return
	}

	h.Log.WithField("username", u.Username).Info("user logged in")
	api.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Username:  u.Username,
		ExpiresAt: now.Add(ttl),
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// Register creates a backend account. The password is hashed here so the
// backend only ever stores bcrypt hashes.
func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "username and password are required")
		return
	}

	taken, err := h.Garage.IsRegistered(r.Context(), req.Username)
	if err != nil {
		h.Log.WithError(err).Error("registration check failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "registration is temporarily unavailable")
		return
	}
	if taken {
		api.WriteError(w, http.StatusConflict, "CONFLICT", "username is already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to hash password")
		return
	}

	if err := h.Garage.Register(r.Context(), garage.RegisterUser{
		Username: req.Username,
		Password: string(hash),
		Email:    strings.TrimSpace(req.Email),
	}); err != nil {
		h.Log.WithError(err).WithField("username", req.Username).Error("registration failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "registration failed")
		return
	}

	h.Log.WithField("username", req.Username).Info("user registered")
	w.WriteHeader(http.StatusCreated)
}
