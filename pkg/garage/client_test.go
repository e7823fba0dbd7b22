package garage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"frontdesk/internal/repair"
	"frontdesk/pkg/config"
	"frontdesk/pkg/session"
)

func mustDate(t *testing.T, s string) repair.Date {
	t.Helper()
	d, err := repair.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestDoJSONSendsBearerCredential(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[{"makeName":"Ford"},{"makeName":"Fiat"}]`))
	}))
	defer srv.Close()

	c := New(config.BackendConfig{CarAPIEndpoint: srv.URL + "/v1/cars"}, nil)
	makes, err := c.Makes(context.Background(), session.Credential("token-abc"))
	if err != nil {
		t.Fatalf("Makes: %v", err)
	}
	if gotAuth != "Bearer token-abc" {
		t.Fatalf("Authorization = %q, want bearer credential", gotAuth)
	}
	if len(makes) != 2 || makes[0] != "Ford" || makes[1] != "Fiat" {
		t.Fatalf("unexpected makes: %v", makes)
	}
}

func TestDoJSONOmitsAuthWithoutCredential(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":1,"username":"alice","password":"$2a$10$hash"}`))
	}))
	defer srv.Close()

	c := New(config.BackendConfig{UserAPIEndpoint: srv.URL + "/v1/users"}, nil)
	u, err := c.UserForLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UserForLogin: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("login request carried Authorization %q, want none", gotAuth)
	}
	if u.Username != "alice" {
		t.Fatalf("username = %q", u.Username)
	}
}

func TestDoJSONSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such garage"}`))
	}))
	defer srv.Close()

	c := New(config.BackendConfig{AvailableRepairAPIEndpoint: srv.URL + "/v1/available"}, nil)
	_, err := c.AvailableRepairs(context.Background(), "tok", 42)
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestAvailableStartTimesQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"date":            r.URL.Query().Get("date"),
			"repair-duration": r.URL.Query().Get("repair-duration"),
			"garage-id":       r.URL.Query().Get("garage-id"),
		}
		w.Write([]byte(`["08:00:00","10:30:00"]`))
	}))
	defer srv.Close()

	c := New(config.BackendConfig{BookingAPIEndpoint: srv.URL + "/v1/bookings"}, nil)
	times, err := c.AvailableStartTimes(context.Background(), "tok", mustDate(t, "2026-09-14"), 90, 7)
	if err != nil {
		t.Fatalf("AvailableStartTimes: %v", err)
	}
	if gotQuery["date"] != "2026-09-14" || gotQuery["repair-duration"] != "90" || gotQuery["garage-id"] != "7" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if len(times) != 2 || times[0].Hour != 8 || times[1].Minute != 30 {
		t.Fatalf("unexpected times: %v", times)
	}
}
