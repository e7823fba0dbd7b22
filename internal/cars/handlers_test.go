package cars

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"frontdesk/internal/api"
	"frontdesk/internal/state"
	"frontdesk/pkg/config"
	"frontdesk/pkg/garage"
	"frontdesk/pkg/session"
)

func newTestHandlers(t *testing.T, backend *httptest.Server) Handlers {
	t.Helper()
	log := logrus.New()
	log.SetOutput(&strings.Builder{})
	return Handlers{
		Garage: garage.New(config.BackendConfig{
			CarAPIEndpoint:       backend.URL + "/v1/cars",
			CarRepairAPIEndpoint: backend.URL + "/v1/repairs",
		}, log),
		States: state.NewStore(func(string) *state.Entry { return &state.Entry{} }),
		Log:    log,
	}
}

func withURLParam(r *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withSession(r *http.Request) *http.Request {
	return r.WithContext(api.WithSession(r.Context(), &session.Verified{
		Username:   "alice",
		Credential: "tok",
	}))
}

func TestDeleteRejectsCarWithConnectedServices(t *testing.T) {
	deleted := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/repairs":
			w.Write([]byte(`[{"id":1,"carDto":{"id":5,"make":"Ford","model":"Focus"},"name":"Oil change","cost":10.5,"repairTimeInMinutes":30,"status":"AWAITING"}]`))
		case r.Method == http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	h := newTestHandlers(t, backend)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/v1/cars/5", nil))
	req = withURLParam(req, "id", "5")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if deleted {
		t.Fatal("backend delete was called despite connected services")
	}
	if !strings.Contains(rec.Body.String(), "Cannot delete car, there are connected services") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestDeleteRemovesUnconnectedCar(t *testing.T) {
	deleted := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/repairs":
			w.Write([]byte(`[]`))
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/cars/7":
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	h := newTestHandlers(t, backend)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/v1/cars/7", nil))
	req = withURLParam(req, "id", "7")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204, body %s", rec.Code, rec.Body.String())
	}
	if !deleted {
		t.Fatal("backend delete was not called")
	}
}

func TestCreateValidatesCarFields(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("backend must not be called for invalid cars")
	}))
	defer backend.Close()

	h := newTestHandlers(t, backend)

	for _, body := range []string{
		`{"make":"","model":"Focus","year":2020,"type":"SEDAN","engine":"PETROL"}`,
		`{"make":"Ford","model":"Focus","year":1800,"type":"SEDAN","engine":"PETROL"}`,
		`{"make":"Ford","model":"Focus","year":2020,"type":"SPACESHIP","engine":"PETROL"}`,
		`{"make":"Ford","model":"Focus","year":2020,"type":"SEDAN","engine":"STEAM"}`,
	} {
		req := withSession(httptest.NewRequest(http.MethodPost, "/v1/cars", strings.NewReader(body)))
		rec := httptest.NewRecorder()
		h.Create(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}
