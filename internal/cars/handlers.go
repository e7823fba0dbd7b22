package cars

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"frontdesk/internal/api"
	"frontdesk/internal/cascade"
	"frontdesk/internal/repair"
	"frontdesk/internal/state"
	"frontdesk/pkg/garage"
	"frontdesk/pkg/session"
)

// Handlers serves the car garage of the logged-in user and the attribute
// cascade backing the add/edit car form.
type Handlers struct {
	Garage *garage.Client
	States *state.Store
	Log    *logrus.Logger
}

func (h Handlers) sessionEntry(r *http.Request) (*session.Verified, *state.Entry) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		return nil, nil
	}
	return s, h.States.For(s.Username)
}

// List returns the user's cars. A backend failure degrades to an empty list
// so the page still renders.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	items, err := h.Garage.CarsFor(r.Context(), s.Credential, s.Username)
	if err != nil {
		h.Log.WithError(err).WithField("username", s.Username).Error("list cars failed")
		items = nil
	}
	if items == nil {
		items = []repair.Car{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) validateCar(c repair.Car, now time.Time) string {
	switch {
	case strings.TrimSpace(c.Make) == "":
		return "make is required"
	case strings.TrimSpace(c.Model) == "":
		return "model is required"
	case !cascade.ValidYear(c.Year, now):
		return "year is out of range"
	case !contains(cascade.CarTypes, c.Type):
		return "unknown car type"
	case !contains(cascade.EngineTypes, c.Engine):
		return "unknown engine type"
	}
	return ""
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var car repair.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	if msg := h.validateCar(car, time.Now()); msg != "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", msg)
		return
	}

	if err := h.Garage.SaveCar(r.Context(), s.Credential, car, s.Username); err != nil {
		h.Log.WithError(err).WithField("username", s.Username).Error("save car failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "failed to save car")
		return
	}

	h.Log.WithFields(logrus.Fields{"username": s.Username, "make": car.Make, "model": car.Model}).Info("car saved")
	w.WriteHeader(http.StatusCreated)
}

func (h Handlers) Update(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var car repair.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	if car.ID == 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing car id")
		return
	}
	if msg := h.validateCar(car, time.Now()); msg != "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", msg)
		return
	}

	if err := h.Garage.UpdateCar(r.Context(), s.Credential, car); err != nil {
		h.Log.WithError(err).WithField("car_id", car.ID).Error("update car failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "failed to update car")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a car, unless repairs are still connected to it.
func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	carID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || carID <= 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid car id")
		return
	}

	records, err := h.Garage.RepairRecords(r.Context(), s.Credential, s.Username)
	if err != nil {
		h.Log.WithError(err).WithField("username", s.Username).Error("repair lookup before car delete failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "failed to check connected services")
		return
	}
	for _, rec := range records {
		if rec.Car.ID == carID {
			api.WriteError(w, http.StatusConflict, "CONFLICT",
				`Cannot delete car, there are connected services. Check "My Services" page.`)
			return
		}
	}

	if err := h.Garage.DeleteCar(r.Context(), s.Credential, carID); err != nil {
		h.Log.WithError(err).WithField("car_id", carID).Error("delete car failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "failed to delete car")
		return
	}

	h.Log.WithFields(logrus.Fields{"username": s.Username, "car_id": carID}).Info("car deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Options returns the static reference lists the car form offers.
func (h Handlers) Options(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"types":   cascade.CarTypes,
		"engines": cascade.EngineTypes,
		"years":   cascade.Years(time.Now()),
	})
}

// --- car form cascade ---

func (h Handlers) FormState(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	st := e.Cascade.State()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, st)
}

func (h Handlers) FormInitCreate(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	e.Cascade.InitForCreate()
	st := e.Cascade.State()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, st)
}

type formInitEditRequest struct {
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Type  string `json:"type"`
	Model string `json:"model"`
}

func (h Handlers) FormInitEdit(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req formInitEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}

	e.Mu.Lock()
	e.Cascade.InitForEdit(r.Context(), s.Credential, cascade.Triple{
		Year: req.Year,
		Make: req.Make,
		Type: req.Type,
	}, req.Model)
	st := e.Cascade.State()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, st)
}

type formFieldRequest struct {
	Year  int    `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Type  string `json:"type,omitempty"`
	Model string `json:"model,omitempty"`
}

func (h Handlers) FormSetYear(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req formFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	if !cascade.ValidYear(req.Year, time.Now()) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "year is out of range")
		return
	}

	e.Mu.Lock()
	e.Cascade.SetYear(req.Year)
	st := e.Cascade.State()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, st)
}

func (h Handlers) FormSetMake(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req formFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}

	e.Mu.Lock()
	e.Cascade.SetMake(req.Make)
	st := e.Cascade.State()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, st)
}

func (h Handlers) FormSetType(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req formFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	if req.Type != "" && !contains(cascade.CarTypes, req.Type) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "unknown car type")
		return
	}

	e.Mu.Lock()
	e.Cascade.SetType(req.Type)
	st := e.Cascade.State()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, st)
}

// FormRefresh fetches the model list for the current year/make/type.
func (h Handlers) FormRefresh(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	err := e.Cascade.Refresh(r.Context(), s.Credential)
	st := e.Cascade.State()
	e.Mu.Unlock()

	if err != nil {
		api.WriteError(w, http.StatusUnprocessableEntity, "INCOMPLETE_SELECTION", err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, st)
}

func (h Handlers) FormSelectModel(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req formFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}

	e.Mu.Lock()
	ok := e.Cascade.SelectModel(req.Model)
	st := e.Cascade.State()
	e.Mu.Unlock()

	if !ok {
		api.WriteError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "model is not in the current list")
		return
	}
	api.WriteJSON(w, http.StatusOK, st)
}

// Makes proxies the make reference list from the backend.
func (h Handlers) Makes(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	makes, err := h.Garage.Makes(r.Context(), s.Credential)
	if err != nil {
		h.Log.WithError(err).Error("list makes failed")
		makes = nil
	}
	if makes == nil {
		makes = []string{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": makes})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
