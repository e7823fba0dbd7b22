package services

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"frontdesk/internal/api"
	"frontdesk/internal/audit"
	"frontdesk/internal/history"
	"frontdesk/internal/lifecycle"
	"frontdesk/internal/repair"
	"frontdesk/internal/state"
	"frontdesk/pkg/db"
	"frontdesk/pkg/garage"
	"frontdesk/pkg/session"
)

// Handlers serves the user's booked repairs: the classified overview, the
// selection being edited, and the cancel/reschedule mutations.
type Handlers struct {
	DB      *pgxpool.Pool
	Garage  *garage.Client
	States  *state.Store
	Audit   *audit.Repository
	History *history.Repository
	Log     *logrus.Logger
}

func (h Handlers) sessionEntry(r *http.Request) (*session.Verified, *state.Entry) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		return nil, nil
	}
	return s, h.States.For(s.Username)
}

// List re-fetches the user's repairs and returns them classified into
// upcoming, in-progress and completed.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	e.Flow.Activate(r.Context(), s.Credential)
	buckets := e.Flow.Buckets()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, buckets)
}

type selectRequest struct {
	ID int64 `json:"id"`
}

func (h Handlers) Select(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}

	e.Mu.Lock()
	ok := e.Flow.Select(req.ID)
	sel := e.Flow.Selection()
	e.Mu.Unlock()

	if !ok {
		api.WriteError(w, http.StatusConflict, "NOT_UPCOMING", "only upcoming services can be edited")
		return
	}
	api.WriteJSON(w, http.StatusOK, selectionView(sel))
}

func (h Handlers) Deselect(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	e.Flow.Deselect()
	e.Mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

type selectionBody struct {
	Record    *repair.Record `json:"record,omitempty"`
	DraftDate *repair.Date   `json:"draftDate,omitempty"`
	DraftTime *repair.Clock  `json:"draftTime,omitempty"`
}

func selectionView(sel lifecycle.Selection) selectionBody {
	return selectionBody{Record: sel.Record, DraftDate: sel.DraftDate, DraftTime: sel.DraftTime}
}

func (h Handlers) Selection(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	sel := e.Flow.Selection()
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, selectionView(sel))
}

type pickDateRequest struct {
	Date string `json:"date"`
}

func (h Handlers) PickDate(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req pickDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	d, err := repair.ParseDate(req.Date)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid date, expected YYYY-MM-DD")
		return
	}

	e.Mu.Lock()
	res := e.Flow.PickDate(r.Context(), s.Credential, d)
	e.Mu.Unlock()

	api.WriteJSON(w, http.StatusOK, res)
}

type pickTimeRequest struct {
	Time string `json:"time"`
}

func (h Handlers) PickTime(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req pickTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	c, err := repair.ParseClock(req.Time)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid time, expected HH:MM or HH:MM:SS")
		return
	}

	e.Mu.Lock()
	ok := e.Flow.PickTime(c)
	sel := e.Flow.Selection()
	e.Mu.Unlock()

	if !ok {
		api.WriteError(w, http.StatusConflict, "NO_DRAFT_DATE", "pick a service date before the start time")
		return
	}
	api.WriteJSON(w, http.StatusOK, selectionView(sel))
}

func statusForOutcome(o lifecycle.Outcome) int {
	switch o.Status {
	case lifecycle.OutcomeOK:
		return http.StatusOK
	case lifecycle.OutcomeNoSelection:
		return http.StatusBadRequest
	case lifecycle.OutcomeTooLate:
		return http.StatusConflict
	case lifecycle.OutcomeIncompleteSelection:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (h Handlers) Cancel(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	sel := e.Flow.Selection()
	outcome := e.Flow.Cancel(r.Context(), s.Credential)
	buckets := e.Flow.Buckets()
	e.Mu.Unlock()

	h.recordMutation(r, s.Username, "cancel_service", sel, outcome, nil)

	api.WriteJSON(w, statusForOutcome(outcome), map[string]any{
		"outcome":  outcome,
		"services": buckets,
	})
}

func (h Handlers) Reschedule(w http.ResponseWriter, r *http.Request) {
	s, e := h.sessionEntry(r)
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	e.Mu.Lock()
	sel := e.Flow.Selection()
	outcome := e.Flow.Reschedule(r.Context(), s.Credential)
	buckets := e.Flow.Buckets()
	e.Mu.Unlock()

	var meta map[string]any
	if sel.DraftDate != nil && sel.DraftTime != nil {
		meta = map[string]any{"date": sel.DraftDate.String(), "time": sel.DraftTime.String()}
	}
	h.recordMutation(r, s.Username, "reschedule_service", sel, outcome, meta)

	api.WriteJSON(w, statusForOutcome(outcome), map[string]any{
		"outcome":  outcome,
		"services": buckets,
	})
}

// recordMutation writes the audit row for a cancel/reschedule attempt and,
// on success, the booking history event in the same transaction.
// Persistence failures are logged and never surfaced to the caller.
func (h Handlers) recordMutation(r *http.Request, username, action string, sel lifecycle.Selection, outcome lifecycle.Outcome, meta map[string]any) {
	var repairID *int64
	var bookingID *int64
	if sel.Record != nil {
		id := sel.Record.ID
		repairID = &id
		bid := sel.Record.Booking.ID
		bookingID = &bid
	}

	if outcome.Status != lifecycle.OutcomeOK || repairID == nil {
		if err := h.Audit.Insert(r.Context(), username, repairID, action, string(outcome.Status), meta); err != nil {
			h.Log.WithError(err).WithField("action", action).Error("audit insert failed")
		}
		return
	}

	eventType := history.EventCanceled
	if action == "reschedule_service" {
		eventType = history.EventRescheduled
	}
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := audit.InsertTx(r.Context(), tx, username, repairID, action, string(outcome.Status), meta); err != nil {
			return err
		}
		return history.InsertTx(r.Context(), tx, *repairID, bookingID, eventType, outcome.Message, time.Now(), meta)
	})
	if err != nil {
		h.Log.WithError(err).WithField("repair_id", *repairID).Error("mutation record failed")
	}
}

// Available lists the services a garage offers. A backend failure degrades
// to an empty list.
func (h Handlers) Available(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	garageID, err := strconv.ParseInt(chi.URLParam(r, "garageID"), 10, 64)
	if err != nil || garageID <= 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid garage id")
		return
	}

	items, err := h.Garage.AvailableRepairs(r.Context(), s.Credential, garageID)
	if err != nil {
		h.Log.WithError(err).WithField("garage_id", garageID).Error("available repairs lookup failed")
		items = nil
	}
	if items == nil {
		items = []garage.AvailableRepair{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type addServicesRequest struct {
	CarID     int64   `json:"carId"`
	RepairIDs []int64 `json:"repairIds"`
}

// Add books the selected garage services for one of the user's cars.
func (h Handlers) Add(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	var req addServicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body")
		return
	}
	if req.CarID <= 0 || len(req.RepairIDs) == 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "carId and repairIds are required")
		return
	}

	if err := h.Garage.AddRepairs(r.Context(), s.Credential, req.RepairIDs, req.CarID); err != nil {
		h.Log.WithError(err).WithField("car_id", req.CarID).Error("add services failed")
		api.WriteError(w, http.StatusBadGateway, "UPSTREAM", "failed to add services")
		return
	}

	if err := h.Audit.Insert(r.Context(), s.Username, nil, "add_services", string(lifecycle.OutcomeOK), map[string]any{
		"carId":     req.CarID,
		"repairIds": req.RepairIDs,
	}); err != nil {
		h.Log.WithError(err).Error("audit insert failed")
	}

	h.Log.WithFields(logrus.Fields{"username": s.Username, "car_id": req.CarID, "count": len(req.RepairIDs)}).Info("services added")
	w.WriteHeader(http.StatusCreated)
}

// RepairHistory returns the recorded booking events of one repair.
func (h Handlers) RepairHistory(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	repairID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || repairID <= 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid repair id")
		return
	}

	events, err := h.History.ListByRepair(r.Context(), repairID)
	if err != nil {
		h.Log.WithError(err).WithField("repair_id", repairID).Error("history query failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load history")
		return
	}
	if events == nil {
		events = []history.Event{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": events})
}

// AuditTrail returns the user's newest audit entries.
func (h Handlers) AuditTrail(w http.ResponseWriter, r *http.Request) {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.Audit.RecentFor(r.Context(), s.Username, limit)
	if err != nil {
		h.Log.WithError(err).WithField("username", s.Username).Error("audit query failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load audit trail")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}
