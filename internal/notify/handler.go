package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"frontdesk/internal/api"
	"frontdesk/internal/history"
	"frontdesk/pkg/config"
)

// Handler receives booking-change notifications pushed by the garage backend
// and records them as booking history.
type Handler struct {
	Cfg     config.Config
	History *history.Repository
	Log     *logrus.Logger
}

type notification struct {
	EventType  string          `json:"eventType"`
	RepairID   int64           `json:"repairId"`
	BookingID  *int64          `json:"bookingId"`
	Summary    string          `json:"summary"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

var knownEventTypes = map[string]string{
	"BOOKED":      history.EventBooked,
	"RESCHEDULED": history.EventRescheduled,
	"CANCELED":    history.EventCanceled,
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sig := strings.TrimSpace(r.Header.Get("X-Garage-Signature"))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}

	if !VerifySignature(body, sig, h.Cfg.Session.NotifySecret) {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid notification signature")
		return
	}

	var n notification
	if err := json.Unmarshal(body, &n); err != nil || n.RepairID == 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid notification payload")
		return
	}

	eventType, ok := knownEventTypes[strings.ToUpper(strings.TrimSpace(n.EventType))]
	if !ok {
		// Unknown types are accepted so the backend does not retry them.
		w.WriteHeader(http.StatusOK)
		return
	}

	occurredAt := n.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	if err := h.History.Insert(r.Context(), n.RepairID, n.BookingID, eventType, n.Summary, occurredAt, n.Data); err != nil {
		h.Log.WithError(err).WithField("repair_id", n.RepairID).Error("record booking notification failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to record notification")
		return
	}

	h.Log.WithFields(logrus.Fields{
		"repair_id":  n.RepairID,
		"event_type": eventType,
	}).Info("booking notification recorded")

	w.WriteHeader(http.StatusOK)
}
