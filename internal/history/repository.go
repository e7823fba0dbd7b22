package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event types recorded against a repair's booking.
const (
	EventBooked      = "booked"
	EventRescheduled = "rescheduled"
	EventCanceled    = "canceled"
	EventNotified    = "garage_notified"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const insertQuery = `
INSERT INTO booking_events (repair_id, booking_id, event_type, summary, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`

func (r *Repository) Insert(ctx context.Context, repairID int64, bookingID *int64, eventType, summary string, occurredAt time.Time, data any) error {
	_, err := r.db.Exec(ctx, insertQuery, repairID, bookingID, eventType, summary, occurredAt, marshalData(data))
	return err
}

// InsertTx is Insert inside a caller-managed transaction.
func InsertTx(ctx context.Context, tx pgx.Tx, repairID int64, bookingID *int64, eventType, summary string, occurredAt time.Time, data any) error {
	_, err := tx.Exec(ctx, insertQuery, repairID, bookingID, eventType, summary, occurredAt, marshalData(data))
	return err
}

func marshalData(data any) *string {
	if data == nil {
		return nil
	}
	b, _ := json.Marshal(data)
	s := string(b)
	return &s
}

type Event struct {
	ID         string `json:"id"`
	RepairID   int64  `json:"repairId"`
	BookingID  *int64 `json:"bookingId,omitempty"`
	EventType  string `json:"eventType"`
	Summary    string `json:"summary"`
	OccurredAt string `json:"occurredAt"`
	Data       any    `json:"data,omitempty"`
}

// ListByRepair returns a repair's booking history, oldest first.
func (r *Repository) ListByRepair(ctx context.Context, repairID int64) ([]Event, error) {
	const q = `
SELECT id, repair_id, booking_id, event_type, summary, occurred_at::text, COALESCE(data, '{}'::jsonb)
FROM booking_events
WHERE repair_id = $1
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := r.db.Query(ctx, q, repairID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RepairID, &e.BookingID, &e.EventType, &e.Summary, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
