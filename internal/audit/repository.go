package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository records who tried to change which repair and how it went.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type Entry struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	RepairID  *int64          `json:"repairId,omitempty"`
	Action    string          `json:"action"`
	Outcome   string          `json:"outcome"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

const insertQuery = `
INSERT INTO audit_logs (username, repair_id, action, outcome, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`

func (r *Repository) Insert(ctx context.Context, username string, repairID *int64, action, outcome string, metadata any) error {
	_, err := r.db.Exec(ctx, insertQuery, username, repairID, action, outcome, marshalMeta(metadata))
	return err
}

// InsertTx is Insert inside a caller-managed transaction.
func InsertTx(ctx context.Context, tx pgx.Tx, username string, repairID *int64, action, outcome string, metadata any) error {
	_, err := tx.Exec(ctx, insertQuery, username, repairID, action, outcome, marshalMeta(metadata))
	return err
}

func marshalMeta(metadata any) *string {
	if metadata == nil {
		return nil
	}
	b, _ := json.Marshal(metadata)
	s := string(b)
	return &s
}

// RecentFor returns the newest audit entries for a user, newest first.
func (r *Repository) RecentFor(ctx context.Context, username string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
SELECT id, username, repair_id, action, outcome, metadata, created_at
FROM audit_logs
WHERE username = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := r.db.Query(ctx, q, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Username, &e.RepairID, &e.Action, &e.Outcome, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
