package appointments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog writes status transitions to the appointment_audit table so the
// lifecycle of every booking can be reconstructed later.
type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

// RecordTransition implements TransitionRecorder.
func (l *AuditLog) RecordTransition(ctx context.Context, appointmentID string, from, to Status, actor Role, note string) error {
	query := `
		INSERT INTO appointment_audit (id, appointment_id, from_status, to_status, actor, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := l.db.ExecContext(ctx, query,
		uuid.New().String(), appointmentID, string(from), string(to), string(actor), note, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("appointments: recording audit entry: %w", err)
	}
	return nil
}

// AuditEntry is one row of the transition history.
type AuditEntry struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointmentId"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	Actor         string    `json:"actor"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// History returns the transitions for one appointment, oldest first.
func (l *AuditLog) History(ctx context.Context, appointmentID string) ([]*AuditEntry, error) {
	query := `
		SELECT id, appointment_id, from_status, to_status, actor, note, created_at
		FROM appointment_audit
		WHERE appointment_id = $1
		ORDER BY created_at ASC`

	rows, err := l.db.QueryContext(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("appointments: querying audit history: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.AppointmentID, &e.FromStatus, &e.ToStatus, &e.Actor, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scanning audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: reading audit history: %w", err)
	}
	return entries, nil
}
