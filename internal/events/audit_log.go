package events

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog persists events to the audit_logs table.
type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

func (a *AuditLog) Publish(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	_, err := a.db.ExecContext(ctx,
		"INSERT INTO audit_logs (id, entity_type, entity_id, action, actor_id, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.EntityType, e.EntityID, string(e.Action), e.ActorID, e.Details, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Recent returns audit entries newest first.
func (a *AuditLog) Recent(ctx context.Context, limit, offset int) ([]Event, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, entity_type, entity_id, action, actor_id, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	entries := []Event{}
	for rows.Next() {
		var e Event
		var action string
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &action, &e.ActorID, &details, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("error scanning audit log: %w", err)
		}
		e.Action = Action(action)
		e.Details = details.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
