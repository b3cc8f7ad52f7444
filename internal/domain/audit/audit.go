// Package audit provides the append-only audit trail.
//
// Audit writes are best-effort: failures are logged and absorbed so they can
// never abort the business transaction that triggered them. Because the row
// is inserted through the same transactional handle as the primary mutation,
// a rollback of the owning unit of work discards the audit row too.
package audit

import (
	"context"
	"encoding/json"
	"time"

	appctx "ferreteria/internal/core/context"
	"ferreteria/internal/core/id"
	"ferreteria/pkg/logger"
)

// Action is the kind of audited operation.
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Record is one append-only audit entry. Never updated or deleted by
// application code.
type Record struct {
	ID        id.ID           `db:"id" json:"id"`
	TableName string          `db:"table_name" json:"tableName"`
	Action    Action          `db:"action" json:"action"`
	RecordID  string          `db:"record_id" json:"recordId"`
	Actor     string          `db:"actor" json:"actor"`
	Changes   json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Repository persists audit records.
type Repository interface {
	Append(ctx context.Context, rec Record) error
	History(ctx context.Context, tableName, recordID string, limit int) ([]Record, error)
}

// Appender writes audit records inside the caller's transaction.
type Appender struct {
	repo Repository
}

// NewAppender creates a new audit appender.
func NewAppender(repo Repository) *Appender {
	return &Appender{repo: repo}
}

// Log appends an audit record. The actor is taken from context, defaulting
// to SYSTEM. Log never returns an error: append failures are logged and
// swallowed here, at the source.
func (a *Appender) Log(ctx context.Context, tableName string, action Action, recordID id.ID) {
	a.LogChanges(ctx, tableName, action, recordID, nil)
}

// LogChanges appends an audit record with an optional change payload.
func (a *Appender) LogChanges(ctx context.Context, tableName string, action Action, recordID id.ID, changes map[string]any) {
	rec := Record{
		ID:        id.New(),
		TableName: tableName,
		Action:    action,
		RecordID:  recordID.String(),
		Actor:     appctx.ActorID(ctx),
		CreatedAt: time.Now().UTC(),
	}

	if len(changes) > 0 {
		payload, err := json.Marshal(changes)
		if err != nil {
			logger.Error(ctx, "audit: marshal changes failed",
				"table", tableName,
				"record_id", rec.RecordID,
				"error", err,
			)
		} else {
			rec.Changes = payload
		}
	}

	if err := a.repo.Append(ctx, rec); err != nil {
		logger.Error(ctx, "audit: append failed",
			"table", tableName,
			"action", action,
			"record_id", rec.RecordID,
			"error", err,
		)
	}
}

// History returns the audit trail for one record, newest first.
func (a *Appender) History(ctx context.Context, tableName, recordID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return a.repo.History(ctx, tableName, recordID, limit)
}
