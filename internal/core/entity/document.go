// Package entity provides core domain entities.
package entity

import (
	"context"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
)

// Document is the base type for business transactions (sales, purchases,
// rentals). Folio is the human-facing sequential number, assigned by the
// store on insert.
type Document struct {
	ID    id.ID     `db:"id" json:"id"`
	Folio int64     `db:"folio" json:"folio"`
	Date  time.Time `db:"date" json:"date"`

	Comment string `db:"comment" json:"comment,omitempty"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument() Document {
	now := time.Now().UTC()
	return Document{
		ID:        id.New(),
		Date:      now,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements basic document invariants.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// Touch updates the UpdatedAt timestamp and increments version.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
	d.Version++
}
