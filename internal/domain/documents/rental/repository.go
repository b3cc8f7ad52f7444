package rental

import (
	"context"
	"time"

	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
)

// Repository defines storage operations for rental documents.
type Repository interface {
	// Create inserts the master record and fills in the assigned folio.
	Create(ctx context.Context, r *Rental) error

	// SaveLines inserts the detail rows in line order.
	SaveLines(ctx context.Context, rentalID id.ID, lines []Line) error

	GetByID(ctx context.Context, rentalID id.ID) (*Rental, error)

	// GetByIDForUpdate locks the master row for the duration of the
	// enclosing transaction. Used by Return to serialize state changes.
	GetByIDForUpdate(ctx context.Context, rentalID id.ID) (*Rental, error)

	GetLines(ctx context.Context, rentalID id.ID) ([]Line, error)

	// UpdateStatus persists a lifecycle change with optimistic locking on
	// the document version.
	UpdateStatus(ctx context.Context, r *Rental) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Rental], error)
}

// ListFilter for filtering rentals.
type ListFilter struct {
	domain.ListFilter

	ClientID       *id.ID
	CollaboratorID *id.ID
	Status         *Status
	DateFrom       *time.Time
	DateTo         *time.Time
}
