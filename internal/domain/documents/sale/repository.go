package sale

import (
	"context"
	"time"

	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
)

// Repository defines storage operations for sale documents.
type Repository interface {
	// Create inserts the master record and fills in the assigned folio.
	Create(ctx context.Context, s *Sale) error

	// SaveLines inserts the detail rows in line order.
	SaveLines(ctx context.Context, saleID id.ID, lines []Line) error

	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	GetLines(ctx context.Context, saleID id.ID) ([]Line, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	domain.ListFilter

	ClientID       *id.ID
	CollaboratorID *id.ID
	DateFrom       *time.Time
	DateTo         *time.Time
}
