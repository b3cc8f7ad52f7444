package purchase

import (
	"context"
	"time"

	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
)

// Repository defines storage operations for purchase documents.
type Repository interface {
	// Create inserts the master record and fills in the assigned folio.
	Create(ctx context.Context, p *Purchase) error

	// SaveLines inserts the detail rows in line order.
	SaveLines(ctx context.Context, purchaseID id.ID, lines []Line) error

	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	GetLines(ctx context.Context, purchaseID id.ID) ([]Line, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)
}

// ListFilter for filtering purchases.
type ListFilter struct {
	domain.ListFilter

	SupplierID     *id.ID
	CollaboratorID *id.ID
	DateFrom       *time.Time
	DateTo         *time.Time
}
