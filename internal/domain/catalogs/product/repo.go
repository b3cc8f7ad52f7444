package product

import (
	"context"

	"ferreteria/internal/core/id"
	"ferreteria/internal/domain"
)

// Repository defines operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
	Update(ctx context.Context, p *Product) error

	// Delete performs a soft delete (sets deletion_mark).
	Delete(ctx context.Context, productID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Product], error)

	// LowStock returns products whose stock is at or below min_stock.
	LowStock(ctx context.Context, limit int) ([]*Product, error)
}

// ListFilter for filtering products.
type ListFilter struct {
	domain.ListFilter

	CategoryID *id.ID
	SupplierID *id.ID
}
