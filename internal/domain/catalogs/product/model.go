// Package product provides the product catalog.
package product

import (
	"context"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

// Product is a catalog item the store sells or rents.
// Stock is the current on-hand quantity; its history lives in the
// stock movement ledger.
type Product struct {
	ID          id.ID  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	CategoryID  *id.ID `db:"category_id" json:"categoryId,omitempty"`
	SupplierID  *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	RentalPrice types.Money `db:"rental_price" json:"rentalPrice"`

	Stock    int64 `db:"stock" json:"stock"`
	MinStock int64 `db:"min_stock" json:"minStock"`

	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`
	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a new product with generated ID.
func NewProduct(code, name string, unitPrice types.Money) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		UnitPrice: unitPrice,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if p.MinStock < 0 {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock")
	}
	return nil
}

// IsLowStock reports whether current stock is at or below the reorder level.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}
