// Package stock provides the stock ledger: a product's current quantity plus
// its append-only movement history.
package stock

import (
	"time"

	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

// MovementType classifies why a product's quantity changed.
type MovementType string

const (
	MovementSale         MovementType = "SALE"
	MovementPurchase     MovementType = "PURCHASE"
	MovementRentalOut    MovementType = "RENTAL_OUT"
	MovementRentalReturn MovementType = "RENTAL_RETURN"
	MovementAdjustment   MovementType = "ADJUSTMENT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementSale, MovementPurchase, MovementRentalOut, MovementRentalReturn, MovementAdjustment:
		return true
	}
	return false
}

// Movement is one append-only ledger row. Quantity is always the absolute
// value of the applied delta; Delta keeps the sign.
type Movement struct {
	ID           id.ID        `db:"id" json:"id"`
	ProductID    id.ID        `db:"product_id" json:"productId"`
	MovementType MovementType `db:"movement_type" json:"movementType"`
	Quantity     int64        `db:"quantity" json:"quantity"`
	Delta        int64        `db:"delta" json:"delta"`

	// ReferenceID is the document that caused the movement (sale, purchase,
	// rental), nil for manual adjustments.
	ReferenceID *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	Actor     string    `db:"actor" json:"actor"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ProductSnapshot is the stock-relevant view of a product, read under a row
// lock during a debit check.
type ProductSnapshot struct {
	ID        id.ID       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Available int64       `db:"stock" json:"available"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	MovementType *MovementType
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}
