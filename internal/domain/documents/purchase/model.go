// Package purchase provides the purchase document: goods received from a
// supplier, crediting stock on creation.
package purchase

import (
	"context"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/entity"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

// Purchase records goods received from a supplier.
type Purchase struct {
	entity.Document

	SupplierID     id.ID `db:"supplier_id" json:"supplierId"`
	CollaboratorID id.ID `db:"collaborator_id" json:"collaboratorId"`

	// Total is the sum of line subtotals.
	Total types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one received item at its acquisition cost.
type Line struct {
	ID     id.ID `db:"id" json:"id"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
}

// NewPurchase creates a new purchase document.
func NewPurchase(supplierID, collaboratorID id.ID) *Purchase {
	return &Purchase{
		Document:       entity.NewDocument(),
		SupplierID:     supplierID,
		CollaboratorID: collaboratorID,
		Total:          types.ZeroMoney(),
		Lines:          make([]Line, 0),
	}
}

// AddLine appends a line and recalculates the total.
func (p *Purchase) AddLine(productID id.ID, quantity int64, unitCost types.Money) {
	line := Line{
		ID:        id.New(),
		LineNo:    len(p.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitCost:  unitCost,
		Subtotal:  types.LineSubtotal(quantity, unitCost),
	}
	p.Lines = append(p.Lines, line)
	p.recalculateTotal()
}

func (p *Purchase) recalculateTotal() {
	total := types.ZeroMoney()
	for _, line := range p.Lines {
		total = total.Add(line.Subtotal)
	}
	p.Total = total
}

// Validate implements entity invariants.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if id.IsNil(p.CollaboratorID) {
		return apperror.NewValidation("collaborator is required").
			WithDetail("field", "collaboratorId")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("unit cost cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
