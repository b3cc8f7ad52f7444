// Package sale provides the sale document: one master record plus ordered
// line items, debiting stock on creation.
package sale

import (
	"context"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/entity"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

// Sale records goods sold to a client.
type Sale struct {
	entity.Document

	ClientID       id.ID `db:"client_id" json:"clientId"`
	CollaboratorID id.ID `db:"collaborator_id" json:"collaboratorId"`

	// Total is the sum of line subtotals (calculated, never client-supplied).
	Total types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one sold item. LineNo is 1-based and follows input order.
type Line struct {
	ID     id.ID `db:"id" json:"id"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
}

// NewSale creates a new sale document.
func NewSale(clientID, collaboratorID id.ID) *Sale {
	return &Sale{
		Document:       entity.NewDocument(),
		ClientID:       clientID,
		CollaboratorID: collaboratorID,
		Total:          types.ZeroMoney(),
		Lines:          make([]Line, 0),
	}
}

// AddLine appends a line and recalculates the total.
// Subtotal = quantity × unit price.
func (s *Sale) AddLine(productID id.ID, quantity int64, unitPrice types.Money) {
	line := Line{
		ID:        id.New(),
		LineNo:    len(s.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  types.LineSubtotal(quantity, unitPrice),
	}
	s.Lines = append(s.Lines, line)
	s.recalculateTotal()
}

func (s *Sale) recalculateTotal() {
	total := types.ZeroMoney()
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal)
	}
	s.Total = total
}

// Validate implements entity invariants. Runs before any transaction opens.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if id.IsNil(s.CollaboratorID) {
		return apperror.NewValidation("collaborator is required").
			WithDetail("field", "collaboratorId")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
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
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
