// Package rental provides the rental document: tools lent to a client,
// debiting stock on dispatch and crediting it back on return.
package rental

import (
	"context"
	"time"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/core/entity"
	"ferreteria/internal/core/id"
	"ferreteria/internal/core/types"
)

// Status is the rental lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
	StatusOverdue  Status = "OVERDUE"
)

// Rental records tools lent out to a client for a period.
type Rental struct {
	entity.Document

	ClientID       id.ID `db:"client_id" json:"clientId"`
	CollaboratorID id.ID `db:"collaborator_id" json:"collaboratorId"`

	Status Status `db:"status" json:"status"`

	// StartDate and DueDate bound the agreed period. ReturnedAt is set
	// when the goods come back.
	StartDate  time.Time  `db:"start_date" json:"startDate"`
	DueDate    time.Time  `db:"due_date" json:"dueDate"`
	ReturnedAt *time.Time `db:"returned_at" json:"returnedAt,omitempty"`

	// Total is the agreed rental charge, sum of line subtotals.
	Total types.Money `db:"total" json:"total"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one rented item at its daily rate.
type Line struct {
	ID     id.ID `db:"id" json:"id"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	DailyRate types.Money `db:"daily_rate" json:"dailyRate"`
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
}

// NewRental creates an active rental for the given period.
func NewRental(clientID, collaboratorID id.ID, startDate, dueDate time.Time) *Rental {
	return &Rental{
		Document:       entity.NewDocument(),
		ClientID:       clientID,
		CollaboratorID: collaboratorID,
		Status:         StatusActive,
		StartDate:      startDate,
		DueDate:        dueDate,
		Total:          types.ZeroMoney(),
		Lines:          make([]Line, 0),
	}
}

// AddLine appends a line charging the daily rate over the rental period.
func (r *Rental) AddLine(productID id.ID, quantity int64, dailyRate types.Money) {
	charge := types.LineSubtotal(quantity*r.days(), dailyRate)
	line := Line{
		ID:        id.New(),
		LineNo:    len(r.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		DailyRate: dailyRate,
		Subtotal:  charge,
	}
	r.Lines = append(r.Lines, line)
	r.recalculateTotal()
}

// days is the charged length of the period, minimum one day.
func (r *Rental) days() int64 {
	d := int64(r.DueDate.Sub(r.StartDate).Hours() / 24)
	if d < 1 {
		d = 1
	}
	return d
}

func (r *Rental) recalculateTotal() {
	total := types.ZeroMoney()
	for _, line := range r.Lines {
		total = total.Add(line.Subtotal)
	}
	r.Total = total
}

// IsActive reports whether the goods are still out.
func (r *Rental) IsActive() bool {
	return r.Status == StatusActive || r.Status == StatusOverdue
}

// Validate implements entity invariants.
func (r *Rental) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}

	if id.IsNil(r.CollaboratorID) {
		return apperror.NewValidation("collaborator is required").
			WithDetail("field", "collaboratorId")
	}

	if r.DueDate.Before(r.StartDate) {
		return apperror.NewValidation("due date cannot precede start date").
			WithDetail("field", "dueDate")
	}

	if len(r.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range r.Lines {
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
		if line.DailyRate.IsNegative() {
			return apperror.NewValidation("daily rate cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
