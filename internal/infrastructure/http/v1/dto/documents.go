package dto

import (
	"time"

	"ferreteria/internal/domain/documents/purchase"
	"ferreteria/internal/domain/documents/rental"
	"ferreteria/internal/domain/documents/sale"
)

// LineRequest is one document line as submitted by the client. Amounts
// travel as strings so decimals survive JSON intact.
type LineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unitPrice" binding:"required"`
}

// --- Sales ---

type CreateSaleRequest struct {
	ClientID       string        `json:"clientId" binding:"required"`
	CollaboratorID string        `json:"collaboratorId" binding:"required"`
	Comment        string        `json:"comment,omitempty"`
	Lines          []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r *CreateSaleRequest) ToEntity() (*sale.Sale, error) {
	clientID, err := parseID("clientId", r.ClientID)
	if err != nil {
		return nil, err
	}
	collaboratorID, err := parseID("collaboratorId", r.CollaboratorID)
	if err != nil {
		return nil, err
	}

	doc := sale.NewSale(clientID, collaboratorID)
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := parseID("lines.productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := parseMoney("lines.unitPrice", line.UnitPrice)
		if err != nil {
			return nil, err
		}
		doc.AddLine(productID, line.Quantity, price)
	}

	return doc, nil
}

// --- Purchases ---

type CreatePurchaseRequest struct {
	SupplierID     string        `json:"supplierId" binding:"required"`
	CollaboratorID string        `json:"collaboratorId" binding:"required"`
	Comment        string        `json:"comment,omitempty"`
	Lines          []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r *CreatePurchaseRequest) ToEntity() (*purchase.Purchase, error) {
	supplierID, err := parseID("supplierId", r.SupplierID)
	if err != nil {
		return nil, err
	}
	collaboratorID, err := parseID("collaboratorId", r.CollaboratorID)
	if err != nil {
		return nil, err
	}

	doc := purchase.NewPurchase(supplierID, collaboratorID)
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := parseID("lines.productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		cost, err := parseMoney("lines.unitPrice", line.UnitPrice)
		if err != nil {
			return nil, err
		}
		doc.AddLine(productID, line.Quantity, cost)
	}

	return doc, nil
}

// --- Rentals ---

type CreateRentalRequest struct {
	ClientID       string        `json:"clientId" binding:"required"`
	CollaboratorID string        `json:"collaboratorId" binding:"required"`
	StartDate      time.Time     `json:"startDate" binding:"required"`
	DueDate        time.Time     `json:"dueDate" binding:"required"`
	Comment        string        `json:"comment,omitempty"`
	Lines          []LineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r *CreateRentalRequest) ToEntity() (*rental.Rental, error) {
	clientID, err := parseID("clientId", r.ClientID)
	if err != nil {
		return nil, err
	}
	collaboratorID, err := parseID("collaboratorId", r.CollaboratorID)
	if err != nil {
		return nil, err
	}

	doc := rental.NewRental(clientID, collaboratorID, r.StartDate, r.DueDate)
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := parseID("lines.productId", line.ProductID)
		if err != nil {
			return nil, err
		}
		rate, err := parseMoney("lines.unitPrice", line.UnitPrice)
		if err != nil {
			return nil, err
		}
		doc.AddLine(productID, line.Quantity, rate)
	}

	return doc, nil
}
