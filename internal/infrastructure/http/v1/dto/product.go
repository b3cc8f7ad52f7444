package dto

import (
	"ferreteria/internal/domain/catalogs/product"
)

type CreateProductRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"categoryId,omitempty"`
	SupplierID  string `json:"supplierId,omitempty"`
	UnitPrice   string `json:"unitPrice" binding:"required"`
	RentalPrice string `json:"rentalPrice,omitempty"`
	Stock       int64  `json:"stock,omitempty"`
	MinStock    int64  `json:"minStock,omitempty"`
}

func (r *CreateProductRequest) ToEntity() (*product.Product, error) {
	unitPrice, err := parseMoney("unitPrice", r.UnitPrice)
	if err != nil {
		return nil, err
	}

	p := product.NewProduct(r.Code, r.Name, unitPrice)
	p.Description = r.Description
	p.Stock = r.Stock
	p.MinStock = r.MinStock

	if r.RentalPrice != "" {
		rentalPrice, err := parseMoney("rentalPrice", r.RentalPrice)
		if err != nil {
			return nil, err
		}
		p.RentalPrice = rentalPrice
	}
	if r.CategoryID != "" {
		categoryID, err := parseID("categoryId", r.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &categoryID
	}
	if r.SupplierID != "" {
		supplierID, err := parseID("supplierId", r.SupplierID)
		if err != nil {
			return nil, err
		}
		p.SupplierID = &supplierID
	}

	return p, nil
}

// AdjustStockRequest corrects on-hand quantity by a signed delta.
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason,omitempty"`
}
