package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/core/tx"
	"ferreteria/internal/domain/catalogs/product"
	"ferreteria/internal/domain/stock"
	"ferreteria/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog and stock ledger endpoints.
type ProductHandler struct {
	*BaseHandler
	products  *product.Service
	stock     *stock.Service
	txManager tx.Manager
}

func NewProductHandler(base *BaseHandler, products *product.Service, stockSvc *stock.Service, txManager tx.Manager) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		products:    products,
		stock:       stockSvc,
		txManager:   txManager,
	}
}

// Create adds a product to the catalog.
// POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// GetByID returns one product.
// GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// List returns catalog products.
// GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var pagination dto.PaginationRequest
	if !h.BindQuery(c, &pagination) {
		return
	}

	filter := product.ListFilter{ListFilter: pagination.ToListFilter()}

	result, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(result))
}

// LowStock returns products at or below their reorder level.
// GET /products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 20)

	items, err := h.products.LowStock(c.Request.Context(), limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Movements returns the stock ledger for a product, newest first.
// GET /products/:id/movements
func (h *ProductHandler) Movements(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	filter := stock.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if mt := c.Query("type"); mt != "" {
		t := stock.MovementType(mt)
		filter.MovementType = &t
	}

	movements, err := h.stock.MovementHistory(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": movements})
}

// AdjustStock applies a manual stock correction inside its own unit of
// work, leaving an ADJUSTMENT row in the ledger.
// POST /products/:id/adjust
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := tx.WithRetry(c.Request.Context(), h.txManager, tx.DefaultRetryPolicy(), tx.DefaultOptions(),
		func(ctx context.Context) error {
			return h.stock.Adjust(ctx, productID, req.Delta)
		})
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
