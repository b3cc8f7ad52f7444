package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/domain/documents/purchase"
	"ferreteria/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles purchase document endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Create registers a purchase.
// POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// GetByID returns a purchase with its lines.
// GET /purchases/:id
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List returns purchases, newest first.
// GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var pagination dto.PaginationRequest
	if !h.BindQuery(c, &pagination) {
		return
	}

	filter := purchase.ListFilter{ListFilter: pagination.ToListFilter()}
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(result))
}
