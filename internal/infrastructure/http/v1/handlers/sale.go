package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/domain/documents/sale"
	"ferreteria/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles sale document endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Create registers a sale.
// POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
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

// GetByID returns a sale with its lines.
// GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List returns sales, newest first.
// GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	var pagination dto.PaginationRequest
	if !h.BindQuery(c, &pagination) {
		return
	}

	filter := sale.ListFilter{ListFilter: pagination.ToListFilter()}
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(result))
}
