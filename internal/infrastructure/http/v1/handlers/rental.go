package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/domain/documents/rental"
	"ferreteria/internal/infrastructure/http/v1/dto"
)

// RentalHandler handles rental document endpoints.
type RentalHandler struct {
	*BaseHandler
	service *rental.Service
}

func NewRentalHandler(base *BaseHandler, service *rental.Service) *RentalHandler {
	return &RentalHandler{BaseHandler: base, service: service}
}

// Create dispatches a rental.
// POST /rentals
func (h *RentalHandler) Create(c *gin.Context) {
	var req dto.CreateRentalRequest
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

// Return closes an active rental and credits the goods back.
// POST /rentals/:id/return
func (h *RentalHandler) Return(c *gin.Context) {
	rentalID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Return(c.Request.Context(), rentalID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetByID returns a rental with its lines.
// GET /rentals/:id
func (h *RentalHandler) GetByID(c *gin.Context) {
	rentalID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), rentalID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List returns rentals, optionally filtered by status.
// GET /rentals
func (h *RentalHandler) List(c *gin.Context) {
	var pagination dto.PaginationRequest
	if !h.BindQuery(c, &pagination) {
		return
	}

	filter := rental.ListFilter{ListFilter: pagination.ToListFilter()}
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	if status := c.Query("status"); status != "" {
		s := rental.Status(status)
		filter.Status = &s
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(result))
}
