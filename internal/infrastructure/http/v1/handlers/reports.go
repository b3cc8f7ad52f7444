package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/core/apperror"
	"ferreteria/internal/domain/reports"
)

// ReportsHandler serves dashboard and period report endpoints.
type ReportsHandler struct {
	*BaseHandler
	reports *reports.Service
}

func NewReportsHandler(base *BaseHandler, svc *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, reports: svc}
}

// Dashboard returns the front-page summary for today.
// GET /reports/dashboard
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	summary, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SalesByPeriod aggregates sales per day between from and to.
// GET /reports/sales?from=2026-01-01&to=2026-01-31
func (h *ReportsHandler) SalesByPeriod(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.reports.SalesByPeriod(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// TopProducts ranks products by quantity sold in the period.
// GET /reports/top-products?from=...&to=...&limit=10
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 10)

	rows, err := h.reports.TopProducts(c.Request.Context(), from, to, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}

// StockValuation values current inventory at unit price.
// GET /reports/stock-value
func (h *ReportsHandler) StockValuation(c *gin.Context) {
	valuation, err := h.reports.StockValuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, valuation)
}

// parsePeriod reads from/to query params as YYYY-MM-DD dates. The to date
// is inclusive, so it is pushed to the end of that day.
func (h *ReportsHandler) parsePeriod(c *gin.Context) (from, to time.Time, ok bool) {
	const layout = "2006-01-02"

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("from and to query parameters are required"))
		return time.Time{}, time.Time{}, false
	}

	from, err := time.Parse(layout, fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid from date, expected YYYY-MM-DD").WithDetail("from", fromStr))
		return time.Time{}, time.Time{}, false
	}
	to, err = time.Parse(layout, toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid to date, expected YYYY-MM-DD").WithDetail("to", toStr))
		return time.Time{}, time.Time{}, false
	}

	to = to.Add(24*time.Hour - time.Nanosecond)
	return from, to, true
}
