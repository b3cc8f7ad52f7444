package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/domain/audit"
)

// AuditHandler exposes per-record audit history.
type AuditHandler struct {
	*BaseHandler
	appender *audit.Appender
}

func NewAuditHandler(base *BaseHandler, appender *audit.Appender) *AuditHandler {
	return &AuditHandler{BaseHandler: base, appender: appender}
}

// History returns audit records for one row of one table, newest first.
// GET /audit/:table/:id
func (h *AuditHandler) History(c *gin.Context) {
	tableName := c.Param("table")
	recordID := c.Param("id")
	limit := h.ParseIntQuery(c, "limit", 50)

	records, err := h.appender.History(c.Request.Context(), tableName, recordID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}
