package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/backup"
)

// BackupHandler exposes database backup management. All routes require
// the ADMIN role.
type BackupHandler struct {
	*BaseHandler
	manager *backup.Manager
}

func NewBackupHandler(base *BaseHandler, manager *backup.Manager) *BackupHandler {
	return &BackupHandler{BaseHandler: base, manager: manager}
}

// List returns available backups, newest first.
// GET /backups
func (h *BackupHandler) List(c *gin.Context) {
	items, err := h.manager.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create takes a new backup and returns its metadata.
// POST /backups
func (h *BackupHandler) Create(c *gin.Context) {
	info, err := h.manager.Create(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, info)
}

// Restore replaces the database contents with a named backup.
// POST /backups/:name/restore
func (h *BackupHandler) Restore(c *gin.Context) {
	name := c.Param("name")
	if err := h.manager.Restore(c.Request.Context(), name); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restored": name})
}

// Delete removes a named backup file.
// DELETE /backups/:name
func (h *BackupHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.manager.Delete(c.Request.Context(), name); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
