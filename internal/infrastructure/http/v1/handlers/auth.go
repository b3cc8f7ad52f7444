package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/domain/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login authenticates a collaborator and issues a token.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var creds auth.Credentials
	if !h.BindJSON(c, &creds) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), creds)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
