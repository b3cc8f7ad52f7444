package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ferreteria/internal/core/apperror"
	appctx "ferreteria/internal/core/context"
	"ferreteria/internal/domain/auth"
)

// TokenValidator verifies access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Actor, error)
}

// Auth validates the bearer token and puts the acting collaborator on the
// request context, where services and the audit trail read it.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Set("actor_id", actor.ID)

		c.Next()
	}
}

// RequireRole allows only the named role past. Run after Auth.
func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := appctx.GetActor(c.Request.Context())
		if actor == nil || actor.Role != string(role) {
			_ = c.Error(apperror.NewForbidden("insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
