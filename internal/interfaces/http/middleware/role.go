package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/interfaces/http/dto"
)

// RequireRole only lets actors holding one of roles through. It must run
// after Auth.
func RequireRole(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !slices.Contains(roles, actor.Role) {
			abortWithError(c, http.StatusForbidden, shared.CodeUnauthorized, shared.ErrUnauthorized.Message)
			return
		}
		c.Next()
	}
}

// RequireManager restricts a route to shop owners and admins
func RequireManager() gin.HandlerFunc {
	return RequireRole(shared.RoleOwner, shared.RoleAdmin)
}
