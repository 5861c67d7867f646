package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/internal/services"
)

// RequireRoles gates a route on an explicit list of allowed role names,
// attached at route registration. An empty list means the route is
// unrestricted. Every denial maps to the same forbidden response; whether
// the cause was a missing principal or a wrong role is only logged.
func RequireRoles(logger *zap.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := services.Authorize(roles, PrincipalFrom(c))
		if !decision.Allowed {
			logger.Debug("request denied",
				zap.String("path", c.FullPath()),
				zap.Error(decision.Reason))
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		c.Next()
	}
}
