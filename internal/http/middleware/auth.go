package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MontelAle/participium-sub002/domain"
)

// PrincipalKey is the gin context key holding the resolved *domain.Principal.
const PrincipalKey = "principal"

// AuthMW resolves request principals from bearer tokens and sessions.
type AuthMW struct {
	tokenSvc    domain.TokenService
	sessionRepo domain.SessionRepository
}

// NewAuthMW creates new auth middleware.
func NewAuthMW(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) *AuthMW {
	return &AuthMW{
		tokenSvc:    tokenSvc,
		sessionRepo: sessionRepo,
	}
}

// ResolvePrincipal validates the Authorization header when present and
// stores the resolved principal in the context. A missing header leaves the
// request unauthenticated; role gates decide downstream whether that is
// acceptable. A header that is present but invalid is rejected outright.
func (mw *AuthMW) ResolvePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := mw.tokenSvc.ValidateAccessToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// The session must still exist; a logout invalidates tokens that
		// are otherwise unexpired.
		if claims.SessionID != "" {
			session, err := mw.sessionRepo.FindByID(c.Request.Context(), claims.SessionID)
			if err != nil || session == nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session invalid or expired"})
				c.Abort()
				return
			}
			if session.UserID != claims.UserID {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session user mismatch"})
				c.Abort()
				return
			}
		}

		c.Set(PrincipalKey, &domain.Principal{
			ID:   claims.UserID,
			Role: domain.RoleByName(claims.Role),
		})
		if claims.SessionID != "" {
			c.Set("session_id", claims.SessionID)
		}
		c.Next()
	}
}

// PrincipalFrom returns the resolved principal for the request, or nil for
// guests.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil
	}
	p, ok := v.(*domain.Principal)
	if !ok {
		return nil
	}
	return p
}
