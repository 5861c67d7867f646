package httpx

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/http/handlers"
	"github.com/MontelAle/participium-sub002/internal/http/middleware"
)

// BuildRouter wires routes with their allowed-role lists. The role
// requirement is declared here, next to the route, and consumed directly by
// the authorization check; there is no policy table to keep in sync.
func BuildRouter(
	ah *handlers.AuthHandlers,
	lh *handlers.LinkHandlers,
	rh *handlers.ReportHandlers,
	uh *handlers.UserHandlers,
	authmw *middleware.AuthMW,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), authmw.ResolvePrincipal())

	anyRole := []string{
		domain.RoleAdmin, domain.RoleUser,
		domain.RolePROfficer, domain.RoleTechOfficer, domain.RoleExternalMaintainer,
	}
	require := func(roles ...string) gin.HandlerFunc {
		return middleware.RequireRoles(logger, roles...)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/verify-email", ah.VerifyEmail)
	auth.POST("/verify-email/resend", ah.ResendVerification)
	auth.POST("/login", ah.Login)
	auth.POST("/logout", require(anyRole...), ah.Logout)

	link := r.Group("/link")
	link.POST("/code", lh.IssueCode)
	link.POST("/redeem", require(anyRole...), lh.RedeemCode)

	// Guests reach the list handler and get an empty set; the role gate
	// would otherwise leak which paths exist behind auth.
	r.GET("/reports", rh.List)

	r.GET("/roles", uh.ListRoles)

	adm := r.Group("/admin", require(domain.RoleAdmin))
	adm.GET("/users", uh.ListUsers)

	return r
}
