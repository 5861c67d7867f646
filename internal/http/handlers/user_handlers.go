package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
)

// UserHandlers serves admin account views and the role catalog.
type UserHandlers struct {
	userRepo domain.UserRepository
	logger   *zap.Logger
}

// NewUserHandlers creates new user handlers.
func NewUserHandlers(userRepo domain.UserRepository, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{userRepo: userRepo, logger: logger}
}

// ListUsers returns all accounts. Admin only, gated at route registration.
func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.userRepo.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	data := make([]gin.H, 0, len(users))
	for _, u := range users {
		data = append(data, gin.H{
			"id":       u.ID,
			"email":    u.Email,
			"role":     u.Role,
			"active":   u.IsActive,
			"verified": u.EmailVerified,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// ListRoles returns the static role catalog with display labels.
func (h *UserHandlers) ListRoles(c *gin.Context) {
	roles := domain.Roles()
	data := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		data = append(data, gin.H{
			"name":      r.Name,
			"label":     r.Label,
			"municipal": r.IsMunicipal,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
