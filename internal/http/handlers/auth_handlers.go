package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/http/middleware"
)

// AuthHandlers handles registration, email verification and sessions.
type AuthHandlers struct {
	accountSvc domain.AccountService
	logger     *zap.Logger
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(accountSvc domain.AccountService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{accountSvc: accountSvc, logger: logger}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// VerifyEmailRequest carries the emailed 6-digit code.
type VerifyEmailRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// ResendRequest represents a verification resend request.
type ResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles account registration and sends the verification code.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accountSvc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		case errors.Is(err, domain.ErrResendThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting a new code"})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    gin.H{"id": user.ID, "email": user.Email},
		"message": "Verification code sent",
	})
}

// VerifyEmail redeems the emailed code and activates the account. All code
// failures collapse to one client-visible state so the endpoint cannot be
// used to probe which codes exist or were consumed.
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accountSvc.VerifyEmail(c.Request.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeNotFound),
			errors.Is(err, domain.ErrCodeExpired),
			errors.Is(err, domain.ErrCodeConsumed):
			h.logger.Info("email verification rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code invalid or expired"})
		default:
			h.logger.Error("email verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"id": user.ID, "email": user.Email, "verified": user.EmailVerified},
	})
}

// ResendVerification issues a fresh code for an unverified account.
func (h *AuthHandlers) ResendVerification(c *gin.Context) {
	var req ResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.accountSvc.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrResendThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Please wait before requesting a new code"})
			return
		case errors.Is(err, domain.ErrUserNotFound):
			// Fall through: an unknown address gets the same response as
			// a known one, so the endpoint does not enumerate accounts.
		default:
			h.logger.Error("verification resend failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend code"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a new code was sent"})
}

// Login authenticates and opens a session.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.accountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account not verified"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"expires_in":   result.ExpiresIn,
			"user": gin.H{
				"id":    result.User.ID,
				"email": result.User.Email,
				"role":  result.User.Role,
			},
		},
	})
}

// Logout closes the caller's session.
func (h *AuthHandlers) Logout(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	sessionID := c.GetString("session_id")
	if sessionID == "" {
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}
	if err := h.accountSvc.Logout(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
