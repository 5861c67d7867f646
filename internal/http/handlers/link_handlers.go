package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/http/middleware"
)

// LinkHandlers handles chat-bot account-link code flows. Issue is called by
// the bot gateway with a channel identity; redeem by a logged-in user who
// received the code through the chat channel.
type LinkHandlers struct {
	linkSvc domain.ChatLinkService
	logger  *zap.Logger
}

// NewLinkHandlers creates new link handlers.
func NewLinkHandlers(linkSvc domain.ChatLinkService, logger *zap.Logger) *LinkHandlers {
	return &LinkHandlers{linkSvc: linkSvc, logger: logger}
}

// IssueLinkCodeRequest carries the external channel identity.
type IssueLinkCodeRequest struct {
	ChannelID     string `json:"channel_id" binding:"required"`
	ChannelHandle string `json:"channel_handle"`
}

// RedeemLinkCodeRequest carries the code typed back by the user.
type RedeemLinkCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,alphanum"`
}

// IssueCode issues a short-lived link code for a chat channel.
func (h *LinkHandlers) IssueCode(c *gin.Context) {
	var req IssueLinkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vc, err := h.linkSvc.IssueLinkCode(c.Request.Context(), req.ChannelID, req.ChannelHandle)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLinkAlreadyBound):
			c.JSON(http.StatusConflict, gin.H{"error": "Channel already linked"})
		default:
			h.logger.Error("link code issuance failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue code"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"code":       vc.Code,
			"expires_at": vc.ExpiresAt,
		},
	})
}

// RedeemCode binds the code's channel to the calling user. Expired and
// already-used codes fail identically from the client's perspective.
func (h *LinkHandlers) RedeemCode(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req RedeemLinkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.linkSvc.RedeemLinkCode(c.Request.Context(), req.Code, principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeNotFound),
			errors.Is(err, domain.ErrCodeExpired),
			errors.Is(err, domain.ErrCodeConsumed):
			h.logger.Info("link redemption rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code invalid or expired"})
		case errors.Is(err, domain.ErrLinkAlreadyBound):
			c.JSON(http.StatusConflict, gin.H{"error": "Channel already linked"})
		default:
			h.logger.Error("link redemption failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to redeem code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"channel_id":     link.ChannelID,
			"channel_handle": link.ChannelHandle,
		},
	})
}
