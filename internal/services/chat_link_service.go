package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
)

// LinkConfig configures the account-link flow.
type LinkConfig struct {
	// LinkTTL bounds account-link codes. 15 minutes per the calling
	// convention of the bot gateway.
	LinkTTL time.Duration
}

// ChatLinkServiceImpl implements domain.ChatLinkService. The ledger handles
// code mechanics; this service owns the channel-to-account binding.
type ChatLinkServiceImpl struct {
	ledger   domain.TokenLedger
	links    domain.ChatLinkRepository
	userRepo domain.UserRepository
	config   LinkConfig
	logger   *zap.Logger
}

// NewChatLinkService creates a new chat link service.
func NewChatLinkService(ledger domain.TokenLedger, links domain.ChatLinkRepository, userRepo domain.UserRepository, config LinkConfig, logger *zap.Logger) domain.ChatLinkService {
	return &ChatLinkServiceImpl{
		ledger:   ledger,
		links:    links,
		userRepo: userRepo,
		config:   config,
		logger:   logger,
	}
}

// IssueLinkCode implements domain.ChatLinkService. The code carries the
// channel identity; the owning user is unknown until redemption.
func (s *ChatLinkServiceImpl) IssueLinkCode(ctx context.Context, channelID, channelHandle string) (*domain.VerificationCode, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id is required")
	}
	existing, err := s.links.FindByChannelID(ctx, channelID)
	if err != nil && !errors.Is(err, domain.ErrLinkNotFound) {
		return nil, fmt.Errorf("failed to check channel binding: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrLinkAlreadyBound
	}

	vc, err := s.ledger.Issue(ctx, domain.PurposeAccountLink, s.config.LinkTTL,
		domain.IssueMetadata{ChannelID: channelID, ChannelHandle: channelHandle})
	if err != nil {
		return nil, err
	}
	s.logger.Info("issued account-link code",
		zap.String("channel_id", channelID),
		zap.Time("expires_at", vc.ExpiresAt))
	return vc, nil
}

// RedeemLinkCode implements domain.ChatLinkService. Redemption binds the
// code's channel to the redeeming user; a second attempt on the same code,
// or an attempt after expiry, fails without side effects.
func (s *ChatLinkServiceImpl) RedeemLinkCode(ctx context.Context, code string, userID uint) (*domain.ChatLink, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	vc, err := s.ledger.Redeem(ctx, domain.PurposeAccountLink, code,
		domain.RedeemContext{UserID: &userID})
	if err != nil {
		return nil, err
	}

	link := &domain.ChatLink{
		UserID:        userID,
		ChannelID:     vc.ChannelID,
		ChannelHandle: vc.ChannelHandle,
		CreatedAt:     time.Now(),
	}
	if err := s.links.Create(ctx, link); err != nil {
		if errors.Is(err, domain.ErrLinkAlreadyBound) {
			return nil, domain.ErrLinkAlreadyBound
		}
		return nil, fmt.Errorf("failed to persist chat link: %w", err)
	}

	s.logger.Info("chat channel linked",
		zap.Uint("user_id", userID),
		zap.String("channel_id", vc.ChannelID))
	return link, nil
}
