package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
)

// AccountConfig configures the registration and verification flow.
type AccountConfig struct {
	// VerificationTTL bounds email-verification codes. 30 minutes in
	// production.
	VerificationTTL time.Duration
	SessionTTL      time.Duration
	AccessExpiresIn int64
}

// AccountServiceImpl implements domain.AccountService.
type AccountServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	ledger      domain.TokenLedger
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	notifier    domain.NotificationService
	throttle    domain.IssueThrottle
	config      AccountConfig
	logger      *zap.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	ledger domain.TokenLedger,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	notifier domain.NotificationService,
	throttle domain.IssueThrottle,
	config AccountConfig,
	logger *zap.Logger,
) domain.AccountService {
	return &AccountServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		ledger:      ledger,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		notifier:    notifier,
		throttle:    throttle,
		config:      config,
		logger:      logger,
	}
}

// Register implements domain.AccountService. The account starts inactive
// and is activated when the emailed code is redeemed.
func (s *AccountServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
		IsActive:     false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.issueVerification(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyEmail implements domain.AccountService. Redemption is at-most-once;
// a second attempt on the same code fails inside the ledger.
func (s *AccountServiceImpl) VerifyEmail(ctx context.Context, code string) (*domain.User, error) {
	vc, err := s.ledger.Redeem(ctx, domain.PurposeEmailVerification, code, domain.RedeemContext{})
	if err != nil {
		return nil, err
	}
	if vc.SubjectID == nil {
		return nil, fmt.Errorf("email verification code %d has no subject", vc.ID)
	}

	if err := s.userRepo.ActivateEmail(ctx, *vc.SubjectID); err != nil {
		return nil, fmt.Errorf("failed to activate account: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, *vc.SubjectID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("email verified", zap.Uint("user_id", user.ID))
	return user, nil
}

// ResendVerification implements domain.AccountService. A new issuance
// supersedes earlier codes for the subject; old ones simply expire unused.
func (s *AccountServiceImpl) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.issueVerification(ctx, user)
}

func (s *AccountServiceImpl) issueVerification(ctx context.Context, user *domain.User) error {
	throttleKey := fmt.Sprintf("verify:%d", user.ID)
	ok, wait, err := s.throttle.CanIssue(ctx, throttleKey)
	if err != nil {
		return fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: retry in %d seconds", domain.ErrResendThrottled, wait)
	}

	subject := user.ID
	vc, err := s.ledger.Issue(ctx, domain.PurposeEmailVerification, s.config.VerificationTTL,
		domain.IssueMetadata{SubjectID: &subject})
	if err != nil {
		return fmt.Errorf("failed to issue verification code: %w", err)
	}

	if err := s.throttle.MarkIssued(ctx, throttleKey); err != nil {
		return fmt.Errorf("failed to set resend throttle: %w", err)
	}

	body := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.",
		vc.Code, int(s.config.VerificationTTL.Minutes()))
	if err := s.notifier.SendEmail(user.Email, "Verify your email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// Login implements domain.AccountService.
func (s *AccountServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive || !user.EmailVerified {
		return nil, domain.ErrUserInactive
	}
	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.config.SessionTTL),
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.AuthResult{
		User:        user,
		AccessToken: accessToken,
		SessionID:   session.ID,
		ExpiresIn:   s.config.AccessExpiresIn,
	}, nil
}

// Logout implements domain.AccountService.
func (s *AccountServiceImpl) Logout(ctx context.Context, sessionID string) error {
	err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}
