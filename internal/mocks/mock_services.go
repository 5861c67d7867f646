package mocks

import (
	"context"
	"time"

	"github.com/MontelAle/participium-sub002/domain"
)

// MockSessionRepository implements domain.SessionRepository for testing.
type MockSessionRepository struct {
	CreateFunc   func(ctx context.Context, session *domain.Session) error
	FindByIDFunc func(ctx context.Context, sessionID string) (*domain.Session, error)
	DeleteFunc   func(ctx context.Context, sessionID string) error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	return nil
}

// MockChatLinkRepository implements domain.ChatLinkRepository for testing.
type MockChatLinkRepository struct {
	CreateFunc          func(ctx context.Context, link *domain.ChatLink) error
	FindByChannelIDFunc func(ctx context.Context, channelID string) (*domain.ChatLink, error)
	FindByUserIDFunc    func(ctx context.Context, userID uint) ([]domain.ChatLink, error)
}

func NewMockChatLinkRepository() *MockChatLinkRepository {
	return &MockChatLinkRepository{}
}

func (m *MockChatLinkRepository) Create(ctx context.Context, link *domain.ChatLink) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, link)
	}
	return nil
}

func (m *MockChatLinkRepository) FindByChannelID(ctx context.Context, channelID string) (*domain.ChatLink, error) {
	if m.FindByChannelIDFunc != nil {
		return m.FindByChannelIDFunc(ctx, channelID)
	}
	return nil, domain.ErrLinkNotFound
}

func (m *MockChatLinkRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.ChatLink, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockNotificationService implements domain.NotificationService for testing.
type MockNotificationService struct {
	SendEmailFunc func(to, subject, body string) error

	SentEmails []SentEmail
}

// SentEmail records a delivery made through the mock.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendEmail(to, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(to, subject, body)
	}
	m.SentEmails = append(m.SentEmails, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

// MockPasswordService implements domain.PasswordService for testing.
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == "hashed_"+password
}

// MockTokenService implements domain.TokenService for testing.
type MockTokenService struct {
	GenerateAccessTokenFunc func(userID uint, role string, sessionID string) (string, error)
	ValidateAccessTokenFunc func(token string) (*domain.TokenClaims, error)
}

func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) GenerateAccessToken(userID uint, role string, sessionID string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role, sessionID)
	}
	return "mock_access_token", nil
}

func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	return nil, domain.ErrTokenInvalid
}

// MockIssueThrottle implements domain.IssueThrottle for testing. The default
// always allows issuance.
type MockIssueThrottle struct {
	CanIssueFunc   func(ctx context.Context, key string) (bool, int64, error)
	MarkIssuedFunc func(ctx context.Context, key string) error

	Marked []string
}

func NewMockIssueThrottle() *MockIssueThrottle {
	return &MockIssueThrottle{}
}

func (m *MockIssueThrottle) CanIssue(ctx context.Context, key string) (bool, int64, error) {
	if m.CanIssueFunc != nil {
		return m.CanIssueFunc(ctx, key)
	}
	return true, 0, nil
}

func (m *MockIssueThrottle) MarkIssued(ctx context.Context, key string) error {
	if m.MarkIssuedFunc != nil {
		return m.MarkIssuedFunc(ctx, key)
	}
	m.Marked = append(m.Marked, key)
	return nil
}

// MockTokenLedger implements domain.TokenLedger for testing.
type MockTokenLedger struct {
	IssueFunc  func(ctx context.Context, purpose domain.CodePurpose, ttl time.Duration, meta domain.IssueMetadata) (*domain.VerificationCode, error)
	PeekFunc   func(ctx context.Context, purpose domain.CodePurpose, code string) (*domain.VerificationCode, error)
	RedeemFunc func(ctx context.Context, purpose domain.CodePurpose, code string, redeemer domain.RedeemContext) (*domain.VerificationCode, error)
	ExpireFunc func(ctx context.Context, now time.Time) (int64, error)
}

func NewMockTokenLedger() *MockTokenLedger {
	return &MockTokenLedger{}
}

func (m *MockTokenLedger) Issue(ctx context.Context, purpose domain.CodePurpose, ttl time.Duration, meta domain.IssueMetadata) (*domain.VerificationCode, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, purpose, ttl, meta)
	}
	now := time.Now()
	return &domain.VerificationCode{
		ID:            1,
		Code:          "482913",
		Purpose:       purpose,
		SubjectID:     meta.SubjectID,
		ChannelID:     meta.ChannelID,
		ChannelHandle: meta.ChannelHandle,
		IssuedAt:      now,
		ExpiresAt:     now.Add(ttl),
	}, nil
}

func (m *MockTokenLedger) Peek(ctx context.Context, purpose domain.CodePurpose, code string) (*domain.VerificationCode, error) {
	if m.PeekFunc != nil {
		return m.PeekFunc(ctx, purpose, code)
	}
	return nil, domain.ErrCodeNotFound
}

func (m *MockTokenLedger) Redeem(ctx context.Context, purpose domain.CodePurpose, code string, redeemer domain.RedeemContext) (*domain.VerificationCode, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, purpose, code, redeemer)
	}
	return nil, domain.ErrCodeNotFound
}

func (m *MockTokenLedger) Expire(ctx context.Context, now time.Time) (int64, error) {
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx, now)
	}
	return 0, nil
}
