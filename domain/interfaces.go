package domain

import (
	"context"
	"time"
)

// IssueMetadata carries the purpose-specific attributes bound to a code at
// issue time. SubjectID is set for email verification; ChannelID and
// ChannelHandle for account linking.
type IssueMetadata struct {
	SubjectID     *uint
	ChannelID     string
	ChannelHandle string
}

// RedeemContext identifies the redeeming caller. UserID is required for
// account-link redemption and ignored for email verification.
type RedeemContext struct {
	UserID *uint
}

// TokenLedger issues and redeems single-use, time-bounded codes. It is
// purpose-agnostic: callers decide TTLs and what a redeemed code means.
type TokenLedger interface {
	// Issue persists a fresh unconsumed code. Returns ErrCodeConflict when
	// generated values keep colliding with live codes of the same purpose.
	Issue(ctx context.Context, purpose CodePurpose, ttl time.Duration, meta IssueMetadata) (*VerificationCode, error)
	// Peek is a read-only lookup that never mutates state.
	Peek(ctx context.Context, purpose CodePurpose, code string) (*VerificationCode, error)
	// Redeem atomically consumes the code. Exactly one concurrent attempt
	// succeeds; the rest observe ErrCodeConsumed. Expired codes fail with
	// ErrCodeExpired, unknown ones with ErrCodeNotFound.
	Redeem(ctx context.Context, purpose CodePurpose, code string, redeemer RedeemContext) (*VerificationCode, error)
	// Expire purges codes whose expiry plus the grace window is behind now.
	Expire(ctx context.Context, now time.Time) (int64, error)
}

// VerificationCodeRepository is the storage port behind the token ledger.
// Implementations must back Consume with a single conditional update so the
// consumed flag flips at most once under concurrency.
type VerificationCodeRepository interface {
	// Create persists a new code. Returns ErrCodeConflict if the code value
	// collides with a live (unconsumed, unexpired) code of the same purpose.
	Create(ctx context.Context, code *VerificationCode) error
	FindByCode(ctx context.Context, purpose CodePurpose, code string) (*VerificationCode, error)
	// Consume flips consumed false->true iff the code is live at now,
	// binding boundUserID in the same step when non-nil. Failures are
	// classified as ErrCodeNotFound, ErrCodeExpired or ErrCodeConsumed.
	Consume(ctx context.Context, purpose CodePurpose, code string, now time.Time, boundUserID *uint) (*VerificationCode, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserRepository defines account data access.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	ActivateEmail(ctx context.Context, userID uint) error
	ListAll(ctx context.Context) ([]User, error)
}

// ReportRepository defines read access to reports for list endpoints. The
// visibility filter is applied on top of what this port returns.
type ReportRepository interface {
	ListAll(ctx context.Context) ([]Report, error)
	FindByID(ctx context.Context, id uint) (*Report, error)
}

// SessionRepository defines session data access.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// ChatLinkRepository persists channel-to-account bindings created by
// account-link redemption.
type ChatLinkRepository interface {
	Create(ctx context.Context, link *ChatLink) error
	FindByChannelID(ctx context.Context, channelID string) (*ChatLink, error)
	FindByUserID(ctx context.Context, userID uint) ([]ChatLink, error)
}

// AccountService defines registration and email-verification business logic.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*User, error)
	VerifyEmail(ctx context.Context, code string) (*User, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// ChatLinkService defines account-link code flows.
type ChatLinkService interface {
	IssueLinkCode(ctx context.Context, channelID, channelHandle string) (*VerificationCode, error)
	RedeemLinkCode(ctx context.Context, code string, userID uint) (*ChatLink, error)
}

// NotificationService defines outbound delivery of issued codes.
type NotificationService interface {
	SendEmail(to, subject, body string) error
}

// PasswordService defines password hashing.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines access-token operations backing principal resolution.
type TokenService interface {
	GenerateAccessToken(userID uint, role string, sessionID string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// IssueThrottle rate-limits code issuance per subject key.
type IssueThrottle interface {
	// CanIssue reports whether a new code may be issued for key; when false
	// the second return value is the wait in seconds.
	CanIssue(ctx context.Context, key string) (bool, int64, error)
	MarkIssued(ctx context.Context, key string) error
}
