package domain

import "time"

// CodePurpose identifies what a verification code was issued for. The
// purpose governs the code's character set and TTL and namespaces lookups,
// so an email-verification code can never redeem an account link.
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposeAccountLink       CodePurpose = "account_link"
)

// VerificationCode is a single-use, time-bounded code. Consumed flips
// false->true exactly once; a code past ExpiresAt is never valid even
// while Consumed is still false.
type VerificationCode struct {
	ID            uint
	Code          string
	Purpose       CodePurpose
	SubjectID     *uint  // account being verified (EmailVerification)
	ChannelID     string // external chat channel (AccountLink)
	ChannelHandle string
	BoundUserID   *uint // set by the redeeming caller (AccountLink)
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Consumed      bool
}

// Expired reports whether the code is past its TTL at the given instant.
func (c *VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Principal is the resolved actor behind a request. A nil *Principal means
// an unauthenticated (guest) caller.
type Principal struct {
	ID       uint
	Role     *Role
	OfficeID *uint
}

// RoleName returns the principal's role name, or "" when the principal or
// its role is absent.
func (p *Principal) RoleName() string {
	if p == nil || p.Role == nil {
		return ""
	}
	return p.Role.Name
}

// ReportStatus is the workflow state of a citizen report.
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in_progress"
	StatusResolved   ReportStatus = "resolved"
	StatusRejected   ReportStatus = "rejected"
	StatusAssigned   ReportStatus = "assigned"
)

// Report carries the attributes the visibility filter and list endpoints
// need. The full report aggregate (photos, comments, assignment history)
// lives outside this subsystem.
type Report struct {
	ID           uint
	ExternalID   string
	Title        string
	Address      string
	Status       ReportStatus
	UserID       uint
	CategoryID   uint
	CategoryName string
	CreatedAt    time.Time
}

// User represents an account in the registration/verification flow.
type User struct {
	ID            uint
	Email         string
	PasswordHash  string
	Role          string
	IsActive      bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session represents an authenticated session backing principal resolution.
type Session struct {
	ID        string
	UserID    uint
	Role      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ChatLink binds an external chat channel to a user account. Created when
// an account-link code is redeemed.
type ChatLink struct {
	ID            uint
	UserID        uint
	ChannelID     string
	ChannelHandle string
	CreatedAt     time.Time
}

// AuthResult represents a successful login.
type AuthResult struct {
	User        *User
	AccessToken string
	SessionID   string
	ExpiresIn   int64
}

// TokenClaims represents validated access-token claims.
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
