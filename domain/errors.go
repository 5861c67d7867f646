package domain

import "errors"

// Verification code errors
var (
	ErrCodeNotFound = errors.New("verification code not found")
	ErrCodeExpired  = errors.New("verification code has expired")
	ErrCodeConsumed = errors.New("verification code already consumed")
	ErrCodeConflict = errors.New("verification code collision retries exhausted")
)

// Authorization errors
var (
	ErrNoPrincipalOrRole = errors.New("no principal or role")
	ErrRoleNotPermitted  = errors.New("role not permitted")
)

// Account errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrResendThrottled    = errors.New("verification resend throttled")
)

// Report errors
var (
	ErrReportNotFound = errors.New("report not found")
)

// Account-link errors
var (
	ErrLinkAlreadyBound = errors.New("channel already linked to an account")
	ErrLinkNotFound     = errors.New("chat link not found")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
)
