package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
)

const (
	numericAlphabet = "0123456789"
	// Link codes live longer, so they draw from a wider alphabet to keep
	// the collision probability down over the exposure window. Ambiguous
	// characters (0/O, 1/I) are left out since users retype these by hand.
	linkAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// CodeSpec describes how code values are generated for a purpose.
type CodeSpec struct {
	Length   int
	Alphabet string
}

// LedgerConfig configures the token ledger.
type LedgerConfig struct {
	// IssueRetries bounds how many fresh values Issue tries before giving
	// up with ErrCodeConflict.
	IssueRetries int
	// ExpireGrace is how long past expiry a code is kept before the sweep
	// purges it. Expiry itself is enforced at redemption time.
	ExpireGrace time.Duration
	Specs       map[domain.CodePurpose]CodeSpec
}

// DefaultLedgerConfig returns the production code specs: 6-digit numeric
// email-verification codes and 6-character alphanumeric link codes.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		IssueRetries: 3,
		ExpireGrace:  24 * time.Hour,
		Specs: map[domain.CodePurpose]CodeSpec{
			domain.PurposeEmailVerification: {Length: 6, Alphabet: numericAlphabet},
			domain.PurposeAccountLink:       {Length: 6, Alphabet: linkAlphabet},
		},
	}
}

// TokenLedgerImpl implements domain.TokenLedger on top of a code repository.
// All atomicity lives in the repository; the ledger owns code generation,
// retry-on-collision and the expiry sweep.
type TokenLedgerImpl struct {
	codes  domain.VerificationCodeRepository
	config LedgerConfig
	logger *zap.Logger

	// overridable for tests
	now      func() time.Time
	generate func(spec CodeSpec) (string, error)
}

// NewTokenLedger creates a token ledger.
func NewTokenLedger(codes domain.VerificationCodeRepository, config LedgerConfig, logger *zap.Logger) *TokenLedgerImpl {
	return &TokenLedgerImpl{
		codes:    codes,
		config:   config,
		logger:   logger,
		now:      time.Now,
		generate: generateSecureCode,
	}
}

// Issue implements domain.TokenLedger.
func (l *TokenLedgerImpl) Issue(ctx context.Context, purpose domain.CodePurpose, ttl time.Duration, meta domain.IssueMetadata) (*domain.VerificationCode, error) {
	spec, ok := l.config.Specs[purpose]
	if !ok {
		return nil, fmt.Errorf("no code spec for purpose %q", purpose)
	}

	retries := l.config.IssueRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 0; attempt < retries; attempt++ {
		value, err := l.generate(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to generate code value: %w", err)
		}

		now := l.now()
		code := &domain.VerificationCode{
			Code:          value,
			Purpose:       purpose,
			SubjectID:     meta.SubjectID,
			ChannelID:     meta.ChannelID,
			ChannelHandle: meta.ChannelHandle,
			IssuedAt:      now,
			ExpiresAt:     now.Add(ttl),
		}

		err = l.codes.Create(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, domain.ErrCodeConflict) {
			return nil, fmt.Errorf("failed to store verification code: %w", err)
		}
		l.logger.Warn("code value collided with a live code, regenerating",
			zap.String("purpose", string(purpose)),
			zap.Int("attempt", attempt+1))
	}

	l.logger.Error("code issuance exhausted collision retries",
		zap.String("purpose", string(purpose)),
		zap.Int("retries", retries))
	return nil, domain.ErrCodeConflict
}

// Peek implements domain.TokenLedger. It never mutates state.
func (l *TokenLedgerImpl) Peek(ctx context.Context, purpose domain.CodePurpose, code string) (*domain.VerificationCode, error) {
	return l.codes.FindByCode(ctx, purpose, code)
}

// Redeem implements domain.TokenLedger. The consumed flag flips in a single
// conditional update inside the repository, so concurrent attempts on the
// same code yield exactly one success.
func (l *TokenLedgerImpl) Redeem(ctx context.Context, purpose domain.CodePurpose, code string, redeemer domain.RedeemContext) (*domain.VerificationCode, error) {
	vc, err := l.codes.Consume(ctx, purpose, code, l.now(), redeemer.UserID)
	if err != nil {
		return nil, err
	}
	return vc, nil
}

// Expire purges codes whose expiry plus the grace window lies before now.
// Safe to run concurrently with Issue and Redeem: it only touches codes no
// redemption could still legitimately consume.
func (l *TokenLedgerImpl) Expire(ctx context.Context, now time.Time) (int64, error) {
	purged, err := l.codes.DeleteExpiredBefore(ctx, now.Add(-l.config.ExpireGrace))
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired codes: %w", err)
	}
	if purged > 0 {
		l.logger.Info("purged expired verification codes", zap.Int64("count", purged))
	}
	return purged, nil
}

// RunSweeper runs the expiry sweep on a fixed interval until ctx is done.
func (l *TokenLedgerImpl) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := l.Expire(ctx, l.now()); err != nil {
				l.logger.Error("verification code sweep failed", zap.Error(err))
			}
		}
	}
}

// generateSecureCode draws each character uniformly from the spec alphabet
// using crypto/rand. A deterministic counter would make codes guessable
// across requests for the same subject in the same window.
func generateSecureCode(spec CodeSpec) (string, error) {
	buf := make([]byte, spec.Length)
	max := big.NewInt(int64(len(spec.Alphabet)))
	for i := 0; i < spec.Length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		buf[i] = spec.Alphabet[n.Int64()]
	}
	return string(buf), nil
}
