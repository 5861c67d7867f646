package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MontelAle/participium-sub002/domain"
	"github.com/MontelAle/participium-sub002/internal/mocks"
)

func createLedgerForTest(t *testing.T) (*TokenLedgerImpl, *mocks.MockVerificationCodeRepository) {
	t.Helper()

	repo := mocks.NewMockVerificationCodeRepository()
	ledger := NewTokenLedger(repo, DefaultLedgerConfig(), zap.NewNop())
	return ledger, repo
}

func TestTokenLedgerImpl_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("email verification code is 6 numeric digits", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		subject := uint(7)

		vc, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute,
			domain.IssueMetadata{SubjectID: &subject})
		require.NoError(t, err)

		assert.Len(t, vc.Code, 6)
		for _, r := range vc.Code {
			assert.Contains(t, numericAlphabet, string(r))
		}
		require.NotNil(t, vc.SubjectID)
		assert.Equal(t, uint(7), *vc.SubjectID)
		assert.False(t, vc.Consumed)
		assert.Equal(t, vc.IssuedAt.Add(30*time.Minute), vc.ExpiresAt)
	})

	t.Run("account link code uses the wider alphabet", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)

		vc, err := ledger.Issue(ctx, domain.PurposeAccountLink, 15*time.Minute,
			domain.IssueMetadata{ChannelID: "chan-1", ChannelHandle: "@citizen"})
		require.NoError(t, err)

		assert.Len(t, vc.Code, 6)
		for _, r := range vc.Code {
			assert.Contains(t, linkAlphabet, string(r))
		}
		assert.Equal(t, "chan-1", vc.ChannelID)
		assert.Equal(t, "@citizen", vc.ChannelHandle)
		assert.Nil(t, vc.SubjectID)
	})

	t.Run("collision retries with a fresh value", func(t *testing.T) {
		ledger, repo := createLedgerForTest(t)

		conflicts := 2
		repo.CreateFunc = func(ctx context.Context, code *domain.VerificationCode) error {
			if conflicts > 0 {
				conflicts--
				return domain.ErrCodeConflict
			}
			return nil
		}

		values := []string{}
		ledger.generate = func(spec CodeSpec) (string, error) {
			values = append(values, strings.Repeat("1", spec.Length))
			return values[len(values)-1], nil
		}

		_, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute, domain.IssueMetadata{})
		require.NoError(t, err)
		assert.Equal(t, 3, len(values), "one generation per attempt")
	})

	t.Run("exhausted retries surface ErrCodeConflict", func(t *testing.T) {
		ledger, repo := createLedgerForTest(t)
		repo.CreateFunc = func(ctx context.Context, code *domain.VerificationCode) error {
			return domain.ErrCodeConflict
		}

		_, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute, domain.IssueMetadata{})
		assert.ErrorIs(t, err, domain.ErrCodeConflict)
	})

	t.Run("unknown purpose is rejected", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		_, err := ledger.Issue(ctx, domain.CodePurpose("password_reset"), time.Minute, domain.IssueMetadata{})
		assert.Error(t, err)
	})

	t.Run("issuing for the same subject yields distinct live values", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		subject := uint(1)

		first, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute,
			domain.IssueMetadata{SubjectID: &subject})
		require.NoError(t, err)

		// Force the second issuance to start from the first value so the
		// conflict path must regenerate.
		attempt := 0
		ledger.generate = func(spec CodeSpec) (string, error) {
			attempt++
			if attempt == 1 {
				return first.Code, nil
			}
			return generateSecureCode(spec)
		}

		second, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute,
			domain.IssueMetadata{SubjectID: &subject})
		require.NoError(t, err)
		assert.NotEqual(t, first.Code, second.Code)
	})
}

func TestTokenLedgerImpl_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("redeems once then reports AlreadyConsumed", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		subject := uint(3)
		vc, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute,
			domain.IssueMetadata{SubjectID: &subject})
		require.NoError(t, err)

		redeemed, err := ledger.Redeem(ctx, domain.PurposeEmailVerification, vc.Code, domain.RedeemContext{})
		require.NoError(t, err)
		assert.True(t, redeemed.Consumed)

		_, err = ledger.Redeem(ctx, domain.PurposeEmailVerification, vc.Code, domain.RedeemContext{})
		assert.ErrorIs(t, err, domain.ErrCodeConsumed)
	})

	t.Run("unknown code reports NotFound", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		_, err := ledger.Redeem(ctx, domain.PurposeEmailVerification, "000000", domain.RedeemContext{})
		assert.ErrorIs(t, err, domain.ErrCodeNotFound)
	})

	t.Run("purpose namespaces lookups", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		vc, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute, domain.IssueMetadata{})
		require.NoError(t, err)

		_, err = ledger.Redeem(ctx, domain.PurposeAccountLink, vc.Code, domain.RedeemContext{})
		assert.ErrorIs(t, err, domain.ErrCodeNotFound)
	})

	t.Run("expiry boundary", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		issuedAt := time.Now()
		ttl := 30 * time.Minute

		ledger.now = func() time.Time { return issuedAt }
		vc, err := ledger.Issue(ctx, domain.PurposeEmailVerification, ttl, domain.IssueMetadata{})
		require.NoError(t, err)

		// Just past the TTL: expired, consumed flag untouched.
		ledger.now = func() time.Time { return issuedAt.Add(ttl + time.Second) }
		_, err = ledger.Redeem(ctx, domain.PurposeEmailVerification, vc.Code, domain.RedeemContext{})
		assert.ErrorIs(t, err, domain.ErrCodeExpired)

		peeked, err := ledger.Peek(ctx, domain.PurposeEmailVerification, vc.Code)
		require.NoError(t, err)
		assert.False(t, peeked.Consumed)

		// Just inside the TTL: still redeemable.
		ledger.now = func() time.Time { return issuedAt.Add(ttl - time.Second) }
		redeemed, err := ledger.Redeem(ctx, domain.PurposeEmailVerification, vc.Code, domain.RedeemContext{})
		require.NoError(t, err)
		assert.True(t, redeemed.Consumed)
	})

	t.Run("link redemption binds the redeeming user", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		vc, err := ledger.Issue(ctx, domain.PurposeAccountLink, 15*time.Minute,
			domain.IssueMetadata{ChannelID: "chan-9"})
		require.NoError(t, err)

		userID := uint(42)
		redeemed, err := ledger.Redeem(ctx, domain.PurposeAccountLink, vc.Code,
			domain.RedeemContext{UserID: &userID})
		require.NoError(t, err)
		require.NotNil(t, redeemed.BoundUserID)
		assert.Equal(t, uint(42), *redeemed.BoundUserID)
	})

	t.Run("concurrent redemption yields exactly one success", func(t *testing.T) {
		ledger, _ := createLedgerForTest(t)
		vc, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute, domain.IssueMetadata{})
		require.NoError(t, err)

		const attempts = 32
		var wg sync.WaitGroup
		results := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := ledger.Redeem(ctx, domain.PurposeEmailVerification, vc.Code, domain.RedeemContext{})
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		successes, consumedErrs := 0, 0
		for err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrCodeConsumed):
				consumedErrs++
			default:
				t.Fatalf("unexpected redemption error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, attempts-1, consumedErrs)
	})
}

func TestTokenLedgerImpl_Peek(t *testing.T) {
	ctx := context.Background()
	ledger, _ := createLedgerForTest(t)

	vc, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 30*time.Minute, domain.IssueMetadata{})
	require.NoError(t, err)

	peeked, err := ledger.Peek(ctx, domain.PurposeEmailVerification, vc.Code)
	require.NoError(t, err)
	assert.False(t, peeked.Consumed)

	_, err = ledger.Redeem(ctx, domain.PurposeEmailVerification, vc.Code, domain.RedeemContext{})
	require.NoError(t, err)

	peeked, err = ledger.Peek(ctx, domain.PurposeEmailVerification, vc.Code)
	require.NoError(t, err)
	assert.True(t, peeked.Consumed, "peek after redemption sees the consumed flag")
}

func TestTokenLedgerImpl_Expire(t *testing.T) {
	ctx := context.Background()
	ledger, _ := createLedgerForTest(t)
	issuedAt := time.Now()
	ledger.now = func() time.Time { return issuedAt }

	short, err := ledger.Issue(ctx, domain.PurposeEmailVerification, time.Minute, domain.IssueMetadata{})
	require.NoError(t, err)
	long, err := ledger.Issue(ctx, domain.PurposeEmailVerification, 48*time.Hour, domain.IssueMetadata{})
	require.NoError(t, err)

	// Inside the grace window nothing is purged even though the short code
	// already expired.
	purged, err := ledger.Expire(ctx, issuedAt.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = ledger.Expire(ctx, issuedAt.Add(25*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = ledger.Peek(ctx, domain.PurposeEmailVerification, short.Code)
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
	_, err = ledger.Peek(ctx, domain.PurposeEmailVerification, long.Code)
	assert.NoError(t, err)
}
