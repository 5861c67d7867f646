package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/MontelAle/participium-sub002/domain"
)

// MockVerificationCodeRepository implements domain.VerificationCodeRepository
// for testing. Without overrides it behaves as an in-memory store with the
// same single-consume guarantee as the real repository.
type MockVerificationCodeRepository struct {
	CreateFunc              func(ctx context.Context, code *domain.VerificationCode) error
	FindByCodeFunc          func(ctx context.Context, purpose domain.CodePurpose, code string) (*domain.VerificationCode, error)
	ConsumeFunc             func(ctx context.Context, purpose domain.CodePurpose, code string, now time.Time, boundUserID *uint) (*domain.VerificationCode, error)
	DeleteExpiredBeforeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	mu     sync.Mutex
	nextID uint
	codes  []*domain.VerificationCode
}

// NewMockVerificationCodeRepository creates a new mock code repository.
func NewMockVerificationCodeRepository() *MockVerificationCodeRepository {
	return &MockVerificationCodeRepository{}
}

// Create stores a code, enforcing uniqueness among unconsumed codes of the
// same purpose.
func (m *MockVerificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.Purpose == code.Purpose && c.Code == code.Code && !c.Consumed {
			return domain.ErrCodeConflict
		}
	}
	m.nextID++
	stored := *code
	stored.ID = m.nextID
	m.codes = append(m.codes, &stored)
	code.ID = stored.ID
	return nil
}

// FindByCode returns the newest code with the given value.
func (m *MockVerificationCodeRepository) FindByCode(ctx context.Context, purpose domain.CodePurpose, code string) (*domain.VerificationCode, error) {
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, purpose, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *domain.VerificationCode
	for _, c := range m.codes {
		if c.Purpose == purpose && c.Code == code {
			if found == nil || c.IssuedAt.After(found.IssuedAt) {
				found = c
			}
		}
	}
	if found == nil {
		return nil, domain.ErrCodeNotFound
	}
	out := *found
	return &out, nil
}

// Consume flips the consumed flag at most once under the mock's lock.
func (m *MockVerificationCodeRepository) Consume(ctx context.Context, purpose domain.CodePurpose, code string, now time.Time, boundUserID *uint) (*domain.VerificationCode, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, purpose, code, now, boundUserID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *domain.VerificationCode
	for _, c := range m.codes {
		if c.Purpose == purpose && c.Code == code {
			if found == nil || c.IssuedAt.After(found.IssuedAt) {
				found = c
			}
		}
	}
	if found == nil {
		return nil, domain.ErrCodeNotFound
	}
	if found.Consumed {
		return nil, domain.ErrCodeConsumed
	}
	if now.After(found.ExpiresAt) {
		return nil, domain.ErrCodeExpired
	}
	found.Consumed = true
	if boundUserID != nil {
		id := *boundUserID
		found.BoundUserID = &id
	}
	out := *found
	return &out, nil
}

// DeleteExpiredBefore drops codes expired before the cutoff.
func (m *MockVerificationCodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.DeleteExpiredBeforeFunc != nil {
		return m.DeleteExpiredBeforeFunc(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*domain.VerificationCode
	var purged int64
	for _, c := range m.codes {
		if c.ExpiresAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, c)
	}
	m.codes = kept
	return purged, nil
}
