package mocks

import (
	"context"

	"github.com/MontelAle/participium-sub002/domain"
)

// MockUserRepository implements domain.UserRepository for testing.
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *domain.User) error
	FindByEmailFunc   func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc      func(ctx context.Context, id uint) (*domain.User, error)
	UpdateFunc        func(ctx context.Context, user *domain.User) error
	ActivateEmailFunc func(ctx context.Context, userID uint) error
	ListAllFunc       func(ctx context.Context) ([]domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) ActivateEmail(ctx context.Context, userID uint) error {
	if m.ActivateEmailFunc != nil {
		return m.ActivateEmailFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}
