package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MontelAle/participium-sub002/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM.
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser is the database model for User.
type DBUser struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex;size:255"`
	PasswordHash  string `gorm:"column:password"`
	Role          string `gorm:"index;size:64"`
	IsActive      bool   `gorm:"index"`
	EmailVerified bool   `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM.
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := userToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID = dbUser.ID
	return nil
}

// FindByEmail implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(&dbUser), nil
}

// Update implements domain.UserRepository.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(userToDB(user)).Error
}

// ActivateEmail implements domain.UserRepository. Verification activates
// the account in the same step.
func (r *UserRepositoryImpl) ActivateEmail(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"email_verified": true, "is_active": true})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListAll implements domain.UserRepository.
func (r *UserRepositoryImpl) ListAll(ctx context.Context) ([]domain.User, error) {
	var dbUsers []DBUser
	if err := r.db.WithContext(ctx).Order("id").Find(&dbUsers).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, *userToDomain(&dbUsers[i]))
	}
	return users, nil
}

func userToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:            user.ID,
		Email:         user.Email,
		PasswordHash:  user.PasswordHash,
		Role:          user.Role,
		IsActive:      user.IsActive,
		EmailVerified: user.EmailVerified,
	}
}

func userToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:            dbUser.ID,
		Email:         dbUser.Email,
		PasswordHash:  dbUser.PasswordHash,
		Role:          dbUser.Role,
		IsActive:      dbUser.IsActive,
		EmailVerified: dbUser.EmailVerified,
		CreatedAt:     dbUser.CreatedAt,
		UpdatedAt:     dbUser.UpdatedAt,
	}
}
