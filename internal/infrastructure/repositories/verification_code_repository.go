package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MontelAle/participium-sub002/domain"
)

// VerificationCodeRepositoryImpl implements domain.VerificationCodeRepository
// using GORM. Consume is a single conditional UPDATE guarded on the consumed
// flag, so concurrent redemptions of one code linearize at the database.
type VerificationCodeRepositoryImpl struct {
	db *gorm.DB
}

// DBVerificationCode is the database model for VerificationCode. The partial
// unique index keeps code values unique among unconsumed codes of the same
// purpose while letting consumed codes keep their historical value.
type DBVerificationCode struct {
	ID            uint   `gorm:"primaryKey"`
	Code          string `gorm:"size:16;index:idx_codes_live,unique,where:consumed = false"`
	Purpose       string `gorm:"size:32;index:idx_codes_live,unique,where:consumed = false"`
	SubjectID     *uint  `gorm:"index"`
	ChannelID     string `gorm:"size:64;index"`
	ChannelHandle string `gorm:"size:64"`
	BoundUserID   *uint
	IssuedAt      time.Time
	ExpiresAt     time.Time `gorm:"index"`
	Consumed      bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM.
func (DBVerificationCode) TableName() string {
	return "verification_codes"
}

// NewVerificationCodeRepository creates a new verification code repository.
func NewVerificationCodeRepository(db *gorm.DB) domain.VerificationCodeRepository {
	return &VerificationCodeRepositoryImpl{db: db}
}

// Create implements domain.VerificationCodeRepository. A duplicate-key
// violation on the live-code index surfaces as ErrCodeConflict so the
// ledger can retry with a fresh value.
func (r *VerificationCodeRepositoryImpl) Create(ctx context.Context, code *domain.VerificationCode) error {
	dbCode := domainToDB(code)
	if err := r.db.WithContext(ctx).Create(dbCode).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrCodeConflict
		}
		return err
	}
	code.ID = dbCode.ID
	return nil
}

// FindByCode implements domain.VerificationCodeRepository. When a consumed
// code shares its value with a newer live one, the newest issuance wins.
func (r *VerificationCodeRepositoryImpl) FindByCode(ctx context.Context, purpose domain.CodePurpose, code string) (*domain.VerificationCode, error) {
	var dbCode DBVerificationCode
	err := r.db.WithContext(ctx).
		Where("purpose = ? AND code = ?", string(purpose), code).
		Order("issued_at DESC").
		First(&dbCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	return dbToDomain(&dbCode), nil
}

// Consume implements domain.VerificationCodeRepository. The UPDATE only
// matches a live row; zero rows affected means the code was missing,
// already consumed, or expired, classified by a follow-up read.
func (r *VerificationCodeRepositoryImpl) Consume(ctx context.Context, purpose domain.CodePurpose, code string, now time.Time, boundUserID *uint) (*domain.VerificationCode, error) {
	updates := map[string]interface{}{"consumed": true}
	if boundUserID != nil {
		updates["bound_user_id"] = *boundUserID
	}

	res := r.db.WithContext(ctx).Model(&DBVerificationCode{}).
		Where("purpose = ? AND code = ? AND consumed = ? AND expires_at > ?",
			string(purpose), code, false, now).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume verification code: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		existing, err := r.FindByCode(ctx, purpose, code)
		if err != nil {
			return nil, err
		}
		if existing.Consumed {
			return nil, domain.ErrCodeConsumed
		}
		return nil, domain.ErrCodeExpired
	}

	consumed, err := r.FindByCode(ctx, purpose, code)
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

// DeleteExpiredBefore implements domain.VerificationCodeRepository.
func (r *VerificationCodeRepositoryImpl) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&DBVerificationCode{})
	return res.RowsAffected, res.Error
}

func domainToDB(code *domain.VerificationCode) *DBVerificationCode {
	return &DBVerificationCode{
		ID:            code.ID,
		Code:          code.Code,
		Purpose:       string(code.Purpose),
		SubjectID:     code.SubjectID,
		ChannelID:     code.ChannelID,
		ChannelHandle: code.ChannelHandle,
		BoundUserID:   code.BoundUserID,
		IssuedAt:      code.IssuedAt,
		ExpiresAt:     code.ExpiresAt,
		Consumed:      code.Consumed,
	}
}

func dbToDomain(dbCode *DBVerificationCode) *domain.VerificationCode {
	return &domain.VerificationCode{
		ID:            dbCode.ID,
		Code:          dbCode.Code,
		Purpose:       domain.CodePurpose(dbCode.Purpose),
		SubjectID:     dbCode.SubjectID,
		ChannelID:     dbCode.ChannelID,
		ChannelHandle: dbCode.ChannelHandle,
		BoundUserID:   dbCode.BoundUserID,
		IssuedAt:      dbCode.IssuedAt,
		ExpiresAt:     dbCode.ExpiresAt,
		Consumed:      dbCode.Consumed,
	}
}
