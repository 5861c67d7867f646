package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MontelAle/participium-sub002/domain"
)

// ChatLinkRepositoryImpl implements domain.ChatLinkRepository using GORM.
type ChatLinkRepositoryImpl struct {
	db *gorm.DB
}

// DBChatLink is the database model for ChatLink. A channel binds to at most
// one account, enforced by the unique index.
type DBChatLink struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"index"`
	ChannelID     string `gorm:"uniqueIndex;size:64"`
	ChannelHandle string `gorm:"size:64"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM.
func (DBChatLink) TableName() string {
	return "chat_links"
}

// NewChatLinkRepository creates a new chat link repository.
func NewChatLinkRepository(db *gorm.DB) domain.ChatLinkRepository {
	return &ChatLinkRepositoryImpl{db: db}
}

// Create implements domain.ChatLinkRepository.
func (r *ChatLinkRepositoryImpl) Create(ctx context.Context, link *domain.ChatLink) error {
	dbLink := &DBChatLink{
		UserID:        link.UserID,
		ChannelID:     link.ChannelID,
		ChannelHandle: link.ChannelHandle,
		CreatedAt:     link.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(dbLink).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrLinkAlreadyBound
		}
		return err
	}
	link.ID = dbLink.ID
	return nil
}

// FindByChannelID implements domain.ChatLinkRepository.
func (r *ChatLinkRepositoryImpl) FindByChannelID(ctx context.Context, channelID string) (*domain.ChatLink, error) {
	var dbLink DBChatLink
	err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&dbLink).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, err
	}
	return linkToDomain(&dbLink), nil
}

// FindByUserID implements domain.ChatLinkRepository.
func (r *ChatLinkRepositoryImpl) FindByUserID(ctx context.Context, userID uint) ([]domain.ChatLink, error) {
	var dbLinks []DBChatLink
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&dbLinks).Error; err != nil {
		return nil, err
	}
	links := make([]domain.ChatLink, 0, len(dbLinks))
	for i := range dbLinks {
		links = append(links, *linkToDomain(&dbLinks[i]))
	}
	return links, nil
}

func linkToDomain(dbLink *DBChatLink) *domain.ChatLink {
	return &domain.ChatLink{
		ID:            dbLink.ID,
		UserID:        dbLink.UserID,
		ChannelID:     dbLink.ChannelID,
		ChannelHandle: dbLink.ChannelHandle,
		CreatedAt:     dbLink.CreatedAt,
	}
}
