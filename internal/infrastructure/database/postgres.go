package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MontelAle/participium-sub002/internal/infrastructure/repositories"
)

// Open creates a new database connection. TranslateError is on so driver
// duplicate-key violations surface as gorm.ErrDuplicatedKey, which the
// repositories map to domain conflicts.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate creates or updates all tables this subsystem owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&repositories.DBUser{},
		&repositories.DBVerificationCode{},
		&repositories.DBChatLink{},
		&repositories.DBReport{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
