package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/MontelAle/participium-sub002/domain"
)

// ReportRepositoryImpl implements domain.ReportRepository using GORM. The
// visibility filter runs on top of what this repository returns; queries
// here never encode role rules.
type ReportRepositoryImpl struct {
	db *gorm.DB
}

// DBReport is the database model for the report attributes this subsystem
// consumes.
type DBReport struct {
	ID           uint      `gorm:"primaryKey"`
	ExternalID   string    `gorm:"uniqueIndex;size:36"`
	Title        string    `gorm:"size:255"`
	Address      string    `gorm:"size:255"`
	Status       string    `gorm:"index;size:32"`
	UserID       uint      `gorm:"index"`
	CategoryID   uint      `gorm:"index"`
	CategoryName string    `gorm:"size:128"`
	CreatedAt    time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (DBReport) TableName() string {
	return "reports"
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) domain.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// ListAll implements domain.ReportRepository, newest first.
func (r *ReportRepositoryImpl) ListAll(ctx context.Context) ([]domain.Report, error) {
	var dbReports []DBReport
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&dbReports).Error; err != nil {
		return nil, err
	}
	reports := make([]domain.Report, 0, len(dbReports))
	for i := range dbReports {
		reports = append(reports, *reportToDomain(&dbReports[i]))
	}
	return reports, nil
}

// FindByID implements domain.ReportRepository.
func (r *ReportRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Report, error) {
	var dbReport DBReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbReport).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return reportToDomain(&dbReport), nil
}

func reportToDomain(dbReport *DBReport) *domain.Report {
	return &domain.Report{
		ID:           dbReport.ID,
		ExternalID:   dbReport.ExternalID,
		Title:        dbReport.Title,
		Address:      dbReport.Address,
		Status:       domain.ReportStatus(dbReport.Status),
		UserID:       dbReport.UserID,
		CategoryID:   dbReport.CategoryID,
		CategoryName: dbReport.CategoryName,
		CreatedAt:    dbReport.CreatedAt,
	}
}
