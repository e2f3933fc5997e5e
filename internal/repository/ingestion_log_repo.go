package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

// IngestionLogRepository keeps the upload history of each course.
type IngestionLogRepository interface {
	Create(ctx context.Context, entry *models.IngestionLog) error
	List(ctx context.Context, course string) ([]models.IngestionLog, error)
}

type ingestionLogRepository struct {
	db *gorm.DB
}

// NewIngestionLogRepository constructs an ingestion log repository.
func NewIngestionLogRepository(db *gorm.DB) IngestionLogRepository {
	return &ingestionLogRepository{db: db}
}

func (r *ingestionLogRepository) Create(ctx context.Context, entry *models.IngestionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ingestionLogRepository) List(ctx context.Context, course string) ([]models.IngestionLog, error) {
	var entries []models.IngestionLog
	err := r.db.WithContext(ctx).
		Where("course_name = ?", course).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}
