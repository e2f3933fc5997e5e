package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

// SprintFilter narrows sprint record lookups. Sprint 0 matches every sprint
// and an empty Email matches every student.
type SprintFilter struct {
	Sprint int
	Email  string
}

// SprintRecordRepository stores per-student sprint peer-review records.
type SprintRecordRepository interface {
	Find(ctx context.Context, course string, filter SprintFilter) ([]models.StudentSprintRecord, error)
	Upsert(ctx context.Context, records []models.StudentSprintRecord) (int64, error)
}

type sprintRecordRepository struct {
	db *gorm.DB
}

// NewSprintRecordRepository constructs a sprint record repository.
func NewSprintRecordRepository(db *gorm.DB) SprintRecordRepository {
	return &sprintRecordRepository{db: db}
}

func (r *sprintRecordRepository) Find(ctx context.Context, course string, filter SprintFilter) ([]models.StudentSprintRecord, error) {
	query := r.db.WithContext(ctx).Where("course_name = ?", course)
	if filter.Sprint > 0 {
		query = query.Where("sprint = ?", filter.Sprint)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}

	var records []models.StudentSprintRecord
	err := query.Order("sprint ASC").Order("id ASC").Find(&records).Error
	return records, err
}

// Upsert writes records keyed by course, email and sprint. Re-uploading a
// sprint replaces the stored reflections and reviews.
func (r *sprintRecordRepository) Upsert(ctx context.Context, records []models.StudentSprintRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_name"}, {Name: "email"}, {Name: "sprint"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"personal_peer_rev", "received_peer_revs", "avg_rating", "stddev_rating", "updated_at",
		}),
	})

	result := tx.CreateInBatches(&records, upsertBatchSize)
	return result.RowsAffected, result.Error
}
