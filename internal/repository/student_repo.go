package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

const upsertBatchSize = 200

// StudentRepository provides access to roster entries.
type StudentRepository interface {
	FindByCourse(ctx context.Context, course string) ([]models.Student, error)
	FindByEmail(ctx context.Context, course, email string) (models.Student, error)
	Upsert(ctx context.Context, students []models.Student) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByCourse(ctx context.Context, course string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("course_name = ?", course).
		Order("id ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepository) FindByEmail(ctx context.Context, course, email string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("course_name = ? AND email = ?", course, email).
		First(&student).Error
	return student, err
}

// Upsert inserts students or replaces the roster fields of existing ones,
// keyed by course and email.
func (r *studentRepository) Upsert(ctx context.Context, students []models.Student) (int64, error) {
	if len(students) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_name"}, {Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "source_control_username", "project", "repo_name", "ta",
			"form_submitted", "experience_survey", "updated_at",
		}),
	})

	result := tx.CreateInBatches(&students, upsertBatchSize)
	return result.RowsAffected, result.Error
}
