package repository

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
)

// CourseRepository persists courses and their sprint metadata.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	Get(ctx context.Context, name string) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	SetRosterFileName(ctx context.Context, name, fileName string) error
	CreateSprint(ctx context.Context, sprint *models.Sprint) error
	ListSprints(ctx context.Context, course string) ([]models.Sprint, error)
	SprintNumbers(ctx context.Context, course string) ([]int, error)
	SetSprintFileName(ctx context.Context, course string, sprint int, fileName string) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Get(ctx context.Context, name string) (models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&course).Error
	return course, err
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).Order("name ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Model(course).
		Select("roster_file_name", "use_github", "use_team_structure", "use_student_experience_form", "survey_columns").
		Updates(course).Error
}

// Delete removes a course together with everything recorded for it.
func (r *courseRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("name = ?", name).Delete(&models.Course{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		for _, model := range []interface{}{&models.Sprint{}, &models.Student{}, &models.StudentSprintRecord{}, &models.IngestionLog{}} {
			if err := tx.Where("course_name = ?", name).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *courseRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *courseRepository) SetRosterFileName(ctx context.Context, name, fileName string) error {
	result := r.db.WithContext(ctx).Model(&models.Course{}).
		Where("name = ?", name).
		Update("roster_file_name", fileName)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) CreateSprint(ctx context.Context, sprint *models.Sprint) error {
	return r.db.WithContext(ctx).Create(sprint).Error
}

func (r *courseRepository) ListSprints(ctx context.Context, course string) ([]models.Sprint, error) {
	var sprints []models.Sprint
	err := r.db.WithContext(ctx).
		Where("course_name = ?", course).
		Order("sprint_number ASC").
		Find(&sprints).Error
	return sprints, err
}

// SprintNumbers lists every sprint that has metadata or stored records.
func (r *courseRepository) SprintNumbers(ctx context.Context, course string) ([]int, error) {
	var fromMetadata []int
	if err := r.db.WithContext(ctx).Model(&models.Sprint{}).
		Where("course_name = ?", course).
		Pluck("sprint_number", &fromMetadata).Error; err != nil {
		return nil, err
	}

	var fromRecords []int
	if err := r.db.WithContext(ctx).Model(&models.StudentSprintRecord{}).
		Where("course_name = ?", course).
		Distinct().
		Pluck("sprint", &fromRecords).Error; err != nil {
		return nil, err
	}

	return mergeSorted(fromMetadata, fromRecords), nil
}

// SetSprintFileName records the uploaded file of a sprint, creating the sprint
// metadata row when the sprint was never declared.
func (r *courseRepository) SetSprintFileName(ctx context.Context, course string, sprint int, fileName string) error {
	row := models.Sprint{CourseName: course, SprintNumber: sprint, SprintFileName: fileName}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_name"}, {Name: "sprint_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"sprint_file_name", "updated_at"}),
	}).Create(&row).Error
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func mergeSorted(a, b []int) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	merged := make([]int, 0, len(a)+len(b))
	for _, list := range [][]int{a, b} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
	}
	sort.Ints(merged)
	return merged
}
