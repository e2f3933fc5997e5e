package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories that share one database handle.
type Repositories struct {
	Courses       CourseRepository
	Students      StudentRepository
	SprintRecords SprintRecordRepository
	IngestionLogs IngestionLogRepository
}

// Store hands out repositories and runs units of work in a transaction.
type Store interface {
	Repositories() Repositories
	Transaction(ctx context.Context, fn func(Repositories) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by gorm.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Repositories() Repositories {
	return newRepositories(s.db)
}

// Transaction runs fn with repositories bound to a single transaction that
// commits only when fn returns nil.
func (s *gormStore) Transaction(ctx context.Context, fn func(Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Courses:       NewCourseRepository(db),
		Students:      NewStudentRepository(db),
		SprintRecords: NewSprintRecordRepository(db),
		IngestionLogs: NewIngestionLogRepository(db),
	}
}
