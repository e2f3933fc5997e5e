package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/dto"
	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
)

// StudentService answers roster and sprint lookups. Sprint 0 selects every
// sprint; a positive sprint lists only students with data in that sprint.
type StudentService interface {
	List(ctx context.Context, course string, sprint int) ([]dto.StudentResponse, error)
	Get(ctx context.Context, course string, sprint int, email string) (dto.StudentResponse, error)
}

type studentService struct {
	repos  repository.Repositories
	cache  StudentCache
	logger zerolog.Logger
}

// NewStudentService constructs a student service. cache may be nil.
func NewStudentService(repos repository.Repositories, cache StudentCache, logger zerolog.Logger) StudentService {
	return &studentService{
		repos:  repos,
		cache:  cache,
		logger: logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) List(ctx context.Context, course string, sprint int) ([]dto.StudentResponse, error) {
	if sprint < 0 {
		return nil, ErrInvalidSprint
	}
	if err := s.ensureCourse(ctx, course); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached []dto.StudentResponse
		if s.cache.Get(ctx, course, sprint, &cached) {
			s.logger.Debug().Str("course", course).Int("sprint", sprint).Msg("students cache hit")
			return cached, nil
		}
	}

	students, err := s.repos.Students.FindByCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	records, err := s.repos.SprintRecords.Find(ctx, course, repository.SprintFilter{Sprint: sprint})
	if err != nil {
		return nil, err
	}

	result := joinStudents(students, records, sprint == 0)
	if s.cache != nil {
		s.cache.Set(ctx, course, sprint, result)
	}
	return result, nil
}

func (s *studentService) Get(ctx context.Context, course string, sprint int, email string) (dto.StudentResponse, error) {
	if sprint < 0 {
		return dto.StudentResponse{}, ErrInvalidSprint
	}
	if err := s.ensureCourse(ctx, course); err != nil {
		return dto.StudentResponse{}, err
	}

	var students []models.Student
	student, err := s.repos.Students.FindByEmail(ctx, course, email)
	switch {
	case err == nil:
		students = append(students, student)
	case !repository.IsNotFound(err):
		return dto.StudentResponse{}, err
	}

	records, err := s.repos.SprintRecords.Find(ctx, course, repository.SprintFilter{Sprint: sprint, Email: email})
	if err != nil {
		return dto.StudentResponse{}, err
	}

	result := joinStudents(students, records, sprint == 0)
	if len(result) == 0 {
		return dto.StudentResponse{}, ErrStudentNotFound
	}
	return result[0], nil
}

func (s *studentService) ensureCourse(ctx context.Context, course string) error {
	exists, err := s.repos.Courses.Exists(ctx, course)
	if err != nil {
		return err
	}
	if !exists {
		return ErrCourseNotFound
	}
	return nil
}

// joinStudents attaches sprint records to roster entries. With
// includeRoster every roster student is listed; otherwise only students with
// records are. Students known only from records follow in record order.
func joinStudents(students []models.Student, records []models.StudentSprintRecord, includeRoster bool) []dto.StudentResponse {
	result := make([]dto.StudentResponse, 0, len(students))
	position := make(map[string]int, len(students))
	roster := make(map[string]models.Student, len(students))
	for _, student := range students {
		roster[student.Email] = student
		if includeRoster {
			position[student.Email] = len(result)
			result = append(result, dto.NewStudentResponse(student))
		}
	}

	for _, record := range records {
		i, ok := position[record.Email]
		if !ok {
			entry := dto.StudentResponse{Email: record.Email, Sprints: []models.StudentSprintRecord{}}
			if student, onRoster := roster[record.Email]; onRoster {
				entry = dto.NewStudentResponse(student)
			}
			i = len(result)
			position[record.Email] = i
			result = append(result, entry)
		}
		result[i].Sprints = append(result[i].Sprints, record)
	}

	return result
}
