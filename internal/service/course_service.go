package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/dto"
	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
)

// CourseService manages courses and their sprint metadata.
type CourseService interface {
	Create(ctx context.Context, req dto.CourseRequest) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, name string) (models.Course, error)
	Update(ctx context.Context, name string, req dto.CourseUpdateRequest) (models.Course, error)
	Delete(ctx context.Context, name string) error
	CreateSprint(ctx context.Context, course string, req dto.SprintRequest) (models.Sprint, error)
	ListSprints(ctx context.Context, course string) ([]models.Sprint, error)
}

type courseService struct {
	courses   repository.CourseRepository
	cache     StudentCache
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs a course service. cache may be nil.
func NewCourseService(courses repository.CourseRepository, cache StudentCache, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Create(ctx context.Context, req dto.CourseRequest) (models.Course, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return models.Course{}, err
	}

	exists, err := s.courses.Exists(ctx, req.Name)
	if err != nil {
		return models.Course{}, err
	}
	if exists {
		return models.Course{}, ErrCourseExists
	}

	course := models.Course{
		Name:                     req.Name,
		UseGithub:                req.UseGithub,
		UseTeamStructure:         req.UseTeamStructure,
		UseStudentExperienceForm: req.UseStudentExperienceForm,
		SurveyColumns:            surveyColumns(req.SurveyColumns),
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return models.Course{}, err
	}

	s.logger.Info().Str("course", course.Name).Msg("course created")
	return course, nil
}

func (s *courseService) List(ctx context.Context) ([]models.Course, error) {
	return s.courses.List(ctx)
}

func (s *courseService) Get(ctx context.Context, name string) (models.Course, error) {
	course, err := s.courses.Get(ctx, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, name string, req dto.CourseUpdateRequest) (models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Course{}, err
	}

	course, err := s.Get(ctx, name)
	if err != nil {
		return models.Course{}, err
	}

	if req.UseGithub != nil {
		course.UseGithub = *req.UseGithub
	}
	if req.UseTeamStructure != nil {
		course.UseTeamStructure = *req.UseTeamStructure
	}
	if req.UseStudentExperienceForm != nil {
		course.UseStudentExperienceForm = *req.UseStudentExperienceForm
	}
	if req.SurveyColumns != nil {
		course.SurveyColumns = surveyColumns(req.SurveyColumns)
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (s *courseService) Delete(ctx context.Context, name string) error {
	if err := s.courses.Delete(ctx, name); err != nil {
		if repository.IsNotFound(err) {
			return ErrCourseNotFound
		}
		return err
	}

	if s.cache != nil {
		s.cache.InvalidateCourse(ctx, name)
	}
	s.logger.Info().Str("course", name).Msg("course deleted")
	return nil
}

func (s *courseService) CreateSprint(ctx context.Context, course string, req dto.SprintRequest) (models.Sprint, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Sprint{}, err
	}
	existing, err := s.ListSprints(ctx, course)
	if err != nil {
		return models.Sprint{}, err
	}
	for _, sprint := range existing {
		if sprint.SprintNumber == req.SprintNumber {
			return models.Sprint{}, ErrSprintExists
		}
	}

	sprint := models.Sprint{
		CourseName:   course,
		SprintNumber: req.SprintNumber,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		FormsURL:     req.FormsURL,
	}
	if err := s.courses.CreateSprint(ctx, &sprint); err != nil {
		return models.Sprint{}, err
	}
	return sprint, nil
}

func (s *courseService) ListSprints(ctx context.Context, course string) ([]models.Sprint, error) {
	if _, err := s.Get(ctx, course); err != nil {
		return nil, err
	}
	return s.courses.ListSprints(ctx, course)
}

func surveyColumns(columns []dto.SurveyColumnRequest) []models.SurveyColumn {
	if len(columns) == 0 {
		return nil
	}
	result := make([]models.SurveyColumn, 0, len(columns))
	for _, column := range columns {
		result = append(result, models.SurveyColumn{Header: strings.TrimSpace(column.Header), Key: strings.TrimSpace(column.Key)})
	}
	return result
}
