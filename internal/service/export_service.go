package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/observability"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

// Content types of generated exports.
const (
	ContentTypeCSV      = "text/csv; charset=utf-8"
	ContentTypeWorkbook = mimeWorkbook
)

// ExportFile is a rendered download.
type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ExportService renders stored course data in the upload layouts.
type ExportService interface {
	Roster(ctx context.Context, course string) (ExportFile, error)
	Sprint(ctx context.Context, course string, sprint int, view peerreview.View) (ExportFile, error)
	Workbook(ctx context.Context, course string) (ExportFile, error)
}

type exportService struct {
	repos  repository.Repositories
	logger zerolog.Logger
	tracer trace.Tracer
	layout peerreview.SprintLayout
}

// NewExportService constructs an export service.
func NewExportService(repos repository.Repositories, logger zerolog.Logger) ExportService {
	return &exportService{
		repos:  repos,
		logger: logger.With().Str("component", "export_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/capstone-dashboard-api/internal/service/export"),
		layout: peerreview.DefaultSprintLayout(),
	}
}

func (s *exportService) Roster(ctx context.Context, course string) (ExportFile, error) {
	ctx, span := s.tracer.Start(ctx, "export.roster")
	defer span.End()

	table, err := s.rosterTable(ctx, course)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}
	return s.csvFile(span, fmt.Sprintf("%s_roster.csv", course), table)
}

func (s *exportService) Sprint(ctx context.Context, course string, sprint int, view peerreview.View) (ExportFile, error) {
	ctx, span := s.tracer.Start(ctx, "export.sprint")
	defer span.End()
	span.SetAttributes(attribute.Int("sprint", sprint), attribute.String("view", string(view)))

	if sprint <= 0 {
		return ExportFile{}, fail(span, ErrInvalidSprint)
	}

	meta, err := s.course(ctx, course)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}
	teams, err := s.teams(ctx, meta.Name)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}
	table, err := s.sprintTable(ctx, meta.Name, sprint, teams, view)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}
	return s.csvFile(span, fmt.Sprintf("%s_sprint_%d.csv", course, sprint), table)
}

// Workbook renders the roster and every sprint into one workbook, one sheet each.
func (s *exportService) Workbook(ctx context.Context, course string) (ExportFile, error) {
	ctx, span := s.tracer.Start(ctx, "export.workbook")
	defer span.End()

	roster, err := s.rosterTable(ctx, course)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}
	teams, err := s.teams(ctx, course)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}
	numbers, err := s.repos.Courses.SprintNumbers(ctx, course)
	if err != nil {
		return ExportFile{}, fail(span, err)
	}

	sheets := []tabular.Sheet{{Name: "Roster", Table: roster}}
	for _, sprint := range numbers {
		table, err := s.sprintTable(ctx, course, sprint, teams, peerreview.ViewGiven)
		if err != nil {
			return ExportFile{}, fail(span, err)
		}
		sheets = append(sheets, tabular.Sheet{Name: fmt.Sprintf("Sprint %d", sprint), Table: table})
	}
	span.SetAttributes(attribute.Int("export.sheets", len(sheets)))

	var buf bytes.Buffer
	if err := tabular.WriteWorkbook(&buf, sheets...); err != nil {
		return ExportFile{}, fail(span, err)
	}

	observability.Exports().WithLabelValues("xlsx").Inc()
	span.SetStatus(codes.Ok, "rendered")
	return ExportFile{
		FileName:    fmt.Sprintf("%s_all.xlsx", course),
		ContentType: ContentTypeWorkbook,
		Body:        buf.Bytes(),
	}, nil
}

func (s *exportService) course(ctx context.Context, course string) (models.Course, error) {
	meta, err := s.repos.Courses.Get(ctx, course)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return meta, nil
}

func (s *exportService) rosterTable(ctx context.Context, course string) (tabular.Table, error) {
	meta, err := s.course(ctx, course)
	if err != nil {
		return tabular.Table{}, err
	}
	students, err := s.repos.Students.FindByCourse(ctx, meta.Name)
	if err != nil {
		return tabular.Table{}, err
	}
	return peerreview.RosterToTable(students, peerreview.RosterLayoutFor(meta)), nil
}

func (s *exportService) sprintTable(ctx context.Context, course string, sprint int, teams map[string]string, view peerreview.View) (tabular.Table, error) {
	records, err := s.repos.SprintRecords.Find(ctx, course, repository.SprintFilter{Sprint: sprint})
	if err != nil {
		return tabular.Table{}, err
	}
	return peerreview.SprintToTable(records, teams, peerreview.ExportOptions{View: view, Layout: s.layout}), nil
}

// teams maps each roster email to the student's project.
func (s *exportService) teams(ctx context.Context, course string) (map[string]string, error) {
	students, err := s.repos.Students.FindByCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	teams := make(map[string]string, len(students))
	for _, student := range students {
		teams[student.Email] = student.Project
	}
	return teams, nil
}

func (s *exportService) csvFile(span trace.Span, name string, table tabular.Table) (ExportFile, error) {
	var buf bytes.Buffer
	if err := tabular.WriteCSV(&buf, table); err != nil {
		return ExportFile{}, fail(span, err)
	}

	observability.Exports().WithLabelValues("csv").Inc()
	span.SetAttributes(attribute.Int("export.rows", len(table.Rows)))
	span.SetStatus(codes.Ok, "rendered")
	return ExportFile{FileName: name, ContentType: ContentTypeCSV, Body: buf.Bytes()}, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
