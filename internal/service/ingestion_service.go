package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/capstone-dashboard-api/internal/dto"
	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/observability"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/repository"
)

// FileArchive stores a copy of each accepted upload and returns its URL.
type FileArchive interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// IngestionService parses uploaded roster and sprint files and stores the
// resulting records.
type IngestionService interface {
	UploadRoster(ctx context.Context, course string, file *multipart.FileHeader) (dto.UploadResponse, error)
	UploadSprint(ctx context.Context, course string, sprint int, file *multipart.FileHeader) (dto.UploadResponse, error)
	History(ctx context.Context, course string) ([]models.IngestionLog, error)
}

// IngestionOptions carries the optional collaborators of the ingestion service.
type IngestionOptions struct {
	MaxBytes int64
	Archive  FileArchive
	Events   EventPublisher
	Cache    StudentCache
	// CorrelationID extracts the request correlation id for published events.
	CorrelationID func(context.Context) string
}

type ingestionService struct {
	store   repository.Store
	opts    IngestionOptions
	logger  zerolog.Logger
	tracer  trace.Tracer
	layout  peerreview.SprintLayout
	nowFunc func() time.Time
}

// NewIngestionService constructs an ingestion service.
func NewIngestionService(store repository.Store, opts IngestionOptions, logger zerolog.Logger) IngestionService {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 << 20
	}
	return &ingestionService{
		store:   store,
		opts:    opts,
		logger:  logger.With().Str("component", "ingestion_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/capstone-dashboard-api/internal/service/ingestion"),
		layout:  peerreview.DefaultSprintLayout(),
		nowFunc: time.Now,
	}
}

func (s *ingestionService) UploadRoster(ctx context.Context, course string, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.roster")
	defer span.End()
	span.SetAttributes(attribute.String("course", course))

	start := time.Now()
	resp, err := s.uploadRoster(ctx, course, file, span)
	s.observe(models.IngestionKindRoster, start, resp, err, span)
	return resp, err
}

func (s *ingestionService) uploadRoster(ctx context.Context, course string, file *multipart.FileHeader, span trace.Span) (dto.UploadResponse, error) {
	meta, err := s.store.Repositories().Courses.Get(ctx, course)
	if err != nil {
		if repository.IsNotFound(err) {
			return dto.UploadResponse{}, ErrCourseNotFound
		}
		return dto.UploadResponse{}, err
	}

	upload, err := readUpload(file, s.opts.MaxBytes)
	if err != nil {
		return dto.UploadResponse{}, err
	}
	span.SetAttributes(attribute.String("upload.mime", upload.MimeType), attribute.Int("upload.size", len(upload.Data)))

	layout := peerreview.RosterLayoutFor(meta)
	table, err := upload.table(layout.Expectations()...)
	if err != nil {
		return dto.UploadResponse{}, err
	}

	roster, err := peerreview.ParseRoster(table, course, layout)
	if err != nil {
		return dto.UploadResponse{}, err
	}

	entry := s.logEntry(ctx, course, models.IngestionKindRoster, 0, upload, len(roster.Students), roster.Warnings)
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Students.Upsert(ctx, roster.Students); err != nil {
			return fmt.Errorf("upsert students: %w", err)
		}
		if err := repos.Courses.SetRosterFileName(ctx, course, upload.Name); err != nil {
			return fmt.Errorf("record roster file name: %w", err)
		}
		return repos.IngestionLogs.Create(ctx, &entry)
	})
	if err != nil {
		return dto.UploadResponse{}, err
	}

	s.afterCommit(ctx, entry, roster.Warnings)
	return uploadResponse(entry, roster.Warnings), nil
}

func (s *ingestionService) UploadSprint(ctx context.Context, course string, sprint int, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.sprint")
	defer span.End()
	span.SetAttributes(attribute.String("course", course), attribute.Int("sprint", sprint))

	start := time.Now()
	resp, err := s.uploadSprint(ctx, course, sprint, file, span)
	s.observe(models.IngestionKindSprint, start, resp, err, span)
	return resp, err
}

func (s *ingestionService) uploadSprint(ctx context.Context, course string, sprint int, file *multipart.FileHeader, span trace.Span) (dto.UploadResponse, error) {
	if sprint <= 0 {
		return dto.UploadResponse{}, ErrInvalidSprint
	}

	exists, err := s.store.Repositories().Courses.Exists(ctx, course)
	if err != nil {
		return dto.UploadResponse{}, err
	}
	if !exists {
		return dto.UploadResponse{}, ErrCourseNotFound
	}

	upload, err := readUpload(file, s.opts.MaxBytes)
	if err != nil {
		return dto.UploadResponse{}, err
	}
	span.SetAttributes(attribute.String("upload.mime", upload.MimeType), attribute.Int("upload.size", len(upload.Data)))

	table, err := upload.table(s.layout.Expectations()...)
	if err != nil {
		return dto.UploadResponse{}, err
	}

	data, err := peerreview.ParseSprint(table, sprint, s.layout)
	if err != nil {
		return dto.UploadResponse{}, err
	}
	for i := range data.Records {
		data.Records[i].CourseName = course
	}

	entry := s.logEntry(ctx, course, models.IngestionKindSprint, sprint, upload, len(data.Records), data.Warnings)
	err = s.store.Transaction(ctx, func(repos repository.Repositories) error {
		if _, err := repos.SprintRecords.Upsert(ctx, data.Records); err != nil {
			return fmt.Errorf("upsert sprint records: %w", err)
		}
		if err := repos.Courses.SetSprintFileName(ctx, course, sprint, upload.Name); err != nil {
			return fmt.Errorf("record sprint file name: %w", err)
		}
		return repos.IngestionLogs.Create(ctx, &entry)
	})
	if err != nil {
		return dto.UploadResponse{}, err
	}

	s.afterCommit(ctx, entry, data.Warnings)
	return uploadResponse(entry, data.Warnings), nil
}

func (s *ingestionService) History(ctx context.Context, course string) ([]models.IngestionLog, error) {
	repos := s.store.Repositories()
	exists, err := repos.Courses.Exists(ctx, course)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCourseNotFound
	}
	return repos.IngestionLogs.List(ctx, course)
}

// logEntry builds the upload history row, archiving the source file first
// when an archive is configured. Archive failures do not fail the upload.
func (s *ingestionService) logEntry(ctx context.Context, course, kind string, sprint int, upload uploadedFile, records int, warnings []string) models.IngestionLog {
	entry := models.IngestionLog{
		CourseName: course,
		Kind:       kind,
		Sprint:     sprint,
		FileName:   upload.Name,
		MimeType:   upload.MimeType,
		SizeBytes:  int64(len(upload.Data)),
		Checksum:   upload.Checksum,
		Records:    records,
		Metadata: datatypes.JSONMap{
			"stored_name": upload.Stored,
			"warnings":    nonNil(warnings),
		},
		CreatedAt: s.nowFunc().UTC(),
	}

	if s.opts.Archive != nil {
		name := fmt.Sprintf("%s-%s-%d-%s", course, kind, sprint, upload.Stored)
		url, err := s.opts.Archive.Upload(ctx, name, bytes.NewReader(upload.Data))
		if err != nil {
			s.logger.Warn().Err(err).Str("course", course).Str("file", upload.Name).Msg("failed to archive upload")
		} else {
			entry.ArchiveURL = url
		}
	}

	return entry
}

func (s *ingestionService) afterCommit(ctx context.Context, entry models.IngestionLog, warnings []string) {
	if s.opts.Cache != nil {
		s.opts.Cache.InvalidateCourse(ctx, entry.CourseName)
	}

	logger := s.logger.With().
		Str("course", entry.CourseName).
		Str("kind", entry.Kind).
		Int("sprint", entry.Sprint).
		Str("file", entry.FileName).
		Logger()
	for _, warning := range warnings {
		logger.Warn().Str("diagnostic", warning).Msg("upload diagnostic")
	}
	logger.Info().Int("records", entry.Records).Msg("upload ingested")

	if s.opts.Events == nil {
		return
	}
	event := IngestionEvent{
		Course:      entry.CourseName,
		Kind:        entry.Kind,
		Sprint:      entry.Sprint,
		FileName:    entry.FileName,
		Records:     entry.Records,
		Warnings:    len(warnings),
		CompletedAt: entry.CreatedAt,
	}
	if s.opts.CorrelationID != nil {
		event.CorrelationID = s.opts.CorrelationID(ctx)
	}
	if err := s.opts.Events.PublishIngestion(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish ingestion event")
	}
}

func (s *ingestionService) observe(kind string, start time.Time, resp dto.UploadResponse, err error, span trace.Span) {
	observability.IngestionLatency().WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.Ingestions().WithLabelValues(kind, failureOutcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingestion failed")
		return
	}

	observability.Ingestions().WithLabelValues(kind, "ok").Inc()
	observability.IngestionRecords().WithLabelValues(kind).Add(float64(resp.Records))
	observability.IngestionWarnings().WithLabelValues(kind).Add(float64(len(resp.Warnings)))
	span.SetAttributes(attribute.Int("ingestion.records", resp.Records))
	span.SetStatus(codes.Ok, "stored")
}

func failureOutcome(err error) string {
	switch {
	case errors.Is(err, ErrUploadTooLarge):
		return "too_large"
	case errors.Is(err, ErrUploadTypeNotAllowed), errors.Is(err, ErrUploadUnreadable):
		return "unreadable"
	case IsDataError(err):
		return "invalid_data"
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, ErrInvalidSprint), errors.Is(err, ErrUploadRequired):
		return "rejected"
	default:
		return "error"
	}
}

func uploadResponse(entry models.IngestionLog, warnings []string) dto.UploadResponse {
	return dto.UploadResponse{
		Course:     entry.CourseName,
		Kind:       entry.Kind,
		Sprint:     entry.Sprint,
		FileName:   entry.FileName,
		MimeType:   entry.MimeType,
		SizeBytes:  entry.SizeBytes,
		Checksum:   entry.Checksum,
		ArchiveURL: entry.ArchiveURL,
		Records:    entry.Records,
		Warnings:   nonNil(warnings),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
