package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capstone-dashboard-api/internal/config"
	"github.com/noah-isme/capstone-dashboard-api/internal/dto"
	"github.com/noah-isme/capstone-dashboard-api/internal/handler"
	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/service"
)

type mockStudentService struct {
	students   []dto.StudentResponse
	err        error
	lastCourse string
	lastSprint int
	lastEmail  string
}

func (m *mockStudentService) List(_ context.Context, course string, sprint int) ([]dto.StudentResponse, error) {
	m.lastCourse, m.lastSprint = course, sprint
	return m.students, m.err
}

func (m *mockStudentService) Get(_ context.Context, course string, sprint int, email string) (dto.StudentResponse, error) {
	m.lastCourse, m.lastSprint, m.lastEmail = course, sprint, email
	if m.err != nil {
		return dto.StudentResponse{}, m.err
	}
	return dto.StudentResponse{Email: email}, nil
}

type mockIngestionService struct {
	rosterCalls int
	sprintCalls int
	err         error
}

func (m *mockIngestionService) UploadRoster(_ context.Context, course string, file *multipart.FileHeader) (dto.UploadResponse, error) {
	m.rosterCalls++
	if m.err != nil {
		return dto.UploadResponse{}, m.err
	}
	return dto.UploadResponse{Course: course, Kind: models.IngestionKindRoster, FileName: file.Filename, Records: 3}, nil
}

func (m *mockIngestionService) UploadSprint(_ context.Context, course string, sprint int, file *multipart.FileHeader) (dto.UploadResponse, error) {
	m.sprintCalls++
	if sprint < 0 {
		return dto.UploadResponse{}, service.ErrInvalidSprint
	}
	if m.err != nil {
		return dto.UploadResponse{}, m.err
	}
	return dto.UploadResponse{Course: course, Kind: models.IngestionKindSprint, Sprint: sprint, FileName: file.Filename, Records: 2}, nil
}

func (m *mockIngestionService) History(_ context.Context, course string) ([]models.IngestionLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.IngestionLog{{CourseName: course, FileName: "roster.csv"}}, nil
}

type mockExportService struct {
	lastView peerreview.View
	err      error
}

func (m *mockExportService) Roster(_ context.Context, course string) (service.ExportFile, error) {
	return service.ExportFile{FileName: course + "_roster.csv", ContentType: service.ContentTypeCSV, Body: []byte("Email Address\n")}, m.err
}

func (m *mockExportService) Sprint(_ context.Context, course string, sprint int, view peerreview.View) (service.ExportFile, error) {
	m.lastView = view
	if m.err != nil {
		return service.ExportFile{}, m.err
	}
	return service.ExportFile{FileName: "cmput401_sprint_1.csv", ContentType: service.ContentTypeCSV, Body: []byte("Count\n")}, nil
}

func (m *mockExportService) Workbook(_ context.Context, course string) (service.ExportFile, error) {
	return service.ExportFile{FileName: course + "_all.xlsx", ContentType: service.ContentTypeWorkbook, Body: []byte("PK")}, m.err
}

type mockCourseService struct {
	err error
}

func (m *mockCourseService) Create(_ context.Context, req dto.CourseRequest) (models.Course, error) {
	if m.err != nil {
		return models.Course{}, m.err
	}
	if err := validator.New().Struct(req); err != nil {
		return models.Course{}, err
	}
	return models.Course{Name: req.Name}, nil
}

func (m *mockCourseService) List(context.Context) ([]models.Course, error) {
	return []models.Course{{Name: "cmput401"}}, m.err
}

func (m *mockCourseService) Get(_ context.Context, name string) (models.Course, error) {
	return models.Course{Name: name}, m.err
}

func (m *mockCourseService) Update(_ context.Context, name string, _ dto.CourseUpdateRequest) (models.Course, error) {
	return models.Course{Name: name}, m.err
}

func (m *mockCourseService) Delete(context.Context, string) error {
	return m.err
}

func (m *mockCourseService) CreateSprint(_ context.Context, course string, req dto.SprintRequest) (models.Sprint, error) {
	return models.Sprint{CourseName: course, SprintNumber: req.SprintNumber}, m.err
}

func (m *mockCourseService) ListSprints(context.Context, string) ([]models.Sprint, error) {
	return []models.Sprint{{SprintNumber: 1}}, m.err
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Details map[string]interface{} `json:"details"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func studentApp(students *mockStudentService, ingestion *mockIngestionService) *fiber.App {
	app := fiber.New()
	handler.NewStudentHandler(students, ingestion, zerolog.New(io.Discard)).Register(app.Group("/api/v1/students"))
	return app
}

func uploadRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestStudentHandlerList(t *testing.T) {
	students := &mockStudentService{students: []dto.StudentResponse{{Email: "a@x.com"}, {Email: "b@x.com"}}}
	app := studentApp(students, &mockIngestionService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/cmput401/2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, float64(2), body.Meta["count"])
	require.Equal(t, "cmput401", students.lastCourse)
	require.Equal(t, 2, students.lastSprint)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/cmput401/two", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStudentHandlerGetUnescapesEmail(t *testing.T) {
	students := &mockStudentService{}
	app := studentApp(students, &mockIngestionService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/cmput401/0/tiger%40ualberta.ca", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "tiger@ualberta.ca", students.lastEmail)

	students.err = service.ErrStudentNotFound
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/students/cmput401/1/nobody@x.com", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStudentHandlerUploadRoutesBySprint(t *testing.T) {
	ingestion := &mockIngestionService{}
	app := studentApp(&mockStudentService{}, ingestion)

	resp, err := app.Test(uploadRequest(t, "/api/v1/students/cmput401/0", "roster.csv", []byte("Email Address\n")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, 1, ingestion.rosterCalls)

	resp, err = app.Test(uploadRequest(t, "/api/v1/students/cmput401/3", "sprint3.csv", []byte("Count\n")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var body struct {
		Data dto.UploadResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, 3, body.Data.Sprint)
	require.Equal(t, "sprint3.csv", body.Data.FileName)

	resp, err = app.Test(uploadRequest(t, "/api/v1/students/cmput401/-1", "s.csv", []byte("x")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(uploadRequest(t, "/api/v1/students/cmput401/1", "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStudentHandlerUploadReportsDataErrors(t *testing.T) {
	ingestion := &mockIngestionService{err: &peerreview.DataError{Row: 7, Column: peerreview.EmailHeader, Reason: "email is required"}}
	app := studentApp(&mockStudentService{}, ingestion)

	resp, err := app.Test(uploadRequest(t, "/api/v1/students/cmput401/1", "s.csv", []byte("x")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, float64(7), body.Details["row"])
	require.Equal(t, peerreview.EmailHeader, body.Details["column"])

	ingestion.err = service.ErrUploadTooLarge
	resp, err = app.Test(uploadRequest(t, "/api/v1/students/cmput401/1", "s.csv", []byte("x")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	ingestion.err = errors.New("database is down")
	resp, err = app.Test(uploadRequest(t, "/api/v1/students/cmput401/1", "s.csv", []byte("x")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	decodeResponse(t, resp, &body)
	require.NotContains(t, body.Message, "database")
}

func TestExportHandlerSetsAttachmentHeaders(t *testing.T) {
	exports := &mockExportService{}
	app := fiber.New()
	handler.NewExportHandler(exports, zerolog.New(io.Discard)).Register(app.Group("/api/v1/export"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/export/sprint/cmput401/1?view=received", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, `attachment; filename="cmput401_sprint_1.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
	require.True(t, strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), "text/csv"))
	require.Equal(t, peerreview.ViewReceived, exports.lastView)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/export/sprint/cmput401/1?view=sideways", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/export/all/cmput401", nil))
	require.NoError(t, err)
	require.Equal(t, `attachment; filename="cmput401_all.xlsx"`, resp.Header.Get(fiber.HeaderContentDisposition))

	exports.err = service.ErrCourseNotFound
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/export/roster/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCourseHandlerCreate(t *testing.T) {
	courses := &mockCourseService{}
	app := fiber.New()
	handler.NewCourseHandler(courses, &mockIngestionService{}, zerolog.New(io.Discard)).Register(app.Group("/api/v1/courses"))

	post := func(payload string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/courses", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := post(`{"name":"cmput401","use_github":true}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = post(`{"name":""}`)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body envelope
	decodeResponse(t, resp, &body)
	require.Equal(t, "required", body.Details["Name"])

	courses.err = service.ErrCourseExists
	resp = post(`{"name":"cmput401"}`)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/courses/cmput401/uploads", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthCheckReportsDegradedDependency(t *testing.T) {
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(config.Config{AppName: "dashboard"}, map[string]handler.Probe{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body struct {
		Data handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, "degraded", body.Data.Status)
	require.Equal(t, "ok", body.Data.Dependencies["database"])
}
