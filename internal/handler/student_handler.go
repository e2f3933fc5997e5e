package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/dto"
	"github.com/noah-isme/capstone-dashboard-api/internal/service"
	"github.com/noah-isme/capstone-dashboard-api/internal/utils"
)

// StudentHandler serves student listings and accepts roster and sprint uploads.
type StudentHandler struct {
	students  service.StudentService
	ingestion service.IngestionService
	logger    zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(students service.StudentService, ingestion service.IngestionService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		students:  students,
		ingestion: ingestion,
		logger:    logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register wires student routes. uploadGuards run before the upload handler.
func (h *StudentHandler) Register(router fiber.Router, uploadGuards ...fiber.Handler) {
	router.Get("/:course/:sprint", h.list)
	router.Get("/:course/:sprint/:email", h.get)

	upload := append(append([]fiber.Handler{}, uploadGuards...), h.upload)
	router.Post("/:course/:sprint", upload...)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	sprint, err := sprintParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "sprint must be a number")
	}

	students, err := h.students.List(c.UserContext(), pathParam(c, "course"), sprint)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "list students")
	}
	return utils.OK(c, students, "", fiber.Map{"count": len(students), "sprint": sprint})
}

func (h *StudentHandler) get(c *fiber.Ctx) error {
	sprint, err := sprintParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "sprint must be a number")
	}

	student, err := h.students.Get(c.UserContext(), pathParam(c, "course"), sprint, pathParam(c, "email"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "get student")
	}
	return utils.SendSuccess(c, "", student)
}

// upload ingests a roster when sprint is 0 and a sprint file otherwise.
func (h *StudentHandler) upload(c *fiber.Ctx) error {
	sprint, err := sprintParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "sprint must be a number")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrUploadRequired.Error())
	}

	course := pathParam(c, "course")
	var result dto.UploadResponse
	if sprint == 0 {
		result, err = h.ingestion.UploadRoster(c.UserContext(), course, file)
	} else {
		result, err = h.ingestion.UploadSprint(c.UserContext(), course, sprint, file)
	}
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "upload")
	}

	requestLogger(h.logger, c).Info().
		Str("course", course).
		Int("sprint", sprint).
		Int("records", result.Records).
		Msg("upload accepted")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "upload ingested", result)
}
