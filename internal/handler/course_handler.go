package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/dto"
	"github.com/noah-isme/capstone-dashboard-api/internal/service"
	"github.com/noah-isme/capstone-dashboard-api/internal/utils"
)

// CourseHandler exposes course and sprint metadata.
type CourseHandler struct {
	courses   service.CourseService
	ingestion service.IngestionService
	logger    zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses service.CourseService, ingestion service.IngestionService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:   courses,
		ingestion: ingestion,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:course", h.get)
	router.Put("/:course", h.update)
	router.Delete("/:course", h.delete)
	router.Get("/:course/sprints", h.listSprints)
	router.Post("/:course/sprints", h.createSprint)
	router.Get("/:course/uploads", h.uploads)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.courses.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "list courses")
	}
	return utils.OK(c, courses, "", fiber.Map{"count": len(courses)})
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var req dto.CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Create(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "create course")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	course, err := h.courses.Get(c.UserContext(), pathParam(c, "course"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "get course")
	}
	return utils.SendSuccess(c, "", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	var req dto.CourseUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Update(c.UserContext(), pathParam(c, "course"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "update course")
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	if err := h.courses.Delete(c.UserContext(), pathParam(c, "course")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "delete course")
	}
	return utils.SendSuccess(c, "course deleted", nil)
}

func (h *CourseHandler) listSprints(c *fiber.Ctx) error {
	sprints, err := h.courses.ListSprints(c.UserContext(), pathParam(c, "course"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "list sprints")
	}
	return utils.OK(c, sprints, "", fiber.Map{"count": len(sprints)})
}

func (h *CourseHandler) createSprint(c *fiber.Ctx) error {
	var req dto.SprintRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	sprint, err := h.courses.CreateSprint(c.UserContext(), pathParam(c, "course"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "create sprint")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "sprint created", sprint)
}

func (h *CourseHandler) uploads(c *fiber.Ctx) error {
	history, err := h.ingestion.History(c.UserContext(), pathParam(c, "course"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "list uploads")
	}
	return utils.OK(c, history, "", fiber.Map{"count": len(history)})
}
