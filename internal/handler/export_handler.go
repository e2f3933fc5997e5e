package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/service"
	"github.com/noah-isme/capstone-dashboard-api/internal/utils"
)

// ExportHandler streams roster, sprint and workbook downloads.
type ExportHandler struct {
	exports service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		exports: exports,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register wires export routes.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/roster/:course", h.roster)
	router.Get("/sprint/:course/:sprint", h.sprint)
	router.Get("/all/:course", h.all)
}

func (h *ExportHandler) roster(c *fiber.Ctx) error {
	file, err := h.exports.Roster(c.UserContext(), pathParam(c, "course"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "export roster")
	}
	return sendFile(c, file)
}

func (h *ExportHandler) sprint(c *fiber.Ctx) error {
	sprint, err := sprintParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "sprint must be a number")
	}
	view, ok := peerreview.ParseView(c.Query("view"))
	if !ok {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid view", fiber.Map{"view": "must be given or received"})
	}

	file, err := h.exports.Sprint(c.UserContext(), pathParam(c, "course"), sprint, view)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "export sprint")
	}
	return sendFile(c, file)
}

func (h *ExportHandler) all(c *fiber.Ctx) error {
	file, err := h.exports.Workbook(c.UserContext(), pathParam(c, "course"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "export workbook")
	}
	return sendFile(c, file)
}

func sendFile(c *fiber.Ctx, file service.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.FileName))
	return c.Status(fiber.StatusOK).Send(file.Body)
}
