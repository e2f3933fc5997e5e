package handler

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/capstone-dashboard-api/internal/middleware"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
	"github.com/noah-isme/capstone-dashboard-api/internal/service"
	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
	"github.com/noah-isme/capstone-dashboard-api/internal/utils"
)

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		ctx := base.With()
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			ctx = ctx.Str("correlation_id", correlation)
		}
		if user := middleware.UserFromContext(c); user != "" {
			ctx = ctx.Str("user", user)
		}
		logger = ctx.Logger()
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// pathParam returns the unescaped value of a route parameter.
func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if value, err := url.PathUnescape(raw); err == nil {
		raw = value
	}
	return strings.TrimSpace(raw)
}

func sprintParam(c *fiber.Ctx) (int, error) {
	return strconv.Atoi(pathParam(c, "sprint"))
}

// sendServiceError maps service and upload errors to responses. Unknown
// errors are logged and reported as failures of action.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error, action string) error {
	var dataErr *peerreview.DataError
	var columnErr *tabular.ColumnError

	switch {
	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCourseExists), errors.Is(err, service.ErrSprintExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrInvalidSprint),
		errors.Is(err, service.ErrUploadRequired),
		errors.Is(err, service.ErrUploadTypeNotAllowed),
		errors.Is(err, service.ErrUploadUnreadable),
		errors.Is(err, tabular.ErrNoHeader):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &dataErr):
		logger.Warn().Err(err).Msg("rejected upload")
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), fiber.Map{
			"row":    dataErr.Row,
			"column": dataErr.Column,
			"reason": dataErr.Reason,
		})
	case errors.As(err, &columnErr):
		logger.Warn().Err(err).Msg("rejected upload")
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), fiber.Map{
			"column":   columnErr.Name,
			"position": columnErr.Index + 1,
		})
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(err))
	default:
		logger.Error().Err(err).Msg(action + " failed")
		return utils.SendError(c, fiber.StatusInternalServerError, action+" failed")
	}
}
