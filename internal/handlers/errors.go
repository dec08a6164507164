package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
	"github.com/datAIsolvcom/super-cv-ai/internal/services"
)

const headerDegraded = "X-Generation-Degraded"

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// respondError writes client input errors as 400 (413 for oversize files) and
// everything else as a generic 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if clientErr, ok := services.AsClientInputError(err); ok {
		status := fiber.StatusBadRequest
		if clientErr.Code == services.ErrCodeFileTooLarge {
			status = fiber.StatusRequestEntityTooLarge
		}

		logger.Info("rejected request",
			zap.String("request_id", requestID(c)),
			zap.String("code", string(clientErr.Code)),
			zap.Error(err),
		)

		return c.Status(status).JSON(models.ErrorResponse{
			Error: clientErr.Message,
			Code:  string(clientErr.Code),
		})
	}

	logger.Error("request failed", zap.String("request_id", requestID(c)), zap.Error(err))

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL_ERROR",
	})
}

// ErrorHandler is the fiber fallback for errors not handled by a route.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Error: message,
		Code:  errorCodeForStatus(code),
	})
}

func errorCodeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return string(services.ErrCodeFileTooLarge)
	case fiber.StatusBadRequest:
		return string(services.ErrCodeInvalidInput)
	default:
		return "INTERNAL_ERROR"
	}
}
