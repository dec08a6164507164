package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
	"github.com/datAIsolvcom/super-cv-ai/internal/services"
)

type CustomizeHandler struct {
	uploadService services.UploadService
	cvService     services.CVService
	logger        *zap.Logger
}

func NewCustomizeHandler(
	uploadService services.UploadService,
	cvService services.CVService,
	logger *zap.Logger,
) *CustomizeHandler {
	return &CustomizeHandler{
		uploadService: uploadService,
		cvService:     cvService,
		logger:        logger,
	}
}

func (h *CustomizeHandler) HandleCustomize(c *fiber.Ctx) error {
	doc, err := readUpload(c, h.uploadService)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req models.CustomizeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "failed to parse multipart form",
			Code:  string(services.ErrCodeInvalidInput),
		})
	}

	h.logger.Info("customize request",
		zap.String("request_id", requestID(c)),
		zap.String("filename", doc.Filename),
		zap.String("mode", req.Mode),
	)

	result, err := h.cvService.Customize(c.UserContext(), doc, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if result.Degraded {
		c.Set(headerDegraded, "true")
	}

	return c.Status(fiber.StatusOK).JSON(result.CV)
}
