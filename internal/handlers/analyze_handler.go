package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
	"github.com/datAIsolvcom/super-cv-ai/internal/services"
)

type AnalyzeHandler struct {
	uploadService services.UploadService
	cvService     services.CVService
	logger        *zap.Logger
}

func NewAnalyzeHandler(
	uploadService services.UploadService,
	cvService services.CVService,
	logger *zap.Logger,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		uploadService: uploadService,
		cvService:     cvService,
		logger:        logger,
	}
}

// HandleAnalyze scores the uploaded CV and returns it with its structured extraction.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	doc, err := readUpload(c, h.uploadService)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "failed to parse multipart form",
			Code:  string(services.ErrCodeInvalidInput),
		})
	}

	h.logger.Info("analyze request",
		zap.String("request_id", requestID(c)),
		zap.String("filename", doc.Filename),
		zap.Bool("has_job_description", req.JobDescription != ""),
		zap.Bool("has_job_url", req.JobURL != ""),
	)

	result, err := h.cvService.Analyze(c.UserContext(), doc, req)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// readUpload reads the "file" form field; a missing field is reported as MISSING_FILE.
func readUpload(c *fiber.Ctx, uploadService services.UploadService) (*models.RawDocument, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return uploadService.ReadFile(nil)
	}
	return uploadService.ReadFile(file)
}
