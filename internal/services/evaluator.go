package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/datAIsolvcom/super-cv-ai/internal/metrics"
	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

const DefaultMinTextLength = 50

// CVService runs the analyze and customize pipelines.
type CVService interface {
	Analyze(ctx context.Context, doc *models.RawDocument, req models.AnalyzeRequest) (*models.CombinedAnalysis, error)
	Customize(ctx context.Context, doc *models.RawDocument, req models.CustomizeRequest) (*models.CustomizeResult, error)
	ExtractText(ctx context.Context, doc *models.RawDocument) (string, error)
}

type cvService struct {
	parsePool     ParsePool
	resolver      JobContextResolver
	invoker       GenerationInvoker
	promptBuilder *PromptBuilder
	validate      *validator.Validate
	minTextLength int
	logger        *zap.Logger
}

func NewCVService(
	parsePool ParsePool,
	resolver JobContextResolver,
	invoker GenerationInvoker,
	promptBuilder *PromptBuilder,
	minTextLength int,
	logger *zap.Logger,
) CVService {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}

	return &cvService{
		parsePool:     parsePool,
		resolver:      resolver,
		invoker:       invoker,
		promptBuilder: promptBuilder,
		validate:      validator.New(),
		minTextLength: minTextLength,
		logger:        logger,
	}
}

// ExtractText returns the document text once it passes the minimum length check.
func (s *cvService) ExtractText(ctx context.Context, doc *models.RawDocument) (string, error) {
	if doc == nil {
		return "", newClientError(ErrCodeMissingFile, "file is required", nil)
	}

	text, err := s.parsePool.Extract(ctx, doc)
	if err != nil {
		return "", err
	}

	if n := utf8.RuneCountInString(text); n < s.minTextLength {
		return "", newClientError(ErrCodeTextTooShort,
			fmt.Sprintf("extracted text is too short (%d characters, minimum %d). The file may be a scanned image", n, s.minTextLength), nil)
	}

	return text, nil
}

// Analyze implements CVService. Generation failures never surface as errors;
// they are replaced by default objects.
func (s *cvService) Analyze(ctx context.Context, doc *models.RawDocument, req models.AnalyzeRequest) (*models.CombinedAnalysis, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, requestValidationError(err)
	}

	var (
		cvText string
		jobCtx JobContext
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.ExtractText(gCtx, doc)
		if err != nil {
			return err
		}
		cvText = text
		return nil
	})
	g.Go(func() error {
		jobCtx = s.resolver.Resolve(gCtx, req.JobDescription, req.JobURL)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("sha256", doc.SHA256), zap.String("job_context_source", jobCtx.Source))
	log.Info("starting analysis", zap.Int("text_length", utf8.RuneCountInString(cvText)))

	assessmentPrompt := s.promptBuilder.BuildAssessmentPrompt(cvText, jobCtx.Text, req.CurrentDate)
	extractionPrompt := s.promptBuilder.BuildExtractionPromptAt(cvText, req.CurrentDate)

	var (
		assessment models.AssessmentResult
		extracted  models.StructuredCV
		result     models.CombinedAnalysis
	)

	// Both branches degrade instead of failing, so neither cancels the other.
	var gen errgroup.Group
	gen.Go(func() error {
		if err := s.invoker.Invoke(ctx, AssessmentTask, assessmentPrompt, &assessment); err != nil {
			log.Error("assessment generation failed", zap.Error(err))
			metrics.DegradedResponses.WithLabelValues("analyze", TaskAssessment).Inc()
			result.Analysis = models.DefaultAssessment(failureReason(err))
			return nil
		}
		assessment.Normalize()
		result.Analysis = &assessment
		return nil
	})
	gen.Go(func() error {
		if err := s.invoker.Invoke(ctx, ExtractionTask, extractionPrompt, &extracted); err != nil {
			log.Error("extraction generation failed", zap.Error(err))
			metrics.DegradedResponses.WithLabelValues("analyze", TaskExtraction).Inc()
			result.CVData = models.DefaultCV("")
			return nil
		}
		extracted.Normalize()
		result.CVData = &extracted
		return nil
	})
	_ = gen.Wait()

	log.Info("analysis completed", zap.Int("overall_score", result.Analysis.OverallScore))

	return &result, nil
}

// Customize implements CVService.
func (s *cvService) Customize(ctx context.Context, doc *models.RawDocument, req models.CustomizeRequest) (*models.CustomizeResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, requestValidationError(err)
	}

	rewriteContext := strings.TrimSpace(req.AnalysisContext)
	switch req.Mode {
	case models.ModeJobDesc:
		rewriteContext = strings.TrimSpace(req.JobDescription)
		if rewriteContext == "" {
			return nil, newClientError(ErrCodeMissingJobDescription,
				"job_description is required when mode is job_desc", nil)
		}
	case models.ModeAnalysis:
		if rewriteContext == "" {
			rewriteContext = DefaultAnalysisContext
		}
	}

	cvText, err := s.ExtractText(ctx, doc)
	if err != nil {
		return nil, err
	}

	prompt, err := s.promptBuilder.BuildRewritePrompt(cvText, req.Mode, rewriteContext, req.CurrentDate)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("sha256", doc.SHA256), zap.String("mode", req.Mode))
	log.Info("starting customization")

	var rewritten models.StructuredCV
	if err := s.invoker.Invoke(ctx, RewriteTask, prompt, &rewritten); err != nil {
		log.Error("rewrite generation failed", zap.Error(err))
		metrics.DegradedResponses.WithLabelValues("customize", TaskRewrite).Inc()
		return &models.CustomizeResult{
			CV:       models.DefaultCV("CV customization unavailable: " + failureReason(err)),
			Degraded: true,
		}, nil
	}

	rewritten.Normalize()
	log.Info("customization completed")

	return &models.CustomizeResult{CV: &rewritten}, nil
}

func requestValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return newClientError(ErrCodeInvalidInput, "invalid request", err)
	}

	fe := validationErrors[0]
	switch fe.Field() {
	case "Mode":
		return newClientError(ErrCodeInvalidMode,
			fmt.Sprintf("invalid mode %q. Use %q or %q", fe.Value(), models.ModeJobDesc, models.ModeAnalysis), err)
	case "CurrentDate":
		return newClientError(ErrCodeInvalidReferenceDate,
			fmt.Sprintf("invalid current_date %q. Use YYYY-MM-DD", fe.Value()), err)
	case "JobURL":
		return newClientError(ErrCodeInvalidInput,
			fmt.Sprintf("invalid job_url %q", fe.Value()), err)
	}

	return newClientError(ErrCodeInvalidInput,
		fmt.Sprintf("validation error: %s - %s", fe.Field(), fe.Tag()), err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "the request was cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "the generation service timed out"
	}

	var genErr *GenerationFailure
	if errors.As(err, &genErr) {
		return fmt.Sprintf("the %s step did not return a usable response", genErr.Task)
	}
	return "an unexpected error occurred"
}
