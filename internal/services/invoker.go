package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/datAIsolvcom/super-cv-ai/internal/logger"
	"github.com/datAIsolvcom/super-cv-ai/internal/metrics"
)

// Generation task names.
const (
	TaskAssessment = "assessment"
	TaskExtraction = "extraction"
	TaskRewrite    = "rewrite"
)

// GenerationTask describes one kind of generation call.
type GenerationTask struct {
	Name        string
	Schema      *genai.Schema
	Temperature float32

	validator *gojsonschema.Schema
}

func newGenerationTask(name string, schema *genai.Schema, temperature float32) GenerationTask {
	compiled, err := compileJSONSchema(schema)
	if err != nil {
		// Schemas are built in code; a compile error is a programming bug.
		panic(fmt.Sprintf("%s schema: %v", name, err))
	}
	return GenerationTask{Name: name, Schema: schema, Temperature: temperature, validator: compiled}
}

var (
	AssessmentTask = newGenerationTask(TaskAssessment, AssessmentSchema(), 0.1)
	ExtractionTask = newGenerationTask(TaskExtraction, CVSchema(), 0.1)
	RewriteTask    = newGenerationTask(TaskRewrite, CVSchema(), 0.2)
)

// GenerationInvoker runs a single generation and decodes the response into target.
type GenerationInvoker interface {
	Invoke(ctx context.Context, task GenerationTask, prompt string, target any) error
}

type generationInvoker struct {
	gemini       GeminiService
	logger       *zap.Logger
	previewChars int
}

func NewGenerationInvoker(gemini GeminiService, log *zap.Logger, previewChars int) GenerationInvoker {
	return &generationInvoker{
		gemini:       gemini,
		logger:       logger.OrNop(log),
		previewChars: previewChars,
	}
}

// Invoke implements GenerationInvoker. Exactly one request is made; there is
// no retry.
func (i *generationInvoker) Invoke(ctx context.Context, task GenerationTask, prompt string, target any) error {
	start := time.Now()
	outcome := metrics.OutcomeFailed
	defer func() {
		metrics.GenerationDuration.WithLabelValues(task.Name).Observe(time.Since(start).Seconds())
		metrics.GenerationCalls.WithLabelValues(task.Name, outcome).Inc()
	}()

	log := i.logger.With(zap.String("task", task.Name), zap.String("model", i.gemini.Model()))
	log.Debug("generation request",
		zap.Float32("temperature", task.Temperature),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, i.previewChars)),
	)

	raw, err := i.gemini.GenerateStructured(ctx, prompt, task.Schema, task.Temperature)
	if err != nil {
		return &GenerationFailure{Task: task.Name, Cause: err}
	}
	if strings.TrimSpace(raw) == "" {
		return &GenerationFailure{Task: task.Name, Cause: errors.New("empty response")}
	}

	log.Debug("generation response", zap.String("response_preview", logger.TruncateForLog(raw, i.previewChars)))

	strictErr := decodeStructured(task, raw, target)
	if strictErr == nil {
		outcome = metrics.OutcomeStructured
		return nil
	}

	log.Debug("structured decode failed, trying fallback parse", zap.Error(strictErr))

	if err := decodeFenced(raw, target); err != nil {
		return &GenerationFailure{Task: task.Name, Cause: fmt.Errorf("%w (structured decode: %v)", err, strictErr)}
	}

	outcome = metrics.OutcomeFenced
	return nil
}

// decodeStructured accepts only a response that is already a schema-valid
// JSON document with no unknown fields.
func decodeStructured(task GenerationTask, raw string, target any) error {
	if task.validator != nil {
		if err := validateAgainst(task.validator, raw); err != nil {
			return err
		}
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("strict decode: %w", err)
	}
	if dec.More() {
		return errors.New("strict decode: trailing data after JSON object")
	}
	return nil
}

func decodeFenced(raw string, target any) error {
	cleaned := ExtractJSONObject(StripCodeFence(raw))
	if cleaned == "" {
		return errors.New("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// StripCodeFence removes a surrounding ```json or bare ``` fence.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		// language tag
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ExtractJSONObject trims text to its outermost {...} pair.
func ExtractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}
