package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/metrics"
)

// FallbackJobContext is used when neither inline text nor a usable URL is supplied.
const FallbackJobContext = "General Tech Professional requirements (Assess based on standard industry best practices)."

// Job context sources.
const (
	SourceInline   = "inline"
	SourceURL      = "url"
	SourceFallback = "fallback"
)

type JobContext struct {
	Text   string
	Source string
}

type JobContextResolver interface {
	Resolve(ctx context.Context, inlineText, jobURL string) JobContext
}

type jobContextResolver struct {
	scraper JobScraper
	logger  *zap.Logger
}

func NewJobContextResolver(scraper JobScraper, logger *zap.Logger) JobContextResolver {
	return &jobContextResolver{
		scraper: scraper,
		logger:  logger,
	}
}

// Resolve implements JobContextResolver. Fetch failures degrade to the
// fallback context; the returned text is never empty.
func (r *jobContextResolver) Resolve(ctx context.Context, inlineText, jobURL string) JobContext {
	jc := r.resolve(ctx, inlineText, jobURL)
	if ctx.Err() != nil {
		// Caller gave up; the result is discarded.
		return jc
	}
	metrics.JobContextResolutions.WithLabelValues(jc.Source).Inc()
	return jc
}

func (r *jobContextResolver) resolve(ctx context.Context, inlineText, jobURL string) JobContext {
	if text := strings.TrimSpace(inlineText); text != "" {
		return JobContext{Text: text, Source: SourceInline}
	}

	if jobURL = strings.TrimSpace(jobURL); jobURL != "" && r.scraper != nil {
		r.logger.Info("fetching job description", zap.String("job_url", jobURL))

		text, err := r.scraper.Fetch(ctx, jobURL)
		switch {
		case err != nil && ctx.Err() != nil:
			r.logger.Debug("job description fetch abandoned",
				zap.String("job_url", jobURL),
				zap.Error(ctx.Err()),
			)
		case err != nil:
			r.logger.Warn("job description fetch failed, using fallback context",
				zap.String("job_url", jobURL),
				zap.Error(err),
			)
		default:
			if text = strings.TrimSpace(text); text != "" {
				return JobContext{Text: text, Source: SourceURL}
			}
		}
	}

	return JobContext{Text: FallbackJobContext, Source: SourceFallback}
}
