package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/models"
)

// ParsePool bounds how many documents are parsed at the same time so that a
// slow parse only holds one slot.
type ParsePool interface {
	Extract(ctx context.Context, doc *models.RawDocument) (string, error)
}

type parsePool struct {
	extractor TextExtractor
	slots     chan struct{}
	logger    *zap.Logger
}

func NewParsePool(extractor TextExtractor, concurrency int, logger *zap.Logger) ParsePool {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &parsePool{
		extractor: extractor,
		slots:     make(chan struct{}, concurrency),
		logger:    logger,
	}
}

// Extract implements ParsePool.
func (p *parsePool) Extract(ctx context.Context, doc *models.RawDocument) (string, error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for parse slot: %w", ctx.Err())
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		defer func() { <-p.slots }()
		text, err := p.extractor.Extract(doc)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		// The parse keeps its slot until it finishes; only the caller stops waiting.
		p.logger.Debug("parse abandoned by caller",
			zap.String("filename", doc.Filename),
			zap.Error(ctx.Err()),
		)
		return "", fmt.Errorf("document parse: %w", ctx.Err())
	}
}
