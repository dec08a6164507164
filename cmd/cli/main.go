// Package main provides the supercv command line tool, which runs the CV
// pipeline locally against a file on disk.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/config"
	"github.com/datAIsolvcom/super-cv-ai/internal/logger"
	"github.com/datAIsolvcom/super-cv-ai/internal/models"
	"github.com/datAIsolvcom/super-cv-ai/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "supercv",
	Short:         "Analyze and tailor CVs with Gemini",
	Long:          "supercv extracts text from PDF or DOCX CVs, scores them against a job description and rewrites them as structured JSON.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline progress to stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := logger.New(false, true)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// contentTypeForPath maps a file extension to a supported media type.
func contentTypeForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return models.MimePDF, nil
	case ".docx":
		return models.MimeDOCX, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q: use .pdf or .docx", filepath.Ext(path))
	}
}

func loadDocument(cfg *config.Config, path string) (*models.RawDocument, error) {
	contentType, err := contentTypeForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return services.NewUploadService(cfg.Storage.MaxFileSize).ReadBytes(filepath.Base(path), contentType, data)
}

func newParsePool(cfg *config.Config, log *zap.Logger) services.ParsePool {
	return services.NewParsePool(services.NewTextExtractor(log), cfg.Worker.Concurrency, log)
}

// newCVService wires the full pipeline; it requires GEMINI_API_KEY.
func newCVService(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.CVService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return nil, err
	}

	resolver := services.NewJobContextResolver(services.NewJobScraper(services.ScraperOptions{
		Mode:      cfg.Scraper.Mode,
		ReaderURL: cfg.Scraper.ReaderURL,
		APIKey:    cfg.Scraper.APIKey,
		Timeout:   cfg.Scraper.Timeout,
	}), log)

	return services.NewCVService(
		newParsePool(cfg, log),
		resolver,
		services.NewGenerationInvoker(geminiService, log, cfg.Log.PreviewChars),
		services.NewPromptBuilder(cfg.Extraction.PrefixChars),
		cfg.Extraction.MinTextLength,
		log,
	), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
