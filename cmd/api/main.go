package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datAIsolvcom/super-cv-ai/internal/config"
	"github.com/datAIsolvcom/super-cv-ai/internal/handlers"
	"github.com/datAIsolvcom/super-cv-ai/internal/logger"
	"github.com/datAIsolvcom/super-cv-ai/internal/services"
)

// multipart framing and the text fields on top of the file itself
const formOverheadBytes = 1 << 20

func main() {
	cfg := config.Load()

	// Outside development, logs are always JSON for the collector.
	log, err := logger.New(cfg.Log.JSON || !cfg.IsDevelopment(), cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("config loaded", zap.String("env", cfg.Server.Env), zap.String("scraper_mode", cfg.Scraper.Mode))

	geminiService, err := services.NewGeminiService(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Fatal("failed to initialize gemini", zap.Error(err))
	}

	uploadService := services.NewUploadService(cfg.Storage.MaxFileSize)
	parsePool := services.NewParsePool(services.NewTextExtractor(log), cfg.Worker.Concurrency, log)
	resolver := services.NewJobContextResolver(services.NewJobScraper(services.ScraperOptions{
		Mode:      cfg.Scraper.Mode,
		ReaderURL: cfg.Scraper.ReaderURL,
		APIKey:    cfg.Scraper.APIKey,
		Timeout:   cfg.Scraper.Timeout,
	}), log)
	invoker := services.NewGenerationInvoker(geminiService, log, cfg.Log.PreviewChars)
	cvService := services.NewCVService(
		parsePool,
		resolver,
		invoker,
		services.NewPromptBuilder(cfg.Extraction.PrefixChars),
		cfg.Extraction.MinTextLength,
		log,
	)
	log.Info("services initialized", zap.Int("parse_concurrency", cfg.Worker.Concurrency))

	app := fiber.New(fiber.Config{
		AppName:      "Super CV AI API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + formOverheadBytes,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "X-Request-ID, X-Generation-Degraded",
	}))

	handlers.SetupRoutes(app,
		handlers.NewAnalyzeHandler(uploadService, cvService, log),
		handlers.NewCustomizeHandler(uploadService, cvService, log),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
