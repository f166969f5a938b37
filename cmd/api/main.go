package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mediflash/config"
	"mediflash/internal/api/flashcards"
	"mediflash/internal/api/generate"
	"mediflash/internal/api/healthcheck"
	"mediflash/internal/core/generation"
	"mediflash/internal/database"
	"mediflash/internal/middleware"
	flashcardsvc "mediflash/internal/services/flashcards"
	"mediflash/internal/services/upload"
	"mediflash/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func main() {
	if err := config.Init("config.yaml"); err != nil {
		logger.Fatal(err, "failed to load config")
	}
	cfg := config.Cfg
	logger.Init(string(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN, cfg.Database)
	if err != nil {
		logger.Fatal(err, "database connect error")
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Fatal(err, "database migrate error")
		}
	}
	logger.Info("%v: connected", config.ModuleDatabase)

	backend, err := generation.NewOpenAIBackend(generation.BackendOptions{
		APIKey:          cfg.OpenAI.Key,
		BaseURL:         cfg.OpenAI.BaseURL,
		Model:           cfg.OpenAI.Model,
		Temperature:     cfg.OpenAI.Temperature,
		MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
		Timeout:         cfg.OpenAI.Timeout,
	})
	if err != nil {
		logger.Fatal(err, "openai backend error")
	}

	archiver, err := upload.New(ctx, cfg)
	if err != nil {
		logger.Fatal(err, "upload archiver error")
	}

	app := fiber.New(fiber.Config{
		AppName:   cfg.Server.AppName,
		BodyLimit: cfg.Server.BodyLimit,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Cors.AllowOrigins,
		AllowMethods: cfg.Cors.AllowMethods,
		AllowHeaders: cfg.Cors.AllowHeaders,
	}))
	app.Use(middleware.Limit(middleware.NewConnectionLimiter(cfg.Server.Concurrency)))

	// routes
	healthcheck.RegisterRoutes(app, healthcheck.NewHandler(db))

	api := app.Group("/api")
	generate.RegisterRoutes(api, generate.NewHandler(
		generation.NewPipeline(backend, cfg.Generation.ChunkSize),
		archiver,
		generate.Limits{
			MinQuantity: cfg.Generation.MinQuantity,
			MaxQuantity: cfg.Generation.MaxQuantity,
			MaxPDFBytes: cfg.Upload.MaxPDFBytes,
		},
	))
	flashcards.RegisterRoutes(api, flashcards.NewHandler(flashcardsvc.NewService(flashcardsvc.NewGormStore(db))))

	go func() {
		<-ctx.Done()
		logger.Info("%v: shutting down", config.ModuleServer)
		if err := app.Shutdown(); err != nil {
			logger.Error(err, "shutdown error")
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
