package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/wondercomic/wondercomic-backend/internal/config"
	"github.com/wondercomic/wondercomic-backend/internal/db"
	"github.com/wondercomic/wondercomic-backend/internal/handlers"
	"github.com/wondercomic/wondercomic-backend/internal/imagestore"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
	"github.com/wondercomic/wondercomic-backend/internal/repos"
	"github.com/wondercomic/wondercomic-backend/internal/server"
	"github.com/wondercomic/wondercomic-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", "error", err)
	}
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	// SQLite
	sqliteService, err := db.NewSQLiteService(cfg.DBPath, log)
	if err != nil {
		log.Fatal("SQLite init failed", "error", err)
	}
	defer sqliteService.Close()
	if err := sqliteService.AutoMigrateAll(); err != nil {
		log.Fatal("SQLite auto migration failed", "error", err)
	}

	// Image store
	images, err := imagestore.New(cfg.ImagesDir, log)
	if err != nil {
		log.Fatal("Image store init failed", "error", err)
	}

	// Repos
	storyRepo := repos.NewStoryRepo(sqliteService.DB(), images, log)

	// Services
	geminiClient, err := services.NewGeminiClient(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Gemini client init failed", "error", err)
	}
	storyGenService := services.NewStoryGenService(geminiClient, storyRepo, log)

	// Handlers
	storyHandler := handlers.NewStoryHandler(storyRepo, log, cfg.DebugMode)
	generateHandler := handlers.NewGenerateHandler(storyGenService, geminiClient, log, cfg.DebugMode)
	healthHandler := handlers.NewHealthHandler(sqliteService, log)

	// Router
	router := server.NewRouter(server.RouterConfig{
		StoryHandler:    storyHandler,
		GenerateHandler: generateHandler,
		HealthHandler:   healthHandler,
		ImagesDir:       images.Dir(),
		FrontendURL:     cfg.FrontendURL,
	})

	log.Info("Server listening", "port", cfg.Port, "frontend_url", cfg.FrontendURL)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
