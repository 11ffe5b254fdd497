package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wondercomic/wondercomic-backend/internal/handlers"
)

type RouterConfig struct {
	StoryHandler    *handlers.StoryHandler
	GenerateHandler *handlers.GenerateHandler
	HealthHandler   *handlers.HealthHandler
	ImagesDir       string
	FrontendURL     string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	allowedOrigins := []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://localhost:3001",
	}
	if cfg.FrontendURL != "" && !contains(allowedOrigins, cfg.FrontendURL) {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	// Stored images are served as static binary content.
	router.Static("/images", cfg.ImagesDir)

	router.GET("/health", cfg.HealthHandler.Check)

	api := router.Group("/api")
	{
		api.POST("/stories", cfg.StoryHandler.Create)
		api.GET("/stories", cfg.StoryHandler.List)
		api.GET("/stories/:id", cfg.StoryHandler.Get)
		api.PATCH("/stories/:id", cfg.StoryHandler.Update)
		api.PATCH("/stories/:id/panels/:order", cfg.StoryHandler.UpdatePanelImage)
		api.DELETE("/stories/:id", cfg.StoryHandler.Delete)

		api.POST("/stories/generate", cfg.GenerateHandler.GenerateAndSave)
		api.POST("/generate/story-script", cfg.GenerateHandler.GenerateScript)
		api.POST("/generate/panel-image", cfg.GenerateHandler.GeneratePanelImage)
		api.POST("/generate/edit-image", cfg.GenerateHandler.EditPanelImage)
	}

	return router
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
