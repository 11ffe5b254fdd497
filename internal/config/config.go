package config

import (
	"fmt"
	"time"

	"github.com/wondercomic/wondercomic-backend/internal/platform/envutil"
	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
)

// Config holds every environment-driven setting, validated once at startup
// and injected into the components that need it.
type Config struct {
	GeminiAPIKey string

	DBPath    string
	ImagesDir string

	FrontendURL string
	Port        string
	DebugMode   bool

	ScriptModel string
	ImageModel  string

	GenMaxAttempts int
	GenRetryBase   time.Duration
}

func Load(log *logger.Logger) (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:   envutil.String("GEMINI_API_KEY", ""),
		DBPath:         envutil.String("DB_PATH", "wondercomic.db"),
		ImagesDir:      envutil.String("IMAGES_DIR", "images"),
		FrontendURL:    envutil.String("FRONTEND_URL", "http://localhost:3000"),
		Port:           envutil.String("PORT", "8080"),
		DebugMode:      envutil.Bool("DEBUG", false),
		ScriptModel:    envutil.String("GEMINI_SCRIPT_MODEL", "gemini-3-flash-preview"),
		ImageModel:     envutil.String("GEMINI_IMAGE_MODEL", "gemini-3-pro-image-preview"),
		GenMaxAttempts: envutil.Int("GEMINI_MAX_RETRIES", 3),
		GenRetryBase:   time.Duration(envutil.Int("GEMINI_RETRY_BASE_MS", 2000)) * time.Millisecond,
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing required environment variable GEMINI_API_KEY")
	}
	if cfg.GenMaxAttempts < 1 {
		cfg.GenMaxAttempts = 1
	}

	log.Info("Configuration loaded",
		"db_path", cfg.DBPath,
		"images_dir", cfg.ImagesDir,
		"frontend_url", cfg.FrontendURL,
		"debug_mode", cfg.DebugMode,
		"script_model", cfg.ScriptModel,
		"image_model", cfg.ImageModel,
	)
	return cfg, nil
}
