package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
)

const apiVersion = "1.0.0"

// Pinger is the one trivial storage read the liveness probe exercises.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log *logger.Logger
}

func NewHealthHandler(db Pinger, baseLog *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: baseLog.With("handler", "HealthHandler")}
}

func (h *HealthHandler) Check(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.log.Error("Health check database error", "error", err)
		checks["database"] = "unavailable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "version": apiVersion, "checks": checks})
}
