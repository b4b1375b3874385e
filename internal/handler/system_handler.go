package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/eventhub/eventhub-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// HealthCheck is one dependency pinged by the health endpoint.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// SystemHandler reports process and dependency health.
type SystemHandler struct {
	checks    []HealthCheck
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(log zerolog.Logger, checks ...HealthCheck) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", check.Name).Msg("Health check failed")
			status[check.Name] = "down"
			healthy = false
			continue
		}
		status[check.Name] = "up"
	}

	if !healthy {
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable,
			gin.H{"status": "degraded", "dependencies": status})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":       "ok",
		"uptime":       formatDuration(time.Since(h.startTime)),
		"dependencies": status,
	})
}

func formatDuration(d time.Duration) string {
	return d.Truncate(time.Second).String()
}
