package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/service"
	"github.com/gin-gonic/gin"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger         *slog.Logger
	Service        *service.JobService
	Environment    string
	AllowedOrigins []string
	Now            func() time.Time

	// HealthChecks are probed by GET /health, keyed by component name
	HealthChecks map[string]func(ctx context.Context) error
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger  *slog.Logger
	service *service.JobService
	now     func() time.Time
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &JobHandler{
		logger:  deps.Logger,
		service: deps.Service,
		now:     now,
	}
}

// writeContext keeps the request values but not its cancellation, so a client
// that disconnects does not abort a store write already in flight
func writeContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
