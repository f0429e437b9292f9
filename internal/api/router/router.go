package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/dto"
	"github.com/cuongbtq/job-tracker/internal/api/handler"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const apiVersion = "1.0.0"

var endpointDocs = map[string]string{
	"GET /api/v1/jobs/:userId":            "Get all jobs for a user (grouped by status, or flat with grouped=false&status=&limit=&page=)",
	"GET /api/v1/jobs/:userId/stats":      "Get job statistics for a user (not reachable for the user id \"job\", which /jobs/job/:jobId takes)",
	"GET /api/v1/jobs/job/:jobId":         "Get single job by ID",
	"GET /api/v1/jobs/job/:jobId/events":  "Get the activity timeline of a job",
	"POST /api/v1/jobs":                   "Create a new job",
	"PUT /api/v1/jobs/:jobId":             "Update job details",
	"PATCH /api/v1/jobs/:jobId/status":    "Update job status",
	"DELETE /api/v1/jobs/:jobId":          "Delete a job",
	"PATCH /api/v1/jobs/bulk":             "Bulk update jobs",
	"POST /api/v1/jobs/:jobId/interviews": "Add interview to job",
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(domain.JSONFieldName)
	}
}

func healthHandler(deps *handler.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := make(map[string]string, len(deps.HealthChecks))

		for name, check := range deps.HealthChecks {
			if err := check(c.Request.Context()); err != nil {
				deps.Logger.Warn("Health check failed",
					slog.String("component", name),
					slog.String("error", err.Error()),
				)
				checks[name] = "unhealthy"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "healthy"
		}

		message := "Job Tracker API is running"
		if status != http.StatusOK {
			message = "Job Tracker API is degraded"
		}

		c.JSON(status, gin.H{
			"success":     status == http.StatusOK,
			"message":     message,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": deps.Environment,
			"checks":      checks,
		})
	}
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(deps.AllowedOrigins))

	r.GET("/health", healthHandler(deps))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Welcome to Job Tracker API",
			"version":       apiVersion,
			"documentation": "/api/docs",
			"endpoints": gin.H{
				"jobs":   "/api/v1/jobs",
				"health": "/health",
			},
		})
	})

	r.GET("/api/docs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Job Tracker API Documentation",
			"version":   apiVersion,
			"endpoints": endpointDocs,
		})
	})

	jobHandler := handler.NewJobHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)

			// static segments take precedence over the id parameters, so the
			// user id "job" cannot reach ListJobs or GetJobStats and "bulk"
			// cannot be patched as a job id
			jobs.PATCH("/bulk", jobHandler.BulkUpdateJobs)
			jobs.GET("/job/:jobId", jobHandler.GetJob)
			jobs.GET("/job/:jobId/events", jobHandler.ListJobEvents)

			jobs.GET("/:userId", jobHandler.ListJobs)
			jobs.GET("/:userId/stats", jobHandler.GetJobStats)

			jobs.PUT("/:jobId", jobHandler.UpdateJob)
			jobs.PATCH("/:jobId/status", jobHandler.UpdateJobStatus)
			jobs.DELETE("/:jobId", jobHandler.DeleteJob)
			jobs.POST("/:jobId/interviews", jobHandler.AddInterview)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Response{
			Success: false,
			Message: "Not found - " + c.Request.URL.Path,
		})
	})

	return r
}
