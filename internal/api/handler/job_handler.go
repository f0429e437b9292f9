package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/dto"
	"github.com/cuongbtq/job-tracker/internal/api/service"
	"github.com/gin-gonic/gin"
)

// ListJobs handles GET /api/v1/jobs/:userId
// Returns the user's jobs grouped by status, or a flat filtered page when grouped is not "true"
func (h *JobHandler) ListJobs(c *gin.Context) {
	userID := c.Param("userId")

	h.logger.Info("ListJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", userID),
		slog.String("query", c.Request.URL.RawQuery),
	)

	if !h.checkUserID(c, userID) {
		return
	}

	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	if req.IsGrouped() {
		grouped, err := h.service.GroupedJobs(c.Request.Context(), userID)
		if err != nil {
			h.respondError(c, err, "list jobs")
			return
		}

		c.JSON(http.StatusOK, dto.Response{
			Success: true,
			Message: "Jobs retrieved successfully",
			Data:    dto.NewGroupedDTO(grouped, h.now()),
			Count:   dto.IntPtr(grouped.Total),
		})
		return
	}

	q, err := req.ToQuery(userID)
	if err != nil {
		h.respondError(c, err, "list jobs")
		return
	}

	page, err := h.service.ListJobs(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "list jobs")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Jobs retrieved successfully",
		Data:    dto.NewJobDTOs(page.Jobs, h.now()),
		Count:   dto.IntPtr(len(page.Jobs)),
		Total:   dto.IntPtr(page.Total),
		Page:    dto.IntPtr(page.Page),
		Pages:   dto.IntPtr(page.Pages),
	})
}

// GetJobStats handles GET /api/v1/jobs/:userId/stats
func (h *JobHandler) GetJobStats(c *gin.Context) {
	userID := c.Param("userId")

	h.logger.Info("GetJobStats called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("user_id", userID),
	)

	if !h.checkUserID(c, userID) {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "get job statistics")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job statistics retrieved successfully",
		Data:    dto.NewStatsDTO(stats),
	})
}

// GetJob handles GET /api/v1/jobs/job/:jobId
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")

	h.logger.Info("GetJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, err := h.service.GetJob(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err, "get job")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job retrieved successfully",
		Data:    dto.NewJobDTO(job, h.now()),
	})
}

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	h.logger.Info("CreateJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	job, err := req.ToDomain()
	if err != nil {
		h.respondError(c, err, "create job")
		return
	}

	created, err := h.service.CreateJob(writeContext(c), job)
	if err != nil {
		h.respondError(c, err, "create job")
		return
	}

	h.logger.Info("Job created",
		slog.String("job_id", created.ID),
		slog.String("user_id", created.UserID),
		slog.String("status", string(created.Status)),
	)

	c.JSON(http.StatusCreated, dto.Response{
		Success: true,
		Message: "Job created successfully",
		Data:    dto.NewJobDTO(created, h.now()),
	})
}

// UpdateJob handles PUT /api/v1/jobs/:jobId
// Applies any subset of the mutable fields; null clears optional fields
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID := c.Param("jobId")

	h.logger.Info("UpdateJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	var req dto.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		h.respondError(c, err, "update job")
		return
	}

	job, err := h.service.UpdateJob(writeContext(c), jobID, patch)
	if err != nil {
		h.respondError(c, err, "update job")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job updated successfully",
		Data:    dto.NewJobDTO(job, h.now()),
	})
}

// UpdateJobStatus handles PATCH /api/v1/jobs/:jobId/status
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	jobID := c.Param("jobId")

	h.logger.Info("UpdateJobStatus called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	job, err := h.service.UpdateStatus(writeContext(c), jobID, req.Status)
	if err != nil {
		h.respondError(c, err, "update job status")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job status updated successfully",
		Data:    dto.NewJobDTO(job, h.now()),
	})
}

// DeleteJob handles DELETE /api/v1/jobs/:jobId
// Permanently deletes the job and returns the removed record
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID := c.Param("jobId")

	h.logger.Info("DeleteJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	job, err := h.service.DeleteJob(writeContext(c), jobID)
	if err != nil {
		h.respondError(c, err, "delete job")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job deleted successfully",
		Data:    dto.NewJobDTO(job, h.now()),
	})
}

// BulkUpdateJobs handles PATCH /api/v1/jobs/bulk
// Every entry succeeds or fails on its own; data holds the updated records in input order
func (h *JobHandler) BulkUpdateJobs(c *gin.Context) {
	h.logger.Info("BulkUpdateJobs called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	if len(req.Jobs) == 0 {
		h.respondError(c, domain.ErrEmptyBulk, "update jobs")
		return
	}

	// entries that cannot be decoded into a patch fail on their own, like store failures
	failedAt := make(map[int]dto.BulkFailure)
	entries := make([]service.BulkEntry, 0, len(req.Jobs))
	positions := make([]int, 0, len(req.Jobs))

	for i, item := range req.Jobs {
		patch, err := item.ToPatch()
		if err != nil {
			failedAt[i] = dto.BulkFailure{ID: item.ID, Message: failureMessage(err)}
			continue
		}
		entries = append(entries, service.BulkEntry{ID: item.ID, Patch: patch})
		positions = append(positions, i)
	}

	var results []service.BulkResult
	if len(entries) > 0 {
		var err error
		results, err = h.service.BulkUpdate(writeContext(c), entries)
		if err != nil {
			h.respondError(c, err, "update jobs")
			return
		}
	}

	for k, r := range results {
		if r.Err != nil {
			failedAt[positions[k]] = dto.BulkFailure{ID: r.ID, Message: failureMessage(r.Err)}
		}
	}

	updated := make([]dto.JobDTO, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			updated = append(updated, dto.NewJobDTO(r.Job, h.now()))
		}
	}

	var failed []dto.BulkFailure
	for i := range req.Jobs {
		if f, ok := failedAt[i]; ok {
			failed = append(failed, f)
		}
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Jobs updated successfully",
		Data:    updated,
		Count:   dto.IntPtr(len(updated)),
		Failed:  failed,
	})
}

// AddInterview handles POST /api/v1/jobs/:jobId/interviews
func (h *JobHandler) AddInterview(c *gin.Context) {
	jobID := c.Param("jobId")

	h.logger.Info("AddInterview called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	var req dto.InterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	verr := &domain.ValidationError{}
	interview := req.ToDomain("", verr)
	if err := verr.OrNil(); err != nil {
		h.respondError(c, err, "add interview")
		return
	}

	job, err := h.service.AddInterview(writeContext(c), jobID, interview)
	if err != nil {
		h.respondError(c, err, "add interview")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Interview added successfully",
		Data:    dto.NewJobDTO(job, h.now()),
	})
}

// ListJobEvents handles GET /api/v1/jobs/job/:jobId/events
func (h *JobHandler) ListJobEvents(c *gin.Context) {
	jobID := c.Param("jobId")

	h.logger.Info("ListJobEvents called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	events, err := h.service.JobEvents(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err, "list job events")
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Success: true,
		Message: "Job events retrieved successfully",
		Data:    dto.NewEventDTOs(events),
		Count:   dto.IntPtr(len(events)),
	})
}

func (h *JobHandler) checkUserID(c *gin.Context, userID string) bool {
	if strings.TrimSpace(userID) != "" {
		return true
	}

	c.JSON(http.StatusBadRequest, dto.Response{
		Success: false,
		Message: msgValidationFailed,
		Errors:  []domain.FieldError{{Field: "userId", Message: "User ID is required"}},
	})
	return false
}

func failureMessage(err error) string {
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		return "Job not found"
	case errors.Is(err, domain.ErrInvalidJobID):
		return "Invalid job ID format"
	case errors.As(err, &verr):
		msgs := make([]string, len(verr.Errors))
		for i, fe := range verr.Errors {
			msgs[i] = fe.Message
		}
		return strings.Join(msgs, "; ")
	default:
		return "Failed to update job"
	}
}
