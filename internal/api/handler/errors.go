package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const msgValidationFailed = "Validation failed"

// respondError translates a service or store error into the envelope
func (h *JobHandler) respondError(c *gin.Context, err error, action string) {
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: msgValidationFailed,
			Errors:  verr.Errors,
		})
	case errors.Is(err, domain.ErrInvalidJobID):
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: msgValidationFailed,
			Errors:  []domain.FieldError{{Field: "jobId", Message: "Invalid job ID format", Value: c.Param("jobId")}},
		})
	case errors.Is(err, domain.ErrJobNotFound):
		c.JSON(http.StatusNotFound, dto.Response{
			Success: false,
			Message: "Job not found",
		})
	case errors.Is(err, domain.ErrEmptyBulk):
		c.JSON(http.StatusBadRequest, dto.Response{
			Success: false,
			Message: "Jobs array is required",
		})
	default:
		h.logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.Response{
			Success: false,
			Message: "Failed to " + action,
		})
	}
}

// respondBindError reports a body that failed to decode or failed a binding rule
func (h *JobHandler) respondBindError(c *gin.Context, err error) {
	h.logger.Warn("Invalid request body", slog.String("error", err.Error()))

	c.JSON(http.StatusBadRequest, dto.Response{
		Success: false,
		Message: msgValidationFailed,
		Errors:  bindFieldErrors(err),
	})
}

func bindFieldErrors(err error) []domain.FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]domain.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, domain.FieldError{
				Field:   fe.Field(),
				Message: domain.FieldMessage(fe.Field(), fe.Tag()),
				Value:   fe.Value(),
			})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []domain.FieldError{{
			Field:   typeErr.Field,
			Message: "Invalid value type, expected " + typeErr.Type.String(),
		}}
	}

	return []domain.FieldError{{Field: "body", Message: "Invalid request body"}}
}
