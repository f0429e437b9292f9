package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// InsertEvent records an event on the job timeline. Redelivered events are
// ignored; inserted is false when the event was already recorded.
func (s *Storage) InsertEvent(ctx context.Context, ev *domain.Event) (bool, error) {
	query := `
		INSERT INTO job_events (event_id, job_id, user_id, event_type, status, previous_status, occurred_at)
		VALUES (:event_id, :job_id, :user_id, :event_type, :status, :previous_status, :occurred_at)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := s.db.NamedExecContext(ctx, query, ev)
	if err != nil {
		return false, fmt.Errorf("failed to insert job event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Info("Job event already recorded",
			slog.String("event_id", ev.EventID),
			slog.String("job_id", ev.JobID),
		)
		return false, nil
	}

	return true, nil
}
