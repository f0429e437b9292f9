package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
)

// processEvent stores one event on the timeline within the per-message timeout.
// Store failures are retryable once; a redelivered message that fails again is dropped.
func (w *Worker) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	storeCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	inserted, err := w.storage.InsertEvent(storeCtx, &msg.Event)
	if err != nil {
		if msg.Delivery.Redelivered {
			return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, err)
		}
		return domain.NewRetryableError(err)
	}

	if inserted {
		w.logger.Info("Job event recorded",
			slog.String("event_id", msg.EventID),
			slog.String("event_type", msg.Type),
			slog.String("job_id", msg.JobID),
			slog.String("status", msg.Status),
		)
	}

	return nil
}
