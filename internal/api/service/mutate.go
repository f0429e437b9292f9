package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
)

// BulkEntry is one record of a bulk update
type BulkEntry struct {
	ID    string
	Patch domain.JobPatch
}

// BulkResult is the outcome of one bulk entry; exactly one of Job and Err is set
type BulkResult struct {
	ID  string
	Job *domain.Job
	Err error
}

// stampApplicationDate sets the application date when a patch moves a job to
// Applied and the job has no application date after the patch.
func stampApplicationDate(job *domain.Job, patch domain.JobPatch, now time.Time) {
	if !patch.Status.Present() || job.Status != domain.StatusApplied {
		return
	}
	if job.ApplicationDate == nil {
		t := now
		job.ApplicationDate = &t
	}
}

// UpdateJob applies a partial update to one job atomically
func (s *JobService) UpdateJob(ctx context.Context, jobID string, patch domain.JobPatch) (*domain.Job, error) {
	var previous domain.Status

	job, err := s.store.UpdateJob(ctx, jobID, func(job *domain.Job) error {
		previous = job.Status
		patch.Apply(job)
		stampApplicationDate(job, patch, s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := domain.EventJobUpdated
	if previous != job.Status {
		eventType = domain.EventStatusChanged
	}
	s.publish(ctx, eventType, job, previous)

	return job, nil
}

// UpdateStatus moves a job to another status through the same path as UpdateJob
func (s *JobService) UpdateStatus(ctx context.Context, jobID string, status domain.Status) (*domain.Job, error) {
	if status == "" {
		return nil, domain.NewValidationError("status", domain.FieldMessage("status", "required"), nil)
	}
	return s.UpdateJob(ctx, jobID, domain.StatusPatch(status))
}

// AddInterview appends one interview round to a job
func (s *JobService) AddInterview(ctx context.Context, jobID string, interview domain.Interview) (*domain.Job, error) {
	if interview.Type == "" {
		interview.Type = domain.InterviewVideo
	}

	job, err := s.store.UpdateJob(ctx, jobID, func(job *domain.Job) error {
		job.InterviewDates = append(job.InterviewDates, interview)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventInterviewAdded, job, job.Status)
	return job, nil
}

// BulkUpdate applies each entry as an independent UpdateJob. Entries run
// concurrently and a failing entry never affects the others; there is no
// transaction across the batch. Results keep the input order.
func (s *JobService) BulkUpdate(ctx context.Context, entries []BulkEntry) ([]BulkResult, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyBulk
	}
	if len(entries) > s.bulkMaxItems {
		return nil, domain.NewValidationError("jobs",
			"Cannot update more than "+strconv.Itoa(s.bulkMaxItems)+" jobs at once", len(entries))
	}

	results := make([]BulkResult, len(entries))
	sem := make(chan struct{}, s.bulkConcurrency)
	var wg sync.WaitGroup

	for i, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, entry BulkEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			job, err := s.UpdateJob(ctx, entry.ID, entry.Patch)
			results[i] = BulkResult{ID: entry.ID, Job: job, Err: err}
		}(i, entry)
	}

	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			s.logger.Debug("Bulk entry failed",
				slog.String("job_id", r.ID),
				slog.String("error", r.Err.Error()),
			)
		}
	}

	s.logger.Info("Bulk update finished",
		slog.Int("requested", len(entries)),
		slog.Int("updated", len(entries)-failed),
		slog.Int("failed", failed),
	)

	return results, nil
}
