package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
)

const (
	DefaultBulkMaxItems    = 100
	DefaultBulkConcurrency = 8
)

// JobStore is the job record store the service runs against
type JobStore interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJobByID(ctx context.Context, jobID string) (*domain.Job, error)
	ListJobs(ctx context.Context, filter storage.JobFilter) ([]*domain.Job, error)
	CountJobs(ctx context.Context, filter storage.JobFilter) (int, error)
	CountByStatus(ctx context.Context, userID string) (map[domain.Status]int, error)
	UpdateJob(ctx context.Context, jobID string, mutate storage.Mutation) (*domain.Job, error)
	DeleteJob(ctx context.Context, jobID string) (*domain.Job, error)
	DeleteJobsByUser(ctx context.Context, userID string) (int, error)
	ListEvents(ctx context.Context, jobID string) ([]domain.JobEvent, error)
}

// EventPublisher delivers lifecycle events to the activity timeline
type EventPublisher interface {
	Publish(ctx context.Context, event domain.JobEvent) error
}

// Options tunes the bulk mutator
type Options struct {
	BulkMaxItems    int
	BulkConcurrency int
}

// JobService implements querying, statistics and lifecycle mutations of jobs
type JobService struct {
	store           JobStore
	publisher       EventPublisher
	logger          *slog.Logger
	now             func() time.Time
	bulkMaxItems    int
	bulkConcurrency int
}

// NewJobService creates a JobService. A nil publisher drops events.
func NewJobService(store JobStore, publisher EventPublisher, logger *slog.Logger, opts Options) *JobService {
	if publisher == nil {
		publisher = discardPublisher{}
	}
	if opts.BulkMaxItems <= 0 {
		opts.BulkMaxItems = DefaultBulkMaxItems
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = DefaultBulkConcurrency
	}

	return &JobService{
		store:           store,
		publisher:       publisher,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
		bulkMaxItems:    opts.BulkMaxItems,
		bulkConcurrency: opts.BulkConcurrency,
	}
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, domain.JobEvent) error { return nil }

// publish is best effort: a lost event never fails the request
func (s *JobService) publish(ctx context.Context, t domain.EventType, job *domain.Job, previous domain.Status) {
	event := domain.NewJobEvent(t, job, previous, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish job event",
			slog.String("event_type", string(t)),
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
}

// CreateJob stores a new job; status, priority and application date get their defaults
func (s *JobService) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventJobCreated, job, job.Status)
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.store.GetJobByID(ctx, jobID)
}

// DeleteJob removes a job permanently and returns the removed record
func (s *JobService) DeleteJob(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.store.DeleteJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventJobDeleted, job, job.Status)
	return job, nil
}

// JobEvents returns the activity timeline of an existing job
func (s *JobService) JobEvents(ctx context.Context, jobID string) ([]domain.JobEvent, error) {
	if _, err := s.store.GetJobByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx, jobID)
}

// ResetUser deletes every job of a user
func (s *JobService) ResetUser(ctx context.Context, userID string) (int, error) {
	return s.store.DeleteJobsByUser(ctx, userID)
}
