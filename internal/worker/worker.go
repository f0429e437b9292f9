package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventStore persists timeline events
type EventStore interface {
	InsertEvent(ctx context.Context, ev *domain.Event) (bool, error)
}

// Broker is the consuming side of the RabbitMQ client
type Broker interface {
	Consume(consumerTag string, prefetch int) (<-chan amqp.Delivery, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Store         EventStore
	Broker        Broker
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
	WorkerID      string
}

// Worker consumes job lifecycle events and records them on the activity timeline
type Worker struct {
	logger        *slog.Logger
	storage       EventStore
	broker        Broker
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	workerID      string
	eventsChan    chan *domain.EventMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency * 2
	}

	workerID := cfg.WorkerID
	if workerID == "" {
		host, _ := os.Hostname()
		workerID = fmt.Sprintf("timeline-%s-%d", host, os.Getpid())
	}

	return &Worker{
		logger:        cfg.Logger,
		storage:       cfg.Store,
		broker:        cfg.Broker,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		jobTimeout:    cfg.JobTimeout,
		workerID:      workerID,
		eventsChan:    make(chan *domain.EventMessage, concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start consumes events until ctx is canceled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)

	if closed := w.startMessageDispatcher(ctx, deliveries); closed {
		return errors.New("rabbitmq delivery channel closed")
	}

	w.logger.Info("Worker context canceled, stopping...")
	return nil
}

// Stop gracefully stops the worker and waits for in-flight events
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
