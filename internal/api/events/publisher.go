package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/shared/rabbitmq"
)

// Broker is the part of the RabbitMQ client the publisher needs
type Broker interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

// RabbitPublisher sends job events as JSON messages
type RabbitPublisher struct {
	broker Broker
	logger *slog.Logger
}

func NewRabbitPublisher(broker Broker, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		broker: broker,
		logger: logger,
	}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event domain.JobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode job event: %w", err)
	}

	msg := rabbitmq.Message{
		Body:        body,
		ContentType: "application/json",
		MessageID:   event.EventID,
		Type:        string(event.Type),
	}

	if err := p.broker.PublishWithRetry(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	p.logger.Debug("Job event published",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.Type)),
		slog.String("job_id", event.JobID),
	)

	return nil
}

// LogPublisher only logs events; used when RabbitMQ is disabled
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.JobEvent) error {
	p.logger.Debug("Job event (not published, rabbitmq disabled)",
		slog.String("event_type", string(event.Type)),
		slog.String("job_id", event.JobID),
		slog.String("status", string(event.Status)),
	)
	return nil
}
