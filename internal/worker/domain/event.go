package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is a job lifecycle event as published by the api service
type Event struct {
	EventID        string    `json:"event_id" db:"event_id"`
	Type           string    `json:"type" db:"event_type"`
	JobID          string    `json:"job_id" db:"job_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Status         string    `json:"status" db:"status"`
	PreviousStatus string    `json:"previous_status" db:"previous_status"`
	OccurredAt     time.Time `json:"occurred_at" db:"occurred_at"`
}

// EventMessage is a decoded event together with the delivery it came from
type EventMessage struct {
	Event
	Delivery amqp.Delivery
}

// DecodeEvent parses and checks a message body. Every failure wraps ErrInvalidPayload.
func DecodeEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if _, err := uuid.Parse(ev.EventID); err != nil {
		return nil, fmt.Errorf("%w: event_id %q is not a UUID", ErrInvalidPayload, ev.EventID)
	}
	if _, err := uuid.Parse(ev.JobID); err != nil {
		return nil, fmt.Errorf("%w: job_id %q is not a UUID", ErrInvalidPayload, ev.JobID)
	}
	if !IsKnownEventType(ev.Type) {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidPayload, ev.Type)
	}
	if ev.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidPayload)
	}
	if ev.OccurredAt.IsZero() {
		return nil, fmt.Errorf("%w: occurred_at is required", ErrInvalidPayload)
	}

	return &ev, nil
}
