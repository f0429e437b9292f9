package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a lifecycle change of a job
type EventType string

const (
	EventJobCreated     EventType = "job.created"
	EventJobUpdated     EventType = "job.updated"
	EventStatusChanged  EventType = "job.status_changed"
	EventInterviewAdded EventType = "job.interview_added"
	EventJobDeleted     EventType = "job.deleted"
)

// JobEvent is published after every successful mutation
type JobEvent struct {
	EventID        string    `json:"event_id"`
	Type           EventType `json:"type"`
	JobID          string    `json:"job_id"`
	UserID         string    `json:"user_id"`
	Status         Status    `json:"status"`
	PreviousStatus Status    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewJobEvent builds an event describing job after a change of the given type
func NewJobEvent(t EventType, job *Job, previous Status, now time.Time) JobEvent {
	ev := JobEvent{
		EventID:    uuid.New().String(),
		Type:       t,
		JobID:      job.ID,
		UserID:     job.UserID,
		Status:     job.Status,
		OccurredAt: now,
	}
	if previous != job.Status {
		ev.PreviousStatus = previous
	}
	return ev
}
