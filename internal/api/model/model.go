package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/lib/pq"
)

// Job is the row stored in the jobs table
type Job struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	JobTitle        string         `db:"job_title"`
	Company         string         `db:"company"`
	Status          string         `db:"status"`
	JobLink         string         `db:"job_link"`
	Notes           string         `db:"notes"`
	Salary          string         `db:"salary"`
	Location        string         `db:"location"`
	ApplicationDate *time.Time     `db:"application_date"`
	Deadline        *time.Time     `db:"deadline"`
	ContactPerson   ContactJSON    `db:"contact_person"`
	InterviewDates  InterviewsJSON `db:"interview_dates"`
	Tags            pq.StringArray `db:"tags"`
	Priority        string         `db:"priority"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// Columns is the select list matching Job
const Columns = `id, user_id, job_title, company, status, job_link, notes, salary, location,
	application_date, deadline, contact_person, interview_dates, tags, priority,
	created_at, updated_at`

// FromDomain maps an entity to its row
func FromDomain(j *domain.Job) *Job {
	tags := pq.StringArray(j.Tags)
	if tags == nil {
		tags = pq.StringArray{}
	}
	interviews := InterviewsJSON(j.InterviewDates)
	if interviews == nil {
		interviews = InterviewsJSON{}
	}
	return &Job{
		ID:              j.ID,
		UserID:          j.UserID,
		JobTitle:        j.JobTitle,
		Company:         j.Company,
		Status:          string(j.Status),
		JobLink:         j.JobLink,
		Notes:           j.Notes,
		Salary:          j.Salary,
		Location:        j.Location,
		ApplicationDate: j.ApplicationDate,
		Deadline:        j.Deadline,
		ContactPerson:   ContactJSON{ContactPerson: j.ContactPerson},
		InterviewDates:  interviews,
		Tags:            tags,
		Priority:        string(j.Priority),
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// ToDomain maps a row back to the entity
func (m *Job) ToDomain() *domain.Job {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	interviews := []domain.Interview(m.InterviewDates)
	if interviews == nil {
		interviews = []domain.Interview{}
	}
	return &domain.Job{
		ID:              m.ID,
		UserID:          m.UserID,
		JobTitle:        m.JobTitle,
		Company:         m.Company,
		Status:          domain.Status(m.Status),
		JobLink:         m.JobLink,
		Notes:           m.Notes,
		Salary:          m.Salary,
		Location:        m.Location,
		ApplicationDate: utcPtr(m.ApplicationDate),
		Deadline:        utcPtr(m.Deadline),
		ContactPerson:   m.ContactPerson.ContactPerson,
		InterviewDates:  interviews,
		Tags:            tags,
		Priority:        domain.Priority(m.Priority),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// ContactJSON stores an optional contact person in a nullable jsonb column
type ContactJSON struct {
	ContactPerson *domain.ContactPerson
}

func (c ContactJSON) Value() (driver.Value, error) {
	if c.ContactPerson == nil {
		return nil, nil
	}
	return json.Marshal(c.ContactPerson)
}

func (c *ContactJSON) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		c.ContactPerson = nil
		return nil
	}
	var cp domain.ContactPerson
	if err := json.Unmarshal(data, &cp); err != nil {
		return fmt.Errorf("failed to decode contact_person: %w", err)
	}
	c.ContactPerson = &cp
	return nil
}

// InterviewsJSON stores the ordered interview rounds in a jsonb column
type InterviewsJSON []domain.Interview

func (iv InterviewsJSON) Value() (driver.Value, error) {
	if iv == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]domain.Interview(iv))
}

func (iv *InterviewsJSON) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*iv = InterviewsJSON{}
		return nil
	}
	var out []domain.Interview
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode interview_dates: %w", err)
	}
	*iv = out
	return nil
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// JobEvent is a row of the job_events timeline
type JobEvent struct {
	EventID        string    `db:"event_id"`
	JobID          string    `db:"job_id"`
	UserID         string    `db:"user_id"`
	Type           string    `db:"event_type"`
	Status         string    `db:"status"`
	PreviousStatus string    `db:"previous_status"`
	OccurredAt     time.Time `db:"occurred_at"`
	RecordedAt     time.Time `db:"recorded_at"`
}

// ToDomain maps a timeline row to an event
func (e *JobEvent) ToDomain() domain.JobEvent {
	return domain.JobEvent{
		EventID:        e.EventID,
		Type:           domain.EventType(e.Type),
		JobID:          e.JobID,
		UserID:         e.UserID,
		Status:         domain.Status(e.Status),
		PreviousStatus: domain.Status(e.PreviousStatus),
		OccurredAt:     e.OccurredAt.UTC(),
	}
}
