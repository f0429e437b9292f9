package domain

import (
	"math"
	"time"
)

// Status is the pipeline label of a job. Any status may follow any other.
type Status string

const (
	StatusSaved        Status = "Saved"
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every status in board order.
var Statuses = []Status{
	StatusSaved,
	StatusApplied,
	StatusInterviewing,
	StatusOffer,
	StatusRejected,
}

// IsValid reports whether s is one of the five known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// Priority of a job posting
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// InterviewType describes the format of an interview round
type InterviewType string

const (
	InterviewPhone     InterviewType = "Phone"
	InterviewVideo     InterviewType = "Video"
	InterviewInPerson  InterviewType = "In-Person"
	InterviewTechnical InterviewType = "Technical"
	InterviewHR        InterviewType = "HR"
	InterviewFinal     InterviewType = "Final"
)

func (t InterviewType) IsValid() bool {
	switch t {
	case InterviewPhone, InterviewVideo, InterviewInPerson, InterviewTechnical, InterviewHR, InterviewFinal:
		return true
	}
	return false
}

// ContactPerson is the recruiter or hiring manager attached to a job
type ContactPerson struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Interview is one round recorded against a job
type Interview struct {
	Round string        `json:"round"`
	Date  *time.Time    `json:"date,omitempty"`
	Type  InterviewType `json:"type" validate:"interviewtype"`
	Notes string        `json:"notes"`
}

// Job is a tracked job posting owned by a single user
type Job struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId" validate:"required"`
	JobTitle        string         `json:"jobTitle" validate:"required,max=200"`
	Company         string         `json:"company" validate:"required,max=100"`
	Status          Status         `json:"status" validate:"jobstatus"`
	JobLink         string         `json:"jobLink" validate:"omitempty,url"`
	Notes           string         `json:"notes" validate:"max=1000"`
	Salary          string         `json:"salary"`
	Location        string         `json:"location"`
	ApplicationDate *time.Time     `json:"applicationDate"`
	Deadline        *time.Time     `json:"deadline"`
	ContactPerson   *ContactPerson `json:"contactPerson"`
	InterviewDates  []Interview    `json:"interviewDates" validate:"dive"`
	Tags            []string       `json:"tags"`
	Priority        Priority       `json:"priority" validate:"priority"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// ApplyDefaults fills the values a freshly created job gets when the caller omits them
func (j *Job) ApplyDefaults(now time.Time) {
	if j.Status == "" {
		j.Status = StatusSaved
	}
	if j.Priority == "" {
		j.Priority = PriorityMedium
	}
	if j.ApplicationDate == nil {
		t := now
		j.ApplicationDate = &t
	}
	for i := range j.InterviewDates {
		j.InterviewDates[i].applyDefaults()
	}
	if j.InterviewDates == nil {
		j.InterviewDates = []Interview{}
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
}

func (iv *Interview) applyDefaults() {
	if iv.Type == "" {
		iv.Type = InterviewVideo
	}
}

// DaysSinceApplication returns the whole days, rounded up, between the
// application date and now. Nil when no application date is set.
func (j *Job) DaysSinceApplication(now time.Time) *int {
	if j.ApplicationDate == nil {
		return nil
	}
	diff := now.Sub(*j.ApplicationDate)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	return &days
}

// Clone returns a deep copy so owned substructures are never shared
func (j *Job) Clone() *Job {
	c := *j
	if j.ApplicationDate != nil {
		t := *j.ApplicationDate
		c.ApplicationDate = &t
	}
	if j.Deadline != nil {
		t := *j.Deadline
		c.Deadline = &t
	}
	if j.ContactPerson != nil {
		cp := *j.ContactPerson
		c.ContactPerson = &cp
	}
	if j.InterviewDates != nil {
		c.InterviewDates = make([]Interview, len(j.InterviewDates))
		for i, iv := range j.InterviewDates {
			if iv.Date != nil {
				t := *iv.Date
				iv.Date = &t
			}
			c.InterviewDates[i] = iv
		}
	}
	if j.Tags != nil {
		c.Tags = append([]string{}, j.Tags...)
	}
	return &c
}
