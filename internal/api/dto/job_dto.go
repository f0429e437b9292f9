package dto

import (
	"math"
	"strconv"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/service"
)

// Response is the envelope of every endpoint
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Count   *int                `json:"count,omitempty"`
	Total   *int                `json:"total,omitempty"`
	Page    *int                `json:"page,omitempty"`
	Pages   *int                `json:"pages,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
	Failed  []BulkFailure       `json:"failed,omitempty"`
}

// IntPtr is a helper for the optional envelope counters
func IntPtr(v int) *int {
	return &v
}

// InterviewRequest is one interview round as sent by clients
type InterviewRequest struct {
	Round string               `json:"round"`
	Date  *string              `json:"date"`
	Type  domain.InterviewType `json:"type"`
	Notes string               `json:"notes"`
}

// ToDomain converts the request; field names errors under prefix
func (r InterviewRequest) ToDomain(prefix string, verr *domain.ValidationError) domain.Interview {
	iv := domain.Interview{
		Round: r.Round,
		Type:  r.Type,
		Notes: r.Notes,
	}
	if iv.Type == "" {
		iv.Type = domain.InterviewVideo
	}
	iv.Date = parseDateField(prefix+"date", "Interview date must be a valid date", r.Date, verr)
	return iv
}

// CreateJobRequest is the body of POST /jobs
type CreateJobRequest struct {
	UserID          string                `json:"userId" binding:"required"`
	JobTitle        string                `json:"jobTitle" binding:"required"`
	Company         string                `json:"company" binding:"required"`
	Status          domain.Status         `json:"status"`
	JobLink         string                `json:"jobLink"`
	Notes           string                `json:"notes"`
	Salary          string                `json:"salary"`
	Location        string                `json:"location"`
	ApplicationDate *string               `json:"applicationDate"`
	Deadline        *string               `json:"deadline"`
	ContactPerson   *domain.ContactPerson `json:"contactPerson"`
	InterviewDates  []InterviewRequest    `json:"interviewDates"`
	Tags            []string              `json:"tags"`
	Priority        domain.Priority       `json:"priority"`
}

// ToDomain converts the request into a new job. Only date parsing can fail
// here; field rules are enforced by the store.
func (r *CreateJobRequest) ToDomain() (*domain.Job, error) {
	verr := &domain.ValidationError{}

	job := &domain.Job{
		UserID:        r.UserID,
		JobTitle:      r.JobTitle,
		Company:       r.Company,
		Status:        r.Status,
		JobLink:       r.JobLink,
		Notes:         r.Notes,
		Salary:        r.Salary,
		Location:      r.Location,
		ContactPerson: r.ContactPerson,
		Tags:          r.Tags,
		Priority:      r.Priority,
	}

	job.ApplicationDate = parseDateField("applicationDate", "Application date must be a valid date", r.ApplicationDate, verr)
	job.Deadline = parseDateField("deadline", "Deadline must be a valid date", r.Deadline, verr)

	for i, iv := range r.InterviewDates {
		job.InterviewDates = append(job.InterviewDates, iv.ToDomain(interviewPrefix(i), verr))
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return job, nil
}

func interviewPrefix(i int) string {
	return "interviewDates[" + strconv.Itoa(i) + "]."
}

func parseDateField(field, message string, raw *string, verr *domain.ValidationError) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := domain.ParseDate(*raw)
	if err != nil {
		verr.Add(field, message, *raw)
		return nil
	}
	return &t
}

// UpdateJobRequest is the body of PUT /jobs/:jobId. Absent fields are left
// unchanged, null clears optional fields.
type UpdateJobRequest struct {
	JobTitle        domain.Optional[string]               `json:"jobTitle"`
	Company         domain.Optional[string]               `json:"company"`
	Status          domain.Optional[domain.Status]        `json:"status"`
	JobLink         domain.Optional[string]               `json:"jobLink"`
	Notes           domain.Optional[string]               `json:"notes"`
	Salary          domain.Optional[string]               `json:"salary"`
	Location        domain.Optional[string]               `json:"location"`
	ApplicationDate domain.Optional[string]               `json:"applicationDate"`
	Deadline        domain.Optional[string]               `json:"deadline"`
	ContactPerson   domain.Optional[domain.ContactPerson] `json:"contactPerson"`
	InterviewDates  domain.Optional[[]InterviewRequest]   `json:"interviewDates"`
	Tags            domain.Optional[[]string]             `json:"tags"`
	Priority        domain.Optional[domain.Priority]      `json:"priority"`
}

// ToPatch converts the request into a domain patch
func (r *UpdateJobRequest) ToPatch() (domain.JobPatch, error) {
	verr := &domain.ValidationError{}

	patch := domain.JobPatch{
		JobTitle:      r.JobTitle,
		Company:       r.Company,
		Status:        r.Status,
		JobLink:       r.JobLink,
		Notes:         r.Notes,
		Salary:        r.Salary,
		Location:      r.Location,
		ContactPerson: r.ContactPerson,
		Tags:          r.Tags,
		Priority:      r.Priority,
	}

	patch.ApplicationDate = optionalDate("applicationDate", "Application date must be a valid date", r.ApplicationDate, verr)
	patch.Deadline = optionalDate("deadline", "Deadline must be a valid date", r.Deadline, verr)

	if r.InterviewDates.Set {
		interviews := make([]domain.Interview, 0, len(r.InterviewDates.Value))
		for i, iv := range r.InterviewDates.Value {
			interviews = append(interviews, iv.ToDomain(interviewPrefix(i), verr))
		}
		patch.InterviewDates = domain.Optional[[]domain.Interview]{Set: true, Null: r.InterviewDates.Null, Value: interviews}
	}

	if err := verr.OrNil(); err != nil {
		return domain.JobPatch{}, err
	}
	return patch, nil
}

func optionalDate(field, message string, raw domain.Optional[string], verr *domain.ValidationError) domain.Optional[time.Time] {
	if !raw.Set {
		return domain.Optional[time.Time]{}
	}
	if raw.Null || raw.Value == "" {
		return domain.Null[time.Time]()
	}
	t, err := domain.ParseDate(raw.Value)
	if err != nil {
		verr.Add(field, message, raw.Value)
		return domain.Optional[time.Time]{}
	}
	return domain.Some(t)
}

// UpdateStatusRequest is the body of PATCH /jobs/:jobId/status
type UpdateStatusRequest struct {
	Status domain.Status `json:"status" binding:"required"`
}

// BulkUpdateItem is one entry of PATCH /jobs/bulk
type BulkUpdateItem struct {
	ID string `json:"id"`
	UpdateJobRequest
}

// BulkUpdateRequest is the body of PATCH /jobs/bulk
type BulkUpdateRequest struct {
	Jobs []BulkUpdateItem `json:"jobs"`
}

// BulkFailure reports an entry of a bulk update that was not applied
type BulkFailure struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ListJobsRequest holds the query string of GET /jobs/:userId
type ListJobsRequest struct {
	Grouped *string `form:"grouped"`
	Status  string  `form:"status"`
	Limit   string  `form:"limit"`
	Page    string  `form:"page"`
}

// IsGrouped reports grouped mode: on when the parameter is absent or exactly "true"
func (r *ListJobsRequest) IsGrouped() bool {
	return r.Grouped == nil || *r.Grouped == "true"
}

// ToQuery validates the pagination parameters of a flat listing
func (r *ListJobsRequest) ToQuery(userID string) (service.ListQuery, error) {
	verr := &domain.ValidationError{}
	q := service.ListQuery{UserID: userID, Status: domain.Status(r.Status), Page: 1}

	if r.Limit != "" {
		limit, err := strconv.Atoi(r.Limit)
		if err != nil || limit < 1 {
			verr.Add("limit", "Limit must be a positive integer", r.Limit)
		}
		q.Limit = limit
	}

	if r.Page != "" {
		page, err := strconv.Atoi(r.Page)
		if err != nil || page < 1 {
			verr.Add("page", "Page must be a positive integer", r.Page)
		}
		q.Page = page
	}

	if q.Limit > 0 && q.Page > 1 && q.Page-1 > math.MaxInt/q.Limit {
		verr.Add("page", service.PageOutOfRangeMessage, r.Page)
	}

	if err := verr.OrNil(); err != nil {
		return service.ListQuery{}, err
	}
	return q, nil
}

// JobDTO is a job as returned to clients, with derived fields
type JobDTO struct {
	*domain.Job
	DaysSinceApplication *int `json:"daysSinceApplication"`
}

func NewJobDTO(job *domain.Job, now time.Time) JobDTO {
	return JobDTO{Job: job, DaysSinceApplication: job.DaysSinceApplication(now)}
}

func NewJobDTOs(jobs []*domain.Job, now time.Time) []JobDTO {
	out := make([]JobDTO, len(jobs))
	for i, job := range jobs {
		out[i] = NewJobDTO(job, now)
	}
	return out
}

// NewGroupedDTO renders the status buckets keyed by status name
func NewGroupedDTO(grouped *service.GroupedJobs, now time.Time) map[domain.Status][]JobDTO {
	out := make(map[domain.Status][]JobDTO, len(grouped.Buckets))
	for st, jobs := range grouped.Buckets {
		out[st] = NewJobDTOs(jobs, now)
	}
	return out
}

// StatsDTO is the body of GET /jobs/:userId/stats
type StatsDTO struct {
	Total        int `json:"total"`
	Saved        int `json:"Saved"`
	Applied      int `json:"Applied"`
	Interviewing int `json:"Interviewing"`
	Offer        int `json:"Offer"`
	Rejected     int `json:"Rejected"`
	ResponseRate int `json:"responseRate"`
	SuccessRate  int `json:"successRate"`
}

func NewStatsDTO(s *service.Stats) StatsDTO {
	return StatsDTO{
		Total:        s.Total,
		Saved:        s.ByStatus[domain.StatusSaved],
		Applied:      s.ByStatus[domain.StatusApplied],
		Interviewing: s.ByStatus[domain.StatusInterviewing],
		Offer:        s.ByStatus[domain.StatusOffer],
		Rejected:     s.ByStatus[domain.StatusRejected],
		ResponseRate: s.ResponseRate,
		SuccessRate:  s.SuccessRate,
	}
}

// EventDTO is one entry of a job's activity timeline
type EventDTO struct {
	EventID        string    `json:"eventId"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func NewEventDTOs(events []domain.JobEvent) []EventDTO {
	out := make([]EventDTO, len(events))
	for i, ev := range events {
		out[i] = EventDTO{
			EventID:        ev.EventID,
			Type:           string(ev.Type),
			Status:         string(ev.Status),
			PreviousStatus: string(ev.PreviousStatus),
			OccurredAt:     ev.OccurredAt,
		}
	}
	return out
}
