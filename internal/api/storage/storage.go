package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/model"
	"github.com/cuongbtq/job-tracker/shared/postgresql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// JobFilter selects the jobs of one user, optionally by status, with offset pagination.
// Limit 0 returns every match.
type JobFilter struct {
	UserID string
	Status domain.Status
	Limit  int
	Offset int
}

// Mutation edits a loaded job in place before it is validated and written back
type Mutation func(job *domain.Job) error

// Storage is the Postgres backed job record store
type Storage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db:  pg.GetDB(),
		now: storeNow,
	}
}

func storeNow() time.Time {
	// Postgres keeps microseconds
	return time.Now().UTC().Truncate(time.Microsecond)
}

// prepareWrite normalizes and validates the final document of a write
func prepareWrite(job *domain.Job) error {
	job.Normalize()
	return job.Validate()
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidJobID
	}
	return nil
}

func (s *Storage) CreateJob(ctx context.Context, job *domain.Job) error {
	now := s.now()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.ApplyDefaults(now)

	if err := prepareWrite(job); err != nil {
		return err
	}

	query := `
		INSERT INTO jobs (
			id, user_id, job_title, company, status, job_link, notes, salary, location,
			application_date, deadline, contact_person, interview_dates, tags, priority,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :job_title, :company, :status, :job_link, :notes, :salary, :location,
			:application_date, :deadline, :contact_person, :interview_dates, :tags, :priority,
			:created_at, :updated_at
		)
	`

	if _, err := s.db.NamedExecContext(ctx, query, model.FromDomain(job)); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	var row model.Job
	query := `SELECT ` + model.Columns + ` FROM jobs WHERE id = $1`

	err := s.db.GetContext(ctx, &row, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return row.ToDomain(), nil
}

func buildWhere(filter JobFilter) (string, []interface{}) {
	where := " WHERE user_id = $1"
	args := []interface{}{filter.UserID}

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, string(filter.Status))
	}

	return where, args
}

func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]*domain.Job, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + model.Columns + ` FROM jobs` + where

	// Newest first; id breaks ties so pages are stable
	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []model.Job
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*domain.Job, len(rows))
	for i := range rows {
		jobs[i] = rows[i].ToDomain()
	}

	return jobs, nil
}

func (s *Storage) CountJobs(ctx context.Context, filter JobFilter) (int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs`+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	return total, nil
}

// CountByStatus returns the number of jobs per stored status value for a user
func (s *Storage) CountByStatus(ctx context.Context, userID string) (map[domain.Status]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	query := `SELECT status, COUNT(*) AS count FROM jobs WHERE user_id = $1 GROUP BY status`
	if err := s.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to aggregate job stats: %w", err)
	}

	counts := make(map[domain.Status]int, len(rows))
	for _, r := range rows {
		counts[domain.Status(r.Status)] = r.Count
	}

	return counts, nil
}

// UpdateJob loads the job under a row lock, applies mutate, validates the
// resulting document and writes it back in one transaction.
func (s *Storage) UpdateJob(ctx context.Context, jobID string, mutate Mutation) (*domain.Job, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var row model.Job
	query := `SELECT ` + model.Columns + ` FROM jobs WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &row, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job for update: %w", err)
	}

	job := row.ToDomain()
	if err := mutate(job); err != nil {
		return nil, err
	}

	// identity and ownership are not mutable
	job.ID = row.ID
	job.UserID = row.UserID
	job.CreatedAt = row.CreatedAt.UTC()
	job.UpdatedAt = s.now()

	if err := prepareWrite(job); err != nil {
		return nil, err
	}

	update := `
		UPDATE jobs SET
			job_title = :job_title,
			company = :company,
			status = :status,
			job_link = :job_link,
			notes = :notes,
			salary = :salary,
			location = :location,
			application_date = :application_date,
			deadline = :deadline,
			contact_person = :contact_person,
			interview_dates = :interview_dates,
			tags = :tags,
			priority = :priority,
			updated_at = :updated_at
		WHERE id = :id
	`
	if _, err := tx.NamedExecContext(ctx, update, model.FromDomain(job)); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	committed = true

	return job, nil
}

// DeleteJob removes a job and returns the deleted record
func (s *Storage) DeleteJob(ctx context.Context, jobID string) (*domain.Job, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	var row model.Job
	query := `DELETE FROM jobs WHERE id = $1 RETURNING ` + model.Columns

	if err := s.db.GetContext(ctx, &row, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to delete job: %w", err)
	}

	return row.ToDomain(), nil
}

// DeleteJobsByUser removes every job of a user and reports how many were removed
func (s *Storage) DeleteJobsByUser(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete jobs: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted count: %w", err)
	}

	return int(n), nil
}

// ListEvents returns the recorded timeline of a job, oldest first
func (s *Storage) ListEvents(ctx context.Context, jobID string) ([]domain.JobEvent, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	var rows []model.JobEvent
	query := `
		SELECT event_id, job_id, user_id, event_type, status, previous_status, occurred_at, recorded_at
		FROM job_events
		WHERE job_id = $1
		ORDER BY occurred_at ASC, recorded_at ASC
	`
	if err := s.db.SelectContext(ctx, &rows, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list job events: %w", err)
	}

	events := make([]domain.JobEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}

	return events, nil
}
