package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call
func steppingClock() func() time.Time {
	t := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newJob(userID, title string, status domain.Status) *domain.Job {
	return &domain.Job{UserID: userID, JobTitle: title, Company: "Acme", Status: status}
}

func seedJobs(t *testing.T, m *MemoryStorage, jobs ...*domain.Job) {
	t.Helper()
	for _, job := range jobs {
		require.NoError(t, m.CreateJob(context.Background(), job))
	}
}

func TestMemoryStorage_CreateJob(t *testing.T) {
	m := NewMemoryStorage().WithClock(steppingClock())
	job := &domain.Job{UserID: " user-1 ", JobTitle: "  Engineer ", Company: "Acme"}

	require.NoError(t, m.CreateJob(context.Background(), job))

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "user-1", job.UserID)
	assert.Equal(t, "Engineer", job.JobTitle)
	assert.Equal(t, domain.StatusSaved, job.Status)
	assert.Equal(t, domain.PriorityMedium, job.Priority)
	assert.NotNil(t, job.ApplicationDate)
	assert.Equal(t, job.CreatedAt, job.UpdatedAt)

	stored, err := m.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job, stored)
}

func TestMemoryStorage_CreateJobInvalid(t *testing.T) {
	m := NewMemoryStorage()
	err := m.CreateJob(context.Background(), &domain.Job{UserID: "user-1", Company: "Acme"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "jobTitle", verr.Errors[0].Field)

	n, err := m.CountJobs(context.Background(), JobFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStorage_GetJobByID(t *testing.T) {
	m := NewMemoryStorage()

	_, err := m.GetJobByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidJobID)

	_, err = m.GetJobByID(context.Background(), "8c6f1c9e-4b8e-4c42-9d2f-1f0b7a0e3d11")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	m := NewMemoryStorage()
	job := newJob("user-1", "Engineer", domain.StatusSaved)
	job.Tags = []string{"go"}
	seedJobs(t, m, job)

	job.Tags[0] = "mutated"
	got, err := m.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, got.Tags)

	got.JobTitle = "changed"
	again, err := m.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", again.JobTitle)
}

func TestMemoryStorage_ListJobs(t *testing.T) {
	m := NewMemoryStorage().WithClock(steppingClock())
	seedJobs(t, m,
		newJob("user-1", "first", domain.StatusSaved),
		newJob("user-1", "second", domain.StatusApplied),
		newJob("user-2", "other user", domain.StatusSaved),
		newJob("user-1", "third", domain.StatusSaved),
	)

	tests := []struct {
		name   string
		filter JobFilter
		want   []string
	}{
		{
			name:   "all jobs newest first",
			filter: JobFilter{UserID: "user-1"},
			want:   []string{"third", "second", "first"},
		},
		{
			name:   "status filter",
			filter: JobFilter{UserID: "user-1", Status: domain.StatusSaved},
			want:   []string{"third", "first"},
		},
		{
			name:   "first page",
			filter: JobFilter{UserID: "user-1", Limit: 2},
			want:   []string{"third", "second"},
		},
		{
			name:   "second page",
			filter: JobFilter{UserID: "user-1", Limit: 2, Offset: 2},
			want:   []string{"first"},
		},
		{
			name:   "offset past the end",
			filter: JobFilter{UserID: "user-1", Limit: 2, Offset: 10},
			want:   []string{},
		},
		{
			name:   "negative offset starts at the beginning",
			filter: JobFilter{UserID: "user-1", Limit: 2, Offset: -4},
			want:   []string{"third", "second"},
		},
		{
			name:   "largest limit and offset",
			filter: JobFilter{UserID: "user-1", Limit: math.MaxInt, Offset: math.MaxInt},
			want:   []string{},
		},
		{
			name:   "largest limit from the second job",
			filter: JobFilter{UserID: "user-1", Limit: math.MaxInt, Offset: 1},
			want:   []string{"second", "first"},
		},
		{
			name:   "unknown user",
			filter: JobFilter{UserID: "nobody"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := m.ListJobs(context.Background(), tt.filter)
			require.NoError(t, err)

			titles := make([]string, len(jobs))
			for i, job := range jobs {
				titles[i] = job.JobTitle
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestMemoryStorage_CountByStatus(t *testing.T) {
	m := NewMemoryStorage()
	seedJobs(t, m,
		newJob("user-1", "a", domain.StatusSaved),
		newJob("user-1", "b", domain.StatusOffer),
		newJob("user-1", "c", domain.StatusOffer),
		newJob("user-2", "d", domain.StatusRejected),
	)

	counts, err := m.CountByStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[domain.Status]int{domain.StatusSaved: 1, domain.StatusOffer: 2}, counts)
}

func TestMemoryStorage_UpdateJob(t *testing.T) {
	m := NewMemoryStorage().WithClock(steppingClock())
	job := newJob("user-1", "Engineer", domain.StatusSaved)
	seedJobs(t, m, job)

	updated, err := m.UpdateJob(context.Background(), job.ID, func(j *domain.Job) error {
		j.Status = domain.StatusApplied
		j.UserID = "someone-else"
		j.CreatedAt = time.Time{}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApplied, updated.Status)
	assert.Equal(t, "user-1", updated.UserID)
	assert.Equal(t, job.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(job.UpdatedAt))
}

func TestMemoryStorage_UpdateJobRejected(t *testing.T) {
	m := NewMemoryStorage()
	job := newJob("user-1", "Engineer", domain.StatusSaved)
	seedJobs(t, m, job)

	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		id      string
		mutate  Mutation
		wantErr error
	}{
		{
			name:    "invalid id",
			id:      "123",
			mutate:  func(j *domain.Job) error { return nil },
			wantErr: domain.ErrInvalidJobID,
		},
		{
			name:    "missing job",
			id:      "8c6f1c9e-4b8e-4c42-9d2f-1f0b7a0e3d11",
			mutate:  func(j *domain.Job) error { return nil },
			wantErr: domain.ErrJobNotFound,
		},
		{
			name:    "mutation error",
			id:      job.ID,
			mutate:  func(j *domain.Job) error { return errBoom },
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.UpdateJob(context.Background(), tt.id, tt.mutate)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("invalid final state is not written", func(t *testing.T) {
		_, err := m.UpdateJob(context.Background(), job.ID, func(j *domain.Job) error {
			j.JobTitle = ""
			return nil
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)

		stored, err := m.GetJobByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Engineer", stored.JobTitle)
	})
}

func TestMemoryStorage_Delete(t *testing.T) {
	m := NewMemoryStorage()
	a := newJob("user-1", "a", domain.StatusSaved)
	b := newJob("user-1", "b", domain.StatusSaved)
	c := newJob("user-2", "c", domain.StatusSaved)
	seedJobs(t, m, a, b, c)

	deleted, err := m.DeleteJob(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.JobTitle)

	_, err = m.DeleteJob(context.Background(), a.ID)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	n, err := m.DeleteJobsByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := m.CountJobs(context.Background(), JobFilter{UserID: "user-2"})
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestMemoryStorage_ListEvents(t *testing.T) {
	m := NewMemoryStorage()

	events, err := m.ListEvents(context.Background(), "8c6f1c9e-4b8e-4c42-9d2f-1f0b7a0e3d11")
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = m.ListEvents(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidJobID)
}
