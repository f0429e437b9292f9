package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/google/uuid"
)

// MemoryStorage keeps jobs in process. It has the same semantics as Storage
// and backs the "memory" database driver and the handler tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		jobs: make(map[string]*domain.Job),
		now:  storeNow,
	}
}

// WithClock replaces the time source, used by tests that need distinct creation times
func (m *MemoryStorage) WithClock(now func() time.Time) *MemoryStorage {
	m.now = now
	return m
}

func (m *MemoryStorage) CreateJob(_ context.Context, job *domain.Job) error {
	now := m.now()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.ApplyDefaults(now)

	if err := prepareWrite(job); err != nil {
		return err
	}

	m.mu.Lock()
	m.jobs[job.ID] = job.Clone()
	m.mu.Unlock()

	return nil
}

func (m *MemoryStorage) GetJobByID(_ context.Context, jobID string) (*domain.Job, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job.Clone(), nil
}

func (m *MemoryStorage) matching(filter JobFilter) []*domain.Job {
	var out []*domain.Job
	for _, job := range m.jobs {
		if job.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		out = append(out, job)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out
}

func (m *MemoryStorage) ListJobs(_ context.Context, filter JobFilter) ([]*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.matching(filter)
	if filter.Limit > 0 {
		start := min(max(filter.Offset, 0), len(all))
		end := start + min(filter.Limit, len(all)-start)
		all = all[start:end]
	}

	jobs := make([]*domain.Job, len(all))
	for i, job := range all {
		jobs[i] = job.Clone()
	}
	return jobs, nil
}

func (m *MemoryStorage) CountJobs(_ context.Context, filter JobFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.matching(filter)), nil
}

func (m *MemoryStorage) CountByStatus(_ context.Context, userID string) (map[domain.Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[domain.Status]int)
	for _, job := range m.jobs {
		if job.UserID == userID {
			counts[job.Status]++
		}
	}
	return counts, nil
}

func (m *MemoryStorage) UpdateJob(_ context.Context, jobID string, mutate Mutation) (*domain.Job, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	job := current.Clone()
	if err := mutate(job); err != nil {
		return nil, err
	}

	job.ID = current.ID
	job.UserID = current.UserID
	job.CreatedAt = current.CreatedAt
	job.UpdatedAt = m.now()

	if err := prepareWrite(job); err != nil {
		return nil, err
	}

	m.jobs[jobID] = job.Clone()
	return job, nil
}

func (m *MemoryStorage) DeleteJob(_ context.Context, jobID string) (*domain.Job, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	delete(m.jobs, jobID)
	return job, nil
}

func (m *MemoryStorage) DeleteJobsByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, job := range m.jobs {
		if job.UserID == userID {
			delete(m.jobs, id)
			n++
		}
	}
	return n, nil
}

// ListEvents always returns an empty timeline; events are only recorded by
// the worker into Postgres.
func (m *MemoryStorage) ListEvents(_ context.Context, jobID string) ([]domain.JobEvent, error) {
	if err := checkID(jobID); err != nil {
		return nil, err
	}
	return []domain.JobEvent{}, nil
}
