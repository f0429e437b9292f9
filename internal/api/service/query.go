package service

import (
	"context"
	"math"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
)

// GroupedJobs holds a user's jobs split into the five status buckets
type GroupedJobs struct {
	Buckets map[domain.Status][]*domain.Job
	Total   int
}

// ListQuery selects a flat page of jobs. Limit 0 disables pagination.
type ListQuery struct {
	UserID string
	Status domain.Status
	Limit  int
	Page   int
}

// JobPage is one page of a flat listing
type JobPage struct {
	Jobs  []*domain.Job
	Total int
	Page  int
	Pages int
}

// Stats is the status distribution of a user's jobs with the derived rates
type Stats struct {
	Total        int
	ByStatus     map[domain.Status]int
	ResponseRate int
	SuccessRate  int
}

// GroupedJobs returns every job of the user partitioned by status, newest first
// inside each bucket. Jobs carrying an unknown status are left out.
func (s *JobService) GroupedJobs(ctx context.Context, userID string) (*GroupedJobs, error) {
	jobs, err := s.store.ListJobs(ctx, storage.JobFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	return GroupByStatus(jobs), nil
}

// GroupByStatus partitions jobs, already sorted, into the status buckets.
// Every bucket is present even when empty.
func GroupByStatus(jobs []*domain.Job) *GroupedJobs {
	grouped := &GroupedJobs{Buckets: make(map[domain.Status][]*domain.Job, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		grouped.Buckets[st] = []*domain.Job{}
	}

	for _, job := range jobs {
		bucket, ok := grouped.Buckets[job.Status]
		if !ok {
			continue
		}
		grouped.Buckets[job.Status] = append(bucket, job)
		grouped.Total++
	}

	return grouped
}

// PageOutOfRangeMessage is reported when page * limit does not fit an offset
const PageOutOfRangeMessage = "Page is out of range"

// pageOffset returns (page-1)*limit, or false when it overflows int
func pageOffset(page, limit int) (int, bool) {
	if page < 1 || limit < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}

// ListJobs returns a flat, optionally status filtered and paginated listing
func (s *JobService) ListJobs(ctx context.Context, q ListQuery) (*JobPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}

	filter := storage.JobFilter{UserID: q.UserID, Status: q.Status}
	if q.Limit > 0 {
		offset, ok := pageOffset(q.Page, q.Limit)
		if !ok {
			return nil, domain.NewValidationError("page", PageOutOfRangeMessage, q.Page)
		}
		filter.Limit = q.Limit
		filter.Offset = offset
	}

	jobs, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountJobs(ctx, storage.JobFilter{UserID: q.UserID, Status: q.Status})
	if err != nil {
		return nil, err
	}

	pages := 1
	if q.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}

	return &JobPage{
		Jobs:  jobs,
		Total: total,
		Page:  q.Page,
		Pages: pages,
	}, nil
}

// Stats computes the current status distribution of a user; never cached
func (s *JobService) Stats(ctx context.Context, userID string) (*Stats, error) {
	counts, err := s.store.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := ComputeStats(counts)
	return &stats, nil
}

// ComputeStats derives totals and rates from raw per-status counts.
// Counts for statuses outside the known five are ignored.
func ComputeStats(counts map[domain.Status]int) Stats {
	stats := Stats{ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		stats.ByStatus[st] = counts[st]
		stats.Total += counts[st]
	}

	responded := stats.ByStatus[domain.StatusInterviewing] + stats.ByStatus[domain.StatusOffer]
	stats.ResponseRate = percent(responded, stats.Total)
	stats.SuccessRate = percent(stats.ByStatus[domain.StatusOffer], stats.Total)

	return stats
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
