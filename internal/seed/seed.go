package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/service"
)

// DemoUserID owns the sample data set
const DemoUserID = "demo-user"

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// SampleJobs returns the demo data set, one job per status
func SampleJobs() []*domain.Job {
	return []*domain.Job{
		{
			UserID:          DemoUserID,
			JobTitle:        "Senior Software Engineer",
			Company:         "TechCorp Inc",
			Status:          domain.StatusApplied,
			JobLink:         "https://techcorp.com/careers/senior-engineer",
			Notes:           "Great company culture, remote-friendly position",
			Salary:          "$120,000 - $160,000",
			Location:        "San Francisco, CA",
			Priority:        domain.PriorityHigh,
			Tags:            []string{"remote", "javascript", "react"},
			ApplicationDate: date(2024, time.January, 10),
		},
		{
			UserID:          DemoUserID,
			JobTitle:        "Frontend Developer",
			Company:         "StartupXYZ",
			Status:          domain.StatusInterviewing,
			JobLink:         "https://startupxyz.com/jobs/frontend",
			Notes:           "Exciting startup with growth potential",
			Salary:          "$90,000 - $120,000",
			Location:        "Remote",
			Priority:        domain.PriorityMedium,
			Tags:            []string{"startup", "vue", "typescript"},
			ApplicationDate: date(2024, time.January, 5),
			InterviewDates: []domain.Interview{{
				Round: "Technical Interview",
				Date:  date(2024, time.January, 20),
				Type:  domain.InterviewVideo,
				Notes: "Focus on Vue.js and component architecture",
			}},
		},
		{
			UserID:   DemoUserID,
			JobTitle: "Full Stack Developer",
			Company:  "Enterprise Solutions",
			Status:   domain.StatusSaved,
			JobLink:  "https://enterprise.com/careers/fullstack",
			Notes:    "Large enterprise company, good benefits",
			Salary:   "$100,000 - $140,000",
			Location: "New York, NY",
			Priority: domain.PriorityMedium,
			Tags:     []string{"enterprise", "node.js", "postgres"},
		},
		{
			UserID:          DemoUserID,
			JobTitle:        "React Developer",
			Company:         "Digital Agency",
			Status:          domain.StatusRejected,
			JobLink:         "https://digitalagency.com/jobs/react",
			Notes:           "Position filled internally",
			Salary:          "$80,000 - $110,000",
			Location:        "Austin, TX",
			Priority:        domain.PriorityLow,
			Tags:            []string{"agency", "react", "design"},
			ApplicationDate: date(2023, time.December, 15),
		},
		{
			UserID:          DemoUserID,
			JobTitle:        "Lead Software Engineer",
			Company:         "Innovation Labs",
			Status:          domain.StatusOffer,
			JobLink:         "https://innovationlabs.com/careers/lead-engineer",
			Notes:           "Received offer! Negotiating salary",
			Salary:          "$150,000 - $180,000",
			Location:        "Seattle, WA",
			Priority:        domain.PriorityHigh,
			Tags:            []string{"leadership", "python", "ai"},
			ApplicationDate: date(2024, time.January, 1),
		},
	}
}

// Result summarizes a seed run
type Result struct {
	Removed  int
	Inserted int
	Stats    *service.Stats
	Grouped  *service.GroupedJobs
}

// Run replaces the demo user's jobs with the sample data set
func Run(ctx context.Context, svc *service.JobService, logger *slog.Logger) (*Result, error) {
	removed, err := svc.ResetUser(ctx, DemoUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear demo jobs: %w", err)
	}
	logger.Info("Cleared existing jobs", slog.String("user_id", DemoUserID), slog.Int("removed", removed))

	res := &Result{Removed: removed}
	for _, job := range SampleJobs() {
		if _, err := svc.CreateJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to insert %q: %w", job.JobTitle, err)
		}
		res.Inserted++
	}
	logger.Info("Inserted sample jobs", slog.Int("count", res.Inserted))

	if res.Stats, err = svc.Stats(ctx, DemoUserID); err != nil {
		return nil, err
	}

	if res.Grouped, err = svc.GroupedJobs(ctx, DemoUserID); err != nil {
		return nil, err
	}

	return res, nil
}
