package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/job-tracker/shared/postgresql"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id               UUID PRIMARY KEY,
	user_id          TEXT NOT NULL,
	job_title        VARCHAR(200) NOT NULL,
	company          VARCHAR(100) NOT NULL,
	status           TEXT NOT NULL DEFAULT 'Saved',
	job_link         TEXT NOT NULL DEFAULT '',
	notes            VARCHAR(1000) NOT NULL DEFAULT '',
	salary           TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	application_date TIMESTAMPTZ NULL,
	deadline         TIMESTAMPTZ NULL,
	contact_person   JSONB NULL,
	interview_dates  JSONB NOT NULL DEFAULT '[]'::jsonb,
	tags             TEXT[] NOT NULL DEFAULT '{}',
	priority         TEXT NOT NULL DEFAULT 'Medium',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_jobs_user_status ON jobs (user_id, status);
CREATE INDEX IF NOT EXISTS idx_jobs_user_created ON jobs (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_jobs_user_application_date ON jobs (user_id, application_date DESC);

CREATE TABLE IF NOT EXISTS job_events (
	event_id        UUID PRIMARY KEY,
	job_id          UUID NOT NULL,
	user_id         TEXT NOT NULL,
	event_type      TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT '',
	previous_status TEXT NOT NULL DEFAULT '',
	occurred_at     TIMESTAMPTZ NOT NULL,
	recorded_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_job_events_job ON job_events (job_id, occurred_at);
`

// Migrate creates the tables and indexes used by the api and the worker
func Migrate(ctx context.Context, pg *postgresql.Client) error {
	if err := pg.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
