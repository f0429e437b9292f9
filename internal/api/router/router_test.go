package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/handler"
	"github.com/cuongbtq/job-tracker/internal/api/service"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingID = "8c6f1c9e-4b8e-4c42-9d2f-1f0b7a0e3d11"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Total   *int            `json:"total"`
	Page    *int            `json:"page"`
	Pages   *int            `json:"pages"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Failed []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"failed"`
}

type jobBody struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	JobTitle             string     `json:"jobTitle"`
	Company              string     `json:"company"`
	Status               string     `json:"status"`
	Priority             string     `json:"priority"`
	Notes                string     `json:"notes"`
	ApplicationDate      *time.Time `json:"applicationDate"`
	DaysSinceApplication *int       `json:"daysSinceApplication"`
	InterviewDates       []struct {
		Round string `json:"round"`
		Type  string `json:"type"`
	} `json:"interviewDates"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine

	// ctx is attached to every request when set
	ctx context.Context
}

func newTestAPI(t *testing.T, checks map[string]func(context.Context) error) *testAPI {
	t.Helper()
	return newTestAPIWithStore(t, storage.NewMemoryStorage(), checks)
}

func newTestAPIWithStore(t *testing.T, store service.JobStore, checks map[string]func(context.Context) error) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewJobService(store, nil, logger, service.Options{})

	return &testAPI{
		t: t,
		engine: SetupRouter(&handler.Dependencies{
			Logger:       logger,
			Service:      svc,
			Environment:  "test",
			HealthChecks: checks,
		}),
	}
}

func (a *testAPI) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if a.ctx != nil {
		req = req.WithContext(a.ctx)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) create(fields map[string]any) jobBody {
	a.t.Helper()
	body := map[string]any{"userId": "user-1", "jobTitle": "Engineer", "company": "Acme"}
	for k, v := range fields {
		body[k] = v
	}

	w, env := a.do(http.MethodPost, "/api/v1/jobs", body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var job jobBody
	require.NoError(a.t, json.Unmarshal(env.Data, &job))
	return job
}

func TestCreateJob(t *testing.T) {
	api := newTestAPI(t, nil)

	w, env := api.do(http.MethodPost, "/api/v1/jobs", map[string]any{
		"userId":   "user-1",
		"jobTitle": "Engineer",
		"company":  "Acme",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Job created successfully", env.Message)

	var job jobBody
	require.NoError(t, json.Unmarshal(env.Data, &job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "Saved", job.Status)
	assert.Equal(t, "Medium", job.Priority)
	assert.NotNil(t, job.ApplicationDate)
	require.NotNil(t, job.DaysSinceApplication)
	assert.LessOrEqual(t, *job.DaysSinceApplication, 1)
}

func TestCreateJob_Validation(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name      string
		body      any
		wantField string
		wantMsg   string
	}{
		{
			name:      "empty job title",
			body:      map[string]any{"userId": "user-1", "jobTitle": "", "company": "Acme"},
			wantField: "jobTitle",
			wantMsg:   "Job title is required",
		},
		{
			name:      "missing company",
			body:      map[string]any{"userId": "user-1", "jobTitle": "Engineer"},
			wantField: "company",
			wantMsg:   "Company name is required",
		},
		{
			name:      "invalid link",
			body:      map[string]any{"userId": "user-1", "jobTitle": "Engineer", "company": "Acme", "jobLink": "not-a-url"},
			wantField: "jobLink",
			wantMsg:   "Please provide a valid URL",
		},
		{
			name:      "unknown status",
			body:      map[string]any{"userId": "user-1", "jobTitle": "Engineer", "company": "Acme", "status": "Ghosted"},
			wantField: "status",
			wantMsg:   "Status must be one of: Saved, Applied, Interviewing, Offer, Rejected",
		},
		{
			name:      "bad date",
			body:      map[string]any{"userId": "user-1", "jobTitle": "Engineer", "company": "Acme", "deadline": "someday"},
			wantField: "deadline",
			wantMsg:   "Deadline must be a valid date",
		},
		{
			name:      "wrong type",
			body:      `{"userId": "user-1", "jobTitle": 42, "company": "Acme"}`,
			wantField: "jobTitle",
		},
		{
			name:      "malformed body",
			body:      `{"userId":`,
			wantField: "body",
			wantMsg:   "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.do(http.MethodPost, "/api/v1/jobs", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.Equal(t, "Validation failed", env.Message)
			require.NotEmpty(t, env.Errors)
			assert.Equal(t, tt.wantField, env.Errors[0].Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, env.Errors[0].Message)
			}
		})
	}
}

func TestGetJob(t *testing.T) {
	api := newTestAPI(t, nil)
	job := api.create(nil)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantMsg    string
	}{
		{name: "found", id: job.ID, wantStatus: http.StatusOK, wantMsg: "Job retrieved successfully"},
		{name: "missing", id: missingID, wantStatus: http.StatusNotFound, wantMsg: "Job not found"},
		{name: "malformed id", id: "123", wantStatus: http.StatusBadRequest, wantMsg: "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.do(http.MethodGet, "/api/v1/jobs/job/"+tt.id, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}

	_, env := api.do(http.MethodGet, "/api/v1/jobs/job/123", nil)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "jobId", env.Errors[0].Field)
	assert.Equal(t, "Invalid job ID format", env.Errors[0].Message)
}

func TestListJobs_Grouped(t *testing.T) {
	api := newTestAPI(t, nil)
	api.create(map[string]any{"status": "Applied"})
	api.create(map[string]any{"status": "Offer"})
	api.create(map[string]any{"status": "Offer"})

	w, env := api.do(http.MethodGet, "/api/v1/jobs/user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Jobs retrieved successfully", env.Message)
	require.NotNil(t, env.Count)
	assert.Equal(t, 3, *env.Count)

	var buckets map[string][]jobBody
	require.NoError(t, json.Unmarshal(env.Data, &buckets))
	assert.Len(t, buckets, 5)
	assert.Len(t, buckets["Offer"], 2)
	assert.Len(t, buckets["Applied"], 1)
	assert.NotNil(t, buckets["Rejected"])
	assert.Empty(t, buckets["Rejected"])
}

func TestListJobs_Flat(t *testing.T) {
	api := newTestAPI(t, nil)
	for i := 0; i < 3; i++ {
		api.create(map[string]any{"status": "Saved"})
	}
	api.create(map[string]any{"status": "Rejected"})

	w, env := api.do(http.MethodGet, "/api/v1/jobs/user-1?grouped=false&status=Saved&limit=2&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var jobs []jobBody
	require.NoError(t, json.Unmarshal(env.Data, &jobs))
	assert.Len(t, jobs, 1)
	assert.Equal(t, 1, *env.Count)
	assert.Equal(t, 3, *env.Total)
	assert.Equal(t, 2, *env.Page)
	assert.Equal(t, 2, *env.Pages)

	w, env = api.do(http.MethodGet, "/api/v1/jobs/user-1?grouped=false&limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "limit", env.Errors[0].Field)
}

func TestListJobs_PageOverflow(t *testing.T) {
	api := newTestAPI(t, nil)
	api.create(map[string]any{"status": "Saved"})

	for _, limit := range []string{"2", "4"} {
		t.Run("limit "+limit, func(t *testing.T) {
			w, env := api.do(http.MethodGet, "/api/v1/jobs/user-1?grouped=false&limit="+limit+"&page=4611686018427387905", nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, env.Success)
			require.Len(t, env.Errors, 1)
			assert.Equal(t, "page", env.Errors[0].Field)
			assert.Equal(t, "Page is out of range", env.Errors[0].Message)
		})
	}
}

func TestGetJobStats(t *testing.T) {
	api := newTestAPI(t, nil)
	api.create(map[string]any{"status": "Interviewing"})
	api.create(map[string]any{"status": "Offer"})
	api.create(map[string]any{"status": "Saved"})
	api.create(map[string]any{"status": "Saved"})

	w, env := api.do(http.MethodGet, "/api/v1/jobs/user-1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job statistics retrieved successfully", env.Message)
	assert.JSONEq(t, `{
		"total": 4,
		"Saved": 2,
		"Applied": 0,
		"Interviewing": 1,
		"Offer": 1,
		"Rejected": 0,
		"responseRate": 50,
		"successRate": 25
	}`, string(env.Data))

	_, env = api.do(http.MethodGet, "/api/v1/jobs/nobody/stats", nil)
	assert.Contains(t, string(env.Data), `"total":0`)
	assert.Contains(t, string(env.Data), `"responseRate":0`)
}

func TestUpdateJob(t *testing.T) {
	api := newTestAPI(t, nil)
	job := api.create(map[string]any{"notes": "old", "salary": "100k"})

	w, env := api.do(http.MethodPut, "/api/v1/jobs/"+job.ID, `{"notes": null, "jobTitle": "Staff Engineer", "userId": "hijack"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Job updated successfully", env.Message)

	var updated jobBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Staff Engineer", updated.JobTitle)
	assert.Equal(t, "", updated.Notes)
	assert.Equal(t, "user-1", updated.UserID)

	w, env = api.do(http.MethodPut, "/api/v1/jobs/"+job.ID, map[string]any{"jobTitle": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "jobTitle", env.Errors[0].Field)

	w, _ = api.do(http.MethodPut, "/api/v1/jobs/"+missingID, map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateJobStatus(t *testing.T) {
	api := newTestAPI(t, nil)
	job := api.create(nil)

	w, env := api.do(http.MethodPatch, "/api/v1/jobs/"+job.ID+"/status", map[string]any{"status": "Interviewing"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job status updated successfully", env.Message)

	var updated jobBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Interviewing", updated.Status)

	w, env = api.do(http.MethodPatch, "/api/v1/jobs/"+job.ID+"/status", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Status is required", env.Errors[0].Message)

	w, env = api.do(http.MethodPatch, "/api/v1/jobs/"+job.ID+"/status", map[string]any{"status": "Hired"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "status", env.Errors[0].Field)
}

func TestDeleteJob(t *testing.T) {
	api := newTestAPI(t, nil)
	job := api.create(nil)

	w, env := api.do(http.MethodDelete, "/api/v1/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job deleted successfully", env.Message)

	w, _ = api.do(http.MethodGet, "/api/v1/jobs/job/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/v1/jobs/"+job.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkUpdateJobs(t *testing.T) {
	api := newTestAPI(t, nil)
	a := api.create(nil)
	b := api.create(nil)

	w, env := api.do(http.MethodPatch, "/api/v1/jobs/bulk", map[string]any{
		"jobs": []map[string]any{
			{"id": a.ID, "status": "Applied"},
			{"id": missingID, "status": "Applied"},
			{"id": b.ID, "priority": "High"},
			{"id": a.ID, "deadline": "not a date"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "Jobs updated successfully", env.Message)

	var updated []jobBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Len(t, updated, 2)
	assert.Equal(t, a.ID, updated[0].ID)
	assert.Equal(t, "Applied", updated[0].Status)
	assert.Equal(t, b.ID, updated[1].ID)
	assert.Equal(t, "High", updated[1].Priority)
	assert.Equal(t, 2, *env.Count)

	require.Len(t, env.Failed, 2)
	assert.Equal(t, missingID, env.Failed[0].ID)
	assert.Equal(t, "Job not found", env.Failed[0].Message)
	assert.Equal(t, a.ID, env.Failed[1].ID)
	assert.Equal(t, "Deadline must be a valid date", env.Failed[1].Message)
}

func TestBulkUpdateJobs_Empty(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, body := range []string{`{}`, `{"jobs": []}`} {
		w, env := api.do(http.MethodPatch, "/api/v1/jobs/bulk", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Jobs array is required", env.Message)
	}
}

// cancelAwareStore fails writes whose context is already done, as a database driver would
type cancelAwareStore struct {
	*storage.MemoryStorage
}

func (s cancelAwareStore) CreateJob(ctx context.Context, job *domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStorage.CreateJob(ctx, job)
}

func (s cancelAwareStore) UpdateJob(ctx context.Context, jobID string, mutate storage.Mutation) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryStorage.UpdateJob(ctx, jobID, mutate)
}

func (s cancelAwareStore) DeleteJob(ctx context.Context, jobID string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.MemoryStorage.DeleteJob(ctx, jobID)
}

func TestMutations_ClientDisconnect(t *testing.T) {
	api := newTestAPIWithStore(t, cancelAwareStore{storage.NewMemoryStorage()}, nil)
	a := api.create(nil)
	b := api.create(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api.ctx = ctx

	t.Run("create", func(t *testing.T) {
		w, _ := api.do(http.MethodPost, "/api/v1/jobs", map[string]any{"userId": "user-1", "jobTitle": "Engineer", "company": "Acme"})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("bulk update", func(t *testing.T) {
		w, env := api.do(http.MethodPatch, "/api/v1/jobs/bulk", map[string]any{
			"jobs": []map[string]any{
				{"id": a.ID, "status": "Applied"},
				{"id": b.ID, "status": "Offer"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, env.Failed)
		assert.Equal(t, 2, *env.Count)
	})

	t.Run("status update", func(t *testing.T) {
		w, _ := api.do(http.MethodPatch, "/api/v1/jobs/"+a.ID+"/status", map[string]any{"status": "Interviewing"})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("add interview", func(t *testing.T) {
		w, _ := api.do(http.MethodPost, "/api/v1/jobs/"+a.ID+"/interviews", map[string]any{"round": "Onsite"})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := api.do(http.MethodDelete, "/api/v1/jobs/"+b.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestAddInterview(t *testing.T) {
	api := newTestAPI(t, nil)
	job := api.create(nil)

	api.do(http.MethodPost, "/api/v1/jobs/"+job.ID+"/interviews", map[string]any{"round": "Screen", "type": "Phone"})
	w, env := api.do(http.MethodPost, "/api/v1/jobs/"+job.ID+"/interviews", map[string]any{"round": "Onsite", "date": "2024-02-01T10:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Interview added successfully", env.Message)

	var updated jobBody
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Len(t, updated.InterviewDates, 2)
	assert.Equal(t, "Screen", updated.InterviewDates[0].Round)
	assert.Equal(t, "Onsite", updated.InterviewDates[1].Round)
	assert.Equal(t, "Video", updated.InterviewDates[1].Type)

	w, env = api.do(http.MethodPost, "/api/v1/jobs/"+job.ID+"/interviews", map[string]any{"round": "x", "date": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date", env.Errors[0].Field)
}

func TestListJobEvents(t *testing.T) {
	api := newTestAPI(t, nil)
	job := api.create(nil)

	w, env := api.do(http.MethodGet, "/api/v1/jobs/job/"+job.ID+"/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job events retrieved successfully", env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, 0, *env.Count)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]func(context.Context) error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantMsg:    "Job Tracker API is running",
		},
		{
			name: "failing dependency",
			checks: map[string]func(context.Context) error{
				"database": func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantMsg:    "Job Tracker API is degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, tt.checks)

			w, env := api.do(http.MethodGet, "/health", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, env.Message)
			assert.Equal(t, tt.wantStatus == http.StatusOK, env.Success)
		})
	}
}

func TestRootAndDocs(t *testing.T) {
	api := newTestAPI(t, nil)

	w, env := api.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to Job Tracker API", env.Message)

	w, env = api.do(http.MethodGet, "/api/docs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "PATCH /api/v1/jobs/bulk")
	assert.Contains(t, w.Body.String(), `not reachable for the user id \"job\"`)
}

func TestStaticJobSegmentShadowsUserID(t *testing.T) {
	api := newTestAPI(t, nil)

	// "stats" is taken as a job id, not as the stats of user "job"
	w, env := api.do(http.MethodGet, "/api/v1/jobs/job/stats", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "jobId", env.Errors[0].Field)

	w, env = api.do(http.MethodGet, "/api/v1/jobs/job-seeker/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Job statistics retrieved successfully", env.Message)
}

func TestNoRoute(t *testing.T) {
	api := newTestAPI(t, nil)

	w, env := api.do(http.MethodGet, "/api/v2/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Not found - /api/v2/nothing", env.Message)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
