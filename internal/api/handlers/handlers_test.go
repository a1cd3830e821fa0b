package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/background"
	"jobharvest/internal/config"
	"jobharvest/internal/store"
	"jobharvest/pkg/models"
)

type stubRunner struct {
	result *models.HarvestResult
}

func (r *stubRunner) Run(ctx context.Context, req *models.HarvestRequest) (*models.HarvestResult, error) {
	return r.result, nil
}

type stubStore struct {
	records []*models.JobRecord
	err     error
}

func (s *stubStore) UpsertIfAbsent(ctx context.Context, record *models.JobRecord) store.Outcome {
	return store.Saved()
}

func (s *stubStore) GetByJobID(ctx context.Context, jobID string) (*models.JobRecord, error) {
	return nil, nil
}

func (s *stubStore) FindUnpublished(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	return nil, nil
}

func (s *stubStore) ListRecent(ctx context.Context, limit int, source string) ([]*models.JobRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*models.JobRecord{}
	for _, record := range s.records {
		if source != "" && record.Source != source {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *stubStore) MarkPublished(ctx context.Context, jobID string, postID int64, postURL string) (bool, error) {
	return false, nil
}

func (s *stubStore) Close() {}

func storedRecord(jobID, source, role string) *models.JobRecord {
	record := models.NewJobRecord(source, role)
	record.JobID = jobID
	return record
}

func startedTaskManager(t *testing.T) *background.TaskManagerImpl {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	tm := background.NewTaskManager(cfg)
	require.NoError(t, tm.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tm.Stop(ctx)
	})
	return tm
}

func postJSON(handler echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func TestHarvestHandlerAcceptsTask(t *testing.T) {
	tm := startedTaskManager(t)
	runner := &stubRunner{result: &models.HarvestResult{}}

	rec, err := postJSON(HarvestHandler(runner, tm), `{"roles":["Clerk"],"sources":["indeed"]}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp models.AsyncAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.AsyncStatusAccepted, resp.Status)
	assert.NotEmpty(t, resp.ProcessID)

	// The submitted task reaches a terminal state and is visible via the
	// status endpoint.
	require.Eventually(t, func() bool {
		status, err := tm.GetTaskStatus(context.Background(), resp.ProcessID)
		return err == nil && status == background.TaskStatusSuccess
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHarvestHandlerRejectsUnknownSource(t *testing.T) {
	tm := startedTaskManager(t)

	rec, err := postJSON(HarvestHandler(&stubRunner{}, tm), `{"sources":["craigslist"]}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_failed")
}

func TestHarvestHandlerRejectsMalformedBody(t *testing.T) {
	tm := startedTaskManager(t)

	rec, err := postJSON(HarvestHandler(&stubRunner{}, tm), `{"roles": 7}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskStatusHandlerNotFound(t *testing.T) {
	tm := startedTaskManager(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("unknown-process")

	require.NoError(t, TaskStatusHandler(tm)(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsHandler(t *testing.T) {
	st := &stubStore{records: []*models.JobRecord{
		storedRecord("indeed-abc123", "indeed", "Clerk"),
		storedRecord("jobz-42", "jobz", "Intern"),
	}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?source=indeed", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, JobsHandler(st)(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Jobs  []*models.JobRecord `json:"jobs"`
		Count int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "indeed-abc123", resp.Jobs[0].JobID)
}

func TestJobsHandlerInvalidLimit(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=zero", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, JobsHandler(&stubStore{})(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, HealthHandler(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}
