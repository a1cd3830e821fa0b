package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/config"
	"jobharvest/internal/store"
	"jobharvest/pkg/models"
)

type fakePublishStore struct {
	records map[string]*models.JobRecord
	order   []string

	// markResult forces the MarkPublished return for race simulations.
	markResult *bool
}

func newFakePublishStore(records ...*models.JobRecord) *fakePublishStore {
	s := &fakePublishStore{records: map[string]*models.JobRecord{}}
	for _, r := range records {
		s.records[r.JobID] = r
		s.order = append(s.order, r.JobID)
	}
	return s
}

func (s *fakePublishStore) UpsertIfAbsent(ctx context.Context, record *models.JobRecord) store.Outcome {
	return store.Saved()
}

func (s *fakePublishStore) GetByJobID(ctx context.Context, jobID string) (*models.JobRecord, error) {
	return s.records[jobID], nil
}

func (s *fakePublishStore) FindUnpublished(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	var out []*models.JobRecord
	for _, id := range s.order {
		if record := s.records[id]; !record.PublishedToWordPress {
			out = append(out, record)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakePublishStore) ListRecent(ctx context.Context, limit int, source string) ([]*models.JobRecord, error) {
	var out []*models.JobRecord
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *fakePublishStore) MarkPublished(ctx context.Context, jobID string, postID int64, postURL string) (bool, error) {
	if s.markResult != nil {
		return *s.markResult, nil
	}
	record, ok := s.records[jobID]
	if !ok || record.PublishedToWordPress {
		return false, nil
	}
	record.PublishedToWordPress = true
	record.WordPressPostID = postID
	record.WordPressPostURL = postURL
	return true, nil
}

func (s *fakePublishStore) Close() {}

type fakeRewriter struct {
	article string
	err     error
	calls   atomic.Int64
}

func (r *fakeRewriter) RewriteArticle(ctx context.Context, payload RewritePayload) (string, error) {
	r.calls.Add(1)
	if r.err != nil {
		return "", r.err
	}
	return r.article, nil
}

func (r *fakeRewriter) IsHealthy(ctx context.Context) error { return nil }

func (r *fakeRewriter) ProviderName() string { return "fake" }

func publishTestConfig(t *testing.T, wpURL string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.WordPress.Primary.BaseURL = wpURL
	cfg.WordPress.Primary.Username = "editor"
	cfg.WordPress.Primary.Password = "secret"
	cfg.Publisher.SnapshotDir = ""
	return cfg
}

func wpTestServer(t *testing.T, posts *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := atomic.AddInt64(posts, 1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   float64(id),
			"link": "https://blog.example.com/?p=1",
		})
	}))
}

func unpublishedRecord(jobID string) *models.JobRecord {
	record := models.NewJobRecord("indeed", "Clerk")
	record.JobID = jobID
	record.JobRole = "Clerk"
	record.CompanyName = "Acme"
	return record
}

func TestPublishPass(t *testing.T) {
	var posts int64
	server := wpTestServer(t, &posts)
	defer server.Close()

	first := unpublishedRecord("indeed-abc123")
	second := unpublishedRecord("indeed-def456")
	st := newFakePublishStore(first, second)
	rewriter := &fakeRewriter{article: "<article><h2>About the Role</h2><p>Good job.</p></article>"}

	pub := NewPublisher(publishTestConfig(t, server.URL), st, rewriter)
	result, err := pub.Publish(context.Background(), &models.PublishRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Published)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, result.PostURLs, 2)
	assert.Equal(t, int64(2), posts)

	assert.True(t, first.PublishedToWordPress)
	assert.Equal(t, int64(1), first.WordPressPostID)
	assert.Equal(t, "https://blog.example.com/?p=1", first.WordPressPostURL)
}

func TestPublishSkipsAlreadyPublishedOnReRead(t *testing.T) {
	var posts int64
	server := wpTestServer(t, &posts)
	defer server.Close()

	record := unpublishedRecord("jobz-99")
	st := newFakePublishStore(record)
	rewriter := &fakeRewriter{article: "<article><p>Body</p></article>"}
	pub := NewPublisher(publishTestConfig(t, server.URL), st, rewriter)

	// Published between batch listing and the per-record re-read.
	record.PublishedToWordPress = true

	result, err := pub.Publish(context.Background(), &models.PublishRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Published)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, int64(0), posts)
	assert.Equal(t, int64(0), rewriter.calls.Load())
}

func TestPublishMarkRaceCountsAsSkipped(t *testing.T) {
	var posts int64
	server := wpTestServer(t, &posts)
	defer server.Close()

	st := newFakePublishStore(unpublishedRecord("rozee-1"))
	lost := false
	st.markResult = &lost
	rewriter := &fakeRewriter{article: "<article><p>Body</p></article>"}

	pub := NewPublisher(publishTestConfig(t, server.URL), st, rewriter)
	result, err := pub.Publish(context.Background(), &models.PublishRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Published)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestPublishRewriteFailureIsolated(t *testing.T) {
	var posts int64
	server := wpTestServer(t, &posts)
	defer server.Close()

	st := newFakePublishStore(unpublishedRecord("indeed-1"))
	rewriter := &fakeRewriter{err: errors.New("model overloaded")}

	pub := NewPublisher(publishTestConfig(t, server.URL), st, rewriter)
	result, err := pub.Publish(context.Background(), &models.PublishRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Published)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, int64(0), posts)
	assert.False(t, st.records["indeed-1"].PublishedToWordPress)
}

func TestPublishHonorsLimitAndSite(t *testing.T) {
	var posts int64
	server := wpTestServer(t, &posts)
	defer server.Close()

	st := newFakePublishStore(
		unpublishedRecord("indeed-1"),
		unpublishedRecord("indeed-2"),
		unpublishedRecord("indeed-3"),
	)
	rewriter := &fakeRewriter{article: "<article><p>Body</p></article>"}

	cfg := publishTestConfig(t, "http://unused.invalid")
	cfg.WordPress.Secondary.BaseURL = server.URL
	cfg.WordPress.Secondary.Username = "editor"
	cfg.WordPress.Secondary.Password = "secret"

	pub := NewPublisher(cfg, st, rewriter)
	result, err := pub.Publish(context.Background(), &models.PublishRequest{Limit: 2, Site: "secondary"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Published)
	assert.Equal(t, int64(2), posts)
}

func TestPublishUnconfiguredSite(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.WordPress.Primary = config.WordPressSite{Label: "primary"}

	pub := NewPublisher(cfg, newFakePublishStore(), &fakeRewriter{})
	_, err = pub.Publish(context.Background(), &models.PublishRequest{})
	require.Error(t, err)
}
