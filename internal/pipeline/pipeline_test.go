package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/scraper"
	"jobharvest/internal/scraper/sites"
	"jobharvest/internal/store"
	"jobharvest/pkg/models"
)

// fakeFetcher serves canned HTML per URL and records every fetch.
type fakeFetcher struct {
	pages   map[string]string
	failOn  map[string]bool
	fetched []string
}

func (f *fakeFetcher) FetchHTML(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	if f.failOn[url] {
		return "", fmt.Errorf("fetch failed for %s", url)
	}
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return html, nil
}

func (f *fakeFetcher) Name() string    { return "fake" }
func (f *fakeFetcher) IsHealthy() bool { return true }
func (f *fakeFetcher) Cleanup() error  { return nil }

// nopLimiter admits every request immediately.
type nopLimiter struct{}

func (nopLimiter) Wait(context.Context, string) error { return nil }
func (nopLimiter) RecordSuccess(string)               {}
func (nopLimiter) RecordFailure(string, error)        {}

// memoryStore resolves duplicate inserts the way the real store does.
type memoryStore struct {
	mu   sync.Mutex
	byID map[string]*models.JobRecord
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: make(map[string]*models.JobRecord)}
}

func (m *memoryStore) UpsertIfAbsent(_ context.Context, record *models.JobRecord) store.Outcome {
	if !record.HasIdentity() {
		return store.Skipped(store.SkipMissingIdentity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[record.JobID]; exists {
		return store.Skipped(store.SkipAlreadyExists)
	}
	m.byID[record.JobID] = record
	return store.Saved()
}

const searchPageHTML = `
<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a data-testid="jobTitle" href="/viewjob?jk=abc123">Data Entry Clerk</a></h2>
  <span data-testid="company-name">Acme Corp</span>
  <div data-testid="text-location">Remote</div>
  <div data-testid="job-snippet">Enter data accurately.</div>
</div>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a data-testid="jobTitle" href="/viewjob?jk=def456">Records Clerk</a></h2>
  <span data-testid="company-name">Beta LLC</span>
</div>
</body></html>`

const detailPageHTML = `
<html><body>
<h1 data-testid="jobsearch-JobInfoHeader-title">Senior Data Entry Clerk</h1>
<span data-company-name="true">Acme Corp</span>
<div data-testid="jobDescription"><p>Full description text.</p></div>
</body></html>`

func newTestRunner(t *testing.T, fetcher scraper.Fetcher, st store.Upserter) *Runner {
	t.Helper()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	return &Runner{
		config:       cfg,
		limiter:      nopLimiter{},
		store:        st,
		logger:       logging.GetGlobalLogger(),
		fetcherFor:   func(string) (scraper.Fetcher, error) { return fetcher, nil },
		collectorFor: sites.For,
	}
}

func TestRunnerHarvestEndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.indeed.com/jobs?q=Clerk":      searchPageHTML,
			"https://www.indeed.com/viewjob?jk=abc123": detailPageHTML,
			"https://www.indeed.com/viewjob?jk=def456": detailPageHTML,
		},
	}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	result, err := runner.Run(context.Background(), &models.HarvestRequest{
		Roles:   []string{"Clerk"},
		Sources: []string{"indeed"},
	})
	require.NoError(t, err)

	require.Len(t, result.Summaries, 1)
	summary := result.Summaries[0]
	assert.Equal(t, "indeed", summary.Source)
	assert.Equal(t, "Clerk", summary.Role)
	assert.Equal(t, 2, summary.Scraped)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Dropped)

	require.Len(t, result.NewJobs, 2)
	assert.Equal(t, "indeed-abc123", result.NewJobs[0].JobID)
	assert.Equal(t, "indeed-def456", result.NewJobs[1].JobID)
	// Detail fields flowed into the first record
	assert.Equal(t, "Senior Data Entry Clerk", result.NewJobs[0].JobRole)
	assert.Empty(t, result.NewJobs[0].Error)
}

func TestRunnerHarvestIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.indeed.com/jobs?q=Clerk":      searchPageHTML,
			"https://www.indeed.com/viewjob?jk=abc123": detailPageHTML,
			"https://www.indeed.com/viewjob?jk=def456": detailPageHTML,
		},
	}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	req := &models.HarvestRequest{Roles: []string{"Clerk"}, Sources: []string{"indeed"}}

	first, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.NewJobs, 2)

	second, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Empty(t, second.NewJobs)
	require.Len(t, second.Summaries, 1)
	assert.Equal(t, 2, second.Summaries[0].Scraped)
	assert.Equal(t, 0, second.Summaries[0].Saved)
	assert.Equal(t, 2, second.Summaries[0].Skipped)
}

func TestRunnerDetailFailureDegradesRecord(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.indeed.com/jobs?q=Clerk":      searchPageHTML,
			"https://www.indeed.com/viewjob?jk=def456": detailPageHTML,
		},
		failOn: map[string]bool{
			"https://www.indeed.com/viewjob?jk=abc123": true,
		},
	}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	result, err := runner.Run(context.Background(), &models.HarvestRequest{
		Roles:   []string{"Clerk"},
		Sources: []string{"indeed"},
	})
	require.NoError(t, err)

	// The record with the failing detail page is persisted from card data
	// with its error recorded, not dropped.
	require.Len(t, result.NewJobs, 2)
	degraded := st.byID["indeed-abc123"]
	require.NotNil(t, degraded)
	assert.NotEmpty(t, degraded.Error)
	assert.Equal(t, "Data Entry Clerk", degraded.JobRole)
	assert.Equal(t, "Enter data accurately.", degraded.JobDescription)

	intact := st.byID["indeed-def456"]
	require.NotNil(t, intact)
	assert.Empty(t, intact.Error)
}

func TestRunnerSkipDetails(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.indeed.com/jobs?q=Clerk": searchPageHTML,
		},
	}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	result, err := runner.Run(context.Background(), &models.HarvestRequest{
		Roles:   []string{"Clerk"},
		Sources: []string{"indeed"},
		Options: &models.HarvestOptions{SkipDetails: true},
	})
	require.NoError(t, err)

	require.Len(t, result.NewJobs, 2)
	assert.Equal(t, []string{"https://www.indeed.com/jobs?q=Clerk"}, fetcher.fetched)
}

func TestRunnerMaxPerRole(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.indeed.com/jobs?q=Clerk": searchPageHTML,
		},
	}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	result, err := runner.Run(context.Background(), &models.HarvestRequest{
		Roles:   []string{"Clerk"},
		Sources: []string{"indeed"},
		Options: &models.HarvestOptions{SkipDetails: true, MaxPerRole: 1},
	})
	require.NoError(t, err)

	require.Len(t, result.NewJobs, 1)
	assert.Equal(t, "indeed-abc123", result.NewJobs[0].JobID)
}

func TestRunnerSearchFailureIsolated(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://www.indeed.com/jobs?q=Clerk": searchPageHTML,
		},
		failOn: map[string]bool{
			"https://www.indeed.com/jobs?q=Intern": true,
		},
	}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	result, err := runner.Run(context.Background(), &models.HarvestRequest{
		Roles:   []string{"Intern", "Clerk"},
		Sources: []string{"indeed"},
		Options: &models.HarvestOptions{SkipDetails: true},
	})
	require.NoError(t, err)

	// Both roles report a summary; the failed one is empty, the healthy one
	// still harvested.
	require.Len(t, result.Summaries, 2)
	assert.Equal(t, 0, result.Summaries[0].Scraped)
	assert.Equal(t, 2, result.Summaries[1].Saved)
	require.Len(t, result.NewJobs, 2)
}

func TestRunnerUnknownSourceSkipped(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{}}
	st := newMemoryStore()
	runner := newTestRunner(t, fetcher, st)

	runner.collectorFor = func(source string) (scraper.Collector, error) {
		return nil, fmt.Errorf("unknown source: %s", source)
	}

	result, err := runner.Run(context.Background(), &models.HarvestRequest{
		Roles:   []string{"Clerk"},
		Sources: []string{"indeed"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Summaries)
	assert.Empty(t, result.NewJobs)
}
