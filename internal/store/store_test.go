package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
)

// memoryUpserter mimics the store's dedup contract in memory, including the
// resolution of concurrent inserts for the same job id.
type memoryUpserter struct {
	mu      sync.Mutex
	records map[string]*models.JobRecord
	failOn  map[string]error
}

func newMemoryUpserter() *memoryUpserter {
	return &memoryUpserter{
		records: make(map[string]*models.JobRecord),
		failOn:  make(map[string]error),
	}
}

func (m *memoryUpserter) UpsertIfAbsent(_ context.Context, record *models.JobRecord) Outcome {
	if !record.HasIdentity() {
		return Skipped(SkipMissingIdentity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failOn[record.JobID]; ok {
		return Failed(err)
	}
	if _, exists := m.records[record.JobID]; exists {
		return Skipped(SkipAlreadyExists)
	}
	m.records[record.JobID] = record
	return Saved()
}

func record(jobID, title string) *models.JobRecord {
	r := models.NewJobRecord("indeed", "Developer")
	r.JobID = jobID
	r.JobRole = title
	return r
}

func TestSaveBatch_ReturnsNewlySavedSubsequenceInOrder(t *testing.T) {
	up := newMemoryUpserter()
	logger := logging.GetGlobalLogger()

	first, summary := SaveBatch(context.Background(), up, "indeed", "Developer", []*models.JobRecord{
		record("indeed-1", "Backend Developer"),
		record("indeed-2", "Frontend Developer"),
		record("indeed-3", "Fullstack Developer"),
	}, logger)

	require.Len(t, first, 3)
	assert.Equal(t, "indeed-1", first[0].JobID)
	assert.Equal(t, "indeed-2", first[1].JobID)
	assert.Equal(t, "indeed-3", first[2].JobID)
	assert.Equal(t, models.RoleSummary{Source: "indeed", Role: "Developer", Scraped: 3, Saved: 3}, summary)

	// Second run over identical listings saves nothing.
	second, summary := SaveBatch(context.Background(), up, "indeed", "Developer", []*models.JobRecord{
		record("indeed-1", "Backend Developer"),
		record("indeed-2", "Frontend Developer"),
		record("indeed-3", "Fullstack Developer"),
	}, logger)

	assert.Empty(t, second)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Saved)
}

func TestSaveBatch_MissingIdentityCountsAsSkipped(t *testing.T) {
	up := newMemoryUpserter()

	saved, summary := SaveBatch(context.Background(), up, "rozee", "Clerk", []*models.JobRecord{
		record("", "No Identity Clerk"),
		record("rozee-1", "Office Clerk"),
	}, logging.GetGlobalLogger())

	require.Len(t, saved, 1)
	assert.Equal(t, "rozee-1", saved[0].JobID)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 1, summary.Skipped)
}

func TestSaveBatch_FailuresAreIsolated(t *testing.T) {
	up := newMemoryUpserter()
	up.failOn["jobz-2"] = errors.New("connection reset")

	saved, summary := SaveBatch(context.Background(), up, "jobz", "Data Entry", []*models.JobRecord{
		record("jobz-1", "Data Entry Operator"),
		record("jobz-2", "Data Entry Clerk"),
		record("jobz-3", "Typist"),
	}, logging.GetGlobalLogger())

	require.Len(t, saved, 2)
	assert.Equal(t, []string{"jobz-1", "jobz-3"}, []string{saved[0].JobID, saved[1].JobID})
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)

	// saved + skipped + failed accounts for every ingested record
	assert.Equal(t, summary.Scraped, summary.Saved+summary.Skipped+summary.Failed)
}

func TestUpsertIfAbsent_ConcurrentIdenticalRecords(t *testing.T) {
	up := newMemoryUpserter()

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = up.UpsertIfAbsent(context.Background(), record("indeed-race", "Racer"))
		}(i)
	}
	wg.Wait()

	statuses := map[Status]int{}
	for _, o := range outcomes {
		statuses[o.Status]++
		if o.Status == StatusSkipped {
			assert.Equal(t, SkipAlreadyExists, o.Reason)
		}
	}

	assert.Equal(t, 1, statuses[StatusSaved], "exactly one writer wins")
	assert.Equal(t, 1, statuses[StatusSkipped], "the loser sees a benign skip")
	assert.Zero(t, statuses[StatusFailed])
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "saved", Saved().String())
	assert.Equal(t, "skipped(already_exists)", Skipped(SkipAlreadyExists).String())
	assert.Equal(t, "skipped(missing_identity)", Skipped(SkipMissingIdentity).String())
	assert.Equal(t, "failed(boom)", Failed(errors.New("boom")).String())
}
