package store

import (
	"context"

	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
)

// Store is the persistence surface for job records. Implementations must
// resolve uniqueness-constraint races on insert to Skipped(AlreadyExists),
// never Failed.
type Store interface {
	UpsertIfAbsent(ctx context.Context, record *models.JobRecord) Outcome
	GetByJobID(ctx context.Context, jobID string) (*models.JobRecord, error)
	FindUnpublished(ctx context.Context, limit int) ([]*models.JobRecord, error)
	// ListRecent returns the newest records, optionally filtered by source.
	ListRecent(ctx context.Context, limit int, source string) ([]*models.JobRecord, error)
	// MarkPublished sets the publishing lifecycle fields, but only if the
	// record has not been marked already. Returns false when another pass
	// won the race.
	MarkPublished(ctx context.Context, jobID string, postID int64, postURL string) (bool, error)
	Close()
}

// Upserter is the subset of Store that SaveBatch needs.
type Upserter interface {
	UpsertIfAbsent(ctx context.Context, record *models.JobRecord) Outcome
}

// SaveBatch persists one role's records in order and returns exactly the
// newly-saved subsequence, preserving relative order, plus per-role counts.
// Per-record failures are logged and isolated; they never abort the batch.
func SaveBatch(ctx context.Context, up Upserter, source, role string, records []*models.JobRecord, logger logging.Logger) ([]*models.JobRecord, models.RoleSummary) {
	summary := models.RoleSummary{Source: source, Role: role, Scraped: len(records)}
	saved := []*models.JobRecord{}

	for _, record := range records {
		outcome := up.UpsertIfAbsent(ctx, record)
		switch outcome.Status {
		case StatusSaved:
			summary.Saved++
			saved = append(saved, record)
			logger.Info("Saved new job record", map[string]interface{}{
				"job_id": record.JobID,
				"role":   role,
				"title":  record.JobRole,
			})
		case StatusSkipped:
			summary.Skipped++
			logger.Debug("Skipped job record", map[string]interface{}{
				"job_id": record.JobID,
				"role":   role,
				"reason": string(outcome.Reason),
			})
		case StatusFailed:
			summary.Failed++
			logger.Error("Failed to save job record", map[string]interface{}{
				"job_id": record.JobID,
				"role":   role,
				"error":  outcome.Err.Error(),
			})
		}
	}

	logger.Info("Role batch persisted", map[string]interface{}{
		"source":  source,
		"role":    role,
		"scraped": summary.Scraped,
		"saved":   summary.Saved,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	})

	return saved, summary
}
