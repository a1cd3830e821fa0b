package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobharvest/internal/logging"
	"jobharvest/pkg/models"
)

// SQLSTATE for a unique-constraint violation. Two overlapping runs can both
// see a job_id as absent and race on the insert; the loser's violation is a
// benign skip, not an error.
const uniqueViolationCode = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id                 TEXT PRIMARY KEY,
	source                 TEXT NOT NULL,
	search_role            TEXT NOT NULL,
	job_role               TEXT NOT NULL DEFAULT '',
	company_name           TEXT NOT NULL DEFAULT '',
	company_profile_url    TEXT NOT NULL DEFAULT '',
	apply_now_url          TEXT NOT NULL DEFAULT '',
	external_apply_url     TEXT NOT NULL DEFAULT '',
	detail_url             TEXT NOT NULL DEFAULT '',
	location               TEXT NOT NULL DEFAULT '',
	salary                 TEXT NOT NULL DEFAULT '',
	posted_at              TEXT NOT NULL DEFAULT '',
	job_details            JSONB NOT NULL DEFAULT '{}'::jsonb,
	benefits               TEXT[] NOT NULL DEFAULT '{}',
	job_description        TEXT NOT NULL DEFAULT '',
	experience             TEXT NOT NULL DEFAULT '',
	education              TEXT NOT NULL DEFAULT '',
	scrape_error           TEXT NOT NULL DEFAULT '',
	published_to_wordpress BOOLEAN NOT NULL DEFAULT FALSE,
	wordpress_post_id      BIGINT NOT NULL DEFAULT 0,
	wordpress_post_url     TEXT NOT NULL DEFAULT '',
	published_at           TIMESTAMPTZ,
	scraped_at             TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_unpublished ON jobs (published_to_wordpress);
`

// PostgresStore persists job records in PostgreSQL with job_id uniqueness
// as the dedup guarantee. An optional Redis seen-cache short-circuits the
// duplicate lookup; Postgres stays authoritative.
type PostgresStore struct {
	pool   *pgxpool.Pool
	cache  *SeenCache
	logger logging.Logger
}

// NewPostgresStore creates the connection pool, verifies connectivity and
// ensures the schema exists. A nil cache disables the fast path.
func NewPostgresStore(ctx context.Context, databaseURL string, cache *SeenCache, logger logging.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	return &PostgresStore{pool: pool, cache: cache, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// UpsertIfAbsent saves the record unless its job_id is already present.
// The lookup-then-insert pair is not atomic against the unique index, so an
// insert rejected with a uniqueness violation resolves to the same skip as
// a pre-check hit.
func (s *PostgresStore) UpsertIfAbsent(ctx context.Context, record *models.JobRecord) Outcome {
	if !record.HasIdentity() {
		s.logger.Warn("Rejecting job record without identity", map[string]interface{}{
			"title": record.JobRole,
			"role":  record.SearchRole,
		})
		return Skipped(SkipMissingIdentity)
	}

	if s.cache.Seen(ctx, record.JobID) {
		return Skipped(SkipAlreadyExists)
	}

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE job_id = $1)`,
		record.JobID,
	).Scan(&exists)
	if err != nil {
		return Failed(fmt.Errorf("duplicate lookup: %w", err))
	}
	if exists {
		s.cache.Mark(ctx, record.JobID)
		return Skipped(SkipAlreadyExists)
	}

	details, err := json.Marshal(record.JobDetails)
	if err != nil {
		return Failed(fmt.Errorf("encode job details: %w", err))
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (
			job_id, source, search_role, job_role, company_name,
			company_profile_url, apply_now_url, external_apply_url, detail_url,
			location, salary, posted_at, job_details, benefits,
			job_description, experience, education, scrape_error, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19
		)`,
		record.JobID, record.Source, record.SearchRole, record.JobRole,
		record.CompanyName, record.CompanyProfileURL, record.ApplyNowURL,
		record.ExternalApplyURL, record.DetailURL, record.Location,
		record.Salary, record.PostedAt, details, record.Benefits,
		record.JobDescription, record.Experience, record.Education,
		record.Error, record.ScrapedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			s.logger.Debug("Concurrent insert lost the race, treating as duplicate", map[string]interface{}{
				"job_id": record.JobID,
			})
			s.cache.Mark(ctx, record.JobID)
			return Skipped(SkipAlreadyExists)
		}
		return Failed(fmt.Errorf("insert job: %w", err))
	}

	s.cache.Mark(ctx, record.JobID)
	return Saved()
}

// GetByJobID fetches one record, returning (nil, nil) when absent.
func (s *PostgresStore) GetByJobID(ctx context.Context, jobID string) (*models.JobRecord, error) {
	row := s.pool.QueryRow(ctx, selectColumns+` FROM jobs WHERE job_id = $1`, jobID)
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return record, nil
}

// FindUnpublished returns the oldest unpublished records, up to limit.
func (s *PostgresStore) FindUnpublished(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	rows, err := s.pool.Query(ctx,
		selectColumns+` FROM jobs WHERE NOT published_to_wordpress ORDER BY scraped_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query unpublished jobs: %w", err)
	}
	defer rows.Close()

	records := []*models.JobRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unpublished job: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ListRecent returns the newest records, optionally filtered by source.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int, source string) ([]*models.JobRecord, error) {
	query := selectColumns + ` FROM jobs`
	args := []interface{}{}
	if source != "" {
		query += ` WHERE source = $1`
		args = append(args, source)
	}
	query += fmt.Sprintf(` ORDER BY scraped_at DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent jobs: %w", err)
	}
	defer rows.Close()

	records := []*models.JobRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recent job: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkPublished flips the publishing lifecycle fields, conditioned on the
// record not having been published yet. Returns false when the precondition
// failed, meaning another publish pass got there first.
func (s *PostgresStore) MarkPublished(ctx context.Context, jobID string, postID int64, postURL string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET published_to_wordpress = TRUE,
		     wordpress_post_id = $2,
		     wordpress_post_url = $3,
		     published_at = NOW()
		 WHERE job_id = $1 AND NOT published_to_wordpress`,
		jobID, postID, postURL,
	)
	if err != nil {
		return false, fmt.Errorf("mark published %s: %w", jobID, err)
	}
	return tag.RowsAffected() == 1, nil
}

const selectColumns = `SELECT
	job_id, source, search_role, job_role, company_name,
	company_profile_url, apply_now_url, external_apply_url, detail_url,
	location, salary, posted_at, job_details, benefits,
	job_description, experience, education, scrape_error,
	published_to_wordpress, wordpress_post_id, wordpress_post_url,
	published_at, scraped_at`

func scanRecord(row pgx.Row) (*models.JobRecord, error) {
	record := &models.JobRecord{}
	var details []byte

	err := row.Scan(
		&record.JobID, &record.Source, &record.SearchRole, &record.JobRole,
		&record.CompanyName, &record.CompanyProfileURL, &record.ApplyNowURL,
		&record.ExternalApplyURL, &record.DetailURL, &record.Location,
		&record.Salary, &record.PostedAt, &details, &record.Benefits,
		&record.JobDescription, &record.Experience, &record.Education,
		&record.Error, &record.PublishedToWordPress, &record.WordPressPostID,
		&record.WordPressPostURL, &record.PublishedAt, &record.ScrapedAt,
	)
	if err != nil {
		return nil, err
	}

	record.JobDetails = map[string]string{}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &record.JobDetails); err != nil {
			return nil, fmt.Errorf("decode job details: %w", err)
		}
	}
	if record.Benefits == nil {
		record.Benefits = []string{}
	}
	return record, nil
}
