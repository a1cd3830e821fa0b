package pipeline

import (
	"context"
	"fmt"
	"time"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/internal/scraper"
	"jobharvest/internal/scraper/sites"
	"jobharvest/internal/store"
	"jobharvest/pkg/models"
	"jobharvest/pkg/utils"
)

// Limiter is the politeness gate consulted before every outbound fetch.
type Limiter interface {
	Wait(ctx context.Context, url string) error
	RecordSuccess(url string)
	RecordFailure(url string, err error)
}

// Runner drives one harvest pass: for each source and role it fetches the
// search page, enriches every card with its detail page, normalizes the
// result and persists it. A failing detail page degrades the record instead
// of dropping it; only cards without a title or link are dropped.
type Runner struct {
	config  *config.Config
	limiter Limiter
	store   store.Upserter
	logger  types.Logger

	fetcherFor   func(engine string) (scraper.Fetcher, error)
	collectorFor func(source string) (scraper.Collector, error)
}

// NewRunner creates a harvest runner backed by the configured scraper
// engines and site collectors.
func NewRunner(cfg *config.Config, st store.Upserter, limiter Limiter) *Runner {
	factory := scraper.NewEngineFactory(cfg)
	return &Runner{
		config:       cfg,
		limiter:      limiter,
		store:        st,
		logger:       logging.GetGlobalLogger(),
		fetcherFor:   factory.CreateFetcher,
		collectorFor: sites.For,
	}
}

// Run executes a harvest for the requested roles and sources. Role-level
// failures are recorded in the summaries; they never abort the run.
func (r *Runner) Run(ctx context.Context, req *models.HarvestRequest) (*models.HarvestResult, error) {
	start := time.Now()

	roles := req.Roles
	if len(roles) == 0 {
		roles = r.config.Harvest.Roles
	}
	sources := req.Sources
	if len(sources) == 0 {
		sources = r.config.Harvest.Sources
	}

	var opts models.HarvestOptions
	if req.Options != nil {
		opts = *req.Options
	}

	if opts.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutSecs)*time.Second)
		defer cancel()
	}

	maxPerRole := opts.MaxPerRole
	if maxPerRole <= 0 {
		maxPerRole = r.config.Harvest.ResultsPerRole
	}
	skipDetails := opts.SkipDetails || r.config.Harvest.SkipDetails

	fetcher, err := r.fetcherFor(opts.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer func() { _ = fetcher.Cleanup() }()

	r.logger.Info("Harvest started", map[string]interface{}{
		"roles":        len(roles),
		"sources":      sources,
		"engine":       fetcher.Name(),
		"max_per_role": maxPerRole,
	})

	result := &models.HarvestResult{
		Summaries: []models.RoleSummary{},
		NewJobs:   []*models.JobRecord{},
	}

	for _, source := range sources {
		collector, err := r.collectorFor(source)
		if err != nil {
			r.logger.Warn("Skipping unknown source", map[string]interface{}{
				"source": source,
				"error":  err.Error(),
			})
			continue
		}

		normalizer, ok := Normalizers()[source]
		if !ok {
			r.logger.Warn("No normalizer registered for source", map[string]interface{}{
				"source": source,
			})
			continue
		}

		for _, role := range roles {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}

			saved, summary, err := r.harvestRole(ctx, fetcher, collector, normalizer, role, maxPerRole, skipDetails)
			if err != nil {
				r.logger.Error("Role harvest failed", map[string]interface{}{
					"source": source,
					"role":   role,
					"error":  err.Error(),
				})
			}
			result.Summaries = append(result.Summaries, summary)
			result.NewJobs = append(result.NewJobs, saved...)
		}
	}

	result.Duration = utils.FormatDuration(time.Since(start))

	r.logger.Info("Harvest finished", map[string]interface{}{
		"new_jobs": len(result.NewJobs),
		"duration": result.Duration,
	})

	return result, nil
}

// harvestRole collects, normalizes and persists one role's listings from one
// source.
func (r *Runner) harvestRole(ctx context.Context, fetcher scraper.Fetcher, collector scraper.Collector, normalizer Normalizer, role string, maxPerRole int, skipDetails bool) ([]*models.JobRecord, models.RoleSummary, error) {
	source := collector.Source()
	emptySummary := models.RoleSummary{Source: source, Role: role}

	searchHTML, err := r.fetch(ctx, fetcher, collector.SearchURL(role))
	if err != nil {
		return nil, emptySummary, fmt.Errorf("search fetch failed: %w", err)
	}

	listings, err := collector.ParseListings(searchHTML)
	if err != nil {
		return nil, emptySummary, fmt.Errorf("failed to parse listings: %w", err)
	}

	r.logger.Info("Listings collected", map[string]interface{}{
		"source": source,
		"role":   role,
		"found":  len(listings),
	})

	if len(listings) > maxPerRole {
		listings = listings[:maxPerRole]
	}

	records := make([]*models.JobRecord, 0, len(listings))
	dropped := 0

	for _, listing := range listings {
		var detail *scraper.RawDetail
		var detailErr error

		if !skipDetails && listing.Link != "" {
			detail, detailErr = r.fetchDetail(ctx, fetcher, collector, listing.Link)
			if detailErr != nil {
				r.logger.Warn("Detail enrichment failed, keeping card data", map[string]interface{}{
					"source": source,
					"link":   listing.Link,
					"error":  detailErr.Error(),
				})
			}
		}

		record, err := normalizer.Normalize(role, listing, detail)
		if err != nil {
			dropped++
			r.logger.Warn("Dropped malformed listing", map[string]interface{}{
				"source": source,
				"role":   role,
				"error":  err.Error(),
			})
			continue
		}

		if detailErr != nil {
			record.Error = detailErr.Error()
		}

		records = append(records, record)
	}

	saved, summary := store.SaveBatch(ctx, r.store, source, role, records, r.logger)
	summary.Dropped = dropped
	summary.Scraped += dropped

	return saved, summary, nil
}

func (r *Runner) fetchDetail(ctx context.Context, fetcher scraper.Fetcher, collector scraper.Collector, link string) (*scraper.RawDetail, error) {
	html, err := r.fetch(ctx, fetcher, link)
	if err != nil {
		return nil, err
	}
	return collector.ParseDetail(html)
}

func (r *Runner) fetch(ctx context.Context, fetcher scraper.Fetcher, url string) (string, error) {
	if err := r.limiter.Wait(ctx, url); err != nil {
		return "", err
	}

	html, err := fetcher.FetchHTML(ctx, url)
	if err != nil {
		r.limiter.RecordFailure(url, err)
		return "", err
	}

	r.limiter.RecordSuccess(url)
	return html, nil
}
