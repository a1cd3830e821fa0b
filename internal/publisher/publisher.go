package publisher

import (
	"context"
	"fmt"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
	"jobharvest/internal/store"
	"jobharvest/pkg/models"
)

// Publisher rewrites unpublished job records into articles and pushes
// them to WordPress as drafts. One record failing never aborts the pass.
type Publisher struct {
	config   *config.Config
	store    store.Store
	rewriter Rewriter
	logger   types.Logger
}

func NewPublisher(cfg *config.Config, st store.Store, rewriter Rewriter) *Publisher {
	return &Publisher{
		config:   cfg,
		store:    st,
		rewriter: rewriter,
		logger:   logging.GetGlobalLogger(),
	}
}

// Publish runs one publishing pass over the oldest unpublished records.
func (p *Publisher) Publish(ctx context.Context, req *models.PublishRequest) (*models.PublishResult, error) {
	limit := p.config.Publisher.BatchLimit
	siteName := p.config.Publisher.DefaultSite
	if req != nil {
		if req.Limit > 0 {
			limit = req.Limit
		}
		if req.Site != "" {
			siteName = req.Site
		}
	}

	client := NewWPClient(p.config.Site(siteName), p.logger)
	if !client.IsConfigured() {
		return nil, fmt.Errorf("wordpress site %s is not configured", client.SiteLabel())
	}

	records, err := p.store.FindUnpublished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load unpublished jobs: %w", err)
	}

	result := &models.PublishResult{PostURLs: []string{}}
	for _, record := range records {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		outcome, postURL, err := p.publishOne(ctx, client, record)
		switch {
		case err != nil:
			result.Failed++
			p.logger.Error("Failed to publish job", map[string]interface{}{
				"job_id": record.JobID,
				"site":   client.SiteLabel(),
				"error":  err.Error(),
			})
		case outcome:
			result.Published++
			if postURL != "" {
				result.PostURLs = append(result.PostURLs, postURL)
			}
		default:
			result.Skipped++
		}
	}

	p.logger.Info("Publishing pass completed", map[string]interface{}{
		"site":      client.SiteLabel(),
		"published": result.Published,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
	})
	return result, nil
}

// publishOne returns (true, url, nil) when a draft was created and the
// record marked, and (false, "", nil) when the record turned out to be
// already published by the time it was re-checked.
func (p *Publisher) publishOne(ctx context.Context, client *WPClient, record *models.JobRecord) (bool, string, error) {
	// Another pass may have published this record since the batch was
	// listed, so re-read before spending an LLM call on it.
	latest, err := p.store.GetByJobID(ctx, record.JobID)
	if err != nil {
		return false, "", fmt.Errorf("failed to re-read job: %w", err)
	}
	if latest == nil {
		return false, "", nil
	}
	if latest.PublishedToWordPress {
		return false, "", nil
	}

	article, err := p.rewriter.RewriteArticle(ctx, RewritePayload{
		Role: latest.SearchRole,
		Job:  latest,
	})
	if err != nil {
		return false, "", fmt.Errorf("article rewrite failed: %w", err)
	}

	article = CleanArticleHTML(EnsureArticle(article))
	title := DeriveTitle(latest)
	excerpt := BuildExcerpt(article)

	if dir := p.config.Publisher.SnapshotDir; dir != "" {
		if _, err := WriteSnapshot(dir, latest, title, article); err != nil {
			p.logger.Warn("Failed to write article snapshot", map[string]interface{}{
				"job_id": latest.JobID,
				"error":  err.Error(),
			})
		}
	}

	post, err := client.CreateDraft(ctx, title, article, excerpt)
	if err != nil {
		return false, "", err
	}

	marked, err := p.store.MarkPublished(ctx, latest.JobID, post.ID, post.Link)
	if err != nil {
		return false, "", fmt.Errorf("draft %d created but marking failed: %w", post.ID, err)
	}
	if !marked {
		// Lost the race to a concurrent pass. The duplicate draft stays
		// in WordPress for a human to discard.
		p.logger.Warn("Job was published concurrently", map[string]interface{}{
			"job_id":  latest.JobID,
			"post_id": post.ID,
		})
		return false, "", nil
	}

	p.logger.Info("Published job as draft", map[string]interface{}{
		"job_id":  latest.JobID,
		"post_id": post.ID,
		"link":    post.Link,
	})
	return true, post.Link, nil
}
