package firecrawl

import (
	"context"
	"fmt"
	"time"

	"github.com/mendableai/firecrawl-go"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
)

// FirecrawlFetcher retrieves rendered HTML through the Firecrawl API.
// Useful when local browser automation is blocked by the target board.
type FirecrawlFetcher struct {
	config *config.Config
	app    *firecrawl.FirecrawlApp
	logger types.Logger
}

// NewFirecrawlFetcher creates a new Firecrawl-backed fetcher. Returns nil if
// the API client could not be initialized.
func NewFirecrawlFetcher(cfg *config.Config) *FirecrawlFetcher {
	logger := logging.GetGlobalLogger()

	app, err := firecrawl.NewFirecrawlApp(
		cfg.Firecrawl.APIKey,
		cfg.Firecrawl.APIURL,
	)
	if err != nil {
		logger.Error("Failed to initialize Firecrawl", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	return &FirecrawlFetcher{
		config: cfg,
		app:    app,
		logger: logger,
	}
}

// FetchHTML scrapes the URL through Firecrawl and returns the rendered HTML.
func (f *FirecrawlFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	scrapeParams := &firecrawl.ScrapeParams{
		Formats: []string{"html"},
	}

	var result *firecrawl.FirecrawlDocument
	var err error

	for attempt := 1; attempt <= f.config.Firecrawl.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		result, err = f.app.ScrapeURL(url, scrapeParams)
		if err == nil {
			break
		}

		f.logger.Warn("Firecrawl scrape attempt failed", map[string]interface{}{
			"attempt": attempt,
			"url":     url,
			"error":   err.Error(),
		})

		if attempt < f.config.Firecrawl.MaxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	if err != nil {
		return "", fmt.Errorf("firecrawl scraping failed after %d attempts: %w", f.config.Firecrawl.MaxRetries, err)
	}

	if result == nil {
		return "", fmt.Errorf("no result returned from Firecrawl")
	}

	if result.HTML == "" {
		return "", fmt.Errorf("no HTML content in Firecrawl response for %s", url)
	}

	return result.HTML, nil
}

// Name returns the engine name
func (f *FirecrawlFetcher) Name() string {
	return "firecrawl"
}

// IsHealthy checks if the fetcher is ready to process requests
func (f *FirecrawlFetcher) IsHealthy() bool {
	return f.app != nil && f.config.Firecrawl.APIKey != ""
}

// Cleanup releases resources held by the fetcher. The Firecrawl SDK does not
// require explicit cleanup.
func (f *FirecrawlFetcher) Cleanup() error {
	return nil
}
