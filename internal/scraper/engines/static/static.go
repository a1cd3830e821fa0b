package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
)

const maxResponseBytes = 10 << 20 // 10 MiB

// StaticFetcher retrieves pages over plain HTTP without JavaScript
// rendering. It is the cheapest engine and works for boards that serve
// server-rendered markup.
type StaticFetcher struct {
	config *config.Config
	client *http.Client
	logger types.Logger
}

// NewStaticFetcher creates a new plain-HTTP fetcher
func NewStaticFetcher(cfg *config.Config) *StaticFetcher {
	return &StaticFetcher{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Scraper.RequestTimeout,
		},
		logger: logging.GetGlobalLogger(),
	}
}

// FetchHTML fetches the page body, retrying transient failures up to the
// configured retry budget.
func (s *StaticFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.Scraper.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			s.logger.Debug("Retrying static fetch", map[string]interface{}{
				"url":     url,
				"attempt": attempt,
				"backoff": backoff.String(),
			})
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		html, err := s.fetchOnce(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("static fetch failed after %d attempts: %w", s.config.Scraper.MaxRetries+1, lastErr)
}

func (s *StaticFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", s.config.Scraper.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// Name returns the engine name
func (s *StaticFetcher) Name() string {
	return "static"
}

// IsHealthy returns whether the fetcher is operational
func (s *StaticFetcher) IsHealthy() bool {
	return true
}

// Cleanup releases resources held by the fetcher
func (s *StaticFetcher) Cleanup() error {
	s.client.CloseIdleConnections()
	return nil
}
