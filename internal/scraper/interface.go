package scraper

import (
	"context"
)

// Fetcher retrieves rendered HTML for a URL. Implementations differ in how
// much of the page they are able to render (plain HTTP, headless browser,
// remote rendering API).
type Fetcher interface {
	// FetchHTML returns the page HTML for the given URL
	FetchHTML(ctx context.Context, url string) (string, error)

	// Name returns the engine name for logging and diagnostics
	Name() string

	// IsHealthy returns whether the fetcher is operational
	IsHealthy() bool

	// Cleanup releases any resources held by the fetcher
	Cleanup() error
}

// Collector turns raw page HTML from one job board into listing and detail
// structures. Implementations are stateless and safe for concurrent use.
type Collector interface {
	// Source returns the board identifier (indeed, rozee, jobz)
	Source() string

	// SearchURL builds the search results URL for a role query
	SearchURL(role string) string

	// ParseListings extracts job cards from a search results page
	ParseListings(html string) ([]RawListing, error)

	// ParseDetail extracts the full posting from a job detail page
	ParseDetail(html string) (*RawDetail, error)
}
