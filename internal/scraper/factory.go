package scraper

import (
	"fmt"

	"jobharvest/internal/config"
	"jobharvest/internal/scraper/engines/firecrawl"
	"jobharvest/internal/scraper/engines/headed"
	"jobharvest/internal/scraper/engines/static"
)

// EngineFactory creates Fetcher instances based on configuration
type EngineFactory struct {
	config *config.Config
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config) *EngineFactory {
	return &EngineFactory{
		config: cfg,
	}
}

// CreateFetcher creates a fetcher for the requested engine. An empty engine
// name falls back to the configured default.
func (f *EngineFactory) CreateFetcher(engine string) (Fetcher, error) {
	if engine == "" {
		engine = f.config.Scraper.Engine
	}

	switch engine {
	case "static", "auto":
		return static.NewStaticFetcher(f.config), nil
	case "headed":
		return headed.NewRodFetcher(f.config), nil
	case "firecrawl":
		fetcher := firecrawl.NewFirecrawlFetcher(f.config)
		if fetcher == nil {
			return nil, fmt.Errorf("failed to initialize firecrawl fetcher")
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported scraper engine: %s", engine)
	}
}
