package headed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"jobharvest/internal/config"
	"jobharvest/internal/logging"
	"jobharvest/internal/logging/types"
)

// settleDelay gives client-side rendered job cards time to appear after the
// load event fires.
const settleDelay = 2 * time.Second

// RodFetcher renders pages in a headless Chromium instance. Needed for
// boards that build their result lists with JavaScript.
type RodFetcher struct {
	config   *config.Config
	logger   types.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodFetcher creates a new browser-backed fetcher. The browser itself is
// launched lazily on first fetch.
func NewRodFetcher(cfg *config.Config) *RodFetcher {
	return &RodFetcher{
		config: cfg,
		logger: logging.GetGlobalLogger(),
	}
}

// FetchHTML navigates to the URL in a fresh page and returns the rendered
// document HTML.
func (r *RodFetcher) FetchHTML(ctx context.Context, url string) (string, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return "", err
	}

	page, err := r.newPage(browser)
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx).Timeout(r.config.Scraper.RequestTimeout)

	err = rod.Try(func() {
		page.MustNavigate(url)
		page.MustWaitLoad()
	})
	if err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(settleDelay):
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}

	r.logger.Debug("Rendered page fetched", map[string]interface{}{
		"url":    url,
		"length": len(html),
	})

	return html, nil
}

func (r *RodFetcher) newPage(browser *rod.Browser) (*rod.Page, error) {
	if r.config.Scraper.StealthMode {
		return stealth.Page(browser)
	}
	return browser.Page(proto.TargetCreateTarget{})
}

func (r *RodFetcher) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().
		Headless(r.config.Scraper.HeadlessMode).
		NoSandbox(true)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	r.logger.Info("Headless browser launched", map[string]interface{}{
		"headless": r.config.Scraper.HeadlessMode,
		"stealth":  r.config.Scraper.StealthMode,
	})

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Name returns the engine name
func (r *RodFetcher) Name() string {
	return "headed"
}

// IsHealthy reports whether the browser connection is usable
func (r *RodFetcher) IsHealthy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		// Not launched yet, will launch on first use
		return true
	}

	err := rod.Try(func() {
		r.browser.MustVersion()
	})
	return err == nil
}

// Cleanup closes the browser and its launcher
func (r *RodFetcher) Cleanup() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			r.logger.Warn("Failed to close browser", map[string]interface{}{
				"error": err.Error(),
			})
		}
		r.browser = nil
	}

	if r.launcher != nil {
		r.launcher.Cleanup()
		r.launcher = nil
	}

	return nil
}
