package scraper

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/imgscout/config"
	"github.com/use-agent/imgscout/models"
)

// Scraper owns the process-wide browser handle and performs the render and
// extraction passes. It is safe for concurrent use; every scan opens its own
// pages against the shared browser.
type Scraper struct {
	browserCfg config.BrowserConfig
	scanCfg    config.ScanConfig

	mu      sync.Mutex
	browser *rod.Browser

	activePages atomic.Int32
	fetcher     *staticFetcher
}

// New creates a Scraper. The browser itself is launched lazily on the first
// scan that needs it, so a process that only serves static-mode requests
// never pays for Chrome.
func New(browserCfg config.BrowserConfig, scanCfg config.ScanConfig) *Scraper {
	return &Scraper{
		browserCfg: browserCfg,
		scanCfg:    scanCfg,
		fetcher:    newStaticFetcher(browserCfg.DefaultProxy),
	}
}

// browserHandle returns the shared browser, launching it on first use.
// The mutex guards the lazy initialisation; after that the rod.Browser is
// itself safe for concurrent page creation.
func (s *Scraper) browserHandle() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().Headless(true)

	if s.browserCfg.Production() {
		// Containers run without a usable sandbox.
		l = l.NoSandbox(true)
		l.Set(flags.Flag("disable-dev-shm-usage"))
		l.Set(flags.Flag("disable-gpu"))
		l.Set(flags.Flag("disable-background-timer-throttling"))
		l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
		l.Set(flags.Flag("disable-renderer-backgrounding"))
		l.Set(flags.Flag("disable-component-update"))
		l.Set(flags.Flag("disable-default-apps"))
		l.Set(flags.Flag("disable-extensions"))
		l.Set(flags.Flag("no-first-run"))
	}
	if s.browserCfg.BrowserBin != "" {
		l = l.Bin(s.browserCfg.BrowserBin)
	}
	if s.browserCfg.DefaultProxy != "" {
		l = l.Proxy(s.browserCfg.DefaultProxy)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScanError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "env", s.browserCfg.Env)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScanError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	s.browser = browser
	return browser, nil
}

// Stats returns a snapshot of the browser state for health reporting.
func (s *Scraper) Stats() models.BrowserStats {
	s.mu.Lock()
	running := s.browser != nil
	s.mu.Unlock()

	return models.BrowserStats{
		Running:     running,
		ActivePages: int(s.activePages.Load()),
	}
}

// Close kills the browser process if it was ever launched.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser == nil {
		return
	}
	slog.Info("scraper shutting down: closing browser")
	s.browser.MustClose()
	s.browser = nil
	slog.Info("scraper shutdown complete")
}
