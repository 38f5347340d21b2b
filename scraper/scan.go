package scraper

import (
	"context"
	"log/slog"

	"github.com/use-agent/imgscout/models"
)

// Result is the outcome of a scan before size probing.
type Result struct {
	// Records is the deduplicated set, desktop records first.
	Records []models.ImageRecord

	// MobileAdded is how many records only the mobile pass contributed.
	MobileAdded int

	// Mode is the fetch path that produced the result.
	Mode string
}

// DoScan runs the configured fetch path for a scan request.
//
// "browser" renders the page twice (desktop, then mobile — sequential on
// purpose: both passes share one browser and viewport/user-agent are per-page
// state) and merges the two sets. "static" fetches the raw HTML over plain
// HTTP and extracts from the unrendered markup. "auto" tries static first and
// escalates to the browser when the HTML looks like a JS-dependent shell.
func (s *Scraper) DoScan(ctx context.Context, req *models.ScanRequest) (*Result, error) {
	switch req.Mode {
	case models.ModeStatic:
		return s.doScanStatic(ctx, req.URL)
	case models.ModeAuto:
		body, err := s.fetcher.fetch(ctx, req.URL)
		if err != nil {
			slog.Debug("static fetch failed, escalating to browser",
				"url", req.URL, "error", err)
			return s.doScanBrowser(ctx, req)
		}
		if needsBrowser(body) {
			slog.Debug("static HTML looks JS-dependent, escalating to browser",
				"url", req.URL)
			return s.doScanBrowser(ctx, req)
		}
		return &Result{
			Records: ExtractStatic(body, req.URL),
			Mode:    models.ModeStatic,
		}, nil
	default:
		return s.doScanBrowser(ctx, req)
	}
}

// doScanBrowser is the full dual-viewport render path. A failure on either
// pass fails the whole scan; there is no partial result.
func (s *Scraper) doScanBrowser(ctx context.Context, req *models.ScanRequest) (*Result, error) {
	desktop, err := s.renderAndExtract(ctx, req.URL, DesktopViewport, req.Stealth)
	if err != nil {
		return nil, err
	}

	mobile, err := s.renderAndExtract(ctx, req.URL, MobileViewport, req.Stealth)
	if err != nil {
		return nil, err
	}

	merged, added := Merge(desktop, mobile)
	slog.Info("scan merged",
		"url", req.URL,
		"desktop", len(desktop),
		"mobile", len(mobile),
		"unique", len(merged),
		"mobile_only", added,
	)

	return &Result{
		Records:     merged,
		MobileAdded: added,
		Mode:        models.ModeBrowser,
	}, nil
}

// doScanStatic fetches the page without a browser and extracts from the
// unrendered HTML.
func (s *Scraper) doScanStatic(ctx context.Context, pageURL string) (*Result, error) {
	body, err := s.fetcher.fetch(ctx, pageURL)
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeFetch, "static fetch failed", err)
	}
	return &Result{
		Records: ExtractStatic(body, pageURL),
		Mode:    models.ModeStatic,
	}, nil
}
