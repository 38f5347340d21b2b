package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/imgscout/models"
)

// renderAndExtract performs one full viewport pass: open a page, emulate the
// viewport, load the URL, force lazy content to materialise, run the in-page
// extractor, close the page.
//
// Lifecycle:
//
//  1. Page acquisition       – fresh tab from the shared browser
//  2. DEFER: page close      – released on success and failure alike
//  3. Stealth injection      – before navigation, or it has no effect
//  4. Device emulation       – user-agent + viewport metrics, per-page state
//  5. Navigate               – 30s deadline on the load itself
//  6. Wait                   – load event, then DOM stability (best effort)
//  7. Settle                 – fixed pause for post-load scripts
//  8. Scroll to bottom       – incremental, re-reading the page height
//  9. Extract                – JS evaluated in the page context
func (s *Scraper) renderAndExtract(ctx context.Context, pageURL string, vp Viewport, useStealth bool) ([]models.ImageRecord, error) {
	browser, err := s.browserHandle()
	if err != nil {
		return nil, err
	}

	// ── 1. Acquire page ───────────────────────────────────────────────
	s.activePages.Add(1)
	defer s.activePages.Add(-1)

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScanError(
			models.ErrCodeBrowserCrash,
			"failed to open page",
			err,
		)
	}

	// ── 2. CRITICAL DEFER: the page is closed on every path ──────────
	// Uses the original page reference (without request context) so the
	// close succeeds even if the request context has expired.
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("cleanup: failed to close page", "error", closeErr)
		}
	}()

	// ── 3. Stealth injection ──────────────────────────────────────────
	if useStealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 4. Device emulation ───────────────────────────────────────────
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: vp.UserAgent,
	}); err != nil {
		return nil, models.NewScanError(
			models.ErrCodeNavigation,
			"failed to set user agent",
			err,
		)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
		Mobile:            vp.Mobile,
	}); err != nil {
		return nil, models.NewScanError(
			models.ErrCodeNavigation,
			"failed to set viewport",
			err,
		)
	}

	// ── 5. Navigate with the per-load deadline ────────────────────────
	navCtx, navCancel := context.WithTimeout(ctx, s.scanCfg.NavTimeout)
	defer navCancel()
	p := page.Context(navCtx)

	if navErr := p.Navigate(pageURL); navErr != nil {
		return nil, categorizeError(navErr, fmt.Sprintf("navigation failed (%s pass)", vp.Name))
	}

	// ── 6. Wait for load + DOM stability ──────────────────────────────
	if loadErr := p.WaitLoad(); loadErr != nil {
		return nil, categorizeError(loadErr, fmt.Sprintf("page load did not complete (%s pass)", vp.Name))
	}
	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", pageURL, "viewport", vp.Name, "error", stableErr,
		)
	}

	// ── 7. Settle: give post-load scripts a chance to run ────────────
	select {
	case <-time.After(s.scanCfg.SettleDelay):
	case <-ctx.Done():
		return nil, categorizeError(ctx.Err(), "scan cancelled while settling")
	}

	// ── 8. Scroll to bottom so lazy loaders fire ─────────────────────
	// The remaining request context bounds the loop, not the nav deadline.
	s.scrollToBottom(ctx, page.Context(ctx))

	// ── 9. Extract ────────────────────────────────────────────────────
	records, err := extractImages(page.Context(ctx), pageURL)
	if err != nil {
		return nil, models.NewScanError(
			models.ErrCodeExtraction,
			fmt.Sprintf("in-page extraction failed (%s pass)", vp.Name),
			err,
		)
	}

	slog.Debug("viewport pass complete",
		"url", pageURL, "viewport", vp.Name, "images", len(records),
	)
	return records, nil
}

// scrollToBottom scrolls down in fixed steps until the bottom of the page is
// reached. The total height is re-read every iteration: lazy loaders append
// content, which moves the bottom.
func (s *Scraper) scrollToBottom(ctx context.Context, p *rod.Page) {
	scrollBy := fmt.Sprintf(`() => window.scrollBy(0, %d)`, s.scanCfg.ScrollStep)

	for {
		res, err := p.Eval(`() => ({
			pos: window.scrollY + window.innerHeight,
			height: document.body.scrollHeight,
		})`)
		if err != nil {
			slog.Debug("scroll position read failed, stopping scroll", "error", err)
			return
		}
		if res.Value.Get("pos").Num() >= res.Value.Get("height").Num() {
			return
		}

		if _, err := p.Eval(scrollBy); err != nil {
			slog.Debug("scroll step failed, stopping scroll", "error", err)
			return
		}

		select {
		case <-time.After(s.scanCfg.ScrollInterval):
		case <-ctx.Done():
			return
		}
	}
}

// categorizeError wraps raw errors into typed ScanErrors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeError(err error, msg string) *models.ScanError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScanError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScanError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScanError(models.ErrCodeNavigation, msg, err)
	}
}
