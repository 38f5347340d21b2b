package scraper

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/use-agent/imgscout/models"
)

// Precompiled matchers for the static extraction pass.
var (
	imgSel    = cascadia.MustCompile("img")
	sourceSel = cascadia.MustCompile("source")
	styledSel = cascadia.MustCompile(`[style*="background"]`)
	svgImgSel = cascadia.MustCompile("svg image")
)

var bgURLRe = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)

// lazyAttrs is the fixed list of lazy-load attribute conventions scanned on
// <img> elements, matching the in-page extractor.
var lazyAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-lazy-original"}

// ExtractStatic collects image references from unrendered HTML. It covers the
// same constructs as the in-page extractor minus what only a rendering engine
// can see: no computed styles (only inline style attributes) and no rendered
// box dimensions, so dimensions come from width/height attributes or fall
// back to the "Natural" sentinel.
func ExtractStatic(body []byte, pageURL string) []models.ImageRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var records []models.ImageRecord
	seen := make(map[string]struct{})

	add := func(rawURL, width, height, alt, kind string) {
		resolved := ResolveURL(rawURL, pageURL)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		records = append(records, models.ImageRecord{
			URL:    resolved,
			Width:  width,
			Height: height,
			Alt:    alt,
			Type:   kind,
		})
	}

	// <img>
	doc.FindMatcher(imgSel).Each(func(_ int, s *goquery.Selection) {
		var candidates []string
		if src, ok := s.Attr("src"); ok && src != "" {
			candidates = append(candidates, src)
		}
		for _, attr := range lazyAttrs {
			if v, ok := s.Attr(attr); ok && v != "" {
				candidates = append(candidates, v)
			}
		}
		if srcset, ok := s.Attr("srcset"); ok {
			candidates = append(candidates, parseSrcset(srcset)...)
		}

		w := attrDimension(s, "width")
		h := attrDimension(s, "height")
		alt := s.AttrOr("alt", "")
		if alt == "" {
			alt = s.AttrOr("title", "")
		}
		if alt == "" {
			alt = models.AltFallback
		}
		for _, c := range candidates {
			add(c, w, h, alt, models.KindImg)
		}
	})

	// <source> inside <picture> / <video>
	doc.FindMatcher(sourceSel).Each(func(_ int, s *goquery.Selection) {
		set := s.AttrOr("srcset", "")
		if set == "" {
			set = s.AttrOr("src", "")
		}
		for _, c := range parseSrcset(set) {
			add(c, models.DimensionUnknown, models.DimensionUnknown,
				"Picture/video source", models.KindSource)
		}
	})

	// inline style backgrounds
	doc.FindMatcher(styledSel).Each(func(_ int, s *goquery.Selection) {
		style := s.AttrOr("style", "")
		for _, m := range bgURLRe.FindAllStringSubmatch(style, -1) {
			alt := s.AttrOr("aria-label", "")
			if alt == "" {
				alt = "Background image"
			}
			add(m[1], models.DimensionUnknown, models.DimensionUnknown,
				alt, models.KindBackground)
		}
	})

	// SVG <image>
	doc.FindMatcher(svgImgSel).Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if href == "" {
			href = s.AttrOr("xlink:href", "")
		}
		if href == "" {
			return
		}
		add(href, attrDimension(s, "width"), attrDimension(s, "height"),
			"SVG image", models.KindSVG)
	})

	return records
}

// attrDimension formats a positive integer width/height attribute with the
// pixel suffix, or returns the sentinel.
func attrDimension(s *goquery.Selection, name string) string {
	if n, err := strconv.Atoi(s.AttrOr(name, "")); err == nil && n > 0 {
		return fmt.Sprintf("%dpx", n)
	}
	return models.DimensionUnknown
}
