package scraper

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/use-agent/imgscout/models"
)

// extractorJS runs inside the page and returns plain serializable records.
// The controller and the page communicate only through this boundary; no
// live DOM references cross it.
//
// Collection order (first occurrence of a URL wins):
//
//	<img> src / lazy-load attributes / currentSrc / srcset
//	<source> srcset or src
//	computed background-image on every element (all layered urls)
//	SVG <image> href / xlink:href
const extractorJS = `(pageUrl) => {
	const records = [];
	const seen = new Set();

	const resolve = (src) => {
		if (!src) return '';
		src = src.trim();
		if (src.startsWith('data:')) return src;
		if (/^https?:\/\//i.test(src)) return src;
		try {
			if (src.startsWith('//')) return 'https:' + src;
			if (src.startsWith('/')) return new URL(pageUrl).origin + src;
			return new URL(src, pageUrl).href;
		} catch (e) {
			return src;
		}
	};

	const dim = (n) => (n && n > 0 ? Math.round(n) + 'px' : 'Natural');

	const add = (url, width, height, alt, type) => {
		if (!url || seen.has(url)) return;
		seen.add(url);
		records.push({ url, width, height, alt, type });
	};

	const srcsetUrls = (srcset) => srcset
		.split(',')
		.map((c) => c.trim().split(/\s+/)[0])
		.filter(Boolean);

	const lazyAttrs = [
		'data-src', 'data-lazy-src', 'data-original', 'data-lazy-original',
	];

	// <img>
	document.querySelectorAll('img').forEach((img) => {
		const candidates = [];
		if (img.src) candidates.push(img.src);
		const rawSrc = img.getAttribute('src');
		if (rawSrc) candidates.push(rawSrc);
		for (const attr of lazyAttrs) {
			const v = img.getAttribute(attr);
			if (v) candidates.push(v);
		}
		if (img.currentSrc) candidates.push(img.currentSrc);
		const srcset = img.getAttribute('srcset');
		if (srcset) candidates.push(...srcsetUrls(srcset));

		const w = dim(img.naturalWidth || img.offsetWidth);
		const h = dim(img.naturalHeight || img.offsetHeight);
		const alt = img.alt || img.title || 'No alt text';
		for (const c of candidates) add(resolve(c), w, h, alt, 'img');
	});

	// <source> inside <picture> / <video>
	document.querySelectorAll('source').forEach((el) => {
		const set = el.getAttribute('srcset') || el.getAttribute('src') || '';
		for (const c of srcsetUrls(set)) {
			add(resolve(c), 'Natural', 'Natural', 'Picture/video source', 'source');
		}
	});

	// background-image on any element; a value may stack several layers
	const urlRe = /url\(["']?([^"')]+)["']?\)/g;
	document.querySelectorAll('*').forEach((el) => {
		const bg = window.getComputedStyle(el).backgroundImage;
		if (!bg || bg === 'none') return;
		let m;
		urlRe.lastIndex = 0;
		while ((m = urlRe.exec(bg)) !== null) {
			add(
				resolve(m[1]),
				dim(el.offsetWidth),
				dim(el.offsetHeight),
				el.getAttribute('aria-label') || 'Background image',
				'background',
			);
		}
	});

	// SVG <image>
	document.querySelectorAll('svg image').forEach((el) => {
		const href = el.getAttribute('href') || el.getAttribute('xlink:href');
		if (!href) return;
		let w = 0, h = 0;
		try {
			const bb = el.getBBox();
			w = bb.width;
			h = bb.height;
		} catch (e) {}
		add(resolve(href), dim(w), dim(h), 'SVG image', 'svg');
	});

	return records;
}`

// extractImages evaluates the extractor in the page context and decodes the
// serialized records.
func extractImages(p *rod.Page, pageURL string) ([]models.ImageRecord, error) {
	res, err := p.Eval(extractorJS, pageURL)
	if err != nil {
		return nil, fmt.Errorf("evaluate extractor: %w", err)
	}

	var records []models.ImageRecord
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), &records); err != nil {
		return nil, fmt.Errorf("decode extractor result: %w", err)
	}
	return records, nil
}
