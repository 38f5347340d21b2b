package scraper

import (
	"net/url"
	"strings"
)

// ResolveURL converts an image reference to an absolute, directly fetchable
// form. The policy mirrors the in-page extractor exactly:
//
//	data: URIs and absolute http(s) URLs pass through unchanged;
//	"//host/p" is protocol-relative and gets "https:";
//	"/p" resolves against the page origin;
//	anything else resolves relative to the page URL itself.
//
// Resolution failures fall back to the raw string so downstream probing can
// fail on them individually instead of the reference being dropped.
func ResolveURL(raw, pageURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:") {
		return raw
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}

	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		return base.Scheme + "://" + base.Host + raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// parseSrcset returns the URL tokens of a srcset value: comma-separated
// candidates, each "url [descriptor]".
func parseSrcset(srcset string) []string {
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
