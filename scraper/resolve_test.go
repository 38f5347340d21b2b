package scraper

import (
	"strings"
	"testing"
)

func TestResolveURL(t *testing.T) {
	const page = "https://example.com/gallery/page.html"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"data URI unchanged", "data:image/png;base64,QUJD", "data:image/png;base64,QUJD"},
		{"absolute https unchanged", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"absolute http unchanged", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
		{"protocol relative", "//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"root relative", "/images/a.jpg", "https://example.com/images/a.jpg"},
		{"document relative", "a.jpg", "https://example.com/gallery/a.jpg"},
		{"parent relative", "../a.jpg", "https://example.com/a.jpg"},
		{"whitespace trimmed", "  a.jpg  ", "https://example.com/gallery/a.jpg"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.raw, page); got != tt.want {
				t.Errorf("ResolveURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveURL_MalformedBaseFallsBackToRaw(t *testing.T) {
	got := ResolveURL("a.jpg", "::not a url::")
	if got != "a.jpg" {
		t.Errorf("expected raw passthrough on unparsable base, got %q", got)
	}
}

func TestResolveURL_NeverRelative(t *testing.T) {
	// Every resolvable input must come out absolute or as a data URI.
	const page = "https://example.com/p/"
	for _, raw := range []string{"a.jpg", "/a.jpg", "//cdn.example.com/a.jpg", "data:,x"} {
		got := ResolveURL(raw, page)
		if !strings.HasPrefix(got, "http://") &&
			!strings.HasPrefix(got, "https://") &&
			!strings.HasPrefix(got, "data:") {
			t.Errorf("ResolveURL(%q) = %q is not absolute", raw, got)
		}
	}
}

func TestParseSrcset(t *testing.T) {
	urls := parseSrcset("a.jpg 1x, b.jpg 2x,c.jpg 480w , d.jpg")
	want := []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}
	if len(urls) != len(want) {
		t.Fatalf("got %d urls, want %d: %v", len(urls), len(want), urls)
	}
	for i, w := range want {
		if urls[i] != w {
			t.Errorf("url %d: got %q, want %q", i, urls[i], w)
		}
	}
}

func TestParseSrcset_Empty(t *testing.T) {
	if urls := parseSrcset(""); len(urls) != 0 {
		t.Errorf("empty srcset should yield no urls, got %v", urls)
	}
}
