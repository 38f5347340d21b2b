package scraper

import (
	"strings"
	"testing"
)

func TestNeedsBrowser_SPAShell(t *testing.T) {
	body := `<html><body><div id="root"></div></body></html>`
	if !needsBrowser([]byte(body)) {
		t.Error("empty SPA root should need a browser")
	}
}

func TestNeedsBrowser_NoscriptWarning(t *testing.T) {
	filler := strings.Repeat("Plenty of visible words in the body of this page. ", 10)
	body := `<html><body><noscript>Please enable JavaScript to view this site</noscript><p>` + filler + `</p></body></html>`
	if !needsBrowser([]byte(body)) {
		t.Error("noscript JS warning should need a browser")
	}
}

func TestNeedsBrowser_ContentRichPage(t *testing.T) {
	filler := strings.Repeat("Plenty of visible words in the body of this page. ", 10)
	body := `<html><body><article><p>` + filler + `</p></article></body></html>`
	if needsBrowser([]byte(body)) {
		t.Error("content-rich static page should not need a browser")
	}
}

func TestExtractVisibleText_SkipsScriptAndStyle(t *testing.T) {
	body := `<html><body><script>var hidden = 1;</script><style>.x{}</style><p>shown</p></body></html>`
	text := extractVisibleText([]byte(body))
	if !strings.Contains(text, "shown") {
		t.Errorf("visible text missing body content: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("script content leaked into visible text: %q", text)
	}
}
