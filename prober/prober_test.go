package prober

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/imgscout/config"
	"github.com/use-agent/imgscout/models"
)

func newTestProber() *Prober {
	return New(config.ProbeConfig{
		HeadTimeout:  2 * time.Second,
		GetTimeout:   2 * time.Second,
		MaxRedirects: 5,
	})
}

func TestDataURISize_Base64(t *testing.T) {
	tests := []struct {
		uri  string
		want int64
	}{
		// 4 payload chars, no padding: ceil(4*3/4) = 3.
		{"data:image/png;base64,QUJD", 3},
		{"data:image/png;base64,QUJDREVGR0g=", 9},
		{"data:image/gif;base64,", 0},
	}
	for _, tt := range tests {
		if got := dataURISize(tt.uri); got != tt.want {
			t.Errorf("dataURISize(%q) = %d, want %d", tt.uri, got, tt.want)
		}
	}
}

func TestDataURISize_PercentEncodedLiteral(t *testing.T) {
	// "Hello World" decodes to 11 characters.
	if got := dataURISize("data:text/plain,Hello%20World"); got != 11 {
		t.Errorf("literal payload size = %d, want 11", got)
	}
}

func TestDataURISize_Unparseable(t *testing.T) {
	if got := dataURISize("data:no-comma-here"); got != 0 {
		t.Errorf("URI without payload should be unknown (0), got %d", got)
	}
	if got := dataURISize("data:text/plain,bad%zzescape"); got != 0 {
		t.Errorf("undecodable escape should be unknown (0), got %d", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "Unknown"},
		{512, "0.50 KB"},
		{1024, "1.00 KB"},
		{1048575, "1024.00 KB"},
		{1048576, "1.00 MB"}, // exactly 1 MiB flips to MB
		{2621440, "2.50 MB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestProbe_HeadContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD to suffice, got %s", r.Method)
		}
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	size := newTestProber().Probe(context.Background(), srv.URL+"/img.png", "https://example.com/page")
	if size != 4096 {
		t.Errorf("size = %d, want 4096", size)
	}
}

func TestProbe_HeadFailureFallsThroughToGet(t *testing.T) {
	body := strings.Repeat("x", 2048)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	size := newTestProber().Probe(context.Background(), srv.URL+"/img.png", "")
	if size != 2048 {
		t.Errorf("size = %d, want 2048 from GET body", size)
	}
}

func TestProbe_BothMethodsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	size := newTestProber().Probe(context.Background(), srv.URL+"/missing.png", "")
	if size != 0 {
		t.Errorf("size = %d, want 0 when HEAD and GET both fail", size)
	}
	if FormatSize(size) != "Unknown" {
		t.Errorf("display = %q, want Unknown", FormatSize(size))
	}
}

func TestProbe_SendsBrowserHeaders(t *testing.T) {
	const page = "https://example.com/article"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Referer"); got != page {
			t.Errorf("Referer = %q, want %q", got, page)
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Chrome") {
			t.Errorf("User-Agent %q does not look like a browser", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Length", "10")
	}))
	defer srv.Close()

	newTestProber().Probe(context.Background(), srv.URL+"/img.png", page)
}

func TestProbe_FollowsRedirects(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "777")
	}))
	defer target.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/final.png", http.StatusFound)
	}))
	defer redirecting.Close()

	size := newTestProber().Probe(context.Background(), redirecting.URL+"/img.png", "")
	if size != 777 {
		t.Errorf("size = %d, want 777 after redirect", size)
	}
}

func TestProbe_DataURISkipsNetwork(t *testing.T) {
	// No server at all: data URIs must never touch the network.
	size := newTestProber().Probe(context.Background(), "data:image/png;base64,QUJD", "")
	if size != 3 {
		t.Errorf("size = %d, want 3", size)
	}
}

func TestProbeAll_SettleAll(t *testing.T) {
	const total, failing = 50, 10

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
	}))
	defer ok.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	records := make([]models.ImageRecord, 0, total)
	for i := 0; i < total; i++ {
		base := ok.URL
		if i < failing {
			base = bad.URL
		}
		records = append(records, models.ImageRecord{
			URL:  fmt.Sprintf("%s/img-%d.png", base, i),
			Type: models.KindImg,
		})
	}

	results := newTestProber().ProbeAll(context.Background(), records, "https://example.com/page")

	if len(results) != total {
		t.Fatalf("expected %d results, got %d", total, len(results))
	}

	unknown := 0
	for i, r := range results {
		if r.URL != records[i].URL {
			t.Errorf("result %d out of order: %q", i, r.URL)
		}
		if r.FileSizeBytes == 0 {
			unknown++
			if r.FileSize != "Unknown" {
				t.Errorf("failed probe %d should display Unknown, got %q", i, r.FileSize)
			}
		}
	}
	if unknown != failing {
		t.Errorf("expected %d unknown results, got %d", failing, unknown)
	}
}
