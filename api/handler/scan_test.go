package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imgscout/config"
	"github.com/use-agent/imgscout/models"
	"github.com/use-agent/imgscout/prober"
	"github.com/use-agent/imgscout/scraper"
)

func newScanRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Scan: config.ScanConfig{
			NavTimeout: 5 * time.Second,
			MaxTimeout: 30 * time.Second,
		},
		Probe: config.ProbeConfig{
			HeadTimeout:  2 * time.Second,
			GetTimeout:   2 * time.Second,
			MaxRedirects: 5,
		},
	}
	sc := scraper.New(cfg.Browser, cfg.Scan)
	pb := prober.New(cfg.Probe)

	r := gin.New()
	r.POST("/api/v1/scan", Scan(sc, pb, cfg.Scan.MaxTimeout))
	return r
}

func doScan(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, models.ScanResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp models.ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v\n%s", err, w.Body.String())
	}
	return w, resp
}

func TestScan_MissingURL(t *testing.T) {
	r := newScanRouter()

	w, resp := doScan(t, r, `{}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if resp.Success {
		t.Error("success should be false")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeInvalidInput)
	}
}

func TestScan_MalformedURL(t *testing.T) {
	r := newScanRouter()

	w, _ := doScan(t, r, `{"url": "not a url"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestScan_InvalidMode(t *testing.T) {
	r := newScanRouter()

	w, _ := doScan(t, r, `{"url": "https://example.com", "mode": "psychic"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// Static mode runs against a plain HTTP fetch, so a full round trip can be
// exercised without a browser in the test environment.
func TestScan_StaticMode(t *testing.T) {
	imgBody := strings.Repeat("x", 1536)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><body>
				<h1>Gallery</h1>
				<p>%s</p>
				<img src="/photo.jpg" width="800" height="600" alt="Photo">
			</body></html>`, strings.Repeat("Some readable gallery text. ", 20))
		case "/photo.jpg":
			w.Header().Set("Content-Length", fmt.Sprint(len(imgBody)))
			if r.Method == http.MethodGet {
				fmt.Fprint(w, imgBody)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer site.Close()

	r := newScanRouter()
	w, resp := doScan(t, r, fmt.Sprintf(`{"url": %q, "mode": "static"}`, site.URL+"/"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !resp.Success {
		t.Fatalf("success = false: %+v", resp.Error)
	}
	if resp.Mode != models.ModeStatic {
		t.Errorf("mode = %q, want static", resp.Mode)
	}
	if resp.Total != 1 || len(resp.Images) != 1 {
		t.Fatalf("expected 1 image, got total=%d images=%d", resp.Total, len(resp.Images))
	}

	img := resp.Images[0]
	if img.URL != site.URL+"/photo.jpg" {
		t.Errorf("image url = %q", img.URL)
	}
	if img.Width != "800px" || img.Height != "600px" {
		t.Errorf("dimensions = %s x %s", img.Width, img.Height)
	}
	if img.Alt != "Photo" {
		t.Errorf("alt = %q", img.Alt)
	}
	if img.FileSizeBytes != 1536 {
		t.Errorf("fileSizeBytes = %d, want 1536", img.FileSizeBytes)
	}
	if img.FileSize != "1.50 KB" {
		t.Errorf("fileSize = %q, want 1.50 KB", img.FileSize)
	}
}

func TestScan_StaticModeFetchFailure(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer site.Close()

	r := newScanRouter()
	w, resp := doScan(t, r, fmt.Sprintf(`{"url": %q, "mode": "static"}`, site.URL+"/"))

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeFetch {
		t.Errorf("error = %+v, want code %s", resp.Error, models.ErrCodeFetch)
	}
}
