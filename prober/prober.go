// Package prober determines the byte size of image URLs collected by a scan.
// Every unique URL is probed independently and concurrently; a probe failure
// never fails the batch, it only downgrades that record to "Unknown".
package prober

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/use-agent/imgscout/config"
	"github.com/use-agent/imgscout/models"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// sizeUnknown is the display value when size determination failed.
const sizeUnknown = "Unknown"

// Prober probes image URLs for byte size. Safe for concurrent use.
type Prober struct {
	headClient *http.Client
	getClient  *http.Client
}

// New creates a Prober with separate HEAD and GET clients, each following at
// most cfg.MaxRedirects redirects and stopping (not erroring) past the limit.
func New(cfg config.ProbeConfig) *Prober {
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= cfg.MaxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}
	return &Prober{
		headClient: &http.Client{
			Timeout:       cfg.HeadTimeout,
			CheckRedirect: checkRedirect,
		},
		getClient: &http.Client{
			Timeout:       cfg.GetTimeout,
			CheckRedirect: checkRedirect,
		},
	}
}

// ProbeAll fans out one probe per record and joins when every probe has
// settled, success or failure. N inputs always produce N outputs in the same
// order; a slow or failing probe delays only itself.
func (p *Prober) ProbeAll(ctx context.Context, records []models.ImageRecord, refererURL string) []models.SizedImageRecord {
	results := make([]models.SizedImageRecord, len(records))

	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec models.ImageRecord) {
			defer wg.Done()
			size := p.Probe(ctx, rec.URL, refererURL)
			results[i] = models.SizedImageRecord{
				ImageRecord:   rec,
				FileSize:      FormatSize(size),
				FileSizeBytes: size,
			}
		}(i, rec)
	}
	wg.Wait()

	return results
}

// Probe determines the byte size of a single image URL, or 0 when it cannot.
//
// Chain: data-URI decoding, then HEAD with Content-Length, then a full GET.
// HEAD→GET is a fallback to a different method, not a retry; nothing here
// retries the same request.
func (p *Prober) Probe(ctx context.Context, imageURL, refererURL string) int64 {
	if strings.HasPrefix(imageURL, "data:") {
		return dataURISize(imageURL)
	}

	if size, ok := p.probeHead(ctx, imageURL, refererURL); ok {
		return size
	}

	size, err := p.probeGet(ctx, imageURL, refererURL)
	if err != nil {
		slog.Debug("size probe failed", "url", imageURL, "error", err)
		return 0
	}
	return size
}

// probeHead issues a HEAD request and reads Content-Length. The second return
// value is false whenever the result is unusable (error, non-200, or a
// missing header), which sends the caller to the GET fallback.
func (p *Prober) probeHead(ctx context.Context, imageURL, refererURL string) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return 0, false
	}
	setBrowserHeaders(req, refererURL)

	resp, err := p.headClient.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false
	}
	cl := resp.Header.Get("Content-Length")
	if cl == "" {
		return 0, false
	}
	size, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || size < 0 {
		return 0, false
	}
	return size, true
}

// probeGet downloads the full body and counts its bytes.
func (p *Prober) probeGet(ctx context.Context, imageURL, refererURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, err
	}
	setBrowserHeaders(req, refererURL)

	resp, err := p.getClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// setBrowserHeaders makes the probe look like an in-page image request, with
// the scanned page as Referer.
func setBrowserHeaders(req *http.Request, refererURL string) {
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if refererURL != "" {
		req.Header.Set("Referer", refererURL)
	}
}

var (
	base64PayloadRe  = regexp.MustCompile(`;base64,(.*)$`)
	literalPayloadRe = regexp.MustCompile(`^data:[^,]*,(.*)$`)
)

// dataURISize computes the decoded byte length of a data URI payload.
//
// For base64 payloads the size is ceil(len*3/4). Padding characters are
// counted like any other, so padded payloads come out one or two bytes high;
// this matches the reported size of the in-browser encoding and is kept as
// is. Non-base64 payloads are URL-decoded and counted literally. Anything
// else is unknown (0).
func dataURISize(uri string) int64 {
	if m := base64PayloadRe.FindStringSubmatch(uri); m != nil {
		n := int64(len(m[1]))
		return (n*3 + 3) / 4
	}
	if m := literalPayloadRe.FindStringSubmatch(uri); m != nil {
		decoded, err := url.PathUnescape(m[1])
		if err != nil {
			return 0
		}
		return int64(len(decoded))
	}
	return 0
}

// FormatSize renders a byte count for display: "Unknown" for 0, MB with two
// decimals from 1 MiB up, otherwise KB with two decimals.
func FormatSize(bytes int64) string {
	switch {
	case bytes == 0:
		return sizeUnknown
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
	default:
		return fmt.Sprintf("%.2f KB", float64(bytes)/1024)
	}
}
