package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/imgscout/metrics"
	"github.com/use-agent/imgscout/models"
	"github.com/use-agent/imgscout/prober"
	"github.com/use-agent/imgscout/scraper"
)

// Scan returns a handler for POST /api/v1/scan.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Scraper.DoScan → deduplicated image records   (records render_ms)
//  3. Prober.ProbeAll → sizes, settle-all fan-out   (records probe_ms)
//  4. Assemble records + totals, return 200.
//
// maxTimeout is the wall-clock ceiling on the whole request; past it the
// in-flight work is abandoned and a timeout error is surfaced.
func Scan(sc *scraper.Scraper, pb *prober.Prober, maxTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScanResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		ctx, cancel := context.WithTimeout(c.Request.Context(), maxTimeout)
		defer cancel()

		// ── 2. Render + extract ─────────────────────────────────────
		renderStart := time.Now()
		result, err := sc.DoScan(ctx, &req)
		renderMs := time.Since(renderStart).Milliseconds()

		if err != nil {
			metrics.ScansTotal.WithLabelValues(req.Mode, "failure").Inc()
			respondError(c, err, models.TimingInfo{
				TotalMs:  time.Since(totalStart).Milliseconds(),
				RenderMs: renderMs,
			})
			return
		}

		// ── 3. Probe sizes ──────────────────────────────────────────
		probeStart := time.Now()
		images := pb.ProbeAll(ctx, result.Records, req.URL)
		probeMs := time.Since(probeStart).Milliseconds()

		for _, img := range images {
			outcome := "sized"
			if img.FileSizeBytes == 0 {
				outcome = "unknown"
			}
			metrics.ProbesTotal.WithLabelValues(outcome).Inc()
		}

		// ── 4. Assemble ─────────────────────────────────────────────
		metrics.ScansTotal.WithLabelValues(result.Mode, "success").Inc()
		metrics.ScanDuration.Observe(time.Since(totalStart).Seconds())

		c.JSON(http.StatusOK, models.ScanResponse{
			Success:    true,
			URL:        req.URL,
			Images:     images,
			Total:      len(images),
			MobileOnly: result.MobileAdded,
			Mode:       result.Mode,
			Timing: models.TimingInfo{
				TotalMs:  time.Since(totalStart).Milliseconds(),
				RenderMs: renderMs,
				ProbeMs:  probeMs,
			},
		})
	}
}

// respondError maps a ScanError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scanErr, ok := err.(*models.ScanError)
	if !ok {
		scanErr = models.NewScanError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scanErr), models.ScanResponse{
		Success: false,
		Error:   scanErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScanError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
