package models

// ScanResponse is the response for POST /api/v1/scan.
type ScanResponse struct {
	// Success indicates whether the scan completed without errors.
	Success bool `json:"success"`

	// URL is the page that was scanned.
	URL string `json:"url,omitempty"`

	// Images is the deduplicated record set, desktop-pass records first.
	Images []SizedImageRecord `json:"images"`

	// Total is the number of distinct image URLs found.
	Total int `json:"total"`

	// MobileOnly is how many records came only from the mobile pass.
	// Informational; zero for static-mode scans.
	MobileOnly int `json:"mobile_only"`

	// Mode reports which fetch path produced the result
	// ("browser" or "static").
	Mode string `json:"mode,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// RenderMs is the time spent rendering and extracting (both passes).
	RenderMs int64 `json:"render_ms"`

	// ProbeMs is the time spent size-probing the unique URLs.
	ProbeMs int64 `json:"probe_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string       `json:"status"` // "healthy" or "degraded"
	Uptime  string       `json:"uptime"`
	Browser BrowserStats `json:"browser"`
	Version string       `json:"version"`
}

// BrowserStats reports the state of the shared browser handle.
type BrowserStats struct {
	// Running is true once the lazily initialised browser has launched.
	Running bool `json:"running"`

	// ActivePages is the number of pages currently open for in-flight scans.
	ActivePages int `json:"active_pages"`
}
