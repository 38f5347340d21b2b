package models

// Fetch modes for ScanRequest.Mode.
const (
	ModeBrowser = "browser"
	ModeStatic  = "static"
	ModeAuto    = "auto"
)

// ScanRequest is the payload for POST /api/v1/scan.
type ScanRequest struct {
	// URL is the target page to scan. Required.
	URL string `json:"url" binding:"required,url"`

	// Mode controls the fetching strategy.
	// "browser" (default): dual-viewport headless render (desktop + mobile).
	// "static": plain HTTP fetch, extraction from unrendered HTML.
	// "auto": static first, escalate to browser when the HTML looks
	// JS-dependent.
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=browser static auto"`

	// Stealth enables anti-bot-detection evasions during browser renders
	// (e.g. navigator.webdriver masking).
	Stealth bool `json:"stealth,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScanRequest) Defaults() {
	if r.Mode == "" {
		r.Mode = ModeBrowser
	}
}
