package scraper

// Viewport is one render configuration: window size plus user-agent.
type Viewport struct {
	Name      string
	Width     int
	Height    int
	Mobile    bool
	UserAgent string
}

// The two fixed passes. Desktop runs first; its records win on URL collisions.
var (
	DesktopViewport = Viewport{
		Name:      "desktop",
		Width:     1920,
		Height:    1080,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	}

	MobileViewport = Viewport{
		Name:      "mobile",
		Width:     375,
		Height:    812,
		Mobile:    true,
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Mobile/15E148 Safari/604.1",
	}
)
