package models

// Source kinds for extracted image references.
const (
	KindImg        = "img"
	KindSource     = "source"
	KindBackground = "background"
	KindSVG        = "svg"
)

// DimensionUnknown is the sentinel used when no pixel dimension could be
// determined. It is a string marker, deliberately distinct from "0px": a
// zero-sized element and an element whose size is unknowable are different
// things.
const DimensionUnknown = "Natural"

// AltFallback is the alt text used when an <img> carries neither alt nor title.
const AltFallback = "No alt text"

// ImageRecord is one distinct image reference extracted from a rendered page.
// Identity is the resolved URL; when the same URL is seen again (in the same
// pass or in a later viewport pass) the first-seen fields are retained.
type ImageRecord struct {
	// URL is the resolved, directly fetchable form of the reference:
	// an absolute http(s) URL or a data: URI.
	URL string `json:"url"`

	// Width and Height are either "<n>px" or the "Natural" sentinel.
	Width  string `json:"width"`
	Height string `json:"height"`

	// Alt is the alt text, or a kind-specific fallback.
	Alt string `json:"alt"`

	// Type is the source kind: "img", "source", "background" or "svg".
	Type string `json:"type"`
}

// SizedImageRecord is an ImageRecord joined with its probed byte size.
type SizedImageRecord struct {
	ImageRecord

	// FileSize is the human display form: "X.XX KB", "X.XX MB", or
	// "Unknown" when the size could not be determined.
	FileSize string `json:"fileSize"`

	// FileSizeBytes is 0 exactly when size determination failed or the
	// reference is unknowable (e.g. a data URI with unparseable encoding).
	FileSizeBytes int64 `json:"fileSizeBytes"`
}
