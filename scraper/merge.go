package scraper

import "github.com/use-agent/imgscout/models"

// Merge combines the desktop and mobile extraction sets into one set keyed by
// resolved URL. Desktop records are inserted first and win on collisions;
// mobile records are added only when their URL is absent. The second return
// value is the number of mobile-only additions.
func Merge(desktop, mobile []models.ImageRecord) ([]models.ImageRecord, int) {
	merged := make([]models.ImageRecord, 0, len(desktop)+len(mobile))
	seen := make(map[string]struct{}, len(desktop)+len(mobile))

	for _, r := range desktop {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		merged = append(merged, r)
	}

	added := 0
	for _, r := range mobile {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		merged = append(merged, r)
		added++
	}

	return merged, added
}
