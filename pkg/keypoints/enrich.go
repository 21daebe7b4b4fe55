// Package keypoints attaches normalized timestamps and deep links to key
// points, whichever extraction path produced them, and applies the
// title-quality filter and chronological ordering.
package keypoints

import (
	"sort"
	"strings"

	"github.com/recaptools/recap-cli/pkg/meta"
	"github.com/recaptools/recap-cli/pkg/summarize"
	"github.com/recaptools/recap-cli/pkg/timestamp"
)

// MinTitleChars is the informativeness floor for a key-point title.
const MinTitleChars = 4

// Titles that carry no information on their own.
var genericTitles = map[string]bool{
	"key point":  true,
	"key points": true,
	"point":      true,
	"summary":    true,
	"untitled":   true,
	"n/a":        true,
	"none":       true,
	"todo":       true,
}

// Enrich normalizes timestamps, fills in missing deep links from the
// resolved viewer URL, filters low-quality titles, and orders the result
// chronologically. The sequence never becomes empty as a side effect of
// filtering: when the filter would drop everything, the original
// sequence is kept instead.
func Enrich(points []summarize.KeyPoint, md meta.SourceMetadata) []summarize.KeyPoint {
	if len(points) == 0 {
		return []summarize.KeyPoint{}
	}

	enriched := make([]summarize.KeyPoint, len(points))
	for i, p := range points {
		if p.Timestamp != "" {
			p.Timestamp = timestamp.ToHMS(timestamp.ToSeconds(p.Timestamp))
		}
		if p.VideoLink == "" {
			p.VideoLink = timestamp.BuildDeepLink(md.ViewerURL, p.Timestamp)
		}
		enriched[i] = p
	}

	filtered := make([]summarize.KeyPoint, 0, len(enriched))
	for _, p := range enriched {
		if usableTitle(p.Title) {
			filtered = append(filtered, p)
		}
	}
	// Something is better than nothing.
	if len(filtered) == 0 {
		filtered = enriched
	}

	// Stable sort: timestamped points chronological, the rest keep their
	// relative order after them.
	sort.SliceStable(filtered, func(i, j int) bool {
		ti, tj := filtered[i].Timestamp, filtered[j].Timestamp
		if ti == "" || tj == "" {
			return ti != "" && tj == ""
		}
		return timestamp.ToSeconds(ti) < timestamp.ToSeconds(tj)
	})

	return filtered
}

// usableTitle rejects empty, too-short, or purely generic titles.
func usableTitle(title string) bool {
	t := strings.TrimSpace(title)
	if len(t) < MinTitleChars {
		return false
	}
	return !genericTitles[strings.ToLower(t)]
}
