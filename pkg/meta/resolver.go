// Package meta derives display metadata for a source recording: a human
// title, an ISO date, and a canonical viewer URL for deep-linking.
package meta

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackTitle is used when neither the transcript nor the source name
// yields anything usable.
const FallbackTitle = "Meeting Recording"

// SourceMetadata describes the originating recording.
type SourceMetadata struct {
	// Title of the meeting.
	Title string `json:"title"`

	// Date in ISO form (YYYY-MM-DD).
	Date string `json:"date"`

	// ViewerURL is "" or a well-formed absolute URL usable as a
	// deep-link base.
	ViewerURL string `json:"viewer_url"`
}

// SiteContext carries what the file-store collaborator knows about the item.
type SiteContext struct {
	// WebURL is the platform-native share/view link, when supplied.
	WebURL string

	// SiteBase is a configured site base URL for constructed viewer links.
	SiteBase string

	// CapturedAt is the authoritative capture date; zero when unknown.
	CapturedAt time.Time
}

var (
	// In-band title annotation near the top of the transcript, either the
	// WebVTT "NOTE Title: ..." idiom or a markdown-style heading.
	noteTitleRegex   = regexp.MustCompile(`^(?:NOTE\s+)?Title:\s*(.+)$`)
	headingRegex     = regexp.MustCompile(`^#\s+(.+)$`)
	separatorsRegex  = regexp.MustCompile(`[-_.]+`)
	titleCaser       = cases.Title(language.English)
	headerScanWindow = 5
)

// now is a hook for tests; the date fallback is processing time.
var now = time.Now

// Resolve derives SourceMetadata for a transcript. sourceName is the
// file-store identifier (typically a filename).
func Resolve(raw, sourceName string, site SiteContext) SourceMetadata {
	return SourceMetadata{
		Title:     resolveTitle(raw, sourceName),
		Date:      resolveDate(site),
		ViewerURL: resolveViewerURL(sourceName, site),
	}
}

// resolveTitle applies the fallback chain: in-band annotation, then the
// humanized source name, then the generic label.
func resolveTitle(raw, sourceName string) string {
	if t := inBandTitle(raw); t != "" {
		return t
	}
	if t := HumanizeName(sourceName); t != "" {
		return t
	}
	return FallbackTitle
}

// inBandTitle scans the first few non-empty lines for a title annotation.
func inBandTitle(raw string) string {
	seen := 0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := noteTitleRegex.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		if m := headingRegex.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		seen++
		if seen >= headerScanWindow {
			break
		}
	}
	return ""
}

// HumanizeName turns a source identifier into a display title: extension
// stripped, separators replaced by spaces, each word capitalized.
func HumanizeName(name string) string {
	name = stripExtension(name)
	name = separatorsRegex.ReplaceAllString(name, " ")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(name)
}

// resolveViewerURL applies the fallback chain: explicit web URL, then a
// constructed site URL, then "". A dead-looking placeholder link is worse
// than no link, so the chain never invents a domain.
func resolveViewerURL(sourceName string, site SiteContext) string {
	if isAbsoluteURL(site.WebURL) {
		return site.WebURL
	}
	if site.SiteBase != "" && sourceName != "" {
		base := strings.TrimRight(site.SiteBase, "/")
		constructed := base + "/" + url.PathEscape(stripExtension(sourceName))
		if isAbsoluteURL(constructed) {
			return constructed
		}
	}
	return ""
}

// resolveDate formats the capture date, defaulting to processing time
// when the collaborator supplied none.
func resolveDate(site SiteContext) string {
	if !site.CapturedAt.IsZero() {
		return site.CapturedAt.Format("2006-01-02")
	}
	return now().Format("2006-01-02")
}

func stripExtension(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func isAbsoluteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
