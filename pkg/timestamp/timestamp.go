// Package timestamp centralizes transcript timestamp arithmetic and
// deep-link construction. Every other component goes through these
// functions rather than re-deriving hour/minute/second math.
package timestamp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SharePoint-family hosts do not support fragment-based time seeking, so
// deep links there carry the offset as a t= query parameter instead.
var queryParamHosts = []string{
	"sharepoint.com",
	"sharepoint-df.com",
	"onedrive.live.com",
	"1drv.ms",
}

// ToSeconds converts "SS", "MM:SS", or "HH:MM:SS" to whole seconds.
// Fractional seconds (either '.' or ',' separated) are discarded.
// Missing or unparsable components count as zero.
func ToSeconds(ts string) int {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return 0
	}

	// Drop the fractional part.
	if i := strings.IndexAny(ts, ".,"); i >= 0 {
		ts = ts[:i]
	}

	parts := strings.Split(ts, ":")
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			n = 0
		}
		total = total*60 + n
	}
	return total
}

// ToHMS converts whole seconds to canonical "HH:MM:SS" form.
func ToHMS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// BuildDeepLink appends a time-seek marker to viewerURL for the given
// timestamp. SharePoint/OneDrive viewers get a t= query parameter; all
// other hosts get a "#t=<H>h<M>m<S>s" fragment. Returns "" when either
// input is empty.
func BuildDeepLink(viewerURL, ts string) string {
	if viewerURL == "" || ts == "" {
		return ""
	}

	seconds := ToSeconds(ts)

	if isQueryParamHost(viewerURL) {
		sep := "?"
		if strings.Contains(viewerURL, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%st=%d", viewerURL, sep, seconds)
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%s#t=%dh%dm%ds", viewerURL, h, m, s)
}

// isQueryParamHost reports whether the URL's host belongs to the
// SharePoint/OneDrive family.
func isQueryParamHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range queryParamHosts {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
