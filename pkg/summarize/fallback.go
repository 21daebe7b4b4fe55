package summarize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/recaptools/recap-cli/pkg/transcript"
)

// Bullet markers recognized in transcript text.
var bulletRegex = regexp.MustCompile(`^[-*•]\s+(.+)$`)

// Timestamp prefix on flattened transcript lines.
var flatPrefixRegex = regexp.MustCompile(`^\d{2,}:\d{2}:\d{2}\s+`)

// fallbackSummary takes the first few sentences of the flattened
// transcript, or a fixed character budget when no sentence boundaries
// exist.
func (o *Orchestrator) fallbackSummary(flat string) string {
	text := strings.TrimSpace(stripFlatPrefixes(flat))
	if text == "" {
		return ""
	}

	sentences := splitSentences(text)
	if len(sentences) > 1 || (len(sentences) == 1 && sentences[0] != text) {
		n := o.opts.FallbackSentences
		if n > len(sentences) {
			n = len(sentences)
		}
		return strings.TrimSpace(strings.Join(sentences[:n], " "))
	}

	if len(text) > o.opts.FallbackSummaryChars {
		return strings.TrimSpace(truncateAtRune(text, o.opts.FallbackSummaryChars)) + "..."
	}
	return text
}

// truncateAtRune cuts s to at most max bytes without splitting a
// multi-byte rune.
func truncateAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// fallbackKeyPoints prefers bullet-style lines already present in the
// cues, deduplicated and capped. When fewer than MinKeyPoints exist, the
// first N sentences become candidate titles, each paired positionally
// with the corresponding cue's timestamp and speaker.
func (o *Orchestrator) fallbackKeyPoints(flat string, cues []transcript.Cue) []KeyPoint {
	points := bulletKeyPoints(cues, o.opts.MaxKeyPoints)
	if len(points) >= o.opts.MinKeyPoints {
		return points
	}

	text := strings.TrimSpace(stripFlatPrefixes(flat))
	if text == "" {
		return points
	}

	sentences := splitSentences(text)
	n := o.opts.FallbackSentences
	if n > len(sentences) {
		n = len(sentences)
	}

	points = points[:0]
	for i := 0; i < n && len(points) < o.opts.MaxKeyPoints; i++ {
		title := strings.TrimSpace(sentences[i])
		if title == "" {
			continue
		}
		p := KeyPoint{Title: title}
		if i < len(cues) {
			p.Timestamp = cues[i].Start
			p.Speaker = cues[i].Speaker
		}
		points = append(points, p)
	}
	return points
}

// bulletKeyPoints collects deduplicated bullet lines from cue text.
func bulletKeyPoints(cues []transcript.Cue, limit int) []KeyPoint {
	seen := make(map[string]bool)
	var points []KeyPoint
	for _, c := range cues {
		m := bulletRegex.FindStringSubmatch(c.Text)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[1])
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true
		points = append(points, KeyPoint{
			Title:     title,
			Timestamp: c.Start,
			Speaker:   c.Speaker,
		})
		if len(points) >= limit {
			break
		}
	}
	return points
}

// splitSentences splits on ". ", "! ", "? " boundaries, keeping the
// punctuation with the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	remaining := text
	for {
		idx := -1
		for i := 0; i < len(remaining)-1; i++ {
			ch := remaining[i]
			if (ch == '.' || ch == '!' || ch == '?') && remaining[i+1] == ' ' {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		sentences = append(sentences, strings.TrimSpace(remaining[:idx+1]))
		remaining = strings.TrimSpace(remaining[idx+1:])
	}
	if remaining != "" {
		sentences = append(sentences, remaining)
	}
	return sentences
}

// stripFlatPrefixes removes the leading timestamp from each flattened
// transcript line so prose heuristics see only spoken text.
func stripFlatPrefixes(flat string) string {
	lines := strings.Split(flat, "\n")
	for i, line := range lines {
		lines[i] = flatPrefixRegex.ReplaceAllString(line, "")
	}
	return strings.Join(lines, " ")
}
