// Package transcript parses WebVTT-style cue tracks into ordered,
// speaker-attributed, time-indexed segments.
package transcript

import "strings"

// Cue represents a single timed caption unit.
type Cue struct {
	// Start and End are wall-clock offsets in canonical HH:MM:SS form.
	Start string `json:"start"`
	End   string `json:"end"`

	// Speaker is the display name when determinable, "" otherwise.
	Speaker string `json:"speaker,omitempty"`

	// Text is the whitespace-normalized spoken content. Never empty for
	// an emitted cue.
	Text string `json:"text"`
}

// Flatten renders cues as plain "timestamp text" lines, one per cue.
// This is the only representation forwarded to summarization.
func Flatten(cues []Cue) string {
	var b strings.Builder
	for i, c := range cues {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.Start)
		b.WriteString(" ")
		if c.Speaker != "" {
			b.WriteString(c.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// Speakers returns the unique speaker names in order of first appearance.
func Speakers(cues []Cue) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cues {
		if c.Speaker != "" && !seen[c.Speaker] {
			seen[c.Speaker] = true
			out = append(out, c.Speaker)
		}
	}
	return out
}
