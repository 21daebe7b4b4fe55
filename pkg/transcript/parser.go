package transcript

import (
	"bufio"
	"regexp"
	"sort"
	"strings"

	"github.com/recaptools/recap-cli/pkg/timestamp"
)

// Cue track parsing regular expressions.
var (
	// Matches a cue boundary line: 00:00:05.000 --> 00:00:10.000
	// Hours and the end timestamp are optional; fractions use '.' or ','.
	cueBoundaryRegex = regexp.MustCompile(`^((?:\d{1,2}:)?\d{1,2}:\d{2}(?:[.,]\d+)?)\s*-->\s*((?:\d{1,2}:)?\d{1,2}:\d{2}(?:[.,]\d+)?)?`)

	// Matches a voice tag wrapping a speaker name: <v John Smith>
	voiceTagRegex = regexp.MustCompile(`<v(?:\.[^ >]*)?\s+([^>]+)>`)

	// Matches inline styling tags (<c>, <i>, </v>, ...).
	styleTagRegex = regexp.MustCompile(`</?[^>]+>`)

	// Matches an inline "Name: text" speaker convention.
	inlineSpeakerRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z .'\-]{0,40}?):\s+(\S.*)$`)

	// Lines that are a bare sequence index.
	indexLineRegex = regexp.MustCompile(`^\d+$`)

	// Lines that are pure separators.
	separatorLineRegex = regexp.MustCompile(`^[-=_*]+$`)

	// Header and metadata lines to skip.
	metadataLineRegex = regexp.MustCompile(`^(WEBVTT\b|NOTE\b|Kind:|Language:|STYLE\b|REGION\b)`)
)

// Parse turns raw cue-track text into an ordered sequence of cues.
// It never fails: empty, malformed, or unrecognizable input degrades to
// an empty (possibly shorter) result rather than an error.
func Parse(raw string) []Cue {
	if strings.TrimSpace(raw) == "" {
		return []Cue{}
	}

	cues := make([]Cue, 0)
	var current *Cue
	var textLines []string

	finalize := func() {
		if current == nil {
			return
		}
		cue := *current
		cue.Speaker, cue.Text = extractSpeaker(textLines)
		if cue.Text != "" {
			cues = append(cues, cue)
		}
		current = nil
		textLines = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// A blank line closes the open cue, boundary present or not.
		if line == "" {
			finalize()
			continue
		}

		if metadataLineRegex.MatchString(line) {
			continue
		}

		if m := cueBoundaryRegex.FindStringSubmatch(line); m != nil {
			finalize()
			current = &Cue{
				Start: timestamp.ToHMS(timestamp.ToSeconds(m[1])),
				End:   timestamp.ToHMS(timestamp.ToSeconds(m[2])),
			}
			continue
		}

		if indexLineRegex.MatchString(line) || separatorLineRegex.MatchString(line) {
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	finalize()

	// Stable sort keeps file order for equal starts while guaranteeing
	// non-decreasing start offsets even for out-of-order input.
	sort.SliceStable(cues, func(i, j int) bool {
		return timestamp.ToSeconds(cues[i].Start) < timestamp.ToSeconds(cues[j].Start)
	})

	return cues
}

// extractSpeaker joins accumulated content lines, pulls the speaker out of
// a voice tag or an inline "Name: text" prefix, and strips remaining
// styling tags. Returns ("", "") when nothing survives.
func extractSpeaker(lines []string) (speaker, text string) {
	joined := strings.TrimSpace(strings.Join(lines, " "))
	if joined == "" {
		return "", ""
	}

	if m := voiceTagRegex.FindStringSubmatch(joined); m != nil {
		speaker = strings.TrimSpace(m[1])
	}
	joined = strings.TrimSpace(styleTagRegex.ReplaceAllString(joined, ""))

	if speaker == "" {
		if m := inlineSpeakerRegex.FindStringSubmatch(joined); m != nil {
			speaker = strings.TrimSpace(m[1])
			joined = strings.TrimSpace(m[2])
		}
	}

	return speaker, collapseSpaces(joined)
}

// collapseSpaces normalizes runs of whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
