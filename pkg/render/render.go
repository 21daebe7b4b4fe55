// Package render turns processing results into their output
// representations: JSON, Markdown, a styled DOCX document, or a condensed
// digest.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recaptools/recap-cli/pkg/errors"
	"github.com/recaptools/recap-cli/pkg/pipeline"
	"github.com/recaptools/recap-cli/pkg/summarize"
)

// Format selects the output representation.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatDocx     Format = "docx"
	FormatDigest   Format = "digest"
)

// DigestKeyPoints caps how many key points a digest shows.
const DigestKeyPoints = 5

// ParseFormat maps a user-supplied format name to a Format. Unrecognized
// names fall back to JSON rather than failing.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown
	case "docx", "doc", "word":
		return FormatDocx
	case "digest":
		return FormatDigest
	default:
		return FormatJSON
	}
}

// Output is a rendered result.
type Output struct {
	Format Format
	Data   []byte
}

// Binary reports whether Data is a binary document rather than text.
func (o Output) Binary() bool {
	return o.Format == FormatDocx
}

// Result renders a single processing result.
func Result(res pipeline.ProcessingResult, format Format) (Output, error) {
	switch format {
	case FormatMarkdown:
		return Output{Format: format, Data: []byte(resultMarkdown(res))}, nil
	case FormatDigest:
		return Output{Format: format, Data: []byte(resultDigest(res))}, nil
	case FormatDocx:
		data, err := resultsDocx([]pipeline.ProcessingResult{res})
		if err != nil {
			return Output{}, errors.Wrap(errors.KindRendering, "render", err)
		}
		return Output{Format: format, Data: data}, nil
	default:
		return marshalJSON(res)
	}
}

// Batch renders a batch result. Markdown and DOCX concatenate the items
// with a visual separator; JSON and digest cover the whole batch.
func Batch(res pipeline.BatchResult, format Format) (Output, error) {
	switch format {
	case FormatMarkdown:
		parts := make([]string, 0, len(res.Items))
		for _, item := range res.Items {
			parts = append(parts, resultMarkdown(item))
		}
		doc := strings.Join(parts, "\n---\n\n")
		return Output{Format: format, Data: []byte(doc)}, nil
	case FormatDigest:
		parts := make([]string, 0, len(res.Items))
		for _, item := range res.Items {
			parts = append(parts, resultDigest(item))
		}
		return Output{Format: format, Data: []byte(strings.Join(parts, "\n"))}, nil
	case FormatDocx:
		data, err := resultsDocx(res.Items)
		if err != nil {
			return Output{}, errors.Wrap(errors.KindRendering, "render", err)
		}
		return Output{Format: format, Data: data}, nil
	default:
		return marshalJSON(res)
	}
}

func marshalJSON(v interface{}) (Output, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Output{}, errors.Wrap(errors.KindRendering, "render", err)
	}
	return Output{Format: FormatJSON, Data: data}, nil
}

func resultMarkdown(res pipeline.ProcessingResult) string {
	var b strings.Builder

	if !res.Success {
		fmt.Fprintf(&b, "# %s\n\n", headline(res))
		if res.Error != nil {
			fmt.Fprintf(&b, "**Failed:** %s\n", res.Error.Message)
			if len(res.Error.Candidates) > 0 {
				b.WriteString("\nAvailable transcripts:\n")
				for _, c := range res.Error.Candidates {
					fmt.Fprintf(&b, "- %s\n", c)
				}
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "# %s\n\n", headline(res))
	fmt.Fprintf(&b, "**Date:** %s\n", res.Date)
	if res.ViewerURL != "" {
		fmt.Fprintf(&b, "**Recording:** %s\n", res.ViewerURL)
	}
	if len(res.Speakers) > 0 {
		fmt.Fprintf(&b, "**Speakers:** %s\n", strings.Join(res.Speakers, ", "))
	}
	b.WriteString("\n## Summary\n\n")
	b.WriteString(res.Summary)
	b.WriteString("\n")

	if len(res.KeyPoints) > 0 {
		b.WriteString("\n## Key Points\n\n")
		for _, kp := range res.KeyPoints {
			b.WriteString(keyPointLine(kp))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func keyPointLine(kp summarize.KeyPoint) string {
	var b strings.Builder
	b.WriteString("- ")
	if kp.Timestamp != "" {
		fmt.Fprintf(&b, "**%s** ", kp.Timestamp)
	}
	if kp.Speaker != "" {
		fmt.Fprintf(&b, "_%s_ — ", kp.Speaker)
	}
	if kp.VideoLink != "" {
		fmt.Fprintf(&b, "[%s](%s)", kp.Title, kp.VideoLink)
	} else {
		b.WriteString(kp.Title)
	}
	return b.String()
}

func resultDigest(res pipeline.ProcessingResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headline(res))

	if !res.Success {
		if res.Error != nil {
			fmt.Fprintf(&b, "  failed: %s\n", res.Error.Message)
		}
		return b.String()
	}

	if res.Summary != "" {
		fmt.Fprintf(&b, "%s\n", res.Summary)
	}
	points := res.KeyPoints
	if len(points) > DigestKeyPoints {
		points = points[:DigestKeyPoints]
	}
	for _, kp := range points {
		if kp.Timestamp != "" {
			fmt.Fprintf(&b, "  [%s] %s\n", kp.Timestamp, kp.Title)
		} else {
			fmt.Fprintf(&b, "  - %s\n", kp.Title)
		}
	}
	return b.String()
}

func headline(res pipeline.ProcessingResult) string {
	if res.MeetingTitle != "" {
		return res.MeetingTitle
	}
	return res.Identifier
}
