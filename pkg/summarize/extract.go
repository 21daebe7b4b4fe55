package summarize

import (
	"encoding/json"
	"strings"
)

// modelOutput is the decoded shape of the service response.
type modelOutput struct {
	Summary   string     `json:"summary"`
	KeyPoints []KeyPoint `json:"keyPoints"`
}

// decodeResponse turns raw response text into a validated modelOutput.
// The text is untrusted: code fences are stripped, and when the whole
// string fails to decode, the first-to-last balanced brace span is tried.
// Returns ok=false rather than an error on any failure.
func decodeResponse(raw string) (modelOutput, bool) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return modelOutput{}, false
	}

	if out, ok := tryDecode(cleaned); ok {
		return out, true
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if out, ok := tryDecode(cleaned[start : end+1]); ok {
			return out, true
		}
	}

	return modelOutput{}, false
}

// tryDecode attempts a strict decode-then-validate: the JSON must parse
// and carry at least one of the contract's two fields.
func tryDecode(s string) (modelOutput, bool) {
	var out modelOutput
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return modelOutput{}, false
	}
	out.Summary = strings.TrimSpace(out.Summary)
	out.KeyPoints = sanitizeKeyPoints(out.KeyPoints)
	if out.Summary == "" && len(out.KeyPoints) == 0 {
		return modelOutput{}, false
	}
	return out, true
}

// sanitizeKeyPoints trims fields and drops entries with empty titles.
func sanitizeKeyPoints(points []KeyPoint) []KeyPoint {
	out := make([]KeyPoint, 0, len(points))
	for _, p := range points {
		p.Title = strings.TrimSpace(p.Title)
		p.Timestamp = strings.TrimSpace(p.Timestamp)
		p.Speaker = strings.TrimSpace(p.Speaker)
		p.VideoLink = strings.TrimSpace(p.VideoLink)
		if p.Title == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// stripCodeFences removes leading/trailing markdown fence markers that
// models commonly wrap JSON in.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop a language hint like "json" on the fence line.
		if i := strings.Index(s, "\n"); i >= 0 {
			first := strings.TrimSpace(s[:i])
			if len(first) <= 10 && !strings.Contains(first, "{") {
				s = s[i+1:]
			}
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
