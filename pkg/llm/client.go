// Package llm abstracts the external summarization service. The pipeline
// depends only on the Client interface; the Gemini implementation lives
// alongside it.
package llm

import "context"

// Usage records summarization-service consumption for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add returns the field-by-field sum of two usage records.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		TotalTokens:      u.TotalTokens + o.TotalTokens,
	}
}

// IsZero reports whether no consumption was recorded.
func (u Usage) IsZero() bool {
	return u == Usage{}
}

// Client issues a single completion call against the summarization
// service. The response is raw text: callers must treat it as untrusted
// and parse defensively.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, Usage, error)
}
