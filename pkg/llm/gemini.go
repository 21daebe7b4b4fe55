package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// responseSchema is the fixed structured-output contract: a summary
// string plus an array of key points.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"keyPoints": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":     {Type: genai.TypeString},
					"timestamp": {Type: genai.TypeString},
					"speaker":   {Type: genai.TypeString},
					"videoLink": {Type: genai.TypeString},
				},
				Required: []string{"title"},
			},
		},
	},
	Required: []string{"summary", "keyPoints"},
}

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	apiKey string
	model  string
}

// NewGeminiClient creates a Gemini-backed summarization client.
func NewGeminiClient(apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiClient{apiKey: apiKey, model: model}, nil
}

// Complete issues exactly one generation call with the fixed JSON
// response contract and returns the raw response text.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("create client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", Usage{}, fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", Usage{}, fmt.Errorf("empty response from model")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	return text.String(), usageFrom(result), nil
}

// usageFrom extracts token counts from the response metadata.
func usageFrom(result *genai.GenerateContentResponse) Usage {
	md := result.UsageMetadata
	if md == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens:     int(md.PromptTokenCount),
		CompletionTokens: int(md.CandidatesTokenCount),
		TotalTokens:      int(md.TotalTokenCount),
	}
}
