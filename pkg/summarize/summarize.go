// Package summarize turns parsed cues into a natural-language summary and
// a ranked set of key points. It prefers the external summarization
// service but always degrades to local heuristics: no error ever escapes
// this package.
package summarize

import (
	"context"
	"fmt"

	"github.com/recaptools/recap-cli/pkg/llm"
	"github.com/recaptools/recap-cli/pkg/logging"
	"github.com/recaptools/recap-cli/pkg/transcript"
)

// Source tags which extraction path produced a result part.
type Source string

const (
	// SourceModel means both summary and key points came from the service.
	SourceModel Source = "model"

	// SourceFallback means both came from the local heuristics.
	SourceFallback Source = "fallback"

	// SourceMixed means one part was backfilled from the fallback.
	SourceMixed Source = "mixed"
)

// KeyPoint is one summarized discussion point.
type KeyPoint struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp,omitempty"`
	Speaker   string `json:"speaker,omitempty"`
	VideoLink string `json:"videoLink,omitempty"`
}

// Options holds the tunable extraction thresholds.
type Options struct {
	// MaxTranscriptChars bounds the flattened transcript sent to the
	// service; longer input is truncated and flagged.
	MaxTranscriptChars int

	// MinSummaryChars is the informativeness floor for an accepted
	// model summary.
	MinSummaryChars int

	// MinKeyPoints is the minimum accepted model key-point count.
	MinKeyPoints int

	// MaxKeyPoints caps fallback key-point extraction.
	MaxKeyPoints int

	// FallbackSentences is how many leading sentences the fallback
	// summary and key points draw from.
	FallbackSentences int

	// FallbackSummaryChars is the truncation budget when the transcript
	// has no sentence boundaries at all.
	FallbackSummaryChars int
}

// DefaultOptions returns the default thresholds. They are heuristics, not
// invariants; config can override each one.
func DefaultOptions() Options {
	return Options{
		MaxTranscriptChars:   60000,
		MinSummaryChars:      40,
		MinKeyPoints:         3,
		MaxKeyPoints:         10,
		FallbackSentences:    3,
		FallbackSummaryChars: 300,
	}
}

// Result is the outcome of one summarization run.
type Result struct {
	Summary   string     `json:"summary"`
	KeyPoints []KeyPoint `json:"keyPoints"`
	Usage     llm.Usage  `json:"usage"`
	Source    Source     `json:"source"`
	Truncated bool       `json:"truncated,omitempty"`
}

// Orchestrator drives one summarization call plus fallback.
type Orchestrator struct {
	client llm.Client
	opts   Options
	log    logging.Logger
}

// New creates an Orchestrator. A nil client forces the fallback path,
// which keeps the pipeline usable without credentials. Unset thresholds
// are backfilled from DefaultOptions without touching the ones the
// caller did set.
func New(client llm.Client, opts Options, log logging.Logger) *Orchestrator {
	defaults := DefaultOptions()
	if opts.MaxTranscriptChars <= 0 {
		opts.MaxTranscriptChars = defaults.MaxTranscriptChars
	}
	if opts.MinSummaryChars <= 0 {
		opts.MinSummaryChars = defaults.MinSummaryChars
	}
	if opts.MinKeyPoints <= 0 {
		opts.MinKeyPoints = defaults.MinKeyPoints
	}
	if opts.MaxKeyPoints <= 0 {
		opts.MaxKeyPoints = defaults.MaxKeyPoints
	}
	if opts.FallbackSentences <= 0 {
		opts.FallbackSentences = defaults.FallbackSentences
	}
	if opts.FallbackSummaryChars <= 0 {
		opts.FallbackSummaryChars = defaults.FallbackSummaryChars
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Orchestrator{client: client, opts: opts, log: log}
}

const promptTemplate = `You are a meeting analyst. Summarize the transcript below and extract its key discussion points.

Respond with JSON only, matching exactly this shape:
{"summary": "<2-4 sentence summary>", "keyPoints": [{"title": "<short label>", "timestamp": "<HH:MM:SS from the transcript>", "speaker": "<name or empty>", "videoLink": ""}]}

Rules:
- Base every key point on the transcript; copy its timestamp from the nearest transcript line.
- Order key points chronologically.
- Leave videoLink empty.

Transcript:
---
%s
---`

// Summarize runs PREPARE, REQUEST, PARSE, then ACCEPT or FALLBACK per
// part. It always returns a usable result.
func (o *Orchestrator) Summarize(ctx context.Context, cues []transcript.Cue) Result {
	flat := transcript.Flatten(cues)

	truncated := false
	if o.opts.MaxTranscriptChars > 0 && len(flat) > o.opts.MaxTranscriptChars {
		flat = truncateAtRune(flat, o.opts.MaxTranscriptChars)
		truncated = true
	}

	out, usage, ok := o.request(ctx, flat)
	if !ok {
		return Result{
			Summary:   o.fallbackSummary(flat),
			KeyPoints: o.fallbackKeyPoints(flat, cues),
			Source:    SourceFallback,
			Truncated: truncated,
		}
	}

	summaryOK := len(out.Summary) >= o.opts.MinSummaryChars
	pointsOK := len(out.KeyPoints) >= o.opts.MinKeyPoints

	res := Result{Usage: usage, Truncated: truncated}
	switch {
	case summaryOK && pointsOK:
		res.Summary, res.KeyPoints, res.Source = out.Summary, out.KeyPoints, SourceModel
	case summaryOK:
		res.Summary, res.Source = out.Summary, SourceMixed
		res.KeyPoints = o.fallbackKeyPoints(flat, cues)
	case pointsOK:
		res.KeyPoints, res.Source = out.KeyPoints, SourceMixed
		res.Summary = o.fallbackSummary(flat)
	default:
		res.Summary = o.fallbackSummary(flat)
		res.KeyPoints = o.fallbackKeyPoints(flat, cues)
		res.Source = SourceFallback
	}
	return res
}

// request performs REQUEST and PARSE. ok is false when the call failed or
// the response did not decode; usage is zero in that case.
func (o *Orchestrator) request(ctx context.Context, flat string) (modelOutput, llm.Usage, bool) {
	if o.client == nil || flat == "" {
		return modelOutput{}, llm.Usage{}, false
	}

	raw, usage, err := o.client.Complete(ctx, fmt.Sprintf(promptTemplate, flat))
	if err != nil {
		o.log.Warn("summarization call failed, using fallback", logging.Err(err))
		return modelOutput{}, llm.Usage{}, false
	}

	out, ok := decodeResponse(raw)
	if !ok {
		// Malformed responses are absorbed here, never surfaced.
		o.log.Warn("summarization response undecodable, using fallback",
			logging.F("response_len", len(raw)))
		return modelOutput{}, llm.Usage{}, false
	}

	return out, usage, true
}
