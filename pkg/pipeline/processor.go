// Package pipeline runs the transcript processing chain: resolve the
// recording in the file store, download and parse its cues, summarize
// them, and enrich the key points with deep links. Batch runs wrap the
// same chain per item with windowed concurrency.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/recaptools/recap-cli/pkg/errors"
	"github.com/recaptools/recap-cli/pkg/events"
	"github.com/recaptools/recap-cli/pkg/filestore"
	"github.com/recaptools/recap-cli/pkg/keypoints"
	"github.com/recaptools/recap-cli/pkg/llm"
	"github.com/recaptools/recap-cli/pkg/logging"
	"github.com/recaptools/recap-cli/pkg/meta"
	"github.com/recaptools/recap-cli/pkg/observability"
	"github.com/recaptools/recap-cli/pkg/summarize"
	"github.com/recaptools/recap-cli/pkg/transcript"
)

// DefaultConcurrency is the default batch window size.
const DefaultConcurrency = 4

// DefaultWindowDelay is the pause between batch windows.
const DefaultWindowDelay = 500 * time.Millisecond

// maxNearMissCandidates caps the alternatives listed on a not-found error.
const maxNearMissCandidates = 15

// Options configures a Processor. Zero values fall back to defaults.
type Options struct {
	// Concurrency is the batch window size.
	Concurrency int

	// WindowDelay is the pause between batch windows.
	WindowDelay time.Duration

	// ItemTimeout bounds one item's external calls; zero means the
	// caller's context is the only bound.
	ItemTimeout time.Duration

	// Site supplies the viewer-URL fallback chain for metadata
	// resolution.
	Site meta.SiteContext

	// Summarize holds the extraction thresholds.
	Summarize summarize.Options
}

// Deps are the collaborators a Processor needs. Store and Logger may be
// nil; store-less processors can still handle local file identifiers, and
// a nil Logger is replaced with a no-op one. Metrics, Tracer and
// Publisher are optional.
type Deps struct {
	Store     filestore.Store
	Client    llm.Client
	Logger    logging.Logger
	Metrics   *observability.PipelineMetrics
	Tracer    *observability.Tracer
	Publisher *events.Publisher
}

// ProcessingResult is the outcome of one transcript run. Failure is data:
// a failed item carries Success=false and a populated Error instead of
// propagating an error value.
type ProcessingResult struct {
	Identifier   string               `json:"identifier"`
	Success      bool                 `json:"success"`
	MeetingTitle string               `json:"meetingTitle,omitempty"`
	Date         string               `json:"date,omitempty"`
	ViewerURL    string               `json:"viewerUrl,omitempty"`
	Summary      string               `json:"summary,omitempty"`
	KeyPoints    []summarize.KeyPoint `json:"keyPoints,omitempty"`
	Speakers     []string             `json:"speakers,omitempty"`
	CueCount     int                  `json:"cueCount"`
	Truncated    bool                 `json:"truncated,omitempty"`
	Source       summarize.Source     `json:"source,omitempty"`
	Usage        llm.Usage            `json:"usageCounters"`
	Error        *errors.ProcessError `json:"error,omitempty"`
}

// Processor runs the single-item pipeline and batch orchestration.
type Processor struct {
	store     filestore.Store
	opts      Options
	logger    logging.Logger
	metrics   *observability.PipelineMetrics
	tracer    *observability.Tracer
	publisher *events.Publisher

	summarizer *summarize.Orchestrator
}

// NewProcessor creates a Processor over the given collaborators.
func NewProcessor(deps Deps, opts Options) *Processor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.WindowDelay <= 0 {
		opts.WindowDelay = DefaultWindowDelay
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.F("component", "pipeline"))

	return &Processor{
		store:      deps.Store,
		opts:       opts,
		logger:     logger,
		metrics:    deps.Metrics,
		tracer:     deps.Tracer,
		publisher:  deps.Publisher,
		summarizer: summarize.New(deps.Client, opts.Summarize, logger),
	}
}

// ProcessOne runs the full pipeline for a single identifier. It never
// returns an error: any failure, including a panic in a stage, becomes a
// ProcessingResult with Success=false.
func (p *Processor) ProcessOne(ctx context.Context, identifier string) ProcessingResult {
	return p.processOne(ctx, identifier, "")
}

func (p *Processor) processOne(ctx context.Context, identifier, batchID string) (result ProcessingResult) {
	started := time.Now()
	result = ProcessingResult{Identifier: identifier}

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.StartItemSpan(ctx, identifier, batchID)
		defer span.End()
		defer func() {
			if result.Error != nil {
				observability.RecordError(span, result.Error, string(result.Error.Kind))
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline stage panicked",
				logging.F("identifier", identifier),
				logging.F("panic", fmt.Sprint(r)))
			result = ProcessingResult{
				Identifier: identifier,
				Error:      errors.New(errors.KindProcessing, "pipeline", fmt.Sprintf("internal failure: %v", r)),
			}
		}
		p.recordItem(result, time.Since(started))
	}()

	if p.opts.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.ItemTimeout)
		defer cancel()
	}

	raw, sourceName, site, perr := p.fetch(ctx, identifier)
	if perr != nil {
		result.Error = perr
		return result
	}

	cues := p.parse(ctx, raw)
	md := meta.Resolve(raw, sourceName, site)

	result.MeetingTitle = md.Title
	result.Date = md.Date
	result.ViewerURL = md.ViewerURL
	result.CueCount = len(cues)
	result.Speakers = transcript.Speakers(cues)

	sum := p.summarizeCues(ctx, cues)
	result.Summary = sum.Summary
	result.Usage = sum.Usage
	result.Truncated = sum.Truncated
	result.Source = sum.Source
	result.KeyPoints = p.enrich(ctx, sum.KeyPoints, md)

	result.Success = true
	p.logger.Info("transcript processed",
		logging.F("identifier", identifier),
		logging.F("cues", len(cues)),
		logging.F("key_points", len(result.KeyPoints)),
		logging.F("source", string(sum.Source)))
	return result
}

// fetch locates the transcript and returns its raw text, source name, and
// the site context for metadata resolution.
func (p *Processor) fetch(ctx context.Context, identifier string) (string, string, meta.SiteContext, *errors.ProcessError) {
	site := p.opts.Site

	// Identifiers naming an existing local file bypass the store.
	if info, err := os.Stat(identifier); err == nil && !info.IsDir() {
		data, err := os.ReadFile(identifier)
		if err != nil {
			return "", "", site, errors.Wrap(errors.KindTransport, "download", err)
		}
		site.CapturedAt = info.ModTime()
		return string(data), filepath.Base(identifier), site, nil
	}

	if p.store == nil {
		return "", "", site, errors.New(errors.KindConfiguration, "resolve", "no file store configured")
	}

	cand, perr := p.resolve(ctx, identifier)
	if perr != nil {
		return "", "", site, perr
	}
	site.WebURL = cand.WebURL
	site.CapturedAt = cand.CreatedAt

	raw, perr := p.download(ctx, cand)
	if perr != nil {
		return "", "", site, perr
	}
	return raw, cand.Name, site, nil
}

// resolve matches the identifier against the store's candidates. A miss
// returns a not-found error carrying the available alternatives.
func (p *Processor) resolve(ctx context.Context, identifier string) (filestore.Candidate, *errors.ProcessError) {
	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.StartStageSpan(ctx, observability.SpanResolve)
		defer span.End()
	}

	candidates, err := p.store.ListCandidates(ctx)
	if err != nil {
		return filestore.Candidate{}, asTransport(errors.Classify(err, "resolve"))
	}

	if c, ok := matchCandidate(candidates, identifier); ok {
		return c, nil
	}

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.IsFolder {
			continue
		}
		names = append(names, c.Name)
		if len(names) == maxNearMissCandidates {
			break
		}
	}
	return filestore.Candidate{}, errors.NotFound("resolve", identifier, names)
}

// download resolves the candidate's fetch location and retrieves its text.
// An absent location is a not-found failure, a failed fetch a transport one.
func (p *Processor) download(ctx context.Context, cand filestore.Candidate) (string, *errors.ProcessError) {
	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.StartStageSpan(ctx, observability.SpanDownload)
		defer span.End()
	}

	url, err := p.store.ResolveDownloadURL(ctx, cand.ID)
	if err != nil {
		return "", asTransport(errors.Classify(err, "download"))
	}
	if url == "" {
		return "", errors.New(errors.KindNotFound, "download",
			fmt.Sprintf("no download location for %q", cand.Name))
	}

	raw, err := p.store.FetchText(ctx, url)
	if err != nil {
		return "", asTransport(errors.Classify(err, "download"))
	}
	return raw, nil
}

// matchCandidate matches by item ID first, then by exact, case-insensitive,
// and extension-less name.
func matchCandidate(candidates []filestore.Candidate, identifier string) (filestore.Candidate, bool) {
	lowered := strings.ToLower(identifier)
	bare := strings.TrimSuffix(lowered, filepath.Ext(lowered))

	for _, c := range candidates {
		if c.IsFolder {
			continue
		}
		if c.ID == identifier || c.Name == identifier {
			return c, true
		}
	}
	for _, c := range candidates {
		if c.IsFolder {
			continue
		}
		name := strings.ToLower(c.Name)
		if name == lowered || strings.TrimSuffix(name, filepath.Ext(name)) == bare {
			return c, true
		}
	}
	return filestore.Candidate{}, false
}

// asTransport upgrades an unclassified failure from a store call to a
// transport error; classified kinds (timeout, cancelled) pass through.
func asTransport(pe *errors.ProcessError) *errors.ProcessError {
	if pe != nil && pe.Kind == errors.KindProcessing {
		pe.Kind = errors.KindTransport
	}
	return pe
}

func (p *Processor) parse(ctx context.Context, raw string) []transcript.Cue {
	if p.tracer != nil {
		_, span := p.tracer.StartStageSpan(ctx, observability.SpanParse)
		defer span.End()
	}
	start := time.Now()
	cues := transcript.Parse(raw)
	p.observeStage("parse", start)
	return cues
}

func (p *Processor) summarizeCues(ctx context.Context, cues []transcript.Cue) summarize.Result {
	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.StartStageSpan(ctx, observability.SpanSummarize)
		defer span.End()
	}
	start := time.Now()
	sum := p.summarizer.Summarize(ctx, cues)
	p.observeStage("summarize", start)

	if p.metrics != nil {
		p.metrics.RecordTokens(sum.Usage.PromptTokens, sum.Usage.CompletionTokens)
		p.metrics.ExtractionTotal.WithLabelValues(string(sum.Source)).Inc()
	}
	return sum
}

func (p *Processor) enrich(ctx context.Context, points []summarize.KeyPoint, md meta.SourceMetadata) []summarize.KeyPoint {
	if p.tracer != nil {
		_, span := p.tracer.StartStageSpan(ctx, observability.SpanEnrich)
		defer span.End()
	}
	start := time.Now()
	enriched := keypoints.Enrich(points, md)
	p.observeStage("enrich", start)
	return enriched
}

func (p *Processor) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.ProcessingSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func (p *Processor) recordItem(result ProcessingResult, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	status := "success"
	kind := ""
	if !result.Success {
		status = "failure"
		if result.Error != nil {
			kind = string(result.Error.Kind)
		}
	}
	p.metrics.RecordItem(status, kind, elapsed.Seconds())
}
