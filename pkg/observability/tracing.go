package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the tracer for pipeline operations.
const TracerName = "recap.pipeline"

// Span attribute keys.
const (
	AttrBatchID    = "batch_id"
	AttrIdentifier = "identifier"
	AttrFormat     = "format"
	AttrSource     = "extraction_source"
	AttrErrorKind  = "error_kind"
	AttrCueCount   = "cue_count"
	AttrTruncated  = "truncated"
)

// Span names.
const (
	SpanProcessItem  = "recap.process_item"
	SpanResolve      = "recap.stage.resolve"
	SpanDownload     = "recap.stage.download"
	SpanParse        = "recap.stage.parse"
	SpanSummarize    = "recap.stage.summarize"
	SpanEnrich       = "recap.stage.enrich"
	SpanRender       = "recap.render"
	SpanProcessBatch = "recap.process_batch"
)

// Tracer provides distributed tracing for pipeline operations.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a pipeline tracer.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(TracerName)}
}

// StartItemSpan starts a root span for processing one transcript.
func (t *Tracer) StartItemSpan(ctx context.Context, identifier, batchID string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, SpanProcessItem,
		trace.WithAttributes(attribute.String(AttrIdentifier, identifier)),
	)
	if batchID != "" {
		span.SetAttributes(attribute.String(AttrBatchID, batchID))
	}
	return ctx, span
}

// StartBatchSpan starts a root span for a batch run.
func (t *Tracer) StartBatchSpan(ctx context.Context, batchID string, size int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanProcessBatch,
		trace.WithAttributes(
			attribute.String(AttrBatchID, batchID),
			attribute.Int("batch_size", size),
		),
	)
}

// StartStageSpan starts a span for one pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, stage)
}

// RecordError marks a span failed with the classified error kind.
func RecordError(span trace.Span, err error, kind string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorKind, kind))
	span.SetStatus(codes.Error, err.Error())
}
