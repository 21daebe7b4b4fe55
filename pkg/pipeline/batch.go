package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/recaptools/recap-cli/pkg/errors"
	"github.com/recaptools/recap-cli/pkg/events"
	"github.com/recaptools/recap-cli/pkg/llm"
	"github.com/recaptools/recap-cli/pkg/logging"
)

// BatchResult is the aggregate outcome of a batch run. It is always a
// normal value: per-item failures live on the items, never on an error
// return.
type BatchResult struct {
	BatchID      string             `json:"batchId"`
	Items        []ProcessingResult `json:"items"`
	AllSucceeded bool               `json:"allSucceeded"`
	AnySucceeded bool               `json:"anySucceeded"`
	Usage        llm.Usage          `json:"usageCounters"`
	TimingMs     int64              `json:"timingMs"`
}

// ProcessBatch runs the pipeline for every identifier. Items are
// dispatched in windows of the configured concurrency; a window settles
// completely before the next one starts, with a short delay between
// windows. Results are placed by input index, so Items always matches the
// order and length of identifiers.
func (p *Processor) ProcessBatch(ctx context.Context, identifiers []string) BatchResult {
	started := time.Now()
	batchID := uuid.New().String()

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.StartBatchSpan(ctx, batchID, len(identifiers))
		defer span.End()
	}

	log := p.logger.With(logging.F("batch_id", batchID))
	log.Info("batch started",
		logging.F("items", len(identifiers)),
		logging.F("concurrency", p.opts.Concurrency))

	items := make([]ProcessingResult, len(identifiers))

	for start := 0; start < len(identifiers); start += p.opts.Concurrency {
		end := start + p.opts.Concurrency
		if end > len(identifiers) {
			end = len(identifiers)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				items[idx] = p.processOne(ctx, identifiers[idx], batchID)
			}(i)
		}
		wg.Wait()

		if end < len(identifiers) {
			select {
			case <-ctx.Done():
				p.cancelRemaining(ctx, identifiers, items, end)
				return p.finishBatch(ctx, log, batchID, items, started)
			case <-time.After(p.opts.WindowDelay):
			}
		}
	}

	return p.finishBatch(ctx, log, batchID, items, started)
}

// cancelRemaining fills never-dispatched items with a cancellation error so
// Items still matches the input length.
func (p *Processor) cancelRemaining(ctx context.Context, identifiers []string, items []ProcessingResult, from int) {
	perr := errors.Classify(ctx.Err(), "batch")
	for i := from; i < len(identifiers); i++ {
		items[i] = ProcessingResult{Identifier: identifiers[i], Error: perr}
	}
}

func (p *Processor) finishBatch(ctx context.Context, log logging.Logger, batchID string, items []ProcessingResult, started time.Time) BatchResult {
	result := BatchResult{
		BatchID:      batchID,
		Items:        items,
		AllSucceeded: true,
		TimingMs:     time.Since(started).Milliseconds(),
	}

	succeeded := 0
	for _, item := range items {
		if item.Success {
			succeeded++
			result.AnySucceeded = true
		} else {
			result.AllSucceeded = false
		}
		result.Usage = result.Usage.Add(item.Usage)
	}
	if len(items) == 0 {
		result.AllSucceeded = true
	}

	if p.metrics != nil {
		p.metrics.BatchesTotal.Inc()
		p.metrics.BatchSizeItems.Observe(float64(len(items)))
	}

	p.publishBatchEvents(ctx, batchID, result, succeeded)

	log.Info("batch finished",
		logging.F("succeeded", succeeded),
		logging.F("failed", len(items)-succeeded),
		logging.F("timing_ms", result.TimingMs))
	return result
}

// publishBatchEvents emits best-effort Redis events for the batch and its
// failed items.
func (p *Processor) publishBatchEvents(ctx context.Context, batchID string, result BatchResult, succeeded int) {
	if p.publisher == nil || !p.publisher.Enabled() {
		return
	}

	_ = p.publisher.PublishBatchCompleted(ctx, events.BatchCompletedEvent{
		BatchID:        batchID,
		TotalItems:     len(result.Items),
		SucceededCount: succeeded,
		FailedCount:    len(result.Items) - succeeded,
		AllSucceeded:   result.AllSucceeded,
		TimingMs:       result.TimingMs,
		TotalTokens:    result.Usage.TotalTokens,
	})

	for _, item := range result.Items {
		if item.Success || item.Error == nil {
			continue
		}
		_ = p.publisher.PublishItemFailed(ctx, events.ItemFailedEvent{
			BatchID:    batchID,
			Identifier: item.Identifier,
			ErrorKind:  string(item.Error.Kind),
			Message:    item.Error.Message,
		})
	}
}
