// Package errors defines the error taxonomy for the recap pipeline.
//
// Failures are classified into kinds rather than ad hoc error strings so
// the batch orchestrator can convert them into per-item result data and
// callers can tell a pipeline failure apart from a presentation failure.
//
// Usage:
//
//	rcerrors "github.com/recaptools/recap-cli/pkg/errors"
//
//	return rcerrors.NotFound("transcript", name, candidates)
//
//	if rcerrors.KindOf(err) == rcerrors.KindNotFound { ... }
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindConfiguration means a required setting is absent. Fatal for the
	// whole request; surfaced before any item work begins.
	KindConfiguration Kind = "configuration"

	// KindNotFound means the requested identifier has no match among the
	// file store candidates.
	KindNotFound Kind = "not_found"

	// KindTransport means a download or summarization-service call failed.
	KindTransport Kind = "transport"

	// KindMalformedResponse means the summarization response could not be
	// decoded. Never surfaced to callers; absorbed by the fallback path.
	KindMalformedResponse Kind = "malformed_response"

	// KindRendering means output-format construction failed.
	KindRendering Kind = "rendering"

	// KindTimeout means an external call exceeded its deadline.
	KindTimeout Kind = "timeout"

	// KindCancelled means the operation was cancelled by the caller.
	KindCancelled Kind = "cancelled"

	// KindProcessing is the catch-all for unclassified failures.
	KindProcessing Kind = "processing"
)

// ProcessError is a structured error carried on a failed ProcessingResult.
type ProcessError struct {
	Kind    Kind   `json:"kind"`
	Stage   string `json:"stage,omitempty"`
	Message string `json:"message"`

	// Candidates lists near-miss identifiers for not-found errors.
	Candidates []string `json:"candidates,omitempty"`

	Cause error `json:"-"`
}

func (e *ProcessError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// New creates a ProcessError with the given kind and message.
func New(kind Kind, stage, message string) *ProcessError {
	return &ProcessError{Kind: kind, Stage: stage, Message: message}
}

// Wrap creates a ProcessError wrapping a cause.
func Wrap(kind Kind, stage string, cause error) *ProcessError {
	if cause == nil {
		return nil
	}
	return &ProcessError{Kind: kind, Stage: stage, Message: cause.Error(), Cause: cause}
}

// NotFound creates a not-found ProcessError carrying near-miss candidates.
func NotFound(stage, identifier string, candidates []string) *ProcessError {
	return &ProcessError{
		Kind:       KindNotFound,
		Stage:      stage,
		Message:    fmt.Sprintf("no transcript matching %q", identifier),
		Candidates: candidates,
	}
}

// KindOf returns the Kind of err, or KindProcessing when err carries none.
// Returns "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindProcessing
}

// Classify inspects an error and returns a *ProcessError with the
// appropriate kind. Already-classified errors pass through with the stage
// filled in when missing.
func Classify(err error, stage string) *ProcessError {
	if err == nil {
		return nil
	}

	var pe *ProcessError
	if errors.As(err, &pe) {
		if pe.Stage == "" {
			pe.Stage = stage
		}
		return pe
	}

	out := &ProcessError{Stage: stage, Message: err.Error(), Cause: err}

	if errors.Is(err, context.DeadlineExceeded) {
		out.Kind = KindTimeout
		return out
	}
	if errors.Is(err, context.Canceled) {
		out.Kind = KindCancelled
		return out
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "not found") || strings.Contains(lower, "no such file"):
		out.Kind = KindNotFound
	case strings.Contains(lower, "connection") || strings.Contains(lower, "download") ||
		strings.Contains(lower, "status ") || strings.Contains(lower, "dial"):
		out.Kind = KindTransport
	default:
		out.Kind = KindProcessing
	}
	return out
}
