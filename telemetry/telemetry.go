// Package telemetry integrates the engine's sync/strategies/manual/replace
// pipeline with structured logging, metrics, and tracing. The interfaces
// are intentionally small, grounded on
// runtime/agents/telemetry/telemetry.go, so callers can supply lightweight
// stubs in tests instead of a live OTEL/slog stack.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger captures structured logging used throughout the engine.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter and histogram helpers for engine instrumentation.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer abstracts span creation so engine code stays agnostic of the
// underlying OTEL tracer provider.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
}

// Span represents an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// PruneOutcome is what Record takes for a completed sync/strategy/manual/
// replace run: how many items were touched, how many tokens it freed, and
// how long it took. The engine package itself does not build or record
// one; it only opens spans through StartSpan.
type PruneOutcome struct {
	Component   string // "sync", "strategies", "manual", "replace"
	Action      string // e.g. "discard", "distill", "restore", rule name
	ItemsTouched int
	TokensSaved int
	Duration    time.Duration
	Err         error
}

// Recorder bundles a Logger, Metrics, and Tracer behind two convenience
// methods, StartSpan and Record, so callers don't thread three separate
// interfaces through every function signature.
type Recorder struct {
	Logger  Logger
	Metrics Metrics
	Tracer  Tracer
}

// NewNoopRecorder returns a Recorder whose three components all discard
// their inputs, the default for tests and for hosts that don't configure
// telemetry.
func NewNoopRecorder() *Recorder {
	return &Recorder{Logger: NoopLogger{}, Metrics: NoopMetrics{}, Tracer: NoopTracer{}}
}

// StartSpan starts a span named after component.action, to be ended by the
// caller via the returned Span's End method.
func (r *Recorder) StartSpan(ctx context.Context, component, action string) (context.Context, Span) {
	return r.Tracer.Start(ctx, component+"."+action)
}

// Record logs and counts a finished pipeline stage: an info log on success,
// a warn log plus an error-count metric on failure, and in both cases a
// timer and a tokens-saved gauge tagged by component/action.
func (r *Recorder) Record(ctx context.Context, o PruneOutcome) {
	tags := []string{"component", o.Component, "action", o.Action}
	r.Metrics.RecordTimer("acp.duration", o.Duration, tags...)
	r.Metrics.RecordGauge("acp.tokens_saved", float64(o.TokensSaved), tags...)
	r.Metrics.IncCounter("acp.items_touched", float64(o.ItemsTouched), tags...)
	if o.Err != nil {
		r.Metrics.IncCounter("acp.errors", 1, tags...)
		r.Logger.Warn(ctx, "acp: pipeline stage failed",
			"component", o.Component, "action", o.Action, "err", o.Err)
		return
	}
	r.Logger.Info(ctx, "acp: pipeline stage completed",
		"component", o.Component, "action", o.Action,
		"itemsTouched", o.ItemsTouched, "tokensSaved", o.TokensSaved,
		"durationMs", o.Duration.Milliseconds())
}
