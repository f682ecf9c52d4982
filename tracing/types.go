package tracing

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/luxas/deklarative/instrument/tag"
	"github.com/luxas/deklarative/instrument/tracing/zaplog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type (
	// Span is a symbolic link to trace.Span.
	Span = trace.Span
	// Logger is a symbolic link to logr.Logger.
	Logger = logr.Logger
)

// TracerProvider is a trace.TracerProvider that can also be flushed and
// shut down, like the one of the OpenTelemetry SDK.
type TracerProvider interface {
	trace.TracerProvider

	// Shutdown flushes and stops all exporters.
	Shutdown(ctx context.Context) error
	// ForceFlush exports all ended spans that haven't been exported yet.
	ForceFlush(ctx context.Context) error
	// IsNoop returns true if spans started by this provider are discarded.
	IsNoop() bool
}

// ErrRegisterFunc can register the error captured at the end of a
// function using TracerBuilder.Capture(*error) with the span.
type ErrRegisterFunc func(err error, span Span, log Logger)

// DefaultErrRegisterFunc registers a non-nil error with the span: the
// error is recorded, the span status is set to codes.Error and the error
// tag is set to true.
func DefaultErrRegisterFunc(err error, span Span, _ Logger) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	tag.Error.Set(span, true)
}

// NewZap is a shorthand for zaplog.NewZap().
//
// Refer to the zaplog package for usage details and examples.
func NewZap() *zaplog.Builder { return zaplog.NewZap() }
