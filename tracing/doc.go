/*
Package tracing is the facade interceptors use to create spans and logs.

Interceptors start a span using the *TracerBuilder builder, giving it the
context the intercepted call runs in. If the context carries a parent span,
the new span becomes its child, and is exported through the same
TracerProvider. Spans always need to be ended, most commonly using a defer
statement right after creation:

	ctx, span, log := tracing.Tracer().
		WithActor(ref).
		WithLayer(tag.LayerDB).
		WithSpanKind(tag.SpanKindClient).
		Capture(&retErr).
		Trace(ctx, "get")
	defer span.End()

Spans are written to through the tag package, so that a tag of the wrong
kind fails instead of being exported:

	if err := tag.DBStatement.Set(span, "get user:1"); err != nil {
		return err
	}

Logs and traces are interconnected. Whenever a span starts, ends, or has
attributes, events, errors or status registered, this is also logged through
the logr.Logger found in the context (or registered with SetGlobalLogger).
If that Logger is disabled at the current level, no span is created at all.
With the default logr.Discard() Logger, spans are always created.

Backends are created by the application owner: TracerProviderBuilder
builds an OpenTelemetry SDK TracerProvider exporting JSON to stdout or any
writer, and zaplog.Builder builds a zap-backed Logger. They
are either attached to a context using ContextBuilder, or registered
globally.

Package traceyaml records span data for unit tests, and package filetest
compares output with golden files under testdata/.
*/
package tracing
