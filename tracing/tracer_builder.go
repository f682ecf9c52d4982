package tracing

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/luxas/deklarative/instrument/tag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

/*
	If TracerBuilder.WithLogger is set, that logger will be used.
	Otherwise the AcquireLoggerFunc resolves it, by default from the
	context and then from SetGlobalLogger. If nothing is registered,
	logr.Discard() is used.

	If a non-discard logger is used, its Enabled() function tells whether
	to log and trace, or not. With a discard logger, spans are always
	started using the resolved TracerProvider (which can be a no-op one).

	If TracerBuilder.WithTracerProvider is set, that provider is used.
	If the context carries a Span with a non-noop TracerProvider, it is
	used, which is how child spans end up in the parent's provider.
	Otherwise the global TracerProvider is used.
*/

//nolint:gochecknoglobals
var (
	noopProvider = trace.NewNoopTracerProvider()
	noopTracer   = noopProvider.Tracer("")
)

// TracerBuilder implements trace.Tracer.
type TracerBuilder struct {
	actor  interface{}
	log    Logger
	hasLog bool
	tp     TracerProvider
	err    *error
	errFn  ErrRegisterFunc // default: DefaultErrRegisterFunc

	spanStartOpts []trace.SpanStartOption
	addLevel      int
}

var _ trace.Tracer = &TracerBuilder{}

// Tracer returns a new *TracerBuilder.
func Tracer() *TracerBuilder {
	return &TracerBuilder{errFn: DefaultErrRegisterFunc}
}

// WithActor registers an "actor" for the traced operation, which is
// used as the tracer name and as a prefix of the span name.
//
// Interceptors usually pass their interceptor.Ref, which makes the span
// for BeforeMethod of "org.example.FooInterceptor" named
// "org.example.FooInterceptor.get" for a traced get method.
//
// If the actor implements TracerNamed, the return value of that is used.
// Strings and fmt.Stringers are used as-is. Otherwise, the type name is
// resolved by fmt.Sprintf("%T", actor).
func (b *TracerBuilder) WithActor(actor interface{}) *TracerBuilder {
	b.actor = actor
	return b
}

// WithLogger specifies a Logger to use in the trace process.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) WithLogger(log Logger) *TracerBuilder {
	b.log = log
	b.hasLog = true
	return b
}

// WithTracerProvider specifies a TracerProvider to use in the trace process.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) WithTracerProvider(tp TracerProvider) *TracerBuilder {
	b.tp = tp
	return b
}

// WithAttributes registers attributes that are added as
// trace.SpanStartOptions automatically, but also logged in
// the beginning using the logger, if enabled.
//
// A call to this function appends to the list of previous values.
func (b *TracerBuilder) WithAttributes(attrs ...attribute.KeyValue) *TracerBuilder {
	return b.withSpanStartOptions(trace.WithAttributes(attrs...))
}

// WithTag registers the value v of tag t as a span start attribute.
// Like tag.Tag.MustSet, it panics if v doesn't have the kind of t.
//
// A call to this function appends to the list of previous values.
func (b *TracerBuilder) WithTag(t *tag.Tag, v interface{}) *TracerBuilder {
	kv, err := t.KeyValue(v)
	if err != nil {
		panic(err)
	}
	return b.WithAttributes(kv)
}

// WithLayer marks the span as belonging to layer l.
func (b *TracerBuilder) WithLayer(l tag.Layer) *TracerBuilder {
	return b.WithTag(tag.LayerTag(), l.String())
}

// WithSpanKind sets both the OpenTelemetry span kind and the span.kind
// tag.
func (b *TracerBuilder) WithSpanKind(k tag.SpanKind) *TracerBuilder {
	kind := trace.SpanKindInternal
	switch k {
	case tag.SpanKindClient:
		kind = trace.SpanKindClient
	case tag.SpanKindServer:
		kind = trace.SpanKindServer
	}
	return b.withSpanStartOptions(trace.WithSpanKind(kind)).WithTag(tag.SpanKindTag(), k.String())
}

// AddLevel adds this level to the Logger got from the context, and
// propagates the verbosity increase downstream. If the resulting level
// isn't enabled for the Logger, neither logging nor tracing is done.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) AddLevel(level int) *TracerBuilder {
	b.addLevel = level
	return b
}

// Capture is used to capture a named error return value from the
// function this TracerBuilder is executing in.
//
// When the deferred span.End() is called at the end of the function,
// the ErrRegisterFunc will be run for whatever error value this error
// pointer points to, including if the error value is nil.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) Capture(err *error) *TracerBuilder {
	b.err = err
	return b
}

// ErrRegisterFunc allows configuring what ErrRegisterFunc shall be run
// when the traced function ends, if Capture has been called.
//
// By default this is DefaultErrRegisterFunc.
//
// A call to this function overwrites any previous value.
func (b *TracerBuilder) ErrRegisterFunc(fn ErrRegisterFunc) *TracerBuilder {
	b.errFn = fn
	return b
}

func (b *TracerBuilder) withSpanStartOptions(opts ...trace.SpanStartOption) *TracerBuilder {
	b.spanStartOpts = append(b.spanStartOpts, opts...)
	return b
}

// Start implements trace.Tracer. See Trace for more information about how
// this trace.Tracer works.
func (b *TracerBuilder) Start(ctx context.Context, fnName string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, span, _ := b.Trace(ctx, fnName, opts...)
	return ctx, span
}

// Trace creates a new Span, derived from the given context, with a Span and Logger
// name that is a combination of the string representation of the actor (described
// in WithActor) and fnName.
//
// If the Logger is not logr.Discard(), but disabled at the current level,
// a no-op Span is returned.
//
// Span start attributes are logged when the span starts, and changes to
// the returned Span (attributes, events, errors, status and name) are
// logged as they happen, with the SpanAttributePrefix on attribute keys.
func (b *TracerBuilder) Trace(ctx context.Context, fnName string, opts ...trace.SpanStartOption) (context.Context, Span, Logger) {
	log := b.log
	if !b.hasLog {
		log = LoggerFromContext(ctx)
	}
	if b.addLevel != 0 {
		log = log.V(b.addLevel)
	}
	// Child spans log at the same level.
	ctx = logr.NewContext(ctx, log)
	if !isDiscard(log) && !log.Enabled() {
		ctx, noopSpan := noopTracer.Start(ctx, "")
		return ctx, noopSpan, log
	}

	tpName := tracerName(b.actor)
	spanName := fmtSpanName(tpName, fnName)
	log = log.WithName(spanName)

	// Options given to Trace take precedence over the builder's.
	opts = append(append([]trace.SpanStartOption(nil), b.spanStartOpts...), opts...)

	spanCfg := trace.NewSpanStartConfig(opts...)
	startLog := log
	if attrs := spanCfg.Attributes(); len(attrs) != 0 {
		startLog = startLog.WithValues(kvListToLogAttrs(attrs)...)
	}
	startLog.Info("starting span")

	tp := b.tp
	if tp == nil {
		tp = TracerProviderFromContext(ctx)
	}
	ctx, span := tp.Tracer(tpName).Start(ctx, spanName, opts...)

	logSpan := &loggingSpan{
		Span:     span,
		provider: tp,
		log:      log,
		err:      b.err,
		errFn:    b.errFn,
	}
	return trace.ContextWithSpan(ctx, logSpan), logSpan, log
}

func isDiscard(log Logger) bool {
	sink := log.GetSink()
	return sink == nil || sink == logr.Discard().GetSink()
}
