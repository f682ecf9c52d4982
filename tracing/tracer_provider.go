package tracing

import (
	"context"
	"io"
	"math/rand"
	"sync"

	"github.com/luxas/deklarative/instrument/tracing/filetest"
	"github.com/luxas/deklarative/instrument/tracing/traceyaml"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

// DefaultServiceName is the "service.name" resource attribute of spans
// exported by providers built by TracerProviderBuilder.
const DefaultServiceName = "deklarative-agent"

// CompositeTracerProviderFunc builds a composite TracerProvider on top of
// the given TracerProvider. If the returned TracerProvider doesn't
// implement Shutdown, ForceFlush or IsNoop, the given one is used for them.
type CompositeTracerProviderFunc func(TracerProvider) trace.TracerProvider

// Provider returns a new *TracerProviderBuilder instance.
func Provider() *TracerProviderBuilder {
	return &TracerProviderBuilder{}
}

// TracerProviderBuilder is an opinionated builder-pattern constructor for a
// TracerProvider that exports spans as JSON to stdout or any writer, and
// optionally records them through a traceyaml.Recorder.
type TracerProviderBuilder struct {
	exporters    []tracesdk.SpanExporter
	errs         []error
	tpOpts       []tracesdk.TracerProviderOption
	attrs        []attribute.KeyValue
	sync         bool
	compositeFns []CompositeTracerProviderFunc
}

// WithStdoutExporter exports pretty-formatted span data to os.Stdout, or another
// writer if stdouttrace.WithWriter(w) is supplied as an option.
func (b *TracerProviderBuilder) WithStdoutExporter(opts ...stdouttrace.Option) *TracerProviderBuilder {
	opts = append([]stdouttrace.Option{stdouttrace.WithPrettyPrint()}, opts...)

	exp, err := stdouttrace.New(opts...)
	return b.withExporter(exp, err)
}

func (b *TracerProviderBuilder) withExporter(exp tracesdk.SpanExporter, err error) *TracerProviderBuilder {
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.exporters = append(b.exporters, exp)
	return b
}

// WithOptions allows configuring the TracerProvider in various ways, for example
// tracesdk.WithSpanProcessor(sp) or tracesdk.WithSampler(s).
func (b *TracerProviderBuilder) WithOptions(opts ...tracesdk.TracerProviderOption) *TracerProviderBuilder {
	b.tpOpts = append(b.tpOpts, opts...)
	return b
}

// WithAttributes registers more resource attributes for spans created by this
// TracerProvider. Semantic conventions v1.4.0 are used, with "service.name"
// set to DefaultServiceName unless overridden here.
func (b *TracerProviderBuilder) WithAttributes(attrs ...attribute.KeyValue) *TracerProviderBuilder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// WithServiceName is a shorthand for WithAttributes(semconv.ServiceNameKey.String(name)).
func (b *TracerProviderBuilder) WithServiceName(name string) *TracerProviderBuilder {
	return b.WithAttributes(semconv.ServiceNameKey.String(name))
}

// Synchronous makes the exporters export in synchronous mode, which is useful
// for avoiding flakes in unit tests. The default mode is batching.
// DO NOT use in production.
func (b *TracerProviderBuilder) Synchronous() *TracerProviderBuilder {
	b.sync = true
	return b
}

// Composite builds a composite TracerProvider on top of the built one when
// Build() is called. Calling this repeatedly builds a chain of composite
// TracerProviders, the last one being the outermost.
func (b *TracerProviderBuilder) Composite(fn CompositeTracerProviderFunc) *TracerProviderBuilder {
	b.compositeFns = append(b.compositeFns, fn)
	return b
}

// Record makes every span started through the built TracerProvider be
// recorded by rec.
func (b *TracerProviderBuilder) Record(rec *traceyaml.Recorder) *TracerProviderBuilder {
	return b.Composite(func(tp TracerProvider) trace.TracerProvider {
		return rec.Provider(tp)
	})
}

// TestYAMLTo records spans and writes the YAML of every finished trace
// to w. See traceyaml.NewRecorder for the format.
//
// This is useful for unit tests.
func (b *TracerProviderBuilder) TestYAMLTo(w io.Writer) *TracerProviderBuilder {
	return b.Record(traceyaml.NewRecorder(w))
}

// TestYAML is a shorthand for TestYAMLTo, that writes to a testdata/ file
// with the name of the test + the ".yaml" suffix.
//
// This is useful for unit tests.
func (b *TracerProviderBuilder) TestYAML(g *filetest.Tester) *TracerProviderBuilder {
	return b.TestYAMLTo(g.AddTestFile(".yaml").Writer())
}

// DeterministicIDs enables deterministic trace and span IDs. Useful for unit tests.
// DO NOT use in production.
func (b *TracerProviderBuilder) DeterministicIDs(seed int64) *TracerProviderBuilder {
	return b.WithOptions(tracesdk.WithIDGenerator(deterministicWithSeed(seed)))
}

// Build builds the TracerProvider. Exporter construction errors are
// combined and returned.
func (b *TracerProviderBuilder) Build() (TracerProvider, error) {
	if err := multierr.Combine(b.errs...); err != nil {
		return nil, err
	}

	exporters := b.exporters
	// Discard all span output, if no exporter is configured.
	if len(exporters) == 0 {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		exporters = []tracesdk.SpanExporter{exp}
	}

	// Default attributes go first, so b.attrs can override them.
	attrs := append([]attribute.KeyValue{
		semconv.ServiceNameKey.String(DefaultServiceName),
	}, b.attrs...)

	tpOpts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
	}
	for _, exporter := range exporters {
		if b.sync {
			tpOpts = append(tpOpts, tracesdk.WithSyncer(exporter))
			continue
		}
		tpOpts = append(tpOpts, tracesdk.WithBatcher(exporter))
	}
	tpOpts = append(tpOpts, b.tpOpts...)

	tp := fromUpstream(tracesdk.NewTracerProvider(tpOpts...))
	for _, fn := range b.compositeFns {
		tp = composite(fn(tp), tp)
	}
	return tp, nil
}

type deterministicIDGenerator struct {
	mu  *sync.Mutex
	rnd *rand.Rand
}

func (g *deterministicIDGenerator) NewSpanID(context.Context, trace.TraceID) trace.SpanID {
	g.mu.Lock()
	defer g.mu.Unlock()
	sid := trace.SpanID{}
	_, _ = g.rnd.Read(sid[:])
	return sid
}

func (g *deterministicIDGenerator) NewIDs(context.Context) (trace.TraceID, trace.SpanID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tid := trace.TraceID{}
	_, _ = g.rnd.Read(tid[:])
	sid := trace.SpanID{}
	_, _ = g.rnd.Read(sid[:])
	return tid, sid
}

func deterministicWithSeed(seed int64) tracesdk.IDGenerator {
	return &deterministicIDGenerator{
		mu: &sync.Mutex{},
		// Not crypto/rand, as the IDs shall be reproducible.
		//nolint:gosec
		rnd: rand.New(rand.NewSource(seed)),
	}
}
