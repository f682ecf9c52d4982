// Package traceyaml provides a means to unit test a trace flow, using a YAML file
// structure that is representative and as close to human-readable as it gets.
//
// A Recorder captures the spans started through the TracerProviders it
// wraps. Interceptor tests use it to assert on the tags their spans carry,
// and golden tests use the YAML it writes when root spans end.
package traceyaml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

// Recorder records span data in memory, and optionally writes each
// finished trace as YAML to a writer.
type Recorder struct {
	// ws is a race-free writer, nil if nothing shall be written.
	ws zapcore.WriteSyncer

	mu    *sync.Mutex
	roots []*SpanInfo
}

// NewRecorder returns a new Recorder. If w is non-nil, root spans are
// marshalled into YAML and written to w when they end, as:
//
//	# Trace1
//	- {Trace1 data}
//
//	# Trace2
//	- {Trace2 data}
//
// Writer w can optionally implement the zapcore.WriteSyncer interface;
// if so it'll be used.
func NewRecorder(w io.Writer) *Recorder {
	r := &Recorder{mu: &sync.Mutex{}}
	if w != nil {
		r.ws = zapcore.Lock(zapcore.AddSync(w))
	}
	return r
}

// New returns a composite TracerProvider that writes the YAML of each
// trace started through it to w. It is a shorthand for
// NewRecorder(w).Provider(tp).
func New(tp trace.TracerProvider, w io.Writer) trace.TracerProvider {
	return NewRecorder(w).Provider(tp)
}

// Provider returns a composite TracerProvider recording into r.
func (r *Recorder) Provider(tp trace.TracerProvider) trace.TracerProvider {
	return &recordingProvider{tp, r}
}

// Spans returns the root spans recorded so far, in the order they were
// started.
func (r *Recorder) Spans() []*SpanInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*SpanInfo(nil), r.roots...)
}

// Find returns the first recorded span named name, searching the traces
// in start order, or nil.
func (r *Recorder) Find(name string) *SpanInfo {
	for _, root := range r.Spans() {
		if found := root.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Reset forgets all recorded spans.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots = nil
}

func (r *Recorder) addRoot(s *SpanInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots = append(r.roots, s)
}

func (r *Recorder) write(s *SpanInfo) error {
	if r.ws == nil {
		return nil
	}
	// Deliberately use yaml.v2 here as it marshals lists on the same
	// indentation level as the list key.
	out, err := yaml.Marshal([]*SpanInfo{s})
	if err != nil {
		return err
	}
	header := fmt.Sprintf("# %s", s.Name)
	out = bytes.Join([][]byte{[]byte(header), out, nil}, []byte{'\n'})
	_, err = r.ws.Write(out)
	return multierr.Append(err, r.ws.Sync())
}

type recordingProvider struct {
	trace.TracerProvider
	rec *Recorder
}

func (tp *recordingProvider) Tracer(instrumentationName string, opts ...trace.TracerOption) trace.Tracer {
	return &recordingTracer{tp.TracerProvider.Tracer(instrumentationName, opts...), tp}
}

type recordingTracer struct {
	trace.Tracer
	provider *recordingProvider
}

func (t *recordingTracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	ctx, span := t.Tracer.Start(ctx, spanName, opts...)
	newSpan := &recordingSpan{span, t.provider, nil}

	cfg := trace.NewSpanStartConfig(opts...)
	if parent := getSpanInfo(ctx); parent != nil && !cfg.NewRoot() {
		newSpan.data = parent.newChild(spanName, opts...)
	} else {
		newSpan.data = newSpanInfo(spanName, opts...)
		t.provider.rec.addRoot(newSpan.data)
	}
	ctx = withSpanInfo(ctx, newSpan.data)

	return trace.ContextWithSpan(ctx, newSpan), newSpan
}

type recordingSpan struct {
	trace.Span

	provider *recordingProvider
	data     *SpanInfo
}

func (s *recordingSpan) End(options ...trace.SpanEndOption) {
	s.data.mu.Lock()
	s.data.EndConfig = spanConfigFromEnd(options...)
	s.data.ended = true
	isRoot := !s.data.isChild
	s.data.mu.Unlock()

	if isRoot {
		if err := s.provider.rec.write(s.data); err != nil {
			s.Span.RecordError(err)
		}
	}
	s.Span.End(options...)
}

func (s *recordingSpan) AddEvent(name string, options ...trace.EventOption) {
	s.data.mu.Lock()
	s.data.Events = append(s.data.Events, Event{Name: name, Attributes: eventAttrs(options...)})
	s.data.mu.Unlock()

	s.Span.AddEvent(name, options...)
}

func (s *recordingSpan) RecordError(err error, options ...trace.EventOption) {
	s.data.mu.Lock()
	s.data.Errors = append(s.data.Errors, errorFrom(err, options...))
	s.data.mu.Unlock()

	s.Span.RecordError(err, options...)
}

func (s *recordingSpan) SetStatus(code codes.Code, description string) {
	s.data.mu.Lock()
	s.data.StatusChanges = append(s.data.StatusChanges, statusFrom(code, description))
	s.data.mu.Unlock()

	s.Span.SetStatus(code, description)
}

func (s *recordingSpan) SetName(name string) {
	s.data.mu.Lock()
	s.data.NameChanges = append(s.data.NameChanges, name)
	s.data.mu.Unlock()

	s.Span.SetName(name)
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.data.mu.Lock()
	s.data.Attributes = attrsInto(s.data.Attributes, kv)
	s.data.mu.Unlock()

	s.Span.SetAttributes(kv...)
}

func (s *recordingSpan) TracerProvider() trace.TracerProvider { return s.provider }

type spanInfoCtxKeyStruct struct{}

//nolint:gochecknoglobals
var spanInfoCtxKey = spanInfoCtxKeyStruct{}

func withSpanInfo(ctx context.Context, s *SpanInfo) context.Context {
	return context.WithValue(ctx, spanInfoCtxKey, s)
}

func getSpanInfo(ctx context.Context) *SpanInfo {
	s, _ := ctx.Value(spanInfoCtxKey).(*SpanInfo)
	return s
}
