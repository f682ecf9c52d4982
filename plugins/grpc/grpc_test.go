package grpc

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/luxas/deklarative/instrument/tracing"
	"github.com/luxas/deklarative/instrument/tracing/traceyaml"
	"github.com/luxas/deklarative/instrument/weave"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenerType() *match.TypeDescription {
	return &match.TypeDescription{
		Name: EnhanceClass,
		Constructors: []*match.MemberDescription{
			match.Constructor(match.Type("io.grpc.ClientCall")),
		},
		Methods: []*match.MemberDescription{
			match.Method("onHeaders", match.Type("io.grpc.Metadata")),
			match.Method(EnhanceMethod, match.Type("io.grpc.Status"), match.Type("io.grpc.Metadata")),
		},
	}
}

func TestDefinition(t *testing.T) {
	def := Definition()
	typ := listenerType()

	assert.Equal(t, PluginName, def.Name())
	assert.True(t, def.MatchesClass(typ))
	assert.False(t, def.MatchesClass(&match.TypeDescription{Name: "io.grpc.stub.ClientCalls"}))
	assert.Empty(t, def.ConstructorPoints())

	_, ok := def.ResolveConstructor(typ.Constructors[0])
	assert.False(t, ok)
	_, ok = def.ResolveMethod(typ.Methods[0])
	assert.False(t, ok)

	point, ok := def.ResolveMethod(typ.Methods[1])
	require.True(t, ok)
	assert.Equal(t, OnCloseInterceptorRef, point.Interceptor())
	assert.False(t, point.OverrideArgs())
}

func enhance(t *testing.T) (*weave.Class, context.Context, *traceyaml.Recorder) {
	t.Helper()
	registry := interceptor.NewRegistry()
	require.NoError(t, Register(registry))
	e, err := weave.New([]*plugin.Definition{Definition()}, registry,
		weave.WithRegisterer(prometheus.NewRegistry()), weave.WithLogger(logr.Discard()))
	require.NoError(t, err)
	c, err := e.Enhance(listenerType())
	require.NoError(t, err)

	rec := traceyaml.NewRecorder(nil)
	tp, err := tracing.Provider().Synchronous().Record(rec).Build()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, tp.Shutdown(context.Background())) })
	return c, tracing.Context().WithTracerProvider(tp).Build(), rec
}

func onClose(t *testing.T, c *weave.Class, ctx context.Context, st Status) {
	t.Helper()
	_, err := c.Invoke(ctx, interceptor.NewInstance(nil), listenerType().Methods[1],
		func(context.Context, ...interface{}) (interface{}, error) { return nil, nil },
		st, nil)
	require.NoError(t, err)
}

func attr(t *testing.T, span *traceyaml.SpanInfo, key string) interface{} {
	t.Helper()
	a, ok := span.Attribute(key)
	if !ok {
		return nil
	}
	return a.Value
}

func TestOnCloseInterceptor(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		wantError  interface{}
		wantStatus []traceyaml.Status
	}{
		{
			name:   "ok",
			status: NewStatus("OK", ""),
		},
		{
			name:       "unavailable",
			status:     NewStatus("UNAVAILABLE", "connection refused"),
			wantError:  true,
			wantStatus: []traceyaml.Status{{Code: "Error", Description: "rpc error: code = UNAVAILABLE desc = connection refused"}},
		},
	}
	for _, rt := range tests {
		t.Run(rt.name, func(t *testing.T) {
			c, ctx, rec := enhance(t)
			onClose(t, c, ctx, rt.status)

			span := rec.Find("gRPC/onClose")
			require.NotNil(t, span)
			assert.True(t, span.Ended())
			assert.Equal(t, "client", span.StartConfig.SpanKind)
			assert.Equal(t, "gRPC", attr(t, span, "component"))
			assert.Equal(t, "rpc", attr(t, span, "span.layer"))
			assert.Equal(t, "client", attr(t, span, "span.kind"))
			assert.Equal(t, rt.status.Code(), attr(t, span, "rpc.status_code"))
			assert.Equal(t, rt.wantError, attr(t, span, "error"))
			assert.Equal(t, rt.wantStatus, span.StatusChanges)
		})
	}
}

func TestOnCloseInterceptor_NoStatus(t *testing.T) {
	c, ctx, rec := enhance(t)
	_, err := c.Invoke(ctx, interceptor.NewInstance(nil), listenerType().Methods[1],
		func(context.Context, ...interface{}) (interface{}, error) { return nil, nil },
		"not a status", nil)
	require.NoError(t, err)

	span := rec.Find("gRPC/onClose")
	require.NotNil(t, span)
	assert.True(t, span.Ended())
	assert.Nil(t, attr(t, span, "rpc.status_code"))
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, "rpc error: code = CANCELLED", (&StatusError{Code: "CANCELLED"}).Error())
}
