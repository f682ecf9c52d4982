// Package grpc instruments the completion of unary gRPC client calls.
//
// The listener gRPC uses to complete the future of a unary call
// (io.grpc.stub.ClientCalls$UnaryStreamToFuture) is enhanced, and its
// onClose method, which receives the final status of the call, is
// intercepted. No constructor is enhanced.
package grpc

import (
	"context"
	"fmt"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/luxas/deklarative/instrument/tag"
	"github.com/luxas/deklarative/instrument/tracing"
	"go.uber.org/multierr"
)

const (
	// PluginName is the name of the definition.
	PluginName = "grpc-unary-client-call-listener"
	// EnhanceClass is the enhanced listener type.
	EnhanceClass = "io.grpc.stub.ClientCalls$UnaryStreamToFuture"
	// EnhanceMethod is the intercepted method of EnhanceClass.
	EnhanceMethod = "onClose"

	// OnCloseInterceptorRef refers to OnCloseInterceptor.
	OnCloseInterceptorRef interceptor.Ref = "org.skywalking.apm.plugin.grpc.v1.UnaryClientOnCloseInterceptor"

	component = "gRPC"
	statusOK  = "OK"
)

//nolint:gochecknoglobals
var statusCode = tag.StringTag{Tag: mustDeclare("rpc.status_code", tag.KindString)}

func mustDeclare(name string, kind tag.Kind) *tag.Tag {
	t, err := tag.Default.Declare(name, kind)
	if err != nil {
		panic(err)
	}
	return t
}

// Definition returns the plugin definition.
func Definition() *plugin.Definition {
	return plugin.Define(PluginName, match.ByName(EnhanceClass)).
		Methods(plugin.Method(match.Named(EnhanceMethod), OnCloseInterceptorRef)).
		MustBuild()
}

// Register registers the interceptors of the definition with r.
func Register(r *interceptor.Registry) error {
	return multierr.Combine(
		r.Register(OnCloseInterceptorRef, OnCloseInterceptor{}),
	)
}

// Status is the final status of a call, the first argument of onClose.
type Status interface {
	// Code is the canonical name of the status code, like "OK" or
	// "UNAVAILABLE".
	Code() string
	Description() string
}

// NewStatus returns a Status.
func NewStatus(code, description string) Status { return status{code, description} }

type status struct{ code, description string }

func (s status) Code() string        { return s.code }
func (s status) Description() string { return s.description }

// StatusError is the error recorded for a call that didn't end with OK.
type StatusError struct {
	Code        string
	Description string
}

func (e *StatusError) Error() string {
	if len(e.Description) == 0 {
		return "rpc error: code = " + e.Code
	}
	return fmt.Sprintf("rpc error: code = %s desc = %s", e.Code, e.Description)
}

// OnCloseInterceptor records a client span for the completion of a call:
// tagged with the gRPC component, the RPC framework layer and the status
// code, and marked as failed unless the status is OK.
type OnCloseInterceptor struct{}

var _ interceptor.MethodInterceptor = OnCloseInterceptor{}

// BeforeMethod starts the span and records the status.
func (OnCloseInterceptor) BeforeMethod(ctx context.Context, inv *interceptor.Invocation) context.Context {
	ctx, span, log := tracing.Tracer().
		WithLayer(tag.LayerRPCFramework).
		WithSpanKind(tag.SpanKindClient).
		WithTag(tag.Component.Tag, component).
		Trace(ctx, component+"/"+EnhanceMethod)

	st, ok := inv.Arguments().At(0).(Status)
	if !ok {
		log.V(1).Info("onClose called without a status", "argument", fmt.Sprintf("%T", inv.Arguments().At(0)))
		return ctx
	}
	if err := statusCode.Set(span, st.Code()); err != nil {
		log.Error(err, "couldn't record status code")
	}
	if st.Code() != statusOK {
		tracing.DefaultErrRegisterFunc(&StatusError{Code: st.Code(), Description: st.Description()}, span, log)
	}
	return ctx
}

// AfterMethod ends the span, recording an error returned by onClose.
func (OnCloseInterceptor) AfterMethod(ctx context.Context, _ *interceptor.Invocation, ret interface{}, err error) (interface{}, error) {
	span := tracing.SpanFromContext(ctx)
	tracing.DefaultErrRegisterFunc(err, span, tracing.LoggerFromContext(ctx))
	span.End()
	return ret, err
}
