// Package interceptor defines the code that runs at an enhanced call site,
// and how it is referred to from plugin definitions.
//
// Definitions never hold interceptors directly. They hold a Ref, which is
// resolved against a Registry when a type is enhanced, so that a definition
// can be declared before (or without) the interceptor code being available.
package interceptor

import (
	"context"
	"sync"
)

// Ref is the stable name of an interceptor implementation, for example
// "org.skywalking.apm.plugin.grpc.v1.UnaryClientOnCloseInterceptor".
type Ref string

func (r Ref) String() string { return string(r) }

// Kind tells which contract an interceptor implements.
type Kind int

const (
	// KindConstructor is implemented by ConstructorInterceptor.
	KindConstructor Kind = 1 + iota
	// KindMethod is implemented by MethodInterceptor.
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindConstructor:
		return "constructor"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Instance is an enhanced object. Interceptors can't add fields to the
// types they enhance, so every enhanced object gets one dynamic field
// instead, which constructor interceptors usually fill in for the method
// interceptors to read.
type Instance interface {
	// Target returns the underlying object.
	Target() interface{}
	DynamicField() interface{}
	SetDynamicField(v interface{})
}

// NewInstance wraps target as an Instance with an empty dynamic field.
func NewInstance(target interface{}) Instance { return &object{target: target} }

type object struct {
	target interface{}

	mu    sync.RWMutex
	field interface{}
}

func (o *object) Target() interface{} { return o.target }

func (o *object) DynamicField() interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.field
}

func (o *object) SetDynamicField(v interface{}) {
	o.mu.Lock()
	o.field = v
	o.mu.Unlock()
}

// ConstructorInterceptor observes a constructed instance and the arguments
// it was constructed with. It runs after the original constructor, and it
// can't replace the constructor arguments.
type ConstructorInterceptor interface {
	OnConstruct(ctx context.Context, inst Instance, args Arguments)
}

// MethodInterceptor surrounds an enhanced method.
//
// BeforeMethod runs before the original method and may return a derived
// context (for example carrying a span) which is passed on to the original
// method and to AfterMethod. If it calls inv.DefineReturnValue, the original
// method is not called.
//
// AfterMethod gets the return value and error of the call, and returns the
// ones the caller sees.
type MethodInterceptor interface {
	BeforeMethod(ctx context.Context, inv *Invocation) context.Context
	AfterMethod(ctx context.Context, inv *Invocation, ret interface{}, err error) (interface{}, error)
}

// ConstructorFunc adapts a function to a ConstructorInterceptor.
type ConstructorFunc func(ctx context.Context, inst Instance, args Arguments)

// OnConstruct implements ConstructorInterceptor.
func (f ConstructorFunc) OnConstruct(ctx context.Context, inst Instance, args Arguments) {
	f(ctx, inst, args)
}

// MethodFuncs is a MethodInterceptor built from optional functions. A nil
// Before leaves the context unchanged; a nil After passes the result
// through.
type MethodFuncs struct {
	Before func(ctx context.Context, inv *Invocation) context.Context
	After  func(ctx context.Context, inv *Invocation, ret interface{}, err error) (interface{}, error)
}

// BeforeMethod implements MethodInterceptor.
func (f MethodFuncs) BeforeMethod(ctx context.Context, inv *Invocation) context.Context {
	if f.Before == nil {
		return ctx
	}
	return f.Before(ctx, inv)
}

// AfterMethod implements MethodInterceptor.
func (f MethodFuncs) AfterMethod(ctx context.Context, inv *Invocation, ret interface{}, err error) (interface{}, error) {
	if f.After == nil {
		return ret, err
	}
	return f.After(ctx, inv, ret, err)
}

var (
	_ ConstructorInterceptor = ConstructorFunc(nil)
	_ MethodInterceptor      = MethodFuncs{}
)
