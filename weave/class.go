package weave

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/internal/permit"
	"github.com/luxas/deklarative/instrument/match"
)

// ErrNilMember is returned by Construct and Invoke for a nil member.
//nolint:gochecknoglobals
var ErrNilMember = errors.New("member description must not be nil")

// ConstructorFunc is the original constructor of an enhanced type.
type ConstructorFunc func(args ...interface{}) (interface{}, error)

// MethodFunc is the original code of an enhanced method. It gets the
// context returned by the last BeforeMethod, and the possibly replaced
// arguments.
type MethodFunc func(ctx context.Context, args ...interface{}) (interface{}, error)

// Class is an enhanced type. Its bindings are fixed when it is created by
// Engine.Enhance, and it is safe for concurrent use.
type Class struct {
	typ     *match.TypeDescription
	engine  *Engine
	ctors   map[string][]boundConstructor
	methods map[string][]boundMethod
}

type boundConstructor struct {
	Binding
	impl interceptor.ConstructorInterceptor
}

type boundMethod struct {
	Binding
	impl interceptor.MethodInterceptor
}

func newClass(t *match.TypeDescription, e *Engine) *Class {
	return &Class{
		typ:     t,
		engine:  e,
		ctors:   make(map[string][]boundConstructor),
		methods: make(map[string][]boundMethod),
	}
}

func (c *Class) bind(registry *interceptor.Registry, b Binding) error {
	key := b.Member.Signature()
	switch b.Kind {
	case interceptor.KindConstructor:
		impl, err := registry.Constructor(b.Interceptor)
		if err != nil {
			return err
		}
		c.ctors[key] = append(c.ctors[key], boundConstructor{b, impl})
	case interceptor.KindMethod:
		impl, err := registry.Method(b.Interceptor)
		if err != nil {
			return err
		}
		c.methods[key] = append(c.methods[key], boundMethod{b, impl})
	default:
		return fmt.Errorf("unknown binding kind %d", int(b.Kind))
	}
	return nil
}

// Type returns the description of the enhanced type.
func (c *Class) Type() *match.TypeDescription { return c.typ }

// Enhanced tells whether any member got an interceptor bound.
func (c *Class) Enhanced() bool { return len(c.ctors) != 0 || len(c.methods) != 0 }

// Interceptors returns the interceptors bound to m, in the order they run
// before the original code.
func (c *Class) Interceptors(m *match.MemberDescription) []interceptor.Ref {
	if m == nil {
		return nil
	}
	var refs []interceptor.Ref
	if m.IsConstructor() {
		for _, b := range c.ctors[m.Signature()] {
			refs = append(refs, b.Interceptor)
		}
		return refs
	}
	for _, b := range c.methods[m.Signature()] {
		refs = append(refs, b.Interceptor)
	}
	return refs
}

// Construct runs the original constructor with args, wraps the result as
// an interceptor.Instance, and passes it to every constructor interceptor
// bound to ctor. If the original constructor fails, no interceptor runs.
func (c *Class) Construct(ctx context.Context, ctor *match.MemberDescription, original ConstructorFunc, args ...interface{}) (interceptor.Instance, error) {
	if ctor == nil {
		return nil, ErrNilMember
	}
	target, err := original(args...)
	if err != nil {
		return nil, err
	}
	inst := interceptor.NewInstance(target)
	for _, b := range c.ctors[ctor.Signature()] {
		b := b
		c.guard(b.Binding, "OnConstruct", func() {
			b.impl.OnConstruct(ctx, inst, interceptor.NewArguments(args...))
		})
	}
	return inst, nil
}

// Invoke calls method on inst through its bound interceptors.
//
// BeforeMethod runs for every interceptor in binding order. Unless one of
// them defined a return value, the original method is then called with the
// current arguments. Finally AfterMethod runs in reverse order, each one
// getting the context its own BeforeMethod returned, and the result of the
// previous step.
//
// Every interceptor sees the call through the argument-mutation permission
// of its own binding. A panicking interceptor is skipped: the context,
// return value and error stay what they were before it ran.
func (c *Class) Invoke(ctx context.Context, inst interceptor.Instance, method *match.MemberDescription, original MethodFunc, args ...interface{}) (interface{}, error) {
	if method == nil {
		return nil, ErrNilMember
	}
	bound := c.methods[method.Signature()]
	if len(bound) == 0 {
		return original(ctx, args...)
	}

	inv := interceptor.NewInvocation(inst, method, args...)
	ctxs := make([]context.Context, len(bound))
	for i, b := range bound {
		b, view := b, inv.View(permit.Grant(), b.OverrideArgs)
		c.guard(b.Binding, "BeforeMethod", func() {
			if newCtx := b.impl.BeforeMethod(ctx, view); newCtx != nil {
				ctx = newCtx
			}
		})
		ctxs[i] = ctx
	}

	var ret interface{}
	var err error
	if inv.ReturnValueDefined() {
		ret, err = inv.ReturnValue()
	} else {
		ret, err = original(ctx, inv.Arguments().Values()...)
	}

	for i := len(bound) - 1; i >= 0; i-- {
		b, view := bound[i], inv.View(permit.Grant(), bound[i].OverrideArgs)
		c.guard(b.Binding, "AfterMethod", func() {
			ret, err = b.impl.AfterMethod(ctxs[i], view, ret, err)
		})
	}
	return ret, err
}

// guard runs hook, recovering and reporting a panic. Assignments hook
// makes before panicking are kept, so hooks must only assign on return.
func (c *Class) guard(b Binding, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.engine.log.Error(fmt.Errorf("panic: %v", r), "interceptor panicked",
				"type", c.typ.Name, "member", b.Member.Signature(), "interceptor", b.Interceptor, "hook", hook)
			c.engine.metrics.panics.WithLabelValues(string(b.Interceptor)).Inc()
		}
	}()
	fn()
}
