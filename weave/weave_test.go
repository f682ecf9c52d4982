package weave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr"
	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/interceptor/interceptorfakes"
	"github.com/luxas/deklarative/instrument/internal/permit"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jedisCluster = "redis.clients.jedis.JedisCluster"
	hostAndPort  = "redis.clients.jedis.HostAndPort"

	setCtorRef  interceptor.Ref = "test.SetConstructorInterceptor"
	hostCtorRef interceptor.Ref = "test.HostConstructorInterceptor"
	methodRef   interceptor.Ref = "test.MethodInterceptor"
)

func jedisType() *match.TypeDescription {
	return &match.TypeDescription{
		Name: jedisCluster,
		Constructors: []*match.MemberDescription{
			match.Constructor(match.MustParseTypeRef("java.util.Set<" + hostAndPort + ">")),
			match.Constructor(match.Type(hostAndPort)),
			match.Constructor(match.Type(hostAndPort), match.Type("int")),
		},
		Methods: []*match.MemberDescription{
			match.Method("get", match.Type("java.lang.String")),
			match.Method("close"),
		},
	}
}

func jedisDefinition() *plugin.Definition {
	return plugin.Define("jedis", match.ByName(jedisCluster)).
		Constructors(
			plugin.Constructor(match.TakesArgument(0, match.Type("java.util.Set")), setCtorRef),
			plugin.Constructor(match.TakesArgumentWithType(0, hostAndPort), hostCtorRef),
		).
		Methods(plugin.Method(match.Named("get"), methodRef)).
		MustBuild()
}

func passthrough(_ context.Context, _ *interceptor.Invocation, ret interface{}, err error) (interface{}, error) {
	return ret, err
}

func newEngine(t *testing.T, defs []*plugin.Definition, registry *interceptor.Registry) (*Engine, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	e, err := New(defs, registry, WithRegisterer(reg), WithLogger(logr.Discard()))
	require.NoError(t, err)
	return e, reg
}

func TestEngine_Plan(t *testing.T) {
	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, interceptor.NewRegistry())
	typ := jedisType()

	p := e.Plan(typ)
	assert.Equal(t, jedisCluster, p.Type)
	assert.Equal(t, []string{"jedis"}, p.Plugins)

	var got []string
	for _, b := range p.Bindings {
		got = append(got, b.String())
	}
	assert.Equal(t, []string{
		"constructor <init>(java.util.Set<redis.clients.jedis.HostAndPort>) -> test.SetConstructorInterceptor (jedis)",
		"constructor <init>(redis.clients.jedis.HostAndPort) -> test.HostConstructorInterceptor (jedis)",
		"constructor <init>(redis.clients.jedis.HostAndPort,int) -> test.HostConstructorInterceptor (jedis)",
		"method get(java.lang.String) -> test.MethodInterceptor (jedis)",
	}, got)

	assert.Len(t, p.For(typ.Constructors[1]), 1)
	assert.Empty(t, p.For(typ.Methods[1]))
	assert.True(t, e.Plan(&match.TypeDescription{Name: "other.Type"}).Empty())
	assert.True(t, e.Plan(nil).Empty())
}

func TestEngine_Find(t *testing.T) {
	byPrefix := plugin.Define("prefix", match.ByPrefix("redis.clients.")).MustBuild()
	byName := jedisDefinition()
	other := plugin.Define("other", match.ByNames("a.B", "a.B")).MustBuild()
	e, _ := newEngine(t, []*plugin.Definition{byPrefix, other, byName}, interceptor.NewRegistry())

	assert.Equal(t, []*plugin.Definition{byPrefix, byName}, e.Find(jedisType()))
	assert.Equal(t, []*plugin.Definition{other}, e.Find(&match.TypeDescription{Name: "a.B"}))
	assert.Empty(t, e.Find(&match.TypeDescription{Name: "c.D"}))
	assert.Nil(t, e.Find(nil))
}

func TestNew_Errors(t *testing.T) {
	def := jedisDefinition()
	_, err := New([]*plugin.Definition{def, nil, def}, interceptor.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitions[1] is nil")
	assert.Contains(t, err.Error(), `duplicate plugin name "jedis"`)

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestNew_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(nil, interceptor.NewRegistry(), WithRegisterer(reg))
	require.NoError(t, err)
	_, err = New(nil, interceptor.NewRegistry(), WithRegisterer(reg))
	assert.NoError(t, err)
}

func TestEngine_EnhanceUnresolvedIsolation(t *testing.T) {
	registry := interceptor.NewRegistry()
	hostCtor := &interceptorfakes.FakeConstructorInterceptor{}
	method := &interceptorfakes.FakeMethodInterceptor{}
	method.AfterMethodCalls(passthrough)
	registry.MustRegister(hostCtorRef, hostCtor)
	registry.MustRegister(methodRef, method)
	// setCtorRef is not registered.

	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, registry)
	typ := jedisType()

	c, err := e.Enhance(typ)
	require.Error(t, err)
	require.NotNil(t, c)
	assert.ErrorIs(t, err, interceptor.ErrUnresolved)
	assert.ErrorIs(t, err, ErrBinding)
	var be *BindingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, setCtorRef, be.Binding.Interceptor)

	assert.True(t, c.Enhanced())
	assert.Empty(t, c.Interceptors(typ.Constructors[0]))
	assert.Equal(t, []interceptor.Ref{hostCtorRef}, c.Interceptors(typ.Constructors[1]))
	assert.Equal(t, []interceptor.Ref{methodRef}, c.Interceptors(typ.Methods[0]))

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.unresolved.WithLabelValues("jedis")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.enhanced.WithLabelValues("jedis", "constructor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.enhanced.WithLabelValues("jedis", "method")))

	// The unresolved constructor still constructs, without interceptors.
	inst, err := c.Construct(context.Background(), typ.Constructors[0], func(args ...interface{}) (interface{}, error) {
		return "cluster", nil
	}, []string{"localhost:7000"})
	require.NoError(t, err)
	assert.Equal(t, "cluster", inst.Target())
	assert.Equal(t, 0, hostCtor.OnConstructCallCount())
}

func TestEngine_EnhanceWrongKind(t *testing.T) {
	registry := interceptor.NewRegistry()
	// Registered, but as a method interceptor only.
	registry.MustRegister(setCtorRef, &interceptorfakes.FakeMethodInterceptor{})
	registry.MustRegister(hostCtorRef, &interceptorfakes.FakeConstructorInterceptor{})
	registry.MustRegister(methodRef, &interceptorfakes.FakeMethodInterceptor{})

	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, registry)
	_, err := e.Enhance(jedisType())

	var ue *interceptor.UnresolvedError
	require.ErrorAs(t, err, &ue)
	assert.True(t, ue.Registered)
	assert.Equal(t, interceptor.KindConstructor, ue.Kind)
}

func TestClass_Construct(t *testing.T) {
	registry := interceptor.NewRegistry()
	setCtor := &interceptorfakes.FakeConstructorInterceptor{}
	setCtor.OnConstructCalls(func(_ context.Context, inst interceptor.Instance, args interceptor.Arguments) {
		inst.SetDynamicField(args.At(0))
	})
	registry.MustRegister(setCtorRef, setCtor)
	registry.MustRegister(hostCtorRef, &interceptorfakes.FakeConstructorInterceptor{})
	registry.MustRegister(methodRef, &interceptorfakes.FakeMethodInterceptor{})

	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, registry)
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.NoError(t, err)

	nodes := []string{"a:1", "b:2"}
	inst, err := c.Construct(context.Background(), typ.Constructors[0], func(args ...interface{}) (interface{}, error) {
		return "cluster", nil
	}, nodes)
	require.NoError(t, err)
	assert.Equal(t, nodes, inst.DynamicField())
	require.Equal(t, 1, setCtor.OnConstructCallCount())
	_, gotInst, gotArgs := setCtor.OnConstructArgsForCall(0)
	assert.Same(t, inst, gotInst)
	assert.Equal(t, 1, gotArgs.Len())

	// A failing constructor doesn't reach the interceptors.
	ctorErr := errors.New("connection refused") //nolint:goerr113
	_, err = c.Construct(context.Background(), typ.Constructors[0], func(args ...interface{}) (interface{}, error) {
		return nil, ctorErr
	}, nodes)
	assert.ErrorIs(t, err, ctorErr)
	assert.Equal(t, 1, setCtor.OnConstructCallCount())
}

type ctxKey struct{}

// recorder returns a MethodInterceptor appending its hooks to calls.
func recorder(name string, mu *sync.Mutex, calls *[]string) interceptor.MethodInterceptor {
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		*calls = append(*calls, s)
	}
	return interceptor.MethodFuncs{
		Before: func(ctx context.Context, inv *interceptor.Invocation) context.Context {
			record("before " + name)
			return context.WithValue(ctx, ctxKey{}, name)
		},
		After: func(ctx context.Context, inv *interceptor.Invocation, ret interface{}, err error) (interface{}, error) {
			record("after " + name + " ctx=" + ctx.Value(ctxKey{}).(string))
			return ret.(string) + "+" + name, err
		},
	}
}

func TestClass_InvokeNestsDefinitions(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	registry := interceptor.NewRegistry()
	registry.MustRegister("a", recorder("a", &mu, &calls))
	registry.MustRegister("b", recorder("b", &mu, &calls))

	defA := plugin.Define("a", match.ByName(jedisCluster)).Methods(plugin.Method(match.Named("get"), "a")).MustBuild()
	defB := plugin.Define("b", match.ByPrefix("redis.")).Methods(plugin.Method(match.AnyMember(), "b")).MustBuild()
	e, _ := newEngine(t, []*plugin.Definition{defA, defB}, registry)
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.NoError(t, err)

	ret, err := c.Invoke(context.Background(), interceptor.NewInstance("cluster"), typ.Methods[0],
		func(ctx context.Context, args ...interface{}) (interface{}, error) {
			mu.Lock()
			calls = append(calls, "original ctx="+ctx.Value(ctxKey{}).(string))
			mu.Unlock()
			return "value", nil
		}, "key")
	require.NoError(t, err)
	assert.Equal(t, "value+b+a", ret)
	assert.Equal(t, []string{
		"before a",
		"before b",
		"original ctx=b",
		"after b ctx=b",
		"after a ctx=a",
	}, calls)
}

func TestClass_InvokeArgumentContract(t *testing.T) {
	readOnly := &interceptorfakes.FakeMethodInterceptor{}
	var readOnlyErr error
	readOnly.BeforeMethodCalls(func(ctx context.Context, inv *interceptor.Invocation) context.Context {
		readOnlyErr = inv.SetArgument(0, "ignored")
		return ctx
	})
	readOnly.AfterMethodCalls(passthrough)

	override := &interceptorfakes.FakeMethodInterceptor{}
	override.BeforeMethodCalls(func(ctx context.Context, inv *interceptor.Invocation) context.Context {
		if err := inv.SetArgument(0, "prefixed:"+inv.Arguments().At(0).(string)); err != nil {
			t.Error(err)
		}
		return ctx
	})
	override.AfterMethodCalls(passthrough)

	registry := interceptor.NewRegistry()
	registry.MustRegister("readonly", readOnly)
	registry.MustRegister("override", override)
	defs := []*plugin.Definition{
		plugin.Define("readonly", match.ByName(jedisCluster)).
			Methods(plugin.Method(match.Named("get"), "readonly")).MustBuild(),
		plugin.Define("override", match.ByName(jedisCluster)).
			Methods(plugin.Method(match.Named("get"), "override").WithOverrideArgs()).MustBuild(),
	}
	e, _ := newEngine(t, defs, registry)
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.NoError(t, err)

	var gotArgs []interface{}
	_, err = c.Invoke(context.Background(), interceptor.NewInstance(nil), typ.Methods[0],
		func(_ context.Context, args ...interface{}) (interface{}, error) {
			gotArgs = args
			return nil, nil
		}, "key")
	require.NoError(t, err)

	assert.ErrorIs(t, readOnlyErr, interceptor.ErrArgumentsReadOnly)
	assert.Equal(t, []interface{}{"prefixed:key"}, gotArgs)
	_, inv := readOnly.BeforeMethodArgsForCall(0)
	assert.False(t, inv.OverrideArgs())
	_, inv = override.BeforeMethodArgsForCall(0)
	assert.True(t, inv.OverrideArgs())
}

func TestClass_InvokeDefinedReturnValue(t *testing.T) {
	cache := &interceptorfakes.FakeMethodInterceptor{}
	cache.BeforeMethodCalls(func(ctx context.Context, inv *interceptor.Invocation) context.Context {
		inv.DefineReturnValue("cached", nil)
		return ctx
	})
	cache.AfterMethodCalls(passthrough)

	registry := interceptor.NewRegistry()
	registry.MustRegister(methodRef, cache)
	def := plugin.Define("cache", match.ByName(jedisCluster)).Methods(plugin.Method(match.Named("get"), methodRef)).MustBuild()
	e, _ := newEngine(t, []*plugin.Definition{def}, registry)
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.NoError(t, err)

	called := false
	ret, err := c.Invoke(context.Background(), interceptor.NewInstance(nil), typ.Methods[0],
		func(context.Context, ...interface{}) (interface{}, error) {
			called = true
			return "fresh", nil
		}, "key")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, "cached", ret)
	assert.Equal(t, 1, cache.AfterMethodCallCount())
}

func TestClass_InvokePanicIsolation(t *testing.T) {
	panicky := &interceptorfakes.FakeMethodInterceptor{}
	panicky.BeforeMethodCalls(func(context.Context, *interceptor.Invocation) context.Context { panic("before") })
	panicky.AfterMethodCalls(func(context.Context, *interceptor.Invocation, interface{}, error) (interface{}, error) {
		panic("after")
	})

	// The fake returns a nil context by default, which must not be used.
	healthy := &interceptorfakes.FakeMethodInterceptor{}
	healthy.AfterMethodCalls(passthrough)

	registry := interceptor.NewRegistry()
	registry.MustRegister("panicky", panicky)
	registry.MustRegister("healthy", healthy)
	defs := []*plugin.Definition{
		plugin.Define("panicky", match.ByName(jedisCluster)).Methods(plugin.Method(match.Named("get"), "panicky")).MustBuild(),
		plugin.Define("healthy", match.ByName(jedisCluster)).Methods(plugin.Method(match.Named("get"), "healthy")).MustBuild(),
	}
	e, _ := newEngine(t, defs, registry)
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "caller")
	origErr := errors.New("MOVED") //nolint:goerr113
	var gotCtx context.Context
	var ret interface{}
	require.NotPanics(t, func() {
		ret, err = c.Invoke(ctx, interceptor.NewInstance(nil), typ.Methods[0],
			func(ctx context.Context, _ ...interface{}) (interface{}, error) {
				gotCtx = ctx
				return "value", origErr
			}, "key")
	})
	assert.Equal(t, "value", ret)
	assert.ErrorIs(t, err, origErr)
	require.NotNil(t, gotCtx)
	assert.Equal(t, "caller", gotCtx.Value(ctxKey{}))
	assert.Equal(t, 1, healthy.AfterMethodCallCount())
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.panics.WithLabelValues("panicky")))
}

func TestClass_InvokeUnenhancedMember(t *testing.T) {
	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, interceptor.NewRegistry())
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.Error(t, err)

	ret, err := c.Invoke(context.Background(), interceptor.NewInstance(nil), typ.Methods[1],
		func(context.Context, ...interface{}) (interface{}, error) { return "closed", nil })
	require.NoError(t, err)
	assert.Equal(t, "closed", ret)
	assert.False(t, c.Enhanced())
}

func TestClass_InvokeReadOnlyViewCannotBeRaised(t *testing.T) {
	var viewErr, argsErr error
	registry := interceptor.NewRegistry()
	registry.MustRegister(methodRef, interceptor.MethodFuncs{
		Before: func(ctx context.Context, inv *interceptor.Invocation) context.Context {
			raised := inv.View(permit.Token{}, true)
			viewErr = raised.SetArgument(0, "REPLACED")
			argsErr = raised.SetArguments("REPLACED")
			return ctx
		},
	})
	def := plugin.Define("readonly", match.ByName(jedisCluster)).
		Methods(plugin.Method(match.Named("get"), methodRef)).MustBuild()
	e, _ := newEngine(t, []*plugin.Definition{def}, registry)
	typ := jedisType()
	c, err := e.Enhance(typ)
	require.NoError(t, err)

	var gotArgs []interface{}
	_, err = c.Invoke(context.Background(), interceptor.NewInstance(nil), typ.Methods[0],
		func(_ context.Context, args ...interface{}) (interface{}, error) {
			gotArgs = args
			return nil, nil
		}, "original")
	require.NoError(t, err)
	assert.ErrorIs(t, viewErr, interceptor.ErrArgumentsReadOnly)
	assert.ErrorIs(t, argsErr, interceptor.ErrArgumentsReadOnly)
	assert.Equal(t, []interface{}{"original"}, gotArgs)
}

func TestClass_NilMember(t *testing.T) {
	registry := interceptor.NewRegistry()
	registry.MustRegister(setCtorRef, &interceptorfakes.FakeConstructorInterceptor{})
	registry.MustRegister(hostCtorRef, &interceptorfakes.FakeConstructorInterceptor{})
	registry.MustRegister(methodRef, &interceptorfakes.FakeMethodInterceptor{})
	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, registry)
	c, err := e.Enhance(jedisType())
	require.NoError(t, err)

	assert.Nil(t, c.Interceptors(nil))

	called := false
	_, err = c.Construct(context.Background(), nil, func(...interface{}) (interface{}, error) {
		called = true
		return "cluster", nil
	})
	assert.ErrorIs(t, err, ErrNilMember)
	_, err = c.Invoke(context.Background(), interceptor.NewInstance(nil), nil,
		func(context.Context, ...interface{}) (interface{}, error) {
			called = true
			return nil, nil
		})
	assert.ErrorIs(t, err, ErrNilMember)
	assert.False(t, called)
}

func TestEngine_ConcurrentUse(t *testing.T) {
	const goroutines, calls = 16, 50

	var before, after int64
	registry := interceptor.NewRegistry()
	registry.MustRegister(setCtorRef, interceptor.ConstructorFunc(
		func(_ context.Context, inst interceptor.Instance, args interceptor.Arguments) {
			inst.SetDynamicField(args.At(0))
		}))
	registry.MustRegister(hostCtorRef, interceptor.ConstructorFunc(
		func(context.Context, interceptor.Instance, interceptor.Arguments) {}))
	registry.MustRegister(methodRef, interceptor.MethodFuncs{
		Before: func(ctx context.Context, _ *interceptor.Invocation) context.Context {
			atomic.AddInt64(&before, 1)
			return ctx
		},
		After: func(_ context.Context, _ *interceptor.Invocation, ret interface{}, err error) (interface{}, error) {
			atomic.AddInt64(&after, 1)
			return ret, err
		},
	})
	e, _ := newEngine(t, []*plugin.Definition{jedisDefinition()}, registry)
	typ := jedisType()
	shared, err := e.Enhance(typ)
	require.NoError(t, err)
	want := e.Plan(typ).Bindings

	var wg sync.WaitGroup
	errs := make(chan error, goroutines*calls)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				if got := e.Plan(typ).Bindings; len(got) != len(want) {
					errs <- errors.New("plan changed") //nolint:goerr113
				}
				c, err := e.Enhance(typ)
				if err != nil {
					errs <- err
					continue
				}
				for _, class := range []*Class{shared, c} {
					inst, err := class.Construct(context.Background(), typ.Constructors[0],
						func(...interface{}) (interface{}, error) { return "cluster", nil }, "a:1")
					if err != nil {
						errs <- err
						continue
					}
					if _, err := class.Invoke(context.Background(), inst, typ.Methods[0],
						func(context.Context, ...interface{}) (interface{}, error) { return "bar", nil }, "key"); err != nil {
						errs <- err
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	total := int64(goroutines * calls * 2)
	assert.Equal(t, total, atomic.LoadInt64(&before))
	assert.Equal(t, total, atomic.LoadInt64(&after))
	assert.Equal(t, float64(goroutines*calls+1), testutil.ToFloat64(e.metrics.enhanced.WithLabelValues("jedis", "method")))
}
