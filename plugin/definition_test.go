package plugin

import (
	"errors"
	"testing"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

const (
	setCtorRef  interceptor.Ref = "example.SetCtorInterceptor"
	hostCtorRef interceptor.Ref = "example.HostCtorInterceptor"
	anyCtorRef  interceptor.Ref = "example.AnyCtorInterceptor"
	onCloseRef  interceptor.Ref = "example.OnCloseInterceptor"
	anyRef      interceptor.Ref = "example.AnyMethodInterceptor"
)

func TestResolveConstructor_FirstMatchWins(t *testing.T) {
	d := Define("cluster", match.ByName("redis.clients.jedis.JedisCluster")).
		Constructors(
			Constructor(match.TakesArgument(0, match.Type("java.util.Set")), setCtorRef),
			Constructor(match.TakesArgumentWithType(0, "redis.clients.jedis.HostAndPort"), hostCtorRef),
			// Overlaps with both of the above, and is only used when they don't match.
			Constructor(match.AnyMember(), anyCtorRef),
		).MustBuild()

	tests := []struct {
		name string
		ctor *match.MemberDescription
		want interceptor.Ref
	}{
		{"set", match.Constructor(match.MustParseTypeRef("java.util.Set<redis.clients.jedis.HostAndPort>")), setCtorRef},
		{"host", match.Constructor(match.Type("redis.clients.jedis.HostAndPort")), hostCtorRef},
		{"host and timeout", match.Constructor(match.Type("redis.clients.jedis.HostAndPort"), match.Type("int")), hostCtorRef},
		{"fallback", match.Constructor(), anyCtorRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := d.ResolveConstructor(tt.ctor)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Interceptor())
		})
	}

	_, ok := d.ResolveConstructor(match.Method("get", match.Type("java.lang.String")))
	assert.False(t, ok, "methods never resolve to constructor points")
}

func TestResolveMethod_FirstMatchWins(t *testing.T) {
	d := Define("listener", match.ByName("io.grpc.stub.ClientCalls$UnaryStreamToFuture")).
		Methods(
			Method(match.Named("onClose"), onCloseRef),
			Method(match.AnyMember(), anyRef).WithOverrideArgs(),
		).MustBuild()

	p, ok := d.ResolveMethod(match.Method("onClose"))
	require.True(t, ok)
	assert.Equal(t, onCloseRef, p.Interceptor())
	assert.False(t, p.OverrideArgs())

	p, ok = d.ResolveMethod(match.Method("onMessage"))
	require.True(t, ok)
	assert.Equal(t, anyRef, p.Interceptor())
	assert.True(t, p.OverrideArgs())

	_, ok = d.ResolveMethod(match.Constructor())
	assert.False(t, ok, "constructors never resolve to method points")
}

func TestDefinition_NoConstructorPoints(t *testing.T) {
	d := Define("listener", match.ByName("io.grpc.stub.ClientCalls$UnaryStreamToFuture")).
		Methods(Method(match.Named("onClose"), onCloseRef)).
		MustBuild()

	assert.Empty(t, d.ConstructorPoints())
	for _, ctor := range []*match.MemberDescription{
		match.Constructor(),
		match.Constructor(match.Type("io.grpc.ClientCall")),
	} {
		_, ok := d.ResolveConstructor(ctor)
		assert.False(t, ok)
	}
}

func TestDefinition_OverrideArgsPreserved(t *testing.T) {
	point := Method(match.Named("onClose"), onCloseRef)
	d := Define("listener", match.ByName("io.grpc.stub.ClientCalls$UnaryStreamToFuture")).
		Methods(point).MustBuild()

	points := d.MethodPoints()
	require.Len(t, points, 1)
	assert.False(t, points[0].OverrideArgs())
	assert.Equal(t, onCloseRef, points[0].Interceptor())

	// WithOverrideArgs returns a copy.
	assert.True(t, point.WithOverrideArgs().OverrideArgs())
	assert.False(t, point.OverrideArgs())
	assert.False(t, d.MethodPoints()[0].OverrideArgs())
}

func TestDefinition_Immutable(t *testing.T) {
	b := Define("listener", match.ByName("a.B")).Methods(Method(match.Named("onClose"), onCloseRef))
	d := b.MustBuild()

	// Building further doesn't change already built definitions.
	b.Methods(Method(match.Named("onMessage"), anyRef))
	assert.Len(t, d.MethodPoints(), 1)

	// Neither does changing the returned slices.
	points := d.MethodPoints()
	points[0] = Method(match.AnyMember(), anyRef)
	assert.Equal(t, onCloseRef, d.MethodPoints()[0].Interceptor())
}

func TestDefinition_MatchesClass(t *testing.T) {
	d := Define("listener", match.ByName("io.grpc.stub.ClientCalls$UnaryStreamToFuture")).MustBuild()
	for _, tt := range []struct {
		name string
		want bool
	}{
		{"io.grpc.stub.ClientCalls$UnaryStreamToFuture", true},
		{"io.grpc.stub.ClientCalls$StreamObserver", false},
	} {
		assert.Equal(t, tt.want, d.MatchesClass(&match.TypeDescription{Name: tt.name}), tt.name)
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := Define("", nil).
		Constructors(
			Constructor(match.TakesArgument(-1, match.Type("java.util.Set")), setCtorRef),
			Constructor(match.AnyMember(), ""),
		).
		Methods(
			Method(nil, onCloseRef),
			Method(match.Named("onClose"), onCloseRef),
		).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDefinition)
	assert.ErrorIs(t, err, match.ErrInvalidMatcher)

	errs := multierr.Errors(err)
	wheres := make([]string, 0, len(errs))
	for _, e := range errs {
		var defErr *DefinitionError
		require.True(t, errors.As(e, &defErr))
		wheres = append(wheres, defErr.Where)
	}
	assert.Equal(t, []string{"name", "class matcher", "constructors[0]", "constructors[1]", "methods[0]"}, wheres)

	assert.Panics(t, func() { Define("x", nil).MustBuild() })
}
