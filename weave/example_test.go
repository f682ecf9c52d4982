package weave_test

import (
	"context"
	"fmt"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/luxas/deklarative/instrument/weave"
)

func ExampleEngine_Enhance() {
	def := plugin.Define("jedis", match.ByName("redis.clients.jedis.JedisCluster")).
		Constructors(plugin.Constructor(
			match.TakesArgumentWithType(0, "redis.clients.jedis.HostAndPort"),
			"example.ConstructorInterceptor",
		)).
		Methods(plugin.Method(match.NamedOneOf("get", "set"), "example.MethodInterceptor")).
		MustBuild()

	registry := interceptor.NewRegistry()
	registry.MustRegister("example.ConstructorInterceptor", interceptor.ConstructorFunc(
		func(_ context.Context, inst interceptor.Instance, args interceptor.Arguments) {
			inst.SetDynamicField(args.At(0))
		}))
	registry.MustRegister("example.MethodInterceptor", interceptor.MethodFuncs{
		After: func(_ context.Context, inv *interceptor.Invocation, ret interface{}, err error) (interface{}, error) {
			fmt.Printf("%s on %v returned %v\n", inv.Method().Name, inv.Instance().DynamicField(), ret)
			return ret, err
		},
	})

	engine, err := weave.New([]*plugin.Definition{def}, registry)
	if err != nil {
		panic(err)
	}

	cluster := &match.TypeDescription{
		Name: "redis.clients.jedis.JedisCluster",
		Constructors: []*match.MemberDescription{
			match.Constructor(match.Type("redis.clients.jedis.HostAndPort")),
			match.Constructor(match.MustParseTypeRef("java.util.Set<redis.clients.jedis.HostAndPort>")),
		},
		Methods: []*match.MemberDescription{
			match.Method("get", match.Type("java.lang.String")),
			match.Method("close"),
		},
	}
	for _, b := range engine.Plan(cluster).Bindings {
		fmt.Println(b)
	}

	class, err := engine.Enhance(cluster)
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	inst, _ := class.Construct(ctx, cluster.Constructors[0], func(args ...interface{}) (interface{}, error) {
		return "cluster", nil
	}, "localhost:7000")
	_, _ = class.Invoke(ctx, inst, cluster.Methods[0], func(ctx context.Context, args ...interface{}) (interface{}, error) {
		return "bar", nil
	}, "foo")

	// Output:
	// constructor <init>(redis.clients.jedis.HostAndPort) -> example.ConstructorInterceptor (jedis)
	// method get(java.lang.String) -> example.MethodInterceptor (jedis)
	// get on localhost:7000 returned bar
}
