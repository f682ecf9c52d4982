// Package jedis instruments redis.clients.jedis.JedisCluster of Jedis 2.x.
//
// The two cluster constructors record the cluster nodes as the peer of the
// enhanced instance. Every Redis command method then gets a client span in
// the database layer, tagged with the peer and the executed statement.
package jedis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/luxas/deklarative/instrument/interceptor"
	"github.com/luxas/deklarative/instrument/match"
	"github.com/luxas/deklarative/instrument/plugin"
	"github.com/luxas/deklarative/instrument/tag"
	"github.com/luxas/deklarative/instrument/tracing"
	"go.uber.org/multierr"
)

const (
	// PluginName is the name of the definition.
	PluginName = "jedis-cluster"
	// EnhanceClass is the enhanced type.
	EnhanceClass = "redis.clients.jedis.JedisCluster"
	// HostAndPortType is the type of a single cluster node address.
	HostAndPortType = "redis.clients.jedis.HostAndPort"

	// SetConstructorInterceptorRef refers to SetConstructorInterceptor.
	SetConstructorInterceptorRef interceptor.Ref = "org.skywalking.apm.plugin.jedis.v2.JedisClusterConstructorWithListHostAndPortArgInterceptor"
	// HostAndPortConstructorInterceptorRef refers to HostAndPortConstructorInterceptor.
	HostAndPortConstructorInterceptorRef interceptor.Ref = "org.skywalking.apm.plugin.jedis.v2.JedisClusterConstructorWithHostAndPortArgInterceptor"
	// MethodInterceptorRef refers to MethodInterceptor.
	MethodInterceptorRef interceptor.Ref = "org.skywalking.apm.plugin.jedis.v2.JedisMethodInterceptor"

	component = "Redis"
	dbType    = "Redis"
)

// Commands are the names of the JedisCluster methods that execute a Redis
// command.
//
//nolint:gochecknoglobals
var Commands = []string{
	"append", "bitcount", "blpop", "brpop", "decr", "decrBy", "del", "echo",
	"eval", "evalsha", "exists", "expire", "expireAt", "get", "getbit",
	"getrange", "getSet", "hdel", "hexists", "hget", "hgetAll", "hincrBy",
	"hincrByFloat", "hkeys", "hlen", "hmget", "hmset", "hset", "hsetnx",
	"hvals", "incr", "incrBy", "incrByFloat", "lindex", "linsert", "llen",
	"lpop", "lpush", "lpushx", "lrange", "lrem", "lset", "ltrim", "mget",
	"move", "mset", "msetnx", "persist", "pexpire", "pexpireAt", "pfadd",
	"pfcount", "psetex", "pttl", "publish", "rename", "renamenx", "rpop",
	"rpoplpush", "rpush", "rpushx", "sadd", "scard", "sdiff", "set", "setbit",
	"setex", "setnx", "setrange", "sinter", "sismember", "smembers", "smove",
	"sort", "spop", "srandmember", "srem", "strlen", "substr", "sunion", "ttl",
	"type", "zadd", "zcard", "zcount", "zincrby", "zrange", "zrangeByScore",
	"zrank", "zrem", "zrevrange", "zrevrank", "zscore",
}

//nolint:gochecknoglobals
var peer = tag.StringTag{Tag: mustDeclare("peer", tag.KindString)}

func mustDeclare(name string, kind tag.Kind) *tag.Tag {
	t, err := tag.Default.Declare(name, kind)
	if err != nil {
		panic(err)
	}
	return t
}

// Definition returns the plugin definition. A constructor taking a
// java.util.Set of nodes as its first argument is matched before the ones
// taking a single node.
func Definition() *plugin.Definition {
	return plugin.Define(PluginName, match.ByName(EnhanceClass)).
		Constructors(
			plugin.Constructor(match.TakesArgument(0, match.Type("java.util.Set")), SetConstructorInterceptorRef),
			plugin.Constructor(match.TakesArgumentWithType(0, HostAndPortType), HostAndPortConstructorInterceptorRef),
		).
		Methods(plugin.Method(match.NamedOneOf(Commands...), MethodInterceptorRef)).
		MustBuild()
}

// Register registers the interceptors of the definition with r.
func Register(r *interceptor.Registry) error {
	return multierr.Combine(
		r.Register(SetConstructorInterceptorRef, SetConstructorInterceptor{}),
		r.Register(HostAndPortConstructorInterceptorRef, HostAndPortConstructorInterceptor{}),
		r.Register(MethodInterceptorRef, MethodInterceptor{}),
	)
}

// HostAndPort is the address of a cluster node.
type HostAndPort struct {
	Host string
	Port int
}

func (h HostAndPort) String() string { return h.Host + ":" + strconv.Itoa(h.Port) }

func hostAndPortOf(v interface{}) (HostAndPort, bool) {
	switch h := v.(type) {
	case HostAndPort:
		return h, true
	case *HostAndPort:
		if h != nil {
			return *h, true
		}
	}
	return HostAndPort{}, false
}

// SetConstructorInterceptor records the nodes of a cluster constructed
// from a set of nodes, joined by ";". The set may be given as a
// []HostAndPort, kept in order, or a map[HostAndPort]struct{}, sorted.
type SetConstructorInterceptor struct{}

// OnConstruct implements interceptor.ConstructorInterceptor.
func (SetConstructorInterceptor) OnConstruct(ctx context.Context, inst interceptor.Instance, args interceptor.Arguments) {
	var nodes []string
	switch set := args.At(0).(type) {
	case []HostAndPort:
		for _, h := range set {
			nodes = append(nodes, h.String())
		}
	case map[HostAndPort]struct{}:
		for h := range set {
			nodes = append(nodes, h.String())
		}
		sort.Strings(nodes)
	default:
		tracing.LoggerFromContext(ctx).V(1).Info("unexpected cluster nodes", "type", fmt.Sprintf("%T", set))
		return
	}
	inst.SetDynamicField(strings.Join(nodes, ";"))
}

// HostAndPortConstructorInterceptor records the node of a cluster
// constructed from a single node.
type HostAndPortConstructorInterceptor struct{}

// OnConstruct implements interceptor.ConstructorInterceptor.
func (HostAndPortConstructorInterceptor) OnConstruct(ctx context.Context, inst interceptor.Instance, args interceptor.Arguments) {
	h, ok := hostAndPortOf(args.At(0))
	if !ok {
		tracing.LoggerFromContext(ctx).V(1).Info("unexpected cluster node", "type", fmt.Sprintf("%T", args.At(0)))
		return
	}
	inst.SetDynamicField(h.String())
}

// MethodInterceptor opens a database client span for every command.
type MethodInterceptor struct{}

var (
	_ interceptor.ConstructorInterceptor = SetConstructorInterceptor{}
	_ interceptor.ConstructorInterceptor = HostAndPortConstructorInterceptor{}
	_ interceptor.MethodInterceptor      = MethodInterceptor{}
)

// BeforeMethod starts a span named "Jedis/{command}". The statement is the
// command name, followed by the key if the first argument is a string.
func (MethodInterceptor) BeforeMethod(ctx context.Context, inv *interceptor.Invocation) context.Context {
	command := inv.Method().Name
	ctx, span, log := tracing.Tracer().
		WithLayer(tag.LayerDB).
		WithSpanKind(tag.SpanKindClient).
		WithTag(tag.Component.Tag, component).
		WithTag(tag.DBType.Tag, dbType).
		Trace(ctx, "Jedis/"+command)

	statement := command
	if key, ok := inv.Arguments().At(0).(string); ok {
		statement += " " + key
	}
	err := multierr.Append(
		tag.DBStatement.Set(span, statement),
		setPeer(span, inv.Instance()),
	)
	if err != nil {
		log.Error(err, "couldn't tag span")
	}
	return ctx
}

func setPeer(span tracing.Span, inst interceptor.Instance) error {
	if inst == nil {
		return nil
	}
	if p, ok := inst.DynamicField().(string); ok && len(p) != 0 {
		return peer.Set(span, p)
	}
	return nil
}

// AfterMethod ends the span, marking it as failed if the command failed.
func (MethodInterceptor) AfterMethod(ctx context.Context, _ *interceptor.Invocation, ret interface{}, err error) (interface{}, error) {
	span := tracing.SpanFromContext(ctx)
	tracing.DefaultErrRegisterFunc(err, span, tracing.LoggerFromContext(ctx))
	span.End()
	return ret, err
}
